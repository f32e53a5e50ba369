package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a listing of p with one instruction per line. The
// line for the instruction at mark is prefixed with "=>"; pass -1 to mark
// nothing.
func Disassemble(p *Program, mark int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("; BugsWorld program, %d words\n", p.Len()))
	for _, line := range DisassembleToLines(p, mark) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DisassembleToLines returns the listing of p without the header.
func DisassembleToLines(p *Program, mark int) []string {
	var lines []string
	for _, pc := range p.InstructionStarts() {
		prefix := "  "
		if pc == mark {
			prefix = "=>"
		}
		lines = append(lines, fmt.Sprintf("%s %04d  %s", prefix, pc, DisassembleInstruction(p, pc)))
	}
	return lines
}

// DisassembleInstruction renders the instruction at pc: its mnemonic and,
// for jumps, the target address.
func DisassembleInstruction(p *Program, pc int) string {
	if pc < 0 || pc >= p.Len() {
		return "<end of code>"
	}
	op := p.Opcode(pc)
	if op.IsPrimitive() {
		return op.String()
	}
	if pc+1 >= p.Len() {
		return op.String() + " <missing operand>"
	}
	return fmt.Sprintf("%s %d", op, p.At(pc+1))
}
