package bytecode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Program is a compiled BL program. It is immutable once built, so it can be
// shared by any number of resolvers.
type Program struct {
	words  []int
	starts []bool // starts[i] reports whether address i begins an instruction
}

// NewProgram copies words and classifies every address as an instruction
// start or an operand word by scanning from address 0. A word that is not a
// primitive opcode is taken to be two words wide.
func NewProgram(words []int) *Program {
	w := make([]int, len(words))
	copy(w, words)
	starts := make([]bool, len(w))
	for pc := 0; pc < len(w); {
		starts[pc] = true
		if Opcode(w[pc]).IsPrimitive() {
			pc++
		} else {
			pc += 2
		}
	}
	return &Program{words: w, starts: starts}
}

// Len returns the number of words in the program.
func (p *Program) Len() int { return len(p.words) }

// At returns the word at address pc.
func (p *Program) At(pc int) int { return p.words[pc] }

// Opcode returns the word at pc as an opcode.
func (p *Program) Opcode(pc int) Opcode { return Opcode(p.words[pc]) }

// Words returns a copy of the program's words.
func (p *Program) Words() []int {
	w := make([]int, len(p.words))
	copy(w, p.words)
	return w
}

// IsInstructionStart reports whether pc is in range and addresses an opcode
// word rather than a jump operand.
func (p *Program) IsInstructionStart(pc int) bool {
	return pc >= 0 && pc < len(p.starts) && p.starts[pc]
}

// InstructionStarts returns every instruction address in ascending order.
func (p *Program) InstructionStarts() []int {
	var out []int
	for pc, ok := range p.starts {
		if ok {
			out = append(out, pc)
		}
	}
	return out
}

// Equal reports whether p and q hold the same words.
func (p *Program) Equal(q *Program) bool {
	if p == nil || q == nil {
		return p == nil && q == nil
	}
	if len(p.words) != len(q.words) {
		return false
	}
	for i := range p.words {
		if p.words[i] != q.words[i] {
			return false
		}
	}
	return true
}

// Validate checks that the program is non-empty, that every instruction has
// a defined opcode, that every jump has its operand and that every jump
// target is an instruction start. The first violation is returned as a
// *PreconditionError.
func (p *Program) Validate() error {
	size := len(p.words)
	if size == 0 {
		return &PreconditionError{Size: 0, Err: ErrEmptyProgram}
	}
	for _, pc := range p.InstructionStarts() {
		op := p.Opcode(pc)
		if !op.IsValid() {
			return &PreconditionError{PC: pc, Size: size, Opcode: op, Err: ErrUnknownOpcode}
		}
		if !op.IsJump() {
			continue
		}
		if pc+1 >= size {
			return &PreconditionError{PC: pc, Size: size, Opcode: op, Err: ErrMissingOperand}
		}
		if target := p.words[pc+1]; !p.IsInstructionStart(target) {
			return &PreconditionError{PC: pc, Size: size, Opcode: op, Err: ErrBadJumpTarget}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Text format: a word count N followed by N integers, whitespace separated.
// ---------------------------------------------------------------------------

// maxPrealloc bounds the buffer reserved from a declared word count; larger
// programs grow as words arrive.
const maxPrealloc = 4096

// ReadProgram reads a program in text format. Anything after the N words is
// ignored.
func ReadProgram(r io.Reader) (*Program, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func(what string) (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, fmt.Errorf("bytecode: read program: %w", err)
			}
			return 0, fmt.Errorf("bytecode: read program: missing %s", what)
		}
		n, err := strconv.Atoi(sc.Text())
		if err != nil {
			return 0, fmt.Errorf("bytecode: read program: %s %q is not an integer", what, sc.Text())
		}
		return n, nil
	}

	n, err := next("word count")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("bytecode: read program: negative word count %d", n)
	}
	words := make([]int, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		w, err := next(fmt.Sprintf("word %d of %d", i, n))
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return NewProgram(words), nil
}

// WriteText writes p in text format: the count on the first line, then one
// word per line.
func (p *Program) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, len(p.words))
	for _, word := range p.words {
		fmt.Fprintln(bw, word)
	}
	return bw.Flush()
}

// isBinaryPath reports whether path names a CBOR-encoded program.
func isBinaryPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".bwc")
}

// LoadProgramFile reads a compiled program from path. Files with a ".bwc"
// extension are CBOR; everything else is the text format.
func LoadProgramFile(path string) (*Program, error) {
	if isBinaryPath(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return UnmarshalProgram(data)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadProgram(f)
}

// SaveProgramFile writes p to path, choosing the format from the extension
// as LoadProgramFile does.
func SaveProgramFile(path string, p *Program) error {
	if isBinaryPath(path) {
		data, err := MarshalProgram(p)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
