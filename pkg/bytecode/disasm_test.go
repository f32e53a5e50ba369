package bytecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassemble(t *testing.T) {
	out := Disassemble(NewProgram(sampleWords), 3)
	want := strings.Join([]string{
		"; BugsWorld program, 10 words",
		"   0000  JUMP_IF_NOT_NEXT_IS_ENEMY 9",
		"   0002  MOVE",
		"=> 0003  JUMP_IF_NOT_RANDOM 7",
		"   0005  JUMP 0",
		"   0007  TURNRIGHT",
		"   0008  SKIP",
		"   0009  TURNLEFT",
	}, "\n") + "\n"
	assert.Equal(t, want, out)
}

func TestDisassembleNoMark(t *testing.T) {
	out := Disassemble(NewProgram(sampleWords), -1)
	assert.NotContains(t, out, "=>")
}

func TestDisassembleInstruction(t *testing.T) {
	p := NewProgram([]int{0, 42, 3, 6})
	assert.Equal(t, "MOVE", DisassembleInstruction(p, 0))
	assert.Equal(t, "UNKNOWN(42) 3", DisassembleInstruction(p, 1))
	assert.Equal(t, "JUMP <missing operand>", DisassembleInstruction(p, 3))
	assert.Equal(t, "<end of code>", DisassembleInstruction(p, 4))
}
