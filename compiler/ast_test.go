package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustIf(t *testing.T, c Condition, body Statement) *If {
	t.Helper()
	n, err := NewIf(c, body)
	require.NoError(t, err)
	return n
}

func TestDecomposeComposeRoundTrip(t *testing.T) {
	body := NewBlock(NewCall("move"), NewCall("skip"))
	ifElse, err := NewIfElse(NextIsWall, NewBlock(NewCall("turnleft")), NewBlock())
	require.NoError(t, err)
	while, err := NewWhile(True, NewBlock(NewCall("infect")))
	require.NoError(t, err)

	tests := []struct {
		name string
		s    Statement
	}{
		{"block", body},
		{"empty block", NewBlock()},
		{"if", mustIf(t, Random, body)},
		{"if-else", ifElse},
		{"while", while},
		{"call", NewCall("FindObstacle")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parts := Decompose(tc.s)
			assert.Equal(t, tc.s.Kind(), parts.Kind)

			rebuilt, err := Compose(parts)
			require.NoError(t, err)
			assert.True(t, Equal(tc.s, rebuilt))

			// Decompose leaves its argument untouched.
			assert.Equal(t, parts, Decompose(tc.s))
		})
	}
}

func TestDecomposeBlockCopiesChildren(t *testing.T) {
	b := NewBlock(NewCall("move"))
	parts := Decompose(b)
	parts.Children[0] = NewCall("skip")
	assert.Equal(t, "move", b.Statements[0].(*Call).Name)
}

func TestNilBlockChildren(t *testing.T) {
	var nilBlock *Block
	assert.Equal(t, Parts{Kind: KindBlock}, Decompose(nilBlock))

	bare := &If{}
	var visited int
	assert.NotPanics(t, func() {
		Walk(bare, func(Statement) bool { visited++; return true })
	})
	assert.Equal(t, 2, visited)
	assert.True(t, Equal(bare, &If{}))

	p := NewProgram()
	p.Context["Empty"] = nil
	q := NewProgram()
	q.Context["Empty"] = nil
	assert.NotPanics(t, func() { assert.True(t, p.Equal(q)) })
}

func TestComposeArity(t *testing.T) {
	_, err := Compose(Parts{Kind: KindIf, Cond: True})
	assert.Error(t, err)
	_, err = Compose(Parts{Kind: KindIfElse, Children: []Statement{NewBlock()}})
	assert.Error(t, err)
	_, err = Compose(Parts{Kind: KindCall, Name: "move", Children: []Statement{NewBlock()}})
	assert.Error(t, err)
	_, err = Compose(Parts{Kind: Kind(42)})
	assert.Error(t, err)
}

func TestConstructorsRequireBlocks(t *testing.T) {
	call := NewCall("move")
	var nilBlock *Block

	checks := []struct {
		name string
		err  error
	}{
		{"if", func() error { _, err := NewIf(True, call); return err }()},
		{"if nil", func() error { _, err := NewIf(True, nil); return err }()},
		{"if typed nil", func() error { _, err := NewIf(True, nilBlock); return err }()},
		{"if-else then", func() error { _, err := NewIfElse(True, call, NewBlock()); return err }()},
		{"if-else else", func() error { _, err := NewIfElse(True, NewBlock(), call); return err }()},
		{"while", func() error { _, err := NewWhile(True, call); return err }()},
		{"compose", func() error {
			_, err := Compose(Parts{Kind: KindWhile, Children: []Statement{call}})
			return err
		}()},
	}
	for _, c := range checks {
		var se *SemanticError
		require.True(t, errors.As(c.err, &se), "%s: got %v", c.name, c.err)
		assert.Equal(t, NotBlock, se.Kind, c.name)
	}
}

func TestWalkPreOrder(t *testing.T) {
	prog := mustParse(t, `PROGRAM P IS BEGIN
		move
		WHILE true
			IF random turnleft ELSE turnright END IF
		END WHILE
	END P`)

	var kinds []string
	Walk(prog.Body, func(s Statement) bool {
		kinds = append(kinds, s.Kind().String())
		return true
	})
	assert.Equal(t, []string{
		"BLOCK", "CALL", "WHILE", "BLOCK", "IF_ELSE", "BLOCK", "CALL", "BLOCK", "CALL",
	}, kinds)

	var top []string
	Walk(prog.Body, func(s Statement) bool {
		top = append(top, s.Kind().String())
		return s.Kind() == KindBlock
	})
	assert.Equal(t, []string{"BLOCK", "CALL", "WHILE"}, top)
}

func TestEqualIgnoresSpans(t *testing.T) {
	a := mustParse(t, "PROGRAM P IS BEGIN move IF random skip END IF END P")
	b := mustParse(t, "PROGRAM P IS\n\nBEGIN\n  move\n  IF random\n    skip\n  END IF\nEND P")
	assert.True(t, a.Equal(b))

	c := mustParse(t, "PROGRAM P IS BEGIN move IF true skip END IF END P")
	assert.False(t, a.Equal(c))
	assert.False(t, Equal(a.Body, nil))
	assert.True(t, Equal(nil, nil))
}

func TestNewProgramDefaults(t *testing.T) {
	p := NewProgram()
	assert.Equal(t, "Unnamed", p.Name)
	assert.Empty(t, p.Context)
	require.NotNil(t, p.Body)
	assert.Empty(t, p.Body.Statements)
}

func TestProgramMutators(t *testing.T) {
	p := NewProgram()
	require.NoError(t, p.SetName("Hunter"))
	assert.Equal(t, "Hunter", p.Name)

	var se *SemanticError
	err := p.SetName("not valid")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, InvalidIdentifier, se.Kind)
	assert.Equal(t, "Hunter", p.Name)

	require.NoError(t, p.AddInstruction("Step", NewBlock(NewCall("move"))))
	err = p.AddInstruction("Step", NewBlock())
	require.True(t, errors.As(err, &se))
	assert.Equal(t, DuplicateInstruction, se.Kind)

	err = p.AddInstruction("Other", NewCall("move"))
	require.True(t, errors.As(err, &se))
	assert.Equal(t, NotBlock, se.Kind)

	err = p.AddInstruction("2nd", NewBlock())
	require.True(t, errors.As(err, &se))
	assert.Equal(t, InvalidIdentifier, se.Kind)

	require.NoError(t, p.SetBody(NewBlock(NewCall("Step"))))
	err = p.SetBody(NewCall("Step"))
	require.True(t, errors.As(err, &se))
	assert.Equal(t, NotBlock, se.Kind)

	assert.Equal(t, []string{"Step"}, p.InstructionNames())
	_, ok := p.Instruction("Missing")
	assert.False(t, ok)
}

func TestConditionNames(t *testing.T) {
	for _, c := range Conditions() {
		parsed, ok := ParseCondition(c.String())
		require.True(t, ok, c.String())
		assert.Equal(t, c, parsed)
	}
	_, ok := ParseCondition("next-is-bug")
	assert.False(t, ok)
	assert.Len(t, Conditions(), 10)
}
