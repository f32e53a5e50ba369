package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/bugsworld/manifest"
	"github.com/chazu/bugsworld/pkg/bytecode"
)

const hunterSource = `PROGRAM Hunter IS

  INSTRUCTION FindObstacle IS
    WHILE next-is-empty
      move
    END WHILE
  END FindObstacle

BEGIN
  WHILE true
    FindObstacle
    IF next-is-enemy
      infect
    ELSE
      turnleft
    END IF
  END WHILE
END Hunter
`

// 0: JUMP_IF_NOT_NEXT_IS_ENEMY 9, 2: MOVE, 3: JUMP_IF_NOT_RANDOM 7,
// 5: JUMP 0, 7: TURNRIGHT, 8: SKIP, 9: TURNLEFT
const hunterProgram = "10\n13 9 0 15 7 6 0 2 4 1\n"

// run executes the CLI with the project directory dir.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTokens(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "p.bl", "PROGRAM P IS\nBEGIN move; END P")

	out, err := run(t, dir, "", "tokens", src)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "1:1\tKEYWORD    PROGRAM", lines[0])
	assert.Equal(t, "2:7\tERROR      move;", lines[4])
}

func TestTokensFromStdin(t *testing.T) {
	out, err := run(t, t.TempDir(), "IF random", "tokens", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "CONDITION  random")
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "hunter.bl", hunterSource)

	out, err := run(t, dir, "", "parse", src)
	require.NoError(t, err)
	assert.Equal(t, "program Hunter: 1 instructions\n", out)
}

func TestParseStats(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "hunter.bl", hunterSource)

	out, err := run(t, dir, "", "parse", "--stats", src)
	require.NoError(t, err)
	assert.Contains(t, out, "main body: 2 primitive calls\n")
	assert.Contains(t, out, "instruction FindObstacle: 1 primitive calls\n")
	assert.Regexp(t, `content hash: [0-9a-f]{64}\n`, out)
	assert.NotContains(t, out, "warning")
}

func TestParseStatsWarnings(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "p.bl", "PROGRAM P IS BEGIN Ghost END P")

	out, err := run(t, dir, "", "parse", "--stats", src)
	require.NoError(t, err)
	assert.Contains(t, out, "warning: line 1, column 20: call to undefined instruction 'Ghost' in main body")
}

func TestParseError(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "bad.bl", "PROGRAM P IS BEGIN move END Q")

	_, err := run(t, dir, "", "parse", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched name")
}

func TestParseUsesManifestDialect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, manifest.FileName, `[dialect]
primitives = ["move", "turnleft", "turnright", "turnback", "skip"]
`)
	src := writeFile(t, dir, "p.bl", "PROGRAM P IS INSTRUCTION infect IS move END infect BEGIN infect END P")

	out, err := run(t, dir, "", "parse", src)
	require.NoError(t, err)
	assert.Equal(t, "program P: 1 instructions\n", out)
}

func TestFmt(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "p.bl", "PROGRAM P IS BEGIN IF random move END IF END P")

	out, err := run(t, dir, "", "fmt", src)
	require.NoError(t, err)
	assert.Equal(t, "PROGRAM P IS\n\nBEGIN\n  IF random\n    move\n  END IF\nEND P\n", out)

	_, err = run(t, dir, "", "fmt", "-w", src)
	require.NoError(t, err)
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestDisasm(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "hunter.txt", hunterProgram)

	out, err := run(t, dir, "", "disasm", "--pc", "3", prog)
	require.NoError(t, err)
	assert.Equal(t, bytecode.Disassemble(mustLoad(t, prog), 3), out)
	assert.Contains(t, out, "=> 0003  JUMP_IF_NOT_RANDOM 7")
}

func mustLoad(t *testing.T, path string) *bytecode.Program {
	t.Helper()
	p, err := bytecode.LoadProgramFile(path)
	require.NoError(t, err)
	return p
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "hunter.txt", hunterProgram)

	tests := []struct {
		pc   string
		sees string
		want string
	}{
		{"0", "EMPTY", "TURNLEFT at address 9\n"},
		{"0", "3", "MOVE at address 2\n"},
		{"5", "enemy", "MOVE at address 2\n"},
		{"7", "WALL", "TURNRIGHT at address 7\n"},
	}
	for _, tc := range tests {
		out, err := run(t, dir, "", "resolve", "--pc", tc.pc, "--sees", tc.sees, prog)
		require.NoError(t, err)
		assert.Equal(t, tc.want, out, "pc %s sees %s", tc.pc, tc.sees)
	}
}

func TestResolveErrors(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "hunter.txt", hunterProgram)

	_, err := run(t, dir, "", "resolve", "--pc", "1", prog)
	assert.ErrorIs(t, err, bytecode.ErrPCNotInstruction)

	_, err = run(t, dir, "", "resolve", "--pc", "10", prog)
	assert.ErrorIs(t, err, bytecode.ErrPCOutOfRange)

	_, err = run(t, dir, "", "resolve", "--sees", "4", prog)
	assert.ErrorIs(t, err, bytecode.ErrInvalidCellState)

	_, err = run(t, dir, "", "resolve", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestExplore(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "hunter.txt", hunterProgram)

	input := strings.Join([]string{"x", "1", "0", "7", "", "3", "-1"}, "\n") + "\n"
	out, err := run(t, dir, input, "explore", prog)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "\nEnter program counter outside the [0,10) range to quit.\n"))
	assert.Contains(t, out, "=> 0000  JUMP_IF_NOT_NEXT_IS_ENEMY 9")
	assert.Contains(t, out, "Program counter must be a number in the [0,10) range\n")
	assert.Contains(t, out, "Program counter must be the location of an instruction byte code in the program\n")
	assert.Contains(t, out, "What bug sees must be a number in the [0,3] range\n")
	assert.Contains(t, out, "  Next primitive instruction: MOVE at address 2\n")
	assert.Contains(t, out, "=> 0002  MOVE")
	assert.Contains(t, out, "Enter program counter (Enter => pc = 3): ")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
}

func TestExploreEnterPastEnd(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "hunter.txt", hunterProgram)

	// EMPTY at 0 jumps to TURNLEFT at 9; Enter then carries pc 10.
	out, err := run(t, dir, "0\n0\n\n", "explore", prog)
	require.NoError(t, err)
	assert.Contains(t, out, "  Next primitive instruction: TURNLEFT at address 9\n")
	assert.Contains(t, out, "Enter program counter (Enter => pc = 10): Goodbye!\n")
}

func TestExploreEndOfInput(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "hunter.txt", hunterProgram)

	out, err := run(t, dir, "0\n", "explore", prog)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
	assert.NotContains(t, out, "Next primitive instruction")
}

func TestStoreLifecycle(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "hunter.txt", hunterProgram)
	src := writeFile(t, dir, "hunter.bl", hunterSource)

	out, err := run(t, dir, "", "store", "put", "hunter", prog, "--source", src)
	require.NoError(t, err)
	assert.Regexp(t, `^hunter [0-9a-f]{64}\n$`, out)
	assert.FileExists(t, filepath.Join(dir, manifest.DefaultStorePath))

	out, err = run(t, dir, "", "store", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "name"))
	assert.True(t, strings.HasPrefix(lines[1], "hunter"))
	assert.NotContains(t, lines[1], " - ")

	out, err = run(t, dir, "", "store", "get", "hunter")
	require.NoError(t, err)
	assert.Equal(t, "10\n13\n9\n0\n15\n7\n6\n0\n2\n4\n1\n", out)

	out, err = run(t, dir, "", "resolve", "--stored", "--sees", "ENEMY", "hunter")
	require.NoError(t, err)
	assert.Equal(t, "MOVE at address 2\n", out)

	binary := filepath.Join(dir, "hunter.bwc")
	_, err = run(t, dir, "", "store", "get", "hunter", "-o", binary)
	require.NoError(t, err)
	assert.True(t, mustLoad(t, prog).Equal(mustLoad(t, binary)))

	_, err = run(t, dir, "", "store", "rm", "hunter")
	require.NoError(t, err)
	_, err = run(t, dir, "", "store", "get", "hunter")
	assert.Error(t, err)
}

func TestStorePutRejectsInvalidProgram(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "bad.txt", "2\n6 1\n")

	_, err := run(t, dir, "", "store", "put", "bad", prog)
	assert.ErrorIs(t, err, bytecode.ErrBadJumpTarget)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "init", "--name", "arena")
	require.NoError(t, err)
	assert.Contains(t, out, manifest.FileName)

	m, err := manifest.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "arena", m.Project.Name)
	assert.Equal(t, bytecode.DefaultMaxChain, m.VM.MaxChain)

	_, err = run(t, dir, "", "init")
	assert.Error(t, err, "init must not overwrite an existing manifest")
}
