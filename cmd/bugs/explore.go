package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/chazu/bugsworld/pkg/bytecode"
)

// session is an interactive walk through a compiled program: the user picks
// a program counter and what the bug sees, and the session shows where the
// bug's next primitive instruction is.
type session struct {
	id       uuid.UUID
	program  *bytecode.Program
	resolver *bytecode.Resolver
	in       *bufio.Scanner
	out      io.Writer

	pc    int
	steps int
}

func newSession(p *bytecode.Program, r *bytecode.Resolver, in io.Reader, out io.Writer) *session {
	return &session{
		id:       uuid.New(),
		program:  p,
		resolver: r,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// readLine returns the next input line without its line ending; ok is false
// at end of input.
func (s *session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *session) printDisassembly() {
	fmt.Fprintln(s.out)
	fmt.Fprint(s.out, bytecode.Disassemble(s.program, s.pc))
}

// Run drives the session until the user enters an out-of-range program
// counter or the input ends.
func (s *session) Run() error {
	log.Infof("explore session %s started (%d words)", s.id, s.program.Len())
	defer func() {
		log.Infof("explore session %s ended after %d steps", s.id, s.steps)
	}()

	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "Enter program counter outside the [0,%d) range to quit.\n", s.program.Len())
	s.printDisassembly()

	for {
		fmt.Fprintln(s.out)
		fmt.Fprintf(s.out, "Enter program counter (Enter => pc = %d): ", s.pc)
		line, ok := s.readLine()
		if !ok {
			break
		}

		candidate := s.pc
		if line != "" {
			n, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintf(s.out, "Program counter must be a number in the [0,%d) range\n", s.program.Len())
				continue
			}
			candidate = n
		}
		if candidate < 0 || candidate >= s.program.Len() {
			break
		}
		if !s.program.IsInstructionStart(candidate) {
			fmt.Fprintln(s.out, "Program counter must be the location of an instruction byte code in the program")
			continue
		}
		s.pc = candidate

		fmt.Fprint(s.out, "Enter what bug sees (EMPTY=0, WALL=1, FRIEND=2, ENEMY=3): ")
		line, ok = s.readLine()
		if !ok {
			break
		}
		code, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(s.out, "What bug sees must be a number in the [0,3] range")
			continue
		}
		sees, err := bytecode.CellStateFromCode(code)
		if err != nil {
			fmt.Fprintln(s.out, "What bug sees must be a number in the [0,3] range")
			continue
		}

		next, err := s.resolver.NextPrimitive(s.program, s.pc, sees)
		if err != nil {
			log.Warningf("session %s: %s", s.id, err)
			fmt.Fprintf(s.out, "Error: %s\n", err)
			continue
		}
		s.pc = next
		s.steps++

		fmt.Fprintln(s.out)
		fmt.Fprintf(s.out, "  Next primitive instruction: %s at address %d\n", s.program.Opcode(next), next)
		s.printDisassembly()

		s.pc++
	}

	fmt.Fprintln(s.out, "Goodbye!")
	return s.in.Err()
}
