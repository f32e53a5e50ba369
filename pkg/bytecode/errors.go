package bytecode

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is through PreconditionError and
// CycleError.
var (
	ErrEmptyProgram     = errors.New("program is empty")
	ErrPCOutOfRange     = errors.New("program counter out of range")
	ErrPCNotInstruction = errors.New("program counter addresses an operand word")
	ErrUnknownOpcode    = errors.New("unknown opcode")
	ErrMissingOperand   = errors.New("jump has no operand word")
	ErrBadJumpTarget    = errors.New("jump target is not an instruction start")
	ErrCycleDetected    = errors.New("jump cycle reaches no primitive instruction")
	ErrInvalidCellState = errors.New("invalid cell state")
)

// PreconditionError reports a program or program counter the resolver
// cannot work with.
type PreconditionError struct {
	PC     int    // offending address
	Size   int    // program length in words
	Opcode Opcode // opcode at PC, when relevant
	Err    error  // one of the sentinels above
}

func (e *PreconditionError) Error() string {
	switch e.Err {
	case ErrEmptyProgram:
		return "bytecode: " + e.Err.Error()
	case ErrUnknownOpcode, ErrMissingOperand, ErrBadJumpTarget:
		return fmt.Sprintf("bytecode: address %d (%s): %v", e.PC, e.Opcode, e.Err)
	}
	return fmt.Sprintf("bytecode: pc %d in program of %d words: %v", e.PC, e.Size, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// CycleError reports a jump chain that never reached a primitive.
type CycleError struct {
	Start int // address resolution started at
	PC    int // address at which the cycle was detected
	Hops  int // jumps followed before giving up
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("bytecode: resolving from pc %d: stopped at %d after %d jumps: %v",
		e.Start, e.PC, e.Hops, ErrCycleDetected)
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }
