package bytecode

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// CellState is what a bug sees in the cell directly ahead of it.
type CellState int

const (
	Empty CellState = iota
	Wall
	Friend
	Enemy
)

var cellStateNames = [...]string{
	Empty:  "EMPTY",
	Wall:   "WALL",
	Friend: "FRIEND",
	Enemy:  "ENEMY",
}

func (s CellState) String() string {
	if s >= 0 && int(s) < len(cellStateNames) {
		return cellStateNames[s]
	}
	return fmt.Sprintf("CellState(%d)", int(s))
}

// CellStateFromCode maps the codes 0=EMPTY, 1=WALL, 2=FRIEND, 3=ENEMY.
func CellStateFromCode(code int) (CellState, error) {
	if code < 0 || code >= len(cellStateNames) {
		return 0, fmt.Errorf("%w: code %d is not in [0,3]", ErrInvalidCellState, code)
	}
	return CellState(code), nil
}

// ParseCellState accepts a numeric code or a state name in any case.
func ParseCellState(s string) (CellState, error) {
	s = strings.TrimSpace(s)
	if code, err := strconv.Atoi(s); err == nil {
		return CellStateFromCode(code)
	}
	for i, name := range cellStateNames {
		if strings.EqualFold(s, name) {
			return CellState(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCellState, s)
}

// ---------------------------------------------------------------------------
// Resolver
// ---------------------------------------------------------------------------

// DefaultMaxChain bounds the number of jumps followed in one resolution.
const DefaultMaxChain = 65536

// Resolver finds the next primitive instruction of a program. A Resolver
// holds no per-program state; the coin it flips for RANDOM is its only
// source of variation.
type Resolver struct {
	coin     func() bool
	maxChain int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCoin sets the coin flipped for RANDOM conditions. The condition holds
// when coin returns true.
func WithCoin(coin func() bool) Option {
	return func(r *Resolver) {
		if coin != nil {
			r.coin = coin
		}
	}
}

// WithRand flips RANDOM conditions using rng.
func WithRand(rng *rand.Rand) Option {
	return func(r *Resolver) {
		if rng != nil {
			r.coin = func() bool { return rng.Float64() < 0.5 }
		}
	}
}

// WithMaxChain bounds the number of jumps followed before giving up with a
// CycleError. Values below 1 keep the default.
func WithMaxChain(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxChain = n
		}
	}
}

// NewResolver creates a resolver. Without options RANDOM uses the global
// math/rand source.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		coin:     func() bool { return rand.Float64() < 0.5 },
		maxChain: DefaultMaxChain,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxChain returns the jump bound of r.
func (r *Resolver) MaxChain() int { return r.maxChain }

// NextPrimitive returns the address of the next primitive instruction to
// execute in p, starting at pc, given that the bug sees sees. p is never
// modified.
//
// A primitive at pc resolves to pc. JUMP continues at its operand. A
// conditional jump continues at pc+2 when its condition holds and at its
// operand otherwise.
//
// An address revisited since the last RANDOM evaluation means the chain can
// never reach a primitive under this state, and a *CycleError is returned.
// Chains through RANDOM may terminate eventually and are only bounded by
// the resolver's MaxChain.
func (r *Resolver) NextPrimitive(p *Program, pc int, sees CellState) (int, error) {
	size := 0
	if p != nil {
		size = p.Len()
	}
	if size == 0 {
		return 0, &PreconditionError{PC: pc, Size: 0, Err: ErrEmptyProgram}
	}
	if err := p.checkAddress(pc); err != nil {
		return 0, err
	}

	start := pc
	var visited map[int]bool
	for hops := 0; ; hops++ {
		op := p.Opcode(pc)
		if op.IsPrimitive() {
			return pc, nil
		}
		if !op.IsJump() {
			return 0, &PreconditionError{PC: pc, Size: size, Opcode: op, Err: ErrUnknownOpcode}
		}
		if hops >= r.maxChain {
			return 0, &CycleError{Start: start, PC: pc, Hops: hops}
		}

		if op == OpJumpIfNotRandom {
			visited = nil
		} else {
			if visited[pc] {
				return 0, &CycleError{Start: start, PC: pc, Hops: hops}
			}
			if visited == nil {
				visited = make(map[int]bool)
			}
			visited[pc] = true
		}

		if pc+1 >= size {
			return 0, &PreconditionError{PC: pc, Size: size, Opcode: op, Err: ErrMissingOperand}
		}
		next := p.At(pc + 1)
		if op != OpJump && r.holds(op, sees) {
			next = pc + 2
		}
		if err := p.checkAddress(next); err != nil {
			return 0, err
		}
		pc = next
	}
}

// checkAddress verifies pc is an in-range instruction start.
func (p *Program) checkAddress(pc int) error {
	if pc < 0 || pc >= p.Len() {
		return &PreconditionError{PC: pc, Size: p.Len(), Err: ErrPCOutOfRange}
	}
	if !p.IsInstructionStart(pc) {
		return &PreconditionError{PC: pc, Size: p.Len(), Err: ErrPCNotInstruction}
	}
	return nil
}

// holds evaluates the condition of a conditional jump.
func (r *Resolver) holds(op Opcode, sees CellState) bool {
	switch op {
	case OpJumpIfNotNextIsEmpty:
		return sees == Empty
	case OpJumpIfNotNextIsNotEmpty:
		return sees != Empty
	case OpJumpIfNotNextIsWall:
		return sees == Wall
	case OpJumpIfNotNextIsNotWall:
		return sees != Wall
	case OpJumpIfNotNextIsFriend:
		return sees == Friend
	case OpJumpIfNotNextIsNotFriend:
		return sees != Friend
	case OpJumpIfNotNextIsEnemy:
		return sees == Enemy
	case OpJumpIfNotNextIsNotEnemy:
		return sees != Enemy
	case OpJumpIfNotRandom:
		return r.coin()
	}
	return true
}

var defaultResolver = NewResolver()

// NextPrimitiveInstructionAddress resolves with a default Resolver.
func NextPrimitiveInstructionAddress(p *Program, pc int, sees CellState) (int, error) {
	return defaultResolver.NextPrimitive(p, pc, sees)
}
