package bytecode

import (
	"fmt"
	"sort"
)

// Opcode is the integer encoding of one instruction. The values are stable:
// compiled programs on disk depend on them.
type Opcode int

const (
	// ========================================================================
	// Primitive instructions (one word)
	// ========================================================================

	OpMove      Opcode = 0 // Step into the cell ahead
	OpTurnLeft  Opcode = 1 // Turn 90 degrees left
	OpTurnRight Opcode = 2 // Turn 90 degrees right
	OpInfect    Opcode = 3 // Convert the enemy ahead
	OpSkip      Opcode = 4 // Do nothing this turn
	OpHalt      Opcode = 5 // Stop the program

	// ========================================================================
	// Jumps (two words: opcode, target)
	// ========================================================================

	OpJump                     Opcode = 6  // Unconditional: JUMP <target>
	OpJumpIfNotNextIsEmpty     Opcode = 7  // Jump unless the cell ahead is empty
	OpJumpIfNotNextIsNotEmpty  Opcode = 8  // Jump unless the cell ahead is not empty
	OpJumpIfNotNextIsWall      Opcode = 9  // Jump unless the cell ahead is a wall
	OpJumpIfNotNextIsNotWall   Opcode = 10 // Jump unless the cell ahead is not a wall
	OpJumpIfNotNextIsFriend    Opcode = 11 // Jump unless the cell ahead holds a friend
	OpJumpIfNotNextIsNotFriend Opcode = 12 // Jump unless the cell ahead holds no friend
	OpJumpIfNotNextIsEnemy     Opcode = 13 // Jump unless the cell ahead holds an enemy
	OpJumpIfNotNextIsNotEnemy  Opcode = 14 // Jump unless the cell ahead holds no enemy
	OpJumpIfNotRandom          Opcode = 15 // Jump on a failed coin flip
	OpJumpIfNotTrue            Opcode = 16 // Never jumps
)

// OpcodeInfo provides metadata about each opcode for disassembly and validation.
type OpcodeInfo struct {
	Name  string // Mnemonic
	Width int    // Number of words including operands
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Primitives
	OpMove:      {"MOVE", 1},
	OpTurnLeft:  {"TURNLEFT", 1},
	OpTurnRight: {"TURNRIGHT", 1},
	OpInfect:    {"INFECT", 1},
	OpSkip:      {"SKIP", 1},
	OpHalt:      {"HALT", 1},

	// Jumps
	OpJump:                     {"JUMP", 2},
	OpJumpIfNotNextIsEmpty:     {"JUMP_IF_NOT_NEXT_IS_EMPTY", 2},
	OpJumpIfNotNextIsNotEmpty:  {"JUMP_IF_NOT_NEXT_IS_NOT_EMPTY", 2},
	OpJumpIfNotNextIsWall:      {"JUMP_IF_NOT_NEXT_IS_WALL", 2},
	OpJumpIfNotNextIsNotWall:   {"JUMP_IF_NOT_NEXT_IS_NOT_WALL", 2},
	OpJumpIfNotNextIsFriend:    {"JUMP_IF_NOT_NEXT_IS_FRIEND", 2},
	OpJumpIfNotNextIsNotFriend: {"JUMP_IF_NOT_NEXT_IS_NOT_FRIEND", 2},
	OpJumpIfNotNextIsEnemy:     {"JUMP_IF_NOT_NEXT_IS_ENEMY", 2},
	OpJumpIfNotNextIsNotEnemy:  {"JUMP_IF_NOT_NEXT_IS_NOT_ENEMY", 2},
	OpJumpIfNotRandom:          {"JUMP_IF_NOT_RANDOM", 2},
	OpJumpIfNotTrue:            {"JUMP_IF_NOT_TRUE", 2},
}

var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		m[info.Name] = op
	}
	return m
}()

// GetOpcodeInfo returns metadata for an opcode.
// Returns an OpcodeInfo with name "UNKNOWN(n)" and width 2 if the opcode is
// not recognized; address scanning treats every non-primitive as a jump.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(%d)", int(op)), Width: 2}
}

// ParseOpcode maps a mnemonic back to its opcode.
func ParseOpcode(name string) (Opcode, bool) {
	op, ok := opcodesByName[name]
	return op, ok
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Width returns the number of words the instruction occupies.
func (op Opcode) Width() int {
	return GetOpcodeInfo(op).Width
}

// IsValid returns true if op is a defined opcode.
func (op Opcode) IsValid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// IsPrimitive returns true if op is a one-word primitive instruction.
func (op Opcode) IsPrimitive() bool {
	return op >= OpMove && op <= OpHalt
}

// IsJump returns true if op is JUMP or a conditional jump.
func (op Opcode) IsJump() bool {
	return op >= OpJump && op <= OpJumpIfNotTrue
}

// IsConditionalJump returns true if op is a JUMP_IF_NOT_<condition> opcode.
func (op Opcode) IsConditionalJump() bool {
	return op > OpJump && op <= OpJumpIfNotTrue
}

// AllOpcodes returns every defined opcode in numeric order.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	sort.Slice(opcodes, func(i, j int) bool { return opcodes[i] < opcodes[j] })
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
