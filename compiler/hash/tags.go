package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the hashing AST serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// all previously computed content hashes.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing content hashes.
const HashVersion byte = 1

const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	// Structure
	TagProgram byte = 0x01
	TagBlock   byte = 0x02

	// Control
	TagIf     byte = 0x03
	TagIfElse byte = 0x04
	TagWhile  byte = 0x05

	// Calls
	TagPrimitiveCall  byte = 0x06
	TagInstructionRef byte = 0x07
	TagUndefinedCall  byte = 0x08

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagProgram, TagBlock,
	TagIf, TagIfElse, TagWhile,
	TagPrimitiveCall, TagInstructionRef, TagUndefinedCall,
}
