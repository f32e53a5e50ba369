package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/chazu/bugsworld/compiler"
)

// HashProgram computes the SHA-256 content hash of a program.
//
// The hash is computed over a deterministic serialization of the program's
// normalized AST. Programs that differ only in their own name, the names of
// their instructions, layout, or instructions that are never called produce
// the same hash.
func HashProgram(p *compiler.Program, d *compiler.Dialect) [32]byte {
	return sha256.Sum256(Serialize(NormalizeProgram(p, d)))
}

// HashStatement computes the content hash of a single statement.
func HashStatement(s compiler.Statement, d *compiler.Dialect) [32]byte {
	return sha256.Sum256(Serialize(NormalizeStatement(s, d)))
}

// Hex renders a hash the way the store and CLI print it.
func Hex(h [32]byte) string {
	return hex.EncodeToString(h[:])
}
