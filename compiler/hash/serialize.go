package hash

import (
	"encoding/binary"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of the frozen hashing AST.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Integers: big-endian fixed-width (uint16=2B, uint32=4B)
//   - Conditions: single byte
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Child nodes: serialized inline (flat)
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of an HNode tree.
// The returned bytes are suitable for hashing with SHA-256.
func Serialize(node HNode) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.serializeNode(node)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) serializeNode(node HNode) {
	switch n := node.(type) {
	case *HProgram:
		s.writeByte(TagProgram)
		s.writeUint32(uint32(len(n.Instructions)))
		for _, b := range n.Instructions {
			s.serializeNode(b)
		}
		s.serializeNode(n.Body)

	case *HBlock:
		s.writeByte(TagBlock)
		s.writeUint32(uint32(len(n.Statements)))
		for _, stmt := range n.Statements {
			s.serializeNode(stmt)
		}

	case *HIf:
		s.writeByte(TagIf)
		s.writeByte(n.Cond)
		s.serializeNode(n.Body)

	case *HIfElse:
		s.writeByte(TagIfElse)
		s.writeByte(n.Cond)
		s.serializeNode(n.Then)
		s.serializeNode(n.Else)

	case *HWhile:
		s.writeByte(TagWhile)
		s.writeByte(n.Cond)
		s.serializeNode(n.Body)

	case *HPrimitiveCall:
		s.writeByte(TagPrimitiveCall)
		s.writeString(n.Name)

	case *HInstructionRef:
		s.writeByte(TagInstructionRef)
		s.writeUint16(n.Index)

	case *HUndefinedCall:
		s.writeByte(TagUndefinedCall)
		s.writeString(n.Name)
	}
}
