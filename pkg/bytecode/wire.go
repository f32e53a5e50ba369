package bytecode

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// WireVersion is the envelope version written by MarshalProgram.
const WireVersion = 1

// cborEncMode uses canonical mode so equal programs encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// programEnvelope is the CBOR shape of a compiled program.
type programEnvelope struct {
	Version int   `cbor:"1,keyasint"`
	Words   []int `cbor:"2,keyasint"`
}

// MarshalProgram serializes a Program to CBOR bytes.
func MarshalProgram(p *Program) ([]byte, error) {
	return cborEncMode.Marshal(programEnvelope{Version: WireVersion, Words: p.words})
}

// UnmarshalProgram deserializes a Program from CBOR bytes.
func UnmarshalProgram(data []byte) (*Program, error) {
	var env programEnvelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	if env.Version != WireVersion {
		return nil, fmt.Errorf("bytecode: unmarshal program: unsupported version %d", env.Version)
	}
	return NewProgram(env.Words), nil
}

// Hash returns the hex SHA-256 of the program's CBOR encoding.
func (p *Program) Hash() (string, error) {
	data, err := MarshalProgram(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
