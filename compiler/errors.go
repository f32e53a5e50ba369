package compiler

import "fmt"

// SyntaxErrorKind distinguishes the grammar violations the parser reports.
type SyntaxErrorKind int

const (
	// UnexpectedToken: the token does not fit the grammar at this point.
	UnexpectedToken SyntaxErrorKind = iota
	// MismatchedName: the name after END differs from the opening name.
	MismatchedName
)

func (k SyntaxErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "unexpected token"
	case MismatchedName:
		return "mismatched name"
	}
	return fmt.Sprintf("SyntaxErrorKind(%d)", k)
}

// SyntaxError reports a token stream that does not match the BL grammar.
type SyntaxError struct {
	Kind     SyntaxErrorKind
	Pos      Position
	Found    string // literal of the offending token
	Expected string // what the grammar wanted
}

func (e *SyntaxError) Error() string {
	found := e.Found
	if found == EndOfInput {
		found = "end of input"
	} else {
		found = fmt.Sprintf("%q", found)
	}
	return fmt.Sprintf("syntax error at line %d, column %d: %s: expected %s, found %s",
		e.Pos.Line, e.Pos.Column, e.Kind, e.Expected, found)
}

// SemanticErrorKind distinguishes naming and structure violations.
type SemanticErrorKind int

const (
	// PrimitiveRedefined: an instruction is named after a primitive.
	PrimitiveRedefined SemanticErrorKind = iota
	// DuplicateInstruction: two instructions share a name.
	DuplicateInstruction
	// NotBlock: a body that must be a BLOCK is some other kind.
	NotBlock
	// InvalidIdentifier: a program or instruction name is not an identifier.
	InvalidIdentifier
)

func (k SemanticErrorKind) String() string {
	switch k {
	case PrimitiveRedefined:
		return "primitive redefined"
	case DuplicateInstruction:
		return "duplicate instruction"
	case NotBlock:
		return "not a block"
	case InvalidIdentifier:
		return "invalid identifier"
	}
	return fmt.Sprintf("SemanticErrorKind(%d)", k)
}

// SemanticError reports a well-formed token stream that violates a program
// invariant.
type SemanticError struct {
	Kind SemanticErrorKind
	Pos  Position
	Name string
	Msg  string
}

func (e *SemanticError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("semantic error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return "semantic error: " + e.Msg
}
