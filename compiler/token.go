package compiler

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Token kinds for the BL lexer
// ---------------------------------------------------------------------------

// TokenKind classifies a token.
type TokenKind int

const (
	TokenError TokenKind = iota
	TokenKeyword
	TokenCondition
	TokenIdentifier

	// TokenEOF is the sentinel appended after the last real token.
	TokenEOF
)

var tokenKindNames = map[TokenKind]string{
	TokenError:      "ERROR",
	TokenKeyword:    "KEYWORD",
	TokenCondition:  "CONDITION",
	TokenIdentifier: "IDENTIFIER",
	TokenEOF:        "EOF",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// EndOfInput is the literal carried by the sentinel token. It contains
// whitespace, so no token scanned from source text can equal it.
const EndOfInput = "### END OF INPUT ###"

// Token represents a lexical token.
type Token struct {
	Kind    TokenKind
	Literal string   // the raw text
	Pos     Position // start position
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "EOF"
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Kind, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Literal)
}

// Is reports whether t is the keyword kw.
func (t Token) Is(kw string) bool {
	return t.Kind == TokenKeyword && t.Literal == kw
}

// Reserved words of the BL language.
const (
	KwProgram     = "PROGRAM"
	KwIs          = "IS"
	KwInstruction = "INSTRUCTION"
	KwBegin       = "BEGIN"
	KwEnd         = "END"
	KwIf          = "IF"
	KwElse        = "ELSE"
	KwWhile       = "WHILE"

	// Only reserved when a dialect enables connectives.
	KwThen = "THEN"
	KwDo   = "DO"
)

var baseKeywords = map[string]bool{
	KwProgram:     true,
	KwIs:          true,
	KwInstruction: true,
	KwBegin:       true,
	KwEnd:         true,
	KwIf:          true,
	KwElse:        true,
	KwWhile:       true,
}

// IsIdentifier reports whether s is a letter followed by letters or digits.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	first, size := utf8.DecodeRuneInString(s)
	if !unicode.IsLetter(first) {
		return false
	}
	for _, r := range s[size:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Classify returns the kind of a token under the default dialect.
func Classify(literal string) TokenKind {
	return DefaultDialect.Classify(literal)
}
