package compiler

import (
	"strings"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: splits BL source into whitespace-delimited tokens
// ---------------------------------------------------------------------------

// separators are the characters that delimit tokens.
const separators = " \t\n\r"

func isSeparator(r rune) bool {
	return strings.ContainsRune(separators, r)
}

// Lexer scans maximal runs of separator and non-separator characters. Runs of
// separators are dropped; every other run becomes one token.
type Lexer struct {
	input   string
	dialect *Dialect
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // column of ch (1-based)
	eof     bool
}

// NewLexer creates a lexer that classifies tokens under dialect d. A nil
// dialect means DefaultDialect.
func NewLexer(input string, d *Dialect) *Lexer {
	if d == nil {
		d = DefaultDialect
	}
	l := &Lexer{
		input:   input,
		dialect: d,
		line:    1,
		col:     0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		l.eof = true
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// NextToken returns the next token. After the input is exhausted it keeps
// returning the EndOfInput sentinel.
func (l *Lexer) NextToken() Token {
	for !l.eof && isSeparator(l.ch) {
		l.readChar()
	}

	pos := l.position()
	if l.eof {
		return Token{Kind: TokenEOF, Literal: EndOfInput, Pos: pos}
	}

	start := l.pos
	for !l.eof && !isSeparator(l.ch) {
		l.readChar()
	}
	literal := l.input[start:l.pos]
	return Token{Kind: l.dialect.Classify(literal), Literal: literal, Pos: pos}
}

// Tokenize returns all tokens of input under the default dialect, terminated
// by the EndOfInput sentinel. It never fails; malformed input shows up as
// ERROR tokens and later as parse errors.
func Tokenize(input string) []Token {
	return DefaultDialect.Tokenize(input)
}

// Tokenize returns all tokens of input classified under d, terminated by the
// EndOfInput sentinel.
func (d *Dialect) Tokenize(input string) []Token {
	l := NewLexer(input, d)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}
	return tokens
}

// TokensFromStrings classifies already-split tokens. The exact string
// EndOfInput becomes the sentinel and ends the sequence; a sentinel is
// appended when the input lacks one. Positions are token indexes.
func (d *Dialect) TokensFromStrings(words []string) []Token {
	tokens := make([]Token, 0, len(words)+1)
	for i, w := range words {
		pos := Position{Offset: i, Line: 1, Column: i + 1}
		if w == EndOfInput {
			return append(tokens, Token{Kind: TokenEOF, Literal: EndOfInput, Pos: pos})
		}
		tokens = append(tokens, Token{Kind: d.Classify(w), Literal: w, Pos: pos})
	}
	n := len(words)
	return append(tokens, Token{Kind: TokenEOF, Literal: EndOfInput, Pos: Position{Offset: n, Line: 1, Column: n + 1}})
}

// TokensFromStrings classifies already-split tokens under the default dialect.
func TokensFromStrings(words []string) []Token {
	return DefaultDialect.TokensFromStrings(words)
}
