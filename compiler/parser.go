package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Parser: recursive descent parser for BL programs
// ---------------------------------------------------------------------------

// Parser walks an immutable token slice with a private cursor. One Parser
// serves one parse; it is not safe for concurrent use.
type Parser struct {
	tokens  []Token
	pos     int
	dialect *Dialect
}

// NewParser creates a parser over tokens. The slice must end with the
// EndOfInput sentinel; one is appended to a copy if it does not. A nil
// dialect means DefaultDialect.
func NewParser(tokens []Token, d *Dialect) *Parser {
	if d == nil {
		d = DefaultDialect
	}
	if n := len(tokens); n == 0 || tokens[n-1].Kind != TokenEOF {
		var end Position
		if n > 0 {
			end = tokens[n-1].Pos
			end.Column += len(tokens[n-1].Literal)
			end.Offset += len(tokens[n-1].Literal)
		}
		tokens = append(tokens[:n:n], Token{Kind: TokenEOF, Literal: EndOfInput, Pos: end})
	}
	return &Parser{tokens: tokens, dialect: d}
}

// ParseProgram tokenizes and parses a complete BL program under dialect d.
func ParseProgram(source string, d *Dialect) (*Program, error) {
	if d == nil {
		d = DefaultDialect
	}
	return NewParser(d.Tokenize(source), d).ParseProgram()
}

// ParseBlockSource tokenizes source and parses it as a single block that
// must consume all input.
func ParseBlockSource(source string, d *Dialect) (*Block, error) {
	if d == nil {
		d = DefaultDialect
	}
	p := NewParser(d.Tokenize(source), d)
	b, err := p.ParseBlock()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return b, nil
}

// cur returns the current token. The sentinel is never consumed, so the
// cursor always points into the slice.
func (p *Parser) cur() Token {
	return p.tokens[p.pos]
}

// next consumes the current token and returns it.
func (p *Parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

// AtEnd reports whether only the sentinel remains.
func (p *Parser) AtEnd() bool {
	return p.cur().Kind == TokenEOF
}

// Remaining returns the tokens not yet consumed, sentinel included.
func (p *Parser) Remaining() []Token {
	return p.tokens[p.pos:]
}

func (p *Parser) unexpected(expected string) error {
	tok := p.cur()
	return &SyntaxError{Kind: UnexpectedToken, Pos: tok.Pos, Found: tok.Literal, Expected: expected}
}

// expect consumes the keyword kw or fails.
func (p *Parser) expect(kw string) (Token, error) {
	if !p.cur().Is(kw) {
		return Token{}, p.unexpected(kw)
	}
	return p.next(), nil
}

// expectIdentifier consumes an identifier or fails.
func (p *Parser) expectIdentifier(what string) (Token, error) {
	if p.cur().Kind != TokenIdentifier {
		return Token{}, p.unexpected(what)
	}
	return p.next(), nil
}

// expectClosingName consumes the name that closes a PROGRAM or INSTRUCTION.
func (p *Parser) expectClosingName(open Token, what string) (Token, error) {
	tok := p.cur()
	if tok.Literal != open.Literal {
		return Token{}, &SyntaxError{
			Kind:     MismatchedName,
			Pos:      tok.Pos,
			Found:    tok.Literal,
			Expected: fmt.Sprintf("%s name %q opened at line %d", what, open.Literal, open.Pos.Line),
		}
	}
	return p.next(), nil
}

func (p *Parser) expectEnd() error {
	if !p.AtEnd() {
		return p.unexpected("end of input")
	}
	return nil
}

// expectCondition consumes a condition name.
func (p *Parser) expectCondition() (Condition, error) {
	tok := p.cur()
	if tok.Kind != TokenCondition {
		return 0, p.unexpected("condition")
	}
	c, _ := ParseCondition(tok.Literal)
	p.next()
	return c, nil
}

// spanFrom closes a span that started at start with the last consumed token.
func (p *Parser) spanFrom(start Position) Span {
	end := start
	if p.pos > 0 {
		last := p.tokens[p.pos-1]
		end = last.Pos
		end.Offset += len(last.Literal)
		end.Column += len(last.Literal)
	}
	return MakeSpan(start, end)
}

// ---------------------------------------------------------------------------
// Programs and instructions
// ---------------------------------------------------------------------------

// ParseProgram parses
//
//	PROGRAM Id IS Instruction* BEGIN Block END Id <end of input>
func (p *Parser) ParseProgram() (*Program, error) {
	start := p.cur().Pos
	if _, err := p.expect(KwProgram); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier("program name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KwIs); err != nil {
		return nil, err
	}

	prog := NewProgram()
	prog.Name = name.Literal

	for p.cur().Is(KwInstruction) {
		if err := p.parseInstruction(prog); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(KwBegin); err != nil {
		return nil, err
	}
	body, err := p.ParseBlock()
	if err != nil {
		return nil, err
	}
	prog.Body = body
	if _, err := p.expect(KwEnd); err != nil {
		return nil, err
	}
	if _, err := p.expectClosingName(name, "program"); err != nil {
		return nil, err
	}
	prog.SpanVal = p.spanFrom(start)
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return prog, nil
}

// parseInstruction parses
//
//	INSTRUCTION Id IS Block END Id
//
// and adds it to prog.
func (p *Parser) parseInstruction(prog *Program) error {
	start := p.cur().Pos
	if _, err := p.expect(KwInstruction); err != nil {
		return err
	}
	name, err := p.expectIdentifier("instruction name")
	if err != nil {
		return err
	}
	if p.dialect.IsPrimitive(name.Literal) {
		return &SemanticError{
			Kind: PrimitiveRedefined,
			Pos:  name.Pos,
			Name: name.Literal,
			Msg:  fmt.Sprintf("instruction name %q is a primitive instruction", name.Literal),
		}
	}
	if _, err := p.expect(KwIs); err != nil {
		return err
	}
	body, err := p.ParseBlock()
	if err != nil {
		return err
	}
	if _, err := p.expect(KwEnd); err != nil {
		return err
	}
	if _, err := p.expectClosingName(name, "instruction"); err != nil {
		return err
	}
	body.SpanVal.Start = start
	if err := prog.AddInstruction(name.Literal, body); err != nil {
		if se, ok := err.(*SemanticError); ok && se.Pos.Line == 0 {
			se.Pos = name.Pos
		}
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Blocks and statements
// ---------------------------------------------------------------------------

// isBlockTerminator reports whether tok ends a block.
func isBlockTerminator(tok Token) bool {
	return tok.Kind == TokenEOF || tok.Is(KwEnd) || tok.Is(KwElse)
}

// ParseBlock parses statements until END, ELSE or the end of input. The
// terminator is left for the caller.
func (p *Parser) ParseBlock() (*Block, error) {
	start := p.cur().Pos
	block := &Block{}
	for !isBlockTerminator(p.cur()) {
		s, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, s)
	}
	block.SpanVal = p.spanFrom(start)
	if len(block.Statements) == 0 {
		block.SpanVal = MakeSpan(start, start)
	}
	return block, nil
}

// ParseStatement parses one statement, choosing its kind from the current
// token: IF, WHILE or an identifier (a call).
func (p *Parser) ParseStatement() (Statement, error) {
	tok := p.cur()
	switch {
	case tok.Is(KwIf):
		return p.parseIf()
	case tok.Is(KwWhile):
		return p.parseWhile()
	case tok.Kind == TokenIdentifier:
		p.next()
		return &Call{SpanVal: p.spanFrom(tok.Pos), Name: tok.Literal}, nil
	default:
		return nil, p.unexpected("statement (IF, WHILE or instruction name)")
	}
}

// parseIf parses
//
//	IF Condition [THEN] Block [ELSE Block] END IF
func (p *Parser) parseIf() (Statement, error) {
	start := p.next().Pos // IF
	cond, err := p.expectCondition()
	if err != nil {
		return nil, err
	}
	if p.dialect.connectives {
		if _, err := p.expect(KwThen); err != nil {
			return nil, err
		}
	}
	then, err := p.ParseBlock()
	if err != nil {
		return nil, err
	}

	var els *Block
	if p.cur().Is(KwElse) {
		p.next()
		if els, err = p.ParseBlock(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(KwEnd); err != nil {
		return nil, err
	}
	if _, err := p.expect(KwIf); err != nil {
		return nil, err
	}

	span := p.spanFrom(start)
	if els != nil {
		return &IfElse{SpanVal: span, Cond: cond, Then: then, Else: els}, nil
	}
	return &If{SpanVal: span, Cond: cond, Body: then}, nil
}

// parseWhile parses
//
//	WHILE Condition [DO] Block END WHILE
func (p *Parser) parseWhile() (Statement, error) {
	start := p.next().Pos // WHILE
	cond, err := p.expectCondition()
	if err != nil {
		return nil, err
	}
	if p.dialect.connectives {
		if _, err := p.expect(KwDo); err != nil {
			return nil, err
		}
	}
	body, err := p.ParseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KwEnd); err != nil {
		return nil, err
	}
	if _, err := p.expect(KwWhile); err != nil {
		return nil, err
	}
	return &While{SpanVal: p.spanFrom(start), Cond: cond, Body: body}, nil
}
