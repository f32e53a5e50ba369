package compiler

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// AST: statements and programs of the BL language
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// MakeSpan creates a span from start and end positions.
func MakeSpan(start, end Position) Span {
	return Span{Start: start, End: end}
}

// Kind is the tag of a Statement.
type Kind int

const (
	KindBlock Kind = iota
	KindIf
	KindIfElse
	KindWhile
	KindCall
)

var kindNames = [...]string{
	KindBlock:  "BLOCK",
	KindIf:     "IF",
	KindIfElse: "IF_ELSE",
	KindWhile:  "WHILE",
	KindCall:   "CALL",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Condition is a test a bug can make about its surroundings.
type Condition int

const (
	NextIsEmpty Condition = iota
	NextIsNotEmpty
	NextIsWall
	NextIsNotWall
	NextIsFriend
	NextIsNotFriend
	NextIsEnemy
	NextIsNotEnemy
	Random
	True
)

var conditionNames = [...]string{
	NextIsEmpty:     "next-is-empty",
	NextIsNotEmpty:  "next-is-not-empty",
	NextIsWall:      "next-is-wall",
	NextIsNotWall:   "next-is-not-wall",
	NextIsFriend:    "next-is-friend",
	NextIsNotFriend: "next-is-not-friend",
	NextIsEnemy:     "next-is-enemy",
	NextIsNotEnemy:  "next-is-not-enemy",
	Random:          "random",
	True:            "true",
}

var conditionsByName = func() map[string]Condition {
	m := make(map[string]Condition, len(conditionNames))
	for c, name := range conditionNames {
		m[name] = Condition(c)
	}
	return m
}()

// String returns the BL spelling of the condition.
func (c Condition) String() string {
	if c >= 0 && int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return fmt.Sprintf("Condition(%d)", c)
}

// ParseCondition maps a BL condition name to its Condition.
func ParseCondition(name string) (Condition, bool) {
	c, ok := conditionsByName[name]
	return c, ok
}

func isConditionName(s string) bool {
	_, ok := conditionsByName[s]
	return ok
}

// Conditions returns every condition in declaration order.
func Conditions() []Condition {
	out := make([]Condition, len(conditionNames))
	for i := range conditionNames {
		out[i] = Condition(i)
	}
	return out
}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Statement is implemented by Block, If, IfElse, While and Call.
type Statement interface {
	Kind() Kind
	Span() Span
	stmt() // marker method
}

// Block is an ordered sequence of statements.
type Block struct {
	SpanVal    Span
	Statements []Statement
}

func (n *Block) Kind() Kind { return KindBlock }
func (n *Block) Span() Span { return n.SpanVal }
func (n *Block) stmt()      {}

// If runs Body when Cond holds.
type If struct {
	SpanVal Span
	Cond    Condition
	Body    *Block
}

func (n *If) Kind() Kind { return KindIf }
func (n *If) Span() Span { return n.SpanVal }
func (n *If) stmt()      {}

// IfElse runs Then when Cond holds and Else otherwise.
type IfElse struct {
	SpanVal Span
	Cond    Condition
	Then    *Block
	Else    *Block
}

func (n *IfElse) Kind() Kind { return KindIfElse }
func (n *IfElse) Span() Span { return n.SpanVal }
func (n *IfElse) stmt()      {}

// While repeats Body as long as Cond holds.
type While struct {
	SpanVal Span
	Cond    Condition
	Body    *Block
}

func (n *While) Kind() Kind { return KindWhile }
func (n *While) Span() Span { return n.SpanVal }
func (n *While) stmt()      {}

// Call invokes a primitive or user-defined instruction by name.
type Call struct {
	SpanVal Span
	Name    string
}

func (n *Call) Kind() Kind { return KindCall }
func (n *Call) Span() Span { return n.SpanVal }
func (n *Call) stmt()      {}

// asBlock returns s as a block or a NotBlock error naming role.
func asBlock(s Statement, role string) (*Block, error) {
	b, ok := s.(*Block)
	if !ok || b == nil {
		var pos Position
		found := "nil"
		if s != nil && !ok {
			pos = s.Span().Start
			found = s.Kind().String()
		}
		return nil, &SemanticError{
			Kind: NotBlock,
			Pos:  pos,
			Name: role,
			Msg:  fmt.Sprintf("%s must be a BLOCK, got %s", role, found),
		}
	}
	return b, nil
}

// NewBlock creates a block holding stmts.
func NewBlock(stmts ...Statement) *Block {
	return &Block{Statements: stmts}
}

// NewCall creates a call statement.
func NewCall(name string) *Call {
	return &Call{Name: name}
}

// NewIf creates an IF statement. body must be a *Block.
func NewIf(cond Condition, body Statement) (*If, error) {
	b, err := asBlock(body, "IF body")
	if err != nil {
		return nil, err
	}
	return &If{Cond: cond, Body: b}, nil
}

// NewIfElse creates an IF_ELSE statement. Both branches must be blocks.
func NewIfElse(cond Condition, then, els Statement) (*IfElse, error) {
	tb, err := asBlock(then, "IF then-branch")
	if err != nil {
		return nil, err
	}
	eb, err := asBlock(els, "IF else-branch")
	if err != nil {
		return nil, err
	}
	return &IfElse{Cond: cond, Then: tb, Else: eb}, nil
}

// NewWhile creates a WHILE statement. body must be a *Block.
func NewWhile(cond Condition, body Statement) (*While, error) {
	b, err := asBlock(body, "WHILE body")
	if err != nil {
		return nil, err
	}
	return &While{Cond: cond, Body: b}, nil
}

// ---------------------------------------------------------------------------
// Structural traversal
// ---------------------------------------------------------------------------

// Parts holds the constituents of a statement. Children are the block
// statements for BLOCK, the body for IF and WHILE and then/else for IF_ELSE.
type Parts struct {
	Kind     Kind
	Cond     Condition
	Name     string
	Children []Statement
	Span     Span
}

// Decompose returns the parts of s without modifying it.
func Decompose(s Statement) Parts {
	switch n := s.(type) {
	case *Block:
		if n == nil {
			return Parts{Kind: KindBlock}
		}
		children := make([]Statement, len(n.Statements))
		copy(children, n.Statements)
		return Parts{Kind: KindBlock, Children: children, Span: n.SpanVal}
	case *If:
		return Parts{Kind: KindIf, Cond: n.Cond, Children: []Statement{n.Body}, Span: n.SpanVal}
	case *IfElse:
		return Parts{Kind: KindIfElse, Cond: n.Cond, Children: []Statement{n.Then, n.Else}, Span: n.SpanVal}
	case *While:
		return Parts{Kind: KindWhile, Cond: n.Cond, Children: []Statement{n.Body}, Span: n.SpanVal}
	case *Call:
		return Parts{Kind: KindCall, Name: n.Name, Span: n.SpanVal}
	}
	panic(fmt.Sprintf("compiler: unknown statement type %T", s))
}

// Compose builds a statement from parts, the inverse of Decompose.
func Compose(p Parts) (Statement, error) {
	arity := func(n int) error {
		if len(p.Children) != n {
			return fmt.Errorf("compose %s: want %d children, got %d", p.Kind, n, len(p.Children))
		}
		return nil
	}
	var (
		s   Statement
		err error
	)
	switch p.Kind {
	case KindBlock:
		children := make([]Statement, len(p.Children))
		copy(children, p.Children)
		s = &Block{Statements: children, SpanVal: p.Span}
	case KindIf:
		if err = arity(1); err != nil {
			return nil, err
		}
		var n *If
		if n, err = NewIf(p.Cond, p.Children[0]); err == nil {
			n.SpanVal = p.Span
			s = n
		}
	case KindIfElse:
		if err = arity(2); err != nil {
			return nil, err
		}
		var n *IfElse
		if n, err = NewIfElse(p.Cond, p.Children[0], p.Children[1]); err == nil {
			n.SpanVal = p.Span
			s = n
		}
	case KindWhile:
		if err = arity(1); err != nil {
			return nil, err
		}
		var n *While
		if n, err = NewWhile(p.Cond, p.Children[0]); err == nil {
			n.SpanVal = p.Span
			s = n
		}
	case KindCall:
		if err = arity(0); err != nil {
			return nil, err
		}
		s = &Call{Name: p.Name, SpanVal: p.Span}
	default:
		return nil, fmt.Errorf("compose: unknown kind %s", p.Kind)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Walk visits s and its descendants in depth-first pre-order. Children of a
// node are skipped when fn returns false.
func Walk(s Statement, fn func(Statement) bool) {
	if s == nil || !fn(s) {
		return
	}
	for _, child := range Decompose(s).Children {
		Walk(child, fn)
	}
}

// Equal reports whether a and b have the same structure, ignoring spans.
func Equal(a, b Statement) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	pa, pb := Decompose(a), Decompose(b)
	if pa.Kind != pb.Kind || len(pa.Children) != len(pb.Children) {
		return false
	}
	switch pa.Kind {
	case KindCall:
		return pa.Name == pb.Name
	case KindIf, KindIfElse, KindWhile:
		if pa.Cond != pb.Cond {
			return false
		}
	}
	for i := range pa.Children {
		if !Equal(pa.Children[i], pb.Children[i]) {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Program
// ---------------------------------------------------------------------------

// Program is a named BL program: user-defined instructions plus a main body.
type Program struct {
	Name    string
	Context map[string]*Block
	Body    *Block
	SpanVal Span
}

// NewProgram returns the empty program ("Unnamed", {}, empty BLOCK).
func NewProgram() *Program {
	return &Program{
		Name:    "Unnamed",
		Context: make(map[string]*Block),
		Body:    &Block{},
	}
}

// Span returns the source range of the program.
func (p *Program) Span() Span { return p.SpanVal }

// SetName renames the program. n must be an identifier.
func (p *Program) SetName(n string) error {
	if !IsIdentifier(n) {
		return &SemanticError{Kind: InvalidIdentifier, Name: n, Msg: fmt.Sprintf("program name %q is not an identifier", n)}
	}
	p.Name = n
	return nil
}

// AddInstruction defines a new instruction. name must be an identifier not
// yet defined and body must be a *Block. Primitive-name collisions depend on
// the dialect and are checked by the parser.
func (p *Program) AddInstruction(name string, body Statement) error {
	if !IsIdentifier(name) {
		return &SemanticError{Kind: InvalidIdentifier, Name: name, Msg: fmt.Sprintf("instruction name %q is not an identifier", name)}
	}
	if _, dup := p.Context[name]; dup {
		return &SemanticError{Kind: DuplicateInstruction, Name: name, Msg: fmt.Sprintf("instruction %q is already defined", name)}
	}
	b, err := asBlock(body, fmt.Sprintf("body of instruction %s", name))
	if err != nil {
		return err
	}
	if p.Context == nil {
		p.Context = make(map[string]*Block)
	}
	p.Context[name] = b
	return nil
}

// SetBody replaces the main body. b must be a *Block.
func (p *Program) SetBody(b Statement) error {
	body, err := asBlock(b, "program body")
	if err != nil {
		return err
	}
	p.Body = body
	return nil
}

// Instruction returns the body of the named instruction.
func (p *Program) Instruction(name string) (*Block, bool) {
	b, ok := p.Context[name]
	return b, ok
}

// InstructionNames returns the names of user-defined instructions, sorted.
func (p *Program) InstructionNames() []string {
	names := make([]string, 0, len(p.Context))
	for name := range p.Context {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether p and q have the same name, instructions and body.
func (p *Program) Equal(q *Program) bool {
	if p == nil || q == nil {
		return p == nil && q == nil
	}
	if p.Name != q.Name || len(p.Context) != len(q.Context) {
		return false
	}
	for name, body := range p.Context {
		other, ok := q.Context[name]
		if !ok || !Equal(body, other) {
			return false
		}
	}
	if p.Body == nil || q.Body == nil {
		return p.Body == nil && q.Body == nil
	}
	return Equal(p.Body, q.Body)
}
