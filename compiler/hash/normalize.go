package hash

import (
	"github.com/chazu/bugsworld/compiler"
)

// ---------------------------------------------------------------------------
// AST Normalization: compiler AST → frozen hashing AST
//
// Walks the program from its main body and assigns each user instruction an
// index the first time a call reaches it. The program name and all spans
// are discarded.
// ---------------------------------------------------------------------------

type normalizer struct {
	prog    *compiler.Program
	dialect *compiler.Dialect
	index   map[string]uint16 // instruction name → position in out
	out     []*HBlock
}

// NormalizeProgram transforms a parsed program into a frozen HProgram. A nil
// dialect means compiler.DefaultDialect.
func NormalizeProgram(p *compiler.Program, d *compiler.Dialect) *HProgram {
	if d == nil {
		d = compiler.DefaultDialect
	}
	n := &normalizer{prog: p, dialect: d, index: make(map[string]uint16)}
	body := n.normalizeBlock(p.Body)
	return &HProgram{Instructions: n.out, Body: body}
}

// NormalizeStatement transforms a single statement. Calls to names that are
// not primitives are kept by name.
func NormalizeStatement(s compiler.Statement, d *compiler.Dialect) HNode {
	if d == nil {
		d = compiler.DefaultDialect
	}
	n := &normalizer{prog: compiler.NewProgram(), dialect: d, index: make(map[string]uint16)}
	return n.normalizeStmt(s)
}

func (n *normalizer) normalizeBlock(b *compiler.Block) *HBlock {
	hb := &HBlock{}
	if b == nil {
		return hb
	}
	hb.Statements = make([]HNode, len(b.Statements))
	for i, s := range b.Statements {
		hb.Statements[i] = n.normalizeStmt(s)
	}
	return hb
}

func (n *normalizer) normalizeStmt(s compiler.Statement) HNode {
	switch s := s.(type) {
	case *compiler.Block:
		return n.normalizeBlock(s)
	case *compiler.If:
		return &HIf{Cond: uint8(s.Cond), Body: n.normalizeBlock(s.Body)}
	case *compiler.IfElse:
		return &HIfElse{Cond: uint8(s.Cond), Then: n.normalizeBlock(s.Then), Else: n.normalizeBlock(s.Else)}
	case *compiler.While:
		return &HWhile{Cond: uint8(s.Cond), Body: n.normalizeBlock(s.Body)}
	case *compiler.Call:
		return n.normalizeCall(s.Name)
	}
	return &HBlock{}
}

func (n *normalizer) normalizeCall(name string) HNode {
	if n.dialect.IsPrimitive(name) {
		return &HPrimitiveCall{Name: name}
	}
	if idx, ok := n.index[name]; ok {
		return &HInstructionRef{Index: idx}
	}
	body, ok := n.prog.Instruction(name)
	if !ok {
		return &HUndefinedCall{Name: name}
	}
	// Reserve the slot before descending so recursive calls resolve to it.
	idx := uint16(len(n.out))
	n.index[name] = idx
	n.out = append(n.out, nil)
	n.out[idx] = n.normalizeBlock(body)
	return &HInstructionRef{Index: idx}
}
