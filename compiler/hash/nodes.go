package hash

// ---------------------------------------------------------------------------
// Frozen hashing AST types.
//
// These are stripped-down parallels of compiler/ast.go with no position data
// and positional indices instead of instruction names. Two programs that
// differ only in how their instructions are named produce identical hashing
// ASTs.
// ---------------------------------------------------------------------------

// HNode is the interface implemented by all hashing AST nodes.
type HNode interface {
	hnode() // marker method
}

// HProgram is a normalized program. Instructions are listed in the order
// they are first reached from Body; unreachable instructions are dropped.
type HProgram struct {
	Instructions []*HBlock
	Body         *HBlock
}

type HBlock struct{ Statements []HNode }

type HIf struct {
	Cond uint8
	Body *HBlock
}

type HIfElse struct {
	Cond uint8
	Then *HBlock
	Else *HBlock
}

type HWhile struct {
	Cond uint8
	Body *HBlock
}

// HPrimitiveCall calls a primitive by name.
type HPrimitiveCall struct{ Name string }

// HInstructionRef calls a user instruction by its index in
// HProgram.Instructions.
type HInstructionRef struct{ Index uint16 }

// HUndefinedCall calls a name that is neither a primitive nor defined.
type HUndefinedCall struct{ Name string }

func (*HProgram) hnode()        {}
func (*HBlock) hnode()          {}
func (*HIf) hnode()             {}
func (*HIfElse) hnode()         {}
func (*HWhile) hnode()          {}
func (*HPrimitiveCall) hnode()  {}
func (*HInstructionRef) hnode() {}
func (*HUndefinedCall) hnode()  {}
