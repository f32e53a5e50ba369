package compiler

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// Semantic analysis: counts and warnings over a parsed program
// ---------------------------------------------------------------------------

// CountPrimitiveCalls returns the number of calls to primitive instructions
// of dialect d in s. Calls to user-defined instructions are not followed.
func CountPrimitiveCalls(s Statement, d *Dialect) int {
	if d == nil {
		d = DefaultDialect
	}
	count := 0
	Walk(s, func(n Statement) bool {
		if c, ok := n.(*Call); ok && d.IsPrimitive(c.Name) {
			count++
		}
		return true
	})
	return count
}

// Diagnostic is a warning found by Analyze. Warnings never make a parsed
// program invalid.
type Diagnostic struct {
	Pos     Position
	Name    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("warning: line %d, column %d: %s", d.Pos.Line, d.Pos.Column, d.Message)
}

// Analyze reports calls to undefined instructions, instructions that are
// never reached from the main body, and instructions that call themselves
// directly or through other instructions.
func Analyze(p *Program, d *Dialect) []Diagnostic {
	if d == nil {
		d = DefaultDialect
	}
	a := &analyzer{prog: p, dialect: d, calls: make(map[string][]*Call)}

	for _, name := range p.InstructionNames() {
		a.calls[name] = a.userCalls(p.Context[name])
	}
	mainCalls := a.userCalls(p.Body)

	a.checkUndefined("main body", mainCalls)
	for _, name := range p.InstructionNames() {
		a.checkUndefined("instruction "+name, a.calls[name])
	}
	a.checkUnused(mainCalls)
	a.checkRecursion()

	sort.SliceStable(a.diags, func(i, j int) bool {
		return a.diags[i].Pos.Offset < a.diags[j].Pos.Offset
	})
	return a.diags
}

type analyzer struct {
	prog    *Program
	dialect *Dialect
	calls   map[string][]*Call // instruction -> non-primitive calls in its body
	diags   []Diagnostic
}

func (a *analyzer) warn(pos Position, name, format string, args ...interface{}) {
	a.diags = append(a.diags, Diagnostic{Pos: pos, Name: name, Message: fmt.Sprintf(format, args...)})
}

// userCalls collects the calls in s that are not primitives.
func (a *analyzer) userCalls(s Statement) []*Call {
	var out []*Call
	Walk(s, func(n Statement) bool {
		if c, ok := n.(*Call); ok && !a.dialect.IsPrimitive(c.Name) {
			out = append(out, c)
		}
		return true
	})
	return out
}

func (a *analyzer) checkUndefined(where string, calls []*Call) {
	for _, c := range calls {
		if _, ok := a.prog.Context[c.Name]; !ok {
			a.warn(c.SpanVal.Start, c.Name, "call to undefined instruction '%s' in %s", c.Name, where)
		}
	}
}

func (a *analyzer) checkUnused(mainCalls []*Call) {
	reached := make(map[string]bool)
	var visit func(calls []*Call)
	visit = func(calls []*Call) {
		for _, c := range calls {
			if reached[c.Name] {
				continue
			}
			if _, ok := a.prog.Context[c.Name]; !ok {
				continue
			}
			reached[c.Name] = true
			visit(a.calls[c.Name])
		}
	}
	visit(mainCalls)

	for _, name := range a.prog.InstructionNames() {
		if !reached[name] {
			a.warn(a.prog.Context[name].SpanVal.Start, name, "instruction '%s' is never used", name)
		}
	}
}

// checkRecursion reports each instruction that lies on a call cycle: a
// member of a strongly connected component of the call graph with more than
// one instruction, or one that calls itself.
func (a *analyzer) checkRecursion() {
	var (
		index   = make(map[string]int)
		low     = make(map[string]int)
		onStack = make(map[string]bool)
		onCycle = make(map[string]bool)
		stack   []string
		next    int
	)

	var connect func(name string)
	connect = func(name string) {
		index[name] = next
		low[name] = next
		next++
		stack = append(stack, name)
		onStack[name] = true

		selfCall := false
		for _, c := range a.calls[name] {
			if _, ok := a.prog.Context[c.Name]; !ok {
				continue
			}
			if c.Name == name {
				selfCall = true
			}
			if _, seen := index[c.Name]; !seen {
				connect(c.Name)
				low[name] = min(low[name], low[c.Name])
			} else if onStack[c.Name] {
				low[name] = min(low[name], index[c.Name])
			}
		}
		if selfCall {
			onCycle[name] = true
		}
		if low[name] != index[name] {
			return
		}

		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == name {
				break
			}
		}
		if len(component) > 1 {
			for _, member := range component {
				onCycle[member] = true
			}
		}
	}

	for _, name := range a.prog.InstructionNames() {
		if _, seen := index[name]; !seen {
			connect(name)
		}
	}
	for _, name := range a.prog.InstructionNames() {
		if onCycle[name] {
			a.warn(a.prog.Context[name].SpanVal.Start, name, "instruction '%s' is recursive", name)
		}
	}
}
