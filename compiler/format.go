package compiler

import (
	"strings"
)

// ---------------------------------------------------------------------------
// Canonical BL formatter
// ---------------------------------------------------------------------------

// FormatProgram renders p as canonical BL source under d: two spaces per
// indentation level, instructions in name order, a blank line between
// sections. The output parses back to an equal program.
func (d *Dialect) FormatProgram(p *Program) string {
	f := &formatter{dialect: d, buf: &strings.Builder{}}
	f.formatProgram(p)
	return f.buf.String()
}

// FormatStatement renders a single statement at indentation level zero.
func (d *Dialect) FormatStatement(s Statement) string {
	f := &formatter{dialect: d, buf: &strings.Builder{}}
	f.formatStatement(s)
	return f.buf.String()
}

// FormatProgram renders p under the default dialect.
func FormatProgram(p *Program) string {
	return DefaultDialect.FormatProgram(p)
}

// formatter walks the AST and emits canonically formatted source.
type formatter struct {
	dialect *Dialect
	indent  int
	buf     *strings.Builder
}

// writeln writes an indented line.
func (f *formatter) writeln(parts ...string) {
	for i := 0; i < f.indent; i++ {
		f.buf.WriteString("  ")
	}
	f.buf.WriteString(strings.Join(parts, " "))
	f.buf.WriteByte('\n')
}

func (f *formatter) newline() {
	f.buf.WriteByte('\n')
}

func (f *formatter) formatProgram(p *Program) {
	f.writeln(KwProgram, p.Name, KwIs)
	f.newline()

	f.indent++
	for _, name := range p.InstructionNames() {
		f.writeln(KwInstruction, name, KwIs)
		f.formatBody(p.Context[name])
		f.writeln(KwEnd, name)
		f.newline()
	}
	f.indent--

	f.writeln(KwBegin)
	f.formatBody(p.Body)
	f.writeln(KwEnd, p.Name)
}

// formatBody writes the statements of b one level deeper.
func (f *formatter) formatBody(b *Block) {
	if b == nil {
		return
	}
	f.indent++
	for _, s := range b.Statements {
		f.formatStatement(s)
	}
	f.indent--
}

func (f *formatter) formatStatement(s Statement) {
	switch n := s.(type) {
	case *Block:
		for _, child := range n.Statements {
			f.formatStatement(child)
		}
	case *Call:
		f.writeln(n.Name)
	case *If:
		f.writeln(f.ifHead(n.Cond)...)
		f.formatBody(n.Body)
		f.writeln(KwEnd, KwIf)
	case *IfElse:
		f.writeln(f.ifHead(n.Cond)...)
		f.formatBody(n.Then)
		f.writeln(KwElse)
		f.formatBody(n.Else)
		f.writeln(KwEnd, KwIf)
	case *While:
		head := []string{KwWhile, n.Cond.String()}
		if f.dialect.connectives {
			head = append(head, KwDo)
		}
		f.writeln(head...)
		f.formatBody(n.Body)
		f.writeln(KwEnd, KwWhile)
	}
}

func (f *formatter) ifHead(c Condition) []string {
	head := []string{KwIf, c.String()}
	if f.dialect.connectives {
		head = append(head, KwThen)
	}
	return head
}
