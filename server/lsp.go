package server

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/bugsworld/compiler"
	"github.com/chazu/bugsworld/compiler/hash"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "bugsworld-lsp"

var log = commonlog.GetLogger("bugsworld.lsp")

// LspServer provides editor features for BL source files.
type LspServer struct {
	dialect *compiler.Dialect

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server that checks documents against dialect d.
// A nil dialect means the default BugsWorld language.
func NewLSP(d *compiler.Dialect) *LspServer {
	if d == nil {
		d = compiler.DefaultDialect
	}
	s := &LspServer{
		dialect: d,
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentReferences: s.textDocumentReferences,
		TextDocumentFormatting: s.textDocumentFormatting,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "BugsWorld LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.ReferencesProvider = true
	capabilities.DocumentFormattingProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.mu.Lock()
	s.docs = make(map[string]string)
	s.mu.Unlock()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.setDocument(string(uri), text)
	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.setDocument(string(uri), whole.Text)
			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) setDocument(uri, text string) {
	s.mu.Lock()
	s.docs[uri] = text
	s.mu.Unlock()
}

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return s.complete(text, prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return s.hover(text, word), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	text, ok := s.document(uri)
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	if loc := s.definition(uri, text, word); loc != nil {
		return loc, nil
	}
	return nil, nil
}

func (s *LspServer) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	text, ok := s.document(uri)
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return s.references(uri, text, word), nil
}

func (s *LspServer) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return s.format(text), nil
}

// --- Document-backed logic ---

// parse parses text, returning nil when it is not a valid program.
func (s *LspServer) parse(text string) *compiler.Program {
	prog, err := compiler.ParseProgram(text, s.dialect)
	if err != nil {
		return nil
	}
	return prog
}

func (s *LspServer) complete(text, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	seen := make(map[string]bool)

	add := func(label, detail string, kind protocol.CompletionItemKind) {
		if seen[label] || !strings.HasPrefix(strings.ToLower(label), strings.ToLower(prefix)) {
			return
		}
		seen[label] = true
		labelCopy := label
		items = append(items, protocol.CompletionItem{
			Label:      label,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &labelCopy,
		})
	}

	for _, kw := range s.dialect.Keywords() {
		add(kw, "keyword", protocol.CompletionItemKindKeyword)
	}
	for _, c := range compiler.Conditions() {
		add(c.String(), "condition", protocol.CompletionItemKindConstant)
	}
	for _, p := range s.dialect.Primitives() {
		add(p, "primitive instruction", protocol.CompletionItemKindFunction)
	}

	// User instructions come from the declarations in the text, so they
	// complete even while the document does not parse.
	for _, name := range declaredInstructions(s.dialect.Tokenize(text)) {
		add(name, "instruction", protocol.CompletionItemKindMethod)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

// declaredInstructions returns the identifiers following INSTRUCTION.
func declaredInstructions(tokens []compiler.Token) []string {
	var names []string
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Is(compiler.KwInstruction) && tokens[i+1].Kind == compiler.TokenIdentifier {
			names = append(names, tokens[i+1].Literal)
		}
	}
	return names
}

func (s *LspServer) hover(text, word string) *protocol.Hover {
	var b strings.Builder

	switch {
	case s.dialect.IsPrimitive(word):
		fmt.Fprintf(&b, "**%s**\n\nPrimitive instruction.", word)
	case isCondition(word):
		fmt.Fprintf(&b, "**%s**\n\nCondition tested by IF and WHILE.", word)
	case s.dialect.Classify(word) == compiler.TokenKeyword:
		fmt.Fprintf(&b, "**%s**\n\nReserved word.", word)
	default:
		prog := s.parse(text)
		if prog == nil {
			return nil
		}
		body, ok := prog.Instruction(word)
		if !ok {
			if word != prog.Name {
				return nil
			}
			fmt.Fprintf(&b, "**PROGRAM %s**\n\n", prog.Name)
			fmt.Fprintf(&b, "%d instructions, %d primitive calls in the main body\n\n",
				len(prog.Context), compiler.CountPrimitiveCalls(prog.Body, s.dialect))
			fmt.Fprintf(&b, "Content hash: `%s`", hash.Hex(hash.HashProgram(prog, s.dialect))[:16])
			break
		}
		fmt.Fprintf(&b, "**INSTRUCTION %s**\n\n", word)
		fmt.Fprintf(&b, "%d primitive calls, %d call sites\n\n",
			compiler.CountPrimitiveCalls(body, s.dialect), len(s.callsTo(prog, word)))
		b.WriteString("```\n")
		b.WriteString(s.dialect.FormatStatement(body))
		b.WriteString("```")
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

func (s *LspServer) definition(uri protocol.DocumentUri, text, word string) []protocol.Location {
	prog := s.parse(text)
	if prog == nil {
		return nil
	}
	body, ok := prog.Instruction(word)
	if !ok {
		return nil
	}
	return []protocol.Location{{URI: uri, Range: spanRange(text, body.Span())}}
}

func (s *LspServer) references(uri protocol.DocumentUri, text, word string) []protocol.Location {
	prog := s.parse(text)
	if prog == nil {
		return nil
	}
	var locations []protocol.Location
	for _, c := range s.callsTo(prog, word) {
		locations = append(locations, protocol.Location{URI: uri, Range: spanRange(text, c.Span())})
	}
	return locations
}

// callsTo returns every call of name in prog, in source order.
func (s *LspServer) callsTo(prog *compiler.Program, name string) []*compiler.Call {
	var calls []*compiler.Call
	collect := func(st compiler.Statement) bool {
		if c, ok := st.(*compiler.Call); ok && c.Name == name {
			calls = append(calls, c)
		}
		return true
	}
	for _, n := range prog.InstructionNames() {
		compiler.Walk(prog.Context[n], collect)
	}
	compiler.Walk(prog.Body, collect)

	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Span().Start.Offset < calls[j].Span().Start.Offset
	})
	return calls
}

// format returns a single edit replacing text with its canonical layout, or
// nothing when text does not parse or is already canonical.
func (s *LspServer) format(text string) []protocol.TextEdit {
	prog := s.parse(text)
	if prog == nil {
		return nil
	}
	formatted := s.dialect.FormatProgram(prog)
	if formatted == text {
		return nil
	}
	lines := strings.Split(text, "\n")
	end := protocol.Position{
		Line:      protocol.UInteger(len(lines) - 1),
		Character: protocol.UInteger(len([]rune(lines[len(lines)-1]))),
	}
	return []protocol.TextEdit{{
		Range:   protocol.Range{Start: protocol.Position{}, End: end},
		NewText: formatted,
	}}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := s.diagnose(text)
	log.Debugf("%s: %d diagnostics", uri, len(diagnostics))

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnose reports the parse error of text, or the analysis warnings when it
// parses.
func (s *LspServer) diagnose(text string) []protocol.Diagnostic {
	source := lspName
	diagnostics := []protocol.Diagnostic{}

	prog, err := compiler.ParseProgram(text, s.dialect)
	if err != nil {
		severity := protocol.DiagnosticSeverityError
		var (
			synErr *compiler.SyntaxError
			semErr *compiler.SemanticError
			rng    protocol.Range
		)
		switch {
		case errors.As(err, &synErr):
			width := len(synErr.Found)
			if synErr.Found == compiler.EndOfInput {
				width = 0
			}
			rng = tokenRange(text, synErr.Pos, width)
		case errors.As(err, &semErr):
			rng = tokenRange(text, semErr.Pos, len(semErr.Name))
		}
		return append(diagnostics, protocol.Diagnostic{
			Range:    rng,
			Severity: &severity,
			Source:   &source,
			Message:  err.Error(),
		})
	}

	for _, d := range compiler.Analyze(prog, s.dialect) {
		severity := protocol.DiagnosticSeverityWarning
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    tokenRange(text, d.Pos, len(d.Name)),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return diagnostics
}

// --- Position conversion ---

// lspPosition converts a source position in text to an LSP one. LSP
// columns count UTF-16 code units.
func lspPosition(text string, p compiler.Position) protocol.Position {
	off := min(max(p.Offset, 0), len(text))
	lineStart := strings.LastIndexByte(text[:off], '\n') + 1
	return protocol.Position{
		Line:      protocol.UInteger(strings.Count(text[:off], "\n")),
		Character: protocol.UInteger(utf16Len(text[lineStart:off])),
	}
}

// tokenRange covers the width bytes of text starting at p.
func tokenRange(text string, p compiler.Position, width int) protocol.Range {
	end := p
	end.Offset += width
	return protocol.Range{Start: lspPosition(text, p), End: lspPosition(text, end)}
}

func spanRange(text string, sp compiler.Span) protocol.Range {
	return protocol.Range{Start: lspPosition(text, sp.Start), End: lspPosition(text, sp.End)}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16RuneLen(r)
	}
	return n
}

// utf16RuneLen mirrors utf16.RuneLen (Go 1.23+) for older toolchains.
func utf16RuneLen(r rune) int {
	switch {
	case 0 <= r && r < 0xd800, 0xe000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= unicode.MaxRune:
		return 2
	default:
		return -1
	}
}

// --- Text extraction helpers ---

// isWordChar reports whether r can appear in a BL word. Condition names
// contain hyphens.
func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-'
}

func isCondition(word string) bool {
	_, ok := compiler.ParseCondition(word)
	return ok
}

// lineRunes returns the runes of line pos.Line and the rune index of the
// cursor, whose character offset counts UTF-16 code units, clamped to it.
func lineRunes(text string, pos protocol.Position) ([]rune, int, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return nil, 0, false
	}
	line := []rune(strings.TrimSuffix(lines[pos.Line], "\r"))
	col, units := 0, int(pos.Character)
	for col < len(line) && units > 0 {
		units -= utf16RuneLen(line[col])
		col++
	}
	return line, col, true
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	line, col, ok := lineRunes(text, pos)
	if !ok {
		return ""
	}

	// Walk backwards from cursor to find the start of the word
	start := col
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	return string(line[start:col])
}

// extractWord returns the full word under the cursor.
func extractWord(text string, pos protocol.Position) string {
	line, col, ok := lineRunes(text, pos)
	if !ok {
		return ""
	}

	start := col
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(line[end]) {
		end++
	}
	return string(line[start:end])
}

func boolPtr(b bool) *bool {
	return &b
}
