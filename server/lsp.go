// Package server provides a Language Server Protocol front end for
// netfsck source files.
package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/netfsck/compiler"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "netfsck-lsp"

// LspServer serves bracket diagnostics, opcode hover and symbol
// completion for netfsck documents.
type LspServer struct {
	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
	log     commonlog.Logger
}

// NewLSP creates a new LSP server.
func NewLSP() *LspServer {
	s := &LspServer{
		docs:    make(map[string]string),
		version: "0.1.0",
		log:     commonlog.GetLogger("netfsck.server"),
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
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
	s.log.Info("initializing", "version", s.version)

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.log.Debug("client ready")
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.log.Info("shutting down")
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

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

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	if _, ok := s.document(params.TextDocument.URI); !ok {
		return nil, nil
	}
	return completionItems(), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return hover(text, params.Position), nil
}

// completionItems offers every symbol of the alphabet.
func completionItems() []protocol.CompletionItem {
	kind := protocol.CompletionItemKindOperator
	var items []protocol.CompletionItem
	for t := compiler.TokenLeft; t <= compiler.TokenSetTimeout; t++ {
		info := compiler.GetOpcodeInfo(tokenOpcode(t))
		label := t.String()
		detail := info.Name
		if t == compiler.TokenEndLoop {
			detail = "END"
		}
		items = append(items, protocol.CompletionItem{
			Label:         label,
			Kind:          &kind,
			Detail:        &detail,
			Documentation: info.Doc,
			InsertText:    &label,
		})
	}
	return items
}

// hover describes the opcode symbol under or just before the cursor.
func hover(text string, pos protocol.Position) *protocol.Hover {
	t, start, ok := symbolAt(text, pos)
	if !ok {
		return nil
	}

	info := compiler.GetOpcodeInfo(tokenOpcode(t))
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** `%s`\n\n%s", info.Name, t, info.Doc)
	if t == compiler.TokenBeginLoop || t == compiler.TokenEndLoop {
		b.WriteString("\n\nLoops are never folded; every other run of one symbol executes as a single instruction.")
	}

	end := start
	end.Character++
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
		Range: &protocol.Range{Start: start, End: end},
	}
}

// tokenOpcode maps both brackets to OpLoop.
func tokenOpcode(t compiler.TokenType) compiler.Opcode {
	if op, ok := t.Opcode(); ok {
		return op
	}
	return compiler.OpLoop
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := diagnose(text)
	s.log.Debug("diagnostics", "uri", string(uri), "count", len(diagnostics))

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnose reports one error per unbalanced bracket, spanning the bracket.
func diagnose(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	for _, be := range compiler.CheckBrackets(text) {
		severity := protocol.DiagnosticSeverityError
		source := lspName
		start := toPosition(text, be.Pos)
		end := start
		end.Character++
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    protocol.Range{Start: start, End: end},
			Severity: &severity,
			Source:   &source,
			Message:  (&compiler.ParseError{Kind: be.Kind}).Error(),
		})
	}
	return diagnostics
}

// --- Position helpers ---

// toPosition converts a source position into a zero-based LSP position
// whose character offset counts UTF-16 code units.
func toPosition(text string, pos compiler.Position) protocol.Position {
	lineStart := strings.LastIndexByte(text[:pos.Offset], '\n') + 1
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(utf16Len(text[lineStart:pos.Offset])),
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// byteOffset maps an LSP position to a byte offset within its line,
// clamped to the line length.
func byteOffset(line string, character protocol.UInteger) int {
	units := 0
	for i, r := range line {
		if units >= int(character) {
			return i
		}
		units += utf16.RuneLen(r)
	}
	return len(line)
}

// symbolAt returns the symbol at the cursor, or the one just before it
// when the cursor sits at the end of a symbol. The returned position is
// where the symbol starts.
func symbolAt(text string, pos protocol.Position) (compiler.TokenType, protocol.Position, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return 0, protocol.Position{}, false
	}
	line := lines[pos.Line]
	col := byteOffset(line, pos.Character)

	if col < len(line) {
		r, _ := utf8.DecodeRuneInString(line[col:])
		if t, ok := compiler.LookupSymbol(r); ok {
			return t, protocol.Position{Line: pos.Line, Character: protocol.UInteger(utf16Len(line[:col]))}, true
		}
	}
	if col > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:col])
		if t, ok := compiler.LookupSymbol(r); ok {
			prev := col - size
			return t, protocol.Position{Line: pos.Line, Character: protocol.UInteger(utf16Len(line[:prev]))}, true
		}
	}
	return 0, protocol.Position{}, false
}

func boolPtr(b bool) *bool {
	return &b
}
