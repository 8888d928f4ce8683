// Package lsp is a thin stdio JSON-RPC shim over the engine. All
// language semantics live behind the engine façade; this package only
// translates positions, frames messages and publishes diagnostics.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"perlscope/internal/diag"
	"perlscope/internal/engine"
	"perlscope/internal/source"
	"perlscope/internal/symbols"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// Server handles stdio JSON-RPC and delegates every query to the engine.
type Server struct {
	eng    *engine.Engine
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	mu                sync.Mutex
	docs              map[string]string // uri -> mirrored text
	versions          map[string]int
	published         map[string]bool
	workspaceRoot     string
	shutdownRequested bool

	baseCtx context.Context
}

// NewServer constructs a server over the given transport.
func NewServer(eng *engine.Engine, in io.Reader, out io.Writer) *Server {
	return &Server{
		eng:       eng,
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		docs:      make(map[string]string),
		versions:  make(map[string]int),
		published: make(map[string]bool),
	}
}

// Run serves requests until exit or EOF.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		s.startScan()
		return nil
	case "shutdown":
		s.mu.Lock()
		s.shutdownRequested = true
		s.mu.Unlock()
		return s.sendResponse(msg.ID, nil)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/references":
		return s.handleReferences(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/prepareRename":
		return s.handlePrepareRename(msg)
	case "textDocument/rename":
		return s.handleRename(msg)
	case "workspace/symbol":
		return s.handleWorkspaceSymbol(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2, // incremental
			},
			HoverProvider:      true,
			DefinitionProvider: true,
			ReferencesProvider: true,
			CompletionProvider: &completionOptions{
				TriggerCharacters: []string{"$", "@", "%", ":"},
			},
			RenameProvider:          &renameOptions{PrepareProvider: true},
			WorkspaceSymbolProvider: true,
		},
	}
	return s.sendResponse(msg.ID, result)
}

// startScan kicks off the initial workspace scan without blocking the
// message loop; the index reports Building until it completes.
func (s *Server) startScan() {
	s.mu.Lock()
	root := s.workspaceRoot
	s.mu.Unlock()
	if root == "" {
		return
	}
	go func() {
		if _, err := s.eng.Scan(s.baseCtx, root); err != nil {
			s.logf("workspace scan: %v", err)
		}
	}()
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	if err := s.eng.OpenDocument(s.baseCtx, uri, params.TextDocument.Text); err != nil {
		s.logf("open %s: %v", uri, err)
	}
	s.mu.Lock()
	s.docs[uri] = params.TextDocument.Text
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()
	return s.publishDiagnostics(uri)
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	text, known := s.docs[uri]
	s.mu.Unlock()
	if !known {
		return nil
	}

	var lastTicket *engine.Ticket
	for _, change := range params.ContentChanges {
		var edit source.Edit
		if change.Range == nil {
			edit = source.Edit{Start: 0, End: uint32(len(text)), NewText: change.Text}
		} else {
			start := offsetForPosition(text, change.Range.Start)
			end := offsetForPosition(text, change.Range.End)
			if end < start {
				end = start
			}
			edit = source.Edit{Start: uint32(start), End: uint32(end), NewText: change.Text}
		}
		ticket, err := s.eng.ApplyEdit(uri, edit)
		if err != nil {
			s.logf("edit %s: %v", uri, err)
			return nil
		}
		lastTicket = ticket
		text = string(edit.Apply([]byte(text)))
	}

	s.mu.Lock()
	s.docs[uri] = text
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()

	// Diagnostics go out only after the last edit is fully indexed.
	if lastTicket != nil {
		if err := lastTicket.Wait(s.baseCtx); err != nil {
			s.logf("pipeline %s: %v", uri, err)
		}
	}
	return s.publishDiagnostics(uri)
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	if err := s.eng.CloseDocument(uri); err != nil {
		s.logf("close %s: %v", uri, err)
	}
	s.mu.Lock()
	delete(s.docs, uri)
	delete(s.versions, uri)
	hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if hadDiagnostics {
		return s.sendPublish(uri, nil)
	}
	return nil
}

func (s *Server) publishDiagnostics(uri string) error {
	diags, err := s.eng.Diagnostics(uri)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	text := s.docs[uri]
	s.published[uri] = true
	s.mu.Unlock()

	list := make([]lspDiagnostic, 0, len(diags))
	for _, d := range diags {
		list = append(list, lspDiagnostic{
			Range:    rangeForSpan(text, d.Primary),
			Severity: lspSeverity(d.Severity),
			Code:     d.Code.String(),
			Source:   "perlscope",
			Message:  d.Message,
		})
	}
	return s.sendPublish(uri, list)
}

func (s *Server) handleHover(msg *rpcMessage) error {
	uri, off, text, ok := s.resolvePosition(msg)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	info, err := s.eng.Hover(uri, off)
	if err != nil || info == nil {
		return s.sendResponse(msg.ID, nil)
	}
	value := fmt.Sprintf("```perl\n%s %s\n```", info.Detail, info.Name)
	if info.Package != "" {
		value += "\n\npackage " + info.Package
	}
	rng := rangeForSpan(text, info.Span)
	return s.sendResponse(msg.ID, hoverResult{
		Contents: markupContent{Kind: "markdown", Value: value},
		Range:    &rng,
	})
}

func (s *Server) handleDefinition(msg *rpcMessage) error {
	uri, off, _, ok := s.resolvePosition(msg)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	def, found, err := s.eng.Definition(uri, off)
	if err != nil || !found {
		return s.sendResponse(msg.ID, nil)
	}
	target, ok := s.textFor(def.URI)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, lspLocation{
		URI:   def.URI,
		Range: rangeForSpan(target, def.Span),
	})
}

func (s *Server) handleReferences(msg *rpcMessage) error {
	var params referenceParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	text, known := s.docs[uri]
	s.mu.Unlock()
	if !known {
		return s.sendResponse(msg.ID, nil)
	}
	off := uint32(offsetForPosition(text, params.Position))
	locs, partial, err := s.eng.References(uri, off)
	if err != nil {
		return s.sendResponse(msg.ID, nil)
	}
	if partial {
		s.logf("references for %s answered from a partial index", uri)
	}

	var def *source.Span
	if !params.Context.IncludeDeclaration {
		if d, found, err := s.eng.Definition(uri, off); err == nil && found && d.URI == uri {
			def = &d.Span
		}
	}
	out := make([]lspLocation, 0, len(locs))
	for _, loc := range locs {
		if def != nil && loc.URI == uri && loc.Span == *def {
			continue
		}
		target, ok := s.textFor(loc.URI)
		if !ok {
			continue
		}
		out = append(out, lspLocation{URI: loc.URI, Range: rangeForSpan(target, loc.Span)})
	}
	return s.sendResponse(msg.ID, out)
}

func (s *Server) handleCompletion(msg *rpcMessage) error {
	uri, off, _, ok := s.resolvePosition(msg)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	items, err := s.eng.Completions(uri, off)
	if err != nil {
		return s.sendResponse(msg.ID, nil)
	}
	out := make([]completionItem, 0, len(items))
	for _, it := range items {
		out = append(out, completionItem{
			Label:  it.Label,
			Kind:   completionKind(it.Kind),
			Detail: it.Detail,
		})
	}
	return s.sendResponse(msg.ID, out)
}

func (s *Server) handlePrepareRename(msg *rpcMessage) error {
	uri, off, text, ok := s.resolvePosition(msg)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	span, err := s.eng.RenamePrepare(uri, off)
	if err != nil {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, rangeForSpan(text, span))
}

func (s *Server) handleRename(msg *rpcMessage) error {
	var params renameParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	text, known := s.docs[uri]
	s.mu.Unlock()
	if !known {
		return s.sendResponse(msg.ID, nil)
	}
	off := uint32(offsetForPosition(text, params.Position))
	we, err := s.eng.RenameApply(uri, off, params.NewName)
	if err != nil {
		return s.sendError(msg.ID, -32803, err.Error())
	}

	result := workspaceEditResult{Changes: make(map[string][]textEdit)}
	for target, edits := range we.Changes {
		targetText, ok := s.textFor(target)
		if !ok {
			continue
		}
		for _, ed := range edits {
			result.Changes[target] = append(result.Changes[target], textEdit{
				Range: lspRange{
					Start: positionForOffset(targetText, int(ed.Start)),
					End:   positionForOffset(targetText, int(ed.End)),
				},
				NewText: ed.NewText,
			})
		}
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleWorkspaceSymbol(msg *rpcMessage) error {
	var params workspaceSymbolParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	syms := s.eng.WorkspaceSymbols(params.Query)
	out := make([]symbolInformation, 0, len(syms))
	for _, sym := range syms {
		text, ok := s.textFor(sym.Location.URI)
		if !ok {
			continue
		}
		out = append(out, symbolInformation{
			Name: sym.Name,
			Kind: symbolKind(sym.Kind),
			Location: lspLocation{
				URI:   sym.Location.URI,
				Range: rangeForSpan(text, sym.Location.Span),
			},
		})
	}
	return s.sendResponse(msg.ID, out)
}

// resolvePosition decodes textDocument/position params and converts the
// position to a byte offset in the mirrored document text.
func (s *Server) resolvePosition(msg *rpcMessage) (uri string, off uint32, text string, ok bool) {
	var params textDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return "", 0, "", false
	}
	uri = canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	text, known := s.docs[uri]
	s.mu.Unlock()
	if !known {
		return "", 0, "", false
	}
	return uri, uint32(offsetForPosition(text, params.Position)), text, true
}

// textFor returns document text for span rendering: the live mirror for
// open documents, disk content for scan-indexed files.
func (s *Server) textFor(uri string) (string, bool) {
	s.mu.Lock()
	text, ok := s.docs[uri]
	s.mu.Unlock()
	if ok {
		return text, true
	}
	path := uriToPath(uri)
	if path == "" {
		return "", false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(content), true
}

func rangeForSpan(text string, span source.Span) lspRange {
	return lspRange{
		Start: positionForOffset(text, int(span.Start)),
		End:   positionForOffset(text, int(span.End)),
	}
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}

func completionKind(kind string) int {
	switch kind {
	case "sub":
		return 3 // Function
	case "package", "module":
		return 9 // Module
	default:
		return 6 // Variable
	}
}

func symbolKind(kind symbols.SymbolKind) int {
	switch kind {
	case symbols.SymbolSub:
		return 12 // Function
	case symbols.SymbolPackage, symbols.SymbolModule:
		return 4 // Package
	default:
		return 13 // Variable
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	})
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error":   rpcError{Code: code, Message: message},
	})
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	})
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}
