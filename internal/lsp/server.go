// Package lsp implements a Language Server Protocol server for ArcLang.
// It publishes parse and analysis diagnostics as documents are opened,
// edited, and saved.
package lsp

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/Mbaroudi/arclang-sub001/internal/compiler/lexer"
	"github.com/Mbaroudi/arclang-sub001/internal/compiler/parser"
)

// Server implements the LSP server for ArcLang.
type Server struct {
	conn   jsonrpc2.Conn
	client protocol.Client
	logger *zap.Logger

	capabilities  protocol.ServerCapabilities
	workspaceRoot string

	// documents holds the in-memory text of open files, keyed by URI.
	documents map[protocol.DocumentURI]string
	mu        sync.RWMutex

	cancel context.CancelFunc
}

// NewServer creates a new LSP server instance.
func NewServer(logger *zap.Logger) *Server {
	return &Server{
		logger:    logger,
		documents: make(map[protocol.DocumentURI]string),
		capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save: &protocol.SaveOptions{
					IncludeText: true,
				},
			},
		},
	}
}

// Run serves LSP over stdin/stdout until the context is cancelled or the
// client sends exit.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting ArcLang language server")

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	stream := jsonrpc2.NewStream(stdrwc{})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn
	s.client = protocol.ClientDispatcher(conn, s.logger)

	conn.Go(ctx, s.handler())

	<-ctx.Done()

	s.logger.Info("shutting down ArcLang language server")
	return conn.Close()
}

// handler routes JSON-RPC requests.
func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		switch req.Method() {
		case protocol.MethodInitialize:
			return s.handleInitialize(ctx, reply, req)
		case protocol.MethodInitialized:
			return reply(ctx, nil, nil)
		case protocol.MethodShutdown:
			return reply(ctx, nil, nil)
		case protocol.MethodExit:
			if s.cancel != nil {
				s.cancel()
			}
			return reply(ctx, nil, nil)
		case protocol.MethodTextDocumentDidOpen:
			return s.handleDidOpen(ctx, reply, req)
		case protocol.MethodTextDocumentDidChange:
			return s.handleDidChange(ctx, reply, req)
		case protocol.MethodTextDocumentDidSave:
			return s.handleDidSave(ctx, reply, req)
		case protocol.MethodTextDocumentDidClose:
			return s.handleDidClose(ctx, reply, req)
		default:
			return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
		}
	}
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	if len(params.WorkspaceFolders) > 0 {
		s.workspaceRoot = uri.URI(params.WorkspaceFolders[0].URI).Filename()
		s.logger.Info("workspace opened", zap.String("root", s.workspaceRoot))
	}

	result := protocol.InitializeResult{
		Capabilities: s.capabilities,
		ServerInfo: &protocol.ServerInfo{
			Name:    "arclang-lsp",
			Version: "0.1.0",
		},
	}

	return reply(ctx, result, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.mu.Lock()
	s.documents[params.TextDocument.URI] = params.TextDocument.Text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	// Full sync: the last change carries the whole document.
	if len(params.ContentChanges) > 0 {
		s.mu.Lock()
		s.documents[params.TextDocument.URI] = params.ContentChanges[len(params.ContentChanges)-1].Text
		s.mu.Unlock()
	}

	s.publishDiagnostics(ctx, params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	if params.Text != "" {
		s.mu.Lock()
		s.documents[params.TextDocument.URI] = params.Text
		s.mu.Unlock()
	}

	s.publishDiagnostics(ctx, params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()

	// Clear diagnostics for the closed document.
	s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	return reply(ctx, nil, nil)
}

// publishDiagnostics lexes and parses the current document text and pushes
// the findings to the client.
func (s *Server) publishDiagnostics(ctx context.Context, docURI protocol.DocumentURI) {
	s.mu.RLock()
	text, ok := s.documents[docURI]
	s.mu.RUnlock()
	if !ok {
		return
	}

	diagnostics := Diagnose(text)

	if err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diagnostics,
	}); err != nil {
		s.logger.Warn("failed to publish diagnostics", zap.Error(err))
	}
}

// Diagnose converts lex and parse errors for one document into LSP
// diagnostics.
func Diagnose(text string) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0)

	lex := lexer.New(text)
	tokens, lexErrors := lex.ScanTokens()
	for _, lexErr := range lexErrors {
		diagnostics = append(diagnostics, diagnosticAt(lexErr.Line, lexErr.Column, lexErr.Message))
	}
	if len(lexErrors) > 0 {
		return diagnostics
	}

	p := parser.New(tokens)
	_, parseErrors := p.Parse()
	for _, parseErr := range parseErrors {
		diagnostics = append(diagnostics, diagnosticAt(parseErr.Token.Line, parseErr.Token.Column, parseErr.Message))
	}

	return diagnostics
}

func diagnosticAt(line, column int, message string) protocol.Diagnostic {
	if line < 1 {
		line = 1
	}
	if column < 1 {
		column = 1
	}
	position := protocol.Position{
		Line:      uint32(line - 1),
		Character: uint32(column - 1),
	}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: position, End: position},
		Severity: protocol.DiagnosticSeverityError,
		Source:   "arclang",
		Message:  message,
	}
}

// stdrwc implements io.ReadWriteCloser over stdin/stdout.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
