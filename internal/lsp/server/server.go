package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	iLsp "github.com/jwtly10/vimcfg/internal/lsp"
	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
)

// Compiler is the full compilation pass run when a document is saved.
type Compiler interface {
	Compile(ctx context.Context) error
}

// CompilerFunc adapts a function to a Compiler.
type CompilerFunc func(ctx context.Context) error

func (f CompilerFunc) Compile(ctx context.Context) error {
	return f(ctx)
}

type Server struct {
	conn *jsonrpc2.Conn
	// tracks canceled request IDs
	cancelMap sync.Map

	// tracking for method request counts
	trackRequestCount sync.Map

	docService *iLsp.DocumentService
	compiler   Compiler

	// latest text of every open document
	mu   sync.Mutex
	open map[lsp.DocumentURI]string
}

type Options struct {
	DocService iLsp.DocumentServiceOptions
	// Optional, recompiles the whole config directory on save
	Compiler Compiler
}

var DefaultServerOptions = Options{
	DocService: iLsp.DefaultDocumentServiceOptions,
}

func NewServer(options Options) *Server {
	return &Server{
		docService: iLsp.NewDocumentService(options.DocService),
		compiler:   options.Compiler,
		open:       make(map[lsp.DocumentURI]string),
	}
}

func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if s.conn == nil {
		s.conn = conn
	}
	slog.Info("received request", "method", req.Method, "id", req.ID)
	reqCount, _ := s.trackRequestCount.LoadOrStore(req.Method, 0)
	if count, ok := reqCount.(int); ok {
		s.trackRequestCount.Store(req.Method, count+1)
	}

	if _, ok := s.cancelMap.Load(req.ID.String()); ok {
		slog.Debug("request was canceled", "id", req.ID)
		s.cancelMap.Delete(req.ID.String())
		return nil, nil
	}

	switch req.Method {
	case "initialize":
		slog.Info("initializing lsp server")

		return lsp.InitializeResult{
			Capabilities: lsp.ServerCapabilities{
				TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
					Options: &lsp.TextDocumentSyncOptions{
						OpenClose: true,
						Change:    lsp.TDSKFull,
						Save:      &lsp.SaveOptions{},
					},
				},
			},
		}, nil

	case "initialized":
		slog.Info("server initialized")
		return nil, nil

	case "shutdown":
		slog.Info("shutting down")
		s.printDebugStats()
		return nil, nil

	case "exit":
		slog.Info("exiting")
		return nil, conn.Close()

	case "textDocument/didOpen":
		var params lsp.DidOpenTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		s.setText(params.TextDocument.URI, params.TextDocument.Text)
		return nil, s.publish(ctx, params.TextDocument.URI, params.TextDocument.Text)

	case "textDocument/didChange":
		var params lsp.DidChangeTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		// Full sync, the last change holds the whole document
		if len(params.ContentChanges) == 0 {
			return nil, nil
		}
		text := params.ContentChanges[len(params.ContentChanges)-1].Text

		s.setText(params.TextDocument.URI, text)
		return nil, s.publish(ctx, params.TextDocument.URI, text)

	case "textDocument/didSave":
		var params lsp.DidSaveTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		if s.compiler == nil {
			return nil, nil
		}

		if err := s.compiler.Compile(ctx); err != nil {
			slog.Error("compile on save failed", "uri", params.TextDocument.URI, "error", err)
			return nil, s.conn.Notify(ctx, "window/showMessage", lsp.ShowMessageParams{
				Type:    lsp.MTError,
				Message: fmt.Sprintf("vimcfg: %s", err),
			})
		}
		return nil, nil

	case "textDocument/didClose":
		var params lsp.DidCloseTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		s.mu.Lock()
		delete(s.open, params.TextDocument.URI)
		s.mu.Unlock()

		return nil, s.SendDiagnostics(ctx, lsp.PublishDiagnosticsParams{
			URI:         params.TextDocument.URI,
			Diagnostics: []lsp.Diagnostic{},
		})

	case "$/cancelRequest":
		var params lsp.CancelParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		slog.Debug("canceling request", "id", params.ID)
		s.cancelMap.Store(params.ID.String(), struct{}{})
		return nil, nil

	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not supported: %s", req.Method),
		}
	}
}

func (s *Server) setText(uri lsp.DocumentURI, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[uri] = text
}

// Text returns the latest known text of an open document.
func (s *Server) Text(uri lsp.DocumentURI) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.open[uri]
	return text, ok
}

func (s *Server) publish(ctx context.Context, uri lsp.DocumentURI, text string) error {
	diagnostics, err := s.docService.Diagnose(uri, text)
	if err != nil {
		return err
	}

	slog.Debug("publishing diagnostics", "uri", uri, "count", len(diagnostics))
	return s.SendDiagnostics(ctx, lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (s *Server) SendDiagnostics(ctx context.Context, params lsp.PublishDiagnosticsParams) error {
	return s.conn.Notify(ctx, "textDocument/publishDiagnostics", params)
}

func (s *Server) printDebugStats() {
	s.trackRequestCount.Range(func(key, value interface{}) bool {
		msg := fmt.Sprintf("Method: %-30s Count: %d", key.(string), value.(int))
		slog.Debug(msg)
		return true
	})
}
