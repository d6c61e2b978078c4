package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gnana997/m2ls/pkg/engine"
)

// ErrExitWithoutShutdown is returned by Serve when the client sent exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// triggerCharacters open completion inside attribute values, define arrays,
// template ids and class names.
var triggerCharacters = []string{">", `"`, "'", ":", `\`, "/"}

// Server answers definition and completion requests from one client.
//
// Requests are served one at a time on the calling goroutine. Document
// sync is applied before the next message is read, so a request always sees
// the edits sent before it.
//
// Usage:
//
//	srv := lsp.NewServer(eng, version, logger)
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    return err
//	}
type Server struct {
	engine  *engine.Engine
	version string
	logger  *slog.Logger

	conn     *Conn
	shutdown bool
}

// NewServer creates a server backed by eng.
func NewServer(eng *engine.Engine, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: eng, version: version, logger: logger}
}

// Serve reads messages from r and writes responses to w until the client
// sends exit, the stream ends or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.conn = NewConn(r, w)
	s.logger.Info("language server started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := s.conn.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("client closed the connection")
				return nil
			}
			var rpcErr *ResponseError
			if errors.As(err, &rpcErr) {
				s.logger.Warn("malformed message", "error", err)
				if werr := s.conn.ReplyError(nil, rpcErr.Code, rpcErr.Message); werr != nil {
					return werr
				}
				continue
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		if msg.Method == "exit" {
			s.logger.Info("language server exiting", "clean", s.shutdown)
			if !s.shutdown {
				return ErrExitWithoutShutdown
			}
			return nil
		}

		if err := s.dispatch(msg); err != nil {
			return err
		}
	}
}

func (s *Server) dispatch(msg *Message) error {
	s.logger.Debug("message", "method", msg.Method, "notification", msg.IsNotification())

	if msg.IsNotification() {
		if err := s.handleNotification(msg); err != nil {
			s.logger.Warn("failed to handle notification", "method", msg.Method, "error", err)
		}
		return nil
	}

	result, rpcErr := s.handleRequest(msg)
	if rpcErr != nil {
		return s.conn.ReplyError(msg.ID, rpcErr.Code, rpcErr.Message)
	}
	return s.conn.Reply(msg.ID, result)
}

func (s *Server) handleRequest(msg *Message) (any, *ResponseError) {
	switch msg.Method {
	case "initialize":
		var params InitializeParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return nil, err
		}
		return s.initialize(params), nil

	case "shutdown":
		s.shutdown = true
		return nil, nil

	case "textDocument/definition":
		var params TextDocumentPositionParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return nil, err
		}
		return s.definition(params), nil

	case "textDocument/completion":
		var params TextDocumentPositionParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return nil, err
		}
		return s.completion(params), nil

	default:
		s.logger.Debug("unhandled request", "method", msg.Method)
		return nil, &ResponseError{Code: CodeMethodNotFound, Message: "method not found: " + msg.Method}
	}
}

func (s *Server) handleNotification(msg *Message) error {
	switch msg.Method {
	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return err
		}
		s.engine.Open(URIToPath(params.TextDocument.URI), params.TextDocument.Text)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return err
		}
		if n := len(params.ContentChanges); n > 0 {
			// full sync: the last change holds the whole document
			s.engine.Change(URIToPath(params.TextDocument.URI), params.ContentChanges[n-1].Text)
		}

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := unmarshalParams(msg.Params, &params); err != nil {
			return err
		}
		s.engine.Close(URIToPath(params.TextDocument.URI))

	case "initialized", "$/cancelRequest", "$/setTrace":
	default:
		s.logger.Debug("unhandled notification", "method", msg.Method)
	}
	return nil
}

func (s *Server) initialize(params InitializeParams) InitializeResult {
	var roots []string
	switch {
	case params.RootURI != "":
		roots = append(roots, URIToPath(params.RootURI))
	case params.RootPath != "":
		roots = append(roots, params.RootPath)
	}
	for _, folder := range params.WorkspaceFolders {
		roots = append(roots, URIToPath(folder.URI))
	}
	for _, root := range roots {
		s.engine.IndexWorkspace(root)
	}

	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TextDocumentSyncOptions{
				OpenClose: true,
				Change:    SyncFull,
			},
			DefinitionProvider: true,
			CompletionProvider: CompletionOptions{
				TriggerCharacters: triggerCharacters,
			},
		},
		ServerInfo: ServerInfo{Name: "m2ls", Version: s.version},
	}
}

func (s *Server) definition(params TextDocumentPositionParams) []Location {
	locations := s.engine.Definition(URIToPath(params.TextDocument.URI), params.Position)

	out := make([]Location, 0, len(locations))
	for _, loc := range locations {
		out = append(out, Location{URI: PathToURI(loc.Path), Range: loc.Range})
	}
	return out
}

func (s *Server) completion(params TextDocumentPositionParams) []CompletionItem {
	candidates, _ := s.engine.GetCompletions(URIToPath(params.TextDocument.URI), params.Position)

	out := make([]CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, completionItem(c))
	}
	return out
}

func unmarshalParams(raw json.RawMessage, v any) *ResponseError {
	if len(raw) == 0 {
		return &ResponseError{Code: CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ResponseError{Code: CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
