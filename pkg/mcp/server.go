package mcp

import (
	"log/slog"

	"github.com/gnana997/m2ls/pkg/engine"
	"github.com/gnana997/m2ls/pkg/mcplog"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes the engine's indexing, document sync and queries as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	engine    *engine.Engine
	callLog   *mcplog.Logger // nil disables the call log
	logger    *slog.Logger
}

// NewServer creates an MCP server backed by eng. callLog may be nil.
func NewServer(eng *engine.Engine, version string, callLog *mcplog.Logger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{engine: eng, callLog: callLog, logger: logger}

	s.mcpServer = server.NewMCPServer(
		"m2ls",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(s.loggingMiddleware()),
	)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: indexWorkspaceTool(), Handler: s.handleIndexWorkspace},
		server.ServerTool{Tool: openDocumentTool(), Handler: s.handleOpenDocument},
		server.ServerTool{Tool: closeDocumentTool(), Handler: s.handleCloseDocument},
		server.ServerTool{Tool: findDefinitionTool(), Handler: s.handleFindDefinition},
		server.ServerTool{Tool: getCompletionsTool(), Handler: s.handleGetCompletions},
		server.ServerTool{Tool: getStatsTool(), Handler: s.handleGetStats},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp server started")
	return server.ServeStdio(s.mcpServer)
}
