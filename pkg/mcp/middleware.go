package mcp

import (
	"context"
	"time"

	"github.com/gnana997/m2ls/pkg/mcplog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// loggingMiddleware logs every tool call at debug level and, when a call log
// is configured, appends it as a JSONL entry.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)
			elapsed := time.Since(start)

			isError := err != nil || (result != nil && result.IsError)
			s.logger.Debug("tool call",
				"tool", req.Params.Name,
				"duration", elapsed,
				"is_error", isError)

			if s.callLog == nil {
				return result, err
			}

			var errStr *string
			if err != nil {
				msg := err.Error()
				errStr = &msg
			}
			entry := mcplog.Entry{
				Ts:            start.UTC().Format(time.RFC3339),
				Tool:          req.Params.Name,
				Params:        mcplog.SanitizeParams(req.GetArguments()),
				DurationMs:    elapsed.Milliseconds(),
				ResponseBytes: mcplog.ResponseBytes(result),
				IsError:       isError,
				Error:         errStr,
			}
			if werr := s.callLog.Write(entry); werr != nil {
				s.logger.Warn("failed to write call log", "error", werr)
			}

			return result, err
		}
	}
}
