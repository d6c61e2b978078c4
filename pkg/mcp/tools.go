package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool names.
const (
	toolIndexWorkspace = "index_workspace"
	toolOpenDocument   = "open_document"
	toolCloseDocument  = "close_document"
	toolFindDefinition = "find_definition"
	toolGetCompletions = "get_completions"
	toolGetStats       = "get_stats"
)

func positionArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("Zero-based line")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("Zero-based byte column")),
	}
}

func indexWorkspaceTool() mcp.Tool {
	return mcp.NewTool(toolIndexWorkspace,
		mcp.WithDescription("Register a Magento root and index its registrations and RequireJS configs"),
		mcp.WithString("root", mcp.Required(), mcp.Description("Absolute path of the Magento root")),
		mcp.WithBoolean("wait", mcp.Description("Block until indexing finishes (default: true)")),
	)
}

func openDocumentTool() mcp.Tool {
	return mcp.NewTool(toolOpenDocument,
		mcp.WithDescription("Open or replace an in-memory document; its text shadows the file on disk"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Full document text")),
	)
}

func closeDocumentTool() mcp.Tool {
	return mcp.NewTool(toolCloseDocument,
		mcp.WithDescription("Drop an in-memory document"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file")),
	)
}

func findDefinitionTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Identify the Magento reference at a position and return the files it points at"),
	}, positionArgs()...)
	return mcp.NewTool(toolFindDefinition, opts...)
}

func getCompletionsTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Completion candidates for the reference being typed at a position"),
	}, positionArgs()...)
	return mcp.NewTool(toolGetCompletions, opts...)
}

func getStatsTool() mcp.Tool {
	return mcp.NewTool(toolGetStats,
		mcp.WithDescription("Index, scheduler and resolver counters"),
	)
}
