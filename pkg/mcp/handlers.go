package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/gnana997/m2ls/pkg/m2"
	"github.com/mark3labs/mcp-go/mcp"
)

type referenceResult struct {
	Kind string  `json:"kind"`
	Item m2.Item `json:"item"`
}

type definitionResult struct {
	Reference *referenceResult `json:"reference"`
	Locations []m2.Location    `json:"locations"`
}

type candidateResult struct {
	Label   string    `json:"label"`
	Kind    string    `json:"kind"`
	NewText string    `json:"new_text,omitempty"`
	Range   *m2.Range `json:"range,omitempty"`
}

type completionsResult struct {
	Completable bool              `json:"completable"`
	Candidates  []candidateResult `json:"candidates"`
}

type documentResult struct {
	Path  string `json:"path"`
	State string `json:"state"`
}

type indexResult struct {
	Root       string `json:"root"`
	Registered bool   `json:"registered"`
	Waited     bool   `json:"waited"`
}

func (s *Server) handleIndexWorkspace(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := req.RequireString("root")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !filepath.IsAbs(root) {
		return mcp.NewToolResultError(fmt.Sprintf("root must be an absolute path: %s", root)), nil
	}

	wait := req.GetBool("wait", true)
	result := indexResult{
		Root:       filepath.Clean(root),
		Registered: s.engine.IndexWorkspace(root),
	}
	if wait {
		if err := s.engine.Wait(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
		}
		result.Waited = true
	}
	return jsonResult(result)
}

func (s *Server) handleOpenDocument(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := requirePath(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// opens the document when no buffer exists yet
	s.engine.Change(path, text)
	return jsonResult(documentResult{Path: path, State: s.engine.DocumentState(path).String()})
}

func (s *Server) handleCloseDocument(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := requirePath(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.engine.Close(path)
	return jsonResult(documentResult{Path: path, State: s.engine.DocumentState(path).String()})
}

func (s *Server) handleFindDefinition(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, pos, err := requirePosition(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := definitionResult{Locations: []m2.Location{}}
	if item, locations, ok := s.engine.FindDefinition(path, pos); ok {
		result.Reference = &referenceResult{Kind: item.Kind.String(), Item: item}
		if len(locations) > 0 {
			result.Locations = locations
		}
	}
	return jsonResult(result)
}

func (s *Server) handleGetCompletions(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, pos, err := requirePosition(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	candidates, ok := s.engine.GetCompletions(path, pos)
	result := completionsResult{Completable: ok, Candidates: make([]candidateResult, 0, len(candidates))}
	for _, c := range candidates {
		out := candidateResult{Label: c.Label, Kind: c.Kind.String()}
		if c.Edit != nil {
			r := c.Edit.Range
			out.NewText = c.Edit.NewText
			out.Range = &r
		}
		result.Candidates = append(result.Candidates, out)
	}
	return jsonResult(result)
}

func (s *Server) handleGetStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.engine.Stats())
}

func requirePath(req mcp.CallToolRequest) (string, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("path must be absolute: %s", path)
	}
	return filepath.Clean(path), nil
}

func requirePosition(req mcp.CallToolRequest) (string, m2.Position, error) {
	path, err := requirePath(req)
	if err != nil {
		return "", m2.Position{}, err
	}
	line, err := req.RequireInt("line")
	if err != nil {
		return "", m2.Position{}, err
	}
	character, err := req.RequireInt("character")
	if err != nil {
		return "", m2.Position{}, err
	}
	if line < 0 || character < 0 {
		return "", m2.Position{}, fmt.Errorf("line and character must not be negative")
	}
	return path, m2.Position{Line: line, Character: character}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
