package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/m2ls/pkg/engine"
	"github.com/gnana997/m2ls/pkg/util"
)

type session struct {
	t     *testing.T
	input strings.Builder
	id    int
}

func (s *session) request(method string, params any) int {
	s.id++
	s.send(map[string]any{"jsonrpc": "2.0", "id": s.id, "method": method, "params": params})
	return s.id
}

func (s *session) notify(method string, params any) {
	s.send(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

func (s *session) send(v any) {
	data, err := json.Marshal(v)
	require.NoError(s.t, err)
	s.input.WriteString(frame(string(data)))
}

// run serves the recorded messages and returns the responses by id.
func (s *session) run(srv *Server) (map[int]Response, error) {
	var out bytes.Buffer
	err := srv.Serve(context.Background(), strings.NewReader(s.input.String()), &out)

	responses := map[int]Response{}
	conn := NewConn(&out, nil)
	for {
		body, rerr := conn.readFrame()
		if rerr != nil {
			break
		}
		var resp Response
		require.NoError(s.t, json.Unmarshal(body, &resp))
		var id int
		if json.Unmarshal(resp.ID, &id) == nil {
			responses[id] = resp
		}
	}
	return responses, err
}

func newServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig(), util.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Shutdown() })
	return NewServer(eng, "test", util.NopLogger()), eng
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestServer_Initialize(t *testing.T) {
	srv, eng := newServer(t)
	root := t.TempDir()

	s := &session{t: t}
	id := s.request("initialize", map[string]any{"processId": nil, "rootUri": PathToURI(root)})
	s.notify("initialized", map[string]any{})
	shutdown := s.request("shutdown", nil)
	s.notify("exit", nil)

	responses, err := s.run(srv)
	require.NoError(t, err)

	var result InitializeResult
	require.NoError(t, json.Unmarshal(responses[id].Result, &result))
	assert.True(t, result.Capabilities.DefinitionProvider)
	assert.Equal(t, SyncFull, result.Capabilities.TextDocumentSync.Change)
	assert.True(t, result.Capabilities.TextDocumentSync.OpenClose)
	assert.Equal(t, []string{">", `"`, "'", ":", `\`, "/"}, result.Capabilities.CompletionProvider.TriggerCharacters)
	assert.Equal(t, "m2ls", result.ServerInfo.Name)

	assert.Equal(t, json.RawMessage("null"), responses[shutdown].Result)
	assert.Nil(t, responses[shutdown].Error)

	require.NoError(t, eng.Wait())
	assert.Equal(t, 1, eng.Stats().Index.Workspaces)
}

func TestServer_DefinitionAndCompletion(t *testing.T) {
	srv, eng := newServer(t)

	root := t.TempDir()
	module := filepath.Join(root, "app", "code", "Acme", "Module")
	writeFile(t, filepath.Join(module, "registration.php"), `<?php
use Magento\Framework\Component\ComponentRegistrar;

ComponentRegistrar::register(ComponentRegistrar::MODULE, 'Acme_Module', __DIR__);
`)
	target := filepath.Join(module, "view", "frontend", "web", "js", "menu.js")
	writeFile(t, target, `define([], function () {});`)
	eng.IndexWorkspace(root)
	require.NoError(t, eng.Wait())

	uri := PathToURI(filepath.Join(module, "view", "frontend", "web", "js", "app.js"))
	position := map[string]any{"line": 0, "character": 20}

	s := &session{t: t}
	s.request("initialize", map[string]any{"processId": 1, "rootUri": PathToURI(root)})
	s.notify("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{"uri": uri, "languageId": "javascript", "version": 1, "text": "define(['jquery'], function () {});"},
	})
	s.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": 2},
		"contentChanges": []map[string]any{{"text": "define(['Acme_Module/js/menu'], function () {});"}},
	})
	definition := s.request("textDocument/definition", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     position,
	})
	completion := s.request("textDocument/completion", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     position,
	})
	unknown := s.request("textDocument/hover", map[string]any{})
	s.notify("textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": uri}})
	s.request("shutdown", nil)
	s.notify("exit", nil)

	responses, err := s.run(srv)
	require.NoError(t, err)

	var locations []Location
	require.NoError(t, json.Unmarshal(responses[definition].Result, &locations))
	require.Len(t, locations, 1)
	assert.Equal(t, PathToURI(target), locations[0].URI)

	var items []CompletionItem
	require.NoError(t, json.Unmarshal(responses[completion].Result, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Acme_Module", items[0].Label)
	assert.Equal(t, CompletionKindModule, items[0].Kind)
	require.NotNil(t, items[0].TextEdit)
	assert.Equal(t, "Acme_Module/", items[0].TextEdit.NewText)

	require.NotNil(t, responses[unknown].Error)
	assert.Equal(t, CodeMethodNotFound, responses[unknown].Error.Code)

	assert.Zero(t, eng.Stats().Index.Buffers, "didClose drops the buffer")
}

func TestServer_ExitWithoutShutdown(t *testing.T) {
	srv, _ := newServer(t)

	s := &session{t: t}
	s.notify("exit", nil)

	_, err := s.run(srv)
	assert.ErrorIs(t, err, ErrExitWithoutShutdown)
}

func TestServer_InvalidParams(t *testing.T) {
	srv, _ := newServer(t)

	s := &session{t: t}
	id := s.request("textDocument/definition", "not an object")

	responses, err := s.run(srv)
	require.NoError(t, err, "end of input is a clean stop")
	require.NotNil(t, responses[id].Error)
	assert.Equal(t, CodeInvalidParams, responses[id].Error.Code)
}
