package lsp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func TestConn_Read(t *testing.T) {
	input := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`) +
		"Content-Length: 33\r\nContent-Type: application/vscode-jsonrpc; charset=utf-8\r\n\r\n" +
		`{"jsonrpc":"2.0","method":"exit"}` + " "

	conn := NewConn(strings.NewReader(input), io.Discard)

	msg, err := conn.Read()
	require.NoError(t, err)
	assert.Equal(t, "initialize", msg.Method)
	assert.Equal(t, json.RawMessage("1"), msg.ID)
	assert.False(t, msg.IsNotification())

	msg, err = conn.Read()
	require.NoError(t, err)
	assert.Equal(t, "exit", msg.Method)
	assert.True(t, msg.IsNotification())

	_, err = conn.Read()
	assert.Error(t, err)
}

func TestConn_ReadEOF(t *testing.T) {
	conn := NewConn(strings.NewReader(""), io.Discard)
	_, err := conn.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestConn_ReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid length", "Content-Length: abc\r\n\r\n{}"},
		{"negative length", "Content-Length: -1\r\n\r\n{}"},
		{"malformed header", "garbage\r\n\r\n{}"},
		{"short body", "Content-Length: 100\r\n\r\n{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := NewConn(strings.NewReader(tt.input), io.Discard)
			_, err := conn.Read()
			assert.Error(t, err)
			assert.NotErrorIs(t, err, io.EOF)
		})
	}
}

func TestConn_ReadInvalidJSON(t *testing.T) {
	conn := NewConn(strings.NewReader(frame("{not json")), io.Discard)
	_, err := conn.Read()

	var rpcErr *ResponseError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, CodeParseError, rpcErr.Code)
}

func TestConn_Reply(t *testing.T) {
	var buf bytes.Buffer
	conn := NewConn(strings.NewReader(""), &buf)

	require.NoError(t, conn.Reply(json.RawMessage("7"), nil))

	out := buf.String()
	header, body, ok := strings.Cut(out, "\r\n\r\n")
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("Content-Length: %d", len(body)), header)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":null}`, body)
}

func TestConn_ReplyError(t *testing.T) {
	var buf bytes.Buffer
	conn := NewConn(strings.NewReader(""), &buf)

	require.NoError(t, conn.ReplyError(nil, CodeMethodNotFound, "nope"))

	_, body, _ := strings.Cut(buf.String(), "\r\n\r\n")
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32601,"message":"nope"}}`, body)
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "file:///var/www/app/code/Acme/My%20Module/etc/di.xml",
		PathToURI("/var/www/app/code/Acme/My Module/etc/di.xml"))
	assert.Equal(t, "/var/www/app/code/Acme/My Module/etc/di.xml",
		URIToPath("file:///var/www/app/code/Acme/My%20Module/etc/di.xml"))
	assert.Equal(t, "/plain/path", URIToPath("/plain/path"))
}
