// Package queries provides tree-sitter query compilation, caching, and execution.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/m2ls/pkg/m2"
	"github.com/gnana997/m2ls/pkg/parser"
	"github.com/gnana997/m2ls/pkg/parser/queries/js"
	"github.com/gnana997/m2ls/pkg/parser/queries/php"
	"github.com/gnana997/m2ls/pkg/parser/queries/xml"
)

// QueryType identifies which query to execute.
type QueryType int

const (
	// QueryTypeRegistration finds component registrations in registration.php
	QueryTypeRegistration QueryType = iota
	// QueryTypeClass finds namespace, class, method and constant declarations
	QueryTypeClass
	// QueryTypeRequireConfig finds map/paths/mixins entries in requirejs-config.js
	QueryTypeRequireConfig
	// QueryTypeDefine finds dependency ids of define()/require() calls
	QueryTypeDefine
	// QueryTypeXMLPosition finds the XML nodes a cursor can sit in
	QueryTypeXMLPosition
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeRegistration:
		return "registration"
	case QueryTypeClass:
		return "class"
	case QueryTypeRequireConfig:
		return "require_config"
	case QueryTypeDefine:
		return "define"
	case QueryTypeXMLPosition:
		return "xml_position"
	default:
		return "unknown"
	}
}

// queryKey uniquely identifies a compiled query (language + type).
type queryKey struct {
	lang  parser.Language
	qtype QueryType
}

// supported lists every query the server runs. Precompile walks it.
var supported = []queryKey{
	{parser.LanguagePHP, QueryTypeRegistration},
	{parser.LanguagePHP, QueryTypeClass},
	{parser.LanguageJavaScript, QueryTypeRequireConfig},
	{parser.LanguageJavaScript, QueryTypeDefine},
	{parser.LanguageXML, QueryTypeXMLPosition},
}

// QueryManager manages tree-sitter query compilation and caching.
//
// Queries are compiled lazily on first use and cached under an RWMutex.
// Precompile compiles all of them up front so a malformed pattern fails at
// startup instead of on the first file that needs it.
//
// Usage:
//
//	qm := NewQueryManager(parserManager, logger)
//	defer qm.Close()
//	if err := qm.Precompile(); err != nil {
//	    return err
//	}
//
//	query, _ := qm.GetQuery(parser.LanguagePHP, QueryTypeClass)
//	matches, err := qm.ExecuteQuery(tree, query, source)
type QueryManager struct {
	parserManager *parser.ParserManager
	cache         map[queryKey]*ts.Query
	mutex         sync.RWMutex
	logger        *slog.Logger
}

// NewQueryManager creates a new query manager.
func NewQueryManager(pm *parser.ParserManager, logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &QueryManager{
		parserManager: pm,
		cache:         make(map[queryKey]*ts.Query),
		logger:        logger,
	}
}

// Precompile compiles every supported query and returns the first failure.
func (qm *QueryManager) Precompile() error {
	for _, key := range supported {
		if _, err := qm.GetQuery(key.lang, key.qtype); err != nil {
			return err
		}
	}
	return nil
}

// GetQuery returns a compiled query for the specified language and type.
func (qm *QueryManager) GetQuery(lang parser.Language, qtype QueryType) (*ts.Query, error) {
	key := queryKey{lang: lang, qtype: qtype}

	qm.mutex.RLock()
	query, exists := qm.cache[key]
	qm.mutex.RUnlock()
	if exists {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	if query, exists = qm.cache[key]; exists {
		return query, nil
	}

	queryString, err := getQueryString(lang, qtype)
	if err != nil {
		return nil, err
	}

	langPtr, err := qm.parserManager.GetLanguagePointer(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to get language pointer for %s: %w", lang, err)
	}

	query, qerr := ts.NewQuery(ts.NewLanguage(langPtr), queryString)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, lang, qerr.Message)
	}

	qm.cache[key] = query
	qm.logger.Debug("compiled query", "language", lang.String(), "type", qtype.String())

	return query, nil
}

func getQueryString(lang parser.Language, qtype QueryType) (string, error) {
	switch {
	case lang == parser.LanguagePHP && qtype == QueryTypeRegistration:
		return php.RegistrationQuery, nil
	case lang == parser.LanguagePHP && qtype == QueryTypeClass:
		return php.ClassQuery, nil
	case lang == parser.LanguageJavaScript && qtype == QueryTypeRequireConfig:
		return js.RequireConfigQuery, nil
	case lang == parser.LanguageJavaScript && qtype == QueryTypeDefine:
		return js.DefineQuery, nil
	case lang == parser.LanguageXML && qtype == QueryTypeXMLPosition:
		return xml.PositionQuery, nil
	default:
		return "", fmt.Errorf("no %s query for language %s", qtype, lang)
	}
}

// ExecuteQuery runs a compiled query on a parse tree and returns structured matches.
//
// Capture nodes are only valid until the tree is closed.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)
	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		captures := make([]QueryCapture, 0, len(match.Captures))
		for _, capture := range match.Captures {
			var captureName string
			if int(capture.Index) < len(captureNames) {
				captureName = captureNames[capture.Index]
			}
			category, field := parseCaptureName(captureName)

			captures = append(captures, QueryCapture{
				Name:     captureName,
				Category: category,
				Field:    field,
				Node:     &capture.Node,
				Text:     capture.Node.Utf8Text(source),
				Location: NodeLocation(&capture.Node),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// Close releases all compiled queries.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	for key, query := range qm.cache {
		if query != nil {
			query.Close()
		}
		delete(qm.cache, key)
	}

	return nil
}

// QueryMatch represents a single pattern match from query execution.
type QueryMatch struct {
	// PatternIndex identifies which query pattern matched
	PatternIndex uint32

	// Captures contains all captured nodes for this match
	Captures []QueryCapture
}

// Capture returns the first capture with the given full name.
func (m QueryMatch) Capture(name string) (QueryCapture, bool) {
	for _, c := range m.Captures {
		if c.Name == name {
			return c, true
		}
	}
	return QueryCapture{}, false
}

// QueryCapture represents a single captured node from a query match.
type QueryCapture struct {
	// Name is the full capture name (e.g., "config.key")
	Name string

	// Category is the part before the dot (e.g., "config")
	Category string

	// Field is the part after the dot (e.g., "key"), empty if there is none
	Field string

	// Node is the captured node, valid while the tree is open
	Node *ts.Node

	// Text is the source text of the captured node
	Text string

	// Location is the span of the captured node
	Location Location
}

// Location is the span of a node: zero-based rows and byte columns, plus byte offsets.
type Location struct {
	StartLine   uint32
	StartColumn uint32
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32
	EndByte     uint32
}

// Range converts the location to a domain range.
func (l Location) Range() m2.Range {
	return m2.Range{
		Start: m2.Position{Line: int(l.StartLine), Character: int(l.StartColumn)},
		End:   m2.Position{Line: int(l.EndLine), Character: int(l.EndColumn)},
	}
}

// Contains reports whether pos falls inside the span (end inclusive).
func (l Location) Contains(pos m2.Position) bool {
	return l.Range().Contains(pos)
}

// parseCaptureName splits "config.key" into ("config", "key").
func parseCaptureName(name string) (category, field string) {
	category, field, _ = strings.Cut(name, ".")
	return category, field
}

// NodeLocation extracts the span of a tree-sitter node.
func NodeLocation(node *ts.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()

	return Location{
		StartLine:   uint32(start.Row),
		StartColumn: uint32(start.Column),
		EndLine:     uint32(end.Row),
		EndColumn:   uint32(end.Column),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}
