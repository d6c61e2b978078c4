// Package extractor turns one file's syntax tree into index facts and cursor contexts.
package extractor

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/m2ls/pkg/parser"
	"github.com/gnana997/m2ls/pkg/parser/queries"
)

const (
	registrationFile  = "registration.php"
	requireConfigFile = "requirejs-config.js"
)

// Extractor parses a file once per request and runs the dialect's queries on the tree.
//
// Usage:
//
//	ext := NewExtractor(parserManager, queryManager, logger)
//	facts, err := ext.ExtractFacts(path, content)
//	if err != nil {
//	    return err
//	}
//	idx.Update(facts.Apply)
type Extractor struct {
	parserManager *parser.ParserManager
	queryManager  *queries.QueryManager
	logger        *slog.Logger
}

// NewExtractor creates a new extractor.
func NewExtractor(pm *parser.ParserManager, qm *queries.QueryManager, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{
		parserManager: pm,
		queryManager:  qm,
		logger:        logger,
	}
}

// IsIndexable reports whether path is a file that contributes index facts.
func IsIndexable(path string) bool {
	base := filepath.Base(path)
	return base == registrationFile || base == requireConfigFile
}

// ExtractFacts returns the facts contributed by path. Files that contribute
// nothing return empty facts and no error.
func (e *Extractor) ExtractFacts(path string, content []byte) (*Facts, error) {
	facts := &Facts{Path: path}

	var err error
	switch filepath.Base(path) {
	case registrationFile:
		facts.Registrations, err = e.registrations(path, content)
	case requireConfigFile:
		facts.Config, err = e.requireConfig(path, content)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", path, err)
	}

	return facts, nil
}

// query parses content, runs one query and hands the matches to fn while the tree is open.
func (e *Extractor) query(lang parser.Language, qtype queries.QueryType, content []byte, fn func(root *ts.Node, matches []queries.QueryMatch)) error {
	tree, err := e.parserManager.Parse(content, lang)
	if err != nil {
		return err
	}
	defer tree.Close()

	q, err := e.queryManager.GetQuery(lang, qtype)
	if err != nil {
		return err
	}

	matches, err := e.queryManager.ExecuteQuery(tree, q, content)
	if err != nil {
		return err
	}

	fn(tree.RootNode(), matches)
	return nil
}

// unquote strips one pair of matching quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return strings.Trim(s, `'"`)
}
