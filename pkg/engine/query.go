package engine

import (
	"path/filepath"
	"time"

	"github.com/gnana997/m2ls/pkg/m2"
	"github.com/gnana997/m2ls/pkg/metrics"
)

// Query names, also used as metric labels.
const (
	queryReference  = "reference"
	queryDefinition = "definition"
	queryCompletion = "completion"
)

// GetReference returns the reference under pos in path. Only JavaScript and
// XML files carry references. The buffer is read when the document is open,
// the file on disk otherwise.
func (e *Engine) GetReference(path string, pos m2.Position) (m2.Item, bool) {
	start := time.Now()
	item, ok := e.reference(filepath.Clean(path), pos)
	metrics.RecordRequest(queryReference, ok, time.Since(start))
	return item, ok
}

func (e *Engine) reference(path string, pos m2.Position) (m2.Item, bool) {
	switch filepath.Ext(path) {
	case ".js":
		content, ok := e.content(path)
		if !ok {
			return m2.Item{}, false
		}
		s, ok := e.ext.JSStringAt(content, pos)
		if !ok {
			return m2.Item{}, false
		}
		return e.resolver.JSItem(s.Text, path)

	case ".xml":
		content, ok := e.content(path)
		if !ok {
			return m2.Item{}, false
		}
		ctx, ok := e.ext.XMLContextAt(content, pos)
		if !ok {
			return m2.Item{}, false
		}
		return e.resolver.XMLItem(path, ctx)
	}
	return m2.Item{}, false
}

// FindDefinition identifies the reference under pos and returns it with every
// existing location it points at. The document is parsed once and the query
// is recorded as a single definition request.
func (e *Engine) FindDefinition(path string, pos m2.Position) (m2.Item, []m2.Location, bool) {
	start := time.Now()

	var locations []m2.Location
	item, ok := e.reference(filepath.Clean(path), pos)
	if ok {
		locations = e.resolver.Locations(item)
	}

	metrics.RecordRequest(queryDefinition, len(locations) > 0, time.Since(start))
	e.logger.Debug("definition", "path", path, "line", pos.Line, "character", pos.Character, "locations", len(locations))
	return item, locations, ok
}

// Definition returns every existing location the reference under pos points at.
func (e *Engine) Definition(path string, pos m2.Position) []m2.Location {
	_, locations, _ := e.FindDefinition(path, pos)
	return locations
}

// GetCompletions returns the candidates for the node under pos in path. It
// reports false when the cursor is not in a completable position.
func (e *Engine) GetCompletions(path string, pos m2.Position) ([]m2.Candidate, bool) {
	start := time.Now()
	candidates, ok := e.completions(filepath.Clean(path), pos)
	metrics.RecordRequest(queryCompletion, ok, time.Since(start))
	return candidates, ok
}

func (e *Engine) completions(path string, pos m2.Position) ([]m2.Candidate, bool) {
	switch filepath.Ext(path) {
	case ".js":
		content, ok := e.content(path)
		if !ok {
			return nil, false
		}
		s, ok := e.ext.JSStringAt(content, pos)
		if !ok {
			return nil, false
		}
		return e.resolver.JSCompletions(path, s)

	case ".xml":
		content, ok := e.content(path)
		if !ok {
			return nil, false
		}
		ctx, ok := e.ext.XMLContextAt(content, pos)
		if !ok {
			return nil, false
		}
		return e.resolver.XMLCompletions(path, ctx)
	}
	return nil, false
}

// content returns the buffer of path, or its content on disk.
func (e *Engine) content(path string) ([]byte, bool) {
	if buf, open := e.buffer(path); open {
		return []byte(buf.Text), true
	}

	text, err := e.fs.ReadFile(path)
	if err != nil {
		e.logger.Debug("failed to read document", "path", path, "error", err)
		return nil, false
	}
	return []byte(text), true
}
