package engine

import (
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/gnana997/m2ls/pkg/extractor"
	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/metrics"
)

// Document sync events, also used as metric labels.
const (
	eventOpen   = "open"
	eventChange = "change"
	eventClose  = "close"
)

// Open buffers the editor content of path and extracts its facts.
func (e *Engine) Open(path, text string) {
	path = filepath.Clean(path)
	metrics.RecordDocument(eventOpen)
	e.setDocument(path, text, index.DocOpen)
}

// Change replaces the buffered content of path. The facts previously
// contributed by path are retracted before the new ones are inserted. A
// change to a document that is not open behaves like Open.
func (e *Engine) Change(path, text string) {
	path = filepath.Clean(path)
	metrics.RecordDocument(eventChange)

	next := index.DocModified
	if _, open := e.buffer(path); !open {
		next = index.DocOpen
	}
	e.setDocument(path, text, next)
}

// Close drops the buffer of path. Facts stay, the file still exists on disk.
func (e *Engine) Close(path string) {
	path = filepath.Clean(path)
	metrics.RecordDocument(eventClose)

	e.index.Update(func(tx *index.Tx) {
		tx.DropBuffer(path)
	})
	if filepath.Ext(path) == ".php" {
		e.resolver.InvalidateClass(path)
	}
}

// DocumentState returns where path is in the document lifecycle.
func (e *Engine) DocumentState(path string) index.DocumentState {
	var state index.DocumentState
	e.index.View(func(r *index.Reader) {
		state = r.DocumentState(filepath.Clean(path))
	})
	return state
}

func (e *Engine) setDocument(path, text string, state index.DocumentState) {
	digest := xxhash.Sum64String(text)
	buf := index.Buffer{Text: text, Digest: digest, State: state}

	if prev, open := e.buffer(path); open && prev.Digest == digest {
		e.logger.Debug("document unchanged", "path", path, "state", state.String())
		e.index.Update(func(tx *index.Tx) {
			tx.SetBuffer(path, buf)
		})
		return
	}

	// parse outside the lock
	var facts *extractor.Facts
	indexable := extractor.IsIndexable(path)
	if indexable {
		var err error
		facts, err = e.ext.ExtractFacts(path, []byte(text))
		if err != nil {
			e.logger.Warn("failed to extract document", "path", path, "error", err)
		}
	}

	e.index.Update(func(tx *index.Tx) {
		tx.SetBuffer(path, buf)
		switch {
		case facts != nil:
			facts.Apply(tx)
		case indexable:
			tx.Retract(path)
		}
	})

	if filepath.Ext(path) == ".php" {
		e.resolver.InvalidateClass(path)
	}
	e.logger.Debug("document synced", "path", path, "state", state.String(), "indexed", facts != nil)
}

func (e *Engine) buffer(path string) (index.Buffer, bool) {
	var (
		buf  index.Buffer
		open bool
	)
	e.index.View(func(r *index.Reader) {
		buf, open = r.Buffer(path)
	})
	return buf, open
}
