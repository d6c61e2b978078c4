package index

import (
	"log/slog"

	"github.com/gnana997/m2ls/pkg/m2"
)

// Tx is the write side of the index. Only valid inside Update.
type Tx struct {
	Reader
	logger *slog.Logger
}

// BeginSource attributes subsequent inserts to path. An empty path stops tracking.
func (tx *Tx) BeginSource(path string) {
	tx.st.source = path
}

// AddModule registers a module name.
func (tx *Tx) AddModule(name string) {
	tx.st.modules[name]++
	tx.track(trackee{kind: FactModule, key: name})
}

// AddModulePath maps a module name or namespace to its root. Last write wins.
func (tx *Tx) AddModulePath(name, path string) {
	tx.st.modulePaths[name] = owned{value: path, source: tx.st.source}
	tx.track(trackee{kind: FactModulePath, key: name})
}

// AddThemePath registers a theme root under its registration name.
func (tx *Tx) AddThemePath(area m2.Area, name, path string) {
	tx.st.themes[area][name] = owned{value: path, source: tx.st.source}
	tx.track(trackee{kind: FactTheme, area: area, key: name})
}

// AddJsAlias maps an AMD id to another id in area.
func (tx *Tx) AddJsAlias(area m2.Area, key, target string) {
	tx.st.aliases[area][key] = owned{value: target, source: tx.st.source}
	tx.track(trackee{kind: FactJsAlias, area: area, key: key})
}

// AddJsPath registers a path-prefix substitution in area.
func (tx *Tx) AddJsPath(area m2.Area, key, target string) {
	tx.st.paths[area][key] = owned{value: target, source: tx.st.source}
	tx.track(trackee{kind: FactJsPath, area: area, key: key})
}

// AddJsMixin layers mixin on top of the component key in area.
func (tx *Tx) AddJsMixin(area m2.Area, key, mixin string) {
	tx.st.mixins[area][key] = append(tx.st.mixins[area][key], owned{value: mixin, source: tx.st.source})
	tx.track(trackee{kind: FactJsMixin, area: area, key: key})
}

// Retract removes every fact attributed to source. Unknown sources are a no-op.
func (tx *Tx) Retract(source string) {
	tracked, ok := tx.st.tracked[source]
	if !ok {
		return
	}
	delete(tx.st.tracked, source)

	for _, t := range tracked {
		switch t.kind {
		case FactModule:
			if tx.st.modules[t.key]--; tx.st.modules[t.key] <= 0 {
				delete(tx.st.modules, t.key)
			}
		case FactModulePath:
			deleteOwned(tx.st.modulePaths, t.key, source)
		case FactTheme:
			deleteOwned(tx.st.themes[t.area], t.key, source)
		case FactJsAlias:
			deleteOwned(tx.st.aliases[t.area], t.key, source)
		case FactJsPath:
			deleteOwned(tx.st.paths[t.area], t.key, source)
		case FactJsMixin:
			tx.retractMixins(t.area, t.key, source)
		}
	}

	tx.logger.Debug("retracted facts", "source", source, "facts", len(tracked))
}

// SetBuffer stores the live content of path and moves the document to state.
func (tx *Tx) SetBuffer(path string, buf Buffer) {
	tx.st.buffers[path] = buf
	tx.st.documents[path] = buf.State
}

// DropBuffer forgets the live content of path. Facts are kept.
func (tx *Tx) DropBuffer(path string) {
	delete(tx.st.buffers, path)
	if _, ok := tx.st.documents[path]; ok {
		tx.st.documents[path] = DocClosed
	}
}

// AddWorkspace registers root and reports whether it was new.
func (tx *Tx) AddWorkspace(root string) bool {
	if tx.HasWorkspace(root) {
		return false
	}
	tx.st.workspaces = append(tx.st.workspaces, root)
	return true
}

func (tx *Tx) track(t trackee) {
	if tx.st.source == "" {
		return
	}
	tx.st.tracked[tx.st.source] = append(tx.st.tracked[tx.st.source], t)
}

func (tx *Tx) retractMixins(area m2.Area, key, source string) {
	entries := tx.st.mixins[area][key]
	kept := entries[:0]
	for _, o := range entries {
		if o.source != source {
			kept = append(kept, o)
		}
	}
	if len(kept) == 0 {
		delete(tx.st.mixins[area], key)
		return
	}
	tx.st.mixins[area][key] = kept
}

// deleteOwned removes key only while source still owns it.
func deleteOwned(m map[string]owned, key, source string) {
	if o, ok := m[key]; ok && o.source == source {
		delete(m, key)
	}
}
