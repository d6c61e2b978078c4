// Package index implements the provenance-tracked fact store.
//
// Every fact inserted while a source is active is recorded against that
// source, so Retract removes exactly what a file contributed. The index,
// the editor buffers and the registered workspaces share one mutex; callers
// get scoped access through Update and View and must not hold it across I/O
// or parsing.
package index

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/gnana997/m2ls/pkg/m2"
)

// Index is the in-memory store of modules, themes, JS tables, buffers and workspaces.
//
// Usage:
//
//	idx := index.New(logger)
//	idx.Update(func(tx *index.Tx) {
//	    tx.BeginSource("/w/app/code/Acme/Mod/registration.php")
//	    tx.AddModule("Acme_Mod")
//	    tx.AddModulePath("Acme_Mod", "/w/app/code/Acme/Mod")
//	})
//	idx.View(func(r *index.Reader) {
//	    path, ok := r.ModulePath("Acme_Mod")
//	})
type Index struct {
	mu     sync.Mutex
	st     *state
	logger *slog.Logger
}

// owned is a keyed value and the source that wrote it.
type owned struct {
	value  string
	source string
}

type state struct {
	source  string
	tracked map[string][]trackee

	modules     map[string]int
	modulePaths map[string]owned
	themes      [3]map[string]owned
	aliases     [3]map[string]owned
	paths       [3]map[string]owned
	mixins      [3]map[string][]owned

	buffers    map[string]Buffer
	documents  map[string]DocumentState
	workspaces []string
}

func newState() *state {
	st := &state{
		tracked:     make(map[string][]trackee),
		modules:     make(map[string]int),
		modulePaths: make(map[string]owned),
		buffers:     make(map[string]Buffer),
		documents:   make(map[string]DocumentState),
	}
	for _, a := range m2.Areas() {
		st.themes[a] = make(map[string]owned)
		st.aliases[a] = make(map[string]owned)
		st.paths[a] = make(map[string]owned)
		st.mixins[a] = make(map[string][]owned)
	}
	return st
}

// New creates an empty index.
func New(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{st: newState(), logger: logger}
}

// Update runs fn with exclusive write access. The active source is reset when fn returns.
func (ix *Index) Update(fn func(tx *Tx)) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx := &Tx{Reader: Reader{st: ix.st}, logger: ix.logger}
	defer func() { ix.st.source = "" }()
	fn(tx)
}

// View runs fn with read access. Readers and writers share the same lock.
func (ix *Index) View(fn func(r *Reader)) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	fn(&Reader{st: ix.st})
}

// Reader exposes the read side of the index. Only valid inside View or Update.
type Reader struct {
	st *state
}

// ModulePath returns the root directory registered under name.
func (r *Reader) ModulePath(name string) (string, bool) {
	o, ok := r.st.modulePaths[name]
	return o.value, ok
}

// Modules returns the registered module names, sorted.
func (r *Reader) Modules() []string {
	out := make([]string, 0, len(r.st.modules))
	for name := range r.st.modules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ModuleClassPrefixes returns the namespaces of the registered modules, sorted.
func (r *Reader) ModuleClassPrefixes() []string {
	names := r.Modules()
	for i, name := range names {
		names[i] = m2.NamespaceAlias(name)
	}
	return names
}

// ThemePaths returns the roots of the themes visible from area, sorted per area.
// Base sees the frontend themes followed by the adminhtml themes.
func (r *Reader) ThemePaths(area m2.Area) []string {
	var out []string
	for _, a := range themeAreas(area) {
		roots := make([]string, 0, len(r.st.themes[a]))
		for _, o := range r.st.themes[a] {
			roots = append(roots, o.value)
		}
		sort.Strings(roots)
		out = append(out, roots...)
	}
	return out
}

func themeAreas(area m2.Area) []m2.Area {
	switch area {
	case m2.AreaFrontend:
		return []m2.Area{m2.AreaFrontend}
	case m2.AreaAdminhtml:
		return []m2.Area{m2.AreaAdminhtml}
	default:
		return []m2.Area{m2.AreaFrontend, m2.AreaAdminhtml}
	}
}

// JsAlias looks up key in the alias table of area only. Fallback is left to the caller.
func (r *Reader) JsAlias(area m2.Area, key string) (string, bool) {
	o, ok := r.st.aliases[area][key]
	return o.value, ok
}

// JsAliasKeys returns the alias keys of area, sorted.
func (r *Reader) JsAliasKeys(area m2.Area) []string {
	return sortedKeys(r.st.aliases[area])
}

// RangeJsPaths calls fn for every path substitution of area until fn returns false.
func (r *Reader) RangeJsPaths(area m2.Area, fn func(key, value string) bool) {
	for k, o := range r.st.paths[area] {
		if !fn(k, o.value) {
			return
		}
	}
}

// JsMixins returns the mixin ids registered against key in area, in insertion order.
func (r *Reader) JsMixins(area m2.Area, key string) []string {
	entries := r.st.mixins[area][key]
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, o := range entries {
		out[i] = o.value
	}
	return out
}

// Buffer returns the live editor content of path.
func (r *Reader) Buffer(path string) (Buffer, bool) {
	b, ok := r.st.buffers[path]
	return b, ok
}

// DocumentState returns where path is in the editor lifecycle.
func (r *Reader) DocumentState(path string) DocumentState {
	return r.st.documents[path]
}

// HasWorkspace reports whether root is registered.
func (r *Reader) HasWorkspace(root string) bool {
	for _, w := range r.st.workspaces {
		if w == root {
			return true
		}
	}
	return false
}

// Workspaces returns registered roots in registration order.
func (r *Reader) Workspaces() []string {
	return append([]string(nil), r.st.workspaces...)
}

// Tracked returns the facts attributed to source.
func (r *Reader) Tracked(source string) []Fact {
	tracked := r.st.tracked[source]
	out := make([]Fact, len(tracked))
	for i, t := range tracked {
		out[i] = t.fact()
	}
	return out
}

// Stats returns fact counts.
func (r *Reader) Stats() Stats {
	s := Stats{
		Modules:     len(r.st.modules),
		ModulePaths: len(r.st.modulePaths),
		Sources:     len(r.st.tracked),
		Buffers:     len(r.st.buffers),
		Workspaces:  len(r.st.workspaces),
	}
	for _, a := range m2.Areas() {
		s.Themes += len(r.st.themes[a])
		s.JsAliases += len(r.st.aliases[a])
		s.JsPaths += len(r.st.paths[a])
		for _, entries := range r.st.mixins[a] {
			s.JsMixins += len(entries)
		}
	}
	return s
}

// Snapshot returns a copy of every fact without provenance. Two indexes
// holding the same facts produce equal snapshots.
func (r *Reader) Snapshot() Snapshot {
	snap := Snapshot{
		Modules:     r.Modules(),
		ModulePaths: values(r.st.modulePaths),
	}
	for _, a := range m2.Areas() {
		snap.Themes[a] = values(r.st.themes[a])
		snap.JsAliases[a] = values(r.st.aliases[a])
		snap.JsPaths[a] = values(r.st.paths[a])
		snap.JsMixins[a] = make(map[string][]string, len(r.st.mixins[a]))
		for k := range r.st.mixins[a] {
			mixins := r.JsMixins(a, k)
			sort.Strings(mixins)
			snap.JsMixins[a][k] = mixins
		}
	}
	return snap
}

func values(m map[string]owned) map[string]string {
	out := make(map[string]string, len(m))
	for k, o := range m {
		out[k] = o.value
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
