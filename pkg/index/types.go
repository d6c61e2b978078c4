package index

import "github.com/gnana997/m2ls/pkg/m2"

// FactKind identifies the table a fact lives in.
type FactKind int

const (
	FactModule FactKind = iota
	FactModulePath
	FactTheme
	FactJsAlias
	FactJsPath
	FactJsMixin
)

func (k FactKind) String() string {
	switch k {
	case FactModule:
		return "module"
	case FactModulePath:
		return "module_path"
	case FactTheme:
		return "theme"
	case FactJsAlias:
		return "js_alias"
	case FactJsPath:
		return "js_path"
	case FactJsMixin:
		return "js_mixin"
	default:
		return "unknown"
	}
}

// trackee is one provenance entry: which table and key a source wrote.
type trackee struct {
	kind FactKind
	area m2.Area
	key  string
}

func (t trackee) fact() Fact {
	return Fact{Kind: t.kind, Area: t.area, Key: t.key}
}

// Fact is the public form of a provenance entry.
type Fact struct {
	Kind FactKind
	Area m2.Area
	Key  string
}

// DocumentState is the editor lifecycle of a file.
type DocumentState int

const (
	DocNotOpen DocumentState = iota
	DocOpen
	DocModified
	DocClosed
)

func (s DocumentState) String() string {
	switch s {
	case DocOpen:
		return "open"
	case DocModified:
		return "modified"
	case DocClosed:
		return "closed"
	default:
		return "not_open"
	}
}

// Buffer is the live content of an open document.
type Buffer struct {
	Text   string
	Digest uint64
	State  DocumentState
}

// Stats counts the facts currently held.
type Stats struct {
	Modules     int `json:"modules"`
	ModulePaths int `json:"module_paths"`
	Themes      int `json:"themes"`
	JsAliases   int `json:"js_aliases"`
	JsPaths     int `json:"js_paths"`
	JsMixins    int `json:"js_mixins"`
	Sources     int `json:"sources"`
	Buffers     int `json:"buffers"`
	Workspaces  int `json:"workspaces"`
}

// Snapshot is a provenance-free copy of all facts, indexed by area where relevant.
type Snapshot struct {
	Modules     []string
	ModulePaths map[string]string
	Themes      [3]map[string]string
	JsAliases   [3]map[string]string
	JsPaths     [3]map[string]string
	JsMixins    [3]map[string][]string
}
