package extractor

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/m2ls/pkg/m2"
	"github.com/gnana997/m2ls/pkg/parser"
	"github.com/gnana997/m2ls/pkg/parser/queries"
	"github.com/gnana997/m2ls/pkg/parser/queries/js"
)

var sectionKinds = map[uint32]struct {
	section string
	kind    ConfigKind
}{
	js.PatternMap:    {"map", ConfigMap},
	js.PatternPaths:  {"paths", ConfigPath},
	js.PatternMixins: {"mixins", ConfigMixin},
}

// requireConfig extracts map, paths and mixins entries. The area comes from the file's location.
func (e *Extractor) requireConfig(path string, content []byte) ([]ConfigEntry, error) {
	area := m2.AreaOf(path)

	var out []ConfigEntry
	err := e.query(parser.LanguageJavaScript, queries.QueryTypeRequireConfig, content, func(_ *ts.Node, matches []queries.QueryMatch) {
		for _, m := range matches {
			want, ok := sectionKinds[m.PatternIndex]
			if !ok {
				continue
			}
			section, _ := m.Capture("config.section")
			if unquote(section.Text) != want.section {
				continue
			}
			key, okKey := m.Capture("config.key")
			value, okValue := m.Capture("config.value")
			if !okKey || !okValue {
				continue
			}
			out = append(out, ConfigEntry{
				Kind:  want.kind,
				Area:  area,
				Key:   unquote(key.Text),
				Value: unquote(value.Text),
			})
		}
	})
	return out, err
}
