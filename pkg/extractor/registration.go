package extractor

import (
	"path/filepath"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/m2ls/pkg/m2"
	"github.com/gnana997/m2ls/pkg/parser"
	"github.com/gnana997/m2ls/pkg/parser/queries"
)

// registrations extracts the ComponentRegistrar::register calls of a registration.php.
func (e *Extractor) registrations(path string, content []byte) ([]RegistrationFact, error) {
	dir := filepath.Dir(path)

	var out []RegistrationFact
	err := e.query(parser.LanguagePHP, queries.QueryTypeRegistration, content, func(_ *ts.Node, matches []queries.QueryMatch) {
		for _, m := range matches {
			args, ok := m.Capture("registrar.arguments")
			if !ok {
				continue
			}
			name, ok := firstStringArgument(args.Node, content)
			if !ok {
				continue
			}
			reg := m2.ParseRegistration(name)
			if reg.Kind == m2.RegistrationUnknown {
				e.logger.Debug("ignoring registration", "path", path, "name", name)
				continue
			}
			out = append(out, RegistrationFact{Registration: reg, Dir: dir})
		}
	})
	return out, err
}

// firstStringArgument returns the first string literal passed in an argument list.
func firstStringArgument(args *ts.Node, content []byte) (string, bool) {
	for i := uint(0); i < args.NamedChildCount(); i++ {
		child := args.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Kind() == "argument" {
			for j := uint(0); j < child.NamedChildCount(); j++ {
				if s, ok := stringLiteral(child.NamedChild(j), content); ok {
					return s, true
				}
			}
			continue
		}
		if s, ok := stringLiteral(child, content); ok {
			return s, true
		}
	}
	return "", false
}

func stringLiteral(node *ts.Node, content []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case "string", "encapsed_string":
		return unquote(node.Utf8Text(content)), true
	default:
		return "", false
	}
}
