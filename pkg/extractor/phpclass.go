package extractor

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/m2ls/pkg/m2"
	"github.com/gnana997/m2ls/pkg/parser"
	"github.com/gnana997/m2ls/pkg/parser/queries"
	"github.com/gnana997/m2ls/pkg/parser/queries/php"
)

// ParseClass extracts the declaration outline of a PHP class, interface or trait file.
// Ranges cover the declared names. Returns an error when the file declares no type.
func (e *Extractor) ParseClass(path string, content []byte) (*PHPClass, error) {
	cls := &PHPClass{
		Path:      path,
		Methods:   make(map[string]m2.Range),
		Constants: make(map[string]m2.Range),
	}

	var namespace, name string
	found := false
	err := e.query(parser.LanguagePHP, queries.QueryTypeClass, content, func(_ *ts.Node, matches []queries.QueryMatch) {
		for _, m := range matches {
			if len(m.Captures) == 0 {
				continue
			}
			last := m.Captures[len(m.Captures)-1]
			switch m.PatternIndex {
			case php.PatternNamespace:
				namespace = last.Text
			case php.PatternClass, php.PatternInterface, php.PatternTrait:
				if !found {
					name = last.Text
					cls.Range = last.Location.Range()
					found = true
				}
			case php.PatternMethod:
				if _, dup := cls.Methods[last.Text]; !dup && last.Text != "" {
					cls.Methods[last.Text] = last.Location.Range()
				}
			case php.PatternConst:
				if _, dup := cls.Constants[last.Text]; !dup && last.Text != "" {
					cls.Constants[last.Text] = last.Location.Range()
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no class declaration in %s", path)
	}

	cls.FQN = name
	if namespace != "" {
		cls.FQN = namespace + `\` + name
	}
	return cls, nil
}
