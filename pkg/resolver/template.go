package resolver

import (
	"path/filepath"

	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/m2"
)

// TemplateItem builds a template reference from Module::path as seen from area.
func TemplateItem(id string, area m2.Area) (m2.Item, bool) {
	module, path, ok := m2.SplitTemplateID(id)
	if !ok {
		return m2.Item{}, false
	}
	return m2.Item{Kind: m2.ItemTemplate, Text: id, Module: module, Path: path, Area: area}, true
}

// TemplateLocations returns every existing file a template reference can load:
// the module's own view/<area>/templates for each area candidate, then the
// overrides of the visible themes.
func (r *Resolver) TemplateLocations(item m2.Item) []m2.Location {
	var (
		root   string
		known  bool
		themes []string
	)
	r.index.View(func(rd *index.Reader) {
		root, known = rd.ModulePath(item.Module)
		themes = rd.ThemePaths(item.Area)
	})

	rel := filepath.FromSlash(item.Path)

	var paths []string
	if known {
		for _, c := range item.Area.PathCandidates() {
			paths = append(paths, filepath.Join(root, "view", c, "templates", rel))
		}
	}
	for _, theme := range themes {
		paths = append(paths, filepath.Join(theme, item.Module, "templates", rel))
	}
	return r.existing(paths)
}
