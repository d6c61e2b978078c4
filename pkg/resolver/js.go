package resolver

import (
	"path/filepath"
	"strings"

	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/m2"
)

const textPlugin = "text!"

// ResolveJSID resolves an AMD id as seen from area.
//
// The text! plugin prefix is stripped, the longest paths substitution is
// applied, then the id is followed through the map aliases. Each step looks
// in area first and Base second. An alias cycle stops at the last id reached.
func (r *Resolver) ResolveJSID(area m2.Area, id string) string {
	id = strings.TrimPrefix(id, textPlugin)

	r.index.View(func(rd *index.Reader) {
		id = resolveJS(rd, area, id)
	})
	return id
}

func resolveJS(rd *index.Reader, area m2.Area, id string) string {
	visited := map[string]bool{}
	for {
		id = applyPaths(rd, area, id)
		if visited[id] {
			return id
		}
		visited[id] = true

		target, ok := lookupAlias(rd, area, id)
		if !ok || visited[target] {
			return id
		}
		id = target
	}
}

func lookupAlias(rd *index.Reader, area m2.Area, id string) (string, bool) {
	for _, a := range area.Chain() {
		if target, ok := rd.JsAlias(a, id); ok {
			return target, true
		}
	}
	return "", false
}

// applyPaths substitutes the longest key that equals id or prefixes it at a
// segment boundary.
func applyPaths(rd *index.Reader, area m2.Area, id string) string {
	for _, a := range area.Chain() {
		bestKey, bestValue := "", ""
		rd.RangeJsPaths(a, func(key, value string) bool {
			if len(key) > len(bestKey) && (id == key || strings.HasPrefix(id, key+"/")) {
				bestKey, bestValue = key, value
			}
			return true
		})
		if bestKey != "" {
			return bestValue + id[len(bestKey):]
		}
	}
	return id
}

// Classify turns a resolved JS id into a reference, as seen from the file at fromPath.
// Ids naming an unknown module are not references.
func (r *Resolver) Classify(id, fromPath string) (m2.Item, bool) {
	return r.classify(id, m2.AreaOf(fromPath), filepath.Dir(fromPath))
}

func (r *Resolver) classify(id string, area m2.Area, dir string) (m2.Item, bool) {
	first, rest, hasRest := strings.Cut(id, "/")

	switch {
	case strings.HasSuffix(id, ".html"):
		return r.moduleItem(m2.ItemModHTML, id, first, rest, area)
	case strings.HasPrefix(first, "."):
		return m2.Item{Kind: m2.ItemRelComponent, Text: id, Dir: dir, Area: area}, true
	case hasRest && m2.IsModuleSegment(first):
		return r.moduleItem(m2.ItemModComponent, id, first, rest, area)
	default:
		return m2.Item{Kind: m2.ItemComponent, Text: id, Area: area}, true
	}
}

func (r *Resolver) moduleItem(kind m2.ItemKind, id, module, rest string, area m2.Area) (m2.Item, bool) {
	var (
		root string
		ok   bool
	)
	r.index.View(func(rd *index.Reader) {
		root, ok = rd.ModulePath(module)
	})
	if !ok || rest == "" {
		return m2.Item{}, false
	}
	return m2.Item{Kind: kind, Text: id, Module: module, ModulePath: root, Path: rest, Area: area}, true
}

// JSItem resolves and classifies a JS dependency id written in the file at fromPath.
func (r *Resolver) JSItem(id, fromPath string) (m2.Item, bool) {
	return r.Classify(r.ResolveJSID(m2.AreaOf(fromPath), id), fromPath)
}

// ComponentLocations returns the files a component reference points at,
// followed by the files of the mixins layered on it.
func (r *Resolver) ComponentLocations(item m2.Item) []m2.Location {
	paths := r.componentPaths(item)

	if item.Kind == m2.ItemModComponent || item.Kind == m2.ItemComponent {
		for _, mixin := range r.mixins(item.Area, item.Text) {
			mixinItem, ok := r.classify(r.ResolveJSID(item.Area, mixin), item.Area, item.Dir)
			if !ok {
				continue
			}
			paths = append(paths, r.componentPaths(mixinItem)...)
		}
	}

	return r.existing(paths)
}

// mixins returns the mixin ids registered for id in area, then in Base.
func (r *Resolver) mixins(area m2.Area, id string) []string {
	var out []string
	r.index.View(func(rd *index.Reader) {
		for _, a := range area.Chain() {
			out = append(out, rd.JsMixins(a, id)...)
		}
	})
	return out
}

// componentPaths lists candidate files in lookup order. Existence is checked by the caller.
func (r *Resolver) componentPaths(item m2.Item) []string {
	switch item.Kind {
	case m2.ItemModComponent:
		return r.webPaths(item, withJS(item.Path))
	case m2.ItemModHTML:
		return r.webPaths(item, item.Path)
	case m2.ItemRelComponent:
		return []string{filepath.Join(item.Dir, filepath.FromSlash(withJS(item.Text)))}
	case m2.ItemComponent:
		var out []string
		for _, root := range r.libraryRoots() {
			out = append(out, filepath.Join(root, filepath.FromSlash(withJS(item.Text))))
		}
		return out
	default:
		return nil
	}
}

// webPaths lists <module>/view/<area>/web/<rel> for each area candidate, then
// the theme overrides <theme>/<Module>/web/<rel>.
func (r *Resolver) webPaths(item m2.Item, rel string) []string {
	rel = filepath.FromSlash(rel)

	var out []string
	for _, c := range item.Area.PathCandidates() {
		out = append(out, filepath.Join(item.ModulePath, "view", c, "web", rel))
	}

	var themes []string
	r.index.View(func(rd *index.Reader) {
		themes = rd.ThemePaths(item.Area)
	})
	for _, theme := range themes {
		out = append(out, filepath.Join(theme, item.Module, "web", rel))
	}
	return out
}

func withJS(id string) string {
	if strings.HasSuffix(id, ".js") {
		return id
	}
	return id + ".js"
}
