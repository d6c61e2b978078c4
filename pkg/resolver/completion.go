package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnana997/m2ls/pkg/extractor"
	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/m2"
)

// classPositions are the XML paths whose attribute or text holds a class name.
var classPositions = []string{
	"preference[@for]",
	"preference[@type]",
	"type[@name]",
	"virtualType[@type]",
	"[@class]",
	"[@instance]",
	"/type/arguments/argument",
	"/virtualType/arguments/argument",
}

// XMLCompletions returns candidates for the XML node under the cursor of the file at path.
func (r *Resolver) XMLCompletions(path string, ctx *extractor.XMLContext) ([]m2.Candidate, bool) {
	switch {
	case ctx.MatchPath("[@template]"):
		return r.templateCompletions(ctx.Text, ctx.Range, m2.AreaOf(path))
	case ctx.MatchPath("/config/event[@name]") && filepath.Base(path) == "events.xml":
		return eventCandidates(ctx.Range), true
	}

	for _, p := range classPositions {
		if ctx.MatchPath(p) {
			return r.classCompletions(ctx.Text, ctx.Range)
		}
	}
	return nil, false
}

// JSCompletions returns the ids that can be written in a define() dependency
// string of the file at path: the aliases visible from its area and module
// names followed by a slash.
func (r *Resolver) JSCompletions(path string, s extractor.JSString) ([]m2.Candidate, bool) {
	area := m2.AreaOf(path)

	var aliases, modules []string
	r.index.View(func(rd *index.Reader) {
		for _, a := range area.Chain() {
			aliases = append(aliases, rd.JsAliasKeys(a)...)
		}
		modules = rd.Modules()
	})

	seen := make(map[string]bool, len(aliases))
	out := make([]m2.Candidate, 0, len(aliases)+len(modules))
	for _, alias := range aliases {
		if seen[alias] {
			continue
		}
		seen[alias] = true
		out = append(out, candidate(alias, m2.CandidateComponent, alias, s.Range))
	}
	for _, module := range modules {
		out = append(out, candidate(module, m2.CandidateModule, module+"/", s.Range))
	}
	return out, true
}

func (r *Resolver) templateCompletions(text string, rng m2.Range, area m2.Area) ([]m2.Candidate, bool) {
	if text == "" || m2.IsPartOfModuleName(text) {
		var modules []string
		r.index.View(func(rd *index.Reader) {
			modules = rd.Modules()
		})
		out := make([]m2.Candidate, 0, len(modules))
		for _, module := range modules {
			out = append(out, candidate(module, m2.CandidateModule, module+"::", rng))
		}
		return out, true
	}

	module, _, ok := strings.Cut(text, "::")
	if !ok {
		return nil, false
	}

	var (
		root  string
		known bool
	)
	r.index.View(func(rd *index.Reader) {
		root, known = rd.ModulePath(module)
	})
	if !known {
		return nil, false
	}

	seen := map[string]bool{}
	var files []string
	for _, c := range area.PathCandidates() {
		dir := filepath.Join(root, "view", c, "templates")
		for p, err := range r.fs.Glob(dir, "**/*.phtml") {
			if err != nil {
				r.logger.Debug("template glob failed", "dir", dir, "error", err)
				break
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if !seen[rel] {
				seen[rel] = true
				files = append(files, rel)
			}
		}
	}
	sort.Strings(files)

	out := make([]m2.Candidate, 0, len(files))
	for _, f := range files {
		out = append(out, candidate(f, m2.CandidateFile, module+"::"+f, rng))
	}
	return out, true
}

// classCompletions offers module namespaces while the first segments are
// typed, then the classes of the module the typed namespace names.
func (r *Resolver) classCompletions(text string, rng m2.Range) ([]m2.Candidate, bool) {
	text = strings.TrimLeft(strings.TrimSpace(text), `\`)
	separators := strings.Count(text, `\`)

	switch {
	case text == "" || (separators == 0 && m2.IsPartOfClassName(text)):
		return r.classPrefixes(rng), true
	case separators == 1:
		return append(r.classPrefixes(rng), r.moduleClasses(text, rng)...), true
	case separators >= 2:
		return r.moduleClasses(text, rng), true
	default:
		return nil, false
	}
}

func (r *Resolver) classPrefixes(rng m2.Range) []m2.Candidate {
	var prefixes []string
	r.index.View(func(rd *index.Reader) {
		prefixes = rd.ModuleClassPrefixes()
	})
	out := make([]m2.Candidate, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, candidate(p, m2.CandidateClass, p, rng))
	}
	return out
}

// moduleClasses lists the classes under the module named by the first two
// segments of text that start with the typed namespace.
func (r *Resolver) moduleClasses(text string, rng m2.Range) []m2.Candidate {
	parts := strings.Split(text, `\`)
	namespace := parts[0] + `\` + parts[1]
	typed := strings.Join(parts[:len(parts)-1], `\`)

	var (
		root  string
		known bool
	)
	r.index.View(func(rd *index.Reader) {
		root, known = rd.ModulePath(namespace)
	})
	if !known {
		return nil
	}

	var out []m2.Candidate
	for p, err := range r.fs.Glob(root, "**/*.php") {
		if err != nil {
			r.logger.Debug("class glob failed", "root", root, "error", err)
			break
		}
		if filepath.Base(p) == "registration.php" || m2.IsTest(p) {
			continue
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		rel = strings.TrimSuffix(rel, ".php")
		class := namespace + `\` + strings.ReplaceAll(filepath.ToSlash(rel), "/", `\`)
		if !strings.HasPrefix(class, typed) {
			continue
		}
		out = append(out, candidate(class, m2.CandidateClass, class, rng))
	}
	return out
}

func candidate(label string, kind m2.CandidateKind, text string, rng m2.Range) m2.Candidate {
	return m2.Candidate{Label: label, Kind: kind, Edit: &m2.TextEdit{Range: rng, NewText: text}}
}
