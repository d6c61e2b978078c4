// Package m2 holds the platform's domain model: areas, references, positions and
// the path and naming rules shared by the extractors and the resolver.
package m2

import (
	"path/filepath"
	"strings"
)

// Area is a rendering context scoping theme and alias lookup.
type Area int

const (
	// AreaFrontend is the storefront area (view/frontend, design/frontend)
	AreaFrontend Area = iota
	// AreaAdminhtml is the admin panel area (view/adminhtml, design/adminhtml)
	AreaAdminhtml
	// AreaBase is shared by both areas and is their fallback
	AreaBase
)

// Areas returns all areas in table order.
func Areas() []Area {
	return []Area{AreaFrontend, AreaAdminhtml, AreaBase}
}

// String returns the directory name used for the area on disk.
func (a Area) String() string {
	switch a {
	case AreaFrontend:
		return "frontend"
	case AreaAdminhtml:
		return "adminhtml"
	default:
		return "base"
	}
}

// PathCandidates returns the view directories searched for the area, most specific first.
//
// Base is used when the context is ambiguous, so it searches every area.
func (a Area) PathCandidates() []string {
	switch a {
	case AreaFrontend:
		return []string{"frontend", "base"}
	case AreaAdminhtml:
		return []string{"adminhtml", "base"}
	default:
		return []string{"frontend", "adminhtml", "base"}
	}
}

// Fallback returns the area consulted when a lookup misses. Base has none.
func (a Area) Fallback() (Area, bool) {
	switch a {
	case AreaFrontend, AreaAdminhtml:
		return AreaBase, true
	default:
		return AreaBase, false
	}
}

// Chain returns the area followed by its fallbacks.
func (a Area) Chain() []Area {
	chain := []Area{a}
	for cur := a; ; {
		next, ok := cur.Fallback()
		if !ok {
			return chain
		}
		chain = append(chain, next)
		cur = next
	}
}

// ParseArea converts a directory name to an Area.
func ParseArea(s string) (Area, bool) {
	switch strings.ToLower(s) {
	case "frontend":
		return AreaFrontend, true
	case "adminhtml":
		return AreaAdminhtml, true
	case "base":
		return AreaBase, true
	default:
		return AreaBase, false
	}
}

// AreaOf derives the area of a source file from its path.
func AreaOf(path string) Area {
	switch {
	case HasComponents(path, "view", "base"), HasComponents(path, "design", "base"):
		return AreaBase
	case HasComponents(path, "view", "frontend"), HasComponents(path, "design", "frontend"):
		return AreaFrontend
	case HasComponents(path, "view", "adminhtml"), HasComponents(path, "design", "adminhtml"):
		return AreaAdminhtml
	default:
		return AreaBase
	}
}

// HasComponents reports whether parts occur as a contiguous run of path elements.
func HasComponents(path string, parts ...string) bool {
	if len(parts) == 0 {
		return true
	}
	elems := splitPath(path)
	for i := 0; i+len(parts) <= len(elems); i++ {
		match := true
		for j, p := range parts {
			if elems[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// IsTest reports whether the path belongs to the platform's test tree.
func IsTest(path string) bool {
	return HasComponents(path, "dev", "tests")
}

func splitPath(path string) []string {
	path = filepath.ToSlash(path)
	var elems []string
	for _, e := range strings.Split(path, "/") {
		if e != "" {
			elems = append(elems, e)
		}
	}
	return elems
}
