package m2

import (
	"strings"
	"unicode"
)

// RegistrationKind is the kind of component a registration call declares.
type RegistrationKind int

const (
	RegistrationUnknown RegistrationKind = iota
	RegistrationModule
	RegistrationLibrary
	RegistrationTheme
)

// Registration is the meaning of the name passed to a component registrar.
type Registration struct {
	Kind RegistrationKind
	// Name is the registered name: Vendor_Module, frontend/Vendor/theme or
	// the namespace of a library.
	Name string
	// Namespace is the class prefix the component answers to, if any.
	Namespace string
}

// ParseRegistration interprets a registrar argument.
//
//	frontend/Vendor/theme -> theme
//	vendor/lib-name       -> library Vendor\Lib\Name
//	Vendor_Module         -> module, namespace Vendor\Module
func ParseRegistration(param string) Registration {
	switch strings.Count(param, "/") {
	case 2:
		return Registration{Kind: RegistrationTheme, Name: param}
	case 1:
		vendor, pkg, _ := strings.Cut(param, "/")
		ns := pascal(vendor) + `\` + strings.Join(pascalParts(pkg), `\`)
		return Registration{Kind: RegistrationLibrary, Name: ns, Namespace: ns}
	}
	if strings.Contains(param, "_") && IsPartOfModuleName(param) {
		return Registration{Kind: RegistrationModule, Name: param, Namespace: NamespaceAlias(param)}
	}
	return Registration{Kind: RegistrationUnknown, Name: param}
}

// ThemeArea splits a theme registration name into its area and the remainder.
func ThemeArea(name string) (Area, string, bool) {
	head, rest, ok := strings.Cut(name, "/")
	if !ok {
		return AreaBase, "", false
	}
	area, ok := ParseArea(head)
	if !ok || area == AreaBase {
		return AreaBase, "", false
	}
	return area, rest, true
}

// NamespaceAlias converts a module name to its class namespace: Vendor_Module -> Vendor\Module.
func NamespaceAlias(module string) string {
	return strings.ReplaceAll(module, "_", `\`)
}

// IsPartOfModuleName reports whether text could be (a prefix of) a module name.
func IsPartOfModuleName(text string) bool {
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// IsPartOfClassName reports whether text could be (a prefix of) a class name.
func IsPartOfClassName(text string) bool {
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\\' {
			return false
		}
	}
	return true
}

// IsModuleSegment reports whether s looks like Vendor_Module: exactly one
// underscore and an uppercase first letter.
func IsModuleSegment(s string) bool {
	if strings.Count(s, "_") != 1 {
		return false
	}
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// SplitTemplateID splits Module::relative/path.phtml.
func SplitTemplateID(id string) (module, path string, ok bool) {
	module, path, ok = strings.Cut(id, "::")
	if !ok || module == "" || path == "" {
		return "", "", false
	}
	return module, path, true
}

func pascalParts(s string) []string {
	head, tail, found := strings.Cut(s, "-")
	if !found {
		return []string{pascal(s)}
	}
	return []string{pascal(head), pascal(tail)}
}

// pascal upper-cases the first letter of every word, dropping separators.
func pascal(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '-' || r == '_' || r == ' ' || r == '.' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
