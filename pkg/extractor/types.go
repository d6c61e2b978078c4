package extractor

import (
	"strings"

	"github.com/gnana997/m2ls/pkg/m2"
)

// Facts are everything one file contributes to the index.
type Facts struct {
	// Path is the source file the facts are attributed to
	Path          string
	Registrations []RegistrationFact
	Config        []ConfigEntry
}

// Empty reports whether the file contributed nothing.
func (f *Facts) Empty() bool {
	return len(f.Registrations) == 0 && len(f.Config) == 0
}

// RegistrationFact is one component registrar call.
type RegistrationFact struct {
	m2.Registration
	// Dir is the component root: the directory holding registration.php
	Dir string
}

// ConfigKind is the requirejs-config section an entry came from.
type ConfigKind int

const (
	ConfigMap ConfigKind = iota
	ConfigPath
	ConfigMixin
)

func (k ConfigKind) String() string {
	switch k {
	case ConfigMap:
		return "map"
	case ConfigPath:
		return "paths"
	default:
		return "mixins"
	}
}

// ConfigEntry is one map/paths/mixins entry of a requirejs-config.js.
type ConfigEntry struct {
	Kind  ConfigKind
	Area  m2.Area
	Key   string
	Value string
}

// PHPClass is the declaration outline of a PHP class file.
type PHPClass struct {
	FQN       string
	Path      string
	Range     m2.Range
	Methods   map[string]m2.Range
	Constants map[string]m2.Range
}

// JSString is the string literal of a define()/require() dependency array.
type JSString struct {
	// Text is the literal without quotes
	Text string
	// Range covers the literal without quotes
	Range m2.Range
}

// XMLContext describes the XML node under a cursor.
type XMLContext struct {
	// Path is the element chain from the root, e.g. /config/type/arguments/argument,
	// with [@attr] appended when the cursor is in an attribute value
	Path string
	// Tag is the innermost element name
	Tag string
	// Attribute is the attribute the cursor is in, empty for text
	Attribute string
	// Attributes holds the attributes of the innermost element
	Attributes map[string]string
	// Text is the attribute value or trimmed text content
	Text string
	// Range covers Text
	Range m2.Range
}

// MatchPath reports whether the context path ends with suffix.
func (c *XMLContext) MatchPath(suffix string) bool {
	return strings.HasSuffix(c.Path, suffix)
}
