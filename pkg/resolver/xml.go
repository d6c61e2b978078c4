package resolver

import (
	"strings"

	"github.com/gnana997/m2ls/pkg/extractor"
	"github.com/gnana997/m2ls/pkg/m2"
)

// XMLItem interprets the XML node under the cursor of the file at path.
//
//	template="Module::path.phtml"         template
//	method="x" next to class/instance     method of that class
//	Vendor\Class::CONST                   constant
//	component="Vendor_Module/js/x"        JS component
//	Vendor\Class                          class
func (r *Resolver) XMLItem(path string, ctx *extractor.XMLContext) (m2.Item, bool) {
	text := strings.TrimSpace(ctx.Text)
	if text == "" {
		return m2.Item{}, false
	}
	area := m2.AreaOf(path)

	switch {
	case ctx.Attribute == "template" || (strings.Contains(text, "::") && strings.HasSuffix(text, ".phtml")):
		return TemplateItem(text, area)
	case ctx.Attribute == "method":
		class := ctx.Attributes["class"]
		if class == "" {
			class = ctx.Attributes["instance"]
		}
		if class == "" {
			return m2.Item{}, false
		}
		return m2.Item{Kind: m2.ItemMethod, Class: trimClass(class), Member: text, Area: area}, true
	case ctx.Attribute == "component" || isComponentID(text):
		return r.JSItem(text, path)
	case strings.Contains(text, "::"):
		class, constant, _ := strings.Cut(text, "::")
		if class == "" || constant == "" {
			return m2.Item{}, false
		}
		return m2.Item{Kind: m2.ItemConst, Class: trimClass(class), Member: constant, Area: area}, true
	}

	class := trimClass(text)
	if strings.Contains(class, `\`) && m2.IsPartOfClassName(class) {
		return m2.Item{Kind: m2.ItemClass, Class: class, Area: area}, true
	}
	return m2.Item{}, false
}

// isComponentID reports whether text looks like Vendor_Module/path.
func isComponentID(text string) bool {
	first, rest, ok := strings.Cut(text, "/")
	return ok && rest != "" && !strings.Contains(text, `\`) && m2.IsModuleSegment(first)
}

func trimClass(class string) string {
	return strings.TrimPrefix(strings.TrimSpace(class), `\`)
}
