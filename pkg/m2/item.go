package m2

import "fmt"

// ItemKind classifies what a reference under the cursor points at.
type ItemKind int

const (
	// ItemComponent is an opaque library component resolved against library roots
	ItemComponent ItemKind = iota
	// ItemModComponent is a JS component inside a module's web directories
	ItemModComponent
	// ItemModHTML is an HTML partial inside a module's web directories
	ItemModHTML
	// ItemRelComponent is a JS component relative to the referencing file
	ItemRelComponent
	// ItemClass is a PHP class or interface
	ItemClass
	// ItemMethod is a public method of a PHP class
	ItemMethod
	// ItemConst is a class constant
	ItemConst
	// ItemTemplate is a Module::path.phtml template
	ItemTemplate
)

func (k ItemKind) String() string {
	switch k {
	case ItemComponent:
		return "component"
	case ItemModComponent:
		return "module_component"
	case ItemModHTML:
		return "module_html"
	case ItemRelComponent:
		return "relative_component"
	case ItemClass:
		return "class"
	case ItemMethod:
		return "method"
	case ItemConst:
		return "const"
	case ItemTemplate:
		return "template"
	default:
		return "unknown"
	}
}

// Item is a reference identified at a cursor position.
//
// Which fields are set depends on Kind:
//
//	ItemComponent     Text (library id)
//	ItemModComponent  Text, Module, ModulePath, Path (inside view/<area>/web, no extension)
//	ItemModHTML       Text, Module, ModulePath, Path
//	ItemRelComponent  Text (relative id), Dir
//	ItemClass         Class
//	ItemMethod        Class, Member
//	ItemConst         Class, Member
//	ItemTemplate      Text (Module::path), Module, Path
//
// Area is the area of the referencing file.
type Item struct {
	Kind       ItemKind `json:"kind"`
	Text       string   `json:"text,omitempty"`
	Module     string   `json:"module,omitempty"`
	ModulePath string   `json:"module_path,omitempty"`
	Path       string   `json:"path,omitempty"`
	Dir        string   `json:"dir,omitempty"`
	Class      string   `json:"class,omitempty"`
	Member     string   `json:"member,omitempty"`
	Area       Area     `json:"-"`
}

func (i Item) String() string {
	switch i.Kind {
	case ItemClass:
		return fmt.Sprintf("%s(%s)", i.Kind, i.Class)
	case ItemMethod, ItemConst:
		return fmt.Sprintf("%s(%s::%s)", i.Kind, i.Class, i.Member)
	default:
		return fmt.Sprintf("%s(%s)", i.Kind, i.Text)
	}
}
