// Package php holds tree-sitter queries over PHP sources.
package php

// RegistrationQuery finds component registrar calls in registration.php:
//
//	ComponentRegistrar::register(ComponentRegistrar::MODULE, 'Vendor_Module', __DIR__);
//
// Arguments are captured as a whole because grammar versions differ on whether
// each argument is wrapped in an (argument) node.
const RegistrationQuery = `
(scoped_call_expression
  (name) @registrar.method
  (arguments) @registrar.arguments
  (#eq? @registrar.method "register"))
`

// Pattern indexes of ClassQuery.
const (
	PatternNamespace = iota
	PatternClass
	PatternInterface
	PatternTrait
	PatternMethod
	PatternConst
)

// ClassQuery extracts what go-to-definition needs from a class file: the
// namespace, the declared type, public methods and constants.
const ClassQuery = `
(namespace_definition (namespace_name) @namespace.name)

(class_declaration (name) @class.name)

(interface_declaration (name) @class.name)

(trait_declaration (name) @class.name)

((method_declaration
   (visibility_modifier) @method.visibility
   (name) @method.name)
 (#eq? @method.visibility "public"))

(const_element . (name) @const.name)
`
