// Package js holds tree-sitter queries over JavaScript sources.
package js

// Pattern indexes of RequireConfigQuery.
const (
	// PatternMap matches map: { '*': { key: 'value' } }
	PatternMap = iota
	// PatternPaths matches paths: { key: 'value' }
	PatternPaths
	// PatternMixins matches config: { mixins: { target: { mixin: true } } }
	PatternMixins
)

// RequireConfigQuery extracts the map, paths and mixins sections of a
// requirejs-config.js. The section key is captured and checked by the caller
// so quoted and bare keys are both accepted.
const RequireConfigQuery = `
(pair
  key: [(property_identifier) (string)] @config.section
  value: (object
    (pair
      value: (object
        (pair
          key: [(property_identifier) (string)] @config.key
          value: (string) @config.value)))))

(pair
  key: [(property_identifier) (string)] @config.section
  value: (object
    (pair
      key: [(property_identifier) (string)] @config.key
      value: (string) @config.value)))

(pair
  key: [(property_identifier) (string)] @config.section
  value: (object
    (pair
      key: [(property_identifier) (string)] @config.key
      value: (object
        (pair
          key: [(property_identifier) (string)] @config.value
          value: (true))))))
`

// DefineQuery finds the dependency ids of AMD define()/require() calls.
const DefineQuery = `
(call_expression
  function: (identifier) @define.callee
  arguments: (arguments
    (array (string) @define.id))
  (#match? @define.callee "^(define|require)$"))
`
