// Package xml holds tree-sitter queries over XML sources parsed with the HTML grammar.
package xml

// PositionQuery captures every node a cursor can sit in: attribute values,
// quoted values (covers empty ones, which have no attribute_value child),
// text content and end tags (empty element bodies).
const PositionQuery = `
(attribute_value) @xml.attribute_value

(quoted_attribute_value) @xml.quoted_value

(text) @xml.text

(end_tag) @xml.end_tag
`
