package extractor

import (
	"bytes"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/m2ls/pkg/m2"
	"github.com/gnana997/m2ls/pkg/parser"
	"github.com/gnana997/m2ls/pkg/parser/queries"
)

// JSStringAt returns the define()/require() dependency string under pos.
func (e *Extractor) JSStringAt(content []byte, pos m2.Position) (JSString, bool) {
	var out JSString
	found := false

	err := e.query(parser.LanguageJavaScript, queries.QueryTypeDefine, content, func(_ *ts.Node, matches []queries.QueryMatch) {
		for _, m := range matches {
			c, ok := m.Capture("define.id")
			if !ok || !c.Location.Contains(pos) {
				continue
			}
			out = JSString{Text: unquote(c.Text), Range: innerRange(c.Location.Range())}
			found = true
			return
		}
	})
	if err != nil {
		e.logger.Debug("js position lookup failed", "error", err)
		return JSString{}, false
	}
	return out, found
}

// capture ranks: lower wins when several nodes cover the cursor.
var xmlCaptureRank = map[string]int{
	"xml.attribute_value": 0,
	"xml.quoted_value":    1,
	"xml.text":            2,
	"xml.end_tag":         3,
}

// XMLContextAt describes the XML node under pos.
func (e *Extractor) XMLContextAt(content []byte, pos m2.Position) (*XMLContext, bool) {
	content = maskProcessingInstructions(content)

	var ctx *XMLContext
	err := e.query(parser.LanguageXML, queries.QueryTypeXMLPosition, content, func(_ *ts.Node, matches []queries.QueryMatch) {
		var best *queries.QueryCapture
		bestRank := len(xmlCaptureRank)
		for _, m := range matches {
			for i := range m.Captures {
				c := &m.Captures[i]
				rank, ok := xmlCaptureRank[c.Name]
				if !ok || !c.Location.Contains(pos) {
					continue
				}
				if c.Name == "xml.end_tag" && c.Location.Range().Start != pos {
					continue
				}
				if rank < bestRank || (rank == bestRank && best != nil && c.Location.StartByte > best.Location.StartByte) {
					best, bestRank = c, rank
				}
			}
		}
		if best != nil {
			ctx = buildXMLContext(best, content, pos)
		}
	})
	if err != nil {
		e.logger.Debug("xml position lookup failed", "error", err)
		return nil, false
	}
	return ctx, ctx != nil
}

func buildXMLContext(c *queries.QueryCapture, content []byte, pos m2.Position) *XMLContext {
	ctx := &XMLContext{}
	node := c.Node
	var element, tag *ts.Node

	switch c.Name {
	case "xml.attribute_value", "xml.quoted_value":
		if c.Name == "xml.quoted_value" {
			if inner := namedChildOfKind(node, "attribute_value"); inner != nil {
				node = inner
			}
		}
		if node.Kind() == "attribute_value" {
			ctx.Text = node.Utf8Text(content)
			ctx.Range = queries.NodeLocation(node).Range()
		} else {
			ctx.Range = innerRange(queries.NodeLocation(node).Range())
			ctx.Range.End = ctx.Range.Start
		}
		attr := ancestorOfKind(node, "attribute")
		if attr == nil {
			return nil
		}
		if name := namedChildOfKind(attr, "attribute_name"); name != nil {
			ctx.Attribute = name.Utf8Text(content)
		}
		tag = attr.Parent()
		if tag != nil {
			element = tag.Parent()
		}
	case "xml.text":
		ctx.Text = strings.TrimSpace(node.Utf8Text(content))
		ctx.Range = queries.NodeLocation(node).Range()
		element = ancestorOfKind(node, "element")
	case "xml.end_tag":
		ctx.Range = m2.Range{Start: pos, End: pos}
		element = node.Parent()
	}

	if element == nil {
		return nil
	}
	if tag == nil {
		tag = startTag(element)
	}

	var names []string
	for n := element; n != nil; n = n.Parent() {
		if n.Kind() == "element" {
			names = append(names, tagName(n, content))
		}
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	ctx.Tag = tagName(element, content)
	ctx.Attributes = tagAttributes(tag, content)
	ctx.Path = "/" + strings.Join(names, "/")
	if ctx.Attribute != "" {
		ctx.Path += "[@" + ctx.Attribute + "]"
	}
	return ctx
}

func startTag(element *ts.Node) *ts.Node {
	if t := namedChildOfKind(element, "start_tag"); t != nil {
		return t
	}
	return namedChildOfKind(element, "self_closing_tag")
}

func tagName(element *ts.Node, content []byte) string {
	tag := startTag(element)
	if tag == nil {
		return ""
	}
	if name := namedChildOfKind(tag, "tag_name"); name != nil {
		return name.Utf8Text(content)
	}
	return ""
}

func tagAttributes(tag *ts.Node, content []byte) map[string]string {
	attrs := make(map[string]string)
	if tag == nil {
		return attrs
	}
	for i := uint(0); i < tag.NamedChildCount(); i++ {
		attr := tag.NamedChild(i)
		if attr == nil || attr.Kind() != "attribute" {
			continue
		}
		name := namedChildOfKind(attr, "attribute_name")
		if name == nil {
			continue
		}
		value := ""
		if v := namedChildOfKind(attr, "attribute_value"); v != nil {
			value = v.Utf8Text(content)
		} else if q := namedChildOfKind(attr, "quoted_attribute_value"); q != nil {
			if v := namedChildOfKind(q, "attribute_value"); v != nil {
				value = v.Utf8Text(content)
			}
		}
		attrs[name.Utf8Text(content)] = value
	}
	return attrs
}

func namedChildOfKind(node *ts.Node, kind string) *ts.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func ancestorOfKind(node *ts.Node, kind string) *ts.Node {
	for n := node.Parent(); n != nil; n = n.Parent() {
		if n.Kind() == kind {
			return n
		}
	}
	return nil
}

// innerRange shrinks a single-line quoted literal's range to its content.
func innerRange(r m2.Range) m2.Range {
	if r.Start.Line == r.End.Line && r.End.Character-r.Start.Character >= 2 {
		r.Start.Character++
		r.End.Character--
	}
	return r
}

// maskProcessingInstructions blanks <?xml ... ?> declarations, which the HTML
// grammar does not understand, keeping byte offsets and line breaks intact.
func maskProcessingInstructions(content []byte) []byte {
	if !bytes.Contains(content, []byte("<?")) {
		return content
	}
	out := append([]byte(nil), content...)
	for i := 0; i+1 < len(out); i++ {
		if out[i] != '<' || out[i+1] != '?' {
			continue
		}
		end := bytes.Index(out[i:], []byte("?>"))
		if end < 0 {
			break
		}
		for j := i; j < i+end+2; j++ {
			if out[j] != '\n' && out[j] != '\r' {
				out[j] = ' '
			}
		}
		i += end + 1
	}
	return out
}
