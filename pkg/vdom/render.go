package vdom

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// RenderHTML renders the tree as HTML. Text and attribute values are
// escaped; event handlers are dropped and replaced by a data-hid attribute.
func RenderHTML(node *VNode) string {
	var b strings.Builder
	render(&b, node)
	return b.String()
}

func render(b *strings.Builder, node *VNode) {
	if node == nil {
		return
	}
	if node.Kind == KindText {
		b.WriteString(html.EscapeString(node.Text))
		return
	}

	b.WriteByte('<')
	b.WriteString(node.Tag)

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		if !isEventKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := node.Props[key].(type) {
		case bool:
			if v {
				b.WriteByte(' ')
				b.WriteString(key)
			}
		case nil:
		default:
			fmt.Fprintf(b, ` %s="%s"`, key, html.EscapeString(fmt.Sprint(v)))
		}
	}
	if node.HID != "" {
		fmt.Fprintf(b, ` data-hid="%s"`, html.EscapeString(node.HID))
	}
	b.WriteByte('>')

	if IsVoidElement(node.Tag) {
		return
	}
	for _, child := range node.Children {
		render(b, child)
	}
	b.WriteString("</")
	b.WriteString(node.Tag)
	b.WriteByte('>')
}
