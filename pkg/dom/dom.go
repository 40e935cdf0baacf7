// Package dom is the presentation attachment layer: thin helpers over
// golang.org/x/net/html nodes used as the live presentation tree.
package dom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RoleAttr tags activation elements so hosts can locate them without
// relying on tree position.
const RoleAttr = "data-rh-role"

// NewElement creates a detached element node.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// NewFragment creates a container whose rendering is the rendering of its children.
func NewFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

// Attach inserts child into parent before the given sibling, or appends it
// when before is nil or not a child of parent. A child that is already
// attached elsewhere is moved.
func Attach(parent, child, before *html.Node) {
	Detach(child)
	if before != nil && before.Parent == parent {
		parent.InsertBefore(child, before)
		return
	}
	parent.AppendChild(child)
}

// Detach removes a node from its parent, if any.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Clear detaches every child of n.
func Clear(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// ChildCount returns the number of direct children of n.
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Attr returns the value of an attribute.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// SetAttrs replaces all attributes, ordered by key for stable output.
func SetAttrs(n *html.Node, attrs map[string]string) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	n.Attr = n.Attr[:0]
	for _, k := range keys {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: attrs[k]})
	}
}

// FormatStyle renders a style map as a CSS declaration list, ordered by property.
func FormatStyle(style map[string]string) string {
	props := make([]string, 0, len(style))
	for k := range style {
		props = append(props, k)
	}
	sort.Strings(props)
	parts := make([]string, 0, len(props))
	for _, p := range props {
		parts = append(parts, p+":"+style[p])
	}
	return strings.Join(parts, ";")
}

// ParseStyle parses a CSS declaration list.
func ParseStyle(s string) map[string]string {
	style := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		style[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return style
}

// SetStyle sets one style property, keeping the others.
func SetStyle(n *html.Node, prop, val string) {
	cur, _ := Attr(n, "style")
	style := ParseStyle(cur)
	style[prop] = val
	SetAttr(n, "style", FormatStyle(style))
}

// Display returns the CSS display value for a visibility flag.
func Display(visible bool) string {
	if visible {
		return "block"
	}
	return "none"
}

// SetDisplay shows or hides a node.
func SetDisplay(n *html.Node, visible bool) {
	SetStyle(n, "display", Display(visible))
}

// IsVisible reports whether the node is not hidden by display:none.
func IsVisible(n *html.Node) bool {
	cur, _ := Attr(n, "style")
	return ParseStyle(cur)["display"] != "none"
}

// Contains reports whether n is ancestor or equal to target.
func Contains(n, target *html.Node) bool {
	for t := target; t != nil; t = t.Parent {
		if t == n {
			return true
		}
	}
	return false
}

// FindAll returns the nodes under root (inclusive) matching pred, in document order.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// FindByRole returns all elements tagged with the given role.
func FindByRole(root *html.Node, role string) []*html.Node {
	return FindAll(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		v, ok := Attr(n, RoleAttr)
		return ok && v == role
	})
}

// HasClass reports whether the class attribute contains name.
func HasClass(n *html.Node, name string) bool {
	v, _ := Attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == name {
			return true
		}
	}
	return false
}

// Render serializes n to HTML.
func Render(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// TextContent concatenates all text nodes under n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	for _, t := range FindAll(n, func(x *html.Node) bool { return x.Type == html.TextNode }) {
		b.WriteString(t.Data)
	}
	return b.String()
}
