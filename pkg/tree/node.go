package tree

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/dom"
)

// Node is an element of the render tree.
type Node interface {
	// Execute binds the node and its children to ctx.
	Execute(ctx *Context)
	// RenderInDom creates the presentation nodes and inserts them into
	// parent before the given sibling (appends when before is nil).
	RenderInDom(parent, before *html.Node)
	// RefreshInDom updates the presentation for the given changes.
	RefreshInDom(changes core.ChangeSet)
	// DomNodes returns the top-level presentation nodes this node contributes.
	DomNodes() []*html.Node
	// Children returns the child nodes.
	Children() []Node
}

// ExecuteAll executes every node with ctx.
func ExecuteAll(nodes []Node, ctx *Context) {
	for _, n := range nodes {
		n.Execute(ctx)
	}
}

// RenderAll renders every node into parent, in order, before the given sibling.
func RenderAll(nodes []Node, parent, before *html.Node) {
	for _, n := range nodes {
		n.RenderInDom(parent, before)
	}
}

// RefreshAll propagates a refresh to every node.
func RefreshAll(nodes []Node, changes core.ChangeSet) {
	for _, n := range nodes {
		n.RefreshInDom(changes)
	}
}

// DetachAll removes the presentation nodes of every node.
func DetachAll(nodes []Node) {
	for _, n := range nodes {
		for _, d := range n.DomNodes() {
			dom.Detach(d)
		}
	}
}

// Walk visits nodes depth-first, stopping descent when fn returns false.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if fn(n) {
			Walk(n.Children(), fn)
		}
	}
}

// --- Element ---

// Element is a presentation element with classes, style and attributes.
type Element struct {
	Tag      string
	classes  []string
	attrs    map[string]string
	style    map[string]string
	children []Node
	ctx      *Context
	domNode  *html.Node
}

// NewElement creates an element owning children.
func NewElement(tag string, children ...Node) *Element {
	return &Element{
		Tag:      tag,
		attrs:    make(map[string]string),
		style:    make(map[string]string),
		children: children,
	}
}

// AddClass appends classes, skipping empty ones.
func (e *Element) AddClass(classes ...string) *Element {
	for _, c := range classes {
		if c != "" {
			e.classes = append(e.classes, c)
		}
	}
	return e
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	return e.classes
}

// SetAttr sets an attribute and mirrors it on the rendered node.
func (e *Element) SetAttr(key, val string) *Element {
	e.attrs[key] = val
	if e.domNode != nil {
		dom.SetAttr(e.domNode, key, val)
	}
	return e
}

// Attr returns an attribute value.
func (e *Element) Attr(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// SetStyle sets a style property and mirrors it on the rendered node.
func (e *Element) SetStyle(prop, val string) *Element {
	e.style[prop] = val
	if e.domNode != nil {
		dom.SetStyle(e.domNode, prop, val)
	}
	return e
}

// Style returns a style property.
func (e *Element) Style(prop string) string {
	return e.style[prop]
}

// Children returns the child nodes.
func (e *Element) Children() []Node {
	return e.children
}

// DomNode returns the rendered node, nil before rendering.
func (e *Element) DomNode() *html.Node {
	return e.domNode
}

// DomNodes implements Node.
func (e *Element) DomNodes() []*html.Node {
	if e.domNode == nil {
		return nil
	}
	return []*html.Node{e.domNode}
}

// Context returns the context the element was executed with.
func (e *Element) Context() *Context {
	return e.ctx
}

// Execute implements Node.
func (e *Element) Execute(ctx *Context) {
	e.ctx = ctx
	ExecuteAll(e.children, ctx)
}

// RenderInDom implements Node.
func (e *Element) RenderInDom(parent, before *html.Node) {
	n := dom.NewElement(e.Tag)
	attrs := make(map[string]string, len(e.attrs)+2)
	for k, v := range e.attrs {
		attrs[k] = v
	}
	if len(e.classes) > 0 {
		attrs["class"] = strings.Join(e.classes, " ")
	}
	if len(e.style) > 0 {
		attrs["style"] = dom.FormatStyle(e.style)
	}
	dom.SetAttrs(n, attrs)
	e.domNode = n

	RenderAll(e.children, n, nil)
	dom.Attach(parent, n, before)
}

// RefreshInDom implements Node.
func (e *Element) RefreshInDom(changes core.ChangeSet) {
	RefreshAll(e.children, changes)
}

// ReplaceChildren swaps the child list for freshly built nodes, executing
// them with the element's context. When the element is rendered, the old
// presentation children are removed and the new ones rendered into the
// same element node, which keeps its identity.
func (e *Element) ReplaceChildren(children []Node) {
	DetachAll(e.children)
	e.children = children
	if e.ctx != nil {
		ExecuteAll(children, e.ctx)
	}
	if e.domNode != nil {
		dom.Clear(e.domNode)
		RenderAll(children, e.domNode, nil)
	}
}

// --- Text ---

// Text is a literal text node.
type Text struct {
	Value   string
	domNode *html.Node
}

// NewText creates a text node.
func NewText(value string) *Text {
	return &Text{Value: value}
}

func (t *Text) Execute(*Context)            {}
func (t *Text) RefreshInDom(core.ChangeSet) {}
func (t *Text) Children() []Node            { return nil }

func (t *Text) RenderInDom(parent, before *html.Node) {
	t.domNode = dom.NewText(t.Value)
	dom.Attach(parent, t.domNode, before)
}

func (t *Text) DomNodes() []*html.Node {
	if t.domNode == nil {
		return nil
	}
	return []*html.Node{t.domNode}
}

// --- Raw ---

// Raw is a chunk of literal HTML.
type Raw struct {
	HTML     string
	domNodes []*html.Node
}

// NewRaw creates a raw HTML node.
func NewRaw(s string) *Raw {
	return &Raw{HTML: s}
}

func (r *Raw) Execute(*Context)            {}
func (r *Raw) RefreshInDom(core.ChangeSet) {}
func (r *Raw) Children() []Node            { return nil }
func (r *Raw) DomNodes() []*html.Node      { return r.domNodes }

func (r *Raw) RenderInDom(parent, before *html.Node) {
	body := dom.NewElement("body")
	nodes, err := html.ParseFragment(strings.NewReader(r.HTML), body)
	if err != nil {
		nodes = []*html.Node{dom.NewText(r.HTML)}
	}
	r.domNodes = nodes
	for _, n := range nodes {
		dom.Attach(parent, n, before)
	}
}

// --- Error ---

// ErrorClass is the class of rendered error placeholders.
const ErrorClass = "tw-error"

// Error is a visible placeholder reporting a non-fatal problem.
type Error struct {
	Message string
	domNode *html.Node
}

// NewError creates an error placeholder.
func NewError(message string) *Error {
	return &Error{Message: message}
}

func (e *Error) Execute(*Context)            {}
func (e *Error) RefreshInDom(core.ChangeSet) {}
func (e *Error) Children() []Node            { return nil }

func (e *Error) RenderInDom(parent, before *html.Node) {
	n := dom.NewElement("span")
	dom.SetAttr(n, "class", ErrorClass)
	dom.Attach(n, dom.NewText(e.Message), nil)
	e.domNode = n
	dom.Attach(parent, n, before)
}

func (e *Error) DomNodes() []*html.Node {
	if e.domNode == nil {
		return nil
	}
	return []*html.Node{e.domNode}
}
