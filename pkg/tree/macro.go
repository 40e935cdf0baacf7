package tree

import (
	"fmt"
	"slices"

	"golang.org/x/net/html"

	"github.com/aretw0/rabbithole/pkg/core"
)

// MacroInfo describes a macro: its parameters and the events it handles.
type MacroInfo struct {
	Name   string
	Params map[string]ParamInfo
	Events []EventKind
}

// MacroInstance is the per-node state of an executed macro.
type MacroInstance interface {
	// Execute builds and executes the macro's children.
	Execute() []Node
	// RefreshInDom updates the macro's presentation for the given changes.
	RefreshInDom(changes core.ChangeSet)
	// HandleEvent processes an interaction and reports whether it was consumed.
	HandleEvent(ev *Event) bool
}

// MacroDefinition pairs a macro's info with its instance factory.
type MacroDefinition struct {
	Info MacroInfo
	New  func(m *Macro) MacroInstance
}

// Registry looks up macro definitions by name.
type Registry interface {
	Lookup(name string) (MacroDefinition, bool)
}

// Macros is a map-backed Registry.
type Macros map[string]MacroDefinition

// Lookup implements Registry.
func (m Macros) Lookup(name string) (MacroDefinition, bool) {
	def, ok := m[name]
	return def, ok
}

// Register adds a definition under its info name.
func (m Macros) Register(def MacroDefinition) {
	m[def.Info.Name] = def
}

// Macro is a macro call site in the render tree.
type Macro struct {
	Name   string
	Params []Param

	info      MacroInfo
	bound     map[string]string
	ctx       *Context
	instance  MacroInstance
	children  []Node
	parentDom *html.Node
}

// NewMacro creates a macro call node.
func NewMacro(name string, params ...Param) *Macro {
	return &Macro{Name: name, Params: params}
}

// Context returns the context the macro was executed with.
func (m *Macro) Context() *Context {
	return m.ctx
}

// Instance returns the executed instance, nil for unknown macros.
func (m *Macro) Instance() MacroInstance {
	return m.instance
}

// Param returns a bound parameter.
func (m *Macro) Param(name string) (string, bool) {
	v, ok := m.bound[name]
	return v, ok
}

// BoundParams returns all bound parameters.
func (m *Macro) BoundParams() map[string]string {
	return m.bound
}

// Children implements Node.
func (m *Macro) Children() []Node {
	return m.children
}

// Execute implements Node.
func (m *Macro) Execute(ctx *Context) {
	m.ctx = ctx
	var def MacroDefinition
	ok := false
	if ctx.Macros != nil {
		def, ok = ctx.Macros.Lookup(m.Name)
	}
	if !ok {
		ctx.Log().Warn("unknown macro", "name", m.Name, "title", ctx.Title)
		m.children = []Node{NewError(fmt.Sprintf("Unknown macro %q", m.Name))}
		return
	}

	m.info = def.Info
	m.bound = def.Info.Bind(m.Params)
	m.instance = def.New(m)
	m.children = m.instance.Execute()
}

// RenderInDom implements Node. Macros have no presentation node of their own.
func (m *Macro) RenderInDom(parent, before *html.Node) {
	m.parentDom = parent
	RenderAll(m.children, parent, before)
}

// DomNodes implements Node.
func (m *Macro) DomNodes() []*html.Node {
	var out []*html.Node
	for _, c := range m.children {
		out = append(out, c.DomNodes()...)
	}
	return out
}

// RefreshInDom implements Node.
func (m *Macro) RefreshInDom(changes core.ChangeSet) {
	if m.instance == nil {
		RefreshAll(m.children, changes)
		return
	}
	m.instance.RefreshInDom(changes)
}

// ReplaceChildren swaps the macro's children for nodes built and executed
// by the caller, re-rendering them where the old ones were.
func (m *Macro) ReplaceChildren(children []Node) {
	var anchor *html.Node
	if doms := m.DomNodes(); len(doms) > 0 {
		anchor = doms[len(doms)-1].NextSibling
	}
	DetachAll(m.children)
	m.children = children
	if m.parentDom != nil {
		RenderAll(children, m.parentDom, anchor)
	}
}

// handles reports whether the macro declared interest in kind.
func (m *Macro) handles(kind EventKind) bool {
	return m.instance != nil && slices.Contains(m.info.Events, kind)
}
