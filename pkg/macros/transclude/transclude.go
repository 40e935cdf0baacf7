// Package transclude implements the tiddler macro, which embeds the content
// of another record by reference and re-renders it when that record changes.
package transclude

import (
	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/tree"
)

// Name is the macro name.
const Name = "tiddler"

// Markup constants.
const (
	Class      = "tw-transclude"
	TargetAttr = "data-tiddler-target"
)

// DefaultDialect is used for records without a type field.
const DefaultDialect = "text/x-tiddlywiki"

// Error messages rendered in place of the content.
const (
	RecursionMessage = "Tiddler recursion error in <<tiddler>> macro"
	NoTargetMessage  = "No target specified for <<tiddler>> macro"
)

// Info declares the macro's parameters.
var Info = tree.MacroInfo{
	Name: Name,
	Params: map[string]tree.ParamInfo{
		"target": {ByPos: 0, Type: "tiddler"},
	},
}

// Definition registers the macro with a macro registry.
func Definition() tree.MacroDefinition {
	return tree.MacroDefinition{
		Info: Info,
		New: func(m *tree.Macro) tree.MacroInstance {
			target, _ := m.Param("target")
			return &Transclusion{target: target, ctx: m.Context()}
		},
	}
}

// Transclusion is one embedded record.
type Transclusion struct {
	target  string
	ctx     *tree.Context
	wrapper *tree.Element

	renders int
}

// Target returns the embedded record title.
func (t *Transclusion) Target() string {
	return t.target
}

// Renders returns how many times the content was built.
func (t *Transclusion) Renders() int {
	return t.renders
}

// Execute implements tree.MacroInstance.
func (t *Transclusion) Execute() []tree.Node {
	switch {
	case t.target == "":
		return []tree.Node{tree.NewError(NoTargetMessage)}
	case t.ctx.HasParent(t.target):
		t.ctx.Log().Warn("transclusion recursion", "target", t.target, "parents", t.ctx.Parents)
		return []tree.Node{tree.NewError(RecursionMessage)}
	}

	t.wrapper = tree.NewElement("div", t.content()...).
		AddClass(Class).
		SetAttr(TargetAttr, t.target)
	t.wrapper.Execute(t.ctx.WithParent(t.target))
	return []tree.Node{t.wrapper}
}

func (t *Transclusion) content() []tree.Node {
	t.renders++
	if t.ctx.Store == nil || t.ctx.Parser == nil {
		return nil
	}
	r, ok := t.ctx.Store.Get(t.target)
	if !ok {
		return nil
	}
	dialect := r.Type()
	if dialect == "" {
		dialect = DefaultDialect
	}
	return t.ctx.Parser.Parse(dialect, r.Text())
}

// RefreshInDom implements tree.MacroInstance. A change to the target
// rebuilds the content; other changes are passed down.
func (t *Transclusion) RefreshInDom(changes core.ChangeSet) {
	if t.wrapper == nil {
		return
	}
	if changes.Has(t.target) {
		t.wrapper.ReplaceChildren(t.content())
		return
	}
	t.wrapper.RefreshInDom(changes)
}

// HandleEvent implements tree.MacroInstance.
func (t *Transclusion) HandleEvent(*tree.Event) bool {
	return false
}

var _ tree.MacroInstance = (*Transclusion)(nil)
