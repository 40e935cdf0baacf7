package slider

import (
	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/dom"
	"github.com/aretw0/rabbithole/pkg/tree"
)

// Widget is one slider instance. Its root, label and body nodes are built
// once and mutated in place by refreshes.
type Widget struct {
	cfg Config
	ctx *tree.Context

	isOpen bool
	root   *tree.Element
	label  *tree.Element
	body   *tree.Element

	refreshes        int
	localRefreshes   int
	materializations int
}

// Definition registers the slider with a macro registry.
func Definition() tree.MacroDefinition {
	return tree.MacroDefinition{
		Info: Info,
		New: func(m *tree.Macro) tree.MacroInstance {
			return newWidget(ConfigFromParams(m.BoundParams()), m.Context())
		},
	}
}

func newWidget(cfg Config, ctx *tree.Context) *Widget {
	if ctx == nil {
		ctx = &tree.Context{}
	}
	return &Widget{cfg: cfg, ctx: ctx}
}

// Build constructs and executes a slider outside of a macro call site.
func Build(cfg Config, ctx *tree.Context) *Widget {
	w := newWidget(cfg, ctx)
	w.Execute()
	return w
}

// Execute implements tree.MacroInstance.
func (w *Widget) Execute() []tree.Node {
	w.isOpen = ResolveOpenState(w.cfg, w.ctx.Store)
	var content []tree.Node
	if w.isOpen {
		content = w.materialize()
	}

	w.label = tree.NewElement("a", tree.NewText(w.cfg.LabelText())).
		AddClass("btn", "btn-info").
		SetAttr(dom.RoleAttr, RoleToggle)
	w.body = tree.NewElement("div", content...).
		AddClass(BodyClass).
		SetStyle("display", dom.Display(w.isOpen))
	w.root = tree.NewElement("span", w.label, w.body).
		AddClass(BaseClass, w.cfg.Class)
	if w.cfg.Has(ParamState) {
		w.root.SetAttr(TypeAttr, w.cfg.StateKey)
	}
	if w.cfg.Has(ParamTooltip) {
		w.root.SetAttr("alt", w.cfg.Tooltip).SetAttr("title", w.cfg.Tooltip)
	}

	w.root.Execute(w.ctx)
	return []tree.Node{w.root}
}

func (w *Widget) materialize() []tree.Node {
	w.materializations++
	return MaterializeBody(w.cfg, w.ctx.Parser)
}

// NeedsMaterialize reports whether the slider is open with an empty body.
func (w *Widget) NeedsMaterialize() bool {
	return w.isOpen && len(w.body.Children()) == 0
}

// RefreshInDom implements tree.MacroInstance.
func (w *Widget) RefreshInDom(changes core.ChangeSet) {
	w.refreshes++
	if w.cfg.Has(ParamState) && changes.Has(w.cfg.StateKey) {
		w.isOpen = ResolveOpenState(w.cfg, w.ctx.Store)
	}

	materialized := false
	if w.NeedsMaterialize() {
		w.body.ReplaceChildren(w.materialize())
		materialized = true
	}

	w.body.SetStyle("display", dom.Display(w.isOpen))

	if !materialized {
		w.root.RefreshInDom(changes)
	}
}

// HandleEvent implements tree.MacroInstance. Only activations of the label
// are consumed.
func (w *Widget) HandleEvent(ev *tree.Event) bool {
	switch ev.Kind {
	case tree.EventClick, tree.EventTap, tree.EventKeyActivate:
		if ev.Target == nil || ev.Target != w.label.DomNode() {
			return false
		}
		w.Toggle()
		ev.PreventDefault()
		return true
	default:
		return false
	}
}

// Toggle flips the open state. A persisted state is picked up by the refresh
// that the store notification triggers; otherwise the widget refreshes itself.
func (w *Widget) Toggle() {
	w.isOpen = !w.isOpen
	if !PersistOpenState(w.cfg, w.ctx.Store, w.isOpen) {
		w.localRefreshes++
		w.RefreshInDom(core.ChangeSet{})
	}
}

// IsOpen reports the current open state.
func (w *Widget) IsOpen() bool {
	return w.isOpen
}

// Config returns the resolved configuration.
func (w *Widget) Config() Config {
	return w.cfg
}

// Root returns the root span.
func (w *Widget) Root() *tree.Element {
	return w.root
}

// Label returns the activation element.
func (w *Widget) Label() *tree.Element {
	return w.label
}

// Body returns the body container.
func (w *Widget) Body() *tree.Element {
	return w.body
}

// Nodes returns the widget's top-level nodes.
func (w *Widget) Nodes() []tree.Node {
	return []tree.Node{w.root}
}

var _ tree.MacroInstance = (*Widget)(nil)
