package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/dom"
)

// counter is a test macro that counts refreshes and consumes clicks on itself.
type counter struct {
	m         *Macro
	el        *Element
	refreshes int
	clicks    int
	consume   bool
}

func (c *counter) Execute() []Node {
	label, _ := c.m.Param("label")
	c.el = NewElement("button", NewText(label))
	c.el.Execute(c.m.Context())
	return []Node{c.el}
}

func (c *counter) RefreshInDom(changes core.ChangeSet) {
	c.refreshes++
	RefreshAll(c.m.Children(), changes)
}

func (c *counter) HandleEvent(ev *Event) bool {
	c.clicks++
	if c.consume {
		ev.PreventDefault()
	}
	return c.consume
}

func counterRegistry(instances *[]*counter, consume bool) Macros {
	m := Macros{}
	m.Register(MacroDefinition{
		Info: MacroInfo{
			Name:   "counter",
			Params: map[string]ParamInfo{"label": {ByPos: 0}},
			Events: []EventKind{EventClick},
		},
		New: func(mac *Macro) MacroInstance {
			c := &counter{m: mac, consume: consume}
			*instances = append(*instances, c)
			return c
		},
	})
	return m
}

func TestElement_Render(t *testing.T) {
	el := NewElement("span", NewText("a"), NewElement("b", NewText("bold")))
	el.AddClass("x", "", "y").SetAttr("title", "tip").SetStyle("display", "none")
	el.Execute(&Context{})

	root := dom.NewFragment()
	el.RenderInDom(root, nil)

	out, err := dom.Render(root)
	require.NoError(t, err)
	assert.Equal(t, `<span class="x y" style="display:none" title="tip">a<b>bold</b></span>`, out)

	// Mutations after rendering are mirrored.
	el.SetStyle("display", "block")
	assert.True(t, dom.IsVisible(el.DomNode()))
}

func TestElement_ReplaceChildrenKeepsIdentity(t *testing.T) {
	body := NewElement("div")
	body.Execute(&Context{})
	root := dom.NewFragment()
	body.RenderInDom(root, nil)
	before := body.DomNode()

	body.ReplaceChildren([]Node{NewText("one"), NewText("two")})

	assert.Same(t, before, body.DomNode())
	assert.Equal(t, 2, dom.ChildCount(body.DomNode()))
	assert.Equal(t, "onetwo", dom.TextContent(root))

	body.ReplaceChildren([]Node{NewText("three")})
	assert.Equal(t, "three", dom.TextContent(root))
}

func TestMacro_Unknown(t *testing.T) {
	m := NewMacro("nope")
	m.Execute(&Context{Macros: Macros{}})

	require.Len(t, m.Children(), 1)
	errNode, ok := m.Children()[0].(*Error)
	require.True(t, ok)
	assert.Equal(t, `Unknown macro "nope"`, errNode.Message)

	root := dom.NewFragment()
	m.RenderInDom(root, nil)
	out, _ := dom.Render(root)
	assert.Equal(t, `<span class="tw-error">Unknown macro &#34;nope&#34;</span>`, out)
}

func TestMacro_ReplaceChildrenInPlace(t *testing.T) {
	var instances []*counter
	ctx := &Context{Macros: counterRegistry(&instances, true)}

	m := NewMacro("counter", Param{Value: "go"})
	nodes := []Node{NewText("<"), m, NewText(">")}
	ExecuteAll(nodes, ctx)
	root := dom.NewFragment()
	RenderAll(nodes, root, nil)
	assert.Equal(t, "<go>", dom.TextContent(root))

	m.ReplaceChildren([]Node{NewText("new")})
	assert.Equal(t, "<new>", dom.TextContent(root))
}

func TestDispatch_BubblesInnermostFirst(t *testing.T) {
	var instances []*counter
	ctx := &Context{Macros: counterRegistry(&instances, false)}

	outer := NewMacro("counter", Param{Value: "outer"})
	outer.Execute(ctx)
	inner := NewMacro("counter", Param{Value: "inner"})
	// Nest inner inside outer's button; ReplaceChildren executes it.
	instances[0].el.ReplaceChildren([]Node{inner})

	root := dom.NewFragment()
	outer.RenderInDom(root, nil)

	target := instances[1].el.DomNode()
	ev := &Event{Kind: EventClick, Target: target}
	assert.False(t, Dispatch([]Node{outer}, ev))
	assert.Equal(t, 1, instances[0].clicks)
	assert.Equal(t, 1, instances[1].clicks)

	// Uninterested kinds are not delivered.
	Dispatch([]Node{outer}, &Event{Kind: EventFocus, Target: target})
	assert.Equal(t, 1, instances[1].clicks)

	// Targets outside the tree are ignored.
	assert.False(t, Dispatch([]Node{outer}, &Event{Kind: EventClick, Target: dom.NewElement("p")}))
}

func TestDispatch_ConsumedStops(t *testing.T) {
	var instances []*counter
	ctx := &Context{Macros: counterRegistry(&instances, true)}

	m := NewMacro("counter", Param{Value: "x"})
	m.Execute(ctx)
	root := dom.NewFragment()
	m.RenderInDom(root, nil)

	ev := &Event{Kind: EventClick, Target: instances[0].el.DomNode()}
	assert.True(t, Dispatch([]Node{m}, ev))
	assert.True(t, ev.DefaultPrevented())
}

func TestContext_Parents(t *testing.T) {
	ctx := &Context{Parents: []string{"A"}, Title: "A"}
	child := ctx.WithParent("B")
	grand := child.WithParent("C")
	sibling := child.WithParent("D")

	assert.True(t, grand.HasParent("A"))
	assert.True(t, grand.HasParent("B"))
	assert.False(t, ctx.HasParent("B"))
	assert.Equal(t, []string{"A", "B", "C"}, grand.Parents)
	assert.Equal(t, []string{"A", "B", "D"}, sibling.Parents)
	assert.Equal(t, "D", sibling.Title)
}

func TestEventKind(t *testing.T) {
	assert.True(t, EventTap.IsActivation())
	assert.False(t, EventFocus.IsActivation())
	k, ok := ParseEventKind("keyactivate")
	assert.True(t, ok)
	assert.Equal(t, EventKeyActivate, k)
	_, ok = ParseEventKind("hover")
	assert.False(t, ok)
}
