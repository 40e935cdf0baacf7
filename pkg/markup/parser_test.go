package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rabbithole/pkg/dom"
	"github.com/aretw0/rabbithole/pkg/tree"
)

func renderNodes(t *testing.T, nodes []tree.Node) string {
	t.Helper()
	root := dom.NewFragment()
	tree.ExecuteAll(nodes, &tree.Context{})
	tree.RenderAll(nodes, root, nil)
	out, err := dom.Render(root)
	require.NoError(t, err)
	return out
}

func TestParse_Markup(t *testing.T) {
	p := New(nil)

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"paragraph", "hello", "<p>hello</p>"},
		{"heading", "# Title", "<h1>Title</h1>"},
		{"emphasis", "*em* and **strong**", "<p><em>em</em> and <strong>strong</strong></p>"},
		{"list", "- a\n- b", "<ul><li>a</li><li>b</li></ul>"},
		{"code span", "use `x`", "<p>use <code>x</code></p>"},
		{"link", "[home](/index)", `<p><a href="/index">home</a></p>`},
		{"strikethrough", "~~old~~", "<p><del>old</del></p>"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderNodes(t, p.Parse(DialectWikiText, tt.src)))
		})
	}
}

func TestParse_MacroCall(t *testing.T) {
	p := New(nil)

	nodes := p.Parse(DialectWikiText, `before <<slider "$:/state/a" Target label:"Open me">> after`)
	require.Len(t, nodes, 1)
	para, ok := nodes[0].(*tree.Element)
	require.True(t, ok)
	assert.Equal(t, "p", para.Tag)

	var macros []*tree.Macro
	tree.Walk(nodes, func(n tree.Node) bool {
		if m, ok := n.(*tree.Macro); ok {
			macros = append(macros, m)
		}
		return true
	})
	require.Len(t, macros, 1)
	assert.Equal(t, "slider", macros[0].Name)
	assert.Equal(t, []tree.Param{
		{Value: "$:/state/a"},
		{Value: "Target"},
		{Name: "label", Value: "Open me"},
	}, macros[0].Params)
}

func TestParse_MacroCallWithoutParams(t *testing.T) {
	p := New(nil)

	nodes := p.Parse(DialectWikiText, "<<now>>")
	var names []string
	tree.Walk(nodes, func(n tree.Node) bool {
		if m, ok := n.(*tree.Macro); ok {
			names = append(names, m.Name)
			assert.Empty(t, m.Params)
		}
		return true
	})
	assert.Equal(t, []string{"now"}, names)
}

func TestParse_NotAMacro(t *testing.T) {
	p := New(nil)
	assert.Equal(t, "<p>a &lt;&lt; b</p>", renderNodes(t, p.Parse(DialectWikiText, "a << b")))
}

func TestParse_PlainAndUnknownDialects(t *testing.T) {
	p := New(nil)

	for _, dialect := range []string{DialectPlain, "application/x-unknown"} {
		nodes := p.Parse(dialect, "a *b* <<m>>")
		require.Len(t, nodes, 1, dialect)
		txt, ok := nodes[0].(*tree.Text)
		require.True(t, ok, dialect)
		assert.Equal(t, "a *b* <<m>>", txt.Value)
	}
	assert.Empty(t, p.Parse(DialectPlain, ""))
}
