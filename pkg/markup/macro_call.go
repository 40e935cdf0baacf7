package markup

import (
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindMacroCall is the goldmark node kind of a `<<name params>>` call.
var KindMacroCall = ast.NewNodeKind("MacroCall")

// MacroCall is an inline macro invocation.
type MacroCall struct {
	ast.BaseInline
	Name   string
	Params string
}

// Kind implements ast.Node.
func (n *MacroCall) Kind() ast.NodeKind {
	return KindMacroCall
}

// Dump implements ast.Node.
func (n *MacroCall) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Name":   n.Name,
		"Params": n.Params,
	}, nil)
}

var macroCallPattern = regexp.MustCompile(`^<<([^\s>]+)(?:\s+((?:[^>]|>[^>])*?))?\s*>>`)

type macroCallParser struct{}

func (macroCallParser) Trigger() []byte {
	return []byte{'<'}
}

func (macroCallParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := macroCallPattern.FindSubmatchIndex(line)
	if m == nil {
		return nil
	}
	call := &MacroCall{Name: string(line[m[2]:m[3]])}
	if m[4] >= 0 {
		call.Params = string(line[m[4]:m[5]])
	}
	block.Advance(m[1])
	return call
}
