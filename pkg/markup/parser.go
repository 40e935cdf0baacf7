// Package markup implements the document's native markup dialect on top of
// goldmark: CommonMark plus `<<name params>>` macro calls.
package markup

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/aretw0/rabbithole/pkg/tree"
)

// Dialects understood by the parser.
const (
	DialectWikiText = "text/x-tiddlywiki"
	DialectMarkdown = "text/x-markdown"
	DialectPlain    = "text/plain"
)

// Parser implements tree.Parser.
type Parser struct {
	md     goldmark.Markdown
	logger *slog.Logger
}

// New creates a parser. A nil logger discards output.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough),
		goldmark.WithParserOptions(
			parser.WithInlineParsers(util.Prioritized(macroCallParser{}, 50)),
		),
	)
	return &Parser{md: md, logger: logger}
}

// Parse implements tree.Parser. Unknown dialects are rendered as plain text.
func (p *Parser) Parse(dialect, src string) []tree.Node {
	switch dialect {
	case DialectWikiText, DialectMarkdown, "":
		return p.parseMarkup(src)
	case DialectPlain:
		if src == "" {
			return nil
		}
		return []tree.Node{tree.NewText(src)}
	default:
		p.logger.Debug("unknown dialect, falling back to plain text", "dialect", dialect)
		if src == "" {
			return nil
		}
		return []tree.Node{tree.NewText(src)}
	}
}

func (p *Parser) parseMarkup(src string) (nodes []tree.Node) {
	source := []byte(src)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("markup parser panic", "error", r)
			nodes = []tree.Node{tree.NewError(fmt.Sprintf("Markup error: %v", r))}
		}
	}()

	doc := p.md.Parser().Parse(text.NewReader(source))
	c := converter{source: source}
	return c.children(doc)
}

type converter struct {
	source []byte
}

func (c converter) children(n ast.Node) []tree.Node {
	var out []tree.Node
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, c.convert(child)...)
	}
	return out
}

func (c converter) element(tag string, n ast.Node) *tree.Element {
	return tree.NewElement(tag, c.children(n)...)
}

func (c converter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.source))
	}
	return buf.String()
}

func (c converter) convert(n ast.Node) []tree.Node {
	switch node := n.(type) {
	case *MacroCall:
		return []tree.Node{tree.NewMacro(node.Name, tree.ParseParams(node.Params)...)}
	case *ast.Paragraph:
		return []tree.Node{c.element("p", node)}
	case *ast.TextBlock:
		return c.children(node)
	case *ast.Heading:
		return []tree.Node{c.element(fmt.Sprintf("h%d", node.Level), node)}
	case *ast.Emphasis:
		tag := "em"
		if node.Level >= 2 {
			tag = "strong"
		}
		return []tree.Node{c.element(tag, node)}
	case *ast.Text:
		out := []tree.Node{tree.NewText(string(node.Segment.Value(c.source)))}
		if node.HardLineBreak() {
			out = append(out, tree.NewElement("br"))
		} else if node.SoftLineBreak() {
			out = append(out, tree.NewText("\n"))
		}
		return out
	case *ast.String:
		return []tree.Node{tree.NewText(string(node.Value))}
	case *ast.CodeSpan:
		return []tree.Node{c.element("code", node)}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		code := tree.NewElement("code", tree.NewText(c.lines(node)))
		return []tree.Node{tree.NewElement("pre", code)}
	case *ast.Link:
		el := c.element("a", node)
		el.SetAttr("href", string(node.Destination))
		if len(node.Title) > 0 {
			el.SetAttr("title", string(node.Title))
		}
		return []tree.Node{el}
	case *ast.AutoLink:
		url := string(node.URL(c.source))
		el := tree.NewElement("a", tree.NewText(string(node.Label(c.source))))
		el.SetAttr("href", url)
		return []tree.Node{el}
	case *ast.Image:
		el := tree.NewElement("img")
		el.SetAttr("src", string(node.Destination))
		if len(node.Title) > 0 {
			el.SetAttr("title", string(node.Title))
		}
		return []tree.Node{el}
	case *ast.List:
		tag := "ul"
		if node.IsOrdered() {
			tag = "ol"
		}
		return []tree.Node{c.element(tag, node)}
	case *ast.ListItem:
		return []tree.Node{c.element("li", node)}
	case *ast.Blockquote:
		return []tree.Node{c.element("blockquote", node)}
	case *ast.ThematicBreak:
		return []tree.Node{tree.NewElement("hr")}
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(c.source))
		}
		return []tree.Node{tree.NewRaw(buf.String())}
	case *ast.HTMLBlock:
		return []tree.Node{tree.NewRaw(c.lines(node))}
	case *east.Strikethrough:
		return []tree.Node{c.element("del", node)}
	default:
		return c.children(n)
	}
}
