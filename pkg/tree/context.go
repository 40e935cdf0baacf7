package tree

import (
	"log/slog"
	"slices"

	"github.com/aretw0/rabbithole/pkg/core"
)

// Parser turns markup into render nodes. Parse is total: malformed markup
// surfaces as Error nodes.
type Parser interface {
	Parse(dialect, text string) []Node
}

// Context carries what nodes need to execute and re-materialize content.
// It replaces ambient globals: every execution receives it explicitly.
type Context struct {
	Store   core.Store
	Parser  Parser
	Macros  Registry
	Logger  *slog.Logger
	Parents []string // Titles being rendered, outermost first
	Title   string   // Title of the record that owns the content
}

// WithParent returns a child context rendering title inside the current chain.
func (c *Context) WithParent(title string) *Context {
	child := *c
	child.Parents = append(slices.Clip(c.Parents), title)
	child.Title = title
	return &child
}

// HasParent reports whether title is already being rendered up the chain.
func (c *Context) HasParent(title string) bool {
	return slices.Contains(c.Parents, title)
}

// Log returns the context logger or a discarding one.
func (c *Context) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
