// Package render turns records into live documents: a render tree attached to
// a presentation root, refreshed from store notifications.
package render

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/net/html"

	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/dom"
	"github.com/aretw0/rabbithole/pkg/tree"
)

// DefaultDialect is used for records without a type field.
const DefaultDialect = "text/x-tiddlywiki"

// Config holds the renderer collaborators.
type Config struct {
	Store  core.Store
	Parser tree.Parser
	Macros tree.Registry
	Logger *slog.Logger
}

// Renderer builds documents against one store.
type Renderer struct {
	store  core.Store
	parser tree.Parser
	macros tree.Registry
	logger *slog.Logger

	open     atomic.Int64
	rendered atomic.Uint64
}

// New creates a renderer.
func New(config Config) *Renderer {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		store:  config.Store,
		parser: config.Parser,
		macros: config.Macros,
		logger: logger,
	}
}

func (r *Renderer) context() *tree.Context {
	return &tree.Context{
		Store:  r.store,
		Parser: r.parser,
		Macros: r.macros,
		Logger: r.logger,
	}
}

// Option configures a document.
type Option func(*Document)

// WithChangeHandler hands store notifications to fn instead of refreshing
// the document on the notifying goroutine. The owner calls Refresh itself,
// typically from the goroutine that serializes access to the document.
func WithChangeHandler(fn core.Listener) Option {
	return func(d *Document) {
		d.listener = fn
	}
}

// Render renders the record with the given title. The document follows
// store changes until it is closed.
func (r *Renderer) Render(title string, opts ...Option) (*Document, error) {
	if _, ok := r.store.Get(title); !ok {
		return nil, fmt.Errorf("render %q: %w", title, core.ErrNotFound)
	}
	d := r.newDocument(title, r.context().WithParent(title), func() []tree.Node {
		rec, ok := r.store.Get(title)
		if !ok {
			return nil
		}
		dialect := rec.Type()
		if dialect == "" {
			dialect = DefaultDialect
		}
		return r.parser.Parse(dialect, rec.Text())
	}, opts)
	return d, nil
}

// RenderText renders markup that is not stored in a record.
func (r *Renderer) RenderText(dialect, text string, opts ...Option) *Document {
	return r.newDocument("", r.context(), func() []tree.Node {
		return r.parser.Parse(dialect, text)
	}, opts)
}

func (r *Renderer) newDocument(title string, ctx *tree.Context, build func() []tree.Node, opts []Option) *Document {
	d := &Document{
		title:    title,
		ctx:      ctx,
		build:    build,
		root:     dom.NewFragment(),
		renderer: r,
	}
	d.listener = d.Refresh
	for _, opt := range opts {
		opt(d)
	}
	d.rebuild()
	d.unsubscribe = r.store.Subscribe(d.listener)
	r.open.Add(1)
	r.logger.Debug("document rendered", "title", title, "nodes", len(d.nodes))
	return d
}

// Document is a rendered record: its render tree and presentation root.
type Document struct {
	title       string
	ctx         *tree.Context
	build       func() []tree.Node
	nodes       []tree.Node
	root        *html.Node
	renderer    *Renderer
	listener    core.Listener
	unsubscribe func()

	refreshes int
	rebuilds  int
}

func (d *Document) rebuild() {
	dom.Clear(d.root)
	d.nodes = d.build()
	tree.ExecuteAll(d.nodes, d.ctx)
	tree.RenderAll(d.nodes, d.root, nil)
	d.rebuilds++
	d.renderer.rendered.Add(1)
}

// Refresh applies a change set. A change to the document's own record
// rebuilds it; anything else is patched by the nodes themselves.
func (d *Document) Refresh(changes core.ChangeSet) {
	d.refreshes++
	if d.title != "" && changes.Has(d.title) {
		if _, ok := d.ctx.Store.Get(d.title); ok {
			d.renderer.logger.Debug("document record changed, rebuilding", "title", d.title)
			d.rebuild()
			return
		}
	}
	tree.RefreshAll(d.nodes, changes)
}

// Dispatch routes an interaction to the document's macros and reports
// whether one consumed it.
func (d *Document) Dispatch(ev *tree.Event) bool {
	consumed := tree.Dispatch(d.nodes, ev)
	d.renderer.logger.Debug("event dispatched", "kind", ev.Kind, "consumed", consumed)
	return consumed
}

// Click dispatches a primary activation on target.
func (d *Document) Click(target *html.Node) bool {
	return d.Dispatch(&tree.Event{Kind: tree.EventClick, Target: target})
}

// FindByRole returns the presentation nodes tagged with role, in document order.
func (d *Document) FindByRole(role string) []*html.Node {
	return dom.FindByRole(d.root, role)
}

// HTML serializes the presentation tree.
func (d *Document) HTML() (string, error) {
	return dom.Render(d.root)
}

// Title returns the rendered record title, empty for ad-hoc text.
func (d *Document) Title() string {
	return d.title
}

// Root returns the presentation root.
func (d *Document) Root() *html.Node {
	return d.root
}

// Nodes returns the top-level render nodes.
func (d *Document) Nodes() []tree.Node {
	return d.nodes
}

// Close stops following store changes.
func (d *Document) Close() {
	if d.unsubscribe == nil {
		return
	}
	d.unsubscribe()
	d.unsubscribe = nil
	d.renderer.open.Add(-1)
}
