package render

import (
	"github.com/aretw0/introspection"
)

// RendererState exposes internal state for observability.
type RendererState struct {
	OpenDocuments int64  `json:"open_documents"`
	Renders       uint64 `json:"renders"`
}

// State implements introspection.Introspectable.
func (r *Renderer) State() any {
	return RendererState{
		OpenDocuments: r.open.Load(),
		Renders:       r.rendered.Load(),
	}
}

// ComponentType implements introspection.Component.
func (r *Renderer) ComponentType() string {
	return "renderer"
}

// DocumentState exposes a document's refresh counters.
type DocumentState struct {
	Title     string `json:"title"`
	Nodes     int    `json:"nodes"`
	Refreshes int    `json:"refreshes"`
	Rebuilds  int    `json:"rebuilds"`
}

// State implements introspection.Introspectable.
func (d *Document) State() any {
	return DocumentState{
		Title:     d.title,
		Nodes:     len(d.nodes),
		Refreshes: d.refreshes,
		Rebuilds:  d.rebuilds,
	}
}

// ComponentType implements introspection.Component.
func (d *Document) ComponentType() string {
	return "document"
}

var _ introspection.Introspectable = (*Renderer)(nil)
var _ introspection.Component = (*Renderer)(nil)
var _ introspection.Introspectable = (*Document)(nil)
var _ introspection.Component = (*Document)(nil)
