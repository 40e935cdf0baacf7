package slider

import (
	"github.com/aretw0/introspection"
)

// State exposes the widget's state for observability.
type State struct {
	StateKey         string `json:"state_key,omitempty"`
	Open             bool   `json:"open"`
	BodyChildren     int    `json:"body_children"`
	Refreshes        int    `json:"refreshes"`
	LocalRefreshes   int    `json:"local_refreshes"`
	Materializations int    `json:"materializations"`
}

// State implements introspection.Introspectable.
func (w *Widget) State() any {
	return State{
		StateKey:         w.cfg.StateKey,
		Open:             w.isOpen,
		BodyChildren:     len(w.body.Children()),
		Refreshes:        w.refreshes,
		LocalRefreshes:   w.localRefreshes,
		Materializations: w.materializations,
	}
}

// ComponentType implements introspection.Component.
func (w *Widget) ComponentType() string {
	return "slider"
}

var _ introspection.Introspectable = (*Widget)(nil)
var _ introspection.Component = (*Widget)(nil)
