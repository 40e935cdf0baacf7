package sqlite

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/rabbithole/pkg/adapters/memory"
)

// StoreState adds persistence counters to the memory store state.
type StoreState struct {
	memory.StoreState
	Path     string `json:"path"`
	Writes   uint64 `json:"writes"`
	Failures uint64 `json:"failures"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	return StoreState{
		StoreState: s.Store.State().(memory.StoreState),
		Path:       s.path,
		Writes:     s.writes.Load(),
		Failures:   s.failures.Load(),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
