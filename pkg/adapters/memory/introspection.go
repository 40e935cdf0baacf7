package memory

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Records       int    `json:"records"`
	Listeners     int    `json:"listeners"`
	Watchers      int    `json:"watchers"`
	Deliveries    uint64 `json:"deliveries"`
	DroppedEvents uint64 `json:"dropped_events"`
	EventBuffer   int    `json:"event_buffer"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.wmu.Lock()
	watchers := len(s.watchers)
	s.wmu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		Records:       len(s.records),
		Listeners:     len(s.subs),
		Watchers:      watchers,
		Deliveries:    s.deliveries,
		DroppedEvents: s.dropped,
		EventBuffer:   s.eventBuffer,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
