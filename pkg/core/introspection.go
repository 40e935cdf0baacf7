package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Records   int    `json:"records"`
	StoreType string `json:"store_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	storeType := "unknown"
	if comp, ok := s.store.(introspection.Component); ok {
		storeType = comp.ComponentType()
	}

	return ServiceState{
		Records:   len(s.store.Titles()),
		StoreType: storeType,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
