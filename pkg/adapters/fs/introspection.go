package fs

import (
	"github.com/aretw0/introspection"
)

// RegistryState exposes the registered formats.
type RegistryState struct {
	Formats []string `json:"formats"`
}

// State implements introspection.Introspectable.
func (r *Registry) State() any {
	return RegistryState{Formats: r.Formats()}
}

// ComponentType implements introspection.Component.
func (r *Registry) ComponentType() string {
	return "deserializer-registry"
}

var _ introspection.Introspectable = (*Registry)(nil)
var _ introspection.Component = (*Registry)(nil)
