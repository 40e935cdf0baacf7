// Package macros assembles the built-in macro registry.
package macros

import (
	"github.com/aretw0/rabbithole/pkg/macros/slider"
	"github.com/aretw0/rabbithole/pkg/macros/transclude"
	"github.com/aretw0/rabbithole/pkg/tree"
)

// Default returns a registry holding every built-in macro.
func Default() tree.Macros {
	m := tree.Macros{}
	m.Register(slider.Definition())
	m.Register(transclude.Definition())
	return m
}
