package tree

import (
	"golang.org/x/net/html"

	"github.com/aretw0/rabbithole/pkg/dom"
)

// Dispatch routes an interaction to the macros whose presentation contains
// its target, innermost first, and reports whether one consumed it.
func Dispatch(nodes []Node, ev *Event) bool {
	if ev.Target == nil {
		return false
	}
	for _, n := range nodes {
		if !containsTarget(n, ev.Target) {
			continue
		}
		if Dispatch(n.Children(), ev) {
			return true
		}
		if m, ok := n.(*Macro); ok && m.handles(ev.Kind) {
			return m.instance.HandleEvent(ev)
		}
		return false
	}
	return false
}

func containsTarget(n Node, target *html.Node) bool {
	for _, d := range n.DomNodes() {
		if dom.Contains(d, target) {
			return true
		}
	}
	return false
}
