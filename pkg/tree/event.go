package tree

import "golang.org/x/net/html"

// EventKind enumerates the interactions a macro may handle.
type EventKind int

const (
	EventClick EventKind = iota + 1
	EventTap
	EventKeyActivate // Enter or Space on a focused element
	EventKeyDown
	EventFocus
	EventBlur
)

func (k EventKind) String() string {
	switch k {
	case EventClick:
		return "click"
	case EventTap:
		return "tap"
	case EventKeyActivate:
		return "keyactivate"
	case EventKeyDown:
		return "keydown"
	case EventFocus:
		return "focus"
	case EventBlur:
		return "blur"
	default:
		return "unknown"
	}
}

// IsActivation reports whether the kind is a primary activation.
func (k EventKind) IsActivation() bool {
	switch k {
	case EventClick, EventTap, EventKeyActivate:
		return true
	default:
		return false
	}
}

// ParseEventKind maps a name produced by String back to its kind.
func ParseEventKind(name string) (EventKind, bool) {
	for k := EventClick; k <= EventBlur; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Event is a user interaction targeting a presentation node.
type Event struct {
	Kind   EventKind
	Target *html.Node
	Key    string

	defaultPrevented bool
}

// PreventDefault suppresses the host's default behavior for the interaction.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a handler consumed the interaction.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}
