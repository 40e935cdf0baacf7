package slider

import (
	"strings"

	"github.com/aretw0/rabbithole/pkg/core"
)

// ResolveOpenState computes whether the slider is open. A state record wins,
// then the default parameter; otherwise the slider is closed.
func ResolveOpenState(cfg Config, store core.Store) bool {
	if cfg.Has(ParamState) && store != nil {
		if r, ok := store.Get(cfg.StateKey); ok {
			return strings.TrimSpace(r.Text()) == StateOpen
		}
	}
	if cfg.Has(ParamDefault) {
		return cfg.DefaultState == StateOpen
	}
	return false
}

// PersistOpenState writes the open state to the state record and reports
// whether it did. Without a state parameter nothing is written and the
// caller must refresh locally.
func PersistOpenState(cfg Config, store core.Store, isOpen bool) bool {
	if !cfg.Has(ParamState) || store == nil {
		return false
	}
	r, ok := store.Get(cfg.StateKey)
	if !ok {
		r = core.NewRecord(cfg.StateKey, core.Fields{core.FieldText: ""})
	}
	text := StateClosed
	if isOpen {
		text = StateOpen
	}
	store.Put(r.With(core.Fields{core.FieldText: text}))
	return true
}
