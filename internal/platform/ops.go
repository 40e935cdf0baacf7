package platform

import (
	"fmt"

	"github.com/aretw0/rabbithole/pkg/adapters/memory"
	"github.com/aretw0/rabbithole/pkg/adapters/sqlite"
	"github.com/aretw0/rabbithole/pkg/core"
)

// Init creates the record store described by the options.
func Init(opts ...Option) (core.Store, error) {
	return initStore(applyOptions(opts))
}

func initStore(o *options) (core.Store, error) {
	if o.store != nil {
		return o.store, nil
	}

	switch o.adapter {
	case "memory":
		return memory.NewStore(memory.Config{
			Logger:      o.logger,
			EventBuffer: o.eventBuffer,
		}), nil
	case "sqlite":
		store, err := sqlite.Open(sqlite.Config{
			Path:        o.database,
			Logger:      o.logger,
			EventBuffer: o.eventBuffer,
		})
		if err != nil {
			return nil, fmt.Errorf("init sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}
