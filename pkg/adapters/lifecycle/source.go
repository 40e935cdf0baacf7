// Package lifecycle bridges store change streams to the lifecycle runtime.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/rabbithole/pkg/core"
)

// Source emits the changes of the records matching a key pattern as
// lifecycle events. Both core.Service and the stores implement Watchable.
type Source struct {
	watch   core.Watchable
	pattern string
	out     chan lifecycle.Event
}

// NewSource creates a source for the titles matching pattern.
func NewSource(watch core.Watchable, pattern string) *Source {
	return &Source{
		watch:   watch,
		pattern: pattern,
		out:     make(chan lifecycle.Event),
	}
}

// Events implements lifecycle.Source. The channel closes when the source stops.
func (s *Source) Events() <-chan lifecycle.Event {
	return s.out
}

// Start subscribes to the store and forwards events until ctx is done or
// the store stream ends. An unsupported store or invalid pattern is
// reported here and the output is closed.
func (s *Source) Start(ctx context.Context) error {
	events, err := s.watch.Watch(ctx, s.pattern)
	if err != nil {
		close(s.out)
		return fmt.Errorf("watch %q: %w", s.pattern, err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

var _ lifecycle.Source = (*Source)(nil)
