// Package memory provides the in-memory Record Store with batched change notification.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/rabbithole/pkg/core"
)

// DefaultEventBuffer is the per-watcher channel size used when Config.EventBuffer is zero.
const DefaultEventBuffer = 100

// Config holds the configuration for the memory store.
type Config struct {
	Logger      *slog.Logger
	EventBuffer int // Buffer of each Watch channel
}

type subscription struct {
	id int
	fn core.Listener
}

type watcher struct {
	pattern string
	ch      chan core.Event
}

// Store implements core.Store and core.Watchable in memory.
//
// Listeners run on the goroutine that mutated the store, after the lock is
// released. Puts made while a delivery is in progress are queued and delivered
// once the current delivery returns.
type Store struct {
	mu          sync.RWMutex
	records     map[string]core.Record
	subs        []subscription
	nextSubID   int
	pending     core.ChangeSet
	batchDepth  int
	delivering  bool
	deliveries  uint64
	dropped     uint64
	logger      *slog.Logger
	eventBuffer int

	wmu      sync.Mutex
	watchers []*watcher
}

// NewStore creates an empty store.
func NewStore(config Config) *Store {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	buffer := config.EventBuffer
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Store{
		records:     make(map[string]core.Record),
		pending:     make(core.ChangeSet),
		logger:      logger,
		eventBuffer: buffer,
	}
}

// Get retrieves a record by title.
func (s *Store) Get(title string) (core.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[title]
	return r, ok
}

// Put stores the record, replacing any previous record with the same title.
func (s *Store) Put(r core.Record) {
	if r.Title == "" {
		s.logger.Warn("ignoring record without title")
		return
	}

	s.mu.Lock()
	kind := core.EventCreate
	if _, ok := s.records[r.Title]; ok {
		kind = core.EventModify
	}
	s.records[r.Title] = r
	s.mark(r.Title, kind)
	s.mu.Unlock()

	s.logger.Debug("record stored", "title", r.Title, "type", kind)
	s.flush()
}

// Delete removes a record and reports whether it existed.
func (s *Store) Delete(title string) bool {
	s.mu.Lock()
	if _, ok := s.records[title]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.records, title)
	s.mark(title, core.EventDelete)
	s.mu.Unlock()

	s.logger.Debug("record deleted", "title", title)
	s.flush()
	return true
}

// mark records a pending change. Must be called with mu held.
func (s *Store) mark(title string, kind core.EventType) {
	// A create followed by a modify in the same cycle is still a create.
	if prev, ok := s.pending[title]; ok && prev == core.EventCreate && kind == core.EventModify {
		return
	}
	s.pending[title] = kind
}

// Titles returns all titles in sorted order.
func (s *Store) Titles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make([]string, 0, len(s.records))
	for t := range s.records {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Subscribe registers a listener. The returned function removes it.
func (s *Store) Subscribe(fn core.Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Batch runs fn and delivers every change it made as one ChangeSet.
// Batches nest; delivery happens when the outermost batch returns.
func (s *Store) Batch(fn func()) {
	s.mu.Lock()
	s.batchDepth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.batchDepth--
		s.mu.Unlock()
		s.flush()
	}()

	fn()
}

// flush delivers pending changes until none are left.
func (s *Store) flush() {
	s.mu.Lock()
	if s.batchDepth > 0 || s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 || s.batchDepth > 0 {
			s.delivering = false
			s.mu.Unlock()
			return
		}
		changes := s.pending
		s.pending = make(core.ChangeSet)
		subs := make([]subscription, len(s.subs))
		copy(subs, s.subs)
		s.deliveries++
		s.mu.Unlock()

		s.logger.Debug("delivering changes", "changes", changes.String(), "listeners", len(subs))
		s.broadcast(changes)
		for _, sub := range subs {
			sub.fn(changes)
		}
	}
}

// Watch emits an event for every changed title matching pattern until ctx is done.
// Slow consumers never block the store: events that do not fit the buffer are dropped.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidPattern, pattern)
	}

	w := &watcher{pattern: pattern, ch: make(chan core.Event, s.eventBuffer)}
	s.wmu.Lock()
	s.watchers = append(s.watchers, w)
	s.wmu.Unlock()

	go func() {
		<-ctx.Done()
		s.wmu.Lock()
		defer s.wmu.Unlock()
		for i, other := range s.watchers {
			if other == w {
				s.watchers = append(s.watchers[:i:i], s.watchers[i+1:]...)
				break
			}
		}
		close(w.ch)
	}()

	return w.ch, nil
}

func (s *Store) broadcast(changes core.ChangeSet) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if len(s.watchers) == 0 {
		return
	}

	now := time.Now().Unix()
	for _, title := range changes.Titles() {
		e := core.Event{Type: changes[title], ID: title, Timestamp: now}
		for _, w := range s.watchers {
			match, err := doublestar.Match(w.pattern, title)
			if err != nil || !match {
				continue
			}
			select {
			case w.ch <- e:
			default:
				s.mu.Lock()
				s.dropped++
				s.mu.Unlock()
				s.logger.Warn("watch buffer full, dropping event", "title", title, "pattern", w.pattern)
			}
		}
	}
}

var _ core.Store = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
