package core

import (
	"context"
	"log/slog"
	"sort"
)

// Service handles the business logic for records on top of a Store.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, logger: logger}
}

// Store exposes the underlying store.
func (s *Service) Store() Store {
	return s.store
}

// SaveRecord saves a record with business validation.
// Extra fields are merged under the title and text.
func (s *Service) SaveRecord(title, text string, fields Fields) error {
	if title == "" {
		return ErrEmptyTitle
	}

	f := fields.Clone()
	f[FieldText] = text
	if existing, ok := s.store.Get(title); ok {
		s.store.Put(existing.With(f))
	} else {
		s.store.Put(NewRecord(title, f))
	}

	s.logger.Debug("record saved", "title", title)
	return nil
}

// GetRecord retrieves a record.
func (s *Service) GetRecord(title string) (Record, error) {
	if title == "" {
		return Record{}, ErrEmptyTitle
	}
	r, ok := s.store.Get(title)
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

// ListRecords retrieves all records ordered by title.
func (s *Service) ListRecords() []Record {
	titles := s.store.Titles()
	out := make([]Record, 0, len(titles))
	for _, t := range titles {
		if r, ok := s.store.Get(t); ok {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// DeleteRecord removes a record.
func (s *Service) DeleteRecord(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if !s.store.Delete(title) {
		return ErrNotFound
	}
	return nil
}

// Watch observes changes in the store if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.store.(Watchable)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	return w.Watch(ctx, pattern)
}
