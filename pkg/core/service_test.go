package core_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/aretw0/rabbithole/pkg/core"
)

// MockStore implements core.Store in memory.
// It deliberately does NOT implement core.Watchable to test fallback/errors.
type MockStore struct {
	records map[string]core.Record
	puts    int
}

func NewMockStore() *MockStore {
	return &MockStore{
		records: make(map[string]core.Record),
	}
}

func (m *MockStore) Get(title string) (core.Record, bool) {
	r, ok := m.records[title]
	return r, ok
}

func (m *MockStore) Put(r core.Record) {
	m.puts++
	m.records[r.Title] = r
}

func (m *MockStore) Delete(title string) bool {
	if _, ok := m.records[title]; !ok {
		return false
	}
	delete(m.records, title)
	return true
}

func (m *MockStore) Titles() []string {
	var titles []string
	for t := range m.records {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

func (m *MockStore) Subscribe(fn core.Listener) func() { return func() {} }
func (m *MockStore) Batch(fn func())                    { fn() }

func TestService_CRUD(t *testing.T) {
	store := NewMockStore()
	service := core.NewService(store, nil)

	// 1. Save
	err := service.SaveRecord("rec1", "content1", core.Fields{"author": "me"})
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	// 2. Get
	rec, err := service.GetRecord("rec1")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if rec.Text() != "content1" {
		t.Errorf("expected text 'content1', got '%s'", rec.Text())
	}
	if rec.String("author") != "me" {
		t.Errorf("expected author 'me', got '%s'", rec.String("author"))
	}

	// 3. Update keeps existing fields
	if err := service.SaveRecord("rec1", "content2", nil); err != nil {
		t.Fatalf("SaveRecord update failed: %v", err)
	}
	rec, _ = service.GetRecord("rec1")
	if rec.Text() != "content2" || rec.String("author") != "me" {
		t.Errorf("unexpected record after update: %+v", rec.Fields)
	}

	// 4. List
	_ = service.SaveRecord("rec0", "content0", nil)
	recs := service.ListRecords()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Title != "rec0" {
		t.Errorf("expected sorted list, got %s first", recs[0].Title)
	}

	// 5. Delete
	if err := service.DeleteRecord("rec1"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if _, err := service.GetRecord("rec1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after deletion, got %v", err)
	}
	if err := service.DeleteRecord("rec1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestService_EmptyTitle(t *testing.T) {
	service := core.NewService(NewMockStore(), nil)

	if err := service.SaveRecord("", "x", nil); !errors.Is(err, core.ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := service.GetRecord(""); !errors.Is(err, core.ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestService_Watch_Unsupported(t *testing.T) {
	service := core.NewService(NewMockStore(), nil)

	_, err := service.Watch(context.TODO(), "**")
	if !errors.Is(err, core.ErrWatchUnsupported) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRecord_With(t *testing.T) {
	orig := core.NewRecord("S", core.Fields{"text": "", "color": "red"})
	next := orig.With(core.Fields{"text": "open"})

	if orig.Text() != "" {
		t.Errorf("original record mutated: %q", orig.Text())
	}
	if next.Text() != "open" || next.String("color") != "red" || next.Title != "S" {
		t.Errorf("unexpected copy: %+v", next)
	}
	if next.String(core.FieldTitle) != "S" {
		t.Errorf("title field not mirrored: %v", next.Fields)
	}
}

func TestChangeSet(t *testing.T) {
	c := core.NewChangeSet("b", "a")
	if !c.Has("a") || c.Has("z") {
		t.Errorf("unexpected membership: %v", c)
	}
	if got := c.String(); got != "{a, b}" {
		t.Errorf("unexpected string: %s", got)
	}
	if core.ChangeSet(nil).Has("a") {
		t.Error("nil change set should be empty")
	}
}
