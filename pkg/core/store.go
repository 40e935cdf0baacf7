package core

import "context"

// Listener receives the batch of titles changed by one mutation cycle.
type Listener func(changes ChangeSet)

// Store defines the contract of the key→record mapping with change notification.
// Mutations are last-write-wins per title; the surrounding runtime serializes delivery.
type Store interface {
	// Get retrieves a record by title.
	Get(title string) (Record, bool)

	// Put stores the record under its title, replacing any previous one,
	// and triggers change notification.
	Put(r Record)

	// Delete removes a record. It reports whether a record was removed.
	Delete(title string) bool

	// Titles returns all titles in sorted order.
	Titles() []string

	// Subscribe registers a listener for change notifications.
	// The returned function removes it.
	Subscribe(fn Listener) (unsubscribe func())

	// Batch runs fn and delivers all changes it made as a single ChangeSet.
	Batch(fn func())
}

// Watchable defines an interface for stores that stream events to other goroutines.
type Watchable interface {
	// Watch emits an event for every changed title matching pattern until ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
