// Package core holds the domain types shared by every rabbithole package:
// records, change sets, store events and the Store port.
package core

import (
	"fmt"
	"sort"
	"strings"
)

// Well-known field names.
const (
	FieldTitle = "title"
	FieldText  = "text"
	FieldType  = "type"
	FieldTags  = "tags"
)

// Fields represents the flexible key-value pairs of a record.
type Fields map[string]any

// Clone returns a shallow copy of the fields.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Record is an immutable key-identified document with a text body.
// Replacing a record in a Store atomically supersedes the old one for that title.
type Record struct {
	Title  string
	Fields Fields
}

// NewRecord creates a record, copying fields so the caller's map stays untouched.
// The title field always mirrors Title.
func NewRecord(title string, fields Fields) Record {
	f := fields.Clone()
	f[FieldTitle] = title
	return Record{Title: title, Fields: f}
}

// Text returns the text field, or "" when it is missing.
func (r Record) Text() string {
	return r.String(FieldText)
}

// Type returns the type field, or "" when it is missing.
func (r Record) Type() string {
	return r.String(FieldType)
}

// String returns a field formatted as a string.
func (r Record) String(name string) string {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// With returns a copy of the record with the given fields overridden.
// Overriding the title field renames the copy.
func (r Record) With(overrides Fields) Record {
	f := r.Fields.Clone()
	for k, v := range overrides {
		f[k] = v
	}
	title := r.Title
	if t, ok := overrides[FieldTitle].(string); ok && t != "" {
		title = t
	}
	return NewRecord(title, f)
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change of a single record.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}

// ChangeSet is the batch of titles changed during one mutation cycle.
type ChangeSet map[string]EventType

// NewChangeSet builds a change set marking every title as modified.
func NewChangeSet(titles ...string) ChangeSet {
	c := make(ChangeSet, len(titles))
	for _, t := range titles {
		c[t] = EventModify
	}
	return c
}

// Has reports whether title changed.
func (c ChangeSet) Has(title string) bool {
	_, ok := c[title]
	return ok
}

// Titles returns the changed titles in sorted order.
func (c ChangeSet) Titles() []string {
	out := make([]string, 0, len(c))
	for t := range c {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (c ChangeSet) String() string {
	return "{" + strings.Join(c.Titles(), ", ") + "}"
}
