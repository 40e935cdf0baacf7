package fs

import (
	"crypto/sha256"
	"sort"
	"sync"

	"github.com/aretw0/rabbithole/pkg/core"
)

// indexEntry is what the last import of a file produced.
type indexEntry struct {
	Sum    [sha256.Size]byte
	Titles map[string]bool
}

// importIndex remembers, per watched file, the content hash and the titles
// of its last import.
type importIndex struct {
	mu      sync.RWMutex
	entries map[string]*indexEntry // Key is the absolute path
}

func newImportIndex() *importIndex {
	return &importIndex{entries: make(map[string]*indexEntry)}
}

// Fresh reports whether data matches the last import of path.
func (c *importIndex) Fresh(path string, data []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	return ok && entry.Sum == sha256.Sum256(data)
}

// Set records an import of path and returns the titles the previous import
// had that this one no longer has, in sorted order.
func (c *importIndex) Set(path string, data []byte, records []core.Record) []string {
	titles := make(map[string]bool, len(records))
	for _, r := range records {
		titles[r.Title] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var dropped []string
	if prev, ok := c.entries[path]; ok {
		for t := range prev.Titles {
			if !titles[t] {
				dropped = append(dropped, t)
			}
		}
	}
	sort.Strings(dropped)

	c.entries[path] = &indexEntry{Sum: sha256.Sum256(data), Titles: titles}
	return dropped
}

// Delete forgets a file.
func (c *importIndex) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of indexed files.
func (c *importIndex) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
