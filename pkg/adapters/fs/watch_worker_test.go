package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rabbithole/pkg/adapters/memory"
)

func TestWatchWorker_ReimportsChangedFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	path := filepath.Join(dir, "note.tid")
	require.NoError(t, os.WriteFile(path, []byte("title: Note\n\nfirst"), 0o644))

	store := memory.NewStore(memory.Config{})
	var mu sync.Mutex
	var imported []string
	w := NewWatchWorker(WatchConfig{
		Files:    []string{path},
		Store:    store,
		Debounce: 10 * time.Millisecond,
		OnImport: func(p string, n int, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				imported = append(imported, p)
			}
		},
	})
	require.NoError(t, w.Start(ctx))
	assert.Equal(t, worker.StatusRunning, w.State().Status)

	require.NoError(t, os.WriteFile(path, []byte("title: Note\n\nsecond"), 0o644))

	assert.Eventually(t, func() bool {
		r, ok := store.Get("Note")
		return ok && r.Text() == "second"
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Contains(t, imported, path)
	mu.Unlock()
	assert.GreaterOrEqual(t, w.Imports(), uint64(1))

	require.NoError(t, w.Stop(context.Background()))
}

func TestWatchWorker_RemovesDroppedTitles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"A","text":"a"},{"title":"B","text":"b"}]`), 0o644))

	store := memory.NewStore(memory.Config{})
	records, err := ReadRecords(DefaultRegistry(false), path)
	require.NoError(t, err)
	for _, r := range records {
		store.Put(r)
	}

	w := NewWatchWorker(WatchConfig{Files: []string{path}, Store: store, Debounce: 10 * time.Millisecond})
	require.NoError(t, w.Start(ctx))
	defer w.Stop(context.Background())

	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"B","text":"b2"}]`), 0o644))

	assert.Eventually(t, func() bool {
		_, hasA := store.Get("A")
		b, _ := store.Get("B")
		return !hasA && b.Text() == "b2"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchWorker_SkipsUnchangedContent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "a.tid")
	content := []byte("title: A\n\nsame")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	w := NewWatchWorker(WatchConfig{Files: []string{path}, Store: memory.NewStore(memory.Config{}), Debounce: 10 * time.Millisecond})
	require.NoError(t, w.Start(ctx))
	defer w.Stop(context.Background())

	require.NoError(t, os.WriteFile(path, content, 0o644))

	assert.Eventually(t, func() bool { return w.Skipped() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(0), w.Imports())
}

func TestWatchWorker_IgnoresOtherFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	watched := filepath.Join(dir, "a.tid")
	require.NoError(t, os.WriteFile(watched, []byte("title: A\n\na"), 0o644))

	store := memory.NewStore(memory.Config{})
	w := NewWatchWorker(WatchConfig{Files: []string{watched}, Store: store, Debounce: 10 * time.Millisecond})
	require.NoError(t, w.Start(ctx))
	defer w.Stop(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.tid"), []byte("title: B\n\nb"), 0o644))
	time.Sleep(100 * time.Millisecond)

	_, ok := store.Get("B")
	assert.False(t, ok)
	assert.Equal(t, uint64(0), w.Imports())
}

func TestWatchWorker_StartTwice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "a.tid")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	w := NewWatchWorker(WatchConfig{Files: []string{path}, Store: memory.NewStore(memory.Config{})})
	require.NoError(t, w.Start(ctx))
	defer w.Stop(context.Background())

	assert.Error(t, w.Start(ctx))
}

func TestDebouncer_Coalesces(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.add("k", func() { calls.Add(1) })
	}
	d.add("other", func() { calls.Add(10) })

	assert.Eventually(t, func() bool { return calls.Load() == 11 }, time.Second, 5*time.Millisecond)
	assert.True(t, d.stopAndWait(time.Second))
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	d := newDebouncer(time.Hour)
	var calls atomic.Int32
	d.add("k", func() { calls.Add(1) })

	assert.True(t, d.stopAndWait(time.Second))
	d.add("k", func() { calls.Add(1) })
	assert.Equal(t, int32(0), calls.Load())
}
