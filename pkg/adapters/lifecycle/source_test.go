package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rabbithole/pkg/adapters/memory"
	"github.com/aretw0/rabbithole/pkg/core"
)

func closed(src *Source) func() bool {
	return func() bool {
		select {
		case _, ok := <-src.Events():
			return !ok
		default:
			return false
		}
	}
}

func TestSource_ForwardsStoreEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := memory.NewStore(memory.Config{})
	src := NewSource(store, "$:/state/*")
	require.NoError(t, src.Start(ctx))

	store.Put(core.NewRecord("other", core.Fields{"text": "x"}))
	store.Put(core.NewRecord("$:/state/a", core.Fields{"text": "open"}))

	select {
	case e := <-src.Events():
		assert.Equal(t, "CREATE $:/state/a", e.String())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	cancel()
	assert.Eventually(t, closed(src), time.Second, 10*time.Millisecond)
}

func TestSource_ThroughService(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := memory.NewStore(memory.Config{})
	src := NewSource(core.NewService(store, nil), "**")
	require.NoError(t, src.Start(ctx))

	store.Delete("missing")
	store.Put(core.NewRecord("A", nil))

	select {
	case e := <-src.Events():
		assert.Equal(t, "CREATE A", e.String())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestSource_InvalidPattern(t *testing.T) {
	src := NewSource(memory.NewStore(memory.Config{}), "[")
	err := src.Start(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidPattern)
	assert.True(t, closed(src)())
}

// plainStore hides the memory store's Watch method.
type plainStore struct{ core.Store }

func TestSource_Unsupported(t *testing.T) {
	service := core.NewService(plainStore{memory.NewStore(memory.Config{})}, nil)
	err := NewSource(service, "**").Start(context.Background())
	assert.ErrorIs(t, err, core.ErrWatchUnsupported)
}
