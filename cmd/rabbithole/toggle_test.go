package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rabbithole"
	"github.com/aretw0/rabbithole/pkg/adapters/sqlite"
	"github.com/aretw0/rabbithole/pkg/core"
)

// useConfig points the persistent flags at a config file in a temp dir
// that stores records in wiki.db next to it.
func useConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rabbithole.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: wiki.db\n"), 0o644))

	prevConfig, prevPreload, prevDB := configPath, preload, database
	configPath, preload, database = path, nil, ""
	t.Cleanup(func() { configPath, preload, database = prevConfig, prevPreload, prevDB })
	return dir
}

func sliderWiki(t *testing.T) *rabbithole.Wiki {
	t.Helper()
	wiki, err := rabbithole.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = wiki.Close() })
	wiki.Store.Put(rabbithole.NewRecord("Home", rabbithole.Fields{
		"text": `<<slider "$:/state/home" label:Greeting content:Hello>>`,
	}))
	return wiki
}

func TestToggle_PersistsAndPrints(t *testing.T) {
	wiki := sliderWiki(t)

	var out, errOut bytes.Buffer
	require.NoError(t, toggle(wiki, "Home", 0, &out, &errOut))

	assert.Contains(t, out.String(), `style="display:block"`)
	assert.Contains(t, out.String(), "<p>Hello</p>")
	assert.Equal(t, "$:/state/home: open\n", errOut.String())
}

func TestToggle_Errors(t *testing.T) {
	wiki := sliderWiki(t)
	var out, errOut bytes.Buffer

	err := toggle(wiki, "Home", 3, &out, &errOut)
	assert.ErrorIs(t, err, errNoSlider)

	err = toggle(wiki, "Missing", 0, &out, &errOut)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, out.String())
}

func TestWithWiki_ClosesStoreWhenCommandFails(t *testing.T) {
	dir := useConfig(t)
	failed := errors.New("command failed")

	var store *sqlite.Store
	err := withWiki(context.Background(), func(wiki *rabbithole.Wiki) error {
		var ok bool
		store, ok = wiki.Store.(*sqlite.Store)
		require.True(t, ok)
		wiki.Store.Put(rabbithole.NewRecord("$:/state/a", rabbithole.Fields{"text": "open"}))
		return failed
	})
	assert.ErrorIs(t, err, failed)
	require.NotNil(t, store)

	// Closed stores no longer write through.
	store.Put(rabbithole.NewRecord("$:/state/b", rabbithole.Fields{"text": "open"}))
	assert.Equal(t, uint64(1), store.State().(sqlite.StoreState).Writes)

	reopened, err := sqlite.Open(sqlite.Config{Path: filepath.Join(dir, "wiki.db")})
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []string{"$:/state/a"}, reopened.Titles())
}
