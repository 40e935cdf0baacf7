package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfig(t *testing.T) {
	// base/
	//   repo/ (rabbithole.yaml)
	//     subdir/
	//       nested/
	//   empty/
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	require.NoError(t, os.MkdirAll(nestedDir, 0o755))
	require.NoError(t, os.MkdirAll(emptyDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, ConfigFile), []byte("strict: true\n"), 0o644))

	tests := []struct {
		name      string
		startPath string
		want      string
		wantErr   bool
	}{
		{"start at root", repoDir, filepath.Join(repoDir, ConfigFile), false},
		{"start in subdir", subDir, filepath.Join(repoDir, ConfigFile), false},
		{"start nested deeply", nestedDir, filepath.Join(repoDir, ConfigFile), false},
		{"no config found", emptyDir, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindConfig(tt.startPath)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfigNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.want), filepath.Clean(got))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("event_buffer: 7\nstrict: true\npreload:\n  - notes.tid\n  - /abs/other.json\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.EventBuffer)
	assert.True(t, cfg.Strict)
	assert.Equal(t, []string{filepath.Join(dir, "notes.tid"), "/abs/other.json"}, cfg.PreloadFiles())
	assert.Len(t, cfg.Options(), 2)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("event_buffer: [oops"), 0o644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "parse config")
}

func TestLoadConfig_Database(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("database: wiki.db\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Options(), 3)

	o := applyOptions(cfg.Options())
	assert.Equal(t, "sqlite", o.adapter)
	assert.Equal(t, filepath.Join(dir, "wiki.db"), o.database)
}
