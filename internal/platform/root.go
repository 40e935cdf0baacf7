package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrConfigNotFound is returned by FindConfig when no configuration file exists
// in the start directory or any of its parents.
var ErrConfigNotFound = errors.New("config not found")

// FindConfig looks upwards from startDir for a rabbithole.yaml file and
// returns its absolute path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		path := filepath.Join(dir, ConfigFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrConfigNotFound
}
