package fs

import (
	"fmt"
	"os"

	"github.com/aretw0/rabbithole/pkg/core"
)

// ReadRecords reads a file and deserializes it according to its extension.
// Records default to the filename as title.
func ReadRecords(registry *Registry, path string) ([]core.Record, error) {
	_, records, err := readFile(registry, path)
	return records, err
}

func readFile(registry *Registry, path string) ([]byte, []core.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	records, err := registry.Deserialize(FormatForFilename(path), data, core.Fields{core.FieldTitle: path})
	return data, records, err
}
