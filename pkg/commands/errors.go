package commands

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFilename is returned by load when called without a file.
	ErrMissingFilename = errors.New("Missing filename")
	// ErrUnknownCommand is returned by the commander for unregistered names.
	ErrUnknownCommand = errors.New("unknown command")
)

// NoRecordsError reports a file that parsed into zero records.
type NoRecordsError struct {
	Filename string
}

func (e *NoRecordsError) Error() string {
	return fmt.Sprintf(`No tiddlers found in file "%s"`, e.Filename)
}
