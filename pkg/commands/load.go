package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/rabbithole/pkg/adapters/fs"
)

// LoadName is the name of the load command.
const LoadName = "load"

// Load imports the records of a file into the store. Reading and parsing
// run asynchronously; the records are registered together, or not at all.
type Load struct {
	env Env
}

// NewLoad creates a load command.
func NewLoad(env Env) *Load {
	return &Load{env: env.withDefaults()}
}

// Execute implements Command. Only the first argument is used.
func (l *Load) Execute(ctx context.Context, args []string, done func(error)) error {
	if len(args) < 1 || args[0] == "" {
		return ErrMissingFilename
	}
	filename := args[0]

	var once sync.Once
	complete := func(err error) {
		once.Do(func() { done(err) })
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		complete(l.load(filename))
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		l.env.Logger.Error("load failed", "file", filename, "error", err)
		complete(fmt.Errorf("load %s: %w", filename, err))
	}))
	return nil
}

func (l *Load) load(filename string) error {
	records, err := fs.ReadRecords(l.env.Registry, filename)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return &NoRecordsError{Filename: filename}
	}

	l.env.Store.Batch(func() {
		for _, r := range records {
			l.env.Store.Put(r)
		}
	})
	l.env.Logger.Info("loaded", "file", filename, "records", len(records))
	return nil
}

// LoadFile runs the load command and waits for it to complete.
func LoadFile(ctx context.Context, env Env, filename string) error {
	return NewCommander(env).Run(ctx, Invocation{Name: LoadName, Args: []string{filename}})
}
