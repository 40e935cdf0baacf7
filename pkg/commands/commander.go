// Package commands implements commands that operate on a record store, and a
// Commander that runs them one after another.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/rabbithole/pkg/adapters/fs"
	"github.com/aretw0/rabbithole/pkg/core"
)

// Command is one executable command. Execute either fails synchronously by
// returning an error, or returns nil and reports completion through done
// exactly once.
type Command interface {
	Execute(ctx context.Context, args []string, done func(error)) error
}

// Env is what commands operate on.
type Env struct {
	Store    core.Store
	Registry *fs.Registry
	Logger   *slog.Logger
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}
	if e.Registry == nil {
		e.Registry = fs.DefaultRegistry(false)
	}
	return e
}

// Factory creates a command bound to an environment.
type Factory func(env Env) Command

// Invocation is a command name with its arguments.
type Invocation struct {
	Name string
	Args []string
}

// Commander runs invocations sequentially, waiting for each asynchronous
// command to complete before starting the next.
type Commander struct {
	env      Env
	registry map[string]Factory
}

// NewCommander creates a commander with the built-in commands registered.
func NewCommander(env Env) *Commander {
	c := &Commander{env: env.withDefaults(), registry: make(map[string]Factory)}
	c.Register(LoadName, func(env Env) Command { return NewLoad(env) })
	return c
}

// Register adds a command factory under name.
func (c *Commander) Register(name string, f Factory) {
	c.registry[name] = f
}

// Run executes the invocations in order and stops at the first failure,
// returning the failing command's error as is.
func (c *Commander) Run(ctx context.Context, invocations ...Invocation) error {
	for _, inv := range invocations {
		if err := c.execute(ctx, inv); err != nil {
			c.env.Logger.Debug("command failed", "name", inv.Name, "error", err)
			return err
		}
	}
	return nil
}

func (c *Commander) execute(ctx context.Context, inv Invocation) error {
	factory, ok := c.registry[inv.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, inv.Name)
	}
	c.env.Logger.Debug("executing command", "name", inv.Name, "args", inv.Args)

	result := make(chan error, 1)
	var once sync.Once
	done := func(err error) {
		once.Do(func() { result <- err })
	}
	if err := factory(c.env).Execute(ctx, inv.Args, done); err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
