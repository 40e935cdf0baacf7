package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/rabbithole/pkg/adapters/fs"
	"github.com/aretw0/rabbithole/pkg/commands"
	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/macros"
	"github.com/aretw0/rabbithole/pkg/markup"
	"github.com/aretw0/rabbithole/pkg/render"
	"github.com/aretw0/rabbithole/pkg/tree"
)

// Wiki wires a record store to the parser, macros, renderer and commands.
type Wiki struct {
	Service   *core.Service
	Store     core.Store
	Parser    tree.Parser
	Macros    tree.Macros
	Renderer  *render.Renderer
	Registry  *fs.Registry
	Writers   fs.Serializers
	Commander *commands.Commander
	Logger    *slog.Logger
}

// New builds a wiki from the options.
//
//	w, err := rabbithole.New(rabbithole.WithLogger(logger))
func New(opts ...Option) (*Wiki, error) {
	o := applyOptions(opts)

	store, err := initStore(o)
	if err != nil {
		return nil, err
	}

	parser := o.parser
	if parser == nil {
		parser = markup.New(o.logger)
	}

	registry := macros.Default()
	for _, def := range o.macros {
		registry.Register(def)
	}

	deserializers := fs.DefaultRegistry(o.strict)
	for format, d := range o.deserializers {
		deserializers.Register(format, d)
	}

	w := &Wiki{
		Service:  core.NewService(store, o.logger),
		Store:    store,
		Parser:   parser,
		Macros:   registry,
		Registry: deserializers,
		Writers:  fs.DefaultSerializers(),
		Logger:   o.logger,
		Renderer: render.New(render.Config{
			Store:  store,
			Parser: parser,
			Macros: registry,
			Logger: o.logger,
		}),
	}
	w.Commander = commands.NewCommander(w.env())
	return w, nil
}

func (w *Wiki) env() commands.Env {
	return commands.Env{Store: w.Store, Registry: w.Registry, Logger: w.Logger}
}

// Load imports files one after another, stopping at the first failure.
func (w *Wiki) Load(ctx context.Context, files ...string) error {
	invocations := make([]commands.Invocation, 0, len(files))
	for _, f := range files {
		invocations = append(invocations, commands.Invocation{Name: commands.LoadName, Args: []string{f}})
	}
	return w.Commander.Run(ctx, invocations...)
}

// Close releases the store when it holds resources, such as a database.
func (w *Wiki) Close() error {
	if c, ok := w.Store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Export writes records to path in the format of its extension. With no
// titles every record is written, in title order.
func (w *Wiki) Export(path string, titles ...string) error {
	if len(titles) == 0 {
		titles = w.Store.Titles()
	}
	records := make([]core.Record, 0, len(titles))
	for _, t := range titles {
		r, ok := w.Store.Get(t)
		if !ok {
			return fmt.Errorf("export %q: %w", t, core.ErrNotFound)
		}
		records = append(records, r)
	}
	if err := fs.WriteRecords(w.Writers, path, records); err != nil {
		return err
	}
	w.Logger.Info("exported", "path", path, "records", len(records))
	return nil
}

// Render renders a record into a live document.
func (w *Wiki) Render(title string, opts ...render.Option) (*render.Document, error) {
	return w.Renderer.Render(title, opts...)
}

// WatchFiles starts a worker re-importing files when they change.
// The caller stops it with Stop.
func (w *Wiki) WatchFiles(ctx context.Context, files ...string) (*fs.WatchWorker, error) {
	worker := fs.NewWatchWorker(fs.WatchConfig{
		Files:    files,
		Store:    w.Store,
		Registry: w.Registry,
		Logger:   w.Logger,
	})
	if err := worker.Start(ctx); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	return worker, nil
}
