package rabbithole

import (
	"log/slog"

	"github.com/aretw0/rabbithole/internal/platform"
	"github.com/aretw0/rabbithole/pkg/adapters/fs"
	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/render"
	"github.com/aretw0/rabbithole/pkg/tree"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Wiki is a record store wired to the parser, macros, renderer and commands.
type Wiki = platform.Wiki

// Record is a key-identified document with a text body.
type Record = core.Record

// Fields are the key-value pairs of a record.
type Fields = core.Fields

// ChangeSet is the batch of titles changed in one mutation cycle.
type ChangeSet = core.ChangeSet

// Document is a rendered record following store changes.
type Document = render.Document

// NewRecord creates a record.
func NewRecord(title string, fields Fields) Record {
	return core.NewRecord(title, fields)
}

// --- Configuration ---

// Option defines a functional option for configuring a wiki.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom record store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the store adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithDatabase persists records in a SQLite database file.
func WithDatabase(path string) Option {
	return platform.WithDatabase(path)
}

// WithParser replaces the markup parser.
func WithParser(p tree.Parser) Option {
	return platform.WithParser(p)
}

// WithMacro registers an additional macro.
func WithMacro(def tree.MacroDefinition) Option {
	return platform.WithMacro(def)
}

// WithEventBuffer sets the buffer size of store watch streams.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithStrict enables strict number parsing for the default deserializers.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithDeserializer registers a deserializer for a format identifier.
func WithDeserializer(format string, d fs.Deserializer) Option {
	return platform.WithDeserializer(format, d)
}

// --- Factory ---

// New creates a wiki backed by an in-memory store unless WithStore is given.
func New(opts ...Option) (*Wiki, error) {
	return platform.New(opts...)
}
