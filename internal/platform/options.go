package platform

import (
	"log/slog"

	"github.com/aretw0/rabbithole/pkg/adapters/fs"
	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/tree"
)

// options holds the internal configuration of a wiki.
type options struct {
	store         core.Store
	logger        *slog.Logger
	adapter       string
	database      string
	parser        tree.Parser
	macros        []tree.MacroDefinition
	eventBuffer   int
	strict        bool
	deserializers map[string]fs.Deserializer
}

// Option defines a functional option for configuring a wiki.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:       "memory",
		deserializers: make(map[string]fs.Deserializer),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore allows injecting a custom record store.
// If provided, the adapter selection is skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the store adapter by name: "memory" (default) or "sqlite".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithDatabase sets the database file of the "sqlite" adapter and selects it.
func WithDatabase(path string) Option {
	return func(o *options) {
		o.adapter = "sqlite"
		o.database = path
	}
}

// WithParser replaces the markup parser.
func WithParser(p tree.Parser) Option {
	return func(o *options) {
		o.parser = p
	}
}

// WithMacro registers an additional macro, replacing a built-in one of the same name.
func WithMacro(def tree.MacroDefinition) Option {
	return func(o *options) {
		o.macros = append(o.macros, def)
	}
}

// WithEventBuffer sets the buffer size of store watch streams.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithStrict enables strict number parsing for the default deserializers.
// Numbers in JSON/YAML/Markdown/CSV are kept as json.Number to preserve
// precision of large integers.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithDeserializer registers a deserializer for a format identifier
// (a file extension such as ".txt", or a composite format name).
func WithDeserializer(format string, d fs.Deserializer) Option {
	return func(o *options) {
		o.deserializers[format] = d
	}
}
