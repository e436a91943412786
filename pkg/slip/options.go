package slip

import (
	"io"
	"log/slog"
	"strings"

	"nickandperla.net/slip/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore configures SQLite persistence at the given path. The store
// is opened by New, which reports any error.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		r.dbPath = path
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithStore configures a custom store. The Runtime closes it on Close.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithOutput sets the writer print-debug writes to.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.output = w
	}
}

// WithLogger sets the structured logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithPrelude sets a custom prelude source to be loaded on startup.
// If not set, the embedded standard prelude is used.
func WithPrelude(source string) Option {
	return func(r *Runtime) {
		r.prelude = source
	}
}

// WithNoStdlib disables loading the prelude.
func WithNoStdlib() Option {
	return func(r *Runtime) {
		r.noStdlib = true
	}
}

// WithMaxDepth limits how deeply evaluation may nest.
func WithMaxDepth(n int) Option {
	return func(r *Runtime) {
		r.maxDepth = n
	}
}

// WithSuggestions turns "did you mean" suggestions for unbound identifiers
// on or off. They are on by default.
func WithSuggestions(on bool) Option {
	return func(r *Runtime) {
		r.suggestions = on
	}
}

// Store interface for custom stores.
type Store = store.Store

// PersistMode controls when definitions are persisted.
type PersistMode int

// Persist mode constants.
const (
	// PersistOnDemand writes a definition only when Persist is called.
	PersistOnDemand PersistMode = iota
	// PersistAlways writes every top-level definition as it is made.
	PersistAlways
	// PersistNever writes nothing.
	PersistNever
)

func (m PersistMode) String() string {
	switch m {
	case PersistAlways:
		return "always"
	case PersistNever:
		return "never"
	default:
		return "on_demand"
	}
}

// ParsePersistMode parses a string into a PersistMode.
func ParsePersistMode(s string) (PersistMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on_demand", "on-demand", "ondemand", "":
		return PersistOnDemand, true
	case "always":
		return PersistAlways, true
	case "never":
		return PersistNever, true
	}
	return PersistOnDemand, false
}

// WithPersistMode sets the persistence mode.
func WithPersistMode(mode PersistMode) Option {
	return func(r *Runtime) {
		r.persistMode = mode
	}
}
