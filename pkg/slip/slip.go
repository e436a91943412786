// Package slip provides the public API for the slip interpreter.
package slip

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"nickandperla.net/slip/internal/eval"
	"nickandperla.net/slip/internal/expr"
	"nickandperla.net/slip/internal/reader"
	"nickandperla.net/slip/internal/store"
	"nickandperla.net/slip/internal/suggest"
)

var (
	// ErrNoStore is returned by persistence calls on a Runtime without a store.
	ErrNoStore = errors.New("no store configured")
	// ErrNotDefined is returned by Persist for a name with no top-level
	// definition in this session.
	ErrNotDefined = errors.New("no definition to persist")
)

// Runtime is the slip interpreter runtime. It owns one top-level Context and
// is safe for concurrent use; evaluations are serialised.
type Runtime struct {
	mu          sync.Mutex
	evaluator   *eval.Evaluator
	ctx         eval.Context
	store       store.Store
	dbPath      string
	output      io.Writer
	logger      *slog.Logger
	prelude     string      // Custom prelude source (if empty, uses DefaultPrelude)
	noStdlib    bool        // If true, skip loading prelude
	persistMode PersistMode // Controls persistence behavior
	maxDepth    int
	suggestions bool
	index       *suggest.Index
	sources     map[string]string // latest defining source per name
}

// New creates a new slip runtime with the given options. The prelude is
// loaded first, then any definitions held by the store are replayed in the
// order they were made.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		suggestions: true,
		sources:     make(map[string]string),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	if r.dbPath != "" {
		s, err := store.NewSQLite(r.dbPath)
		if err != nil {
			return nil, fmt.Errorf("open store %s: %w", r.dbPath, err)
		}
		r.store = s
	}

	// Build evaluator options
	evalOpts := []eval.Option{eval.WithLogger(r.logger)}
	if r.output != nil {
		evalOpts = append(evalOpts, eval.WithOutput(r.output))
	}
	if r.maxDepth > 0 {
		evalOpts = append(evalOpts, eval.WithMaxDepth(r.maxDepth))
	}
	if r.suggestions {
		r.index = suggest.New(eval.Keywords()...)
		evalOpts = append(evalOpts, eval.WithUnboundHook(r.didYouMean))
	}

	r.evaluator = eval.New(evalOpts...)
	r.ctx = r.evaluator.NewContext()

	// Load prelude unless disabled
	if !r.noStdlib {
		if err := r.loadPrelude(); err != nil {
			r.closeStore()
			return nil, err
		}
	}

	if r.store != nil {
		if err := r.replay(); err != nil {
			r.closeStore()
			return nil, err
		}
	}

	return r, nil
}

func (r *Runtime) loadPrelude() error {
	prelude := r.prelude
	if prelude == "" {
		prelude = DefaultPrelude
	}

	// Check for database override
	if r.store != nil {
		override, err := r.store.GetMetadata(preludeKey)
		if err != nil {
			return fmt.Errorf("read prelude override: %w", err)
		}
		if override != "" {
			prelude = override
		}
	}

	forms, err := reader.ReadString(prelude)
	if err != nil {
		return fmt.Errorf("read prelude: %w", err)
	}
	if _, err := r.run(forms, false); err != nil {
		return fmt.Errorf("load prelude: %w", err)
	}
	return nil
}

// replay re-evaluates every stored definition in sequence order. A stored
// definition that no longer evaluates is logged and skipped.
func (r *Runtime) replay() error {
	defs, err := r.store.All()
	if err != nil {
		return fmt.Errorf("load definitions: %w", err)
	}
	for _, d := range defs {
		forms, err := reader.ReadString(d.Source)
		if err != nil {
			r.logger.Warn("skipping unreadable definition", "name", d.Name, "version", d.Version, "err", err)
			continue
		}
		if _, err := r.run(forms, false); err != nil {
			r.logger.Warn("definition failed on replay", "name", d.Name, "version", d.Version, "err", err)
			continue
		}
		r.sources[d.Name] = d.Source
	}
	r.logger.Debug("replayed definitions", "count", len(defs))
	return nil
}

// run evaluates forms against the runtime's Context. Successful top-level
// definitions are remembered, and written to the store in PersistAlways mode
// when record is set.
func (r *Runtime) run(forms []expr.Expr, record bool) (expr.Expr, error) {
	var failed []*eval.FormError
	var storeErrs []error
	for i, f := range forms {
		r.ctx = eval.EvaluateExpression(r.ctx, f)
		if r.ctx.HasError() {
			failed = append(failed, &eval.FormError{Index: i, Form: f, Err: r.ctx.Err()})
			continue
		}
		name, ok := DefinitionName(f)
		if !ok {
			continue
		}
		source := f.String()
		r.sources[name] = source
		if r.index != nil {
			r.index.Add(name)
		}
		if record && r.persistMode == PersistAlways && r.store != nil {
			if _, err := r.store.Append(name, source); err != nil {
				storeErrs = append(storeErrs, fmt.Errorf("persist %s: %w", name, err))
			}
		}
	}

	var err error
	if len(failed) > 0 {
		err = &eval.ProgramError{Forms: failed}
	}
	if len(storeErrs) > 0 {
		err = errors.Join(append([]error{err}, storeErrs...)...)
	}
	return r.ctx.Expr(), err
}

// DefinitionName reports the name a top-level form defines: the target of
// def or defmacro, or the name of a named lambda.
func DefinitionName(form expr.Expr) (string, bool) {
	items, ok := expr.Slice(form)
	if !ok || len(items) == 0 {
		return "", false
	}
	var target expr.Expr
	switch {
	case expr.IsIdent(items[0], "def") && len(items) == 3,
		expr.IsIdent(items[0], "defmacro") && len(items) == 4:
		target = items[1]
	case expr.IsIdent(items[0], "lambda") && len(items) == 4:
		target = items[1]
	default:
		return "", false
	}
	id, ok := target.(expr.Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// Eval evaluates slip source and returns the value of the last form.
// Every form is evaluated even if an earlier one fails; the failures are
// reported together in an *eval.ProgramError. A syntax error stops before
// anything is evaluated.
func (r *Runtime) Eval(input string) (expr.Expr, error) {
	forms, err := reader.ReadString(input)
	if err != nil {
		return expr.Nil{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run(forms, true)
}

// EvalReader evaluates slip from a reader.
func (r *Runtime) EvalReader(in io.Reader) (expr.Expr, error) {
	forms, err := reader.New(in).ReadAll()
	if err != nil {
		return expr.Nil{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run(forms, true)
}

// EvalFile evaluates a slip file.
func (r *Runtime) EvalFile(path string) (expr.Expr, error) {
	f, err := os.Open(path)
	if err != nil {
		return expr.Nil{}, err
	}
	defer f.Close()
	return r.EvalReader(f)
}

// Bindings returns the bound names in sorted order.
func (r *Runtime) Bindings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx.Env().Names()
}

// Lookup returns the value bound to name.
func (r *Runtime) Lookup(name string) (expr.Expr, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctx.Env().Get(name)
}

// PersistMode returns the runtime's persistence mode.
func (r *Runtime) PersistMode() PersistMode {
	return r.persistMode
}

// Persist writes the latest definition of name to the store. It is a no-op
// in PersistNever mode.
func (r *Runtime) Persist(name string) (int, error) {
	if r.persistMode == PersistNever {
		return 0, nil
	}
	if r.store == nil {
		return 0, ErrNoStore
	}
	r.mu.Lock()
	source, ok := r.sources[name]
	r.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotDefined, name)
	}
	return r.store.Append(name, source)
}

// History returns up to limit stored versions of name, newest first.
func (r *Runtime) History(name string, limit int) ([]store.VersionEntry, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	return r.store.History(name, limit)
}

// Forget unbinds name and removes every stored version of it.
func (r *Runtime) Forget(name string) error {
	r.mu.Lock()
	r.ctx = r.ctx.WithEnv(r.ctx.Env().Without(name))
	delete(r.sources, name)
	r.mu.Unlock()
	if r.store == nil {
		return nil
	}
	return r.store.Delete(name)
}

// Suggest returns up to k bound names or keywords spelled like name.
func (r *Runtime) Suggest(name string, k int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nearest(name, r.ctx.Env(), k)
}

func (r *Runtime) nearest(name string, env expr.Bindings, k int) []string {
	if r.index == nil {
		return nil
	}
	// Names bound inside calls or by replay may not have been indexed yet.
	for _, n := range env.Names() {
		r.index.Add(n)
	}
	var out []string
	for _, s := range r.index.Nearest(name, k+4) {
		if env.Has(s) || eval.IsReserved(s) {
			out = append(out, s)
		}
		if len(out) == k {
			break
		}
	}
	return out
}

// didYouMean is the evaluator's unbound-identifier hook. It runs with the
// runtime lock held.
func (r *Runtime) didYouMean(name string, env expr.Bindings) {
	if s := r.nearest(name, env, 3); len(s) > 0 {
		r.logger.Warn("did you mean", "ident", name, "suggestions", s)
	}
}

// Close releases resources.
func (r *Runtime) Close() error {
	return r.closeStore()
}

func (r *Runtime) closeStore() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
