package slip

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"nickandperla.net/slip/internal/eval"
	"nickandperla.net/slip/internal/reader"
	"nickandperla.net/slip/internal/store"
)

func mustNew(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	r, err := New(append([]Option{quiet()}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestEvalReportsEveryFailure(t *testing.T) {
	r := mustNew(t, WithNoStdlib())
	defer r.Close()

	got, err := r.Eval("(car 1) (def z 2) (missing) z")
	var perr *eval.ProgramError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *eval.ProgramError, got %v", err)
	}
	if len(perr.Forms) != 2 || perr.Forms[0].Index != 0 || perr.Forms[1].Index != 2 {
		t.Errorf("unexpected failures: %v", perr)
	}
	if !errors.Is(err, eval.ErrType) || !errors.Is(err, eval.ErrUnbound) {
		t.Errorf("expected type and unbound failures, got %v", err)
	}
	if got.String() != "2" {
		t.Errorf("expected the last value 2, got %s", got)
	}
}

func TestEvalSyntaxError(t *testing.T) {
	r := mustNew(t, WithNoStdlib())
	defer r.Close()

	_, err := r.Eval("(def a 1) (def b")
	if !reader.IsIncomplete(err) {
		t.Errorf("expected incomplete input, got %v", err)
	}
	if _, ok := r.Lookup("a"); ok {
		t.Error("nothing should be evaluated after a syntax error")
	}
}

func TestPrintDebugOutput(t *testing.T) {
	var out bytes.Buffer
	r := mustNew(t, WithNoStdlib(), WithOutput(&out))
	defer r.Close()

	if _, err := r.Eval(`(print-debug '(1 "two"))`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "(1 \"two\")\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestPersistAlwaysReplaysCaptures(t *testing.T) {
	s := store.NewMemory()

	r := mustNew(t, WithStore(s), WithPersistMode(PersistAlways))
	_, err := r.Eval(`
		(def y 5)
		(def f (lambda (x) (+ x y)))
		(def y 6)
		(lambda twice (x) (* 2 x))
		(+ 1 2)`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defs, _ := s.All()
	var names []string
	for _, d := range defs {
		names = append(names, d.Name)
	}
	if strings.Join(names, " ") != "y f y twice" {
		t.Errorf("unexpected stored definitions: %v", names)
	}

	// A second runtime over the same store sees the same bindings.
	r2 := mustNew(t, WithStore(s))
	got, err := r2.Eval("(f 1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "6" {
		t.Errorf("expected f to keep y = 5 and return 6, got %s", got)
	}
	if v, _ := r2.Lookup("y"); v.String() != "6" {
		t.Errorf("expected y = 6, got %s", v)
	}
	if got, _ := r2.Eval("(twice 4)"); got.String() != "8" {
		t.Errorf("expected 8, got %s", got)
	}
}

func TestPersistOnDemand(t *testing.T) {
	r := mustNew(t, WithMemoryStore())
	defer r.Close()

	r.Eval("(def x 1) (def x 2) (defmacro id (a) a)")
	if h, _ := r.History("x", 0); len(h) != 0 {
		t.Errorf("nothing should be stored before Persist, got %v", h)
	}

	v, err := r.Persist("x")
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if v != 1 {
		t.Errorf("expected version 1, got %d", v)
	}
	h, err := r.History("x", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 1 || h[0].Value != "(def x 2)" {
		t.Errorf("expected the latest definition stored, got %v", h)
	}

	if _, err := r.Persist("id"); err != nil {
		t.Errorf("Persist macro: %v", err)
	}
	if _, err := r.Persist("nope"); !errors.Is(err, ErrNotDefined) {
		t.Errorf("expected ErrNotDefined, got %v", err)
	}
}

func TestPersistNever(t *testing.T) {
	s := store.NewMemory()
	r := mustNew(t, WithStore(s), WithPersistMode(PersistNever))
	defer r.Close()

	r.Eval("(def x 1)")
	if _, err := r.Persist("x"); err != nil {
		t.Errorf("Persist should be a no-op, got %v", err)
	}
	if defs, _ := s.All(); len(defs) != 0 {
		t.Errorf("expected an empty store, got %v", defs)
	}
}

func TestWithoutStore(t *testing.T) {
	r := mustNew(t, WithNoStdlib())
	defer r.Close()

	r.Eval("(def x 1)")
	if _, err := r.Persist("x"); !errors.Is(err, ErrNoStore) {
		t.Errorf("expected ErrNoStore, got %v", err)
	}
	if _, err := r.History("x", 0); !errors.Is(err, ErrNoStore) {
		t.Errorf("expected ErrNoStore, got %v", err)
	}
	if err := r.Forget("x"); err != nil {
		t.Errorf("Forget: %v", err)
	}
	if _, ok := r.Lookup("x"); ok {
		t.Error("x should be unbound after Forget")
	}
}

func TestForget(t *testing.T) {
	s := store.NewMemory()
	r := mustNew(t, WithStore(s), WithPersistMode(PersistAlways))
	defer r.Close()

	r.Eval("(def a 1) (def b 2)")
	if err := r.Forget("a"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, ok := r.Lookup("a"); ok {
		t.Error("a should be unbound")
	}
	if _, ok, _ := s.Get("a"); ok {
		t.Error("a should be gone from the store")
	}
	if _, ok, _ := s.Get("b"); !ok {
		t.Error("b should still be stored")
	}
}

func TestDatabasePreludeOverride(t *testing.T) {
	s := store.NewMemory()
	s.SetMetadata("prelude", "(def custom 42)")

	r := mustNew(t, WithStore(s))
	defer r.Close()

	if v, ok := r.Lookup("custom"); !ok || v.String() != "42" {
		t.Errorf("expected custom = 42, got %v", v)
	}
	if _, ok := r.Lookup("length"); ok {
		t.Error("stored prelude should replace the default one")
	}
}

func TestReplaySkipsBrokenDefinitions(t *testing.T) {
	s := store.NewMemory()
	s.Append("bad", "(def bad (car 1))")
	s.Append("good", "(def good 1)")

	r := mustNew(t, WithStore(s), WithNoStdlib())
	defer r.Close()

	if _, ok := r.Lookup("bad"); ok {
		t.Error("bad should not be bound")
	}
	if _, ok := r.Lookup("good"); !ok {
		t.Error("good should be bound")
	}
}

func TestSQLiteRuntime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slip.db")

	r := mustNew(t, WithSQLiteStore(path), WithPersistMode(PersistAlways))
	if _, err := r.Eval("(def fact (lambda fact (n) (if (= n 0) 1 (* n (fact (- n 1))))))"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Close()

	r2 := mustNew(t, WithSQLiteStore(path))
	defer r2.Close()
	got, err := r2.Eval("(fact 5)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "120" {
		t.Errorf("expected 120, got %s", got)
	}
}

func TestBadSQLitePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "slip.db")
	if r, err := New(WithSQLiteStore(path), quiet()); err == nil {
		r.Close()
		t.Error("expected an error for an unopenable store")
	}
}

func TestSuggest(t *testing.T) {
	r := mustNew(t)
	defer r.Close()

	got := r.Suggest("lenght", 2)
	if len(got) == 0 || got[0] != "length" {
		t.Errorf("expected length first, got %v", got)
	}

	r.Eval("(def my-counter 1)")
	got = r.Suggest("my-countr", 1)
	if len(got) != 1 || got[0] != "my-counter" {
		t.Errorf("expected my-counter, got %v", got)
	}

	r.Forget("my-counter")
	for _, s := range r.Suggest("my-countr", 3) {
		if s == "my-counter" {
			t.Error("forgotten names should not be suggested")
		}
	}
}

func TestDidYouMeanIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	r, err := New(WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	if _, err := r.Eval("(lenght '(1 2))"); !errors.Is(err, eval.ErrUnbound) {
		t.Fatalf("expected unbound error, got %v", err)
	}
	if !strings.Contains(logs.String(), "did you mean") || !strings.Contains(logs.String(), "length") {
		t.Errorf("expected a suggestion in the log, got %q", logs.String())
	}

	logs.Reset()
	r2, _ := New(WithLogger(logger), WithSuggestions(false))
	defer r2.Close()
	r2.Eval("(lenght '(1 2))")
	if strings.Contains(logs.String(), "did you mean") {
		t.Error("suggestions should be off")
	}
}

func TestParsePersistMode(t *testing.T) {
	tests := []struct {
		input string
		mode  PersistMode
		ok    bool
	}{
		{"always", PersistAlways, true},
		{"NEVER", PersistNever, true},
		{"on_demand", PersistOnDemand, true},
		{"on-demand", PersistOnDemand, true},
		{"sometimes", PersistOnDemand, false},
	}
	for _, tt := range tests {
		mode, ok := ParsePersistMode(tt.input)
		if mode != tt.mode || ok != tt.ok {
			t.Errorf("%s: expected %v %v, got %v %v", tt.input, tt.mode, tt.ok, mode, ok)
		}
	}
}

func TestDefinitionName(t *testing.T) {
	tests := []struct {
		input string
		name  string
		ok    bool
	}{
		{"(def x 1)", "x", true},
		{"(defmacro m (a) a)", "m", true},
		{"(lambda f (x) x)", "f", true},
		{"(lambda (x) x)", "", false},
		{"(def 1 2)", "", false},
		{"(+ 1 2)", "", false},
		{"x", "", false},
	}
	for _, tt := range tests {
		forms, err := reader.ReadString(tt.input)
		if err != nil {
			t.Fatalf("read %s: %v", tt.input, err)
		}
		name, ok := DefinitionName(forms[0])
		if name != tt.name || ok != tt.ok {
			t.Errorf("%s: expected %q %v, got %q %v", tt.input, tt.name, tt.ok, name, ok)
		}
	}
}
