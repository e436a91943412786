package reader

import (
	"errors"
	"io"
	"testing"

	"nickandperla.net/slip/internal/expr"
)

func TestReadPrintRoundTrip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"42", "42"},
		{"-1.5", "-1.5"},
		{`"str"`, `"str"`},
		{"(+ 1 (* 2 3))", "(+ 1 (* 2 3))"},
		{"()", "nil"},
		{"nil", "nil"},
		{"'(a b)", "'(a b)"},
		{"\\x", "'x"},
		{"`(a ,b (c ,(d e)))", "`(a ,b (c ,(d e)))"},
		{"(lambda (x) ; body next\n  x)", "(lambda (x) x)"},
	}

	for _, tt := range tests {
		forms, err := ReadString(tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if len(forms) != 1 {
			t.Errorf("%q: expected 1 form, got %d", tt.input, len(forms))
			continue
		}
		if got := forms[0].String(); got != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestReadStructure(t *testing.T) {
	forms, err := ReadString("(def x '(1 2.0))")
	if err != nil {
		t.Fatal(err)
	}
	want := expr.List(
		expr.Ident{Name: "def"},
		expr.Ident{Name: "x"},
		expr.Quote{Expr: expr.List(expr.Integer{Value: 1}, expr.Float{Value: 2})},
	)
	if !expr.Equal(forms[0], want) {
		t.Errorf("expected %s, got %s", want, forms[0])
	}
}

func TestReadSequence(t *testing.T) {
	r := NewFromString("(def a 1)\n(def b 2)\nb")
	var n int
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		n++
	}
	if n != 3 {
		t.Errorf("expected 3 forms, got %d", n)
	}

	forms, err := ReadString("  ; only a comment\n")
	if err != nil || len(forms) != 0 {
		t.Errorf("expected no forms, got %v %v", forms, err)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		input      string
		err        error
		incomplete bool
	}{
		{"(a b", ErrIncomplete, true},
		{"((a)", ErrIncomplete, true},
		{"'", ErrIncomplete, true},
		{"(a \"open", nil, true},
		{")", ErrUnbalanced, false},
		{"(a))", ErrUnbalanced, false},
	}

	for _, tt := range tests {
		_, err := ReadString(tt.input)
		if err == nil {
			t.Errorf("%q: expected an error", tt.input)
			continue
		}
		if tt.err != nil && !errors.Is(err, tt.err) {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.err, err)
		}
		if IsIncomplete(err) != tt.incomplete {
			t.Errorf("%q: IsIncomplete = %v, want %v", tt.input, !tt.incomplete, tt.incomplete)
		}
	}
}

func TestErrorLine(t *testing.T) {
	_, err := ReadString("(a)\n\n)")
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if rerr.Line != 3 {
		t.Errorf("expected line 3, got %d", rerr.Line)
	}
}
