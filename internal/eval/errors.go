// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"errors"
	"fmt"
	"strings"

	"nickandperla.net/slip/internal/expr"
)

// Error kinds. A failed Context wraps exactly one of these; test with
// errors.Is.
var (
	ErrUnbound        = errors.New("unbound identifier")
	ErrReserved       = errors.New("reserved identifier")
	ErrMalformed      = errors.New("malformed form")
	ErrType           = errors.New("type mismatch")
	ErrNotCallable    = errors.New("not callable")
	ErrCapture        = errors.New("capture failure")
	ErrDivisionByZero = errors.New("division by zero")
	ErrDepth          = errors.New("recursion limit exceeded")
)

// FormError records a top-level form that failed during EvaluateProgram.
type FormError struct {
	Index int
	Form  expr.Expr
	Err   error
}

func (e *FormError) Error() string {
	return fmt.Sprintf("form %d %s: %v", e.Index+1, e.Form, e.Err)
}

func (e *FormError) Unwrap() error { return e.Err }

// ProgramError collects every failed form of a program.
type ProgramError struct {
	Forms []*FormError
}

func (e *ProgramError) Error() string {
	msgs := make([]string, len(e.Forms))
	for i, f := range e.Forms {
		msgs[i] = f.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the per-form errors to errors.Is and errors.As.
func (e *ProgramError) Unwrap() []error {
	errs := make([]error, len(e.Forms))
	for i, f := range e.Forms {
		errs[i] = f
	}
	return errs
}
