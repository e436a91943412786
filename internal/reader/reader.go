// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package reader turns scanned tokens into slip expression trees.
package reader

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"nickandperla.net/slip/internal/expr"
	"nickandperla.net/slip/internal/scanner"
	"nickandperla.net/slip/internal/token"
)

var (
	// ErrIncomplete is returned when the input ends before an expression is
	// closed. A REPL can read more input and try again.
	ErrIncomplete = errors.New("incomplete expression")
	// ErrUnbalanced is returned for a closing parenthesis with no opener.
	ErrUnbalanced = errors.New("unbalanced parenthesis: too many )s")
)

// Error is a syntax error with the line it was found on.
type Error struct {
	Line int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsIncomplete reports whether err means more input could complete the
// expression, including an unterminated string.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete) || errors.Is(err, scanner.ErrUnterminated)
}

// Reader reads expressions one at a time from a token stream.
type Reader struct {
	scan *scanner.Scanner
}

// New creates a Reader over r.
func New(r io.Reader) *Reader {
	return &Reader{scan: scanner.New(r)}
}

// NewFromString creates a Reader over a string.
func NewFromString(s string) *Reader {
	return New(strings.NewReader(s))
}

// Read returns the next top-level expression, or io.EOF when the input is
// exhausted.
func (r *Reader) Read() (expr.Expr, error) {
	item, err := r.scan.Next()
	if err != nil {
		return nil, err
	}
	if item.Token == token.EOF {
		return nil, io.EOF
	}
	return r.readFrom(item)
}

// ReadAll reads every expression in the input.
func (r *Reader) ReadAll() ([]expr.Expr, error) {
	var exprs []expr.Expr
	for {
		e, err := r.Read()
		if err == io.EOF {
			return exprs, nil
		}
		if err != nil {
			return exprs, err
		}
		exprs = append(exprs, e)
	}
}

// ReadString reads every expression in s.
func ReadString(s string) ([]expr.Expr, error) {
	return NewFromString(s).ReadAll()
}

func (r *Reader) readFrom(item *scanner.Item) (expr.Expr, error) {
	switch item.Token {
	case token.LPAREN:
		return r.readList(item.Line)
	case token.RPAREN:
		return nil, &Error{Line: item.Line, Err: ErrUnbalanced}
	case token.QUOTE, token.QUASIQUOTE, token.UNQUOTE:
		next, err := r.scan.Next()
		if err != nil {
			return nil, err
		}
		if next.Token == token.EOF {
			return nil, &Error{Line: item.Line, Err: ErrIncomplete}
		}
		inner, err := r.readFrom(next)
		if err != nil {
			return nil, err
		}
		switch item.Token {
		case token.QUOTE:
			return expr.Quote{Expr: inner}, nil
		case token.QUASIQUOTE:
			return expr.Quasiquote{Expr: inner}, nil
		default:
			return expr.Unquote{Expr: inner}, nil
		}
	case token.INT:
		v, err := scanner.ParseInt(item.Value)
		if err != nil {
			return nil, &scanner.Error{Line: item.Line, Text: item.Value, Err: scanner.ErrNumber}
		}
		return expr.Integer{Value: v}, nil
	case token.FLOAT:
		v, err := scanner.ParseFloat(item.Value)
		if err != nil {
			return nil, &scanner.Error{Line: item.Line, Text: item.Value, Err: scanner.ErrNumber}
		}
		return expr.Float{Value: v}, nil
	case token.STRING:
		return expr.Text{Value: item.Value}, nil
	case token.IDENT:
		if item.Value == "nil" {
			return expr.Nil{}, nil
		}
		return expr.Ident{Name: item.Value}, nil
	}
	return nil, &Error{Line: item.Line, Err: ErrIncomplete}
}

// readList reads list elements up to the matching closing parenthesis; the
// opening one is already consumed.
func (r *Reader) readList(line int) (expr.Expr, error) {
	var items []expr.Expr
	for {
		item, err := r.scan.Next()
		if err != nil {
			return nil, err
		}
		switch item.Token {
		case token.EOF:
			return nil, &Error{Line: line, Err: ErrIncomplete}
		case token.RPAREN:
			return expr.List(items...), nil
		}
		e, err := r.readFrom(item)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
}
