// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides a streaming Unicode-aware lexer for slip.
package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"nickandperla.net/slip/internal/token"
)

var (
	// ErrUnterminated is returned when input ends inside a string literal.
	ErrUnterminated = errors.New("unterminated string")
	// ErrNumber is returned for a malformed numeric literal.
	ErrNumber = errors.New("malformed number")
)

// Error is a lexical error with the line it was found on.
type Error struct {
	Line int
	Text string
	Err  error
}

func (e *Error) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Scanner tokenizes slip input rune-by-rune.
type Scanner struct {
	reader *bufio.Reader
	buf    strings.Builder
	peeked *Item
	line   int // Current line number (1-based)
}

// Item represents a scanned token with its value.
type Item struct {
	Token token.Token
	Value string
	Line  int // Line number where this token started
}

// New creates a new Scanner from an io.Reader.
func New(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReader(r),
		line:   1,
	}
}

// NewFromString creates a new Scanner from a string.
func NewFromString(s string) *Scanner {
	return New(strings.NewReader(s))
}

// Line returns the current line number (1-based).
func (s *Scanner) Line() int {
	return s.line
}

// Peek returns the next item without consuming it.
func (s *Scanner) Peek() (*Item, error) {
	if s.peeked != nil {
		return s.peeked, nil
	}
	item, err := s.Next()
	if err != nil {
		return nil, err
	}
	s.peeked = item
	return item, nil
}

// Next returns the next token from the input.
func (s *Scanner) Next() (*Item, error) {
	if s.peeked != nil {
		item := s.peeked
		s.peeked = nil
		return item, nil
	}

	for {
		r, err := s.read()
		if err == io.EOF {
			return &Item{Token: token.EOF, Line: s.line}, nil
		}
		if err != nil {
			return nil, err
		}

		switch {
		case unicode.IsSpace(r):
			continue
		case r == token.RuneComment:
			if err := s.skipComment(); err != nil {
				return nil, err
			}
			continue
		case r == token.RuneString:
			return s.scanString()
		case token.TokenFromRune(r) != token.EOF:
			return &Item{Token: token.TokenFromRune(r), Value: string(r), Line: s.line}, nil
		}

		s.unread(r)
		return s.scanAtom()
	}
}

func (s *Scanner) read() (rune, error) {
	r, _, err := s.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	if r == '\n' {
		s.line++
	}
	return r, nil
}

func (s *Scanner) unread(r rune) {
	s.reader.UnreadRune()
	if r == '\n' {
		s.line--
	}
}

func (s *Scanner) skipComment() error {
	for {
		r, err := s.read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if r == '\n' {
			return nil
		}
	}
}

// scanString reads a string literal; the opening quote is already consumed.
func (s *Scanner) scanString() (*Item, error) {
	startLine := s.line
	s.buf.Reset()
	for {
		r, err := s.read()
		if err == io.EOF {
			return nil, &Error{Line: startLine, Err: ErrUnterminated}
		}
		if err != nil {
			return nil, err
		}
		switch r {
		case token.RuneString:
			return &Item{Token: token.STRING, Value: s.buf.String(), Line: startLine}, nil
		case '\\':
			esc, err := s.read()
			if err == io.EOF {
				return nil, &Error{Line: startLine, Err: ErrUnterminated}
			}
			if err != nil {
				return nil, err
			}
			switch esc {
			case 'n':
				s.buf.WriteRune('\n')
			case 't':
				s.buf.WriteRune('\t')
			case 'r':
				s.buf.WriteRune('\r')
			default:
				s.buf.WriteRune(esc)
			}
		default:
			s.buf.WriteRune(r)
		}
	}
}

// scanAtom reads a number or identifier up to the next delimiter.
func (s *Scanner) scanAtom() (*Item, error) {
	startLine := s.line
	s.buf.Reset()
	for {
		r, err := s.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if unicode.IsSpace(r) || token.IsDelimiter(r) {
			s.unread(r)
			break
		}
		s.buf.WriteRune(r)
	}

	text := s.buf.String()
	if !looksNumeric(text) {
		return &Item{Token: token.IDENT, Value: text, Line: startLine}, nil
	}
	kind, ok := classifyNumber(text)
	if !ok {
		return nil, &Error{Line: startLine, Text: text, Err: ErrNumber}
	}
	return &Item{Token: kind, Value: text, Line: startLine}, nil
}

// looksNumeric reports whether an atom starts like a number: a digit, a dot
// followed by a digit, or a sign followed by either.
func looksNumeric(text string) bool {
	rest := text
	if strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "+") {
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, ".") {
		rest = rest[1:]
	}
	return rest != "" && rest[0] >= '0' && rest[0] <= '9'
}

func classifyNumber(text string) (token.Token, bool) {
	digits := strings.TrimLeft(text, "+-")
	if strings.ContainsAny(digits, ".eE") {
		if _, err := ParseFloat(text); err != nil {
			return token.EOF, false
		}
		return token.FLOAT, true
	}
	if _, err := ParseInt(text); err != nil {
		return token.EOF, false
	}
	return token.INT, true
}
