// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines slip token types and delimiter constants.
package token

// Token represents a slip token type.
type Token int

const (
	EOF Token = iota

	LPAREN     // (
	RPAREN     // )
	QUOTE      // ' or \
	QUASIQUOTE // `
	UNQUOTE    // ,

	INT    // 42, -7
	FLOAT  // 1.5, .5, 1e3
	STRING // "text"
	IDENT  // any other atom
)

// Delimiter runes.
const (
	RuneOpen       = '('
	RuneClose      = ')'
	RuneQuote      = '\''
	RuneAltQuote   = '\\'
	RuneQuasiquote = '`'
	RuneUnquote    = ','
	RuneString     = '"'
	RuneComment    = ';'
)

// IsDelimiter returns true if the rune ends an atom.
func IsDelimiter(r rune) bool {
	switch r {
	case RuneOpen, RuneClose, RuneQuote, RuneQuasiquote, RuneUnquote, RuneString, RuneComment:
		return true
	}
	return false
}

// TokenFromRune returns the token type for a single-rune token, or EOF if r
// does not start one.
func TokenFromRune(r rune) Token {
	switch r {
	case RuneOpen:
		return LPAREN
	case RuneClose:
		return RPAREN
	case RuneQuote, RuneAltQuote:
		return QUOTE
	case RuneQuasiquote:
		return QUASIQUOTE
	case RuneUnquote:
		return UNQUOTE
	}
	return EOF
}

// String returns the string representation of a token.
func (t Token) String() string {
	switch t {
	case EOF:
		return "EOF"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case QUOTE:
		return "QUOTE"
	case QUASIQUOTE:
		return "QUASIQUOTE"
	case UNQUOTE:
		return "UNQUOTE"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case IDENT:
		return "IDENT"
	}
	return "UNKNOWN"
}

// IsPrefix returns true if the token wraps the expression that follows it.
func (t Token) IsPrefix() bool {
	switch t {
	case QUOTE, QUASIQUOTE, UNQUOTE:
		return true
	}
	return false
}

// IsAtom returns true if the token is a complete expression on its own.
func (t Token) IsAtom() bool {
	switch t {
	case INT, FLOAT, STRING, IDENT:
		return true
	}
	return false
}
