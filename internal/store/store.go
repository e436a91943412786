// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package store provides persistence for slip definitions.
//
// A store is an append-only log of top-level definitions. Each entry keeps
// the source text of the form that made it, so replaying the log in sequence
// order rebuilds the same bindings, closure captures included.
package store

import "time"

// Definition is one persisted top-level definition.
type Definition struct {
	Seq     int64
	Name    string
	Version int
	Source  string
}

// VersionEntry represents a single version of a persisted definition.
type VersionEntry struct {
	Version int
	Value   string
	Ts      string
}

// Store is the interface for definition persistence.
type Store interface {
	// Append records source as the newest version of name and returns its
	// version number. Appending the same source as the latest version is a
	// no-op that returns the existing version.
	Append(name, source string) (int, error)
	// Get returns the latest source for name.
	Get(name string) (string, bool, error)
	// Delete removes every version of name.
	Delete(name string) error
	// All returns every entry in sequence order.
	All() ([]Definition, error)
	// History returns up to limit versions of name, newest first. A limit of
	// zero or less returns all of them.
	History(name string, limit int) ([]VersionEntry, error)
	// GetMetadata returns "" for a missing key.
	GetMetadata(key string) (string, error)
	SetMetadata(key, value string) error
	// Close releases resources.
	Close() error
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
