// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package store provides sessions over the bbolt content tree: read-your-writes
// working copies, all-or-nothing commits, workspace-wide node locks, resources
// and persisted logs.
package store

import (
	"time"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/bolt"
	"github.com/google/uuid"
)

// Store is the shared handle on one content database. It is safe for concurrent
// use; sessions created from it are not.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Options configures Open.
type Options struct {
	// Path of the database file. Empty creates a temporary database.
	Path string
	// Clock overrides time.Now for lock expiry and log timestamps.
	Clock func() time.Time
}

// Open creates a new Store instance wrapping a bolt.DB.
func Open(opts Options) (*Store, error) {
	db, err := bolt.Open(bolt.Options{Path: opts.Path})
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, now: opts.Clock}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Close closes the underlying database. Pending session changes are lost.
// A temporary database is deleted.
func (s *Store) Close() error {
	if s.db.IsTemporary() {
		return s.db.Cleanup()
	}
	return s.db.Close()
}

// DB exposes the underlying database for inspection tooling.
func (s *Store) DB() *bolt.DB {
	return s.db
}

// NewSession starts a unit of work against the store.
func (s *Store) NewSession() *Session {
	return &Session{
		store: s,
		id:    uuid.NewString(),
		state: newWorkingSet(),
		locks: make(map[string]string),
	}
}
