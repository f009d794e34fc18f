// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package store

import "github.com/Project-Sylos/Sylos-Versioning/pkg/bolt"

// IncrementStat adds one to the counter stored under key.
func (s *Store) IncrementStat(key string) error {
	return bolt.UpdateCounter(s.db, key, 1)
}

// Stat returns the counter stored under key, 0 when it was never written.
func (s *Store) Stat(key string) (int64, error) {
	return bolt.GetCounter(s.db, key)
}

// Stats returns every counter in the STATS bucket.
func (s *Store) Stats() (map[string]int64, error) {
	return bolt.GetAllCounters(s.db)
}
