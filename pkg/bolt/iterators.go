// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// IteratorOptions configures how items are iterated.
type IteratorOptions struct {
	// Limit is the maximum number of items to return (0 = no limit)
	Limit int
}

// IterateNodeRecords iterates over all nodes in the nodes bucket in key order.
func (db *DB) IterateNodeRecords(opts IteratorOptions, fn func(record *NodeRecord) error) error {
	return db.View(func(tx *bolt.Tx) error {
		bucket := GetNodesBucket(tx)
		if bucket == nil {
			return fmt.Errorf("nodes bucket not found")
		}

		cursor := bucket.Cursor()
		count := 0

		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if opts.Limit > 0 && count >= opts.Limit {
				break
			}

			record, err := DeserializeNodeRecord(v)
			if err != nil {
				return fmt.Errorf("failed to deserialize node %s: %w", string(k), err)
			}

			if err := fn(record); err != nil {
				return err
			}

			count++
		}

		return nil
	})
}

// IterateLocks iterates over all stored locks, including expired ones.
func (db *DB) IterateLocks(opts IteratorOptions, fn func(lock *LockRecord) error) error {
	return db.View(func(tx *bolt.Tx) error {
		bucket := GetLocksBucket(tx)
		if bucket == nil {
			return fmt.Errorf("locks bucket not found")
		}

		cursor := bucket.Cursor()
		count := 0

		for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
			if opts.Limit > 0 && count >= opts.Limit {
				break
			}

			lock, err := GetLockInTx(tx, string(k))
			if err != nil {
				return err
			}
			if err := fn(lock); err != nil {
				return err
			}

			count++
		}

		return nil
	})
}
