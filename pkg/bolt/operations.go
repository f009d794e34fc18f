// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// WriteOperation represents a single put or delete to be applied in a batch.
type WriteOperation struct {
	// Where to write
	BucketPath []string
	Key        []byte
	Value      []byte

	// Delete removes Key instead of writing Value
	Delete bool
}

// Execute performs the write operation within a transaction.
func (op *WriteOperation) Execute(tx *bolt.Tx) error {
	if len(op.BucketPath) == 0 {
		return fmt.Errorf("bucket path cannot be empty")
	}

	bucket, err := getOrCreateBucket(tx, op.BucketPath)
	if err != nil {
		return fmt.Errorf("failed to get or create bucket at path %v: %w", op.BucketPath, err)
	}

	if op.Delete {
		return bucket.Delete(op.Key)
	}
	return bucket.Put(op.Key, op.Value)
}

// ApplyBatch executes all operations in order in ONE transaction.
// check runs first inside the same transaction; if it or any operation fails
// nothing is persisted.
func (db *DB) ApplyBatch(check func(*bolt.Tx) error, ops []*WriteOperation) error {
	return db.Update(func(tx *bolt.Tx) error {
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}

		for i, op := range ops {
			if err := op.Execute(tx); err != nil {
				return fmt.Errorf("failed to execute operation %d of %d: %w", i+1, len(ops), err)
			}
		}

		return nil
	})
}
