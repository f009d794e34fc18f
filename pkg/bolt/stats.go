// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const (
	// StatsBucketName is the name of the top-level stats bucket
	StatsBucketName = "STATS"
)

// UpdateCounterInTx adds delta to the counter stored under key.
// Counters never go below zero; a counter reaching zero is removed.
func UpdateCounterInTx(tx *bolt.Tx, key string, delta int64) error {
	if key == "" {
		return nil // Don't track empty keys
	}

	statsBucket, err := getOrCreateBucket(tx, GetStatsBucketPath())
	if err != nil {
		return fmt.Errorf("failed to get stats bucket: %w", err)
	}

	keyBytes := []byte(key)

	var currentCount int64
	if existingValue := statsBucket.Get(keyBytes); len(existingValue) == 8 {
		currentCount = int64(binary.BigEndian.Uint64(existingValue))
	}

	newCount := currentCount + delta
	if newCount < 0 {
		newCount = 0
	}

	if newCount == 0 {
		if err := statsBucket.Delete(keyBytes); err != nil {
			return fmt.Errorf("failed to delete stats entry: %w", err)
		}
		return nil
	}

	// Store new count as 8-byte big-endian int64
	valueBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(valueBytes, uint64(newCount))
	if err := statsBucket.Put(keyBytes, valueBytes); err != nil {
		return fmt.Errorf("failed to update stats entry: %w", err)
	}

	return nil
}

// UpdateCounter adds delta to a counter in its own write transaction.
func UpdateCounter(db *DB, key string, delta int64) error {
	return db.Update(func(tx *bolt.Tx) error {
		return UpdateCounterInTx(tx, key, delta)
	})
}

// GetCounter returns the value of a counter, 0 if absent.
func GetCounter(db *DB, key string) (int64, error) {
	var count int64
	err := db.View(func(tx *bolt.Tx) error {
		bucket := getBucket(tx, GetStatsBucketPath())
		if bucket == nil {
			return nil
		}
		value := bucket.Get([]byte(key))
		if value == nil {
			return nil
		}
		if len(value) != 8 {
			return fmt.Errorf("invalid stats value length: expected 8 bytes, got %d", len(value))
		}
		count = int64(binary.BigEndian.Uint64(value))
		return nil
	})
	return count, err
}

// GetAllCounters returns every counter in the stats bucket.
func GetAllCounters(db *DB) (map[string]int64, error) {
	counters := make(map[string]int64)
	err := db.View(func(tx *bolt.Tx) error {
		bucket := getBucket(tx, GetStatsBucketPath())
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			if len(v) != 8 {
				return nil // Skip malformed entries
			}
			counters[string(k)] = int64(binary.BigEndian.Uint64(v))
			return nil
		})
	})
	return counters, err
}
