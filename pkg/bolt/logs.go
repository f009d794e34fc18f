// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Log levels with their own bucket under LOGS.
var LogLevels = []string{"debug", "info", "warning", "error"}

// LogEntry represents a single log entry stored in BoltDB.
type LogEntry struct {
	ID        string `json:"id"`        // ULID, sorts chronologically
	Timestamp string `json:"timestamp"` // RFC3339Nano format
	Level     string `json:"level"`     // "debug", "info", "warning", "error"
	Entity    string `json:"entity"`    // "migrator", "session", "cli", etc.
	EntityID  string `json:"entity_id"` // Specific entity identifier, usually a node path
	Message   string `json:"message"`
}

// SerializeLogEntry converts a LogEntry to bytes.
func SerializeLogEntry(entry LogEntry) ([]byte, error) {
	return json.Marshal(entry)
}

// DeserializeLogEntry converts bytes to a LogEntry.
func DeserializeLogEntry(data []byte) (*LogEntry, error) {
	var entry LogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to deserialize log entry: %w", err)
	}
	return &entry, nil
}

// GetOrCreateLogLevelBucket returns or creates the log level bucket.
func GetOrCreateLogLevelBucket(tx *bolt.Tx, level string) (*bolt.Bucket, error) {
	logsBucket := GetLogsBucket(tx)
	if logsBucket == nil {
		return nil, fmt.Errorf("LOGS bucket not found")
	}

	levelBucket, err := logsBucket.CreateBucketIfNotExists([]byte(level))
	if err != nil {
		return nil, fmt.Errorf("failed to create log level bucket %s: %w", level, err)
	}

	return levelBucket, nil
}

// GetLogLevelBucket returns the log level bucket (read-only).
func GetLogLevelBucket(tx *bolt.Tx, level string) *bolt.Bucket {
	logsBucket := GetLogsBucket(tx)
	if logsBucket == nil {
		return nil
	}
	return logsBucket.Bucket([]byte(level))
}

// InsertLogEntry inserts a single log entry into BoltDB under the appropriate level bucket.
func InsertLogEntry(db *DB, entry LogEntry) error {
	data, err := SerializeLogEntry(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize log entry: %w", err)
	}

	return db.Update(func(tx *bolt.Tx) error {
		levelBucket, err := GetOrCreateLogLevelBucket(tx, entry.Level)
		if err != nil {
			return err
		}

		return levelBucket.Put([]byte(entry.ID), data)
	})
}

// GetLogsByLevel retrieves log entries for a specific level, oldest first.
// limit <= 0 means no limit.
func GetLogsByLevel(db *DB, level string, limit int) ([]*LogEntry, error) {
	var logs []*LogEntry

	err := db.View(func(tx *bolt.Tx) error {
		levelBucket := GetLogLevelBucket(tx, level)
		if levelBucket == nil {
			return nil // No logs at this level yet
		}

		cursor := levelBucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if limit > 0 && len(logs) >= limit {
				break
			}
			entry, err := DeserializeLogEntry(v)
			if err != nil {
				continue // Skip invalid entries
			}
			logs = append(logs, entry)
		}

		return nil
	})

	return logs, err
}

// GetAllLogs retrieves all log entries across all levels, grouped by level.
func GetAllLogs(db *DB) ([]*LogEntry, error) {
	var logs []*LogEntry
	for _, level := range LogLevels {
		entries, err := GetLogsByLevel(db, level, 0)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entries...)
	}
	return logs, nil
}
