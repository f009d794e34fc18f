// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/bolt"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/logging"
)

// RecordLog writes a log entry to the database.
func (s *Store) RecordLog(level, entity, entityID, message string) error {
	if level == "" || message == "" {
		return fmt.Errorf("level and message cannot be empty")
	}

	entry := bolt.LogEntry{
		ID:        bolt.GenerateLogID(),
		Timestamp: s.now().Format(time.RFC3339Nano),
		Level:     level,
		Entity:    entity,
		EntityID:  entityID,
		Message:   message,
	}
	return bolt.InsertLogEntry(s.db, entry)
}

// QueryLogs retrieves log entries of one level, oldest first. An empty level
// returns every level. limit <= 0 means no limit.
func (s *Store) QueryLogs(level string, limit int) ([]*bolt.LogEntry, error) {
	if level == "" {
		logs, err := bolt.GetAllLogs(s.db)
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(logs) > limit {
			logs = logs[:limit]
		}
		return logs, nil
	}
	return bolt.GetLogsByLevel(s.db, level, limit)
}

// Logger returns a logging.Logger that persists info, warning and error
// entries in the LOGS bucket and forwards everything to next. Debug entries
// are only forwarded. The entity id is taken from the "path" key when present.
func (s *Store) Logger(entity string, next logging.Logger) logging.Logger {
	if next == nil {
		next = logging.Discard{}
	}
	return &recorder{store: s, entity: entity, next: next}
}

type recorder struct {
	store  *Store
	entity string
	tags   []interface{}
	next   logging.Logger
}

func (r *recorder) Debug(m string, kv ...interface{}) { r.next.Debug(m, kv...) }
func (r *recorder) Info(m string, kv ...interface{}) {
	r.record("info", m, kv)
	r.next.Info(m, kv...)
}
func (r *recorder) Warn(m string, kv ...interface{}) {
	r.record("warning", m, kv)
	r.next.Warn(m, kv...)
}
func (r *recorder) Error(m string, kv ...interface{}) {
	r.record("error", m, kv)
	r.next.Error(m, kv...)
}
func (r *recorder) With(kv ...interface{}) logging.Logger {
	tags := make([]interface{}, 0, len(r.tags)+len(kv))
	tags = append(append(tags, r.tags...), kv...)
	return &recorder{store: r.store, entity: r.entity, tags: tags, next: r.next.With(kv...)}
}

func (r *recorder) record(level, msg string, kv []interface{}) {
	var entityID string
	if v, ok := logging.Lookup("path", kv, r.tags); ok {
		entityID = fmt.Sprint(v)
	}
	line := strings.TrimPrefix(logging.Line("", msg, kv, r.tags), " ")
	if err := r.store.RecordLog(level, r.entity, entityID, line); err != nil {
		r.next.Debug("failed to persist log entry", "err", err)
	}
}
