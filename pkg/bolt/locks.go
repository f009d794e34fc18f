// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// LockRecord is the persisted form of a node lock, keyed by the node's ULID.
type LockRecord struct {
	NodeID        string    `json:"node_id"`
	Path          string    `json:"path"` // Path at acquisition time, informational
	Token         string    `json:"token"`
	SessionID     string    `json:"session_id"`
	Owner         string    `json:"owner,omitempty"`
	Deep          bool      `json:"deep"`
	SessionScoped bool      `json:"session_scoped"`
	AcquiredAt    time.Time `json:"acquired_at"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"` // Zero means never
}

// Expired reports whether the lock's timeout has elapsed at now.
func (lr *LockRecord) Expired(now time.Time) bool {
	return !lr.ExpiresAt.IsZero() && !now.Before(lr.ExpiresAt)
}

// GetLockInTx returns the lock stored for nodeID, or nil if there is none.
// Expired locks are returned as well; callers decide how to treat them.
func GetLockInTx(tx *bolt.Tx, nodeID string) (*LockRecord, error) {
	locksBucket := GetLocksBucket(tx)
	if locksBucket == nil {
		return nil, fmt.Errorf("locks bucket not found")
	}

	data := locksBucket.Get([]byte(nodeID))
	if data == nil {
		return nil, nil
	}

	var lr LockRecord
	if err := json.Unmarshal(data, &lr); err != nil {
		return nil, fmt.Errorf("failed to deserialize lock of %s: %w", nodeID, err)
	}
	return &lr, nil
}

// PutLockInTx stores a lock record.
func PutLockInTx(tx *bolt.Tx, lock *LockRecord) error {
	if lock.NodeID == "" {
		return fmt.Errorf("lock record must have a node ID")
	}

	data, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("failed to serialize lock: %w", err)
	}

	locksBucket := GetLocksBucket(tx)
	if locksBucket == nil {
		return fmt.Errorf("locks bucket not found")
	}
	return locksBucket.Put([]byte(lock.NodeID), data)
}

// DeleteLockInTx removes the lock of nodeID if present.
func DeleteLockInTx(tx *bolt.Tx, nodeID string) error {
	locksBucket := GetLocksBucket(tx)
	if locksBucket == nil {
		return fmt.Errorf("locks bucket not found")
	}
	return locksBucket.Delete([]byte(nodeID))
}

// EffectiveLockInTx returns the live lock governing a node: its own lock, or a deep lock
// held on one of its ancestors. Returns nil when the node is not locked at now.
func EffectiveLockInTx(tx *bolt.Tx, record *NodeRecord, now time.Time) (*LockRecord, error) {
	own, err := GetLockInTx(tx, record.ID)
	if err != nil {
		return nil, err
	}
	if own != nil && !own.Expired(now) {
		return own, nil
	}

	for parentID := record.ParentID; parentID != ""; {
		lock, err := GetLockInTx(tx, parentID)
		if err != nil {
			return nil, err
		}
		if lock != nil && lock.Deep && !lock.Expired(now) {
			return lock, nil
		}

		parent, err := GetNodeRecordInTx(tx, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		parentID = parent.ParentID
	}

	return nil, nil
}
