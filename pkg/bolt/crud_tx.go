// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// GetRootIDInTx returns the ULID of the root node, or "" if the tree has not been seeded.
func GetRootIDInTx(tx *bolt.Tx) (string, error) {
	metaBucket := getBucket(tx, GetMetaBucketPath())
	if metaBucket == nil {
		return "", fmt.Errorf("meta bucket not found")
	}
	return string(metaBucket.Get([]byte(MetaRootID))), nil
}

// GetNodeRecordInTx retrieves a NodeRecord from the nodes bucket by ULID within an existing transaction.
// Returns nil, nil when the node does not exist.
func GetNodeRecordInTx(tx *bolt.Tx, nodeID string) (*NodeRecord, error) {
	nodesBucket := GetNodesBucket(tx)
	if nodesBucket == nil {
		return nil, fmt.Errorf("nodes bucket not found")
	}

	nodeData := nodesBucket.Get([]byte(nodeID))
	if nodeData == nil {
		return nil, nil // Not found
	}

	nr, err := DeserializeNodeRecord(nodeData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize node %s: %w", nodeID, err)
	}

	return nr, nil
}

// PutNodeRecordInTx stores a NodeRecord in the nodes bucket within an existing transaction.
func PutNodeRecordInTx(tx *bolt.Tx, record *NodeRecord) error {
	if record.ID == "" {
		return fmt.Errorf("node record must have ID (ULID)")
	}

	value, err := record.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize node record: %w", err)
	}

	nodesBucket := GetNodesBucket(tx)
	if nodesBucket == nil {
		return fmt.Errorf("nodes bucket not found")
	}
	return nodesBucket.Put([]byte(record.ID), value)
}

// GetChildIDsInTx returns the ordered child ULIDs of a parent.
// A parent without an index entry has no children.
func GetChildIDsInTx(tx *bolt.Tx, parentID string) ([]string, error) {
	childrenBucket := GetChildrenBucket(tx)
	if childrenBucket == nil {
		return nil, fmt.Errorf("children bucket not found")
	}

	var children []string
	childrenData := childrenBucket.Get([]byte(parentID))
	if childrenData != nil {
		if err := DeserializeStringSlice(childrenData, &children); err != nil {
			return nil, fmt.Errorf("failed to unmarshal children list of %s: %w", parentID, err)
		}
	}

	return children, nil
}

// PutChildIDsInTx replaces the ordered child list of a parent.
func PutChildIDsInTx(tx *bolt.Tx, parentID string, childIDs []string) error {
	childrenBucket := GetChildrenBucket(tx)
	if childrenBucket == nil {
		return fmt.Errorf("children bucket not found")
	}

	data, err := SerializeStringSlice(childIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal children list: %w", err)
	}

	return childrenBucket.Put([]byte(parentID), data)
}

// DeleteNodeInTx removes a node record and its children index entry.
// It does not touch the parent's children list or any descendants.
func DeleteNodeInTx(tx *bolt.Tx, nodeID string) error {
	nodesBucket := GetNodesBucket(tx)
	if nodesBucket == nil {
		return fmt.Errorf("nodes bucket not found")
	}
	if err := nodesBucket.Delete([]byte(nodeID)); err != nil {
		return fmt.Errorf("failed to delete node %s: %w", nodeID, err)
	}

	childrenBucket := GetChildrenBucket(tx)
	if childrenBucket == nil {
		return fmt.Errorf("children bucket not found")
	}
	if err := childrenBucket.Delete([]byte(nodeID)); err != nil {
		return fmt.Errorf("failed to delete children list of %s: %w", nodeID, err)
	}

	// A lock on a deleted node is meaningless
	if locksBucket := GetLocksBucket(tx); locksBucket != nil {
		if err := locksBucket.Delete([]byte(nodeID)); err != nil {
			return fmt.Errorf("failed to delete lock of %s: %w", nodeID, err)
		}
	}

	return nil
}

// GetNodeRecord retrieves a NodeRecord by ULID in its own read transaction.
func GetNodeRecord(db *DB, nodeID string) (*NodeRecord, error) {
	var record *NodeRecord
	err := db.View(func(tx *bolt.Tx) error {
		var err error
		record, err = GetNodeRecordInTx(tx, nodeID)
		return err
	})
	return record, err
}

// GetChildIDs retrieves the ordered child ULIDs of a parent in its own read transaction.
func GetChildIDs(db *DB, parentID string) ([]string, error) {
	var ids []string
	err := db.View(func(tx *bolt.Tx) error {
		var err error
		ids, err = GetChildIDsInTx(tx, parentID)
		return err
	})
	return ids, err
}

// GetRootID returns the ULID of the root node.
func GetRootID(db *DB) (string, error) {
	var id string
	err := db.View(func(tx *bolt.Tx) error {
		var err error
		id, err = GetRootIDInTx(tx)
		return err
	})
	return id, err
}
