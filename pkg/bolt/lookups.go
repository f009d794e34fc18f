// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"fmt"
	"strings"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	bolt "go.etcd.io/bbolt"
)

// FindChildInTx returns the child of parentID named name, or nil if there is none.
func FindChildInTx(tx *bolt.Tx, parentID, name string) (*NodeRecord, error) {
	childIDs, err := GetChildIDsInTx(tx, parentID)
	if err != nil {
		return nil, err
	}

	for _, childID := range childIDs {
		child, err := GetNodeRecordInTx(tx, childID)
		if err != nil {
			return nil, err
		}
		if child != nil && child.Name == name {
			return child, nil
		}
	}

	return nil, nil
}

// ResolvePathInTx walks the committed tree from the root and returns the record at absPath.
// Returns nil, nil when any segment is missing.
func ResolvePathInTx(tx *bolt.Tx, absPath string) (*NodeRecord, error) {
	if !content.IsAbs(absPath) {
		return nil, fmt.Errorf("%w: %q is not absolute", content.ErrInvalidPath, absPath)
	}

	rootID, err := GetRootIDInTx(tx)
	if err != nil {
		return nil, err
	}
	current, err := GetNodeRecordInTx(tx, rootID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("root node %s not found", rootID)
	}

	for _, seg := range content.Split(absPath) {
		current, err = FindChildInTx(tx, current.ID, seg)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, nil
		}
	}

	return current, nil
}

// PathOfInTx rebuilds the absolute path of a node by walking its parent chain.
func PathOfInTx(tx *bolt.Tx, record *NodeRecord) (string, error) {
	var segs []string
	for current := record; current.ParentID != ""; {
		segs = append(segs, current.Name)
		parent, err := GetNodeRecordInTx(tx, current.ParentID)
		if err != nil {
			return "", err
		}
		if parent == nil {
			return "", fmt.Errorf("parent %s of node %s not found", current.ParentID, current.ID)
		}
		current = parent
	}

	// Reverse into root-first order
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return content.RootPath + strings.Join(segs, "/"), nil
}
