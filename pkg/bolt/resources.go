// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"bytes"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// PutResource stores a raw resource (for example an update script) under an absolute path.
func PutResource(db *DB, path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("resource path cannot be empty")
	}
	return db.Set(GetResourcesBucketPath(), []byte(path), data)
}

// GetResource returns the resource stored at path and whether it exists.
func GetResource(db *DB, path string) ([]byte, bool, error) {
	data, err := db.Get(GetResourcesBucketPath(), []byte(path))
	if err != nil {
		return nil, false, err
	}
	return data, data != nil, nil
}

// DeleteResource removes the resource stored at path.
func DeleteResource(db *DB, path string) error {
	return db.Delete(GetResourcesBucketPath(), []byte(path))
}

// ListResources returns the paths of all resources whose path starts with prefix, in key order.
func ListResources(db *DB, prefix string) ([]string, error) {
	var paths []string
	err := db.View(func(tx *bolt.Tx) error {
		bucket := GetResourcesBucket(tx)
		if bucket == nil {
			return fmt.Errorf("resources bucket not found")
		}

		p := []byte(prefix)
		cursor := bucket.Cursor()
		for k, _ := cursor.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = cursor.Next() {
			paths = append(paths, string(k))
		}
		return nil
	})
	return paths, err
}
