// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	bolt "go.etcd.io/bbolt"
)

// DB wraps BoltDB instance with lifecycle management.
type DB struct {
	db     *bolt.DB
	dbPath string
}

// Options for BoltDB initialization
type Options struct {
	// Path is the path where BoltDB will store its data.
	// If empty, a temporary directory will be created.
	Path string
}

// Open creates and opens a new BoltDB instance.
// The database will be created at the specified path and seeded with an empty root node.
// Call Close() when done to ensure proper cleanup.
func Open(opts Options) (*DB, error) {
	dbPath := opts.Path
	if dbPath == "" {
		tmpDir, err := os.MkdirTemp("", "sylos-content-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
		dbPath = filepath.Join(tmpDir, "content.db")
	} else {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create bolt directory: %w", err)
		}
	}

	boltDB, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	database := &DB{
		db:     boltDB,
		dbPath: dbPath,
	}

	if err := database.initializeBuckets(); err != nil {
		boltDB.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return database, nil
}

// initializeBuckets creates the bucket structure and the root node.
// This is idempotent; an existing root is left untouched.
func (db *DB) initializeBuckets() error {
	return db.Update(func(tx *bolt.Tx) error {
		contentBucket, err := tx.CreateBucketIfNotExists([]byte(BucketContent))
		if err != nil {
			return fmt.Errorf("failed to create %s bucket: %w", BucketContent, err)
		}

		for _, sub := range []string{SubBucketNodes, SubBucketChildren, SubBucketMeta} {
			if _, err := contentBucket.CreateBucketIfNotExists([]byte(sub)); err != nil {
				return fmt.Errorf("failed to create %s/%s bucket: %w", BucketContent, sub, err)
			}
		}

		// Locks, resources and logs are separate islands next to the content tree
		for _, top := range []string{BucketLocks, BucketResources, BucketLogs, StatsBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(top)); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", top, err)
			}
		}

		rootID, err := GetRootIDInTx(tx)
		if err != nil {
			return err
		}
		if rootID != "" {
			return nil
		}

		root := &NodeRecord{
			ID:          GenerateNodeID(),
			PrimaryType: content.TypeRoot,
		}
		if err := PutNodeRecordInTx(tx, root); err != nil {
			return fmt.Errorf("failed to create root node: %w", err)
		}
		if err := PutChildIDsInTx(tx, root.ID, nil); err != nil {
			return fmt.Errorf("failed to create root children list: %w", err)
		}
		return getBucket(tx, GetMetaBucketPath()).Put([]byte(MetaRootID), []byte(root.ID))
	})
}

// Close closes the BoltDB instance.
// This does NOT delete the database file.
func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

// Cleanup closes the database and deletes the database file.
func (db *DB) Cleanup() error {
	if db.db != nil {
		if err := db.db.Close(); err != nil {
			return fmt.Errorf("failed to close bolt db: %w", err)
		}
		db.db = nil
	}

	if db.IsTemporary() {
		if err := os.RemoveAll(filepath.Dir(db.dbPath)); err != nil {
			return fmt.Errorf("failed to remove temp directory: %w", err)
		}
		return nil
	}

	if db.dbPath != "" {
		if err := os.Remove(db.dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove bolt database: %w", err)
		}
	}

	return nil
}

// Path returns the path to the BoltDB file.
func (db *DB) Path() string {
	return db.dbPath
}

// IsTemporary returns true if the database was created in a temporary directory.
func (db *DB) IsTemporary() bool {
	if db.dbPath == "" {
		return false
	}
	return strings.HasPrefix(filepath.Base(filepath.Dir(db.dbPath)), "sylos-content-")
}

// Update executes a read-write transaction.
func (db *DB) Update(fn func(*bolt.Tx) error) error {
	return db.db.Update(fn)
}

// View executes a read-only transaction.
func (db *DB) View(fn func(*bolt.Tx) error) error {
	return db.db.View(fn)
}

// Get retrieves a value by key from a bucket path.
// bucketPath should be like []string{"Content", "meta"}.
func (db *DB) Get(bucketPath []string, key []byte) ([]byte, error) {
	var value []byte
	err := db.View(func(tx *bolt.Tx) error {
		bucket := getBucket(tx, bucketPath)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %v", bucketPath)
		}
		val := bucket.Get(key)
		if val != nil {
			value = make([]byte, len(val))
			copy(value, val)
		}
		return nil
	})
	return value, err
}

// Set stores a key-value pair in a bucket.
func (db *DB) Set(bucketPath []string, key, value []byte) error {
	return db.Update(func(tx *bolt.Tx) error {
		bucket := getBucket(tx, bucketPath)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %v", bucketPath)
		}
		return bucket.Put(key, value)
	})
}

// Delete removes a key from a bucket.
func (db *DB) Delete(bucketPath []string, key []byte) error {
	return db.Update(func(tx *bolt.Tx) error {
		bucket := getBucket(tx, bucketPath)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %v", bucketPath)
		}
		return bucket.Delete(key)
	})
}

// ValidateCoreSchema validates that all buckets exist and that the root node is present.
// It does not validate individual node records as that would be too expensive.
func (db *DB) ValidateCoreSchema() error {
	return db.View(func(tx *bolt.Tx) error {
		for _, top := range []string{BucketContent, BucketLocks, BucketResources, BucketLogs, StatsBucketName} {
			if tx.Bucket([]byte(top)) == nil {
				return fmt.Errorf("missing top-level bucket: %s", top)
			}
		}

		for _, sub := range []string{SubBucketNodes, SubBucketChildren, SubBucketMeta} {
			if getBucket(tx, []string{BucketContent, sub}) == nil {
				return fmt.Errorf("missing %s/%s bucket", BucketContent, sub)
			}
		}

		rootID, err := GetRootIDInTx(tx)
		if err != nil {
			return err
		}
		if rootID == "" {
			return fmt.Errorf("missing root node id in %s/%s", BucketContent, SubBucketMeta)
		}
		root, err := GetNodeRecordInTx(tx, rootID)
		if err != nil {
			return err
		}
		if root == nil {
			return fmt.Errorf("root node %s not found", rootID)
		}

		return nil
	})
}

// getBucket navigates to a nested bucket given a path.
// Returns nil if any bucket in the path doesn't exist.
func getBucket(tx *bolt.Tx, bucketPath []string) *bolt.Bucket {
	if len(bucketPath) == 0 {
		return nil
	}

	bucket := tx.Bucket([]byte(bucketPath[0]))
	if bucket == nil {
		return nil
	}

	for i := 1; i < len(bucketPath); i++ {
		bucket = bucket.Bucket([]byte(bucketPath[i]))
		if bucket == nil {
			return nil
		}
	}

	return bucket
}

// getOrCreateBucket navigates to a nested bucket, creating buckets as needed.
func getOrCreateBucket(tx *bolt.Tx, bucketPath []string) (*bolt.Bucket, error) {
	if len(bucketPath) == 0 {
		return nil, fmt.Errorf("empty bucket path")
	}

	bucket, err := tx.CreateBucketIfNotExists([]byte(bucketPath[0]))
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(bucketPath); i++ {
		bucket, err = bucket.CreateBucketIfNotExists([]byte(bucketPath[i]))
		if err != nil {
			return nil, err
		}
	}

	return bucket, nil
}
