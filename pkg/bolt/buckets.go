// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	bolt "go.etcd.io/bbolt"
)

// Bucket path constants
const (
	BucketContent   = "Content"   // Root bucket for the node tree
	BucketLocks     = "Locks"     // Node ULID -> LockRecord
	BucketResources = "Resources" // Absolute resource path -> raw bytes
	BucketLogs      = "LOGS"      // Separate island, one sub-bucket per level
)

// Sub-bucket names under Content
const (
	SubBucketNodes    = "nodes"    // ULID -> NodeRecord
	SubBucketChildren = "children" // Parent ULID -> ordered child ULID list
	SubBucketMeta     = "meta"     // Fixed keys such as the root id
)

// Keys in the meta bucket
const (
	MetaRootID = "root-id"
)

// GetNodesBucketPath returns the bucket path for the nodes bucket.
// Returns: ["Content", "nodes"]
func GetNodesBucketPath() []string {
	return []string{BucketContent, SubBucketNodes}
}

// GetChildrenBucketPath returns the bucket path for the children index.
// Returns: ["Content", "children"]
func GetChildrenBucketPath() []string {
	return []string{BucketContent, SubBucketChildren}
}

// GetMetaBucketPath returns the bucket path for the meta bucket.
// Returns: ["Content", "meta"]
func GetMetaBucketPath() []string {
	return []string{BucketContent, SubBucketMeta}
}

// GetLocksBucketPath returns the bucket path for the lock table.
// Returns: ["Locks"]
func GetLocksBucketPath() []string {
	return []string{BucketLocks}
}

// GetResourcesBucketPath returns the bucket path for resource blobs.
// Returns: ["Resources"]
func GetResourcesBucketPath() []string {
	return []string{BucketResources}
}

// GetLogsBucketPath returns the bucket path for logs.
// Returns: ["LOGS"]
func GetLogsBucketPath() []string {
	return []string{BucketLogs}
}

// GetStatsBucketPath returns the bucket path for counters.
// Returns: ["STATS"]
func GetStatsBucketPath() []string {
	return []string{StatsBucketName}
}

// GetNodesBucket returns the nodes bucket.
func GetNodesBucket(tx *bolt.Tx) *bolt.Bucket {
	return getBucket(tx, GetNodesBucketPath())
}

// GetChildrenBucket returns the children index bucket.
func GetChildrenBucket(tx *bolt.Tx) *bolt.Bucket {
	return getBucket(tx, GetChildrenBucketPath())
}

// GetLocksBucket returns the lock table bucket.
func GetLocksBucket(tx *bolt.Tx) *bolt.Bucket {
	return getBucket(tx, GetLocksBucketPath())
}

// GetResourcesBucket returns the resources bucket.
func GetResourcesBucket(tx *bolt.Tx) *bolt.Bucket {
	return getBucket(tx, GetResourcesBucketPath())
}

// GetLogsBucket returns the logs bucket.
func GetLogsBucket(tx *bolt.Tx) *bolt.Bucket {
	return tx.Bucket([]byte(BucketLogs))
}
