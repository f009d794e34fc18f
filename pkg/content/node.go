// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package content

import (
	"math"
	"time"
)

const (
	TypeUnstructured = "nt:unstructured"
	TypeRoot         = "rep:root"
	TypeFrozen       = "nt:frozenNode"
	MixinLockable    = "mix:lockable"
)

// Node is a cursor into a content tree. Relative paths are resolved beneath
// the node; mutations are pending in the owning session until it commits.
type Node interface {
	Name() string
	Path() string
	PrimaryType() string

	HasNode(relPath string) (bool, error)
	// Node returns ErrPathNotFound when relPath does not exist.
	Node(relPath string) (Node, error)
	// AddNode creates relPath, whose parent must exist. An empty primaryType
	// selects TypeUnstructured. Returns ErrItemExists when the name is taken.
	AddNode(relPath, primaryType string) (Node, error)
	Remove() error
	// Children lists the direct children in their stored order.
	Children() ([]Node, error)

	HasProperty(name string) (bool, error)
	Property(name string) (Value, bool, error)
	Properties() (map[string]Value, error)
	SetProperty(name string, v Value) error
	// RemoveProperty deletes the property; removing an absent one is a no-op.
	RemoveProperty(name string) error

	IsNodeType(nodeType string) (bool, error)
	CanAddMixin(mixin string) (bool, error)
	AddMixin(mixin string) error

	Session() Session
}

// Session is a unit of work against a store. Reads see the session's own
// pending writes; nothing is persisted until Commit.
type Session interface {
	ID() string
	RootNode() (Node, error)
	Node(absPath string) (Node, error)
	// Move relocates the subtree at src to dest. dest must not exist.
	Move(src, dest string) error
	// Commit persists all pending changes in one all-or-nothing step.
	Commit() error
	// Refresh drops cached state. With keepChanges the pending changes are
	// retained and only clean state is reloaded.
	Refresh(keepChanges bool) error
	HasPendingChanges() bool
	LockManager() LockManager
}

// NoTimeout requests a lock that never expires.
const NoTimeout = time.Duration(math.MaxInt64)

type LockOptions struct {
	Deep          bool
	SessionScoped bool
	Timeout       time.Duration
	OwnerInfo     string
}

// Lock describes an acquired lock.
type Lock struct {
	Path          string
	Token         string
	Owner         string
	Deep          bool
	SessionScoped bool
	AcquiredAt    time.Time
	ExpiresAt     time.Time // zero when the lock never expires
}

// LockManager acquires and releases node-level exclusive locks. Locks act on
// committed state and are visible to every session of the store.
type LockManager interface {
	// Lock returns ErrLocked when another holder owns the node, and
	// ErrNotLockable when the committed node lacks MixinLockable.
	Lock(absPath string, opts LockOptions) (*Lock, error)
	Unlock(absPath string) error
	IsLocked(absPath string) (bool, error)
}
