// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package content

import "errors"

var (
	ErrPathNotFound     = errors.New("path not found")
	ErrItemExists       = errors.New("item already exists")
	ErrInvalidPath      = errors.New("invalid path")
	ErrUnsupportedValue = errors.New("unsupported property value")

	// ErrLocked is returned when a lock cannot be acquired because another
	// holder owns it. Callers treat it as "lock denied", not as a failure.
	ErrLocked        = errors.New("node is locked")
	ErrNotLocked     = errors.New("node is not locked")
	ErrNotLockable   = errors.New("node is not lockable")
	ErrLockedByOther = errors.New("node is locked by another session")

	// ErrStale is returned by Commit when a node changed in the store after
	// the session read it. Refresh and retry.
	ErrStale = errors.New("node was modified by another session")
)
