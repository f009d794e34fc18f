// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"errors"
	"fmt"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/logging"
)

// LockResult tells whether the lock coordinator obtained the lock.
type LockResult int

const (
	LockDenied LockResult = iota
	LockObtained
)

func (r LockResult) String() string {
	if r == LockObtained {
		return "obtained"
	}
	return "denied"
}

// DefaultLockOwner is recorded as owner info on migration locks.
const DefaultLockOwner = "sylos - component versioning"

// AcquireLock takes an exclusive, open-scoped, shallow lock on n that never expires.
// A node that is not yet lockable is made lockable and committed first, since
// locks act on committed state. A node that cannot be made lockable, or that
// another holder has locked, yields LockDenied with a warning. Errors are
// returned only for store failures.
func AcquireLock(n content.Node, owner string, log logging.Logger) (LockResult, error) {
	if log == nil {
		log = logging.Root
	}
	path := n.Path()

	lockable, err := n.IsNodeType(content.MixinLockable)
	if err != nil {
		return LockDenied, err
	}
	if !lockable {
		ok, err := n.CanAddMixin(content.MixinLockable)
		if err != nil {
			return LockDenied, err
		}
		if !ok {
			log.Warn("unable to lock node: cannot make it lockable", "path", path)
			return LockDenied, nil
		}
		if err := n.AddMixin(content.MixinLockable); err != nil {
			return LockDenied, err
		}
		err = n.Session().Commit()
		if errors.Is(err, content.ErrLockedByOther) || errors.Is(err, content.ErrStale) {
			log.Warn("unable to lock node: modified or locked by another session", "path", path, "err", err)
			return LockDenied, nil
		}
		if err != nil {
			return LockDenied, fmt.Errorf("failed to make %s lockable: %w", path, err)
		}
	}

	lm := n.Session().LockManager()
	locked, err := lm.IsLocked(path)
	if err != nil {
		return LockDenied, err
	}
	if locked {
		log.Warn("unable to lock node: already locked", "path", path)
		return LockDenied, nil
	}

	_, err = lm.Lock(path, content.LockOptions{Timeout: content.NoTimeout, OwnerInfo: owner})
	if errors.Is(err, content.ErrLocked) {
		// Lost the race between IsLocked and Lock
		log.Warn("unable to lock node: acquired concurrently", "path", path, "err", err)
		return LockDenied, nil
	}
	if err != nil {
		return LockDenied, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	return LockObtained, nil
}

// ReleaseLock unlocks the node at path.
func ReleaseLock(s content.Session, path string) error {
	if err := s.LockManager().Unlock(path); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", path, err)
	}
	return nil
}
