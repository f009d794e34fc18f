// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package store

import (
	"fmt"
	"time"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/bolt"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	bbolt "go.etcd.io/bbolt"
)

// LockManager acquires and releases locks on committed nodes on behalf of a session.
// Every operation runs in its own bbolt transaction, so two sessions racing for the
// same node are serialized by the database and exactly one of them wins.
type LockManager struct {
	s *Session
}

var _ content.LockManager = (*LockManager)(nil)

func (lm *LockManager) Lock(absPath string, opts content.LockOptions) (*content.Lock, error) {
	now := lm.s.store.now()
	var lock *bolt.LockRecord

	err := lm.s.store.db.Update(func(tx *bbolt.Tx) error {
		rec, err := bolt.ResolvePathInTx(tx, absPath)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%w: %s", content.ErrPathNotFound, absPath)
		}
		// Lockability must be durable, a pending mixin does not count
		if !rec.HasMixin(content.MixinLockable) {
			return fmt.Errorf("%w: %s", content.ErrNotLockable, absPath)
		}

		existing, err := bolt.EffectiveLockInTx(tx, rec, now)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s held by session %s", content.ErrLocked, absPath, existing.SessionID)
		}
		if opts.Deep {
			held, err := lockedDescendantInTx(tx, rec.ID, now)
			if err != nil {
				return err
			}
			if held != nil {
				return fmt.Errorf("%w: descendant %s of %s", content.ErrLocked, held.Path, absPath)
			}
		}

		lock = &bolt.LockRecord{
			NodeID:        rec.ID,
			Path:          absPath,
			Token:         bolt.GenerateLockToken(),
			SessionID:     lm.s.id,
			Owner:         opts.OwnerInfo,
			Deep:          opts.Deep,
			SessionScoped: opts.SessionScoped,
			AcquiredAt:    now,
		}
		if opts.Timeout > 0 && opts.Timeout != content.NoTimeout {
			lock.ExpiresAt = now.Add(opts.Timeout)
		}
		return bolt.PutLockInTx(tx, lock)
	})
	if err != nil {
		return nil, err
	}

	lm.s.locks[lock.Token] = lock.NodeID
	return &content.Lock{
		Path:          lock.Path,
		Token:         lock.Token,
		Owner:         lock.Owner,
		Deep:          lock.Deep,
		SessionScoped: lock.SessionScoped,
		AcquiredAt:    lock.AcquiredAt,
		ExpiresAt:     lock.ExpiresAt,
	}, nil
}

// Unlock releases the lock on absPath. Only the session holding the lock token may release it.
func (lm *LockManager) Unlock(absPath string) error {
	now := lm.s.store.now()
	var token string

	err := lm.s.store.db.Update(func(tx *bbolt.Tx) error {
		rec, err := bolt.ResolvePathInTx(tx, absPath)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%w: %s", content.ErrPathNotFound, absPath)
		}

		lock, err := bolt.GetLockInTx(tx, rec.ID)
		if err != nil {
			return err
		}
		if lock == nil || lock.Expired(now) {
			return fmt.Errorf("%w: %s", content.ErrNotLocked, absPath)
		}
		if !lm.s.holds(lock.Token) {
			return fmt.Errorf("%w: %s", content.ErrLockedByOther, absPath)
		}
		token = lock.Token
		return bolt.DeleteLockInTx(tx, rec.ID)
	})
	if err != nil {
		return err
	}

	delete(lm.s.locks, token)
	return nil
}

// IsLocked reports whether absPath is governed by a live lock, its own or a deep ancestor's.
func (lm *LockManager) IsLocked(absPath string) (bool, error) {
	now := lm.s.store.now()
	var locked bool

	err := lm.s.store.db.View(func(tx *bbolt.Tx) error {
		rec, err := bolt.ResolvePathInTx(tx, absPath)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%w: %s", content.ErrPathNotFound, absPath)
		}
		lock, err := bolt.EffectiveLockInTx(tx, rec, now)
		locked = lock != nil
		return err
	})

	return locked, err
}

// lockedDescendantInTx returns a live lock held on any descendant of nodeID.
func lockedDescendantInTx(tx *bbolt.Tx, nodeID string, now time.Time) (*bolt.LockRecord, error) {
	childIDs, err := bolt.GetChildIDsInTx(tx, nodeID)
	if err != nil {
		return nil, err
	}
	for _, childID := range childIDs {
		lock, err := bolt.GetLockInTx(tx, childID)
		if err != nil {
			return nil, err
		}
		if lock != nil && !lock.Expired(now) {
			return lock, nil
		}
		if lock, err = lockedDescendantInTx(tx, childID, now); err != nil || lock != nil {
			return lock, err
		}
	}
	return nil, nil
}
