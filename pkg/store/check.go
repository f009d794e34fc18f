// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package store

import (
	"fmt"
	"time"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/bolt"
	bbolt "go.etcd.io/bbolt"
)

// LockInfo describes a stored lock.
type LockInfo struct {
	Path          string // Current path of the locked node
	Token         string
	SessionID     string
	Owner         string
	Deep          bool
	SessionScoped bool
	Expired       bool
	AcquiredAt    time.Time
	ExpiresAt     time.Time
}

// Locks lists every stored lock, expired ones included.
func (s *Store) Locks() ([]LockInfo, error) {
	var records []*bolt.LockRecord
	err := s.db.IterateLocks(bolt.IteratorOptions{}, func(lock *bolt.LockRecord) error {
		records = append(records, lock)
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]LockInfo, 0, len(records))
	err = s.db.View(func(tx *bbolt.Tx) error {
		for _, lock := range records {
			info := LockInfo{
				Path:          lock.Path,
				Token:         lock.Token,
				SessionID:     lock.SessionID,
				Owner:         lock.Owner,
				Deep:          lock.Deep,
				SessionScoped: lock.SessionScoped,
				Expired:       lock.Expired(now),
				AcquiredAt:    lock.AcquiredAt,
				ExpiresAt:     lock.ExpiresAt,
			}
			// The node may have moved since the lock was taken
			rec, err := bolt.GetNodeRecordInTx(tx, lock.NodeID)
			if err != nil {
				return err
			}
			if rec != nil {
				if info.Path, err = bolt.PathOfInTx(tx, rec); err != nil {
					return err
				}
			}
			out = append(out, info)
		}
		return nil
	})
	return out, err
}

// Orphan is a stored node that is not reachable from the root.
type Orphan struct {
	ID       string
	Name     string
	ParentID string
	Created  time.Time
}

// CheckReport is the result of Check.
type CheckReport struct {
	Nodes    int
	Orphans  []Orphan
	Repaired int
}

// Check validates the bucket layout and looks for node records that cannot
// be reached from the root. With repair the unreachable records are deleted.
func (s *Store) Check(repair bool) (*CheckReport, error) {
	if err := s.db.ValidateCoreSchema(); err != nil {
		return nil, err
	}
	rootID, err := bolt.GetRootID(s.db)
	if err != nil {
		return nil, err
	}

	records := make(map[string]*bolt.NodeRecord)
	err = s.db.IterateNodeRecords(bolt.IteratorOptions{}, func(rec *bolt.NodeRecord) error {
		records[rec.ID] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Walk down from the root; whatever is not visited is an orphan
	reachable := make(map[string]bool, len(records))
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reachable[id] || records[id] == nil {
			continue
		}
		reachable[id] = true
		childIDs, err := bolt.GetChildIDs(s.db, id)
		if err != nil {
			return nil, err
		}
		for _, childID := range childIDs {
			if child := records[childID]; child != nil && child.ParentID == id {
				queue = append(queue, childID)
			}
		}
	}

	report := &CheckReport{Nodes: len(records)}
	for id, rec := range records {
		if !reachable[id] {
			report.Orphans = append(report.Orphans, Orphan{ID: id, Name: rec.Name, ParentID: rec.ParentID, Created: bolt.IDTime(id)})
		}
	}
	if !repair || len(report.Orphans) == 0 {
		return report, nil
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		for _, o := range report.Orphans {
			if err := bolt.DeleteNodeInTx(tx, o.ID); err != nil {
				return fmt.Errorf("failed to delete orphan %s: %w", o.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	report.Repaired = len(report.Orphans)
	return report, nil
}
