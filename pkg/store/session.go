// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package store

import (
	"fmt"
	"sort"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/bolt"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
	bbolt "go.etcd.io/bbolt"
)

// workingSet is the session's view of the tree: records and child lists loaded
// from committed state, plus everything changed since the last commit.
type workingSet struct {
	records       map[string]*bolt.NodeRecord // ULID -> working copy
	children      map[string][]string         // Parent ULID -> ordered child ULIDs
	dirty         map[string]bool             // Records to write
	dirtyChildren map[string]bool             // Child lists to write
	removed       map[string]bool             // Nodes to delete
}

func newWorkingSet() *workingSet {
	return &workingSet{
		records:       make(map[string]*bolt.NodeRecord),
		children:      make(map[string][]string),
		dirty:         make(map[string]bool),
		dirtyChildren: make(map[string]bool),
		removed:       make(map[string]bool),
	}
}

func (ws *workingSet) pending() bool {
	return len(ws.dirty)+len(ws.dirtyChildren)+len(ws.removed) > 0
}

// Session is a unit of work against a Store. Reads see the session's own
// pending writes; nothing is persisted until Commit. A Session must not be
// used from more than one goroutine.
type Session struct {
	store  *Store
	id     string
	rootID string
	state  *workingSet
	locks  map[string]string // Token -> node ULID of locks held by this session
}

var _ content.Session = (*Session)(nil)

// ID returns the session identifier recorded as lock owner.
func (s *Session) ID() string {
	return s.id
}

// RootNode returns the root of the tree.
func (s *Session) RootNode() (content.Node, error) {
	id, err := s.root()
	if err != nil {
		return nil, err
	}
	return &Node{s: s, id: id}, nil
}

// Node returns the node at an absolute path.
func (s *Session) Node(absPath string) (content.Node, error) {
	if !content.IsAbs(absPath) {
		return nil, fmt.Errorf("%w: %q is not absolute", content.ErrInvalidPath, absPath)
	}
	root, err := s.root()
	if err != nil {
		return nil, err
	}
	id, err := s.resolve(root, absPath)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: %s", content.ErrPathNotFound, absPath)
	}
	return &Node{s: s, id: id}, nil
}

// Move relocates the subtree at src to dest within the session.
func (s *Session) Move(src, dest string) error {
	if !content.IsAbs(src) || !content.IsAbs(dest) {
		return fmt.Errorf("%w: move %q to %q needs absolute paths", content.ErrInvalidPath, src, dest)
	}
	if content.Join(src) == content.Join(dest) || content.IsDescendant(dest, src) {
		return fmt.Errorf("%w: cannot move %s beneath itself", content.ErrInvalidPath, src)
	}

	root, err := s.root()
	if err != nil {
		return err
	}
	srcID, err := s.resolve(root, src)
	if err != nil {
		return err
	}
	if srcID == "" {
		return fmt.Errorf("%w: %s", content.ErrPathNotFound, src)
	}
	if srcID == root {
		return fmt.Errorf("%w: cannot move the root node", content.ErrInvalidPath)
	}

	destDir, destName := content.Parent(dest)
	if !content.ValidName(destName) {
		return fmt.Errorf("%w: invalid node name %q", content.ErrInvalidPath, destName)
	}
	parentID, err := s.resolve(root, destDir)
	if err != nil {
		return err
	}
	if parentID == "" {
		return fmt.Errorf("%w: %s", content.ErrPathNotFound, destDir)
	}
	existing, err := s.findChild(parentID, destName)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", content.ErrItemExists, dest)
	}

	rec, err := s.record(srcID)
	if err != nil {
		return err
	}
	if err := s.detach(rec.ParentID, srcID); err != nil {
		return err
	}
	if err := s.attach(parentID, srcID); err != nil {
		return err
	}
	rec.ParentID = parentID
	rec.Name = destName
	s.state.dirty[srcID] = true
	return nil
}

// HasPendingChanges reports whether Commit would write anything.
func (s *Session) HasPendingChanges() bool {
	return s.state.pending()
}

// Refresh drops cached state. With keepChanges only clean records and child
// lists are dropped, so later reads observe commits made by other sessions.
func (s *Session) Refresh(keepChanges bool) error {
	if !keepChanges {
		s.state = newWorkingSet()
		return nil
	}
	for id := range s.state.records {
		if !s.state.dirty[id] {
			delete(s.state.records, id)
		}
	}
	for id := range s.state.children {
		if !s.state.dirtyChildren[id] {
			delete(s.state.children, id)
		}
	}
	return nil
}

// Discard drops every pending change.
func (s *Session) Discard() {
	s.state = newWorkingSet()
}

// Commit writes every pending record, child list and deletion in ONE transaction.
// It fails with content.ErrLockedByOther when a touched node is locked by a token
// this session does not hold; on any failure nothing is persisted and the pending
// changes stay in the session.
func (s *Session) Commit() error {
	if !s.state.pending() {
		return nil
	}

	ops := make([]*bolt.WriteOperation, 0, len(s.state.dirty)+len(s.state.dirtyChildren)+3*len(s.state.removed))
	touched := make(map[string]bool)

	for _, id := range sortedKeys(s.state.dirty) {
		next := s.state.records[id].Clone()
		next.Revision++
		data, err := next.Serialize()
		if err != nil {
			return fmt.Errorf("failed to serialize node %s: %w", id, err)
		}
		ops = append(ops, &bolt.WriteOperation{BucketPath: bolt.GetNodesBucketPath(), Key: []byte(id), Value: data})
		touched[id] = true
	}

	for _, id := range sortedKeys(s.state.dirtyChildren) {
		data, err := bolt.SerializeStringSlice(s.state.children[id])
		if err != nil {
			return fmt.Errorf("failed to serialize children of %s: %w", id, err)
		}
		ops = append(ops, &bolt.WriteOperation{BucketPath: bolt.GetChildrenBucketPath(), Key: []byte(id), Value: data})
		touched[id] = true
	}

	for _, id := range sortedKeys(s.state.removed) {
		key := []byte(id)
		ops = append(ops,
			&bolt.WriteOperation{BucketPath: bolt.GetNodesBucketPath(), Key: key, Delete: true},
			&bolt.WriteOperation{BucketPath: bolt.GetChildrenBucketPath(), Key: key, Delete: true},
			&bolt.WriteOperation{BucketPath: bolt.GetLocksBucketPath(), Key: key, Delete: true},
		)
		touched[id] = true
	}

	now := s.store.now()
	check := func(tx *bbolt.Tx) error {
		for _, id := range sortedKeys(touched) {
			committed, err := bolt.GetNodeRecordInTx(tx, id)
			if err != nil {
				return err
			}
			if committed == nil {
				continue // New node, guarded by its parent's child list
			}
			if rec, ok := s.state.records[id]; ok && s.state.dirty[id] && committed.Revision != rec.Revision {
				return fmt.Errorf("%w: %s", content.ErrStale, committed.Name)
			}
			lock, err := bolt.EffectiveLockInTx(tx, committed, now)
			if err != nil {
				return err
			}
			if lock != nil && !s.holds(lock.Token) {
				return fmt.Errorf("%w: %s", content.ErrLockedByOther, lock.Path)
			}
		}
		return nil
	}

	if err := s.store.db.ApplyBatch(check, ops); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	// Written state is now the committed baseline
	for id := range s.state.dirty {
		s.state.records[id].Revision++
	}
	s.state.dirty = make(map[string]bool)
	s.state.dirtyChildren = make(map[string]bool)
	s.state.removed = make(map[string]bool)
	return nil
}

// LockManager returns the lock manager acting on behalf of this session.
func (s *Session) LockManager() content.LockManager {
	return &LockManager{s: s}
}

// Logout releases the session-scoped locks held by this session and drops
// all pending changes.
func (s *Session) Logout() error {
	var firstErr error
	for token, nodeID := range s.locks {
		err := s.store.db.Update(func(tx *bbolt.Tx) error {
			lock, err := bolt.GetLockInTx(tx, nodeID)
			if err != nil || lock == nil || lock.Token != token || !lock.SessionScoped {
				return err
			}
			return bolt.DeleteLockInTx(tx, nodeID)
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delete(s.locks, token)
	}
	s.state = newWorkingSet()
	return firstErr
}

func (s *Session) holds(token string) bool {
	_, ok := s.locks[token]
	return ok
}

func (s *Session) root() (string, error) {
	if s.rootID != "" {
		return s.rootID, nil
	}
	id, err := bolt.GetRootID(s.store.db)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("content tree has no root")
	}
	s.rootID = id
	return id, nil
}

// record returns the working copy of a node, loading it on first use.
// Returns nil, nil for nodes that do not exist or were removed in this session.
func (s *Session) record(id string) (*bolt.NodeRecord, error) {
	if s.state.removed[id] {
		return nil, nil
	}
	if rec, ok := s.state.records[id]; ok {
		return rec, nil
	}
	rec, err := bolt.GetNodeRecord(s.store.db, id)
	if err != nil || rec == nil {
		return nil, err
	}
	s.state.records[id] = rec
	return rec, nil
}

// childIDs returns the working child list of a node. Callers must not modify it.
func (s *Session) childIDs(id string) ([]string, error) {
	if ids, ok := s.state.children[id]; ok {
		return ids, nil
	}
	ids, err := bolt.GetChildIDs(s.store.db, id)
	if err != nil {
		return nil, err
	}
	s.state.children[id] = ids
	return ids, nil
}

func (s *Session) findChild(parentID, name string) (*bolt.NodeRecord, error) {
	ids, err := s.childIDs(parentID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		rec, err := s.record(id)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.Name == name {
			return rec, nil
		}
	}
	return nil, nil
}

// resolve walks rel (relative or absolute, absolute starts at from) and
// returns the ULID it names, or "" if any segment is missing.
func (s *Session) resolve(from, rel string) (string, error) {
	current := from
	for _, seg := range content.Split(rel) {
		if !content.ValidName(seg) {
			return "", fmt.Errorf("%w: invalid segment %q in %q", content.ErrInvalidPath, seg, rel)
		}
		child, err := s.findChild(current, seg)
		if err != nil {
			return "", err
		}
		if child == nil {
			return "", nil
		}
		current = child.ID
	}
	if rec, err := s.record(current); err != nil || rec == nil {
		return "", err
	}
	return current, nil
}

func (s *Session) pathOf(id string) (string, error) {
	var segs []string
	for current := id; ; {
		rec, err := s.record(current)
		if err != nil {
			return "", err
		}
		if rec == nil {
			return "", fmt.Errorf("%w: node %s", content.ErrPathNotFound, current)
		}
		if rec.ParentID == "" {
			break
		}
		segs = append(segs, rec.Name)
		current = rec.ParentID
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return content.Join(append([]string{content.RootPath}, segs...)...), nil
}

func (s *Session) attach(parentID, childID string) error {
	ids, err := s.childIDs(parentID)
	if err != nil {
		return err
	}
	next := make([]string, 0, len(ids)+1)
	next = append(next, ids...)
	s.state.children[parentID] = append(next, childID)
	return s.touchChildren(parentID)
}

func (s *Session) detach(parentID, childID string) error {
	ids, err := s.childIDs(parentID)
	if err != nil {
		return err
	}
	next := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != childID {
			next = append(next, id)
		}
	}
	s.state.children[parentID] = next
	return s.touchChildren(parentID)
}

// touchChildren marks a child list for writing. The owning record is
// written too so that its revision guards the list.
func (s *Session) touchChildren(parentID string) error {
	rec, err := s.record(parentID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: node %s", content.ErrPathNotFound, parentID)
	}
	s.state.dirtyChildren[parentID] = true
	s.state.dirty[parentID] = true
	return nil
}

// addChild creates a new node record under parentID.
func (s *Session) addChild(parentID, name, primaryType string) (string, error) {
	if primaryType == "" {
		primaryType = content.TypeUnstructured
	}
	rec := &bolt.NodeRecord{
		ID:          bolt.GenerateNodeID(),
		ParentID:    parentID,
		Name:        name,
		PrimaryType: primaryType,
	}
	if err := s.attach(parentID, rec.ID); err != nil {
		return "", err
	}
	s.state.records[rec.ID] = rec
	s.state.children[rec.ID] = []string{}
	s.state.dirty[rec.ID] = true
	s.state.dirtyChildren[rec.ID] = true
	return rec.ID, nil
}

// removeSubtree marks a node and all its descendants removed.
func (s *Session) removeSubtree(id string) error {
	rec, err := s.record(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	var collect func(string) ([]string, error)
	collect = func(nodeID string) ([]string, error) {
		out := []string{nodeID}
		ids, err := s.childIDs(nodeID)
		if err != nil {
			return nil, err
		}
		for _, childID := range ids {
			sub, err := collect(childID)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	}
	ids, err := collect(id)
	if err != nil {
		return err
	}

	if err := s.detach(rec.ParentID, id); err != nil {
		return err
	}
	for _, nodeID := range ids {
		delete(s.state.records, nodeID)
		delete(s.state.children, nodeID)
		delete(s.state.dirty, nodeID)
		delete(s.state.dirtyChildren, nodeID)
		s.state.removed[nodeID] = true
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
