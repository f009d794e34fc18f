// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/bolt"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
)

// Node is a cursor on one node of a session's working tree.
type Node struct {
	s  *Session
	id string
}

var _ content.Node = (*Node)(nil)

// ID returns the node's ULID.
func (n *Node) ID() string {
	return n.id
}

func (n *Node) rec() (*bolt.NodeRecord, error) {
	rec, err := n.s.record(n.id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: node %s no longer exists", content.ErrPathNotFound, n.id)
	}
	return rec, nil
}

// Name returns the node name, "" for the root or a node that no longer exists.
func (n *Node) Name() string {
	rec, err := n.rec()
	if err != nil {
		return ""
	}
	return rec.Name
}

// Path returns the absolute path, "" if the node no longer exists.
func (n *Node) Path() string {
	p, err := n.s.pathOf(n.id)
	if err != nil {
		return ""
	}
	return p
}

func (n *Node) PrimaryType() string {
	rec, err := n.rec()
	if err != nil {
		return ""
	}
	return rec.PrimaryType
}

func (n *Node) Session() content.Session {
	return n.s
}

func (n *Node) HasNode(relPath string) (bool, error) {
	id, err := n.s.resolve(n.id, relPath)
	return id != "", err
}

func (n *Node) Node(relPath string) (content.Node, error) {
	if relPath == "" || content.IsAbs(relPath) {
		return nil, fmt.Errorf("%w: %q is not a relative path", content.ErrInvalidPath, relPath)
	}
	id, err := n.s.resolve(n.id, relPath)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: %s/%s", content.ErrPathNotFound, strings.TrimSuffix(n.Path(), "/"), relPath)
	}
	return &Node{s: n.s, id: id}, nil
}

func (n *Node) AddNode(relPath, primaryType string) (content.Node, error) {
	if !content.ValidRelPath(relPath) {
		return nil, fmt.Errorf("%w: %q", content.ErrInvalidPath, relPath)
	}
	segs := content.Split(relPath)
	parentID, err := n.s.resolve(n.id, strings.Join(segs[:len(segs)-1], "/"))
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		return nil, fmt.Errorf("%w: parent of %s", content.ErrPathNotFound, relPath)
	}

	name := segs[len(segs)-1]
	existing, err := n.s.findChild(parentID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", content.ErrItemExists, relPath)
	}

	id, err := n.s.addChild(parentID, name, primaryType)
	if err != nil {
		return nil, err
	}
	return &Node{s: n.s, id: id}, nil
}

func (n *Node) Remove() error {
	rec, err := n.rec()
	if err != nil {
		return err
	}
	if rec.ParentID == "" {
		return fmt.Errorf("%w: cannot remove the root node", content.ErrInvalidPath)
	}
	return n.s.removeSubtree(n.id)
}

func (n *Node) Children() ([]content.Node, error) {
	if _, err := n.rec(); err != nil {
		return nil, err
	}
	ids, err := n.s.childIDs(n.id)
	if err != nil {
		return nil, err
	}
	out := make([]content.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, &Node{s: n.s, id: id})
	}
	return out, nil
}

func (n *Node) HasProperty(name string) (bool, error) {
	_, ok, err := n.Property(name)
	return ok, err
}

func (n *Node) Property(name string) (content.Value, bool, error) {
	rec, err := n.rec()
	if err != nil {
		return content.Value{}, false, err
	}
	v, ok := rec.Properties[name]
	return v, ok, nil
}

// Properties returns a copy of the node's properties.
func (n *Node) Properties() (map[string]content.Value, error) {
	rec, err := n.rec()
	if err != nil {
		return nil, err
	}
	out := make(map[string]content.Value, len(rec.Properties))
	for k, v := range rec.Properties {
		out[k] = v
	}
	return out, nil
}

// PropertyNames returns the property names in sorted order.
func (n *Node) PropertyNames() ([]string, error) {
	props, err := n.Properties()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

func (n *Node) SetProperty(name string, v content.Value) error {
	if !content.ValidName(name) {
		return fmt.Errorf("%w: invalid property name %q", content.ErrInvalidPath, name)
	}
	if v.IsUndefined() {
		return fmt.Errorf("%w: undefined value for %s", content.ErrUnsupportedValue, name)
	}
	rec, err := n.rec()
	if err != nil {
		return err
	}
	if rec.Properties == nil {
		rec.Properties = make(map[string]content.Value)
	}
	rec.Properties[name] = v
	n.s.state.dirty[n.id] = true
	return nil
}

func (n *Node) RemoveProperty(name string) error {
	rec, err := n.rec()
	if err != nil {
		return err
	}
	if _, ok := rec.Properties[name]; !ok {
		return nil
	}
	delete(rec.Properties, name)
	n.s.state.dirty[n.id] = true
	return nil
}

func (n *Node) IsNodeType(nodeType string) (bool, error) {
	rec, err := n.rec()
	if err != nil {
		return false, err
	}
	return rec.PrimaryType == nodeType || rec.HasMixin(nodeType), nil
}

// CanAddMixin reports whether mixin may be added. The root and frozen
// (version history) nodes take no mixins.
func (n *Node) CanAddMixin(mixin string) (bool, error) {
	rec, err := n.rec()
	if err != nil {
		return false, err
	}
	if !strings.HasPrefix(mixin, "mix:") {
		return false, nil
	}
	switch rec.PrimaryType {
	case content.TypeRoot, content.TypeFrozen:
		return false, nil
	}
	return true, nil
}

func (n *Node) AddMixin(mixin string) error {
	ok, err := n.CanAddMixin(mixin)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cannot add mixin %s to %s", mixin, n.Path())
	}
	rec, err := n.rec()
	if err != nil {
		return err
	}
	if rec.HasMixin(mixin) {
		return nil
	}
	rec.Mixins = append(rec.Mixins, mixin)
	n.s.state.dirty[n.id] = true
	return nil
}

// Mixins returns the node's mixin types.
func (n *Node) Mixins() []string {
	rec, err := n.rec()
	if err != nil {
		return nil
	}
	return append([]string(nil), rec.Mixins...)
}
