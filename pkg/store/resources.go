// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package store

import (
	"fmt"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/bolt"
	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
)

// PutResource stores raw bytes, such as an update script, at an absolute resource path.
func (s *Store) PutResource(path string, data []byte) error {
	if !content.IsAbs(path) {
		return fmt.Errorf("%w: resource path %q is not absolute", content.ErrInvalidPath, path)
	}
	return bolt.PutResource(s.db, content.Join(path), data)
}

// Load returns the resource at path. A missing resource is not an error.
func (s *Store) Load(path string) ([]byte, bool, error) {
	if !content.IsAbs(path) {
		return nil, false, fmt.Errorf("%w: resource path %q is not absolute", content.ErrInvalidPath, path)
	}
	return bolt.GetResource(s.db, content.Join(path))
}

// DeleteResource removes the resource at path.
func (s *Store) DeleteResource(path string) error {
	return bolt.DeleteResource(s.db, content.Join(path))
}

// ListResources returns the resource paths starting with prefix.
func (s *Store) ListResources(prefix string) ([]string, error) {
	return bolt.ListResources(s.db, prefix)
}
