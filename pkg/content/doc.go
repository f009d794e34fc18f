// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package content holds the content-tree model shared by the node store and the
// versioning engine: typed property values, path helpers and the collaborator
// interfaces (Node, Session, LockManager) the engine consumes.
//
// Nodes form an ordered, named hierarchy addressed by slash-separated paths.
// Sibling names are unique. A Node is a cursor bound to exactly one Session and
// must not be used after that session has been abandoned.
package content
