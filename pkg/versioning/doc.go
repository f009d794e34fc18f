// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package versioning upgrades component instances to the version of their template.
//
// An instance stamps the template version it was last migrated to. When the
// template stamps a newer version the Migrator locks the instance, runs the
// update scripts for every intermediate version in ascending order, copies
// template content missing from the instance, stamps the new version and
// commits everything at once. The lock is released on every exit path.
//
// Update scripts are JSON documents of the form {"updates": [...]} where each
// entry is one operation selected by its "operation" field:
//
//	ifExists, ifPropertyExists, ifPropertyEquals,
//	addNode, moveNode, copyProperty, setProperties, removeNode, removeProperty
//
// Unknown operations are skipped with a warning.
package versioning
