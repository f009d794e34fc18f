// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package store

import "github.com/Project-Sylos/Sylos-Versioning/pkg/content"

// SubtreeStats contains statistics about a subtree.
// Used for test utilities to verify tree structure and counts.
type SubtreeStats struct {
	TotalNodes      int
	TotalProperties int
	MaxDepth        int
}

// CountSubtree performs a DFS traversal of the subtree at n, as seen by its session.
//
// This is a test utility method and should not be used in production code.
// It performs O(n) traversal of the entire subtree.
func CountSubtree(n content.Node) (SubtreeStats, error) {
	stats := SubtreeStats{}

	var dfs func(node content.Node, depth int) error
	dfs = func(node content.Node, depth int) error {
		stats.TotalNodes++
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		props, err := node.Properties()
		if err != nil {
			return err
		}
		stats.TotalProperties += len(props)

		children, err := node.Children()
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := dfs(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	err := dfs(n, 0)
	return stats, err
}
