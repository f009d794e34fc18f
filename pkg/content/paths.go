// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package content

import (
	"path"
	"strings"
)

// RootPath is the path of the root node of every tree.
const RootPath = "/"

// Join joins path elements with slashes and cleans the result.
func Join(elem ...string) string {
	return path.Join(elem...)
}

// Split returns the non-empty segments of p.
func Split(p string) []string {
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// IsAbs reports whether p starts at the root.
func IsAbs(p string) bool {
	return strings.HasPrefix(p, "/")
}

// ValidName reports whether name can be used as a node name.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, "/[]|*")
}

// ValidRelPath reports whether every segment of a relative path is a valid name.
func ValidRelPath(rel string) bool {
	segs := Split(rel)
	if len(segs) == 0 || IsAbs(rel) {
		return false
	}
	for _, s := range segs {
		if !ValidName(s) {
			return false
		}
	}
	return true
}

// Parent returns the parent path and the last segment of an absolute path.
func Parent(abs string) (dir, name string) {
	segs := Split(abs)
	if len(segs) == 0 {
		return RootPath, ""
	}
	return RootPath + strings.Join(segs[:len(segs)-1], "/"), segs[len(segs)-1]
}

// IsDescendant reports whether p lies strictly beneath ancestor.
func IsDescendant(p, ancestor string) bool {
	if ancestor == RootPath {
		return p != RootPath && IsAbs(p)
	}
	return strings.HasPrefix(p, strings.TrimSuffix(ancestor, "/")+"/")
}
