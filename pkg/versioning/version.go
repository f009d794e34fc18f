// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"math"
	"strings"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
)

// ParseVersion reads a version stamp. Strings contribute their leading
// decimal integer, doubles are truncated and string arrays use their first
// element. Absent, unparsable and negative stamps are version 0.
func ParseVersion(v content.Value, ok bool) int64 {
	if !ok {
		return 0
	}
	var n int64
	switch v.Type() {
	case content.TypeLong:
		n = v.Long()
	case content.TypeDouble:
		d := v.Double()
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return 0
		}
		n = int64(math.Trunc(d))
	case content.TypeString, content.TypeBinary:
		n = leadingInt(v.String())
	case content.TypeStringArray:
		if strs := v.Strings(); len(strs) > 0 {
			n = leadingInt(strs[0])
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

// leadingInt parses the optionally signed run of digits at the start of s,
// after leading whitespace. It saturates instead of overflowing.
func leadingInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int64(s[i] - '0')
		if n > (math.MaxInt64-d)/10 {
			n = math.MaxInt64
			break
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}

// readVersion returns the version stamped on n under key.
func readVersion(n content.Node, key string) (int64, error) {
	v, ok, err := n.Property(key)
	if err != nil {
		return 0, err
	}
	return ParseVersion(v, ok), nil
}
