// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"math"
	"testing"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		val  content.Value
		ok   bool
		want int64
	}{
		{content.Value{}, false, 0},
		{content.LongValue(4), true, 4},
		{content.LongValue(-2), true, 0},
		{content.DoubleValue(3.9), true, 3},
		{content.DoubleValue(math.NaN()), true, 0},
		{content.StringValue("12"), true, 12},
		{content.StringValue("  7 "), true, 7},
		{content.StringValue("3abc"), true, 3},
		{content.StringValue("abc"), true, 0},
		{content.StringValue(""), true, 0},
		{content.StringValue("-5"), true, 0},
		{content.StringValue("+6"), true, 6},
		{content.StringValue("99999999999999999999999"), true, math.MaxInt64},
		{content.BooleanValue(true), true, 0},
		{content.StringArrayValue([]string{"2", "9"}), true, 2},
		{content.StringArrayValue(nil), true, 0},
	}
	for _, test := range tests {
		if got := ParseVersion(test.val, test.ok); got != test.want {
			t.Errorf("ParseVersion(%v %s) = %d, want %d", test.val, test.val.Type(), got, test.want)
		}
	}
}

func TestScriptPath(t *testing.T) {
	tests := []struct {
		component, base string
		version         int64
		want            string
	}{
		{"", "/version/updates/", 1, "/version/updates/1.json"},
		{"/apps/site/components/hero", "/version/updates/", 12, "/apps/site/components/hero/version/updates/12.json"},
		{"/apps/c/", "updates", 2, "/apps/c/updates/2.json"},
	}
	for _, test := range tests {
		if got := ScriptPath(test.component, test.base, test.version); got != test.want {
			t.Errorf("ScriptPath(%q, %q, %d) = %q, want %q", test.component, test.base, test.version, got, test.want)
		}
	}
}
