// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package logging

import "testing"

func TestLine(t *testing.T) {
	tests := []struct {
		msg  string
		kv   []interface{}
		tags []interface{}
		want string
	}{
		{"hello", nil, nil, "WRN hello"},
		{"moved", []interface{}{"from", "a", "to", "b"}, nil, "WRN moved from=a to=b"},
		{"x", []interface{}{"n", 3}, []interface{}{"path", "/c"}, "WRN x n=3 path=/c"},
	}
	for _, test := range tests {
		got := Line("WRN ", test.msg, test.kv, test.tags)
		if got != test.want {
			t.Errorf("want %q got %q", test.want, got)
		}
	}
}

func TestLookup(t *testing.T) {
	v, ok := Lookup("path", []interface{}{"op", "moveNode"}, []interface{}{"path", "/content/a"})
	if !ok || v != "/content/a" {
		t.Errorf("want /content/a got %v %v", v, ok)
	}
	if _, ok := Lookup("missing", []interface{}{"odd"}); ok {
		t.Errorf("found a key in an odd list")
	}
}

type captured struct {
	Discard
	warns []string
}

func (c *captured) Warn(m string, kv ...interface{}) { c.warns = append(c.warns, Line("", m, kv)) }
func (c *captured) With(...interface{}) Logger       { return c }

func TestTee(t *testing.T) {
	a, b := &captured{}, &captured{}
	var l Logger = Tee{a, b}
	l.With("k", "v").Warn("w", "n", 1)
	if len(a.warns) != 1 || len(b.warns) != 1 {
		t.Fatalf("want one warning each, got %v %v", a.warns, b.warns)
	}
	if a.warns[0] != "w n=1" {
		t.Errorf("unexpected line %q", a.warns[0])
	}
}
