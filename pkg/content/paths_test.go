// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package content

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"/", []string{}},
		{"/a/b", []string{"a", "b"}},
		{"a//b/", []string{"a", "b"}},
	}
	for _, test := range tests {
		if got := Split(test.in); !reflect.DeepEqual(got, test.want) {
			t.Errorf("Split(%q) = %#v, want %#v", test.in, got, test.want)
		}
	}
}

func TestParent(t *testing.T) {
	tests := []struct {
		in, dir, name string
	}{
		{"/", "/", ""},
		{"/a", "/", "a"},
		{"/a/b/c", "/a/b", "c"},
	}
	for _, test := range tests {
		dir, name := Parent(test.in)
		if dir != test.dir || name != test.name {
			t.Errorf("Parent(%q) = %q %q, want %q %q", test.in, dir, name, test.dir, test.name)
		}
	}
}

func TestPathPredicates(t *testing.T) {
	names := map[string]bool{"a": true, "jcr:content": true, "": false, ".": false, "..": false, "a/b": false, "x[1]": false}
	for name, want := range names {
		if ValidName(name) != want {
			t.Errorf("ValidName(%q) = %v", name, !want)
		}
	}
	rels := map[string]bool{"a": true, "a/b": true, "/a": false, "": false, "a/../b": false}
	for rel, want := range rels {
		if ValidRelPath(rel) != want {
			t.Errorf("ValidRelPath(%q) = %v", rel, !want)
		}
	}
	desc := []struct {
		p, ancestor string
		want        bool
	}{
		{"/a/b", "/a", true},
		{"/ab", "/a", false},
		{"/a", "/a", false},
		{"/a", "/", true},
		{"/", "/", false},
	}
	for _, test := range desc {
		if got := IsDescendant(test.p, test.ancestor); got != test.want {
			t.Errorf("IsDescendant(%q, %q) = %v", test.p, test.ancestor, got)
		}
	}
	if Join("/a", "b/", "/c") != "/a/b/c" {
		t.Error("Join does not clean")
	}
}
