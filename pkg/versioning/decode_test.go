// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
)

func TestDecodeScript(t *testing.T) {
	raw := `{"updates": [
		{"operation": "ifExists", "at": "a",
		 "ifUpdates": [{"operation": "moveNode", "from": "a", "to": "b"}]},
		{"operation": "addNode", "at": "b/c", "jcr:primaryType": "nt:unstructured",
		 "properties": {"x": "1", "on": true, "tags": ["t", 2], "n": 3, "r": 1.5}},
		{"operation": "ifPropertyEquals", "property": "status", "val": "draft",
		 "elseUpdates": [{"operation": "removeProperty", "property": "status"}]},
		{"operation": "copyProperty", "fromProperty": "a", "toNode": "b", "toProperty": "c"},
		{"operation": "frobnicate", "at": "x"}
	]}`
	script, err := DecodeScript(2, "/v/2.json", []byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	want := []Operation{
		IfExists{At: "a", Then: []Operation{MoveNode{From: "a", To: "b"}}, Else: []Operation{}},
		AddNode{At: "b/c", PrimaryType: "nt:unstructured", Properties: []Assignment{
			{"n", content.LongValue(3)},
			{"on", content.BooleanValue(true)},
			{"r", content.DoubleValue(1.5)},
			{"tags", content.StringArrayValue([]string{"t", "2"})},
			{"x", content.StringValue("1")},
		}},
		IfPropertyEquals{Property: "status", Val: "draft", Then: []Operation{},
			Else: []Operation{RemoveProperty{Property: "status"}}},
		CopyProperty{FromProperty: "a", ToNode: "b", ToProperty: "c"},
		Unrecognized{Name: "frobnicate"},
	}
	if len(script.Updates) != len(want) {
		t.Fatalf("got %d updates, want %d", len(script.Updates), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(script.Updates[i], want[i]) {
			t.Errorf("update %d:\n got %#v\nwant %#v", i, script.Updates[i], want[i])
		}
	}
	if script.Version != 2 || script.Path != "/v/2.json" {
		t.Errorf("script = %d %s", script.Version, script.Path)
	}
}

func TestDecodeScriptInvalid(t *testing.T) {
	tests := []string{
		`not json`,
		`{"updates": []} trailing`,
		`{}`,
		`{"updates": {}}`,
		`[{"operation": "addNode", "at": "a"}]`,
		`{"updates": [{"at": "a"}]}`,
		`{"updates": [{"operation": "moveNode", "from": "a"}]}`,
		`{"updates": [{"operation": "ifPropertyEquals", "property": "p"}]}`,
		`{"updates": [{"operation": "setProperties", "properties": {"o": {"nested": 1}}}]}`,
		`{"updates": [{"operation": "ifExists", "at": "a", "ifUpdates": [{"operation": "removeNode"}]}]}`,
		`{"updates": [{"operation": "moveNode", "from": "a", "to": "b", "overwrite": "yes"}]}`,
	}
	for _, raw := range tests {
		_, err := DecodeScript(1, "/s.json", []byte(raw))
		var se *ScriptError
		if !errors.As(err, &se) {
			t.Errorf("%s: got %v, want ScriptError", raw, err)
			continue
		}
		if se.Version != 1 || se.Path != "/s.json" {
			t.Errorf("%s: error context %+v", raw, se)
		}
	}
}
