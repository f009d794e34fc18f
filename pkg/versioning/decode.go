// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
)

// DecodeScript validates and decodes the update script for version read from path.
// Failures are reported as *ScriptError.
func DecodeScript(version int64, path string, data []byte) (*Script, error) {
	fail := func(err error) (*Script, error) {
		return nil, &ScriptError{Version: version, Path: path, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fail(fmt.Errorf("malformed JSON: %w", err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return fail(fmt.Errorf("malformed JSON: trailing data"))
	}
	if err := compiledScriptSchema.Validate(doc); err != nil {
		return fail(err)
	}

	root := doc.(map[string]interface{})
	updates, err := decodeUpdates(root["updates"])
	if err != nil {
		return fail(err)
	}
	return &Script{Version: version, Path: path, Updates: updates}, nil
}

func decodeUpdates(v interface{}) ([]Operation, error) {
	list, _ := v.([]interface{})
	ops := make([]Operation, 0, len(list))
	for i, item := range list {
		op, err := decodeOperation(item.(map[string]interface{}))
		if err != nil {
			return nil, fmt.Errorf("update %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// decodeOperation builds the variant for one schema-valid entry.
func decodeOperation(m map[string]interface{}) (Operation, error) {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	branches := func() (then, els []Operation, err error) {
		if then, err = decodeUpdates(m["ifUpdates"]); err != nil {
			return nil, nil, fmt.Errorf("ifUpdates: %w", err)
		}
		if els, err = decodeUpdates(m["elseUpdates"]); err != nil {
			return nil, nil, fmt.Errorf("elseUpdates: %w", err)
		}
		return then, els, nil
	}

	switch kind := Kind(str("operation")); kind {
	case KindIfExists:
		then, els, err := branches()
		return IfExists{At: str("at"), Then: then, Else: els}, err
	case KindIfPropertyExists:
		then, els, err := branches()
		return IfPropertyExists{At: str("at"), Property: str("property"), Then: then, Else: els}, err
	case KindIfPropertyEquals:
		then, els, err := branches()
		return IfPropertyEquals{At: str("at"), Property: str("property"), Val: str("val"), Then: then, Else: els}, err
	case KindAddNode:
		op := AddNode{At: str("at"), PrimaryType: str("jcr:primaryType")}
		if props, ok := m["properties"]; ok {
			assignments, err := decodeAssignments(props)
			if err != nil {
				return nil, err
			}
			op.Properties = assignments
		}
		return op, nil
	case KindMoveNode:
		overwrite, _ := m["overwrite"].(bool)
		return MoveNode{From: str("from"), To: str("to"), Overwrite: overwrite}, nil
	case KindCopyProperty:
		return CopyProperty{
			FromNode:     str("fromNode"),
			FromProperty: str("fromProperty"),
			ToNode:       str("toNode"),
			ToProperty:   str("toProperty"),
		}, nil
	case KindSetProperties:
		assignments, err := decodeAssignments(m["properties"])
		if err != nil {
			return nil, err
		}
		return SetProperties{At: str("at"), Properties: assignments}, nil
	case KindRemoveNode:
		return RemoveNode{At: str("at")}, nil
	case KindRemoveProperty:
		return RemoveProperty{At: str("at"), Property: str("property")}, nil
	default:
		return Unrecognized{Name: string(kind)}, nil
	}
}

// decodeAssignments converts a property mapping, sorted by name so that
// scripts apply deterministically.
func decodeAssignments(v interface{}) ([]Assignment, error) {
	m, _ := v.(map[string]interface{})
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Assignment, 0, len(names))
	for _, name := range names {
		value, err := content.FromDeclared(m[name])
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		out = append(out, Assignment{Name: name, Value: value})
	}
	return out, nil
}
