// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
)

// Reserved keys of the JSON tree format. Every other key holding an object is
// a child node; everything else is a property.
const (
	KeyPrimaryType = "jcr:primaryType"
	KeyMixinTypes  = "jcr:mixinTypes"
)

// field is one member of a JSON object; tree documents keep member order
// because it is the order of child nodes.
type field struct {
	Key   string
	Value interface{}
}

type object []field

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Export encodes the subtree rooted at n as an indented JSON tree.
func Export(n content.Node) ([]byte, error) {
	obj, err := exportNode(n)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func exportNode(n content.Node) (object, error) {
	obj := object{{Key: KeyPrimaryType, Value: n.PrimaryType()}}
	if m, ok := n.(*Node); ok {
		if mixins := m.Mixins(); len(mixins) > 0 {
			obj = append(obj, field{Key: KeyMixinTypes, Value: mixins})
		}
	}

	props, err := n.Properties()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		obj = append(obj, field{Key: name, Value: props[name].Native()})
	}

	children, err := n.Children()
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		sub, err := exportNode(child)
		if err != nil {
			return nil, err
		}
		obj = append(obj, field{Key: child.Name(), Value: sub})
	}
	return obj, nil
}

// Import decodes a JSON tree and merges it beneath n: missing children are
// created, properties are set (overwriting existing values), mixins are added.
// The reserved primary type of the top-level object is ignored since n exists.
func Import(n content.Node, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	obj, err := decodeObject(dec)
	if err != nil {
		return fmt.Errorf("failed to decode tree: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("failed to decode tree: trailing data")
	}
	return importObject(n, obj)
}

func importObject(n content.Node, obj object) error {
	for _, f := range obj {
		switch f.Key {
		case KeyPrimaryType:
			continue
		case KeyMixinTypes:
			mixins, err := content.FromDeclared(f.Value)
			if err != nil || mixins.Type() != content.TypeStringArray {
				return fmt.Errorf("%s of %s must be a list of names", KeyMixinTypes, n.Path())
			}
			for _, mixin := range mixins.Strings() {
				if err := n.AddMixin(mixin); err != nil {
					return err
				}
			}
			continue
		}

		child, ok := f.Value.(object)
		if !ok {
			v, err := content.FromDeclared(f.Value)
			if err != nil {
				return fmt.Errorf("property %s of %s: %w", f.Key, n.Path(), err)
			}
			if err := n.SetProperty(f.Key, v); err != nil {
				return err
			}
			continue
		}

		exists, err := n.HasNode(f.Key)
		if err != nil {
			return err
		}
		var next content.Node
		if exists {
			next, err = n.Node(f.Key)
		} else {
			primaryType, _ := lookup(child, KeyPrimaryType).(string)
			next, err = n.AddNode(f.Key, primaryType)
		}
		if err != nil {
			return err
		}
		if err := importObject(next, child); err != nil {
			return err
		}
	}
	return nil
}

func lookup(obj object, key string) interface{} {
	for _, f := range obj {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// decodeObject reads one JSON object, keeping member order.
func decodeObject(dec *json.Decoder) (object, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var obj object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		obj = append(obj, field{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	if !dec.More() {
		return nil, fmt.Errorf("missing value")
	}
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		sub := json.NewDecoder(bytes.NewReader(raw))
		sub.UseNumber()
		return decodeObject(sub)
	}
	sub := json.NewDecoder(bytes.NewReader(raw))
	sub.UseNumber()
	var v interface{}
	if err := sub.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// EnsurePath returns the node at absPath, creating missing nodes of type
// nt:unstructured along the way.
func (s *Session) EnsurePath(absPath string) (content.Node, error) {
	current, err := s.RootNode()
	if err != nil {
		return nil, err
	}
	for _, seg := range content.Split(absPath) {
		ok, err := current.HasNode(seg)
		if err != nil {
			return nil, err
		}
		if ok {
			current, err = current.Node(seg)
		} else {
			current, err = current.AddNode(seg, "")
		}
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}
