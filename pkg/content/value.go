// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package content

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is the native type of a stored property value.
type Type int

const (
	TypeUndefined Type = iota
	TypeString
	TypeBoolean
	TypeLong
	TypeDouble
	TypeStringArray
	TypeBinary
)

var typeNames = [...]string{
	TypeUndefined:   "Undefined",
	TypeString:      "String",
	TypeBoolean:     "Boolean",
	TypeLong:        "Long",
	TypeDouble:      "Double",
	TypeStringArray: "String[]",
	TypeBinary:      "Binary",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType returns the type with the given name.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return TypeUndefined, fmt.Errorf("unknown property type %q", name)
}

// Value is an immutable typed property value. The zero Value is undefined.
type Value struct {
	typ  Type
	str  string
	b    bool
	l    int64
	d    float64
	strs []string
	bin  []byte
}

func StringValue(s string) Value   { return Value{typ: TypeString, str: s} }
func BooleanValue(b bool) Value    { return Value{typ: TypeBoolean, b: b} }
func LongValue(l int64) Value      { return Value{typ: TypeLong, l: l} }
func DoubleValue(d float64) Value  { return Value{typ: TypeDouble, d: d} }
func BinaryValue(b []byte) Value   { return Value{typ: TypeBinary, bin: append([]byte(nil), b...)} }
func StringArrayValue(s []string) Value {
	return Value{typ: TypeStringArray, strs: append([]string{}, s...)}
}

func (v Value) Type() Type        { return v.typ }
func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) Bool() bool        { return v.b }
func (v Value) Long() int64       { return v.l }
func (v Value) Double() float64   { return v.d }

// Strings returns a copy of the elements of a string array value.
func (v Value) Strings() []string { return append([]string(nil), v.strs...) }

// Bytes returns a copy of the content of a binary value.
func (v Value) Bytes() []byte { return append([]byte(nil), v.bin...) }

// String returns the string representation of the value, whatever its type.
// String arrays are joined with commas.
func (v Value) String() string {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	case TypeLong:
		return strconv.FormatInt(v.l, 10)
	case TypeDouble:
		return strconv.FormatFloat(v.d, 'g', -1, 64)
	case TypeStringArray:
		return strings.Join(v.strs, ",")
	case TypeBinary:
		return string(v.bin)
	}
	return ""
}

// Equal reports whether both values have the same type and content.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeStringArray:
		if len(v.strs) != len(o.strs) {
			return false
		}
		for i := range v.strs {
			if v.strs[i] != o.strs[i] {
				return false
			}
		}
		return true
	case TypeBinary:
		return bytes.Equal(v.bin, o.bin)
	}
	return v.str == o.str && v.b == o.b && v.l == o.l && v.d == o.d
}

// Native returns the value as a plain Go value as found in decoded JSON:
// string, bool, int64, float64, []string or, for binary, a base64 string.
func (v Value) Native() interface{} {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeBoolean:
		return v.b
	case TypeLong:
		return v.l
	case TypeDouble:
		return v.d
	case TypeStringArray:
		return v.Strings()
	case TypeBinary:
		return base64.StdEncoding.EncodeToString(v.bin)
	}
	return nil
}

type storedValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON encodes the value together with its type name so that it
// round-trips through the store without losing the native type.
func (v Value) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.Native())
	if err != nil {
		return nil, err
	}
	return json.Marshal(storedValue{Type: v.typ.String(), Value: raw})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var sv storedValue
	if err := json.Unmarshal(data, &sv); err != nil {
		return err
	}
	t, err := ParseType(sv.Type)
	if err != nil {
		return err
	}
	nv := Value{typ: t}
	switch t {
	case TypeString:
		err = json.Unmarshal(sv.Value, &nv.str)
	case TypeBoolean:
		err = json.Unmarshal(sv.Value, &nv.b)
	case TypeLong:
		err = json.Unmarshal(sv.Value, &nv.l)
	case TypeDouble:
		err = json.Unmarshal(sv.Value, &nv.d)
	case TypeStringArray:
		err = json.Unmarshal(sv.Value, &nv.strs)
		if nv.strs == nil {
			nv.strs = []string{}
		}
	case TypeBinary:
		var s string
		if err = json.Unmarshal(sv.Value, &s); err == nil {
			nv.bin, err = base64.StdEncoding.DecodeString(s)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s value: %w", t, err)
	}
	*v = nv
	return nil
}
