// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package content

import (
	"encoding/json"
	"fmt"
	"math"
)

// FromDeclared converts a plain value, as decoded from a JSON document, into
// the store's typed representation. Lists become string arrays, booleans
// become booleans, strings stay strings and numbers keep their native
// long or double type. Anything else fails with ErrUnsupportedValue.
func FromDeclared(v interface{}) (Value, error) {
	switch x := v.(type) {
	case string:
		return StringValue(x), nil
	case bool:
		return BooleanValue(x), nil
	case []string:
		return StringArrayValue(x), nil
	case []interface{}:
		strs := make([]string, len(x))
		for i, e := range x {
			s, err := arrayElement(e)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			strs[i] = s
		}
		return StringArrayValue(strs), nil
	case json.Number:
		if l, err := x.Int64(); err == nil {
			return LongValue(l), nil
		}
		d, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %q", ErrUnsupportedValue, x.String())
		}
		return DoubleValue(d), nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return LongValue(int64(x)), nil
		}
		return DoubleValue(x), nil
	case int:
		return LongValue(int64(x)), nil
	case int64:
		return LongValue(x), nil
	case Value:
		return x, nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

// arrayElement coerces a scalar list element to its string form.
func arrayElement(e interface{}) (string, error) {
	switch x := e.(type) {
	case string:
		return x, nil
	case bool, json.Number, float64, int, int64:
		v, err := FromDeclared(x)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	}
	return "", fmt.Errorf("%w: list element %T", ErrUnsupportedValue, e)
}
