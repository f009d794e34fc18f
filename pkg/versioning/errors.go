// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import (
	"errors"
	"fmt"
)

// ErrUnsupportedType is returned when ifPropertyEquals meets a property that is not a string.
var ErrUnsupportedType = errors.New("unsupported property type for comparison")

// ScriptError reports an update script that cannot be decoded or fails structural validation.
type ScriptError struct {
	Version int64
	Path    string
	Err     error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("invalid update script %s (version %d): %v", e.Path, e.Version, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// StepError reports a fatal failure while interpreting one operation.
// Index is the position of the operation within its enclosing list.
type StepError struct {
	Version int64
	Index   int
	Kind    Kind
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("update %d step %d (%s): %v", e.Version, e.Index, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
