// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"encoding/json"
	"fmt"

	"github.com/Project-Sylos/Sylos-Versioning/pkg/content"
)

// NodeRecord represents one node of the content tree stored in BoltDB.
// Children are not part of the record; they live in the children index.
type NodeRecord struct {
	ID          string                   `json:"id"`                  // ULID, database key
	ParentID    string                   `json:"parent_id,omitempty"` // Empty for the root
	Name        string                   `json:"name"`                // Empty for the root
	PrimaryType string                   `json:"primary_type"`
	Mixins      []string                 `json:"mixins,omitempty"`
	Properties  map[string]content.Value `json:"properties,omitempty"`
	Revision    int64                    `json:"revision"` // Bumped on every committed write of the record or its child list
}

// Clone returns a deep copy of the record so a session can mutate it freely.
func (nr *NodeRecord) Clone() *NodeRecord {
	c := *nr
	c.Mixins = append([]string(nil), nr.Mixins...)
	if nr.Properties != nil {
		c.Properties = make(map[string]content.Value, len(nr.Properties))
		for k, v := range nr.Properties {
			c.Properties[k] = v
		}
	}
	return &c
}

// HasMixin reports whether the record carries the given mixin type.
func (nr *NodeRecord) HasMixin(mixin string) bool {
	for _, m := range nr.Mixins {
		if m == mixin {
			return true
		}
	}
	return false
}

// Serialize converts NodeRecord to bytes for storage in BoltDB.
func (nr *NodeRecord) Serialize() ([]byte, error) {
	return json.Marshal(nr)
}

// DeserializeNodeRecord creates a NodeRecord from bytes stored in BoltDB.
func DeserializeNodeRecord(data []byte) (*NodeRecord, error) {
	var nr NodeRecord
	if err := json.Unmarshal(data, &nr); err != nil {
		return nil, fmt.Errorf("failed to deserialize NodeRecord: %w", err)
	}
	return &nr, nil
}

// SerializeStringSlice converts a string slice to bytes.
func SerializeStringSlice(slice []string) ([]byte, error) {
	if slice == nil {
		slice = []string{}
	}
	return json.Marshal(slice)
}

// DeserializeStringSlice converts bytes to a string slice.
func DeserializeStringSlice(data []byte, slice *[]string) error {
	return json.Unmarshal(data, slice)
}
