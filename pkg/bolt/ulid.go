// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package bolt

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// GenerateNodeID generates a new ULID for use as an internal node identifier.
// ULIDs from one process are monotonic, so ids sort in creation order.
func GenerateNodeID() string {
	return ulid.Make().String()
}

// GenerateLockToken generates a new lock token.
func GenerateLockToken() string {
	return "lock-" + ulid.Make().String()
}

// GenerateLogID generates a new ULID for a log entry key so entries iterate chronologically.
func GenerateLogID() string {
	return ulid.Make().String()
}

// IDTime returns the creation time encoded in a ULID, or the zero time if id is not a ULID.
func IDTime(id string) time.Time {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
