// Package uuid generates the time-ordered identifiers used as primary keys.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. Version 7 ids sort by creation time, which
// keeps btree inserts append-only and makes ids usable as a tie breaker for
// records created within the same timestamp.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Only fails when the random source does; fall back to v4.
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
