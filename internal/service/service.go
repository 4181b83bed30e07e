// Package service contains the domain stores: each owns an in-memory state tree and
// writes through to its repository before committing a change in memory.
package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// newID returns a random UUIDv4 string.
func newID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// laterOf returns t, or prev if t would move backwards.
func laterOf(prev, t time.Time) time.Time {
	if t.Before(prev) {
		return prev
	}
	return t
}
