package tracker

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDFunc returns a fresh unique identifier.
// Callers must not assume any ordering from the value.
type IDFunc func() (string, error)

// NewULIDSource returns an IDFunc producing ULIDs stamped with now().
// It is not safe for concurrent use; Tracker calls it under its lock.
func NewULIDSource(now func() time.Time) IDFunc {
	return newULIDSource(now, rand.Reader)
}

func newULIDSource(now func() time.Time, r io.Reader) IDFunc {
	entropy := ulid.Monotonic(r, 0)
	return func() (string, error) {
		id, err := ulid.New(ulid.Timestamp(now()), entropy)
		if err != nil {
			return "", err
		}
		return id.String(), nil
	}
}
