package storage

import (
	"errors"
	"fmt"
	"regexp"
)

var ErrNotFound = errors.New("slot not found")

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Slots is a durable key/value area where each key holds a single opaque
// record.
type Slots interface {
	// Get returns ErrNotFound when nothing is stored under key.
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid slot key %q: must be alphanumeric", key)
	}
	return nil
}
