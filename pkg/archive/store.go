package archive

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a timeline doesn't exist.
var ErrNotFound = errors.New("archive: timeline not found")

// ErrInvalidKey is returned for keys that could escape the store.
var ErrInvalidKey = errors.New("archive: invalid key")

// Store persists timelines.
type Store interface {
	// Save stores t under t.Key() and returns the key.
	Save(ctx context.Context, t *Timeline) (string, error)

	// Load returns the timeline stored under key.
	Load(ctx context.Context, key string) (*Timeline, error)
}

func validKey(key string) bool {
	return key != "" &&
		!strings.ContainsAny(key, `/\`) &&
		!strings.Contains(key, "..")
}
