package providers

import (
	"context"
)

// CacheProvider defines the interface for session-scoped key-value storage.
// The session store writes synchronously after every mutation, so a reader
// never observes a snapshot older than the last completed write.
type CacheProvider interface {
	// Get retrieves a value; returns an error on miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with expiration.
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists.
	Exists(ctx context.Context, key string) (bool, error)
}
