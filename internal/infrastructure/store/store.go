// Package store provides the expiring document store the room repositories
// sit on: one JSON document per key, mutated at field-path granularity.
// Concurrent writers to different paths never conflict; writers racing on
// the same path resolve by arrival order (last write wins).
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrKeyExists   = errors.New("store: key already exists")
	ErrKeyNotFound = errors.New("store: key not found")
	ErrBadPath     = errors.New("store: path does not address an object")
)

// DocumentStore is the narrow contract the repositories consume. Every
// mutation is atomic per document; there are no cross-document transactions.
type DocumentStore interface {
	// Create stores a new document under key with the given lifetime. Fails
	// with ErrKeyExists while a live document holds the key.
	Create(ctx context.Context, key string, doc any, ttl time.Duration) error

	// Get reads the whole document into out. ErrKeyNotFound after expiry or
	// deletion.
	Get(ctx context.Context, key string, out any) error

	// SetPath upserts the value at a dotted field path ("participants.abc"),
	// creating intermediate objects as needed.
	SetPath(ctx context.Context, key, path string, value any) error

	// AppendPath appends value to the array at path, creating the array if
	// absent.
	AppendPath(ctx context.Context, key, path string, value any) error

	// DeletePath removes the field at path. Missing paths are a no-op.
	DeletePath(ctx context.Context, key, path string) error

	// Delete removes the whole document. Idempotent.
	Delete(ctx context.Context, key string) error
}
