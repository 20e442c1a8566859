// Package interfaces defines service contracts for Kotoba
package interfaces

import (
	"context"

	"github.com/bobmcallan/kotoba/internal/models"
)

// StorageManager coordinates the embedded storage areas.
type StorageManager interface {
	KV() KeyValueStore
	Wordbook() WordbookStore
	Blobs() BlobStore
	Profile() ProfileStore

	// Lifecycle
	Close() error
}

// KeyValueStore is the durable string key-value contract: get may report
// absence without error, set overwrites unconditionally (last-writer-wins).
type KeyValueStore interface {
	GetKV(ctx context.Context, key string) (value string, ok bool, err error)
	SetKV(ctx context.Context, key, value string) error
}

// WordbookStore persists the whole wordbook collection as one value.
type WordbookStore interface {
	// Load reads the persisted wordbook. Missing or malformed data degrades
	// to an empty collection — it is logged, never surfaced to the caller,
	// and never blocks startup.
	Load(ctx context.Context) models.Wordbook

	// Persist serializes the full collection and overwrites the stored
	// value unconditionally. No merge, no concurrency check.
	Persist(ctx context.Context, wb models.Wordbook) error
}

// BlobStore provides binary storage for generated media.
type BlobStore interface {
	SaveBlob(ctx context.Context, category, key string, data []byte, contentType string) error
	GetBlob(ctx context.Context, category, key string) ([]byte, string, error) // data, contentType, error
	HasBlob(ctx context.Context, category, key string) (bool, error)
}

// ProfileStore persists the learner profile. Malformed stored data is
// treated as absence.
type ProfileStore interface {
	GetProfile(ctx context.Context) (*models.UserProfile, bool)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
}
