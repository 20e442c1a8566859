// Package storage implements Kotoba's persistence using BadgerHold:
// a string KV area (wordbook, profile, system keys) and a blob area for
// generated media.
package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/models"
)

// Store wraps badgerhold for typed storage.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore opens (creating if necessary) the embedded store at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store path %s: %w", path, err)
	}

	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil // Disable badger's internal logging

	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("Store opened")

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- String key-value ---

// GetKV returns the value for key, reporting absence without error.
func (s *Store) GetKV(_ context.Context, key string) (string, bool, error) {
	var kv models.KeyValue
	if err := s.db.Get(key, &kv); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key '%s': %w", key, err)
	}
	return kv.Value, true, nil
}

// SetKV overwrites the value for key unconditionally.
func (s *Store) SetKV(_ context.Context, key, value string) error {
	kv := models.KeyValue{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	if err := s.db.Upsert(key, &kv); err != nil {
		return fmt.Errorf("failed to set key '%s': %w", key, err)
	}
	return nil
}

// --- Blobs ---

// blobSep joins category and key into a composite badgerhold key. A null
// byte cannot appear in either part, so composite keys never collide.
const blobSep = "\x00"

// SaveBlob stores binary data under (category, key).
func (s *Store) SaveBlob(_ context.Context, category, key string, data []byte, contentType string) error {
	blob := models.Blob{
		Category:    category,
		Key:         key,
		ContentType: contentType,
		Data:        data,
		UpdatedAt:   time.Now(),
	}
	if err := s.db.Upsert(category+blobSep+key, &blob); err != nil {
		return fmt.Errorf("failed to save blob '%s/%s': %w", category, key, err)
	}
	s.logger.Debug().Str("category", category).Str("key", key).Int("bytes", len(data)).Msg("Blob saved")
	return nil
}

// GetBlob retrieves binary data and its content type.
func (s *Store) GetBlob(_ context.Context, category, key string) ([]byte, string, error) {
	var blob models.Blob
	if err := s.db.Get(category+blobSep+key, &blob); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, "", fmt.Errorf("blob '%s/%s' not found", category, key)
		}
		return nil, "", fmt.Errorf("failed to get blob '%s/%s': %w", category, key, err)
	}
	return blob.Data, blob.ContentType, nil
}

// HasBlob reports whether a blob exists.
func (s *Store) HasBlob(_ context.Context, category, key string) (bool, error) {
	var blob models.Blob
	err := s.db.Get(category+blobSep+key, &blob)
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blob '%s/%s': %w", category, key, err)
	}
	return true, nil
}
