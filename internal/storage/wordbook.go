package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/models"
)

// wordbookKey is the KV key under which the whole collection is stored as
// one JSON string, mirroring the original single-slot durable store.
const wordbookKey = "wordbook"

// wordbookStore persists the wordbook through the string KV area.
type wordbookStore struct {
	store  *Store
	logger *common.Logger
}

func newWordbookStore(store *Store, logger *common.Logger) *wordbookStore {
	return &wordbookStore{store: store, logger: logger}
}

// Load reads the persisted wordbook. A missing slot or malformed JSON is
// treated as "no prior history": logged, never an error to the caller.
func (s *wordbookStore) Load(ctx context.Context) models.Wordbook {
	raw, ok, err := s.store.GetKV(ctx, wordbookKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read wordbook, starting empty")
		return models.Wordbook{}
	}
	if !ok || raw == "" {
		return models.Wordbook{}
	}

	var wb models.Wordbook
	if err := json.Unmarshal([]byte(raw), &wb); err != nil {
		s.logger.Warn().Err(err).Msg("Malformed wordbook data, starting empty")
		return models.Wordbook{}
	}
	return wb
}

// Persist serializes the full collection and overwrites the stored value.
func (s *wordbookStore) Persist(ctx context.Context, wb models.Wordbook) error {
	if wb == nil {
		wb = models.Wordbook{}
	}
	data, err := json.Marshal(wb)
	if err != nil {
		return fmt.Errorf("failed to serialize wordbook: %w", err)
	}
	if err := s.store.SetKV(ctx, wordbookKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist wordbook: %w", err)
	}
	s.logger.Debug().Int("entries", len(wb)).Msg("Wordbook persisted")
	return nil
}
