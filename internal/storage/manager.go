package storage

import (
	"fmt"

	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/interfaces"
)

// Manager implements interfaces.StorageManager over a single embedded store.
type Manager struct {
	store    *Store
	wordbook *wordbookStore
	profile  *profileStore
	logger   *common.Logger
}

// NewManager opens the embedded store and wires the storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Storage manager initialized")

	return &Manager{
		store:    store,
		wordbook: newWordbookStore(store, logger),
		profile:  newProfileStore(store, logger),
		logger:   logger,
	}, nil
}

func (m *Manager) KV() interfaces.KeyValueStore {
	return m.store
}

func (m *Manager) Wordbook() interfaces.WordbookStore {
	return m.wordbook
}

func (m *Manager) Blobs() interfaces.BlobStore {
	return m.store
}

func (m *Manager) Profile() interfaces.ProfileStore {
	return m.profile
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Compile-time interface check
var _ interfaces.StorageManager = (*Manager)(nil)
