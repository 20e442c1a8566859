package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/models"
)

const profileKey = "profile"

// profileStore persists the learner profile through the string KV area.
type profileStore struct {
	store  *Store
	logger *common.Logger
}

func newProfileStore(store *Store, logger *common.Logger) *profileStore {
	return &profileStore{store: store, logger: logger}
}

// GetProfile returns the stored profile. Absent or malformed data reports
// absence; a parse failure is logged only.
func (s *profileStore) GetProfile(ctx context.Context) (*models.UserProfile, bool) {
	raw, ok, err := s.store.GetKV(ctx, profileKey)
	if err != nil || !ok || raw == "" {
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to read profile")
		}
		return nil, false
	}

	var profile models.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.Warn().Err(err).Msg("Malformed profile data, treating as absent")
		return nil, false
	}
	return &profile, true
}

// SaveProfile overwrites the stored profile.
func (s *profileStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}
	if err := s.store.SetKV(ctx, profileKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}
	return nil
}
