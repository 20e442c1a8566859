// Package story generates short stories over the recent wordbook prefix.
package story

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/interfaces"
	"github.com/bobmcallan/kotoba/internal/models"
	"github.com/bobmcallan/kotoba/internal/session"
)

// Compile-time interface check
var _ interfaces.StoryService = (*Service)(nil)

// MaxStoryWords bounds the prefix of recent wordbook entries a story is
// built from.
const MaxStoryWords = 10

// Service implements StoryService
type Service struct {
	gemini  interfaces.GeminiClient
	session *session.Store
	logger  *common.Logger
}

// NewService creates a new story service
func NewService(gemini interfaces.GeminiClient, sess *session.Store, logger *common.Logger) *Service {
	return &Service{
		gemini:  gemini,
		session: sess,
		logger:  logger,
	}
}

// Generate writes a story over at most MaxStoryWords of the newest wordbook
// entries. Concurrent re-trigger is a no-op; failure leaves the story phase
// failed and is logged only.
func (s *Service) Generate(ctx context.Context) (*models.StoryResult, error) {
	gen, ok := s.session.Begin(session.StoryStarted{})
	if !ok {
		return nil, interfaces.ErrBusy
	}

	recent := s.session.State().Wordbook.Recent(MaxStoryWords)
	if len(recent) == 0 {
		s.session.Dispatch(session.StoryFailed{Gen: gen})
		return nil, fmt.Errorf("wordbook is empty")
	}

	words := lo.Map(recent, func(item models.WordHistoryItem, _ int) string {
		return item.Word
	})

	text, err := s.gemini.GenerateStory(ctx, words)
	if err != nil {
		s.logger.Warn().Err(err).Int("words", len(words)).Msg("Story generation failed")
		s.session.Dispatch(session.StoryFailed{Gen: gen})
		return nil, fmt.Errorf("story generation failed: %w", err)
	}

	s.session.Dispatch(session.StorySucceeded{Gen: gen, Story: text})
	s.logger.Info().Int("words", len(words)).Msg("Story generated")

	return &models.StoryResult{
		Story:     text,
		Words:     words,
		CreatedAt: time.Now().UnixMilli(),
	}, nil
}
