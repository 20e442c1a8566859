// Package media handles speech synthesis and playback rendering: base64
// PCM from the speech collaborator in, playable WAV out.
package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/interfaces"
	"github.com/bobmcallan/kotoba/internal/models"
	"github.com/bobmcallan/kotoba/internal/session"
)

// Compile-time interface check
var _ interfaces.MediaService = (*Service)(nil)

// Service implements MediaService
type Service struct {
	gemini  interfaces.GeminiClient
	session *session.Store
	logger  *common.Logger
}

// NewService creates a new media service
func NewService(gemini interfaces.GeminiClient, sess *session.Store, logger *common.Logger) *Service {
	return &Service{
		gemini:  gemini,
		session: sess,
		logger:  logger,
	}
}

// Speak synthesizes text and returns a playable WAV rendering of the raw
// PCM payload. Re-triggering a kind while it is loading is a no-op; the
// word and sentence phases never block each other, and overlapping playback
// on the client is allowed and unmanaged.
func (s *Service) Speak(ctx context.Context, text string, kind interfaces.SpeechKind) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no text to speak")
	}

	phase := session.AudioPhase(kind)
	gen, ok := s.session.Begin(session.AudioStarted{Phase: phase})
	if !ok {
		return nil, interfaces.ErrBusy
	}
	// Audio phases cycle loading -> idle with no terminal error state.
	defer s.session.Dispatch(session.AudioFinished{Phase: phase, Gen: gen})

	payload, err := s.gemini.GenerateSpeech(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Speech generation failed")
		return nil, fmt.Errorf("speech generation failed: %w", err)
	}

	raw, err := models.DecodeBase64(payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Speech payload is not valid base64")
		return nil, err
	}

	clip, err := models.DecodePCM16(raw, models.SpeechSampleRate)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Speech payload is not valid PCM")
		return nil, err
	}

	wav, err := clip.WAV()
	if err != nil {
		return nil, fmt.Errorf("failed to render speech: %w", err)
	}

	s.logger.Debug().
		Str("kind", string(kind)).
		Float64("seconds", clip.Duration()).
		Msg("Speech rendered")

	return wav, nil
}
