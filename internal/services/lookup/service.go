// Package lookup orchestrates the dictionary lookup flow: the text phase,
// the wordbook append, the dependent image phase, and OCR-fed lookups.
package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/interfaces"
	"github.com/bobmcallan/kotoba/internal/models"
	"github.com/bobmcallan/kotoba/internal/session"
)

// Compile-time interface check
var _ interfaces.LookupService = (*Service)(nil)

// User-facing messages. Text and OCR failures share the generic tone: the
// orchestrator does not distinguish network failure from service rejection.
const (
	lookupFailedMessage = "No result found. Please check the word and try again."
	ocrFailedMessage    = "No text could be read from the image. Please try another photo."
)

// imageCategory is the blob category for generated word illustrations.
const imageCategory = "images"

// Service implements LookupService
type Service struct {
	storage interfaces.StorageManager
	gemini  interfaces.GeminiClient
	session *session.Store
	logger  *common.Logger
}

// NewService creates a new lookup service
func NewService(storage interfaces.StorageManager, gemini interfaces.GeminiClient, sess *session.Store, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		gemini:  gemini,
		session: sess,
		logger:  logger,
	}
}

// Lookup runs the text phase for query. A lookup success appends to the
// wordbook (duplicates suppressed), persists it, and starts the image phase
// in a detached goroutine. A concurrent lookup is a no-op.
func (s *Service) Lookup(ctx context.Context, query string) (*models.DictionaryResult, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false, fmt.Errorf("empty query")
	}

	gen, ok := s.session.Begin(session.LookupStarted{Query: query})
	if !ok {
		return nil, false, interfaces.ErrBusy
	}

	result, err := s.gemini.Lookup(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("Lookup failed")
		s.session.Dispatch(session.LookupFailed{Gen: gen, Message: lookupFailedMessage})
		return nil, false, fmt.Errorf("lookup failed for '%s': %w", query, err)
	}

	inserted := s.appendToWordbook(ctx, result)
	s.session.Dispatch(session.LookupSucceeded{Gen: gen, Result: result})
	s.logger.Info().Str("word", result.Word).Bool("inserted", inserted).Msg("Lookup succeeded")

	// The image phase is fire-and-forget: it outlives the request and has
	// no cancellation channel, so it runs on a fresh context.
	go s.runImagePhase(context.Background(), result)

	return result, inserted, nil
}

// appendToWordbook appends result to the session wordbook and persists the
// new collection. Returns whether a new entry was inserted.
func (s *Service) appendToWordbook(ctx context.Context, result *models.DictionaryResult) bool {
	wb := s.session.State().Wordbook
	next, inserted := wb.Append(result, time.Now())
	if !inserted {
		return false
	}

	if err := s.storage.Wordbook().Persist(ctx, next); err != nil {
		// The in-session collection still advances; the store is a passive
		// mirror and the next successful persist overwrites it wholesale.
		s.logger.Error().Err(err).Str("word", result.Word).Msg("Failed to persist wordbook")
	}
	s.session.Dispatch(session.WordbookReplaced{Wordbook: next})
	return true
}

// runImagePhase generates and stores the illustration for result. Failures
// here never set the global error; the image slot is simply left empty.
func (s *Service) runImagePhase(ctx context.Context, result *models.DictionaryResult) {
	gen, ok := s.session.Begin(session.ImageStarted{})
	if !ok {
		return
	}

	data, contentType, err := s.gemini.GenerateImage(ctx, result.Word, result.DefinitionCN)
	if err != nil {
		s.logger.Warn().Err(err).Str("word", result.Word).Msg("Image generation failed")
		s.session.Dispatch(session.ImageFailed{Gen: gen})
		return
	}

	if err := s.storage.Blobs().SaveBlob(ctx, imageCategory, result.Word, data, contentType); err != nil {
		s.logger.Warn().Err(err).Str("word", result.Word).Msg("Failed to store generated image")
		s.session.Dispatch(session.ImageFailed{Gen: gen})
		return
	}

	s.session.Dispatch(session.ImageSucceeded{Gen: gen, Key: result.Word})
	s.logger.Debug().Str("word", result.Word).Msg("Image generated")
}

// RegenerateImage re-runs the image phase for the current result. This is
// the manual retry affordance; there are no automatic retries anywhere.
func (s *Service) RegenerateImage(ctx context.Context) error {
	state := s.session.State()
	if state.Result == nil {
		return fmt.Errorf("no current result to illustrate")
	}
	if state.Image.Busy {
		return interfaces.ErrBusy
	}
	s.runImagePhase(ctx, state.Result)
	return nil
}

// LookupFromImage extracts text from an image and feeds it into Lookup.
// An empty extraction or an extraction failure is a user-facing error.
func (s *Service) LookupFromImage(ctx context.Context, image []byte, mimeType string) (*models.DictionaryResult, bool, error) {
	gen, ok := s.session.Begin(session.OCRStarted{})
	if !ok {
		return nil, false, interfaces.ErrBusy
	}

	text, err := s.gemini.ExtractText(ctx, image, mimeType)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Text extraction failed")
		s.session.Dispatch(session.OCRFinished{Gen: gen, Message: ocrFailedMessage})
		return nil, false, fmt.Errorf("text extraction failed: %w", err)
	}
	if text == "" {
		s.session.Dispatch(session.OCRFinished{Gen: gen, Message: ocrFailedMessage})
		return nil, false, fmt.Errorf("no text found in image")
	}

	s.session.Dispatch(session.OCRFinished{Gen: gen})
	return s.Lookup(ctx, text)
}
