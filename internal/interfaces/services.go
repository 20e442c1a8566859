// Package interfaces defines service contracts for Kotoba
package interfaces

import (
	"context"

	"github.com/bobmcallan/kotoba/internal/models"
)

// SpeechKind identifies which independent audio phase a playback request
// belongs to. The word and sentence phases are guarded separately.
type SpeechKind string

const (
	SpeechWord     SpeechKind = "word"
	SpeechSentence SpeechKind = "sentence"
)

// LookupService orchestrates the text, image, and OCR phases.
type LookupService interface {
	// Lookup runs the text phase for query. On success the result is
	// appended to the wordbook (duplicates suppressed) and the image phase
	// is started in the background. Returns the result and whether a new
	// wordbook entry was inserted.
	Lookup(ctx context.Context, query string) (*models.DictionaryResult, bool, error)

	// LookupFromImage extracts text from an image and feeds it into Lookup.
	// An empty extraction is a user-facing error.
	LookupFromImage(ctx context.Context, image []byte, mimeType string) (*models.DictionaryResult, bool, error)

	// RegenerateImage re-runs the image phase for the current result.
	// All retry in the system is manual; this is the retry affordance.
	RegenerateImage(ctx context.Context) error
}

// MediaService handles speech synthesis and playback rendering.
type MediaService interface {
	// Speak synthesizes text and returns a playable WAV rendering.
	// Re-triggering a kind while it is still loading is a no-op
	// (ErrBusy); distinct kinds may overlap freely.
	Speak(ctx context.Context, text string, kind SpeechKind) ([]byte, error)
}

// StoryService generates stories over the recent wordbook prefix.
type StoryService interface {
	Generate(ctx context.Context) (*models.StoryResult, error)
}
