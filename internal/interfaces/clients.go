// Package interfaces defines service contracts for Kotoba
package interfaces

import (
	"context"

	"github.com/bobmcallan/kotoba/internal/models"
)

// GeminiClient provides access to the Gemini API, the single external AI
// collaborator: definitions, OCR, stories, images, and speech.
type GeminiClient interface {
	// Lookup fetches a structured dictionary entry for a word or phrase.
	// An empty or unparseable model response is an error.
	Lookup(ctx context.Context, query string) (*models.DictionaryResult, error)

	// ExtractText performs OCR over raw image bytes. The result may be empty.
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)

	// GenerateStory writes a short story weaving in the given words.
	GenerateStory(ctx context.Context, words []string) (string, error)

	// GenerateImage generates an illustrative image for a word.
	// Returns image bytes and their MIME type.
	GenerateImage(ctx context.Context, word, definition string) ([]byte, string, error)

	// GenerateSpeech synthesizes text to speech. The payload is base64
	// signed 16-bit little-endian mono PCM at models.SpeechSampleRate —
	// raw samples, not a self-describing container.
	GenerateSpeech(ctx context.Context, text string) (string, error)
}
