// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/kotoba/internal/common"
	"github.com/bobmcallan/kotoba/internal/interfaces"
	"github.com/bobmcallan/kotoba/internal/models"
)

const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultImageModel  = "imagen-3.0-generate-002"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultSpeechVoice = "Kore"
)

// Client implements the GeminiClient interface
type Client struct {
	client      *genai.Client
	model       string
	imageModel  string
	speechModel string
	speechVoice string
	logger      *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the text model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithImageModel sets the image generation model
func WithImageModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.imageModel = model
		}
	}
}

// WithSpeechModel sets the speech synthesis model
func WithSpeechModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.speechModel = model
		}
	}
}

// WithSpeechVoice sets the prebuilt voice for speech synthesis
func WithSpeechVoice(voice string) ClientOption {
	return func(c *Client) {
		if voice != "" {
			c.speechVoice = voice
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:      genaiClient,
		model:       DefaultModel,
		imageModel:  DefaultImageModel,
		speechModel: DefaultSpeechModel,
		speechVoice: DefaultSpeechVoice,
		logger:      common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// dictionarySchema constrains the lookup response to the DictionaryResult shape.
var dictionarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"word":          {Type: genai.TypeString},
		"reading":       {Type: genai.TypeString},
		"romaji":        {Type: genai.TypeString},
		"definition_cn": {Type: genai.TypeString},
		"definition_jp": {Type: genai.TypeString},
		"example_jp":    {Type: genai.TypeString},
		"example_cn":    {Type: genai.TypeString},
	},
	Required: []string{"word", "reading", "definition_cn"},
}

// Lookup fetches a structured dictionary entry for a word or phrase.
func (c *Client) Lookup(ctx context.Context, query string) (*models.DictionaryResult, error) {
	c.logger.Debug().Str("model", c.model).Str("query", query).Msg("Looking up word")

	contents := genai.Text(buildLookupPrompt(query))
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   dictionarySchema,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to look up '%s': %w", query, err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return nil, err
	}

	return ParseDictionaryResult(text)
}

// ParseDictionaryResult parses a model response into a DictionaryResult.
// Code fences around the JSON are tolerated; a payload without a word is
// rejected as unusable.
func ParseDictionaryResult(text string) (*models.DictionaryResult, error) {
	cleaned := stripCodeFences(text)

	var result models.DictionaryResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary response: %w", err)
	}
	if strings.TrimSpace(result.Word) == "" {
		return nil, fmt.Errorf("dictionary response contains no word")
	}
	return &result, nil
}

// ExtractText performs OCR over raw image bytes.
func (c *Client) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("bytes", len(image)).Msg("Extracting text from image")

	if len(image) == 0 {
		return "", fmt.Errorf("empty image payload")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(ocrPrompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from image: %w", err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateStory writes a short story weaving in the given words.
func (c *Client) GenerateStory(ctx context.Context, words []string) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("words", len(words)).Msg("Generating story")

	if len(words) == 0 {
		return "", fmt.Errorf("no words to build a story from")
	}

	contents := genai.Text(buildStoryPrompt(words))
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate story: %w", err)
	}

	return extractTextFromResponse(result)
}

// GenerateImage generates an illustrative image for a word.
func (c *Client) GenerateImage(ctx context.Context, word, definition string) ([]byte, string, error) {
	c.logger.Debug().Str("model", c.imageModel).Str("word", word).Msg("Generating image")

	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, buildImagePrompt(word, definition), &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate image for '%s': %w", word, err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, "", fmt.Errorf("no image generated for '%s'", word)
	}

	img := resp.GeneratedImages[0].Image
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return img.ImageBytes, mimeType, nil
}

// GenerateSpeech synthesizes text to speech. The returned payload is base64
// raw PCM (s16le mono, models.SpeechSampleRate) as documented for the TTS
// models — there is no container around the samples.
func (c *Client) GenerateSpeech(ctx context.Context, text string) (string, error) {
	c.logger.Debug().Str("model", c.speechModel).Str("voice", c.speechVoice).Msg("Generating speech")

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text to synthesize")
	}

	contents := genai.Text(text)
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.speechVoice},
			},
		},
	}

	result, err := c.client.Models.GenerateContent(ctx, c.speechModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate speech: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("no audio generated")
	}
	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
		}
	}

	return "", fmt.Errorf("no audio generated")
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// stripCodeFences removes a surrounding markdown code fence, if present.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
