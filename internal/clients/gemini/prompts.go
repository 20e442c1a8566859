package gemini

import (
	"fmt"
	"strings"
)

// ocrPrompt asks for a verbatim transcription of Japanese or Chinese text.
const ocrPrompt = `Extract the Japanese or Chinese text visible in this image.
Return only the extracted text itself, with no commentary, labels, or translation.
If there is no readable text, return an empty response.`

// buildLookupPrompt creates the dictionary lookup prompt for a query.
func buildLookupPrompt(query string) string {
	return fmt.Sprintf(`You are a Japanese-Chinese dictionary for Chinese-speaking learners of Japanese.
Look up the following word or phrase: %s

Respond with a JSON object containing:
- "word": the word in its standard Japanese written form
- "reading": the kana reading
- "romaji": the latin transliteration
- "definition_cn": a concise definition in Simplified Chinese
- "definition_jp": a concise definition in simple Japanese
- "example_jp": one natural example sentence in Japanese using the word
- "example_cn": the Chinese translation of that example sentence

If the input is Chinese, treat it as a meaning to find the matching Japanese word for.
If the input is not a real word or phrase in either language, leave every field empty.`, query)
}

// buildStoryPrompt creates the story prompt over recently saved words.
func buildStoryPrompt(words []string) string {
	return fmt.Sprintf(`Write a very short story (4-6 sentences) in simple Japanese suitable for a learner,
naturally using each of these words: %s

After the Japanese story, add a blank line and the Chinese translation of the story.
Do not add titles, vocabulary lists, or any other commentary.`, strings.Join(words, "、"))
}

// buildImagePrompt creates the illustration prompt for a looked-up word.
func buildImagePrompt(word, definition string) string {
	return fmt.Sprintf(`A clean, friendly flashcard illustration for the Japanese word "%s" (%s).
Simple flat style, single clear subject, soft warm colors, no text or letters in the image.`, word, definition)
}
