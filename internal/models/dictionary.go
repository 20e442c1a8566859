// Package models defines the data structures for Kotoba
package models

import (
	"strconv"
	"time"
)

// DictionaryResult is a single dictionary lookup as returned by the AI
// collaborator. It is treated as an opaque immutable record: every field is
// produced by the model and never edited locally.
type DictionaryResult struct {
	Word         string `json:"word"`
	Reading      string `json:"reading"`
	Romaji       string `json:"romaji"`
	DefinitionCN string `json:"definition_cn"`
	DefinitionJP string `json:"definition_jp"`
	ExampleJP    string `json:"example_jp"`
	ExampleCN    string `json:"example_cn"`
}

// WordHistoryItem is a persisted wordbook entry, copied from a
// DictionaryResult at insertion time and never mutated afterwards.
type WordHistoryItem struct {
	ID           string `json:"id"`
	Word         string `json:"word"`
	Reading      string `json:"reading"`
	DefinitionCN string `json:"definition_cn"`
	DefinitionJP string `json:"definition_jp"`
	ExampleJP    string `json:"example_jp"`
	ExampleCN    string `json:"example_cn"`
	Timestamp    int64  `json:"timestamp"` // epoch milliseconds
}

// AddedAt returns the creation instant of the entry.
func (w *WordHistoryItem) AddedAt() time.Time {
	return time.UnixMilli(w.Timestamp)
}

// Wordbook is the ordered collection of saved words, newest first.
// At most one entry exists per distinct Word value; duplicate suppression
// keys on the surface form only, so a homograph's second sense is not
// stored separately.
type Wordbook []WordHistoryItem

// Contains reports whether the wordbook already holds an entry for word.
func (wb Wordbook) Contains(word string) bool {
	for i := range wb {
		if wb[i].Word == word {
			return true
		}
	}
	return false
}

// Append prepends a new entry built from result unless an entry with the
// same Word already exists. It returns the (possibly new) collection and
// whether an insertion happened. The receiver is never modified.
func (wb Wordbook) Append(result *DictionaryResult, now time.Time) (Wordbook, bool) {
	if result == nil || wb.Contains(result.Word) {
		return wb, false
	}

	ms := now.UnixMilli()
	item := WordHistoryItem{
		ID:           strconv.FormatInt(ms, 10),
		Word:         result.Word,
		Reading:      result.Reading,
		DefinitionCN: result.DefinitionCN,
		DefinitionJP: result.DefinitionJP,
		ExampleJP:    result.ExampleJP,
		ExampleCN:    result.ExampleCN,
		Timestamp:    ms,
	}

	next := make(Wordbook, 0, len(wb)+1)
	next = append(next, item)
	next = append(next, wb...)
	return next, true
}

// Recent returns up to limit of the newest entries.
func (wb Wordbook) Recent(limit int) Wordbook {
	if limit <= 0 || limit >= len(wb) {
		return wb
	}
	return wb[:limit]
}

// UserProfile holds the learner's local profile. Stored as JSON in the KV
// store; a parse failure is treated as absence.
type UserProfile struct {
	Nickname  string `json:"nickname"`
	Level     string `json:"level"` // e.g. "N5".."N1"
	UpdatedAt int64  `json:"updated_at"`
}

// StoryResult is a generated story over recent wordbook entries.
type StoryResult struct {
	Story     string   `json:"story"`
	Words     []string `json:"words"`
	CreatedAt int64    `json:"created_at"`
}
