// Package session holds the application state for a running Kotoba session.
//
// All mutation flows through pure (State, Event) transitions applied by a
// single Store; readers take snapshots or subscribe. Each asynchronous phase
// carries its own busy flag and a generation counter so a stale resolution
// (a slow call finishing after a newer one started) is detected and dropped.
package session

import (
	"github.com/bobmcallan/kotoba/internal/interfaces"
	"github.com/bobmcallan/kotoba/internal/models"
)

// Phase identifies an independently tracked asynchronous sub-operation.
type Phase string

const (
	PhaseLookup        Phase = "lookup"
	PhaseImage         Phase = "image"
	PhaseWordAudio     Phase = "word_audio"
	PhaseSentenceAudio Phase = "sentence_audio"
	PhaseStory         Phase = "story"
	PhaseOCR           Phase = "ocr"
)

// AudioPhase maps a speech kind to its session phase.
func AudioPhase(kind interfaces.SpeechKind) Phase {
	if kind == interfaces.SpeechSentence {
		return PhaseSentenceAudio
	}
	return PhaseWordAudio
}

// PhaseState tracks one phase: whether a request is in flight and the
// generation of the most recent trigger.
type PhaseState struct {
	Busy bool   `json:"busy"`
	Gen  uint64 `json:"gen"`
}

// State is the complete session state value. It is treated as immutable:
// Reduce returns a new value and never modifies its input.
type State struct {
	Query    string                   `json:"query"`
	Result   *models.DictionaryResult `json:"result,omitempty"`
	Error    string                   `json:"error,omitempty"`
	Wordbook models.Wordbook          `json:"wordbook"`
	Profile  *models.UserProfile      `json:"profile,omitempty"`

	ImageKey    string `json:"image_key,omitempty"`
	Story       string `json:"story,omitempty"`
	StoryFailed bool   `json:"story_failed,omitempty"`

	Lookup        PhaseState `json:"lookup_phase"`
	Image         PhaseState `json:"image_phase"`
	WordAudio     PhaseState `json:"word_audio_phase"`
	SentenceAudio PhaseState `json:"sentence_audio_phase"`
	StoryPhase    PhaseState `json:"story_phase"`
	OCR           PhaseState `json:"ocr_phase"`
}

// PhaseStateOf returns the tracked state for a phase.
func (s State) PhaseStateOf(p Phase) PhaseState {
	switch p {
	case PhaseLookup:
		return s.Lookup
	case PhaseImage:
		return s.Image
	case PhaseWordAudio:
		return s.WordAudio
	case PhaseSentenceAudio:
		return s.SentenceAudio
	case PhaseStory:
		return s.StoryPhase
	case PhaseOCR:
		return s.OCR
	}
	return PhaseState{}
}

// setPhase returns a copy of s with the given phase replaced.
func (s State) setPhase(p Phase, ps PhaseState) State {
	switch p {
	case PhaseLookup:
		s.Lookup = ps
	case PhaseImage:
		s.Image = ps
	case PhaseWordAudio:
		s.WordAudio = ps
	case PhaseSentenceAudio:
		s.SentenceAudio = ps
	case PhaseStory:
		s.StoryPhase = ps
	case PhaseOCR:
		s.OCR = ps
	}
	return s
}
