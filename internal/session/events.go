package session

import (
	"github.com/bobmcallan/kotoba/internal/models"
)

// Event is a state transition input. Events are plain values; the reducer
// is the only interpreter.
type Event interface {
	isEvent()
}

// StartEvent is an event that opens a phase. The Store assigns the
// generation during its busy check; services never pick generations.
type StartEvent interface {
	Event
	StartPhase() Phase
	WithGen(gen uint64) StartEvent
	EventGen() uint64
}

// --- Lookup phase ---

// LookupStarted opens the text phase, clearing the previous result and error.
type LookupStarted struct {
	Query string
	Gen   uint64
}

// LookupSucceeded resolves the text phase with a dictionary result.
type LookupSucceeded struct {
	Gen    uint64
	Result *models.DictionaryResult
}

// LookupFailed resolves the text phase with a user-facing message.
type LookupFailed struct {
	Gen     uint64
	Message string
}

// --- Image phase ---

// ImageStarted opens the image phase. Only valid once a result is present.
type ImageStarted struct {
	Gen uint64
}

// ImageSucceeded resolves the image phase with the blob key of the image.
type ImageSucceeded struct {
	Gen uint64
	Key string
}

// ImageFailed resolves the image phase with no image. Never sets the global
// error; the failure is logged by the caller only.
type ImageFailed struct {
	Gen uint64
}

// --- Audio phases ---

// AudioStarted opens one of the two audio phases.
type AudioStarted struct {
	Phase Phase
	Gen   uint64
}

// AudioFinished returns an audio phase to idle, success or not.
type AudioFinished struct {
	Phase Phase
	Gen   uint64
}

// --- Story phase ---

// StoryStarted opens the story phase.
type StoryStarted struct {
	Gen uint64
}

// StorySucceeded resolves the story phase with the generated text.
type StorySucceeded struct {
	Gen   uint64
	Story string
}

// StoryFailed resolves the story phase without text.
type StoryFailed struct {
	Gen uint64
}

// --- OCR phase ---

// OCRStarted opens the image-analysis phase.
type OCRStarted struct {
	Gen uint64
}

// OCRFinished returns the OCR phase to idle. A non-empty Message becomes
// the user-facing error.
type OCRFinished struct {
	Gen     uint64
	Message string
}

// --- Session data ---

// WordbookReplaced swaps in a new wordbook collection wholesale.
type WordbookReplaced struct {
	Wordbook models.Wordbook
}

// ProfileUpdated replaces the learner profile.
type ProfileUpdated struct {
	Profile *models.UserProfile
}

func (LookupStarted) isEvent()    {}
func (LookupSucceeded) isEvent()  {}
func (LookupFailed) isEvent()     {}
func (ImageStarted) isEvent()     {}
func (ImageSucceeded) isEvent()   {}
func (ImageFailed) isEvent()      {}
func (AudioStarted) isEvent()     {}
func (AudioFinished) isEvent()    {}
func (StoryStarted) isEvent()     {}
func (StorySucceeded) isEvent()   {}
func (StoryFailed) isEvent()      {}
func (OCRStarted) isEvent()       {}
func (OCRFinished) isEvent()      {}
func (WordbookReplaced) isEvent() {}
func (ProfileUpdated) isEvent()   {}

func (e LookupStarted) StartPhase() Phase { return PhaseLookup }
func (e LookupStarted) EventGen() uint64  { return e.Gen }
func (e LookupStarted) WithGen(gen uint64) StartEvent {
	e.Gen = gen
	return e
}

func (e ImageStarted) StartPhase() Phase { return PhaseImage }
func (e ImageStarted) EventGen() uint64  { return e.Gen }
func (e ImageStarted) WithGen(gen uint64) StartEvent {
	e.Gen = gen
	return e
}

func (e AudioStarted) StartPhase() Phase { return e.Phase }
func (e AudioStarted) EventGen() uint64  { return e.Gen }
func (e AudioStarted) WithGen(gen uint64) StartEvent {
	e.Gen = gen
	return e
}

func (e StoryStarted) StartPhase() Phase { return PhaseStory }
func (e StoryStarted) EventGen() uint64  { return e.Gen }
func (e StoryStarted) WithGen(gen uint64) StartEvent {
	e.Gen = gen
	return e
}

func (e OCRStarted) StartPhase() Phase { return PhaseOCR }
func (e OCRStarted) EventGen() uint64  { return e.Gen }
func (e OCRStarted) WithGen(gen uint64) StartEvent {
	e.Gen = gen
	return e
}
