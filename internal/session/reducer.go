package session

// Reduce applies one event to a state value and returns the next state.
// It is pure: no I/O, no clocks, no mutation of the input. Resolution
// events carrying a generation other than the phase's current one are
// stale and leave the state untouched.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {

	case LookupStarted:
		// Entering the text phase clears the previous result and error.
		s.Query = ev.Query
		s.Result = nil
		s.Error = ""
		s.ImageKey = ""
		return s.setPhase(PhaseLookup, PhaseState{Busy: true, Gen: ev.Gen})

	case LookupSucceeded:
		if !current(s, PhaseLookup, ev.Gen) {
			return s
		}
		s.Result = ev.Result
		return s.setPhase(PhaseLookup, PhaseState{Busy: false, Gen: ev.Gen})

	case LookupFailed:
		if !current(s, PhaseLookup, ev.Gen) {
			return s
		}
		s.Error = ev.Message
		return s.setPhase(PhaseLookup, PhaseState{Busy: false, Gen: ev.Gen})

	case ImageStarted:
		// Causal dependency: the image phase only ever starts after a
		// lookup success has been observed.
		if s.Result == nil {
			return s
		}
		s.ImageKey = ""
		return s.setPhase(PhaseImage, PhaseState{Busy: true, Gen: ev.Gen})

	case ImageSucceeded:
		if !current(s, PhaseImage, ev.Gen) {
			return s
		}
		s.ImageKey = ev.Key
		return s.setPhase(PhaseImage, PhaseState{Busy: false, Gen: ev.Gen})

	case ImageFailed:
		// Leaves the image slot empty; no global error.
		if !current(s, PhaseImage, ev.Gen) {
			return s
		}
		return s.setPhase(PhaseImage, PhaseState{Busy: false, Gen: ev.Gen})

	case AudioStarted:
		return s.setPhase(ev.Phase, PhaseState{Busy: true, Gen: ev.Gen})

	case AudioFinished:
		if !current(s, ev.Phase, ev.Gen) {
			return s
		}
		return s.setPhase(ev.Phase, PhaseState{Busy: false, Gen: ev.Gen})

	case StoryStarted:
		s.Story = ""
		s.StoryFailed = false
		return s.setPhase(PhaseStory, PhaseState{Busy: true, Gen: ev.Gen})

	case StorySucceeded:
		if !current(s, PhaseStory, ev.Gen) {
			return s
		}
		s.Story = ev.Story
		return s.setPhase(PhaseStory, PhaseState{Busy: false, Gen: ev.Gen})

	case StoryFailed:
		if !current(s, PhaseStory, ev.Gen) {
			return s
		}
		s.StoryFailed = true
		return s.setPhase(PhaseStory, PhaseState{Busy: false, Gen: ev.Gen})

	case OCRStarted:
		s.Error = ""
		return s.setPhase(PhaseOCR, PhaseState{Busy: true, Gen: ev.Gen})

	case OCRFinished:
		if !current(s, PhaseOCR, ev.Gen) {
			return s
		}
		if ev.Message != "" {
			s.Error = ev.Message
		}
		return s.setPhase(PhaseOCR, PhaseState{Busy: false, Gen: ev.Gen})

	case WordbookReplaced:
		s.Wordbook = ev.Wordbook
		return s

	case ProfileUpdated:
		s.Profile = ev.Profile
		return s
	}

	return s
}

// current reports whether gen is the live generation of a busy phase.
func current(s State, p Phase, gen uint64) bool {
	ps := s.PhaseStateOf(p)
	return ps.Busy && ps.Gen == gen
}
