package session

import (
	"sync"

	"github.com/bobmcallan/kotoba/internal/common"
)

// Store owns the session State. It is the only mutator: services open
// phases through Begin and resolve them through Dispatch; the presentation
// layer reads snapshots or subscribes read-only.
type Store struct {
	mu      sync.Mutex
	state   State
	subs    map[uint64]chan State
	nextSub uint64
	logger  *common.Logger
}

// NewStore creates a session store seeded with an initial state.
func NewStore(initial State, logger *common.Logger) *Store {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Store{
		state:  initial,
		subs:   make(map[uint64]chan State),
		logger: logger,
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin atomically guards and opens a phase. If the phase is already busy
// the trigger is a no-op and ok is false. Otherwise the phase's generation
// is advanced, the start event is applied with that generation, and the
// caller must later Dispatch a resolution event carrying the same gen.
func (s *Store) Begin(e StartEvent) (gen uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	phase := e.StartPhase()
	ps := s.state.PhaseStateOf(phase)
	if ps.Busy {
		s.logger.Debug().Str("phase", string(phase)).Msg("Phase busy, trigger ignored")
		return 0, false
	}

	gen = ps.Gen + 1
	s.apply(e.WithGen(gen))
	return gen, true
}

// Dispatch applies an event to the state and notifies subscribers.
func (s *Store) Dispatch(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(e)
}

// apply runs the reducer and fans out the new state. Caller holds mu.
// Sends never block: a subscriber that is not keeping up misses
// intermediate states, not the final one it will read next.
func (s *Store) apply(e Event) {
	s.state = Reduce(s.state, e)
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
		default:
		}
	}
}

// Subscribe registers a read-only state listener. The returned cancel
// function must be called to release the subscription.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 8)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, exists := s.subs[id]; exists {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
