package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/kotoba/internal/models"
)

func TestStoreBeginGuardsBusyPhase(t *testing.T) {
	store := NewStore(State{}, nil)

	gen, ok := store.Begin(LookupStarted{Query: "猫"})
	require.True(t, ok)
	assert.Equal(t, uint64(1), gen)

	// Second trigger while busy is refused.
	_, ok = store.Begin(LookupStarted{Query: "犬"})
	assert.False(t, ok)
	assert.Equal(t, "猫", store.State().Query)

	store.Dispatch(LookupSucceeded{Gen: gen, Result: &models.DictionaryResult{Word: "猫"}})

	gen2, ok := store.Begin(LookupStarted{Query: "犬"})
	require.True(t, ok)
	assert.Equal(t, uint64(2), gen2)
}

func TestStoreBeginIndependentPhases(t *testing.T) {
	store := NewStore(State{}, nil)

	_, ok := store.Begin(AudioStarted{Phase: PhaseWordAudio})
	require.True(t, ok)

	// A busy word slot does not block the sentence slot.
	_, ok = store.Begin(AudioStarted{Phase: PhaseSentenceAudio})
	assert.True(t, ok)
}

func TestStoreStaleGenerationIgnored(t *testing.T) {
	store := NewStore(State{}, nil)

	gen1, _ := store.Begin(LookupStarted{Query: "一"})
	store.Dispatch(LookupFailed{Gen: gen1, Message: "fail"})

	gen2, _ := store.Begin(LookupStarted{Query: "二"})
	require.Greater(t, gen2, gen1)

	// The generation 1 success lands late and must not complete generation 2.
	store.Dispatch(LookupSucceeded{Gen: gen1, Result: &models.DictionaryResult{Word: "一"}})

	state := store.State()
	assert.True(t, state.Lookup.Busy)
	assert.Nil(t, state.Result)

	store.Dispatch(LookupSucceeded{Gen: gen2, Result: &models.DictionaryResult{Word: "二"}})
	state = store.State()
	assert.False(t, state.Lookup.Busy)
	assert.Equal(t, "二", state.Result.Word)
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore(State{}, nil)
	states, cancel := store.Subscribe()
	defer cancel()

	store.Dispatch(WordbookReplaced{Wordbook: models.Wordbook{{Word: "猫"}}})

	select {
	case state := <-states:
		require.Len(t, state.Wordbook, 1)
		assert.Equal(t, "猫", state.Wordbook[0].Word)
	case <-time.After(time.Second):
		t.Fatal("no state received")
	}
}

func TestStoreSubscribeCancel(t *testing.T) {
	store := NewStore(State{}, nil)
	states, cancel := store.Subscribe()

	cancel()
	cancel() // idempotent

	_, open := <-states
	assert.False(t, open)

	// Dispatch after cancel must not panic on the closed channel.
	store.Dispatch(WordbookReplaced{})
}

func TestStoreSlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewStore(State{}, nil)
	_, cancel := store.Subscribe()
	defer cancel()

	// More events than the subscriber buffer holds; dispatch must not stall.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			store.Dispatch(WordbookReplaced{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch blocked on slow subscriber")
	}
}
