package conversation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/usecase/conversation"
)

type turn struct {
	prompt  string
	answer  string
	pending bool
}

func TestBeginAppendsInOrder(t *testing.T) {
	log := conversation.New[turn](conversation.Config{})

	for _, p := range []string{"one", "two", "three"} {
		_, err := log.Begin(&turn{prompt: p, pending: true})
		require.NoError(t, err)
	}

	snap := log.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "one", snap[0].prompt)
	assert.Equal(t, "three", snap[2].prompt)
	assert.True(t, log.InFlight())
}

func TestSingleFlightRejectsSecondExchange(t *testing.T) {
	log := conversation.New[turn](conversation.Config{SingleFlight: true})

	pending, err := log.Begin(&turn{prompt: "first", pending: true})
	require.NoError(t, err)

	_, err = log.Begin(&turn{prompt: "second", pending: true})
	assert.ErrorIs(t, err, entity.ErrExchangeInFlight)
	assert.Equal(t, 1, log.Len())

	pending.Succeed(func(tn *turn) {
		tn.answer = "done"
		tn.pending = false
	})
	assert.False(t, log.InFlight())

	_, err = log.Begin(&turn{prompt: "second", pending: true})
	assert.NoError(t, err)
}

func TestFailDropsTurnWhenConfigured(t *testing.T) {
	log := conversation.New[turn](conversation.Config{DropOnError: true})

	pending, err := log.Begin(&turn{prompt: "q", pending: true})
	require.NoError(t, err)
	require.Equal(t, 1, log.Len())

	pending.Fail()

	assert.Equal(t, 0, log.Len())
	assert.False(t, log.InFlight())
}

func TestFailKeepsTurnByDefault(t *testing.T) {
	log := conversation.New[turn](conversation.Config{})

	pending, err := log.Begin(&turn{prompt: "q", pending: true})
	require.NoError(t, err)

	pending.Fail()

	assert.Equal(t, 1, log.Len())
	assert.False(t, log.InFlight())
}

func TestOverlappingExchangesResolveTheirOwnTurns(t *testing.T) {
	log := conversation.New[turn](conversation.Config{DropOnError: true})

	first, err := log.Begin(&turn{prompt: "slow", pending: true})
	require.NoError(t, err)
	second, err := log.Begin(&turn{prompt: "fast", pending: true})
	require.NoError(t, err)

	// the later question answers first
	second.Succeed(func(tn *turn) {
		tn.answer = "fast answer"
		tn.pending = false
	})
	first.Fail()

	snap := log.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "fast", snap[0].prompt)
	assert.Equal(t, "fast answer", snap[0].answer)
}

func TestResolveIsIdempotent(t *testing.T) {
	log := conversation.New[turn](conversation.Config{SingleFlight: true})

	pending, err := log.Begin(&turn{prompt: "q", pending: true})
	require.NoError(t, err)

	pending.Succeed(func(tn *turn) { tn.pending = false })
	pending.Fail()
	pending.Succeed(func(tn *turn) { tn.answer = "late" })

	snap := log.Snapshot()
	require.Len(t, snap, 1)
	assert.Empty(t, snap[0].answer)
	assert.False(t, log.InFlight())
}

func TestMutateOutOfRange(t *testing.T) {
	log := conversation.New[turn](conversation.Config{})

	assert.False(t, log.Mutate(0, func(*turn) {}))
	assert.False(t, log.Mutate(-1, func(*turn) {}))
}
