package application

import (
	"fmt"
	"testing"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationStoreEvictsOldestPairAtCap(t *testing.T) {
	store := NewConversationStore()

	for i := 1; i <= 11; i++ {
		store.AppendExchange(fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	turns := store.Turns()
	require.Len(t, turns, MaxConversationTurns)
	assert.Equal(t, domain.UserTurn("question 2"), turns[0])
	assert.Equal(t, domain.AssistantTurn("answer 11"), turns[len(turns)-1])
}

func TestConversationStoreAppendTwentyOneTurns(t *testing.T) {
	store := NewConversationStore()

	for i := 1; i <= 21; i++ {
		role := domain.RoleUser
		if i%2 == 0 {
			role = domain.RoleAssistant
		}
		store.Append(domain.Turn{Role: role, Content: fmt.Sprintf("turn %d", i)})
		assert.LessOrEqual(t, store.Len(), MaxConversationTurns)
	}

	turns := store.Turns()
	require.Len(t, turns, 19)
	for _, turn := range turns {
		assert.NotEqual(t, "turn 1", turn.Content)
	}
	assert.Equal(t, "turn 3", turns[0].Content)
}

func TestConversationStoreIgnoresSystemTurns(t *testing.T) {
	store := NewConversationStore()

	store.Append(domain.SystemTurn("be nice"))
	store.Append(domain.Turn{Role: "tool", Content: "x"})

	assert.Equal(t, 0, store.Len())
}

func TestConversationStoreToPromptMessagesRoundTrip(t *testing.T) {
	store := NewConversationStore()
	store.AppendExchange("hi", "hello")
	before := store.Turns()

	messages := store.ToPromptMessages("system prompt", "next")

	require.Len(t, messages, 4)
	assert.Equal(t, domain.SystemTurn("system prompt"), messages[0])
	assert.Equal(t, before, messages[1:3])
	assert.Equal(t, domain.UserTurn("next"), messages[3])
	assert.Equal(t, before, store.Turns())
}

func TestConversationStoreReplaceDropsSystemAndCaps(t *testing.T) {
	store := NewConversationStore()
	store.AppendExchange("old", "old answer")

	incoming := []domain.Turn{domain.SystemTurn("ignored")}
	for i := 0; i < 12; i++ {
		incoming = append(incoming, domain.UserTurn(fmt.Sprintf("q%d", i)), domain.AssistantTurn(fmt.Sprintf("a%d", i)))
	}
	store.Replace(incoming)

	turns := store.Turns()
	require.Len(t, turns, MaxConversationTurns)
	assert.Equal(t, domain.UserTurn("q2"), turns[0])
	for _, turn := range turns {
		assert.NotEqual(t, domain.RoleSystem, turn.Role)
	}
}

func TestConversationStoreClearIsIdempotent(t *testing.T) {
	store := NewConversationStore()
	store.AppendExchange("q", "a")

	store.Clear()
	store.Clear()

	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.ToPromptMessages("", "x")[:0])
}

func TestConversationStoreTurnsReturnsCopy(t *testing.T) {
	store := NewConversationStore()
	store.AppendExchange("q", "a")

	turns := store.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "q", store.Turns()[0].Content)
}

func TestSessionInFlightGuard(t *testing.T) {
	session := NewSession()

	require.NoError(t, session.begin())
	assert.ErrorIs(t, session.begin(), domain.ErrTurnInFlight)

	session.end()
	require.NoError(t, session.begin())
	session.end()

	session.Close()
	assert.ErrorIs(t, session.begin(), domain.ErrSessionClosed)
	assert.True(t, session.Closed())
}

func TestSessionIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, NewSession().ID(), NewSession().ID())
}
