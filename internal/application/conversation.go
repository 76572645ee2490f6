package application

import (
	"sync"

	"github.com/bnema/codelynx/internal/domain"
)

// MaxConversationTurns caps the history carried into each prompt.
const MaxConversationTurns = 20

// ConversationStore holds the user/assistant turns of one session, oldest first.
// System turns are never stored; they are prepended by ToPromptMessages.
type ConversationStore struct {
	mu    sync.Mutex
	turns []domain.Turn
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{}
}

// Append adds one turn at the tail. System turns are ignored.
func (s *ConversationStore) Append(turn domain.Turn) {
	if turn.Role == domain.RoleSystem || !turn.Role.Valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, turn)
	s.trim()
}

// AppendExchange records a completed user/assistant pair and evicts the oldest pair while over the cap.
func (s *ConversationStore) AppendExchange(userMessage, assistantMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, domain.UserTurn(userMessage), domain.AssistantTurn(assistantMessage))
	s.trim()
}

// Replace swaps the stored history for a client-supplied one.
func (s *ConversationStore) Replace(turns []domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = s.turns[:0]
	for _, turn := range turns {
		if turn.Role == domain.RoleSystem || !turn.Role.Valid() {
			continue
		}
		s.turns = append(s.turns, turn)
	}
	s.trim()
}

// ToPromptMessages returns [system, ...history, user] without modifying the store.
func (s *ConversationStore) ToPromptMessages(systemPrompt, userMessage string) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]domain.Turn, 0, len(s.turns)+2)
	if systemPrompt != "" {
		messages = append(messages, domain.SystemTurn(systemPrompt))
	}
	messages = append(messages, s.turns...)
	return append(messages, domain.UserTurn(userMessage))
}

func (s *ConversationStore) Turns() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]domain.Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

func (s *ConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.turns)
}

func (s *ConversationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = nil
}

// trim must be called with s.mu held.
func (s *ConversationStore) trim() {
	for len(s.turns) > MaxConversationTurns {
		drop := 2
		if len(s.turns) < drop {
			drop = len(s.turns)
		}
		s.turns = append(s.turns[:0:0], s.turns[drop:]...)
	}
}
