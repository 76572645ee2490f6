package application

import (
	"sync"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/google/uuid"
)

// Session is one chat panel: its own history and at most one turn in flight.
type Session struct {
	id      string
	history *ConversationStore

	mu       sync.Mutex
	inFlight bool
	closed   bool
}

func NewSession() *Session {
	return &Session{
		id:      uuid.NewString(),
		history: NewConversationStore(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) History() *ConversationStore {
	return s.history
}

// Close discards the history. A turn already in flight finishes but its reply is dropped.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.history.Clear()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return domain.ErrSessionClosed
	case s.inFlight:
		return domain.ErrTurnInFlight
	}

	s.inFlight = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
