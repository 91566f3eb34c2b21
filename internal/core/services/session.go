package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/coursechat-cli/internal/core/domain"
)

// DefaultMaxHistory is the number of past exchanges kept per session.
const DefaultMaxHistory = 2

// SessionStore keeps a bounded FIFO window of exchanges per session.
// Sessions live for the process lifetime; there is no persistence.
type SessionStore struct {
	mu         sync.RWMutex
	maxHistory int
	sessions   map[string][]domain.Exchange
}

// NewSessionStore creates a store keeping the most recent maxHistory
// exchanges per session. Non-positive values fall back to the default.
func NewSessionStore(maxHistory int) *SessionStore {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &SessionStore{
		maxHistory: maxHistory,
		sessions:   make(map[string][]domain.Exchange),
	}
}

// Create starts a new session and returns its opaque identifier.
func (s *SessionStore) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = nil
	s.mu.Unlock()
	return id
}

// Append records one completed exchange. When the bound is exceeded the
// oldest exchange is evicted first. Appending to an unknown session
// creates it.
func (s *SessionStore) Append(sessionID, query, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exchanges := append(s.sessions[sessionID], domain.Exchange{Query: query, Answer: answer})
	if len(exchanges) > s.maxHistory {
		exchanges = exchanges[len(exchanges)-s.maxHistory:]
	}
	s.sessions[sessionID] = exchanges
}

// History renders a session as alternating "User:" / "Assistant:" lines
// in chronological order. An unknown or empty session renders as the
// empty string, not an error.
func (s *SessionStore) History(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exchanges := s.sessions[sessionID]
	if len(exchanges) == 0 {
		return ""
	}

	lines := make([]string, 0, len(exchanges)*2)
	for _, e := range exchanges {
		lines = append(lines,
			fmt.Sprintf("User: %s", e.Query),
			fmt.Sprintf("Assistant: %s", e.Answer),
		)
	}
	return strings.Join(lines, "\n")
}
