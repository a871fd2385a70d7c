package advisor

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// ChatMessage is one persisted turn of a session.
type ChatMessage struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	TokenCount int       `json:"token_count"`
}

// ChatStore keeps per-session history.
//
// Each Append is atomic and messages of one session are totally ordered by
// (CreatedAt, ID) with CreatedAt never decreasing. A request that appends a
// question, calls a model and appends the answer is not atomic as a whole;
// concurrent requests on the same session may interleave their turns.
type ChatStore interface {
	Append(ctx context.Context, sessionID string, role Role, content string) (ChatMessage, error)
	// List returns the session oldest first; an unknown session is empty.
	List(ctx context.Context, sessionID string) ([]ChatMessage, error)
	Clear(ctx context.Context, sessionID string) error
}

// EstimateTokens approximates four characters per token, at least one.
func EstimateTokens(content string) int {
	return max(1, utf8.RuneCountInString(content)/4)
}

func validateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return NewError(ErrCodeInvalidInput, "session id is required")
	}
	return nil
}

// MemoryChatStore is a ChatStore backed by a map. It suits tests and
// single-process deployments that can lose history on restart.
type MemoryChatStore struct {
	mu       sync.RWMutex
	sessions map[string][]ChatMessage
	nextID   int64
	now      func() time.Time
}

// NewMemoryChatStore uses time.Now when now is nil.
func NewMemoryChatStore(now func() time.Time) *MemoryChatStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryChatStore{
		sessions: make(map[string][]ChatMessage),
		now:      now,
	}
}

func (s *MemoryChatStore) Append(_ context.Context, sessionID string, role Role, content string) (ChatMessage, error) {
	if err := validateSessionID(sessionID); err != nil {
		return ChatMessage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.sessions[sessionID]
	s.nextID++
	msg := ChatMessage{
		ID:         s.nextID,
		SessionID:  sessionID,
		Role:       role,
		Content:    content,
		CreatedAt:  s.stamp(history),
		TokenCount: EstimateTokens(content),
	}
	s.sessions[sessionID] = append(history, msg)
	return msg, nil
}

// stamp keeps CreatedAt non-decreasing even if the clock steps back.
func (s *MemoryChatStore) stamp(history []ChatMessage) time.Time {
	now := s.now().UTC()
	if n := len(history); n > 0 && now.Before(history[n-1].CreatedAt) {
		return history[n-1].CreatedAt
	}
	return now
}

func (s *MemoryChatStore) List(_ context.Context, sessionID string) ([]ChatMessage, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ChatMessage{}, s.sessions[sessionID]...), nil
}

func (s *MemoryChatStore) Clear(_ context.Context, sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// sessionLocks hands out one mutex per session id and forgets it once no
// goroutine holds or waits on it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(sessionID string) (unlock func()) {
	l.mu.Lock()
	sl, ok := l.locks[sessionID]
	if !ok {
		sl = &sessionLock{}
		l.locks[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}
