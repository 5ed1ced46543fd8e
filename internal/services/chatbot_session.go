package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionIdleTimeout is how long a chatbot session may sit idle before a
	// sweep removes it.
	SessionIdleTimeout = 600 * time.Second
	// MaxSessions caps the session map. When a new session would exceed the
	// cap, the longest-idle session is evicted.
	MaxSessions = 1000
)

// ChatTurn is one utterance in a session's history.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "bot"
	Message string `json:"message"`
}

type chatSession struct {
	history    []ChatTurn
	lastActive time.Time
}

// SessionStore holds chatbot sessions in process memory. Restarting the
// process loses all sessions. Entries expire after SessionIdleTimeout of
// inactivity and the map never grows past MaxSessions.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*chatSession
	idleTimeout time.Duration
	maxSessions int
	now         func() time.Time
}

func NewSessionStore(idleTimeout time.Duration, maxSessions int) *SessionStore {
	return &SessionStore{
		sessions:    make(map[string]*chatSession),
		idleTimeout: idleTimeout,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// ChatSessions is the process-wide chatbot session store.
var ChatSessions = NewSessionStore(SessionIdleTimeout, MaxSessions)

// Sweep removes sessions idle longer than the store's timeout and returns how
// many were dropped. Called on every chatbot request before the session is
// touched.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *SessionStore) sweepLocked() int {
	cutoff := s.now().Add(-s.idleTimeout)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Touch looks up (or creates) the session for id and returns the id actually
// used. An empty id gets a fresh UUID. A session swept between a client's
// requests is silently recreated with empty history.
func (s *SessionStore) Touch(id string) string {
	if id == "" {
		id = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		if len(s.sessions) >= s.maxSessions {
			s.evictOldestLocked()
		}
		s.sessions[id] = &chatSession{}
	}
	s.sessions[id].lastActive = s.now()
	return id
}

// evictOldestLocked drops the longest-idle session to make room.
func (s *SessionStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastActive.Before(oldest) {
			oldestID = id
			oldest = sess.lastActive
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}

// Append records a turn on an existing session and refreshes its idle timer.
// Appending to an unknown session recreates it.
func (s *SessionStore) Append(id, role, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &chatSession{}
		s.sessions[id] = sess
	}
	sess.history = append(sess.history, ChatTurn{Role: role, Message: message})
	sess.lastActive = s.now()
}

// History returns a copy of the session's turns, or nil if the session does
// not exist.
func (s *SessionStore) History(id string) []ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	out := make([]ChatTurn, len(sess.history))
	copy(out, sess.history)
	return out
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
