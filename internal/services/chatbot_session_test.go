package services

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// newTestStore returns a store whose clock the test controls.
func newTestStore(idle time.Duration, max int) (*SessionStore, *time.Time) {
	now := time.Now()
	s := NewSessionStore(idle, max)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestTouchCreatesSession(t *testing.T) {
	s, _ := newTestStore(SessionIdleTimeout, MaxSessions)

	id := s.Touch("")
	if id == "" {
		t.Fatal("expected a generated session id")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 session, got %d", s.Len())
	}

	// touching the same id again must not create a second session
	if got := s.Touch(id); got != id {
		t.Errorf("expected same id back, got %s", got)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 session, got %d", s.Len())
	}
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	s, now := newTestStore(600*time.Second, MaxSessions)

	old := s.Touch("")
	*now = now.Add(601 * time.Second)
	fresh := s.Touch("")

	removed := s.Sweep()
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if s.History(old) != nil {
		t.Error("idle session should be gone")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 session left, got %d", s.Len())
	}
	_ = fresh
}

func TestSweepKeepsSessionAtExactTimeout(t *testing.T) {
	s, now := newTestStore(600*time.Second, MaxSessions)

	s.Touch("")
	*now = now.Add(600 * time.Second)

	// lastActive == cutoff is not strictly before it
	if removed := s.Sweep(); removed != 0 {
		t.Errorf("session at exactly the timeout should survive, removed %d", removed)
	}
}

func TestSweptSessionRecreatedWithEmptyHistory(t *testing.T) {
	s, now := newTestStore(600*time.Second, MaxSessions)

	id := s.Touch("")
	s.Append(id, "user", "hello")
	s.Append(id, "bot", "hi there")

	*now = now.Add(601 * time.Second)
	s.Sweep()

	// same client id comes back: new session, no history
	got := s.Touch(id)
	if got != id {
		t.Errorf("expected id reuse, got %s", got)
	}
	if h := s.History(id); len(h) != 0 {
		t.Errorf("expected empty history after sweep, got %d turns", len(h))
	}
}

func TestAppendAndHistoryOrder(t *testing.T) {
	s, _ := newTestStore(SessionIdleTimeout, MaxSessions)

	id := s.Touch("")
	s.Append(id, "user", "first")
	s.Append(id, "bot", "second")
	s.Append(id, "user", "third")

	h := s.History(id)
	if len(h) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(h))
	}
	want := []ChatTurn{
		{Role: "user", Message: "first"},
		{Role: "bot", Message: "second"},
		{Role: "user", Message: "third"},
	}
	for i, turn := range want {
		if h[i] != turn {
			t.Errorf("turn %d: got %+v, want %+v", i, h[i], turn)
		}
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	s, _ := newTestStore(SessionIdleTimeout, MaxSessions)

	id := s.Touch("")
	s.Append(id, "user", "hello")

	h := s.History(id)
	h[0].Message = "mutated"

	if s.History(id)[0].Message != "hello" {
		t.Error("History must return a copy, not the backing slice")
	}
}

func TestMaxSessionsEvictsOldest(t *testing.T) {
	s, now := newTestStore(600*time.Second, 3)

	a := s.Touch("")
	*now = now.Add(time.Second)
	b := s.Touch("")
	*now = now.Add(time.Second)
	c := s.Touch("")
	*now = now.Add(time.Second)

	// cap reached: the fourth session pushes out the longest-idle one (a)
	d := s.Touch("")
	if s.Len() != 3 {
		t.Fatalf("expected 3 sessions at cap, got %d", s.Len())
	}
	if s.History(a) != nil {
		t.Error("oldest session should have been evicted")
	}
	for _, id := range []string{b, c, d} {
		if got := s.Touch(id); got != id {
			t.Errorf("session %s should still exist", id)
		}
	}
}

func TestSessionStoreConcurrentAccess(t *testing.T) {
	s := NewSessionStore(SessionIdleTimeout, MaxSessions)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := s.Touch("")
			s.Append(id, "user", fmt.Sprintf("msg-%d", i))
			s.Sweep()
			s.History(id)
		}(i)
	}
	wg.Wait()

	if s.Len() != n {
		t.Errorf("expected %d sessions, got %d", n, s.Len())
	}
}
