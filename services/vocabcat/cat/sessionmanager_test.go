package cat

import (
	"testing"
	"time"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

func TestManagerPutAndWithSession(t *testing.T) {
	m := NewManager(time.Minute)
	s := newTestSession()
	m.Put(s)

	err := m.WithSession(s.ID, func(got *Session) error {
		if got.ID != s.ID {
			t.Fatalf("wrong session returned: %s", got.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithSession: %v", err)
	}
}

func TestManagerWithSessionNotFound(t *testing.T) {
	m := NewManager(time.Minute)
	err := m.WithSession("missing", func(*Session) error { return nil })
	if err == nil || vocaberr.KindOf(err) != vocaberr.NotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestManagerDrop(t *testing.T) {
	m := NewManager(time.Minute)
	s := newTestSession()
	m.Put(s)
	m.Drop(s.ID)
	err := m.WithSession(s.ID, func(*Session) error { return nil })
	if err == nil || vocaberr.KindOf(err) != vocaberr.NotFound {
		t.Fatal("expected session to be gone after Drop")
	}
}

func TestManagerSweepExpired(t *testing.T) {
	m := NewManager(10 * time.Millisecond)
	old := newTestSession()
	old.LastActivityAt = time.Now().Add(-time.Hour)
	m.Put(old)

	fresh := newTestSession()
	fresh.ID = "fresh-1"
	fresh.LastActivityAt = time.Now()
	m.Put(fresh)

	expired := m.SweepExpired(time.Now())
	if len(expired) != 1 || expired[0].ID != old.ID {
		t.Fatalf("expected exactly the old session to expire, got %d", len(expired))
	}
	if expired[0].TerminationReason != ReasonExpired {
		t.Fatalf("expired session should be terminated with reason=expired, got %v", expired[0].TerminationReason)
	}
	if m.Count() != 1 {
		t.Fatalf("manager should retain only the fresh session, count=%d", m.Count())
	}
}

func TestManagerCount(t *testing.T) {
	m := NewManager(time.Minute)
	if m.Count() != 0 {
		t.Fatal("new manager should be empty")
	}
	m.Put(newTestSession())
	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}
}
