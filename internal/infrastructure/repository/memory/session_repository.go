package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/draftline/draftline/internal/domain/draftsession"
)

// SessionRepository keeps draft sessions in process memory. Each session
// carries its own mutation lock, so writes to one session serialize while
// different sessions proceed in parallel. Callers always get copies; the
// stored record changes only through Mutate.
type SessionRepository struct {
	mu    sync.RWMutex
	slots map[string]*sessionSlot
}

type sessionSlot struct {
	mu      sync.Mutex
	session draftsession.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{slots: make(map[string]*sessionSlot)}
}

func (r *SessionRepository) Create(_ context.Context, session *draftsession.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session with an id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slots[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	r.slots[session.ID] = &sessionSlot{session: cloneSession(*session)}

	return nil
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (draftsession.Session, bool, error) {
	r.mu.RLock()
	slot, ok := r.slots[sessionID]
	r.mu.RUnlock()
	if !ok {
		return draftsession.Session{}, false, nil
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	return cloneSession(slot.session), true, nil
}

// Mutate runs fn against the stored session under its slot lock. When fn
// fails the stored record keeps its previous state.
func (r *SessionRepository) Mutate(_ context.Context, sessionID string, fn func(*draftsession.Session) error) (draftsession.Session, error) {
	r.mu.RLock()
	slot, ok := r.slots[sessionID]
	r.mu.RUnlock()
	if !ok {
		return draftsession.Session{}, fmt.Errorf("%w: %s", draftsession.ErrSessionNotFound, sessionID)
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	working := cloneSession(slot.session)
	if err := fn(&working); err != nil {
		return cloneSession(slot.session), err
	}
	slot.session = working

	return cloneSession(working), nil
}

func (r *SessionRepository) ListLiveSynced(_ context.Context) ([]string, error) {
	r.mu.RLock()
	slots := make(map[string]*sessionSlot, len(r.slots))
	for id, slot := range r.slots {
		slots[id] = slot
	}
	r.mu.RUnlock()

	out := make([]string, 0, len(slots))
	for id, slot := range slots {
		slot.mu.Lock()
		if slot.session.IsLiveSynced && slot.session.IsActive {
			out = append(out, id)
		}
		slot.mu.Unlock()
	}

	return out, nil
}

func cloneSession(s draftsession.Session) draftsession.Session {
	out := s
	out.Picks = append([]draftsession.Pick(nil), s.Picks...)
	out.SyncErrors = append([]string(nil), s.SyncErrors...)
	return out
}
