package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nbarrios/forgeline/internal/domain"
	"github.com/nbarrios/forgeline/internal/observability"
)

const (
	seedWelcome = "Welcome back. I can help you script in Lua, build out a web stack, or synthesize concept images. What are we making today?"
	newWelcome  = "New session ready. Pick up where you like: Lua scripting, web work, or image synthesis."
)

// Slot is the durable key the store is serialized into. Load returns
// (nil, nil) when no usable prior state exists; that is a start-fresh
// condition, never fatal. Save is best-effort.
type Slot interface {
	Load() (*State, error)
	Save(st *State) error
}

// Store applies state transforms atomically and persists after every
// mutation. Save failures are logged and swallowed so durability loss never
// interrupts the conversation flow.
type Store struct {
	mu    sync.Mutex
	state State
	slot  Slot

	now   func() time.Time
	newID func() string
}

// NewStore restores prior state from the slot, or seeds a fresh store with
// one welcome session. Load is called exactly once, here.
func NewStore(slot Slot, defaultMode domain.Mode) *Store {
	s := &Store{
		slot:  slot,
		now:   time.Now,
		newID: uuid.NewString,
	}
	prior, err := slot.Load()
	if err != nil {
		observability.Logger().Error("transcript: load failed, starting fresh", "error", err)
	}
	if prior != nil && prior.Valid() {
		s.state = *prior
		return s
	}
	sess := s.newSession(defaultMode, seedWelcome)
	s.state = State{}.withSession(sess)
	s.persistLocked()
	return s
}

// CreateSession inserts a new session at the front, seeded with a single
// assistant message, and makes it active.
func (s *Store) CreateSession(mode domain.Mode) domain.SessionID {
	if !domain.ValidMode(mode) {
		mode = domain.ModeLua
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.newSession(mode, newWelcome)
	s.state = s.state.withSession(sess)
	s.persistLocked()
	return sess.ID
}

// DeleteSession removes the session. Deleting the last remaining session
// atomically creates a fresh default one so the store is never empty.
func (s *Store) DeleteSession(id domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, removed := s.state.withoutSession(id)
	if !removed {
		return
	}
	if len(next.Sessions) == 0 {
		next = next.withSession(s.newSession(domain.ModeLua, newWelcome))
	}
	s.state = next
	s.persistLocked()
}

// AppendMessages appends msgs in order. No-op when id does not resolve;
// callers only pass known-valid ids.
func (s *Store) AppendMessages(id domain.SessionID, msgs ...*domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.withMessages(id, msgs...)
	s.persistLocked()
}

// RenameSession sets the title, substituting a fixed placeholder for
// empty or whitespace-only input.
func (s *Store) RenameSession(id domain.SessionID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.renamed(id, title)
	s.persistLocked()
}

// SetMode updates the session's mode only; messages are untouched.
func (s *Store) SetMode(id domain.SessionID, mode domain.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.withMode(id, mode)
	s.persistLocked()
}

// SetActive re-points the active session if id resolves, else no-op.
func (s *Store) SetActive(id domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.withActive(id)
	s.persistLocked()
}

// Session returns a copy of the named session, detached from the store.
func (s *Store) Session(id domain.SessionID) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.state.find(id)
	if sess == nil {
		return nil, false
	}
	return copySession(sess), true
}

// ActiveID returns the current active session reference.
func (s *Store) ActiveID() domain.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ActiveID
}

// Snapshot returns a detached copy of the whole state for rendering.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := make([]*domain.Session, len(s.state.Sessions))
	for i, sess := range s.state.Sessions {
		sessions[i] = copySession(sess)
	}
	return State{Sessions: sessions, ActiveID: s.state.ActiveID}
}

// NewMessage mints a message owned by this store's clock and id source.
func (s *Store) NewMessage(role domain.Role, content string) *domain.Message {
	return &domain.Message{
		ID:        domain.MessageID(s.newID()),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
	}
}

func (s *Store) newSession(mode domain.Mode, welcome string) *domain.Session {
	now := s.now().UnixMilli()
	return &domain.Session{
		ID:    domain.SessionID(s.newID()),
		Title: DefaultTitle,
		Mode:  mode,
		Messages: []*domain.Message{{
			ID:        domain.MessageID(s.newID()),
			Role:      domain.RoleAssistant,
			Content:   welcome,
			Timestamp: now,
		}},
		CreatedAt: now,
	}
}

func (s *Store) persistLocked() {
	st := s.state
	if err := s.slot.Save(&st); err != nil {
		observability.Logger().Error("transcript: save failed", "error", err)
	}
}

func copySession(sess *domain.Session) *domain.Session {
	dup := *sess
	dup.Messages = append([]*domain.Message{}, sess.Messages...)
	return &dup
}
