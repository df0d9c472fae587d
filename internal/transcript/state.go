// Package transcript owns the set of sessions and their message lists: pure
// data plus mutation operations, applied atomically by Store and persisted
// through a Slot after every mutation.
package transcript

import (
	"strings"

	"github.com/nbarrios/forgeline/internal/domain"
)

const (
	// DefaultTitle is the placeholder a session carries until its first real
	// user message derives a title.
	DefaultTitle = "New Chat"
	// UntitledTitle replaces an explicit rename to an empty title.
	UntitledTitle = "Untitled Session"

	titleLimit = 30
)

// State is the whole store: sessions most-recent-first plus the active
// session reference. Transforms below are pure value operations; Store is
// the only writer.
type State struct {
	Sessions []*domain.Session `json:"sessions"`
	ActiveID domain.SessionID  `json:"activeSessionId"`
}

// Valid reports whether the state satisfies the store invariants: non-empty,
// resolvable active id, unique session ids.
func (st State) Valid() bool {
	if len(st.Sessions) == 0 {
		return false
	}
	seen := make(map[domain.SessionID]struct{}, len(st.Sessions))
	activeOK := false
	for _, sess := range st.Sessions {
		if sess == nil || sess.ID == "" {
			return false
		}
		if _, dup := seen[sess.ID]; dup {
			return false
		}
		seen[sess.ID] = struct{}{}
		if sess.ID == st.ActiveID {
			activeOK = true
		}
	}
	return activeOK
}

func (st State) find(id domain.SessionID) *domain.Session {
	for _, sess := range st.Sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// withSession inserts sess at the front and makes it active.
func (st State) withSession(sess *domain.Session) State {
	sessions := make([]*domain.Session, 0, len(st.Sessions)+1)
	sessions = append(sessions, sess)
	sessions = append(sessions, st.Sessions...)
	return State{Sessions: sessions, ActiveID: sess.ID}
}

// withoutSession removes id, re-pointing the active reference at the first
// remaining session. The caller restores the never-empty invariant.
func (st State) withoutSession(id domain.SessionID) (State, bool) {
	if st.find(id) == nil {
		return st, false
	}
	sessions := make([]*domain.Session, 0, len(st.Sessions)-1)
	for _, sess := range st.Sessions {
		if sess.ID != id {
			sessions = append(sessions, sess)
		}
	}
	next := State{Sessions: sessions, ActiveID: st.ActiveID}
	if st.ActiveID == id && len(sessions) > 0 {
		next.ActiveID = sessions[0].ID
	}
	return next, true
}

// withMessages appends msgs to the named session in order. While the session
// still carries the default placeholder title, the first appended user
// message derives the title. No-op when id does not resolve.
func (st State) withMessages(id domain.SessionID, msgs ...*domain.Message) State {
	cur := st.find(id)
	if cur == nil || len(msgs) == 0 {
		return st
	}
	updated := *cur
	updated.Messages = append(append([]*domain.Message{}, cur.Messages...), msgs...)
	if updated.Title == DefaultTitle {
		for _, m := range msgs {
			if m.Role == domain.RoleUser && strings.TrimSpace(m.Content) != "" {
				updated.Title = deriveTitle(m.Content)
				break
			}
		}
	}
	return st.replaced(&updated)
}

func (st State) renamed(id domain.SessionID, title string) State {
	cur := st.find(id)
	if cur == nil {
		return st
	}
	if strings.TrimSpace(title) == "" {
		title = UntitledTitle
	}
	updated := *cur
	updated.Title = title
	return st.replaced(&updated)
}

func (st State) withMode(id domain.SessionID, mode domain.Mode) State {
	cur := st.find(id)
	if cur == nil || !domain.ValidMode(mode) {
		return st
	}
	updated := *cur
	updated.Mode = mode
	return st.replaced(&updated)
}

func (st State) withActive(id domain.SessionID) State {
	if st.find(id) == nil {
		return st
	}
	st.ActiveID = id
	return st
}

func (st State) replaced(sess *domain.Session) State {
	sessions := make([]*domain.Session, len(st.Sessions))
	for i, s := range st.Sessions {
		if s.ID == sess.ID {
			sessions[i] = sess
		} else {
			sessions[i] = s
		}
	}
	return State{Sessions: sessions, ActiveID: st.ActiveID}
}

// deriveTitle trims the text and keeps the first 30 runes, marking longer
// input with an ellipsis.
func deriveTitle(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return string(runes[:titleLimit]) + "..."
}
