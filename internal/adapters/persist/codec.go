// Package persist serializes the transcript store into a single durable
// slot. Absent or malformed content is a start-fresh condition, never an
// error; saves are best-effort.
package persist

import (
	"encoding/json"

	"github.com/nbarrios/forgeline/internal/domain"
	"github.com/nbarrios/forgeline/internal/transcript"
)

// Persisted shapes are kept separate from the domain types so the stored
// layout can survive domain refactors.

type storeDoc struct {
	Sessions []sessionDoc     `json:"sessions"`
	ActiveID domain.SessionID `json:"activeSessionId"`
}

type sessionDoc struct {
	ID        domain.SessionID `json:"id"`
	Title     string           `json:"title"`
	Mode      domain.Mode      `json:"mode"`
	Messages  []messageDoc     `json:"messages"`
	CreatedAt domain.Timestamp `json:"createdAt"`
}

type messageDoc struct {
	ID        domain.MessageID   `json:"id"`
	Role      domain.Role        `json:"role"`
	Content   string             `json:"content"`
	Timestamp domain.Timestamp   `json:"timestamp"`
	Image     domain.ImageRef    `json:"image,omitempty"`
	Grounding []domain.SourceRef `json:"groundingLinks,omitempty"`
}

func encodeState(st *transcript.State) ([]byte, error) {
	doc := storeDoc{
		Sessions: make([]sessionDoc, 0, len(st.Sessions)),
		ActiveID: st.ActiveID,
	}
	for _, sess := range st.Sessions {
		sd := sessionDoc{
			ID:        sess.ID,
			Title:     sess.Title,
			Mode:      sess.Mode,
			Messages:  make([]messageDoc, 0, len(sess.Messages)),
			CreatedAt: sess.CreatedAt,
		}
		for _, m := range sess.Messages {
			sd.Messages = append(sd.Messages, messageDoc{
				ID:        m.ID,
				Role:      m.Role,
				Content:   m.Content,
				Timestamp: m.Timestamp,
				Image:     m.Image,
				Grounding: m.Grounding,
			})
		}
		doc.Sessions = append(doc.Sessions, sd)
	}
	return json.Marshal(doc)
}

// decodeState returns nil for content that does not parse as a well-formed
// store.
func decodeState(data []byte) *transcript.State {
	var doc storeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	st := &transcript.State{
		Sessions: make([]*domain.Session, 0, len(doc.Sessions)),
		ActiveID: doc.ActiveID,
	}
	for _, sd := range doc.Sessions {
		sess := &domain.Session{
			ID:        sd.ID,
			Title:     sd.Title,
			Mode:      sd.Mode,
			Messages:  make([]*domain.Message, 0, len(sd.Messages)),
			CreatedAt: sd.CreatedAt,
		}
		for _, md := range sd.Messages {
			sess.Messages = append(sess.Messages, &domain.Message{
				ID:        md.ID,
				Role:      md.Role,
				Content:   md.Content,
				Timestamp: md.Timestamp,
				Image:     md.Image,
				Grounding: md.Grounding,
			})
		}
		st.Sessions = append(st.Sessions, sess)
	}
	if !st.Valid() {
		return nil
	}
	return st
}
