package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// SourceKind distinguishes where a grounded citation came from.
type SourceKind string

const (
	SourceWeb SourceKind = "web"
	SourceMap SourceKind = "map"
)

// SourceRef is a citation attached to a grounded assistant reply. Produced
// only by the model gateway; purely informational, never mutated.
type SourceRef struct {
	URI   string     `json:"uri,omitempty"`
	Title string     `json:"title,omitempty"`
	Kind  SourceKind `json:"kind"`
}

// ImageRef is an inline-encoded image attachment in data-URI form
// ("data:image/png;base64,...."). It is the wire shape the presentation
// layer hands us and the shape we persist.
type ImageRef string

// Split separates the declared MIME type from the raw decoded payload.
func (r ImageRef) Split() (mimeType string, data []byte, err error) {
	s := string(r)
	head, payload, ok := strings.Cut(s, ",")
	if !ok {
		return "", nil, fmt.Errorf("image ref: missing data separator")
	}
	head = strings.TrimPrefix(head, "data:")
	mimeType, _, _ = strings.Cut(head, ";")
	if mimeType == "" {
		return "", nil, fmt.Errorf("image ref: missing mime type")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("image ref: decode payload: %w", err)
	}
	return mimeType, data, nil
}

// EncodeImageRef builds a data-URI ImageRef from raw bytes.
func EncodeImageRef(mimeType string, data []byte) ImageRef {
	return ImageRef("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// Message is one turn in a session's transcript. Immutable once created;
// owned exclusively by its parent session.
type Message struct {
	ID        MessageID   `json:"id"`
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	Timestamp Timestamp   `json:"timestamp"`
	Image     ImageRef    `json:"image,omitempty"`
	Grounding []SourceRef `json:"groundingLinks,omitempty"`
}

// Session is one persisted conversation thread.
type Session struct {
	ID        SessionID  `json:"id"`
	Title     string     `json:"title"`
	Mode      Mode       `json:"mode"`
	Messages  []*Message `json:"messages"`
	CreatedAt Timestamp  `json:"createdAt"`
}

// LastMessage returns the most recent message, or nil for an empty session.
func (s *Session) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}
