// Package engine orchestrates one send cycle: optimistic user append, plan
// composition, the gateway call with its single fallback, and the guaranteed
// settle back to Idle.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nbarrios/forgeline/internal/composer"
	"github.com/nbarrios/forgeline/internal/domain"
	"github.com/nbarrios/forgeline/internal/observability"
	"github.com/nbarrios/forgeline/internal/transcript"
)

// SendState tracks one in-flight send for a session. Only one send may be in
// flight per session; the presentation layer disables new sends while the
// active session is not Idle.
type SendState string

const (
	StateIdle          SendState = "idle"
	StateComposing     SendState = "composing"
	StateAwaitingModel SendState = "awaiting-model"
	StateSettling      SendState = "settling"
)

var (
	// ErrEmptySend rejects a send with neither text nor attachment.
	ErrEmptySend = errors.New("nothing to send")
	// ErrBusy rejects a send while one is already in flight for the session.
	ErrBusy = errors.New("send already in flight for session")
	// ErrUnknownSession rejects a send for an id that does not resolve.
	ErrUnknownSession = errors.New("session not found")
)

const (
	// FailureNotice is the fixed assistant-authored reply when the gateway
	// fails terminally; the user always gets a response in the transcript.
	FailureNotice = "I couldn't reach the model service just now. Your message is saved; please try again in a moment."
	// emptyReplyNotice substitutes for an empty model reply.
	emptyReplyNotice = "Connection error."
	// imageCaptionFallback captions a synthesized image when the model
	// returns none.
	imageCaptionFallback = "Here is the image you asked for."
)

// Engine drives sends against one transcript store and one model gateway.
type Engine struct {
	store   *transcript.Store
	gateway domain.ModelGateway

	mu        sync.Mutex
	inflight  map[domain.SessionID]SendState
	grounding bool
}

func New(store *transcript.Store, gw domain.ModelGateway) *Engine {
	return &Engine{
		store:    store,
		gateway:  gw,
		inflight: make(map[domain.SessionID]SendState),
	}
}

// SetGrounding flips the user's web-grounding preference; it takes effect on
// the next send.
func (e *Engine) SetGrounding(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grounding = enabled
}

// Grounding returns the current grounding preference.
func (e *Engine) Grounding() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grounding
}

// State reports the send state for a session.
func (e *Engine) State(id domain.SessionID) SendState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.inflight[id]; ok {
		return st
	}
	return StateIdle
}

type SendInput struct {
	SessionID domain.SessionID
	Text      string
	Image     domain.ImageRef
}

type SendOutput struct {
	UserMessage      *domain.Message
	AssistantMessage *domain.Message
}

// Send runs one full send cycle. Only validation errors are returned;
// gateway failures settle into the transcript as an assistant notice and the
// engine always returns to Idle.
func (e *Engine) Send(ctx context.Context, in SendInput) (*SendOutput, error) {
	if strings.TrimSpace(in.Text) == "" && in.Image == "" {
		return nil, ErrEmptySend
	}

	// Pre-append snapshot: compose sees the history as it was before this
	// turn, with the new input as the final turn.
	sess, ok := e.store.Session(in.SessionID)
	if !ok {
		return nil, ErrUnknownSession
	}

	e.mu.Lock()
	if st, busy := e.inflight[in.SessionID]; busy && st != StateIdle {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.inflight[in.SessionID] = StateComposing
	useGrounding := e.grounding
	e.mu.Unlock()

	defer e.setState(in.SessionID, StateIdle)

	ctx = observability.WithSendID(ctx, uuid.NewString())
	log := observability.LoggerFromContext(ctx).With(
		"session_id", sess.ID,
		"mode", sess.Mode,
	)
	log.Info("send started", "grounding", useGrounding, "has_image", in.Image != "")

	userMsg := e.store.NewMessage(domain.RoleUser, in.Text)
	userMsg.Image = in.Image
	e.store.AppendMessages(in.SessionID, userMsg)

	plan := composer.Compose(sess, in.Text, in.Image, useGrounding)
	e.setState(in.SessionID, StateAwaitingModel)

	assistant := e.dispatch(ctx, log, sess, plan, in, useGrounding)

	e.setState(in.SessionID, StateSettling)
	e.store.AppendMessages(in.SessionID, assistant)
	log.Info("send settled")

	return &SendOutput{UserMessage: userMsg, AssistantMessage: assistant}, nil
}

// dispatch issues the gateway call the plan selects and classifies the
// outcome into exactly one assistant message. An image-synthesis failure
// falls back once to plain chat; everything after that is terminal for this
// send.
func (e *Engine) dispatch(ctx context.Context, log *slog.Logger, sess *domain.Session, plan domain.RequestPlan, in SendInput, useGrounding bool) *domain.Message {
	switch p := plan.(type) {
	case domain.ImageSynthesisPlan:
		res, err := e.gateway.SynthesizeImage(ctx, p)
		if err == nil {
			return e.imageMessage(res)
		}
		log.Warn("image synthesis failed, falling back to chat", "error", err)
		chatRes, chatErr := e.gateway.Chat(ctx, composer.ForceChat(sess, in.Text, in.Image, useGrounding))
		if chatErr != nil {
			log.Error("fallback chat failed", "error", chatErr)
			return e.store.NewMessage(domain.RoleAssistant, FailureNotice)
		}
		return e.chatMessage(chatRes)

	case domain.ChatPlan:
		res, err := e.gateway.Chat(ctx, p)
		if err != nil {
			log.Error("chat failed", "error", err)
			return e.store.NewMessage(domain.RoleAssistant, FailureNotice)
		}
		return e.chatMessage(res)

	default:
		log.Error("unknown request plan")
		return e.store.NewMessage(domain.RoleAssistant, FailureNotice)
	}
}

func (e *Engine) chatMessage(res *domain.ChatResult) *domain.Message {
	text := res.Text
	if text == "" {
		text = emptyReplyNotice
	}
	msg := e.store.NewMessage(domain.RoleAssistant, text)
	msg.Grounding = res.Sources
	return msg
}

func (e *Engine) imageMessage(res *domain.ImageResult) *domain.Message {
	caption := res.Caption
	if caption == "" {
		caption = imageCaptionFallback
	}
	msg := e.store.NewMessage(domain.RoleAssistant, caption)
	msg.Image = res.Image
	return msg
}

func (e *Engine) setState(id domain.SessionID, st SendState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st == StateIdle {
		delete(e.inflight, id)
		return
	}
	e.inflight[id] = st
}

// Store operations are fronted here so the presentation layer has a single
// surface.

func (e *Engine) NewSession(mode domain.Mode) domain.SessionID {
	return e.store.CreateSession(mode)
}

func (e *Engine) DeleteSession(id domain.SessionID) {
	e.store.DeleteSession(id)
}

func (e *Engine) RenameSession(id domain.SessionID, title string) {
	e.store.RenameSession(id, title)
}

func (e *Engine) SetMode(id domain.SessionID, mode domain.Mode) {
	e.store.SetMode(id, mode)
}

func (e *Engine) SetActive(id domain.SessionID) {
	e.store.SetActive(id)
}

func (e *Engine) Snapshot() transcript.State {
	return e.store.Snapshot()
}

func (e *Engine) ActiveID() domain.SessionID {
	return e.store.ActiveID()
}
