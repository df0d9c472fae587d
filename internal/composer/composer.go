// Package composer turns a session, the new user input, and an optional
// attachment into exactly one RequestPlan. It is pure: no I/O, no clock.
package composer

import (
	"regexp"
	"strings"

	"github.com/nbarrios/forgeline/internal/domain"
)

// AnalyzeImagePrompt substitutes for empty text when the user sends only an
// attachment: an attached image always means "look at this".
const AnalyzeImagePrompt = "Analyze this image."

// ImageRequestPattern recognizes phrases that ask for a picture to be made.
// The phrase set is policy, not contract; hosts may swap it.
var ImageRequestPattern = regexp.MustCompile(
	`(?i)\b(draw|sketch|paint)\b|\b(generate|create|make|produce|render)\b\s+(me\s+)?(an?\s+)?(image|picture|photo|illustration|art|artwork|logo|drawing|wallpaper)\b`)

// Compose selects the request variant for one send. First match wins:
//
//  1. mode is image and nothing attached     -> image synthesis
//  2. text asks for an image, nothing attached -> image synthesis
//  3. otherwise                               -> chat
//
// An attached image overrides both synthesis conditions: the user wants the
// model to look at something, and the synthesis call could not accept it.
func Compose(sess *domain.Session, text string, image domain.ImageRef, useGrounding bool) domain.RequestPlan {
	if image == "" {
		if sess.Mode == domain.ModeImage {
			return domain.ImageSynthesisPlan{Prompt: text, Mode: sess.Mode}
		}
		if ImageRequestPattern.MatchString(text) {
			return domain.ImageSynthesisPlan{Prompt: text, Mode: sess.Mode}
		}
	}
	return ForceChat(sess, text, image, useGrounding)
}

// ForceChat always builds a ChatPlan. The engine uses it directly for the
// single image-synthesis fallback, re-framing the same text as an analysis
// request.
func ForceChat(sess *domain.Session, text string, image domain.ImageRef, useGrounding bool) domain.ChatPlan {
	if strings.TrimSpace(text) == "" && image != "" {
		text = AnalyzeImagePrompt
	}
	return domain.ChatPlan{
		PriorTurns:   historyTurns(sess),
		NewText:      text,
		NewImage:     image,
		Mode:         sess.Mode,
		UseGrounding: useGrounding,
	}
}

// historyTurns maps every prior message onto one user/assistant turn, in
// conversation order. Text passes through unmodified; prior attachments are
// not replayed.
func historyTurns(sess *domain.Session) []domain.ChatTurn {
	if len(sess.Messages) == 0 {
		return nil
	}
	turns := make([]domain.ChatTurn, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		switch m.Role {
		case domain.RoleUser, domain.RoleAssistant:
			turns = append(turns, domain.ChatTurn{Role: m.Role, Text: m.Content})
		}
	}
	return turns
}
