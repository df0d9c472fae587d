// Package forgeline is an embeddable conversation engine for multi-turn
// sessions against a generative model: plain chat, web-grounded chat, and
// image synthesis, organized into named persisted sessions. The presentation
// layer renders the transcript and calls into the Engine; everything else
// lives here.
package forgeline

import (
	"context"
	"fmt"

	"github.com/nbarrios/forgeline/internal/adapters/gateway"
	"github.com/nbarrios/forgeline/internal/adapters/persist"
	"github.com/nbarrios/forgeline/internal/app/engine"
	"github.com/nbarrios/forgeline/internal/config"
	"github.com/nbarrios/forgeline/internal/domain"
	"github.com/nbarrios/forgeline/internal/observability"
	"github.com/nbarrios/forgeline/internal/transcript"
)

// Re-exported types so embedders work with one import.
type (
	Engine    = engine.Engine
	SendInput = engine.SendInput
	SendState = engine.SendState
	State     = transcript.State

	Session   = domain.Session
	Message   = domain.Message
	SourceRef = domain.SourceRef
	ImageRef  = domain.ImageRef
	Mode      = domain.Mode
	Role      = domain.Role
	SessionID = domain.SessionID
)

const (
	ModeLua   = domain.ModeLua
	ModeHTML  = domain.ModeHTML
	ModeImage = domain.ModeImage

	StateIdle = engine.StateIdle
)

var (
	ErrEmptySend      = engine.ErrEmptySend
	ErrBusy           = engine.ErrBusy
	ErrUnknownSession = engine.ErrUnknownSession
)

// Config is re-exported for hosts that want to tweak what the environment
// provided before opening the engine.
type Config = config.Config

// LoadConfig reads configuration from the environment (and an optional .env).
func LoadConfig() *Config {
	return config.Load()
}

// Open builds a ready engine from environment configuration.
func Open(ctx context.Context) (*Engine, error) {
	return OpenWith(ctx, config.Load())
}

// OpenWith wires the persistence slot, the transcript store, and the model
// gateway the config selects, and returns the engine the presentation layer
// drives.
func OpenWith(ctx context.Context, cfg *Config) (*Engine, error) {
	log := observability.Logger()

	var slot transcript.Slot
	switch cfg.StorageBackend {
	case "memory":
		log.Info("using in-memory persistence slot")
		slot = persist.NewMemorySlot()
	default:
		log.Info("using file persistence slot", "path", cfg.StorePath)
		slot = persist.NewFileSlot(cfg.StorePath)
	}

	store := transcript.NewStore(slot, cfg.DefaultMode)

	var gw domain.ModelGateway
	if cfg.UseMockGateway {
		log.Info("using mock model gateway")
		gw = gateway.NewMockGateway()
	} else {
		log.Info("using genai model gateway", "chat_model", cfg.ChatModel, "image_model", cfg.ImageModel)
		g, err := gateway.NewGenAIGateway(ctx, gateway.Config{
			APIKey:          cfg.APIKey,
			ChatModel:       cfg.ChatModel,
			ImageModel:      cfg.ImageModel,
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
			MaxOutputTokens: cfg.MaxOutputTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing model gateway: %w", err)
		}
		gw = g
	}

	return engine.New(store, gw), nil
}
