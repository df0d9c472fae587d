package gateway

import (
	"context"
	"fmt"

	"github.com/nbarrios/forgeline/internal/domain"
)

// MockGateway is the domain.ModelGateway the tests and the offline dev mode
// inject. Unset hooks fall back to canned replies.
type MockGateway struct {
	ChatFn       func(ctx context.Context, plan domain.ChatPlan) (*domain.ChatResult, error)
	SynthesizeFn func(ctx context.Context, plan domain.ImageSynthesisPlan) (*domain.ImageResult, error)
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Chat(ctx context.Context, plan domain.ChatPlan) (*domain.ChatResult, error) {
	if m.ChatFn != nil {
		return m.ChatFn(ctx, plan)
	}
	return &domain.ChatResult{
		Text: fmt.Sprintf("You said %q. Tell me more about what you are building.", plan.NewText),
	}, nil
}

func (m *MockGateway) SynthesizeImage(ctx context.Context, plan domain.ImageSynthesisPlan) (*domain.ImageResult, error) {
	if m.SynthesizeFn != nil {
		return m.SynthesizeFn(ctx, plan)
	}
	return &domain.ImageResult{
		Image:   domain.EncodeImageRef("image/png", []byte("mock-image")),
		Caption: plan.Prompt,
	}, nil
}
