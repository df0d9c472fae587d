package domain

import "context"

// ChatTurn is one prior turn handed to the model, already mapped onto the
// user/assistant taxonomy.
type ChatTurn struct {
	Role Role
	Text string
}

// RequestPlan is the normalized, mode-resolved description of exactly one
// outbound model call. It is a closed sum: ChatPlan or ImageSynthesisPlan.
type RequestPlan interface {
	isRequestPlan()
}

// ChatPlan describes a conversational completion request, optionally
// multimodal (attached image) and optionally web-grounded.
type ChatPlan struct {
	PriorTurns   []ChatTurn
	NewText      string
	NewImage     ImageRef
	Mode         Mode
	UseGrounding bool
}

// ImageSynthesisPlan describes an image generation request.
type ImageSynthesisPlan struct {
	Prompt string
	Mode   Mode
}

func (ChatPlan) isRequestPlan()           {}
func (ImageSynthesisPlan) isRequestPlan() {}

// ChatResult is a normalized chat completion.
type ChatResult struct {
	Text    string
	Sources []SourceRef
}

// ImageResult is a normalized image synthesis outcome.
type ImageResult struct {
	Image   ImageRef
	Caption string
}

// ModelGateway is the only component that performs network I/O. It is a
// stateless translation from a RequestPlan to a normalized result or a
// *GatewayFailure; it never retries internally.
type ModelGateway interface {
	Chat(ctx context.Context, plan ChatPlan) (*ChatResult, error)
	SynthesizeImage(ctx context.Context, plan ImageSynthesisPlan) (*ImageResult, error)
}
