// Package gateway translates RequestPlans into calls against the Gemini API
// and normalizes the results. It holds no state beyond the client handle and
// never retries; retry policy belongs to the caller.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/nbarrios/forgeline/internal/domain"
)

const (
	opChat  = "chat"
	opImage = "synthesize-image"
)

// Config carries the remote-call knobs. Zero values fall back to defaults.
type Config struct {
	APIKey          string
	ChatModel       string
	ImageModel      string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

func (c Config) withDefaults() Config {
	if c.ChatModel == "" {
		c.ChatModel = "gemini-3-pro-preview"
	}
	if c.ImageModel == "" {
		c.ImageModel = "imagen-3.0-generate-002"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.8
	}
	if c.TopP == 0 {
		c.TopP = 0.95
	}
	if c.MaxOutputTokens == 0 {
		c.MaxOutputTokens = 8192
	}
	return c
}

// GenAIGateway implements domain.ModelGateway over the Gemini API.
type GenAIGateway struct {
	client *genai.Client
	cfg    Config
}

// NewGenAIGateway builds the gateway. A missing credential is not fatal
// here: it surfaces as an unauthorized failure on the first call, so the
// host application still gets a transcript-visible notice instead of a
// startup crash.
func NewGenAIGateway(ctx context.Context, cfg Config) (*GenAIGateway, error) {
	cfg = cfg.withDefaults()
	g := &GenAIGateway{cfg: cfg}
	if cfg.APIKey == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	g.client = client
	return g, nil
}

// Chat issues one conversational completion, optionally multimodal and
// optionally grounded with Google Search.
func (g *GenAIGateway) Chat(ctx context.Context, plan domain.ChatPlan) (*domain.ChatResult, error) {
	if g.client == nil {
		return nil, domain.NewGatewayFailure(domain.FailureUnauthorized, opChat, errors.New("no API key configured"))
	}

	var contents []*genai.Content
	for _, turn := range plan.PriorTurns {
		var role genai.Role = genai.RoleUser
		if turn.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}

	parts := []*genai.Part{genai.NewPartFromText(plan.NewText)}
	if plan.NewImage != "" {
		mimeType, data, err := plan.NewImage.Split()
		if err != nil {
			return nil, domain.NewGatewayFailure(domain.FailureMalformed, opChat, err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, mimeType))
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

	temp := g.cfg.Temperature
	topP := g.cfg.TopP
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt(plan.Mode), genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   g.cfg.MaxOutputTokens,
	}
	if plan.UseGrounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	res, err := g.client.Models.GenerateContent(ctx, g.cfg.ChatModel, contents, cfg)
	if err != nil {
		return nil, classify(err, opChat)
	}
	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return nil, domain.NewGatewayFailure(domain.FailureBlocked, opChat,
			fmt.Errorf("prompt blocked: %s", res.PromptFeedback.BlockReason))
	}
	if len(res.Candidates) == 0 {
		return nil, domain.NewGatewayFailure(domain.FailureMalformed, opChat, errors.New("no candidates returned"))
	}
	if res.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, domain.NewGatewayFailure(domain.FailureBlocked, opChat, errors.New("candidate stopped for safety"))
	}

	return &domain.ChatResult{
		Text:    res.Text(),
		Sources: sourceRefs(res.Candidates[0]),
	}, nil
}

// SynthesizeImage issues one image generation call.
func (g *GenAIGateway) SynthesizeImage(ctx context.Context, plan domain.ImageSynthesisPlan) (*domain.ImageResult, error) {
	if g.client == nil {
		return nil, domain.NewGatewayFailure(domain.FailureUnauthorized, opImage, errors.New("no API key configured"))
	}

	res, err := g.client.Models.GenerateImages(ctx, g.cfg.ImageModel, plan.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, classify(err, opImage)
	}
	if len(res.GeneratedImages) == 0 {
		return nil, domain.NewGatewayFailure(domain.FailureMalformed, opImage, errors.New("no images returned"))
	}

	img := res.GeneratedImages[0]
	if img.RAIFilteredReason != "" {
		return nil, domain.NewGatewayFailure(domain.FailureBlocked, opImage,
			fmt.Errorf("filtered: %s", img.RAIFilteredReason))
	}
	if img.Image == nil || len(img.Image.ImageBytes) == 0 {
		return nil, domain.NewGatewayFailure(domain.FailureMalformed, opImage, errors.New("empty image payload"))
	}

	mimeType := img.Image.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &domain.ImageResult{
		Image:   domain.EncodeImageRef(mimeType, img.Image.ImageBytes),
		Caption: img.EnhancedPrompt,
	}, nil
}

// classify maps a remote error onto the failure taxonomy.
func classify(err error, op string) *domain.GatewayFailure {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return domain.NewGatewayFailure(domain.FailureUnauthorized, op, err)
		case apiErr.Code == 400 || apiErr.Code == 404:
			return domain.NewGatewayFailure(domain.FailureMalformed, op, err)
		default:
			// 429s and 5xx read as transient remote trouble.
			return domain.NewGatewayFailure(domain.FailureNetwork, op, err)
		}
	}
	return domain.NewGatewayFailure(domain.FailureNetwork, op, err)
}

// sourceRefs extracts grounded citations from a candidate.
func sourceRefs(cand *genai.Candidate) []domain.SourceRef {
	if cand.GroundingMetadata == nil {
		return nil
	}
	var refs []domain.SourceRef
	for _, chunk := range cand.GroundingMetadata.GroundingChunks {
		switch {
		case chunk.Web != nil:
			refs = append(refs, domain.SourceRef{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
				Kind:  domain.SourceWeb,
			})
		case chunk.Maps != nil:
			refs = append(refs, domain.SourceRef{
				URI:   chunk.Maps.URI,
				Title: chunk.Maps.Title,
				Kind:  domain.SourceMap,
			})
		}
	}
	return refs
}
