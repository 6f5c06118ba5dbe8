package anthropic

import (
	"context"
	"fmt"

	"github.com/bkyoung/doc-reviewer/internal/usecase/review"
)

const providerName = "anthropic"

// Client abstracts the Anthropic HTTP client behaviour we need.
type Client interface {
	Call(ctx context.Context, prompt string, options CallOptions) (*APIResponse, error)
}

// Provider implements the review Provider port. The reply text is returned
// raw; decoding the reviewer's JSON is the orchestrator's responsibility.
type Provider struct {
	model        string
	systemPrompt string
	client       Client
}

// NewProvider constructs a Provider for the supplied model.
func NewProvider(model string, client Client) *Provider {
	return &Provider{
		model:  model,
		client: client,
	}
}

// SetSystemPrompt attaches an optional system prompt sent with every
// review request.
func (p *Provider) SetSystemPrompt(prompt string) {
	p.systemPrompt = prompt
}

// Review sends the prompt to Anthropic and returns the raw reply.
func (p *Provider) Review(ctx context.Context, req review.ProviderRequest) (review.ProviderReply, error) {
	if p.client == nil {
		return review.ProviderReply{}, fmt.Errorf("anthropic client missing")
	}

	resp, err := p.client.Call(ctx, req.Prompt, CallOptions{
		MaxTokens: req.MaxTokens,
		System:    p.systemPrompt,
	})
	if err != nil {
		return review.ProviderReply{}, fmt.Errorf("anthropic: %w", err)
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}

	return review.ProviderReply{
		Text:      resp.Text,
		Model:     model,
		TokensIn:  resp.TokensIn,
		TokensOut: resp.TokensOut,
	}, nil
}
