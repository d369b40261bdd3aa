package ai

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/shopspring/decimal"
)

// AnthropicPricing is the default Haiku list price.
var AnthropicPricing = Pricing{
	InputPerMillion:  decimal.RequireFromString("1.00"),
	OutputPerMillion: decimal.RequireFromString("5.00"),
}

const defaultAnthropicModel = "claude-haiku-4-5"

// AnthropicProvider calls the Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider creates a provider. An empty model uses Haiku.
func NewAnthropicProvider(apiKey, model string, opts ...option.RequestOption) *AnthropicProvider {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := anthropic.NewClient(opts...)

	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicProvider{client: &client, model: anthropic.Model(model)}
}

// Name identifies the provider in logs.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete sends a system prompt and one user message and returns the reply.
func (p *AnthropicProvider) Complete(ctx context.Context, system, user string) (*Completion, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("no response from anthropic")
	}

	return &Completion{
		Text:         resp.Content[0].Text,
		Model:        string(resp.Model),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}
