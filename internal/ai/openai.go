package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/shopspring/decimal"
)

// OpenAIPricing is the default gpt-4o-mini list price.
var OpenAIPricing = Pricing{
	InputPerMillion:  decimal.RequireFromString("0.15"),
	OutputPerMillion: decimal.RequireFromString("0.60"),
}

// OpenAIProvider calls the Chat Completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewOpenAIProvider creates a provider. An empty model uses gpt-4o-mini.
func NewOpenAIProvider(apiKey, model string, opts ...option.RequestOption) *OpenAIProvider {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := openai.NewClient(opts...)

	m := openai.ChatModel(model)
	if model == "" {
		m = openai.ChatModelGPT4oMini
	}
	return &OpenAIProvider{client: &client, model: m}
}

// Name identifies the provider in logs.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete sends a system and user message and returns the reply.
func (p *OpenAIProvider) Complete(ctx context.Context, system, user string) (*Completion, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	return &Completion{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
