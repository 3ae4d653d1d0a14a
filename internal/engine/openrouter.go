package engine

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/replyhq/reply/pkg/errors"
)

// OpenRouterProvider is the OpenAI-style fallback provider: bearer-token
// chat completions requesting JSON-object output, content read from the
// first choice.
type OpenRouterProvider struct {
	client *openai.Client
	model  string
}

// NewOpenRouterProvider creates a fallback provider against an
// OpenAI-compatible endpoint.
func NewOpenRouterProvider(apiKey, baseURL, model string) (*OpenRouterProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL
	client := openai.NewClientWithConfig(clientConfig)

	return &OpenRouterProvider{
		client: client,
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *OpenRouterProvider) Name() string {
	return "openrouter"
}

// Generate sends an equivalent chat-completion request built from the same
// provider-agnostic request the primary consumed.
func (p *OpenRouterProvider) Generate(ctx context.Context, req *Request) ([]byte, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, apperrors.Unavailable("fallback provider request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.BadResponse("fallback provider returned no choices", nil)
	}
	return []byte(resp.Choices[0].Message.Content), nil
}
