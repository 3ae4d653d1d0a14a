package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	apperrors "github.com/replyhq/reply/pkg/errors"
)

// AnthropicProvider is an alternative fallback provider. It consumes the
// same provider-agnostic request as the others.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates an Anthropic fallback provider.
func NewAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Generate sends a completion request and returns the raw response text.
func (p *AnthropicProvider) Generate(ctx context.Context, req *Request) ([]byte, error) {
	system := req.System
	if system == "" {
		system = "You are a helpful assistant."
	}
	// No structured-output mode; the JSON contract rides in the system
	// prompt instead.
	system += "\nRespond with JSON only, no prose before or after."

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(p.model),
		MaxTokens: anthropic.F(int64(4096)),
		System: anthropic.F([]anthropic.TextBlockParam{{
			Type: anthropic.F(anthropic.TextBlockParamTypeText),
			Text: anthropic.F(system),
		}}),
		Messages: anthropic.F([]anthropic.MessageParam{{
			Role: anthropic.F(anthropic.MessageParamRoleUser),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.TextBlockParam{
					Type: anthropic.F(anthropic.TextBlockParamTypeText),
					Text: anthropic.F(req.Prompt),
				},
			}),
		}}),
	})
	if err != nil {
		return nil, apperrors.Unavailable("fallback provider request failed", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return nil, apperrors.BadResponse("fallback provider returned no text", nil)
	}
	return []byte(content.String()), nil
}
