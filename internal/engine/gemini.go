package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/replyhq/reply/pkg/errors"
)

// GeminiClient is the primary generative provider, speaking the
// generateContent REST surface directly.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	ttsModel   string
	httpClient *http.Client
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *GeminiClient) { g.httpClient = c }
}

// WithTTSModel overrides the speech model.
func WithTTSModel(model string) GeminiOption {
	return func(g *GeminiClient) { g.ttsModel = model }
}

// NewGeminiClient creates the primary provider client.
func NewGeminiClient(apiKey, baseURL, model string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	g := &GeminiClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		ttsModel:   model,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Name returns the provider name.
func (g *GeminiClient) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType   string              `json:"responseMimeType,omitempty"`
	ResponseSchema     *Schema             `json:"responseSchema,omitempty"`
	ResponseModalities []string            `json:"responseModalities,omitempty"`
	SpeechConfig       *geminiSpeechConfig `json:"speechConfig,omitempty"`
}

type geminiSpeechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends a structured-JSON generation request and returns the raw
// response text, which must parse as JSON matching req.Schema.
func (g *GeminiClient) Generate(ctx context.Context, req *Request) ([]byte, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	resp, err := g.call(ctx, g.model, body)
	if err != nil {
		return nil, err
	}

	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return []byte(part.Text), nil
			}
		}
	}
	return nil, apperrors.BadResponse("no text candidate in response", nil)
}

// Synthesize requests spoken audio for text and returns base64-encoded
// signed 16-bit little-endian PCM. The voice follows the requested vibe.
func (g *GeminiClient) Synthesize(ctx context.Context, text, vibe string) (string, error) {
	config := &geminiGenerationConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig:       &geminiSpeechConfig{},
	}
	config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = VoiceForVibe(vibe)

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{
			Text: fmt.Sprintf("Say naturally in a %s vibe: %s", vibe, text),
		}}}},
		GenerationConfig: config,
	}

	resp, err := g.call(ctx, g.ttsModel, body)
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return part.InlineData.Data, nil
			}
		}
	}
	return "", apperrors.BadResponse("no audio generated", nil)
}

// VoiceForVibe maps a vibe label to a prebuilt voice name.
func VoiceForVibe(vibe string) string {
	lower := strings.ToLower(vibe)
	if strings.Contains(lower, "flirty") || strings.Contains(lower, "romantic") {
		return "Kore"
	}
	return "Zephyr"
}

func (g *GeminiClient) call(ctx context.Context, model string, body geminiRequest) (*geminiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.Unavailable("generative API request failed", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperrors.Unavailable("generative API read failed", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, apperrors.Unavailable(
			fmt.Sprintf("generative API returned %s", httpResp.Status), nil)
	}

	var resp geminiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, apperrors.BadResponse("malformed generative API response", err)
	}
	return &resp, nil
}
