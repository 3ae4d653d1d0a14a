// Package engine builds prompts from persona settings and thread state,
// invokes the generative providers and normalizes the structured results
// into the application's suggestion and review shapes.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/replyhq/reply/internal/model"
	apperrors "github.com/replyhq/reply/pkg/errors"
	"github.com/replyhq/reply/pkg/logger"
	"github.com/replyhq/reply/pkg/metrics"
)

// Provider is one generative backend. All providers consume the same
// built request.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *Request) ([]byte, error)
}

// Synthesizer produces base64-encoded PCM speech for a suggestion.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, vibe string) (string, error)
}

// Engine is the conversation/suggestion client. The fallback provider is
// optional; when present, a failed primary call is retried once against it
// with the identical request. Review and refinement calls have no fallback
// path.
type Engine struct {
	primary  Provider
	fallback Provider
	logger   *logger.Logger
}

// New creates an engine. fallback may be nil.
func New(primary, fallback Provider, log *logger.Logger) *Engine {
	return &Engine{
		primary:  primary,
		fallback: fallback,
		logger:   log,
	}
}

type suggestionPayload struct {
	Text     string      `json:"text"`
	Vibe     string      `json:"vibe"`
	Strategy string      `json:"strategy"`
	Phase    model.Phase `json:"phase"`
	IsMeta   bool        `json:"isMeta"`
}

// GenerateReplies produces a batch of candidate replies. On primary
// failure with a fallback configured it retries once; if the fallback also
// fails, the original error propagates.
func (e *Engine) GenerateReplies(ctx context.Context, settings model.UserSettings, mctx model.MessageContext) ([]model.Suggestion, error) {
	req := BuildReplyRequest(settings, mctx)

	raw, err := e.generate(ctx, e.primary, req)
	if err != nil {
		if e.fallback == nil {
			return nil, err
		}
		e.logger.Warn("primary provider failed, falling back",
			zap.String("fallback", e.fallback.Name()),
			zap.Error(err),
		)
		fallbackRaw, fallbackErr := e.generate(ctx, e.fallback, req)
		metrics.FallbacksTotal.WithLabelValues(e.fallback.Name(), status(fallbackErr)).Inc()
		if fallbackErr != nil {
			return nil, err
		}
		raw = fallbackRaw
	}

	var payload []suggestionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.BadResponse("suggestions did not parse", err)
	}

	now := time.Now().UnixMilli()
	suggestions := make([]model.Suggestion, len(payload))
	for i, item := range payload {
		if !model.ValidPhase(item.Phase) {
			item.Phase = model.PhaseRapport
		}
		suggestions[i] = model.Suggestion{
			ID:       fmt.Sprintf("suggestion-%d-%d", i, now),
			Text:     item.Text,
			Vibe:     item.Vibe,
			Strategy: item.Strategy,
			Phase:    item.Phase,
			IsMeta:   item.IsMeta,
			Rating:   0,
		}
	}
	return suggestions, nil
}

// GenerateReview produces a social review of the thread. One-shot, primary
// provider only.
func (e *Engine) GenerateReview(ctx context.Context, settings model.UserSettings, mctx model.MessageContext) (*model.SocialReview, error) {
	raw, err := e.generate(ctx, e.primary, BuildReviewRequest(settings, mctx))
	if err != nil {
		metrics.ReviewsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var review model.SocialReview
	if err := json.Unmarshal(raw, &review); err != nil {
		metrics.ReviewsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.BadResponse("review did not parse", err)
	}
	metrics.ReviewsTotal.WithLabelValues("success").Inc()
	return &review, nil
}

// RefineSituation distills a raw situation description into a strategic
// situation and a sharp goal. One-shot, primary provider only.
func (e *Engine) RefineSituation(ctx context.Context, rawInput string) (situation, goal string, err error) {
	raw, err := e.generate(ctx, e.primary, BuildRefineRequest(rawInput))
	if err != nil {
		return "", "", err
	}

	var refined struct {
		Situation string `json:"situation"`
		Goal      string `json:"goal"`
	}
	if err := json.Unmarshal(raw, &refined); err != nil {
		return "", "", apperrors.BadResponse("refinement did not parse", err)
	}
	return refined.Situation, refined.Goal, nil
}

func (e *Engine) generate(ctx context.Context, provider Provider, req *Request) ([]byte, error) {
	start := time.Now()
	raw, err := provider.Generate(ctx, req)
	metrics.RecordGeneration(provider.Name(), status(err), time.Since(start).Seconds())
	return raw, err
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
