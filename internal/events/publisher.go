// Package events publishes session and conversation lifecycle events to
// NATS JetStream. Publishing is fire-and-forget: failures are logged and
// never surfaced to the caller.
package events

import (
	"context"

	"github.com/replyhq/reply/internal/model"
)

// Publisher emits application events.
type Publisher interface {
	PublishSession(ctx context.Context, ev model.SessionEvent)
	PublishConversation(ctx context.Context, ev model.ConversationEvent)
}

// Noop is the publisher used when no event bus is configured.
type Noop struct{}

func (Noop) PublishSession(context.Context, model.SessionEvent)           {}
func (Noop) PublishConversation(context.Context, model.ConversationEvent) {}
