package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/pkg/logger"
)

const (
	// StreamName is the name of the application event stream.
	StreamName = "REPLY_EVENTS"

	// SubjectPrefix is the prefix for all event subjects.
	SubjectPrefix = "reply"
)

// Bus publishes application events to a JetStream stream.
type Bus struct {
	client *Client
	logger *logger.Logger
}

// NewBus creates an event bus over an established NATS client.
func NewBus(client *Client, log *logger.Logger) *Bus {
	return &Bus{client: client, logger: log}
}

// EnsureStream ensures the event stream exists.
func (b *Bus) EnsureStream(ctx context.Context) error {
	js := b.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Session transitions and conversation lifecycle events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// PublishSession publishes a session transition event.
func (b *Bus) PublishSession(ctx context.Context, ev model.SessionEvent) {
	subject := fmt.Sprintf("%s.session.%s", SubjectPrefix, ev.Type)
	b.publish(ctx, subject, ev)
}

// PublishConversation publishes a conversation lifecycle event.
func (b *Bus) PublishConversation(ctx context.Context, ev model.ConversationEvent) {
	subject := fmt.Sprintf("%s.conversation.%s", SubjectPrefix, ev.Type)
	b.publish(ctx, subject, ev)
}

func (b *Bus) publish(ctx context.Context, subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Warn("failed to marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if _, err := b.client.JetStream().Publish(ctx, subject, data); err != nil {
		b.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
