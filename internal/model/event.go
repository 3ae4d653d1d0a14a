package model

import (
	"time"
)

// SessionEventType classifies a session transition.
type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "signed_in"
	SessionSignedOut SessionEventType = "signed_out"
	SessionSwitched  SessionEventType = "switched"
)

// SessionEvent records one session transition for the event bus.
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	DeviceID  string           `json:"device_id"`
	UserID    string           `json:"user_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// ConversationEventType classifies a conversation lifecycle event.
type ConversationEventType string

const (
	ConversationCreated  ConversationEventType = "created"
	ConversationDeleted  ConversationEventType = "deleted"
	ConversationReviewed ConversationEventType = "reviewed"
	ConversationMigrated ConversationEventType = "migrated"
)

// ConversationEvent records one conversation lifecycle event for the
// event bus.
type ConversationEvent struct {
	Type           ConversationEventType `json:"type"`
	ConversationID string                `json:"conversation_id"`
	DeviceID       string                `json:"device_id,omitempty"`
	UserID         string                `json:"user_id,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}
