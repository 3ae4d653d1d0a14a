package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/replyhq/reply/internal/model"
)

// ValidateMessageText validates a thread message body.
func ValidateMessageText(text string) error {
	if len(text) == 0 {
		return errors.New("text cannot be empty")
	}
	if len(text) > 100000 { // ~100KB limit
		return errors.New("text exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("text must be valid UTF-8")
	}
	return nil
}

// ValidateSender validates a thread message sender label.
func ValidateSender(sender model.Sender) error {
	if sender != model.SenderMe && sender != model.SenderThem {
		return errors.New(`sender must be "me" or "them"`)
	}
	return nil
}

// ValidateConversationID validates a conversation ID.
func ValidateConversationID(id string) error {
	if len(id) == 0 {
		return errors.New("conversation ID cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("conversation ID exceeds maximum length")
	}
	return nil
}

// ValidateSettings validates a persona configuration update.
func ValidateSettings(s model.UserSettings) error {
	if len(s.UserName) > 64 || len(s.AgentName) > 64 {
		return errors.New("name exceeds maximum length")
	}
	for _, dial := range []int{s.Confidence, s.Humor, s.Humanity} {
		if dial < 0 || dial > 100 {
			return errors.New("dials must be between 0 and 100")
		}
	}
	if !utf8.ValidString(s.Situation) || !utf8.ValidString(s.Goal) {
		return errors.New("situation and goal must be valid UTF-8")
	}
	return nil
}
