package store

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/replyhq/reply/internal/model"
)

// ProfileRow is the persisted persona configuration, one row per user.
type ProfileRow struct {
	bun.BaseModel `bun:"table:profiles"`

	ID             int64     `bun:"id,pk,autoincrement"`
	UserID         string    `bun:"user_id,notnull"`
	UserName       string    `bun:"user_name"`
	AgentName      string    `bun:"agent_name"`
	UserGender     string    `bun:"user_gender"`
	TargetGender   string    `bun:"target_gender"`
	Relationship   string    `bun:"relationship"`
	CurrentVibe    string    `bun:"current_vibe"`
	Situation      string    `bun:"situation"`
	Goal           string    `bun:"goal"`
	Confidence     int       `bun:"confidence"`
	Humor          int       `bun:"humor"`
	Humanity       int       `bun:"humanity"`
	IsProfileSetup bool      `bun:"is_profile_setup"`
	UpdatedAt      time.Time `bun:"updated_at"`
}

// ConversationRow is one persisted generation result. The settings, context
// and suggestions snapshots are stored as JSONB documents.
type ConversationRow struct {
	bun.BaseModel `bun:"table:conversations"`

	ID          string          `bun:"id,pk"`
	UserID      string          `bun:"user_id,notnull"`
	Timestamp   int64           `bun:"timestamp,notnull"`
	Settings    json.RawMessage `bun:"settings,type:jsonb"`
	Context     json.RawMessage `bun:"context,type:jsonb"`
	Suggestions json.RawMessage `bun:"suggestions,type:jsonb"`
	Review      json.RawMessage `bun:"review,type:jsonb,nullzero"`
	Summary     string          `bun:"summary,nullzero"`
}

func profileRowFromSettings(userID string, s model.UserSettings) ProfileRow {
	return ProfileRow{
		UserID:         userID,
		UserName:       s.UserName,
		AgentName:      s.AgentName,
		UserGender:     string(s.UserGender),
		TargetGender:   string(s.TargetGender),
		Relationship:   string(s.Relationship),
		CurrentVibe:    s.CurrentVibe,
		Situation:      s.Situation,
		Goal:           s.Goal,
		Confidence:     s.Confidence,
		Humor:          s.Humor,
		Humanity:       s.Humanity,
		IsProfileSetup: s.IsProfileSetup,
		UpdatedAt:      time.Now().UTC(),
	}
}

func (r ProfileRow) toSettings() model.UserSettings {
	return model.UserSettings{
		UserName:       r.UserName,
		AgentName:      r.AgentName,
		UserGender:     model.Gender(r.UserGender),
		TargetGender:   model.Gender(r.TargetGender),
		Relationship:   model.Relationship(r.Relationship),
		CurrentVibe:    r.CurrentVibe,
		Situation:      r.Situation,
		Goal:           r.Goal,
		Confidence:     r.Confidence,
		Humor:          r.Humor,
		Humanity:       r.Humanity,
		IsProfileSetup: r.IsProfileSetup,
	}
}

func conversationRowFromModel(userID string, c model.Conversation) (ConversationRow, error) {
	settings, err := json.Marshal(c.Settings)
	if err != nil {
		return ConversationRow{}, errors.Wrap(err, "marshal settings")
	}
	context, err := json.Marshal(c.Context)
	if err != nil {
		return ConversationRow{}, errors.Wrap(err, "marshal context")
	}
	suggestions, err := json.Marshal(c.Suggestions)
	if err != nil {
		return ConversationRow{}, errors.Wrap(err, "marshal suggestions")
	}

	row := ConversationRow{
		ID:          c.ID,
		UserID:      userID,
		Timestamp:   c.Timestamp,
		Settings:    settings,
		Context:     context,
		Suggestions: suggestions,
		Summary:     c.Summary,
	}
	if c.Review != nil {
		review, err := json.Marshal(c.Review)
		if err != nil {
			return ConversationRow{}, errors.Wrap(err, "marshal review")
		}
		row.Review = review
	}
	return row, nil
}

func (r ConversationRow) toModel() (model.Conversation, error) {
	c := model.Conversation{
		ID:        r.ID,
		Timestamp: r.Timestamp,
		Summary:   r.Summary,
	}
	if err := json.Unmarshal(r.Settings, &c.Settings); err != nil {
		return model.Conversation{}, errors.Wrap(err, "unmarshal settings")
	}
	if err := json.Unmarshal(r.Context, &c.Context); err != nil {
		return model.Conversation{}, errors.Wrap(err, "unmarshal context")
	}
	if err := json.Unmarshal(r.Suggestions, &c.Suggestions); err != nil {
		return model.Conversation{}, errors.Wrap(err, "unmarshal suggestions")
	}
	if len(r.Review) > 0 {
		c.Review = &model.SocialReview{}
		if err := json.Unmarshal(r.Review, c.Review); err != nil {
			return model.Conversation{}, errors.Wrap(err, "unmarshal review")
		}
	}
	return c, nil
}
