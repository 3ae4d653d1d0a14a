// Package store is the CRUD adapter over the hosted table-based backend.
// Every operation is independent; there is no transaction spanning more
// than one of them, no retries and no optimistic concurrency.
package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/pkg/logger"
)

// Adapter provides profile and conversation persistence.
type Adapter struct {
	db     *bun.DB
	logger *logger.Logger
}

// Open connects to Postgres using the given DSN.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// New creates a new store adapter.
func New(db *bun.DB, log *logger.Logger) *Adapter {
	return &Adapter{
		db:     db,
		logger: log,
	}
}

// EnsureSchema creates the profiles and conversations tables if missing.
func (a *Adapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.NewCreateTable().Model((*ProfileRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return errors.Wrap(err, "create profiles table")
	}
	if _, err := a.db.NewCreateTable().Model((*ConversationRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return errors.Wrap(err, "create conversations table")
	}
	return nil
}

// SaveProfile upserts the settings row for userID: query for an existing
// row, update it if found, insert otherwise.
func (a *Adapter) SaveProfile(ctx context.Context, userID string, settings model.UserSettings) error {
	row := profileRowFromSettings(userID, settings)

	var existing ProfileRow
	err := a.db.NewSelect().
		Model(&existing).
		Column("id").
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	switch {
	case err == nil:
		_, err = a.db.NewUpdate().
			Model(&row).
			ExcludeColumn("id").
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "update profile")
		}
	case errors.Is(err, sql.ErrNoRows):
		_, err = a.db.NewInsert().
			Model(&row).
			ExcludeColumn("id").
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "insert profile")
		}
	default:
		return errors.Wrap(err, "query profile")
	}
	return nil
}

// GetProfile fetches the most-recently-updated settings row for userID.
// Returns nil when no profile exists.
func (a *Adapter) GetProfile(ctx context.Context, userID string) (*model.UserSettings, error) {
	var row ProfileRow
	err := a.db.NewSelect().
		Model(&row).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query profile")
	}

	settings := row.toSettings()
	return &settings, nil
}

// SaveConversation upserts one conversation row. Re-saving the same id
// replaces the stored snapshots, which is how an attached review reaches
// the backend.
func (a *Adapter) SaveConversation(ctx context.Context, userID string, conv model.Conversation) error {
	row, err := conversationRowFromModel(userID, conv)
	if err != nil {
		return err
	}
	_, err = a.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("timestamp = EXCLUDED.timestamp").
		Set("settings = EXCLUDED.settings").
		Set("context = EXCLUDED.context").
		Set("suggestions = EXCLUDED.suggestions").
		Set("review = EXCLUDED.review").
		Set("summary = EXCLUDED.summary").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "upsert conversation")
	}
	return nil
}

// GetHistory fetches all conversations for userID ordered by timestamp
// descending.
func (a *Adapter) GetHistory(ctx context.Context, userID string) ([]model.Conversation, error) {
	var rows []ConversationRow
	err := a.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}

	history := make([]model.Conversation, 0, len(rows))
	for _, row := range rows {
		conv, err := row.toModel()
		if err != nil {
			return nil, err
		}
		history = append(history, conv)
	}
	return history, nil
}

// DeleteConversation deletes by the composite (userID, id).
func (a *Adapter) DeleteConversation(ctx context.Context, userID, id string) error {
	_, err := a.db.NewDelete().
		Model((*ConversationRow)(nil)).
		Where("user_id = ?", userID).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "delete conversation")
	}
	return nil
}
