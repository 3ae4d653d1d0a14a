// Package syncer reconciles application state with the authoritative data
// source on every session transition. Exactly one of the local cache and
// the remote store is authoritative at any time, selected by session
// presence.
package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/replyhq/reply/internal/app"
	"github.com/replyhq/reply/internal/cache"
	"github.com/replyhq/reply/internal/events"
	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/internal/session"
	"github.com/replyhq/reply/pkg/logger"
	"github.com/replyhq/reply/pkg/metrics"
)

// Store is the remote persistence surface the orchestrator reconciles
// against.
type Store interface {
	SaveProfile(ctx context.Context, userID string, settings model.UserSettings) error
	GetProfile(ctx context.Context, userID string) (*model.UserSettings, error)
	SaveConversation(ctx context.Context, userID string, conv model.Conversation) error
	GetHistory(ctx context.Context, userID string) ([]model.Conversation, error)
	DeleteConversation(ctx context.Context, userID, id string) error
}

// Orchestrator hydrates device state from whichever source is
// authoritative and migrates guest history to the remote store on first
// sign-in.
type Orchestrator struct {
	store  Store
	cache  *cache.Cache
	states *app.Manager
	bus    events.Publisher
	logger *logger.Logger
}

// New creates a sync orchestrator.
func New(store Store, localCache *cache.Cache, states *app.Manager, bus events.Publisher, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:  store,
		cache:  localCache,
		states: states,
		bus:    bus,
		logger: log,
	}
}

// State returns the app state for deviceID. A device seen for the first
// time without a session is hydrated from the local cache synchronously.
func (o *Orchestrator) State(deviceID string, authenticated bool) *app.State {
	st, created := o.states.GetOrCreate(deviceID)
	if created && !authenticated {
		o.AdoptLocal(deviceID)
	}
	return st
}

// OnTransition is the session manager listener. Each transition triggers
// one reconciliation; errors are logged and swallowed, leaving state
// unsynced until the next transition.
func (o *Orchestrator) OnTransition(ctx context.Context, tr session.Transition) {
	switch tr.Kind {
	case session.KindSignedIn:
		o.bus.PublishSession(ctx, model.SessionEvent{
			Type: model.SessionSignedIn, DeviceID: tr.DeviceID, UserID: tr.Session.UserID, CreatedAt: time.Now(),
		})
		o.signIn(ctx, tr.DeviceID, tr.Session.UserID)

	case session.KindSwitched:
		// A different identity signed in: the previous user's in-memory
		// state is discarded before hydrating, never migrated.
		o.bus.PublishSession(ctx, model.SessionEvent{
			Type: model.SessionSwitched, DeviceID: tr.DeviceID, UserID: tr.Session.UserID, CreatedAt: time.Now(),
		})
		o.states.Get(tr.DeviceID).Reset()
		o.signIn(ctx, tr.DeviceID, tr.Session.UserID)

	case session.KindSignedOut:
		o.bus.PublishSession(ctx, model.SessionEvent{
			Type: model.SessionSignedOut, DeviceID: tr.DeviceID, UserID: tr.Previous.UserID, CreatedAt: time.Now(),
		})
		o.states.Get(tr.DeviceID).Reset()
		o.AdoptLocal(tr.DeviceID)
	}
}

// AdoptLocal loads the persisted guest history for deviceID and, when
// non-empty, the settings of its most recent entry.
func (o *Orchestrator) AdoptLocal(deviceID string) {
	st := o.states.Get(deviceID)
	st.AdoptLocal(o.cache.Load(deviceID))
}

// signIn runs the sign-in reconciliation: profile first, then history.
// Remote history wins outright; otherwise guest history migrates up. Any
// error aborts the whole sequence.
func (o *Orchestrator) signIn(ctx context.Context, deviceID, userID string) {
	st := o.states.Get(deviceID)

	// Guest history accumulated before sign-in, captured before hydration
	// can replace it.
	guestHistory := st.History()

	profile, err := o.store.GetProfile(ctx, userID)
	if err != nil {
		o.fail(st, deviceID, "fetch profile", err)
		return
	}

	if profile != nil {
		st.UpdateSettings(*profile)
		if profile.IsProfileSetup {
			st.SetView(app.ViewApp)
		} else {
			st.SetView(app.ViewOnboarding)
		}
	} else if st.Settings().IsProfileSetup {
		// Guest-mode progress exists: push it up and proceed.
		if err := o.store.SaveProfile(ctx, userID, st.Settings()); err != nil {
			o.fail(st, deviceID, "push guest profile", err)
			return
		}
		st.SetView(app.ViewApp)
	} else {
		st.SetView(app.ViewOnboarding)
	}

	remote, err := o.store.GetHistory(ctx, userID)
	if err != nil {
		o.fail(st, deviceID, "fetch history", err)
		return
	}

	if len(remote) > 0 {
		st.AdoptRemote(remote)
		return
	}

	if len(guestHistory) > 0 {
		if err := o.migrateLocalToRemote(ctx, deviceID, userID, guestHistory); err != nil {
			o.fail(st, deviceID, "migrate guest history", err)
			return
		}
	}
}

// migrateLocalToRemote uploads every guest conversation one at a time,
// preserving identifiers and timestamps. There is no de-duplication: the
// only guard is the caller's remote-history-is-empty condition, which is
// the agreed policy.
func (o *Orchestrator) migrateLocalToRemote(ctx context.Context, deviceID, userID string, history []model.Conversation) error {
	metrics.MigrationsTotal.Inc()
	for _, conv := range history {
		if err := o.store.SaveConversation(ctx, userID, conv); err != nil {
			return err
		}
		metrics.MigratedConversationsTotal.Inc()
		o.bus.PublishConversation(ctx, model.ConversationEvent{
			Type:           model.ConversationMigrated,
			ConversationID: conv.ID,
			DeviceID:       deviceID,
			UserID:         userID,
			CreatedAt:      time.Now(),
		})
	}
	o.logger.Info("migrated guest history to remote store",
		zap.String("device_id", deviceID),
		zap.String("user_id", userID),
		zap.Int("conversations", len(history)),
	)
	return nil
}

// fail logs and swallows a sync error. The view falls back to onboarding
// only when it was still in its initial unset state.
func (o *Orchestrator) fail(st *app.State, deviceID, step string, err error) {
	metrics.SyncFailuresTotal.Inc()
	o.logger.Error("sync failed",
		zap.String("device_id", deviceID),
		zap.String("step", step),
		zap.Error(err),
	)
	if st.View() == app.ViewLanding {
		st.SetView(app.ViewOnboarding)
	}
}
