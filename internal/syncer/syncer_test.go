package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/replyhq/reply/internal/app"
	"github.com/replyhq/reply/internal/cache"
	"github.com/replyhq/reply/internal/events"
	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/internal/session"
	"github.com/replyhq/reply/pkg/logger"
)

type fakeStore struct {
	profiles      map[string]*model.UserSettings
	conversations map[string][]model.Conversation

	profileErr error
	historyErr error
	saveErr    error

	savedOrder []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:      make(map[string]*model.UserSettings),
		conversations: make(map[string][]model.Conversation),
	}
}

func (f *fakeStore) SaveProfile(ctx context.Context, userID string, settings model.UserSettings) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	s := settings
	f.profiles[userID] = &s
	return nil
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (*model.UserSettings, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profiles[userID], nil
}

func (f *fakeStore) SaveConversation(ctx context.Context, userID string, conv model.Conversation) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.conversations[userID] = append(f.conversations[userID], conv)
	f.savedOrder = append(f.savedOrder, conv.ID)
	return nil
}

func (f *fakeStore) GetHistory(ctx context.Context, userID string) ([]model.Conversation, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.conversations[userID], nil
}

func (f *fakeStore) DeleteConversation(ctx context.Context, userID, id string) error {
	kept := f.conversations[userID][:0:0]
	for _, c := range f.conversations[userID] {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	f.conversations[userID] = kept
	return nil
}

type fixture struct {
	store    *fakeStore
	cache    *cache.Cache
	states   *app.Manager
	sessions *session.Manager
	orch     *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := &logger.Logger{Logger: zap.NewNop()}

	c, err := cache.New(t.TempDir(), log)
	require.NoError(t, err)

	fs := newFakeStore()
	states := app.NewManager(nil)
	orch := New(fs, c, states, events.Noop{}, log)

	sessions := session.NewManager("test-secret", "", log)
	sessions.Subscribe(orch.OnTransition)

	return &fixture{store: fs, cache: c, states: states, sessions: sessions, orch: orch}
}

func (fx *fixture) signIn(ctx context.Context, deviceID, userID string) {
	fx.orch.OnTransition(ctx, session.Transition{
		Kind:     session.KindSignedIn,
		DeviceID: deviceID,
		Session:  &session.Session{UserID: userID},
	})
}

func guestConversation(id string, vibe string) model.Conversation {
	settings := model.DefaultSettings()
	settings.CurrentVibe = vibe
	settings.IsProfileSetup = true
	return model.Conversation{ID: id, Timestamp: 1700000000000, Settings: settings}
}

func TestTransitionsFlowThroughSessionManager(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	remote := model.DefaultSettings()
	remote.IsProfileSetup = true
	fx.store.profiles["user-1"] = &remote

	fx.orch.State("device-1", false)

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = fx.sessions.SignIn(ctx, "device-1", token)
	require.NoError(t, err)

	assert.Equal(t, app.ViewApp, fx.states.Get("device-1").View())

	fx.sessions.SignOut(ctx, "device-1")
	assert.Equal(t, app.ViewLanding, fx.states.Get("device-1").View())
}

func TestFirstSightUnauthenticatedHydratesFromCache(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.cache.Save("device-1", []model.Conversation{guestConversation("c1", "Witty")}))

	st := fx.orch.State("device-1", false)

	history := st.History()
	require.Len(t, history, 1)
	assert.Equal(t, "c1", history[0].ID)
	assert.Equal(t, "Witty", st.Settings().CurrentVibe)
}

func TestFirstSightAuthenticatedSkipsCache(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.cache.Save("device-1", []model.Conversation{guestConversation("c1", "Witty")}))

	st := fx.orch.State("device-1", true)

	assert.Empty(t, st.History())
}

func TestSignInWithRemoteProfileAndHistory(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	remote := model.DefaultSettings()
	remote.UserName = "Sam"
	remote.IsProfileSetup = true
	fx.store.profiles["user-1"] = &remote
	fx.store.conversations["user-1"] = []model.Conversation{guestConversation("r1", "Romantic")}

	fx.orch.State("device-1", false)
	fx.signIn(ctx, "device-1", "user-1")

	st := fx.states.Get("device-1")
	assert.Equal(t, app.ViewApp, st.View())
	assert.Equal(t, "Sam", st.Settings().UserName)
	history := st.History()
	require.Len(t, history, 1)
	assert.Equal(t, "r1", history[0].ID)
}

func TestSignInRemoteHistoryWinsOverGuest(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.cache.Save("device-1", []model.Conversation{guestConversation("local", "Witty")}))
	remote := model.DefaultSettings()
	remote.IsProfileSetup = true
	fx.store.profiles["user-1"] = &remote
	fx.store.conversations["user-1"] = []model.Conversation{guestConversation("remote", "Romantic")}

	fx.orch.State("device-1", false)
	fx.signIn(ctx, "device-1", "user-1")

	history := fx.states.Get("device-1").History()
	require.Len(t, history, 1)
	assert.Equal(t, "remote", history[0].ID, "remote history replaces guest history outright")
	assert.Empty(t, fx.store.savedOrder, "nothing migrates when remote history exists")
}

func TestSignInMigratesGuestHistoryInOrder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	guest := []model.Conversation{
		guestConversation("g-new", "Witty"),
		guestConversation("g-old", "Chill"),
	}
	require.NoError(t, fx.cache.Save("device-1", guest))

	fx.orch.State("device-1", false)
	fx.signIn(ctx, "device-1", "user-1")

	assert.Equal(t, []string{"g-new", "g-old"}, fx.store.savedOrder, "ids and order preserved")
	require.Len(t, fx.store.conversations["user-1"], 2)
	assert.Equal(t, int64(1700000000000), fx.store.conversations["user-1"][0].Timestamp)
}

func TestSignInPushesGuestProfileWhenRemoteEmpty(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	st := fx.orch.State("device-1", false)
	settings := model.DefaultSettings()
	settings.UserName = "Sam"
	settings.IsProfileSetup = true
	st.UpdateSettings(settings)

	fx.signIn(ctx, "device-1", "user-1")

	require.NotNil(t, fx.store.profiles["user-1"])
	assert.Equal(t, "Sam", fx.store.profiles["user-1"].UserName)
	assert.Equal(t, app.ViewApp, st.View())
}

func TestSignInWithNothingAnywhereGoesToOnboarding(t *testing.T) {
	fx := newFixture(t)

	st := fx.orch.State("device-1", false)
	fx.signIn(context.Background(), "device-1", "user-1")

	assert.Equal(t, app.ViewOnboarding, st.View())
	assert.Nil(t, fx.store.profiles["user-1"])
}

func TestSignInIncompleteRemoteProfileGoesToOnboarding(t *testing.T) {
	fx := newFixture(t)

	remote := model.DefaultSettings()
	remote.UserName = "Sam"
	fx.store.profiles["user-1"] = &remote

	st := fx.orch.State("device-1", false)
	fx.signIn(context.Background(), "device-1", "user-1")

	assert.Equal(t, app.ViewOnboarding, st.View())
	assert.Equal(t, "Sam", st.Settings().UserName)
}

func TestSyncFailureFromLandingFallsBackToOnboarding(t *testing.T) {
	fx := newFixture(t)
	fx.store.profileErr = assert.AnError

	st := fx.orch.State("device-1", false)
	fx.signIn(context.Background(), "device-1", "user-1")

	assert.Equal(t, app.ViewOnboarding, st.View())
}

func TestSyncFailureMidSessionKeepsView(t *testing.T) {
	fx := newFixture(t)

	st := fx.orch.State("device-1", false)
	st.SetView(app.ViewApp)
	fx.store.historyErr = assert.AnError

	fx.signIn(context.Background(), "device-1", "user-1")

	assert.Equal(t, app.ViewApp, st.View())
}

func TestHistoryErrorAbortsMigration(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.cache.Save("device-1", []model.Conversation{guestConversation("g1", "Witty")}))
	fx.store.historyErr = assert.AnError

	fx.orch.State("device-1", false)
	fx.signIn(context.Background(), "device-1", "user-1")

	assert.Empty(t, fx.store.savedOrder)
}

func TestSignOutRestoresGuestHistory(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.cache.Save("device-1", []model.Conversation{guestConversation("g1", "Witty")}))
	st := fx.orch.State("device-1", false)
	fx.signIn(ctx, "device-1", "user-1")

	fx.orch.OnTransition(ctx, session.Transition{
		Kind:     session.KindSignedOut,
		DeviceID: "device-1",
		Previous: &session.Session{UserID: "user-1"},
	})

	assert.Equal(t, app.ViewLanding, st.View())
	history := st.History()
	require.Len(t, history, 1)
	assert.Equal(t, "g1", history[0].ID)
}

func TestSwitchDiscardsPreviousUserState(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first := model.DefaultSettings()
	first.UserName = "First"
	first.IsProfileSetup = true
	fx.store.profiles["user-1"] = &first
	fx.store.conversations["user-1"] = []model.Conversation{guestConversation("u1-conv", "Witty")}

	st := fx.orch.State("device-1", false)
	fx.signIn(ctx, "device-1", "user-1")
	require.Len(t, st.History(), 1)

	second := model.DefaultSettings()
	second.UserName = "Second"
	second.IsProfileSetup = true
	fx.store.profiles["user-2"] = &second

	fx.orch.OnTransition(ctx, session.Transition{
		Kind:     session.KindSwitched,
		DeviceID: "device-1",
		Session:  &session.Session{UserID: "user-2"},
		Previous: &session.Session{UserID: "user-1"},
	})

	assert.Equal(t, "Second", st.Settings().UserName)
	assert.Empty(t, st.History(), "previous user's history never leaks")
	assert.Empty(t, fx.store.savedOrder, "discarded state never migrates")
}
