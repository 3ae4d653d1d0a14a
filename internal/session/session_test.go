package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/replyhq/reply/pkg/logger"
)

const testSecret = "test-secret"

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func signToken(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func collect(m *Manager) *[]Transition {
	var transitions []Transition
	m.Subscribe(func(ctx context.Context, tr Transition) {
		transitions = append(transitions, tr)
	})
	return &transitions
}

func TestSignInEmitsSignedIn(t *testing.T) {
	m := NewManager(testSecret, "", testLogger())
	transitions := collect(m)

	sess, err := m.SignIn(context.Background(), "device-1", signToken(t, testSecret, "user-1", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UserID)

	require.Len(t, *transitions, 1)
	assert.Equal(t, KindSignedIn, (*transitions)[0].Kind)
	assert.Equal(t, "device-1", (*transitions)[0].DeviceID)
	assert.Equal(t, "user-1", (*transitions)[0].Session.UserID)
}

func TestSignInRejectsBadToken(t *testing.T) {
	m := NewManager(testSecret, "", testLogger())
	transitions := collect(m)

	_, err := m.SignIn(context.Background(), "device-1", "not-a-token")
	assert.Error(t, err)

	_, err = m.SignIn(context.Background(), "device-1", signToken(t, "wrong-secret", "user-1", time.Hour))
	assert.Error(t, err)

	_, err = m.SignIn(context.Background(), "device-1", signToken(t, testSecret, "user-1", -time.Hour))
	assert.Error(t, err, "expired tokens are rejected")

	assert.Empty(t, *transitions)
	assert.Nil(t, m.Current("device-1"))
}

func TestSameUserSignInRefreshesSilently(t *testing.T) {
	m := NewManager(testSecret, "", testLogger())
	transitions := collect(m)

	_, err := m.SignIn(context.Background(), "device-1", signToken(t, testSecret, "user-1", time.Hour))
	require.NoError(t, err)
	refreshed := signToken(t, testSecret, "user-1", 2*time.Hour)
	_, err = m.SignIn(context.Background(), "device-1", refreshed)
	require.NoError(t, err)

	assert.Len(t, *transitions, 1, "refreshing the same identity emits nothing")
	assert.Equal(t, refreshed, m.Current("device-1").Token)
}

func TestDifferentUserSignInEmitsSwitched(t *testing.T) {
	m := NewManager(testSecret, "", testLogger())
	transitions := collect(m)

	_, err := m.SignIn(context.Background(), "device-1", signToken(t, testSecret, "user-1", time.Hour))
	require.NoError(t, err)
	_, err = m.SignIn(context.Background(), "device-1", signToken(t, testSecret, "user-2", time.Hour))
	require.NoError(t, err)

	require.Len(t, *transitions, 2)
	switched := (*transitions)[1]
	assert.Equal(t, KindSwitched, switched.Kind)
	assert.Equal(t, "user-2", switched.Session.UserID)
	assert.Equal(t, "user-1", switched.Previous.UserID)
}

func TestSignOutEmitsSignedOut(t *testing.T) {
	m := NewManager(testSecret, "", testLogger())
	transitions := collect(m)

	_, err := m.SignIn(context.Background(), "device-1", signToken(t, testSecret, "user-1", time.Hour))
	require.NoError(t, err)
	m.SignOut(context.Background(), "device-1")

	require.Len(t, *transitions, 2)
	assert.Equal(t, KindSignedOut, (*transitions)[1].Kind)
	assert.Equal(t, "user-1", (*transitions)[1].Previous.UserID)
	assert.Nil(t, m.Current("device-1"))
}

func TestSignOutWithoutSessionIsNoop(t *testing.T) {
	m := NewManager(testSecret, "", testLogger())
	transitions := collect(m)

	m.SignOut(context.Background(), "device-1")

	assert.Empty(t, *transitions)
}

func TestSessionsAreDeviceScoped(t *testing.T) {
	m := NewManager(testSecret, "", testLogger())

	_, err := m.SignIn(context.Background(), "device-1", signToken(t, testSecret, "user-1", time.Hour))
	require.NoError(t, err)

	assert.Nil(t, m.Current("device-2"))
	assert.Equal(t, "user-1", m.Current("device-1").UserID)
}

func TestResolveRestoresPersistedSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	m := NewManager(testSecret, path, testLogger())
	_, err := m.SignIn(context.Background(), "device-1", signToken(t, testSecret, "user-1", time.Hour))
	require.NoError(t, err)
	_, err = m.SignIn(context.Background(), "device-2", signToken(t, testSecret, "user-2", -time.Hour))
	assert.Error(t, err)

	restored := NewManager(testSecret, path, testLogger())
	transitions := collect(restored)
	restored.Resolve(context.Background())

	require.Len(t, *transitions, 1)
	assert.Equal(t, KindSignedIn, (*transitions)[0].Kind)
	assert.Equal(t, "user-1", restored.Current("device-1").UserID)
	assert.Nil(t, restored.Current("device-2"))
}

func TestResolveRunsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	m := NewManager(testSecret, path, testLogger())
	_, err := m.SignIn(context.Background(), "device-1", signToken(t, testSecret, "user-1", time.Hour))
	require.NoError(t, err)

	restored := NewManager(testSecret, path, testLogger())
	transitions := collect(restored)
	restored.Resolve(context.Background())
	restored.Resolve(context.Background())

	assert.Len(t, *transitions, 1)
}
