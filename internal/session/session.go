// Package session tracks the per-device authentication session and emits
// one transition per change to its subscribers.
package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "github.com/replyhq/reply/pkg/errors"
	"github.com/replyhq/reply/pkg/logger"
	"github.com/replyhq/reply/pkg/metrics"
)

// Session is an authenticated identity attached to a device.
type Session struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// Kind classifies a session transition.
type Kind string

const (
	// KindSignedIn is the none→present transition.
	KindSignedIn Kind = "signed_in"
	// KindSignedOut is the present→none transition.
	KindSignedOut Kind = "signed_out"
	// KindSwitched is the present→different-identity transition.
	KindSwitched Kind = "switched"
)

// Transition is one session change for a device.
type Transition struct {
	Kind     Kind
	DeviceID string
	Session  *Session
	Previous *Session
}

// Listener receives transitions. Listeners run synchronously on the
// calling goroutine, in subscription order.
type Listener func(ctx context.Context, tr Transition)

// Claims are the JWT claims a client presents on sign-in.
type Claims struct {
	jwt.RegisteredClaims
}

// Manager resolves, tracks and persists device sessions.
type Manager struct {
	secret      string
	persistPath string
	logger      *logger.Logger

	mu        sync.Mutex
	sessions  map[string]*Session
	listeners []Listener
	resolved  bool
}

// NewManager creates a session manager. persistPath may be empty to
// disable persistence across restarts.
func NewManager(secret, persistPath string, log *logger.Logger) *Manager {
	return &Manager{
		secret:      secret,
		persistPath: persistPath,
		logger:      log,
		sessions:    make(map[string]*Session),
	}
}

// Subscribe registers a listener for future transitions.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// Current returns the session attached to deviceID, or nil.
func (m *Manager) Current(deviceID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[deviceID]
}

// SignIn validates token and attaches the session to deviceID. A token for
// the identity already attached refreshes silently; a different identity
// emits a switched transition.
func (m *Manager) SignIn(ctx context.Context, deviceID, token string) (*Session, error) {
	userID, err := m.verify(token)
	if err != nil {
		return nil, err
	}

	sess := &Session{UserID: userID, Token: token}

	m.mu.Lock()
	prev := m.sessions[deviceID]
	m.sessions[deviceID] = sess
	m.persistLocked()
	m.mu.Unlock()

	switch {
	case prev == nil:
		m.emit(ctx, Transition{Kind: KindSignedIn, DeviceID: deviceID, Session: sess})
	case prev.UserID != userID:
		m.emit(ctx, Transition{Kind: KindSwitched, DeviceID: deviceID, Session: sess, Previous: prev})
	}
	return sess, nil
}

// SignOut detaches the session from deviceID, if any.
func (m *Manager) SignOut(ctx context.Context, deviceID string) {
	m.mu.Lock()
	prev := m.sessions[deviceID]
	delete(m.sessions, deviceID)
	m.persistLocked()
	m.mu.Unlock()

	if prev != nil {
		m.emit(ctx, Transition{Kind: KindSignedOut, DeviceID: deviceID, Previous: prev})
	}
}

// Resolve restores persisted sessions exactly once, at startup. Expired or
// invalid tokens are dropped; valid ones emit signed-in transitions.
func (m *Manager) Resolve(ctx context.Context) {
	m.mu.Lock()
	if m.resolved || m.persistPath == "" {
		m.mu.Unlock()
		return
	}
	m.resolved = true
	m.mu.Unlock()

	data, err := os.ReadFile(m.persistPath)
	if err != nil {
		return
	}
	var persisted map[string]string
	if err := json.Unmarshal(data, &persisted); err != nil {
		m.logger.Warn("failed to parse persisted sessions", zap.Error(err))
		return
	}

	for deviceID, token := range persisted {
		if _, err := m.SignIn(ctx, deviceID, token); err != nil {
			m.logger.Info("dropping stale persisted session",
				zap.String("device_id", deviceID),
				zap.Error(err),
			)
		}
	}
}

func (m *Manager) verify(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(m.secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", apperrors.Unauthorized("invalid token")
	}
	if claims.Subject == "" {
		return "", apperrors.Unauthorized("token has no subject")
	}
	return claims.Subject, nil
}

func (m *Manager) emit(ctx context.Context, tr Transition) {
	m.mu.Lock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues(string(tr.Kind)).Inc()

	for _, l := range listeners {
		l(ctx, tr)
	}
}

func (m *Manager) persistLocked() {
	if m.persistPath == "" {
		return
	}
	persisted := make(map[string]string, len(m.sessions))
	for deviceID, sess := range m.sessions {
		persisted[deviceID] = sess.Token
	}
	data, err := json.Marshal(persisted)
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(m.persistPath), 0o755)
	if err := os.WriteFile(m.persistPath, data, 0o600); err != nil {
		m.logger.Warn("failed to persist sessions", zap.Error(err))
	}
}
