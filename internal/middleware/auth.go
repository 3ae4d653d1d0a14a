// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/replyhq/reply/internal/session"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// DeviceIDKey is the context key for the device ID.
	DeviceIDKey ContextKey = "device_id"
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey ContextKey = "user_id"
	// BearerTokenKey is the context key for the raw bearer token.
	BearerTokenKey ContextKey = "bearer_token"
)

// DeviceHeader carries the client's device identity.
const DeviceHeader = "X-Device-ID"

// Device requires an X-Device-ID header and resolves the device's session,
// putting both on the request context.
func Device(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := r.Header.Get(DeviceHeader)
			if deviceID == "" {
				http.Error(w, `{"error":"missing device id header"}`, http.StatusBadRequest)
				return
			}

			ctx := context.WithValue(r.Context(), DeviceIDKey, deviceID)
			if sess := sessions.Current(deviceID); sess != nil {
				ctx = context.WithValue(ctx, UserIDKey, sess.UserID)
			}

			// The raw bearer token, if any, is only consumed by the
			// session attach endpoint.
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					ctx = context.WithValue(ctx, BearerTokenKey, parts[1])
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetDeviceID gets the device ID from context.
func GetDeviceID(ctx context.Context) string {
	if v := ctx.Value(DeviceIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetUserID gets the authenticated user ID from context, empty in guest
// mode.
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetBearerToken gets the raw bearer token from context.
func GetBearerToken(ctx context.Context) string {
	if v := ctx.Value(BearerTokenKey); v != nil {
		return v.(string)
	}
	return ""
}
