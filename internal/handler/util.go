package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/replyhq/reply/pkg/errors"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeAppError maps an application error to its HTTP status.
func writeAppError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	writeJSON(w, apperrors.HTTPStatus(code), map[string]string{
		"error": err.Error(),
		"code":  string(code),
	})
}
