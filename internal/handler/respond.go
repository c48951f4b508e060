package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/permission"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/service"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/validate"
)

const maxBodyBytes = 1 << 20 // 1MB

const (
	msgNotFound           = "Not found."
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidToken       = "Token is invalid or expired"
	msgNoCredentials      = "Authentication credentials were not provided."
	msgInternal           = "Internal server error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func detailResponse(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

// decodeJSON reads a capped JSON body into dst. It writes the error response
// itself and reports false when the body is unusable. An empty body is only
// accepted when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, detailResponse("Request body too large"))
		return false
	}
	writeJSON(w, http.StatusBadRequest, detailResponse("Invalid request body"))
	return false
}

// writeError maps service-layer errors to HTTP responses. Items owned by
// someone else are reported exactly like missing ones.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs *validate.Errors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, verrs.Fields())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, detailResponse(msgInvalidCredentials))
	case errors.Is(err, service.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, detailResponse(msgInvalidToken))
	case errors.Is(err, permission.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, detailResponse(msgNoCredentials))
	case errors.Is(err, service.ErrTodoNotFound), errors.Is(err, permission.ErrNotOwner):
		writeJSON(w, http.StatusNotFound, detailResponse(msgNotFound))
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, detailResponse(msgInternal))
	}
}
