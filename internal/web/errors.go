package web

// errors.go turns service errors into JSON responses.
//
// The technical error is logged with the request id; the client receives
// the coded user message of contacts.MapError. Server errors do not leak
// their technical text:
//
//	{"error": "...", "message": "...", "action": "...", "code": "VAL003"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/contacts/internal/contacts"
	"github.com/JonMunkholm/contacts/internal/logging"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, contacts.ErrTooManyImports):
		return http.StatusServiceUnavailable
	}

	switch contacts.KindOf(err) {
	case contacts.KindValidation, contacts.KindFormat:
		return http.StatusBadRequest
	case contacts.KindNotFound:
		return http.StatusNotFound
	case contacts.KindConflict:
		return http.StatusConflict
	case contacts.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the matching error response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorMessage(w, r, statusFor(err), err)
}

func writeErrorMessage(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := contacts.MapError(err)

	log := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", args...)
	} else {
		log.Debug("request rejected", args...)
	}

	detail := err.Error()
	if status >= http.StatusInternalServerError {
		detail = msg.Message
	}
	writeJSONStatus(w, status, ErrorResponse{
		Error:   detail,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
