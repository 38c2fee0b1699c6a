package web

// errors.go turns service errors into JSON responses. The technical error
// is logged with the request ID; the client sees the mapped message,
// action and support code from core.MapError.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/perizinan/internal/core"
	"github.com/JonMunkholm/perizinan/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var (
	errNoFile      = errors.New("no file provided")
	errFileTooBig  = errors.New("file too large for upload")
	errBadOptions  = errors.New("invalid header spec: options must be a JSON object")
	errMissingYear = errors.New("unknown month: month and year are required")
)

// respondError logs err and writes the mapped message. A zero status is
// derived from the error.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound), errors.Is(err, core.ErrImportNotFound):
		return http.StatusNotFound
	case errors.Is(err, errFileTooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports), errors.Is(err, core.ErrTooManySessions),
		errors.Is(err, core.ErrNoStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	code := core.MapError(err).Code
	switch {
	case code == "DB001" || code == "DB002":
		return http.StatusConflict
	case strings.HasPrefix(code, "MAP"), strings.HasPrefix(code, "FILE"):
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(code, "DB"):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
