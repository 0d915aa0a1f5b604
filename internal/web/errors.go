package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. The status code is derived from the error kind
//  4. Error is mapped via core.MapError to get a user-friendly message
//  5. Technical error + context is logged with request ID for correlation
//  6. User message is rendered as JSON for /api routes, plain text otherwise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/chartbind/internal/core"
	"github.com/JonMunkholm/chartbind/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// requestError marks malformed input that never reached the service.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return "invalid request: " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

var (
	requestMessage   = core.UserMessage{Message: "请求格式无效", Action: "检查请求参数后重试", Code: "REQ001"}
	rateLimitMessage = core.UserMessage{Message: "Too many requests", Action: "Please wait a moment before trying again", Code: "RATE001"}
)

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return http.StatusBadRequest
	case core.IsUserError(err), errors.Is(err, core.ErrNothingToRender):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrWorkspaceNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnknownChartKind), errors.Is(err, core.ErrInvalidSortOrder):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyRenders):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManyWorkspaces):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is core.MapError plus the web layer's own error kinds.
func userMessage(err error) core.UserMessage {
	var re *requestError
	if errors.As(err, &re) {
		return requestMessage
	}
	return core.MapError(err)
}

// respondError logs err and writes a user-friendly response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := userMessage(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		respondErrorJSON(w, msg, status)
		return
	}
	http.Error(w, msg.Message+" ("+msg.Code+")", status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
