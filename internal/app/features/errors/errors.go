// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/system/apperr"
)

// retryAfterSeconds is sent with every 503 so clients back off before
// retrying a StoreUnavailable failure.
const retryAfterSeconds = 2

// Body is the JSON shape of every error response:
//
//	{ "error": { "kind": "not_found", "message": "group not found" } }
type Body struct {
	Error Detail `json:"error"`
}

type Detail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Status maps an error kind to its HTTP status code.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorLogger writes service errors as JSON responses and logs the ones
// that point at a server-side problem.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Write sends err to the client. Internal errors never leak their cause.
func (el *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := Status(kind)
	msg := err.Error()

	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("kind", kind.String()),
	}
	switch kind {
	case apperr.KindInternal:
		el.Log.Error("request failed", fields...)
		msg = "internal error"
	case apperr.KindCorruptRecord:
		el.Log.Error("corrupt record", fields...)
		msg = "stored record is malformed"
	case apperr.KindStoreUnavailable:
		el.Log.Warn("store unavailable", fields...)
		msg = "service temporarily unavailable, retry later"
	default:
		el.Log.Debug("request rejected", fields...)
	}
	if apperr.Retryable(err) {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}

	WriteJSON(w, status, Body{Error: Detail{Kind: kind.String(), Message: msg}})
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NotFound answers requests for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, Body{Error: Detail{Kind: apperr.KindNotFound.String(), Message: "no such route"}})
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, Body{Error: Detail{Kind: apperr.KindValidation.String(), Message: "method not allowed"}})
}

// TooManyRequests answers callers rejected by a rate limiter.
func TooManyRequests(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusTooManyRequests, Body{Error: Detail{Kind: "rate_limited", Message: "too many requests"}})
}
