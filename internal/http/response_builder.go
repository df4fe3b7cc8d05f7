package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"agency/internal/auth"
	"agency/internal/core"
	"agency/internal/docstore"
	applog "agency/internal/log"
	"agency/internal/middleware/trace"
)

// JSONResponseBuilder assembles a JSON response: status, headers, body.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	data       any
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// ErrorBody is the body of every non-2xx API response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func (b *JSONResponseBuilder) Error(message, requestID string) *JSONResponseBuilder {
	b.data = ErrorBody{Error: message, RequestID: requestID}
	return b
}

// Write sends the response. A nil body with status 204 writes no content.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.data == nil && b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.data)
}

// statusFor maps gateway errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingSub):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidTimestamp),
		errors.Is(err, core.ErrInvalidStatus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrStoreFailure):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and sends the mapped status. Server-side failures
// hide the error text from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := statusFor(err)
	logger := applog.FromContext(ctx)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "Request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldError, err)
		message = http.StatusText(status)
	} else {
		logger.WarnContext(ctx, "Request rejected",
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldError, err)
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	NewJSONResponse().
		Status(status).
		Error(message, trace.GetRequestID(ctx)).
		Write(w)
}

// badRequest answers malformed input that never reached the gateway.
func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Bad request",
		applog.FieldPath, r.URL.Path,
		applog.FieldError, message)
	NewJSONResponse().
		Status(http.StatusBadRequest).
		Error(message, trace.GetRequestID(r.Context())).
		Write(w)
}
