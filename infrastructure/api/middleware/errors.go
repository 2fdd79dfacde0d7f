package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/explode"
	"github.com/helixml/explode/domain/argument"
	"github.com/helixml/explode/domain/tablefunc"
	"github.com/helixml/explode/infrastructure/api/jsonapi"
)

// APIError carries an explicit HTTP status.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError. cause may be nil.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// BadRequest wraps err as a 400 error.
func BadRequest(err error) *APIError {
	return NewAPIError(http.StatusBadRequest, err.Error(), err)
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.cause }

// StatusFor maps an error to an HTTP status and a JSON:API error title.
func StatusFor(err error) (int, string) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code(), http.StatusText(apiErr.Code())
	case errors.Is(err, tablefunc.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, argument.ErrValidation):
		return http.StatusBadRequest, "Validation Error"
	case errors.Is(err, explode.ErrNoDatabase), errors.Is(err, explode.ErrClientClosed):
		return http.StatusServiceUnavailable, "Service Unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Query Timeout"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// WriteError writes err as a JSON:API error document.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, title := StatusFor(err)

	detail := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		detail = apiErr.Message()
	}

	if logger != nil {
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	e := jsonapi.NewError(fmt.Sprint(status), title, detail)
	e.ID = middleware.GetReqID(r.Context())
	WriteJSON(w, status, jsonapi.NewErrorResponse(e))
}

// WriteJSON writes data as a JSON:API response body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
