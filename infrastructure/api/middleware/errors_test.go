package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/explode"
	"github.com/helixml/explode/domain/argument"
	"github.com/helixml/explode/domain/tablefunc"
	"github.com/helixml/explode/infrastructure/api/jsonapi"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  int
		title string
	}{
		{"api error", NewAPIError(http.StatusConflict, "conflict", nil), http.StatusConflict, "Conflict"},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest, "Bad Request"},
		{"not found", fmt.Errorf("lookup: %w", tablefunc.ErrNotFound), http.StatusNotFound, "Not Found"},
		{"validation", fmt.Errorf("bind: %w", &argument.InvalidIncrementError{Increment: 0}), http.StatusBadRequest, "Validation Error"},
		{"no database", explode.ErrNoDatabase, http.StatusServiceUnavailable, "Service Unavailable"},
		{"closed", explode.ErrClientClosed, http.StatusServiceUnavailable, "Service Unavailable"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "Query Timeout"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, title := StatusFor(tt.err)
			if code != tt.code || title != tt.title {
				t.Errorf("StatusFor() = %d %q, want %d %q", code, title, tt.code, tt.title)
			}
		})
	}
}

func TestAPIError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewAPIError(http.StatusInsufficientStorage, "cannot write", cause)

	if err.Error() != "api error 507: cannot write: disk full" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to unwrap")
	}
	if NewAPIError(http.StatusTeapot, "tea", nil).Error() != "api error 418: tea" {
		t.Error("unexpected message without cause")
	}
}

func TestWriteError(t *testing.T) {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, BadRequest(errors.New("arg 0: \"x\" is not an integer")), nil)
	})
	handler = middleware.RequestID(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if ct := w.Header().Get("Content-Type"); ct != jsonapi.MediaType {
		t.Errorf("content type = %q", ct)
	}

	var doc jsonapi.Document
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(doc.Errors))
	}
	e := doc.Errors[0]
	if e.Status != "400" || e.Detail != "arg 0: \"x\" is not an integer" {
		t.Errorf("unexpected error %+v", e)
	}
	if e.ID == "" {
		t.Error("expected request id on error")
	}
}
