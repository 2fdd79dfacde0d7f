package middleware

import (
	"net/http"

	"github.com/helixml/explode/infrastructure/api/jsonapi"
)

// APIKeyHeader is the request header carrying the API key.
const APIKeyHeader = "X-API-KEY"

// AuthConfig holds the accepted API keys. With no keys, auth is disabled.
type AuthConfig struct {
	keys map[string]struct{}
}

// NewAuthConfig creates an AuthConfig from keys, ignoring empty ones.
func NewAuthConfig(keys []string) AuthConfig {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return AuthConfig{keys: set}
}

// Enabled reports whether any key is configured.
func (c AuthConfig) Enabled() bool { return len(c.keys) > 0 }

func (c AuthConfig) allows(key string) bool {
	_, ok := c.keys[key]
	return ok
}

// WriteProtect requires a valid API key on every method except GET, HEAD
// and OPTIONS.
func WriteProtect(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if !config.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				unauthorized(w, APIKeyHeader+" header is required")
				return
			}
			if !config.allows(key) {
				unauthorized(w, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusUnauthorized, jsonapi.NewErrorResponse(
		jsonapi.NewError("401", "Unauthorized", detail),
	))
}
