// Package v1 implements the /api/v1 routes.
package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/explode"
	"github.com/helixml/explode/infrastructure/api/jsonapi"
	"github.com/helixml/explode/infrastructure/api/middleware"
	"github.com/helixml/explode/infrastructure/api/v1/dto"
)

// Row limits for GET /functions/{name}/rows.
const (
	DefaultRowLimit = 1000
	MaxRowLimit     = 100000
)

// FunctionsRouter handles table function endpoints.
type FunctionsRouter struct {
	client *explode.Client
	logger *slog.Logger
}

// NewFunctionsRouter creates a new FunctionsRouter.
func NewFunctionsRouter(client *explode.Client) *FunctionsRouter {
	return &FunctionsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for function endpoints.
func (r *FunctionsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Get("/{name}", r.Get)
	router.Get("/{name}/rows", r.Rows)

	return router
}

// List handles GET /api/v1/functions.
func (r *FunctionsRouter) List(w http.ResponseWriter, req *http.Request) {
	fns := r.client.Functions.All()
	resources := make([]*jsonapi.Resource, 0, len(fns))
	for _, fn := range fns {
		resources = append(resources, jsonapi.NewResource(
			"function", fn.Name(), dto.NewFunctionAttributes(fn), functionLink(fn.Name()),
		))
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(resources))
}

// Get handles GET /api/v1/functions/{name}.
func (r *FunctionsRouter) Get(w http.ResponseWriter, req *http.Request) {
	fn, err := r.client.Functions.Lookup(chi.URLParam(req, "name"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(
		jsonapi.NewResource("function", fn.Name(), dto.NewFunctionAttributes(fn), functionLink(fn.Name())),
	))
}

// Rows handles GET /api/v1/functions/{name}/rows?arg=1&arg=10&arg=3.
// The literal arg value "null" passes a null argument.
func (r *FunctionsRouter) Rows(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := r.client.TimeoutContext(req.Context())
	defer cancel()
	name := chi.URLParam(req, "name")
	query := req.URL.Query()

	args, err := parseArgs(query["arg"])
	if err != nil {
		middleware.WriteError(w, req, middleware.BadRequest(err), r.logger)
		return
	}
	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		middleware.WriteError(w, req, middleware.BadRequest(err), r.logger)
		return
	}

	seq, err := r.client.Values(ctx, name, args...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	attrs := dto.RowsAttributes{Function: name, Args: args, Values: []int64{}}
	for v := range seq {
		if err := ctx.Err(); err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
		if len(attrs.Values) == limit {
			attrs.Truncated = true
			break
		}
		attrs.Values = append(attrs.Values, v)
	}
	attrs.Count = len(attrs.Values)

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(
		jsonapi.NewResource("rows", name, attrs, req.URL.RequestURI()),
	))
}

func functionLink(name string) string {
	return "/api/v1/functions/" + name
}

func parseArgs(raw []string) ([]any, error) {
	args := make([]any, len(raw))
	for i, s := range raw {
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "null") {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %q is not an integer", i, s)
		}
		args[i] = n
	}
	return args, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return DefaultRowLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxRowLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d, got %q", MaxRowLimit, raw)
	}
	return n, nil
}
