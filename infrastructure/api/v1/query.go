package v1

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/explode"
	"github.com/helixml/explode/infrastructure/api/jsonapi"
	"github.com/helixml/explode/infrastructure/api/middleware"
	"github.com/helixml/explode/infrastructure/api/v1/dto"
)

const maxQueryBody = 1 << 20

// QueryRouter handles raw SQL queries.
type QueryRouter struct {
	client *explode.Client
	logger *slog.Logger
}

// NewQueryRouter creates a new QueryRouter.
func NewQueryRouter(client *explode.Client) *QueryRouter {
	return &QueryRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for query endpoints.
func (r *QueryRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Query)

	return router
}

// Query handles POST /api/v1/query.
//
//	{"sql": "SELECT value FROM explode_times(?, ?)", "args": [1, 5]}
func (r *QueryRouter) Query(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	body, err := io.ReadAll(io.LimitReader(req.Body, maxQueryBody))
	if err != nil {
		middleware.WriteError(w, req, middleware.BadRequest(err), r.logger)
		return
	}
	q, args, err := dto.DecodeQueryRequest(body)
	if err != nil {
		middleware.WriteError(w, req, middleware.BadRequest(err), r.logger)
		return
	}

	rows, err := r.client.Query(ctx, q.SQL, args...)
	if err != nil {
		// SQLite reports both syntax errors and rejected function arguments
		// as plain errors; both are the caller's fault.
		status, _ := middleware.StatusFor(err)
		if status == http.StatusInternalServerError {
			err = middleware.BadRequest(err)
		}
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	attrs := dto.QueryAttributes{Columns: []string{}, Rows: make([][]any, 0, len(rows))}
	for i, row := range rows {
		if i == 0 {
			attrs.Columns = row.Columns()
		}
		attrs.Rows = append(attrs.Rows, row.Values())
	}
	attrs.Count = len(attrs.Rows)

	id := chimiddleware.GetReqID(ctx)
	if id == "" {
		id = "query"
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(
		jsonapi.NewResource("query_result", id, attrs, ""),
	))
}
