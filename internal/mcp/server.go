// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/explode/domain/tablefunc"
	"github.com/helixml/explode/internal/database"
)

// DefaultRowLimit caps the rows returned by one explode tool call.
const DefaultRowLimit = 1000

// FunctionLister lists registered table functions.
type FunctionLister interface {
	All() []tablefunc.Function
}

// Evaluator evaluates a table function in process. TimeoutContext bounds
// the time spent draining a sequence.
type Evaluator interface {
	Values(ctx context.Context, name string, args ...any) (iter.Seq[int64], error)
	TimeoutContext(ctx context.Context) (context.Context, context.CancelFunc)
}

// Querier runs SQL.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) ([]database.Row, error)
}

// Server wraps the MCP server with explode tools.
type Server struct {
	mcpServer *server.MCPServer
	functions FunctionLister
	evaluator Evaluator
	querier   Querier
	logger    *slog.Logger
}

// NewServer creates a new MCP server. querier may be nil, in which case the
// query tool is not offered.
func NewServer(functions FunctionLister, evaluator Evaluator, querier Querier, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		functions: functions,
		evaluator: evaluator,
		querier:   querier,
		logger:    logger,
	}

	mcpServer := server.NewMCPServer(
		"explode",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	listTool := mcp.NewTool("list_functions",
		mcp.WithDescription("List the table functions that can be evaluated"),
	)
	mcpServer.AddTool(listTool, s.handleListFunctions)

	explodeTool := mcp.NewTool("explode",
		mcp.WithDescription("Evaluate a table function and return the integers it produces. "+
			"explode_times takes [high], [low, high] or [low, high, increment]."),
		mcp.WithArray("args",
			mcp.Required(),
			mcp.Description("Integer arguments, in order"),
			mcp.Items(map[string]any{"type": []string{"integer", "null"}}),
		),
		mcp.WithString("name",
			mcp.Description("Function name (default: explode_times)"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of values to return (default: %d)", DefaultRowLimit)),
		),
	)
	mcpServer.AddTool(explodeTool, s.handleExplode)

	if s.querier != nil {
		queryTool := mcp.NewTool("query",
			mcp.WithDescription("Run a SQL query. Table functions can be used in the FROM clause, "+
				"e.g. SELECT value FROM explode_times(1, 10, 3)"),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description("The SQL statement"),
			),
		)
		mcpServer.AddTool(queryTool, s.handleQuery)
	}
}

// registerResources publishes each function's documentation.
func (s *Server) registerResources(mcpServer *server.MCPServer) {
	for _, fn := range s.functions.All() {
		uri := NewFunctionURI(fn.Name()).String()
		resource := mcp.NewResource(uri, fn.Name(),
			mcp.WithResourceDescription("Documentation for the "+fn.Name()+" table function"),
			mcp.WithMIMEType("text/plain"),
		)
		text := fn.Description()
		mcpServer.AddResource(resource, func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{
				mcp.TextResourceContents{URI: uri, MIMEType: "text/plain", Text: text},
			}, nil
		})
	}
}

type functionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MinArgs     int    `json:"min_args"`
	MaxArgs     int    `json:"max_args"`
	URI         string `json:"uri"`
}

func (s *Server) handleListFunctions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fns := s.functions.All()
	infos := make([]functionInfo, 0, len(fns))
	for _, fn := range fns {
		sig := fn.Signature()
		infos = append(infos, functionInfo{
			Name:        fn.Name(),
			Description: fn.Description(),
			MinArgs:     sig.Min,
			MaxArgs:     sig.Max,
			URI:         NewFunctionURI(fn.Name()).String(),
		})
	}
	return jsonResult(infos)
}

type explodeResult struct {
	Function  string  `json:"function"`
	URI       string  `json:"uri"`
	Values    []int64 `json:"values"`
	Count     int     `json:"count"`
	Truncated bool    `json:"truncated"`
}

func (s *Server) handleExplode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "explode_times")
	limit := request.GetInt("limit", DefaultRowLimit)
	if limit < 1 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}

	raw, ok := request.GetArguments()["args"].([]any)
	if !ok {
		return mcp.NewToolResultError("args is required and must be an array"), nil
	}
	args := make([]any, len(raw))
	for i, v := range raw {
		arg, err := normalizeArg(i, v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		args[i] = arg
	}

	ctx, cancel := s.evaluator.TimeoutContext(ctx)
	defer cancel()

	seq, err := s.evaluator.Values(ctx, name, args...)
	if err != nil {
		s.logger.DebugContext(ctx, "explode rejected", slog.String("function", name), slog.Any("error", err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := explodeResult{
		Function: name,
		URI:      NewFunctionURI(name).WithArgs(args...).String(),
		Values:   []int64{},
	}
	for v := range seq {
		if ctx.Err() != nil {
			break
		}
		if len(result.Values) == limit {
			result.Truncated = true
			break
		}
		result.Values = append(result.Values, v)
	}
	if err := ctx.Err(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result.Count = len(result.Values)
	return jsonResult(result)
}

type queryResult struct {
	Rows  []map[string]any `json:"rows"`
	Count int              `json:"count"`
}

func (s *Server) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("sql")
	if err != nil {
		return mcp.NewToolResultError("sql is required"), nil
	}

	rows, err := s.querier.Query(ctx, query)
	if err != nil {
		s.logger.DebugContext(ctx, "query failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	result := queryResult{Rows: make([]map[string]any, len(rows)), Count: len(rows)}
	for i, r := range rows {
		result.Rows[i] = r.Map()
	}
	return jsonResult(result)
}

// maxExactInt bounds the integers a JSON number decoded as float64 carries
// exactly. Larger magnitudes may already have been rounded.
const maxExactInt = 1 << 53

// normalizeArg turns whole JSON numbers into int64 so they validate as
// integers. Everything else is passed through for validation to reject.
func normalizeArg(position int, v any) (any, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return v, nil
	}
	if math.Abs(f) >= maxExactInt {
		return nil, fmt.Errorf("argument %d: %.0f is outside ±2^53 and cannot be passed exactly as a JSON number", position, f)
	}
	return int64(f), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
