package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/helixml/explode/application/service"
	"github.com/helixml/explode/domain/tablefunc"
	"github.com/helixml/explode/internal/database"
	"github.com/helixml/explode/internal/log"
)

// registryEvaluator evaluates functions from a registry in process.
type registryEvaluator struct {
	registry *tablefunc.Registry
	expired  bool
}

// TimeoutContext returns an already expired context when expired is set.
func (e *registryEvaluator) TimeoutContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if !e.expired {
		return ctx, func() {}
	}
	return context.WithDeadline(ctx, time.Unix(0, 0))
}

func (e *registryEvaluator) Values(ctx context.Context, name string, args ...any) (iter.Seq[int64], error) {
	fn, err := e.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return service.Prepare(ctx, fn, args)
}

// fakeQuerier returns canned rows or a canned error.
type fakeQuerier struct {
	rows []database.Row
	err  error
	sql  string
}

func (f *fakeQuerier) Query(_ context.Context, query string, _ ...any) ([]database.Row, error) {
	f.sql = query
	return f.rows, f.err
}

// sendMessage marshals a JSON-RPC request, sends it through HandleMessage,
// and returns the JSONRPCResponse. It fatals on marshal failure or unexpected
// response type.
func sendMessage(t *testing.T, srv *Server, method string, id int, params map[string]any) mcp.JSONRPCResponse {
	t.Helper()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	result := srv.MCPServer().HandleMessage(context.Background(), raw)

	resp, ok := result.(mcp.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T: %+v", result, result)
	}
	return resp
}

// resultJSON re-marshals the Result field through JSON into dst.
func resultJSON(t *testing.T, resp mcp.JSONRPCResponse, dst any) {
	t.Helper()
	b, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		t.Fatalf("unmarshal result into %T: %v", dst, err)
	}
}

// callTool invokes a tool and returns the decoded result.
func callTool(t *testing.T, srv *Server, name string, args map[string]any) mcp.CallToolResult {
	t.Helper()
	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      name,
		"arguments": args,
	})
	var result mcp.CallToolResult
	resultJSON(t, resp, &result)
	return result
}

// textFromContent extracts the text of the first content item.
func textFromContent(t *testing.T, result mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func testServer(t *testing.T, querier Querier) *Server {
	t.Helper()
	return newTestServer(t, querier, false)
}

func newTestServer(t *testing.T, querier Querier, expired bool) *Server {
	t.Helper()
	registry, err := service.NewRegistry("", log.Discard())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	evaluator := &registryEvaluator{registry: registry, expired: expired}
	return NewServer(registry, evaluator, querier, "0.1.0-test", log.Discard())
}

func initializeParams() map[string]any {
	return map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "0.0.1",
		},
	}
}

func TestServer_Initialize(t *testing.T) {
	srv := testServer(t, nil)
	resp := sendMessage(t, srv, "initialize", 1, initializeParams())

	var result mcp.InitializeResult
	resultJSON(t, resp, &result)

	if result.ServerInfo.Name != "explode" {
		t.Errorf("expected server name explode, got %s", result.ServerInfo.Name)
	}
	if result.ServerInfo.Version != "0.1.0-test" {
		t.Errorf("expected version 0.1.0-test, got %s", result.ServerInfo.Version)
	}
	if result.Capabilities.Tools == nil {
		t.Error("expected tool capabilities")
	}
}

func TestServer_ListTools(t *testing.T) {
	tests := []struct {
		name    string
		querier Querier
		want    []string
	}{
		{"without querier", nil, []string{"explode", "list_functions"}},
		{"with querier", &fakeQuerier{}, []string{"explode", "list_functions", "query"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, tt.querier)
			resp := sendMessage(t, srv, "tools/list", 1, nil)

			var result mcp.ListToolsResult
			resultJSON(t, resp, &result)

			got := map[string]bool{}
			for _, tool := range result.Tools {
				got[tool.Name] = true
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d tools, got %d", len(tt.want), len(got))
			}
			for _, name := range tt.want {
				if !got[name] {
					t.Errorf("missing tool %s", name)
				}
			}
		})
	}
}

func TestServer_ListFunctions(t *testing.T) {
	srv := testServer(t, nil)
	result := callTool(t, srv, "list_functions", map[string]any{})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", textFromContent(t, result))
	}

	var infos []functionInfo
	if err := json.Unmarshal([]byte(textFromContent(t, result)), &infos); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 function, got %d", len(infos))
	}
	info := infos[0]
	if info.Name != "explode_times" || info.MinArgs != 1 || info.MaxArgs != 3 {
		t.Errorf("unexpected function info: %+v", info)
	}
	if info.URI != "explode://functions/explode_times" {
		t.Errorf("unexpected uri %s", info.URI)
	}
}

func TestServer_Explode(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want []int64
	}{
		{"high only", map[string]any{"args": []any{3}}, []int64{1, 2, 3}},
		{"low and high", map[string]any{"args": []any{-1, 1}}, []int64{-1, 0, 1}},
		{"with increment", map[string]any{"args": []any{1, 10, 3}}, []int64{1, 4, 7, 10}},
		{"explicit name", map[string]any{"name": "EXPLODE_TIMES", "args": []any{2}}, []int64{1, 2}},
		{"empty range", map[string]any{"args": []any{5, 1}}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, nil)
			result := callTool(t, srv, "explode", tt.args)
			if result.IsError {
				t.Fatalf("unexpected tool error: %s", textFromContent(t, result))
			}

			var got explodeResult
			if err := json.Unmarshal([]byte(textFromContent(t, result)), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(got.Values) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got.Values)
			}
			for i := range tt.want {
				if got.Values[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got.Values)
				}
			}
			if got.Count != len(tt.want) || got.Truncated {
				t.Errorf("unexpected count %d truncated %v", got.Count, got.Truncated)
			}
		})
	}
}

func TestServer_Explode_Limit(t *testing.T) {
	srv := testServer(t, nil)
	result := callTool(t, srv, "explode", map[string]any{"args": []any{100}, "limit": 5})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", textFromContent(t, result))
	}

	var got explodeResult
	if err := json.Unmarshal([]byte(textFromContent(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Count != 5 || !got.Truncated {
		t.Errorf("expected 5 truncated values, got %d truncated %v", got.Count, got.Truncated)
	}
	if got.URI != "explode://functions/explode_times/rows?arg=100" {
		t.Errorf("unexpected uri %s", got.URI)
	}
}

func TestServer_Explode_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"null argument", map[string]any{"args": []any{1, nil}}, "unexpected null argument"},
		{"zero increment", map[string]any{"args": []any{1, 5, 0}}, "increment must be positive"},
		{"too many", map[string]any{"args": []any{1, 2, 3, 4}}, "expected between 1 and 3 arguments, got 4"},
		{"no arguments", map[string]any{"args": []any{}}, "expected between 1 and 3 arguments, got 0"},
		{"fractional", map[string]any{"args": []any{1.5}}, "expected primitive integer"},
		{"text", map[string]any{"args": []any{"five"}}, "expected primitive integer"},
		{"missing args", map[string]any{}, "args is required"},
		{"unknown function", map[string]any{"name": "nope", "args": []any{1}}, "nope"},
		{"bad limit", map[string]any{"args": []any{1}, "limit": 0}, "limit must be positive"},
		{"beyond exact json integers", map[string]any{"args": []any{int64(9007199254740993)}}, "argument 0: 9007199254740992 is outside ±2^53"},
		{"huge number", map[string]any{"args": []any{1, 1e300}}, "argument 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, nil)
			result := callTool(t, srv, "explode", tt.args)
			if !result.IsError {
				t.Fatal("expected tool error")
			}
			if text := textFromContent(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, text)
			}
		})
	}
}

func TestServer_Query(t *testing.T) {
	querier := &fakeQuerier{rows: []database.Row{
		database.NewRow([]string{"value"}, []any{int64(1)}),
		database.NewRow([]string{"value"}, []any{int64(2)}),
	}}
	srv := testServer(t, querier)

	result := callTool(t, srv, "query", map[string]any{"sql": "SELECT value FROM explode_times(2)"})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", textFromContent(t, result))
	}
	if querier.sql != "SELECT value FROM explode_times(2)" {
		t.Errorf("unexpected sql %q", querier.sql)
	}

	var got queryResult
	if err := json.Unmarshal([]byte(textFromContent(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Count != 2 || len(got.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", got)
	}
	if got.Rows[1]["value"] != float64(2) {
		t.Errorf("expected value 2, got %v", got.Rows[1]["value"])
	}
}

func TestServer_Query_Error(t *testing.T) {
	srv := testServer(t, &fakeQuerier{err: errors.New("no such table: missing")})

	result := callTool(t, srv, "query", map[string]any{"sql": "SELECT * FROM missing"})
	if !result.IsError {
		t.Fatal("expected tool error")
	}
	if text := textFromContent(t, result); !strings.Contains(text, "no such table: missing") {
		t.Errorf("unexpected error text %q", text)
	}
}

func TestServer_ReadResource(t *testing.T) {
	srv := testServer(t, nil)

	resp := sendMessage(t, srv, "resources/list", 1, nil)
	var list mcp.ListResourcesResult
	resultJSON(t, resp, &list)
	if len(list.Resources) != 1 || list.Resources[0].URI != "explode://functions/explode_times" {
		t.Fatalf("unexpected resources: %+v", list.Resources)
	}

	resp = sendMessage(t, srv, "resources/read", 2, map[string]any{"uri": "explode://functions/explode_times"})
	var read struct {
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
	}
	resultJSON(t, resp, &read)
	if len(read.Contents) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(read.Contents))
	}
	if !strings.Contains(read.Contents[0].Text, "explode_times") {
		t.Errorf("expected documentation text, got %q", read.Contents[0].Text)
	}
}

func TestServer_Explode_LargestExactIntegers(t *testing.T) {
	srv := testServer(t, nil)
	result := callTool(t, srv, "explode", map[string]any{"args": []any{int64(9007199254740990), int64(9007199254740991)}})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", textFromContent(t, result))
	}

	var got explodeResult
	if err := json.Unmarshal([]byte(textFromContent(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Values) != 2 || got.Values[0] != 9007199254740990 || got.Values[1] != 9007199254740991 {
		t.Errorf("unexpected values %v", got.Values)
	}
}

func TestServer_Explode_Timeout(t *testing.T) {
	srv := newTestServer(t, nil, true)
	result := callTool(t, srv, "explode", map[string]any{"args": []any{1000}})
	if !result.IsError {
		t.Fatal("expected tool error")
	}
	if text := textFromContent(t, result); !strings.Contains(text, "deadline exceeded") {
		t.Errorf("expected deadline error, got %q", text)
	}
}

func TestNormalizeArg(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{float64(3), int64(3)},
		{float64(-7), int64(-7)},
		{float64(1<<53 - 1), int64(1<<53 - 1)},
		{1.5, 1.5},
		{nil, nil},
		{"x", "x"},
	}
	for _, tt := range tests {
		got, err := normalizeArg(0, tt.in)
		if err != nil {
			t.Fatalf("normalizeArg(%v): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("normalizeArg(%v) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}

func TestNormalizeArg_RejectsInexactIntegers(t *testing.T) {
	for _, f := range []float64{1 << 53, -(1 << 53), 1e19} {
		if _, err := normalizeArg(2, f); err == nil {
			t.Errorf("normalizeArg(%v): expected error", f)
		}
	}
}
