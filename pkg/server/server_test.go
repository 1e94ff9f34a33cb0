package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vidtree/pkg/cache"
	"github.com/matzehuels/vidtree/pkg/observability"
	"github.com/matzehuels/vidtree/pkg/pipeline"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewMemoryCache(), cache.NewScopedKeyer(nil, "api:"), nil)
	ts := httptest.NewServer(New(runner, nil, opts...).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	body := decodeBody[HealthResponse](t, resp)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "dev", body.Version)
}

func TestLayoutEndpoint(t *testing.T) {
	ts := newTestServer(t)
	body := `{"items":[{"id":"a","weight":300},{"id":"b","weight":100}],"rect":{"x":0,"y":0,"w":400,"h":200},"mode":"linear"}`

	resp := post(t, ts, "/v1/layout", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	got := decodeBody[LayoutResponse](t, resp)
	assert.Equal(t, resp.Header.Get(RequestIDHeader), got.RequestID)
	assert.Equal(t, "linear", got.Mode)
	assert.False(t, got.Cached)
	require.Len(t, got.Blocks, 2)
	assert.Equal(t, [5]any{"a", 0, 0, 300, 200}, [5]any{got.Blocks[0].ID, got.Blocks[0].X, got.Blocks[0].Y, got.Blocks[0].W, got.Blocks[0].H})
	assert.Equal(t, [5]any{"b", 300, 0, 100, 200}, [5]any{got.Blocks[1].ID, got.Blocks[1].X, got.Blocks[1].Y, got.Blocks[1].W, got.Blocks[1].H})

	again := decodeBody[LayoutResponse](t, post(t, ts, "/v1/layout", body))
	assert.True(t, again.Cached)
	assert.Equal(t, got.Blocks, again.Blocks)
}

func TestLayoutEndpointOffsetRect(t *testing.T) {
	ts := newTestServer(t)
	body := `{"items":[{"id":"only","weight":5}],"rect":{"x":10,"y":20,"w":30,"h":40},"mode":"linear"}`

	got := decodeBody[LayoutResponse](t, post(t, ts, "/v1/layout", body))
	assert.Equal(t, treemap.Rect{X: 10, Y: 20, W: 30, H: 40}, got.Rect)
	require.Len(t, got.Blocks, 1)
	b := got.Blocks[0]
	assert.Equal(t, [4]int{10, 20, 30, 40}, [4]int{b.X, b.Y, b.W, b.H})
}

func TestLayoutEndpointDefaults(t *testing.T) {
	ts := newTestServer(t)
	got := decodeBody[LayoutResponse](t, post(t, ts, "/v1/layout", `{"items":[{"id":"x","weight":10}]}`))

	assert.Equal(t, "log", got.Mode)
	assert.Equal(t, treemap.Rect{W: pipeline.DefaultWidth, H: pipeline.DefaultHeight}, got.Rect)
	require.Len(t, got.Blocks, 1)
	assert.Equal(t, 1200*800, got.Blocks[0].Area())
}

func TestLayoutEndpointEmptyRect(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/layout", `{"items":[{"id":"x","weight":10}],"rect":{"w":0,"h":100}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeBody[LayoutResponse](t, resp)
	assert.NotNil(t, got.Blocks)
	assert.Empty(t, got.Blocks)
}

func TestHierarchicalEndpoint(t *testing.T) {
	ts := newTestServer(t)
	body := `{
		"items": [
			{"id": "big/1", "weight": 1},
			{"id": "big/2", "weight": 1},
			{"id": "big/3", "weight": 1},
			{"id": "small/1", "weight": 1}
		],
		"rect": {"x": 0, "y": 0, "w": 100, "h": 100},
		"mode": "linear",
		"group_by": "top",
		"margin": {"label": 10, "padding": 1}
	}`

	resp := post(t, ts, "/v1/layout/hierarchical", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[HierarchicalResponse](t, resp)

	assert.Equal(t, "top", got.GroupBy)
	assert.Equal(t, treemap.Margin{Label: 10, Padding: 1}, got.Margin)
	require.Len(t, got.Groups, 2)
	assert.Equal(t, "big", got.Groups[0].Key)
	assert.Equal(t, 7500, got.Groups[0].W*got.Groups[0].H)
	assert.Equal(t, treemap.Rect{X: 1, Y: 11, W: 73, H: 88}, got.Groups[0].Inner)
	assert.Len(t, got.Items, 4)
}

func TestHierarchicalEndpointDefaultMargin(t *testing.T) {
	ts := newTestServer(t)
	got := decodeBody[HierarchicalResponse](t, post(t, ts, "/v1/layout/hierarchical",
		`{"items":[{"id":"a/1","weight":1}],"margin":{"padding":0}}`))

	assert.Equal(t, "parent", got.GroupBy)
	assert.Equal(t, treemap.Margin{Label: pipeline.DefaultLabelMargin, Padding: 0}, got.Margin)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed json", "/v1/layout", `{"items":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", "/v1/layout", `{"itemz":[]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing id", "/v1/layout", `{"items":[{"weight":1}]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad mode", "/v1/layout", `{"items":[],"mode":"sqrt"}`, http.StatusBadRequest, "INVALID_WEIGHT_MODE"},
		{"bad group", "/v1/layout/hierarchical", `{"items":[],"group_by":"genre"}`, http.StatusBadRequest, "INVALID_GROUP_BY"},
		{"negative margin", "/v1/layout/hierarchical", `{"items":[],"margin":{"label":-1}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown route", "/v2/layout", `{}`, http.StatusNotFound, "NOT_FOUND"},
	}

	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decodeBody[errorBody](t, resp)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
			assert.Equal(t, resp.Header.Get(RequestIDHeader), body.RequestID)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/layout")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, WithMaxBodyBytes(64))
	big := `{"items":[{"id":"` + strings.Repeat("x", 200) + `","weight":1}]}`

	resp := post(t, ts, "/v1/layout", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestRequestIDEcho(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/layout", bytes.NewBufferString(`{"items":[]}`))
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
	assert.Equal(t, "abc-123", decodeBody[LayoutResponse](t, resp).RequestID)
}

type recordingHTTPHooks struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route)
	h.status = append(h.status, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	post(t, ts, "/v1/layout/hierarchical", `{"items":[]}`)
	post(t, ts, "/v1/layout", `{"items":[],"mode":"nope"}`)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	assert.Equal(t, []string{"/v1/layout/hierarchical", "/v1/layout"}, hooks.routes)
	assert.Equal(t, []int{http.StatusOK, http.StatusBadRequest}, hooks.status)
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- New(nil, nil).ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
