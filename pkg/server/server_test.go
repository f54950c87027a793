package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/reflections/pkg/cache"
	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/geom"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/observability/prom"
	"github.com/matzehuels/reflections/pkg/session"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/store/memory"
)

type testClient struct {
	t    *testing.T
	srv  *httptest.Server
	http *http.Client
}

func newTestServer(t *testing.T, opts Options) *testClient {
	t.Helper()
	if opts.Store == nil {
		opts.Store = memory.New()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore()
	}
	srv := httptest.NewServer(New(opts))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, srv: srv, http: &http.Client{Jar: jar}}
}

func (c *testClient) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, rd)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

func (c *testClient) login(name string) {
	c.t.Helper()
	resp, _ := c.do("POST", "/login", map[string]string{"username": name})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
}

func decodeErr(t *testing.T, data []byte) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestHealthz(t *testing.T) {
	c := newTestServer(t, Options{})
	resp, data := c.do("GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestRequiresLogin(t *testing.T) {
	c := newTestServer(t, Options{})
	for _, path := range []string{"/points", "/shards", "/mosaic.svg"} {
		resp, data := c.do("GET", path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, string(errors.ErrCodeUnauthorized), decodeErr(t, data).Error)
	}
}

func TestLoginValidation(t *testing.T) {
	c := newTestServer(t, Options{})

	resp, data := c.do("POST", "/login", map[string]string{"username": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeErr(t, data).Message, "username is required")

	resp, _ = c.do("POST", "/login", map[string]any{"user": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	c := newTestServer(t, Options{})
	c.login("ada")

	resp, _ := c.do("GET", "/shards", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do("POST", "/logout", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = c.do("GET", "/shards", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPoints(t *testing.T) {
	c := newTestServer(t, Options{})
	c.login("ada")

	resp, data := c.do("GET", "/points", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, string(errors.ErrCodePatternNotFound), decodeErr(t, data).Error)

	resp, _ = c.do("PUT", "/points", mosaic.DefaultWorkingSet())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "PUT before POST")

	resp, data = c.do("POST", "/points", map[string]any{
		"rotationCount": 2,
		"points":        [][2]float64{{0.5, 0.5}, {3, -3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"points":[[0.5,0.5],[1,-1]],"rotationCount":2}`, string(data))

	resp, data = c.do("PUT", "/points", map[string]any{"rotationCount": 0, "points": [][2]float64{{0, 0}}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	resp, data = c.do("GET", "/points", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"points":[[0,0]],"rotationCount":0}`, string(data))

	resp, data = c.do("POST", "/points", map[string]any{"rotationCount": 99, "points": [][2]float64{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(errors.ErrCodeInvalidRotation), decodeErr(t, data).Error)

	resp, _ = c.do("DELETE", "/points", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = c.do("GET", "/points", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestShards(t *testing.T) {
	c := newTestServer(t, Options{})
	c.login("ada")

	resp, data := c.do("GET", "/shards", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(data))

	resp, data = c.do("POST", "/shards", map[string]any{"spark": "a spark", "text": "hello", "tint": 2, "glow": 1, "point": 0})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var list []shard.Shard
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	id := list[0].ID

	resp, data = c.do("PUT", "/shards/"+id, map[string]any{"spark": "a spark", "text": "edited", "tint": 3, "glow": 0, "point": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, "edited", list[0].Text)
	assert.Equal(t, 0, list[0].Point)

	resp, data = c.do("GET", "/shards/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got shard.Shard
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 3, got.Tint)

	resp, data = c.do("POST", "/shards/"+id+"/tarnish", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Tarnished)

	resp, data = c.do("DELETE", "/shards/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(data))
}

func TestShardValidation(t *testing.T) {
	c := newTestServer(t, Options{})
	c.login("ada")

	tests := []struct {
		name string
		body map[string]any
		code errors.Code
	}{
		{"missing text", map[string]any{"spark": "s", "tint": 1}, errors.ErrCodeInvalidInput},
		{"negative tint", map[string]any{"spark": "s", "text": "t", "tint": -1}, errors.ErrCodeInvalidInput},
		{"tint too large", map[string]any{"spark": "s", "text": "t", "tint": 9}, errors.ErrCodeInvalidShard},
		{"blank text", map[string]any{"spark": "s", "text": "   "}, errors.ErrCodeInvalidShard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := c.do("POST", "/shards", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, string(tt.code), decodeErr(t, data).Error)
		})
	}
}

func TestShardOwnership(t *testing.T) {
	owner := newTestServer(t, Options{})
	owner.login("ada")
	resp, data := owner.do("POST", "/shards", map[string]any{"spark": "s", "text": "mine"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var list []shard.Shard
	require.NoError(t, json.Unmarshal(data, &list))
	id := list[0].ID

	// A second client with its own cookie jar on the same server.
	jar, _ := cookiejar.New(nil)
	other := &testClient{t: t, srv: owner.srv, http: &http.Client{Jar: jar}}
	other.login("grace")

	for _, tc := range []struct{ method, path string }{
		{"GET", "/shards/" + id},
		{"DELETE", "/shards/" + id},
		{"POST", "/shards/" + id + "/tarnish"},
	} {
		resp, data := other.do(tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.method+" "+tc.path)
		assert.Equal(t, string(errors.ErrCodeShardNotFound), decodeErr(t, data).Error)
	}
	resp, _ = other.do("PUT", "/shards/"+id, map[string]any{"spark": "s", "text": "theirs"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMosaicSVG(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	c := newTestServer(t, Options{
		Cache:    fc,
		Renderer: mosaic.NewRenderer(mosaic.WithEdgeMode(mosaic.EdgeClip)),
	})
	c.login("ada")

	resp, data := c.do("GET", "/mosaic.svg?width=400&height=300", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(data), "<svg"), "body is not svg: %.40s", data)

	ws := mosaic.WorkingSet{Points: []geom.Point{{X: -0.3, Y: 0.2}, {X: 0.3, Y: -0.2}, {X: 0.1, Y: 0.4}}}
	resp, _ = c.do("POST", "/points", ws)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, first := c.do("GET", "/mosaic.svg?width=400&height=300", nil)
	_, second := c.do("GET", "/mosaic.svg?width=400&height=300", nil)
	assert.Equal(t, first, second)
	assert.NotEqual(t, data, first, "new points must change the artifact")

	resp, data = c.do("GET", "/mosaic.svg?width=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(errors.ErrCodeInvalidInput), decodeErr(t, data).Error)
}

func TestMosaicContent(t *testing.T) {
	ws := mosaic.WorkingSet{Points: []geom.Point{{X: 0.1, Y: 0.2}}, Rotation: 2}
	a, err := mosaicContent(ws, nil)
	require.NoError(t, err)
	b, err := mosaicContent(ws, []shard.Shard{{ID: "s1", Text: "moss"}})
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "shards must change the cache key input")

	bad := mosaic.WorkingSet{Points: []geom.Point{{X: math.NaN(), Y: 0}}}
	_, err = mosaicContent(bad, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInternal), "error = %v", err)
}

func TestMetricsEndpoint(t *testing.T) {
	c := newTestServer(t, Options{Metrics: prom.NewCollector("reflections")})
	c.do("GET", "/healthz", nil)

	resp, data := c.do("GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `reflections_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidShard, http.StatusBadRequest},
		{errors.ErrCodeInvalidPoints, http.StatusBadRequest},
		{errors.ErrCodeShardNotFound, http.StatusNotFound},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{errors.ErrCodeForbidden, http.StatusForbidden},
		{errors.ErrCodeNetwork, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
