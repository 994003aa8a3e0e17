package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenbakiak/skillet"
	"github.com/zenbakiak/skillet/config"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Hooks.Dir = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}
	ts := httptest.NewServer(NewHTTPServer(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postEval(t *testing.T, ts *httptest.Server, body interface{}) HTTPEvalResponse {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/eval", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out HTTPEvalResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "cache")
}

func TestEvalPost(t *testing.T) {
	ts := newTestServer(t, nil)
	out := postEval(t, ts, map[string]interface{}{
		"expression": "= 2 + 3 * 4",
	})
	require.True(t, out.Success, "error: %s", out.Error)
	assert.Equal(t, 14.0, out.Result)
	assert.GreaterOrEqual(t, out.ExecutionTimeMS, 0.0)
	assert.NotZero(t, out.RequestID)
}

func TestEvalPostWithArguments(t *testing.T) {
	ts := newTestServer(t, nil)
	out := postEval(t, ts, map[string]interface{}{
		"expression": "= SUM(:sales, 1000)",
		"arguments":  map[string]interface{}{"sales": 5000},
	})
	require.True(t, out.Success, "error: %s", out.Error)
	assert.Equal(t, 6000.0, out.Result)
}

func TestEvalPostIncludeVariables(t *testing.T) {
	ts := newTestServer(t, nil)
	out := postEval(t, ts, map[string]interface{}{
		"expression":        ":a := 10; :b := 20; :a * :b",
		"include_variables": true,
	})
	require.True(t, out.Success, "error: %s", out.Error)
	assert.Equal(t, 200.0, out.Result)
	assert.Equal(t, 10.0, out.Variables["a"])
	assert.Equal(t, 20.0, out.Variables["b"])
}

func TestEvalPostIncludeVariablesSubset(t *testing.T) {
	ts := newTestServer(t, nil)
	out := postEval(t, ts, map[string]interface{}{
		"expression":        ":a := 1; :b := 2; :a",
		"include_variables": []string{"b"},
	})
	require.True(t, out.Success, "error: %s", out.Error)
	assert.NotContains(t, out.Variables, "a")
	assert.Equal(t, 2.0, out.Variables["b"])
}

func TestEvalGet(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + `/eval?expr=1%2B2`)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out HTTPEvalResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.Success, "error: %s", out.Error)
	assert.Equal(t, 3.0, out.Result)
}

func TestEvalReportsErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	out := postEval(t, ts, map[string]interface{}{
		"expression": "= 1 / 0",
	})
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "division by zero")

	out = postEval(t, ts, map[string]interface{}{
		"expression": "= 2 +",
	})
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Error)
}

func TestEvalAuthToken(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.AuthToken = "sesame"
	})

	raw := []byte(`{"expression": "1+1"}`)
	resp, err := http.Post(ts.URL+"/eval", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/eval", bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sesame")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminUploadListDelete(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.AdminToken = "admin"
	})
	defer skillet.UnregisterPlugin("TRIPLE")

	hook := `
// @name: TRIPLE
// @min_args: 1
// @max_args: 1
function execute(args) { return args[0] * 3; }
`
	body, _ := json.Marshal(map[string]string{"content": hook})

	// Unauthorized without the admin token.
	resp, err := http.Post(ts.URL+"/upload-js", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/upload-js", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer admin")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The uploaded function evaluates.
	out := postEval(t, ts, map[string]interface{}{"expression": "TRIPLE(7)"})
	require.True(t, out.Success, "error: %s", out.Error)
	assert.Equal(t, 21.0, out.Result)

	// It shows up in the listing.
	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/list-js", nil)
	req.Header.Set("Authorization", "Bearer admin")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var listing struct {
		Success   bool                     `json:"success"`
		Functions []map[string]interface{} `json:"functions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	resp.Body.Close()
	found := false
	for _, fn := range listing.Functions {
		if fn["name"] == "TRIPLE" {
			found = true
		}
	}
	assert.True(t, found, "TRIPLE should be listed")

	// Delete removes it.
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/delete-js?name=TRIPLE", nil)
	req.Header.Set("Authorization", "Bearer admin")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out = postEval(t, ts, map[string]interface{}{"expression": "TRIPLE(7)"})
	assert.False(t, out.Success)
}
