package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hypersmurf/internal/data"
	"hypersmurf/internal/ensemble"
)

func testServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	opts := ensemble.DefaultOptions()
	opts.Partitions = 3
	opts.Learner = "dt"
	opts.MaxDepth = 4
	ens := ensemble.New(opts)
	require.NoError(t, ens.Build(context.Background(), data.GenerateExpenses(2000, 0.05, 1)))
	return &server{ens: ens, positive: 1, apiKey: "k", logger: zap.NewNop()}
}

func do(t *testing.T, r http.Handler, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var expense = map[string]any{"values": map[string]any{
	"amount":        250.0,
	"interval_days": -2.0,
	"same_approver": 1.0,
	"category":      "Taxi",
}}

func TestHealthIsOpen(t *testing.T) {
	r := testServer(t).router()
	w := do(t, r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 3.0, body["members"])
}

func TestPredictRequiresKey(t *testing.T) {
	r := testServer(t).router()
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/predict", "", expense).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/predict", "wrong", expense).Code)
}

func TestPredict(t *testing.T) {
	r := testServer(t).router()
	w := do(t, r, http.MethodPost, "/predict", "k", expense)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Distribution []float64 `json:"distribution"`
		Labels       []string  `json:"labels"`
		Score        float64   `json:"score"`
		Risk         string    `json:"risk"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Distribution, 2)
	assert.Equal(t, []string{"legit", "fraud"}, body.Labels)
	assert.InDelta(t, body.Distribution[1], body.Score, 1e-12)
	assert.NotEmpty(t, body.Risk)
}

func TestPredictRejectsBadValues(t *testing.T) {
	r := testServer(t).router()
	bad := map[string]any{"values": map[string]any{"category": "Yacht"}}
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/predict", "k", bad).Code)
	wrongType := map[string]any{"values": map[string]any{"amount": "a lot"}}
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/predict", "k", wrongType).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/predict", "k", nil).Code)
}

func TestBatchAndMembers(t *testing.T) {
	r := testServer(t).router()
	w := do(t, r, http.MethodPost, "/batch", "k", []any{expense, expense})
	require.Equal(t, http.StatusOK, w.Code)
	var batch []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	assert.Len(t, batch, 2)

	w = do(t, r, http.MethodPost, "/members", "k", expense)
	require.Equal(t, http.StatusOK, w.Code)
	var members struct {
		Scores []float64 `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	assert.Len(t, members.Scores, 3)

	w = do(t, r, http.MethodGet, "/model", "k", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "=== Member 2")
}

func TestRiskBand(t *testing.T) {
	assert.Equal(t, "high", riskBand(0.99))
	assert.Equal(t, "medium", riskBand(0.8))
	assert.Equal(t, "low", riskBand(0.5))
	assert.Equal(t, "very_low", riskBand(0.1))
}
