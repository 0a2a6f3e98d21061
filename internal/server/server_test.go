package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/athenaq/internal/config"
	"github.com/roach88/athenaq/internal/metrics"
	"github.com/roach88/athenaq/internal/partition"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func generate(t *testing.T, s *Server, query, body, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate/athena/query?"+query, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestGenerate_PlainText(t *testing.T) {
	s := newTestServer(t, config.Default())

	w := generate(t, s, "fromDate=2020-04-09&toDate=2020-04-10", `["acme"]`, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t,
		`SELECT "stockid", "productcategory", "productname", "brandname", "shippedtimestamp" FROM "stock" `+
			`WHERE "brandname" IN ('acme') AND ("productcategory" IN ('toys','mobiles','essentials') OR ("productcategory" = 'furnitures' AND "productname" = 'sofa')) `+
			`AND (("year" = '2020' AND "month" IN ('04') AND "day" IN ('09','10'))) ORDER BY "shippedtimestamp" DESC`,
		w.Body.String())
}

func TestGenerate_JSON(t *testing.T) {
	s := newTestServer(t, config.Default())

	w := generate(t, s, "fromDate=2020-02-19&toDate=2020-04-19", `["acme","globex"]`, "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["query_id"])
	assert.Contains(t, body["sql"], `"brandname" IN ('acme','globex')`)
	assert.Equal(t, true, body["date_filter_applied"])
	assert.Len(t, body["filters"], 3)
	assert.NotContains(t, body, "diagnostic")
}

func TestGenerate_BadRequests(t *testing.T) {
	s := newTestServer(t, config.Default())

	testCases := []struct {
		name  string
		query string
		body  string
		code  string
	}{
		{"missing from", "toDate=2020-04-10", `["acme"]`, "BAD_REQUEST"},
		{"malformed date", "fromDate=2020-13-01&toDate=2020-04-10", `["acme"]`, "BAD_REQUEST"},
		{"body not an array", "fromDate=2020-04-01&toDate=2020-04-10", `{"brand":"acme"}`, "BAD_REQUEST"},
		{"empty brands", "fromDate=2020-04-01&toDate=2020-04-10", `[]`, "NO_BRANDS"},
		{"blank brands", "fromDate=2020-04-01&toDate=2020-04-10", `["  "]`, "NO_BRANDS"},
		{"inverted range", "fromDate=2020-04-10&toDate=2020-04-01", `["acme"]`, string(partition.ErrCodeInvalidRange)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := generate(t, s, tc.query, tc.body, "")
			require.Equal(t, http.StatusBadRequest, w.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestGenerate_DegradedConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Partition.Month = ""
	s := newTestServer(t, cfg)

	w := generate(t, s, "fromDate=2020-04-09&toDate=2020-04-10", `["acme"]`, "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var body generateResponseJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.DateFilterApplied)
	assert.NotEmpty(t, body.Diagnostic)
	assert.NotContains(t, body.SQL, `"year"`)
}

type generateResponseJSON struct {
	SQL               string `json:"sql"`
	DateFilterApplied bool   `json:"date_filter_applied"`
	Diagnostic        string `json:"diagnostic"`
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, config.Default())

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, config.Default())
	generate(t, s, "fromDate=2020-04-09&toDate=2020-04-10", `["acme"]`, "")
	generate(t, s, "fromDate=2020-04-09&toDate=2020-04-10", `["globex"]`, "")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	out := w.Body.String()
	assert.Contains(t, out, `athenaq_queries_generated_total{dialect="athena"} 2`)
	assert.Contains(t, out, `athenaq_plan_cache_total{result="hit"} 1`)
	assert.Contains(t, out, `athenaq_plan_cache_total{result="miss"} 1`)
	assert.Contains(t, out, `athenaq_plan_shape_total{shape="single_month"} 2`)
}

func TestPlanCache(t *testing.T) {
	m := metrics.New()
	c := NewPlanCache(2, time.Minute, m)
	a, b := partition.NewDate(2020, time.April, 1), partition.NewDate(2020, time.April, 30)

	first, err := c.Plan(a, b)
	require.NoError(t, err)
	second, err := c.Plan(a, b)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PlanCache.WithLabelValues(metrics.CacheHit)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PlanCache.WithLabelValues(metrics.CacheMiss)))

	_, err = c.Plan(b, a)
	assert.True(t, partition.IsInvalidRange(err))
	assert.Equal(t, 1, c.Len())
}

func TestPlanCache_Disabled(t *testing.T) {
	c := NewPlanCache(0, time.Minute, nil)
	assert.Nil(t, c)

	set, err := c.Plan(partition.NewDate(2020, time.April, 1), partition.NewDate(2020, time.April, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, 0, c.Len())
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := config.Default()
	cfg.Server.Addr = addr
	s := newTestServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
