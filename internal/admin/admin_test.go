package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/workerpool"
	"github.com/ygrebnov/workerpool/metrics"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	pool, err := workerpool.New(1)
	require.NoError(t, err)
	h := Handler(pool, prometheus.NewRegistry())

	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","state":"running"}`, rec.Body.String())

	pool.Close()

	rec = get(t, h, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"status":"unavailable","state":"terminated"}`, rec.Body.String())
}

func TestStats(t *testing.T) {
	pool, err := workerpool.New(3)
	require.NoError(t, err)

	done := make(chan struct{})
	require.NoError(t, pool.Submit(func() { close(done) }))
	<-done
	pool.Close()

	rec := get(t, Handler(pool, prometheus.NewRegistry()), "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got workerpool.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 3, got.Workers)
	require.Equal(t, int64(1), got.Submitted)
	require.Equal(t, int64(1), got.Completed)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool, err := workerpool.New(1, workerpool.WithMetrics(metrics.NewPrometheusProvider(reg)))
	require.NoError(t, err)
	require.NoError(t, pool.Submit(func() {}))
	pool.Close()

	rec := get(t, Handler(pool, reg), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "workerpool_jobs_submitted_total 1"), rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	pool, err := workerpool.New(1)
	require.NoError(t, err)
	defer pool.Close()

	require.Equal(t, http.StatusNotFound, get(t, Handler(pool, nil), "/nope").Code)
}
