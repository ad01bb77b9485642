package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exodash/internal/domain"
)

func TestCollectorRecordsFetchesAndCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveFetch("success", 120*time.Millisecond)
	c.ObserveFetch("http_error", 10*time.Millisecond)
	c.ObserveFetch("success", time.Second)
	c.ObserveCache(true)
	c.ObserveCache(false)
	c.ObserveCache(false)
	c.ObserveSnapshot(&domain.Snapshot{Records: make([]domain.PlanetRecord, 7)})

	assert.InDelta(t, 2, testutil.ToFloat64(c.ArchiveFetches.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.ArchiveFetches.WithLabelValues("http_error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.CacheLookups.WithLabelValues("hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.CacheLookups.WithLabelValues("miss")), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(c.SnapshotRecords), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(c.ArchiveDuration))
}

func TestNewCollectorReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	require.NoError(t, err)
	second, err := NewCollector(reg)
	require.NoError(t, err)

	first.ObserveCache(true)
	assert.InDelta(t, 1, testutil.ToFloat64(second.CacheLookups.WithLabelValues("hit")), 0)
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/v1/planets/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/v1/planets/a", "/v1/planets/b", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/v1/planets/{name}", "418")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/ok", "200")), 0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.ObserveFetch("timeout", time.Second)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `exodash_archive_fetch_total{outcome="timeout"} 1`))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.ObserveFetch("success", time.Second)
	c.ObserveCache(true)
	c.ObserveSnapshot(nil)

	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
