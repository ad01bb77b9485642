package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exodash/internal/config"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		Archive:           config.ArchiveConfig{URL: url, Timeout: 5 * time.Second, RPS: 0, Burst: 1},
		DefaultLimit:      10,
		SnapshotCacheSize: 2,
		MaxCurves:         5,
	}
}

func TestNewWiresSnapshotPipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"pl_name":"b","hostname":"A","pl_bmasse":2,"pl_orbper":3,"pl_orbsmax":0.04,"pl_orbeccen":0.0,"st_mass":1},
			{"pl_name":"c","hostname":"A","pl_bmasse":null,"pl_orbper":4,"pl_orbsmax":0.05,"pl_orbeccen":0.0,"st_mass":1}
		]`))
	}))
	defer srv.Close()

	a, err := New(context.Background(), Deps{Cfg: testConfig(srv.URL), Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	snap, err := a.Dashboard.Snapshot(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, 1, snap.Dropped)

	assert.InDelta(t, 1, testutil.ToFloat64(a.Metrics.ArchiveFetches.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(a.Metrics.SnapshotRecords), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(a.Metrics.CacheLookups.WithLabelValues("miss")), 0)

	res, err := a.Engine.QuerySnapshot(context.Background(), snap, "SELECT pl_name FROM planets", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowCount)
}
