package ui

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exodash/internal/cache"
	"exodash/internal/domain"
	"exodash/internal/engine"
	"exodash/internal/service/dashboard"
)

type stubSource struct {
	mu      sync.Mutex
	calls   int
	records []domain.PlanetRecord
	err     error
}

func (s *stubSource) FetchRecords(_ context.Context, limit int) ([]domain.PlanetRecord, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, 0, s.err
	}
	out := s.records
	if len(out) > limit {
		out = out[:limit]
	}
	return out, 0, nil
}

func uiTestPlanets() []domain.PlanetRecord {
	return []domain.PlanetRecord{
		{Name: "Earth", HostName: "Sun", MassEarth: 1, PeriodDays: 365.25, SemiMajorAxisAU: 1, Eccentricity: 0.0167, StarMassSolar: 1},
		{Name: "Hot b", HostName: "Alpha", MassEarth: 300, PeriodDays: 3, SemiMajorAxisAU: 0.04, Eccentricity: 0.01, StarMassSolar: 1.1},
		{Name: "Mini c", HostName: "Alpha", MassEarth: 4, PeriodDays: 12, SemiMajorAxisAU: 0.1, Eccentricity: 0.2, StarMassSolar: 1.1},
	}
}

func manyPlanets(n int) []domain.PlanetRecord {
	out := make([]domain.PlanetRecord, n)
	for i := range out {
		out[i] = domain.PlanetRecord{
			Name: fmt.Sprintf("P-%04d b", i), HostName: fmt.Sprintf("P-%04d", i),
			MassEarth: float64(i + 1), PeriodDays: float64(i + 2), SemiMajorAxisAU: 0.5, Eccentricity: 0.1, StarMassSolar: 1,
		}
	}
	return out
}

func newTestUI(t *testing.T, src *stubSource) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	c, err := cache.New(4, nil)
	require.NoError(t, err)
	svc := dashboard.NewService(src, c, dashboard.WithLogger(logger), dashboard.WithMaxCurves(2))

	eng, err := engine.Open(context.Background(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	h := NewHandler(svc, eng, domain.DefaultLimit, false, logger)
	r := chi.NewRouter()
	r.Route("/ui", func(r chi.Router) { MountRoutes(r, h) })
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(t *testing.T, h http.Handler, target string, form url.Values, token string) *httptest.ResponseRecorder {
	t.Helper()
	if token != "" {
		form.Set(csrfFormField, token)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCurvesPage(t *testing.T) {
	r := newTestUI(t, &stubSource{records: uiTestPlanets()})

	rec := get(t, r, "/ui/?star=Alpha")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<html")
	assert.Contains(t, body, `id="curves-panel"`)
	assert.Contains(t, body, `data-chart-for="rv-chart"`)
	assert.Contains(t, body, "Hot b (Alpha)")
	assert.Contains(t, body, "Mini c (Alpha)")
	assert.NotContains(t, body, "Earth (Sun)")
	assert.Contains(t, body, "/ui/curves/panel")
	for _, item := range navItems {
		assert.Contains(t, body, item.Label)
	}
}

func TestCurvesPanelIsFragment(t *testing.T) {
	r := newTestUI(t, &stubSource{records: uiTestPlanets()})

	rec := get(t, r, "/ui/curves/panel?ecc=0.5")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<div id="curves-panel">`), body)
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, "Showing the first 2 curves")
}

func TestCurvesPanelEmptyFilter(t *testing.T) {
	r := newTestUI(t, &stubSource{records: uiTestPlanets()})

	rec := get(t, r, "/ui/curves/panel?min_mass=5000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), noMatchesMessage)
}

func TestCurvesPageInvalidInputShowsNotice(t *testing.T) {
	r := newTestUI(t, &stubSource{records: uiTestPlanets()})

	rec := get(t, r, "/ui/?min_mass=10&max_mass=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "minimum mass 10 exceeds maximum mass 1")
}

func TestFetchFailureRendersNotice(t *testing.T) {
	src := &stubSource{err: domain.ErrUpstream(http.StatusInternalServerError, "archive returned HTTP 500")}
	r := newTestUI(t, src)

	for _, target := range []string{"/ui/", "/ui/curves/panel", "/ui/details", "/ui/orbits", "/ui/realtime", "/ui/explore"} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, r, target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), fetchFailedMessage)
		})
	}
}

func TestDetailsPageCapsRows(t *testing.T) {
	r := newTestUI(t, &stubSource{records: manyPlanets(600)})

	rec := get(t, r, "/ui/details?limit=600")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "600 planet(s), showing the first 500")
	assert.Equal(t, detailsMaxRows, strings.Count(body, "<tr data-show="))
	assert.Contains(t, body, "/ui/details.csv?limit=600")
}

func TestDetailsPageQuickFilter(t *testing.T) {
	r := newTestUI(t, &stubSource{records: uiTestPlanets()})

	rec := get(t, r, "/ui/details")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-bind`)
	assert.Contains(t, body, `data-signals`)
	assert.Contains(t, body, `&#34;hot b alpha&#34;.includes($q.toLowerCase())`)
}

func TestDetailsCSV(t *testing.T) {
	r := newTestUI(t, &stubSource{records: uiTestPlanets()})

	rec := get(t, r, "/ui/details.csv?star=Alpha")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "pl_name", records[0][0])
	assert.Equal(t, "Hot b", records[1][0])
	assert.Equal(t, "300", records[1][2])
}

func TestDetailsCSVRejectsInvalidInput(t *testing.T) {
	r := newTestUI(t, &stubSource{records: uiTestPlanets()})

	rec := get(t, r, "/ui/details.csv?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrbitsPage(t *testing.T) {
	r := newTestUI(t, &stubSource{records: uiTestPlanets()})

	t.Run("defaults to first planet", func(t *testing.T) {
		rec := get(t, r, "/ui/orbits")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `data-chart-for="orbit-scatter"`)
		assert.Contains(t, body, `"scatter3d"`)
		assert.Contains(t, body, "Orbit of Earth (Sun)")
	})

	t.Run("catalog eccentricity", func(t *testing.T) {
		rec := get(t, r, "/ui/orbits?planet=Mini+c&ecc_mode=catalog")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Orbit of Mini c (Alpha) (e = 0.2)")
	})

	t.Run("unknown planet", func(t *testing.T) {
		rec := get(t, r, "/ui/orbits?planet=Vulcan")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Vulcan is not in the current snapshot")
	})
}

func TestRefresh(t *testing.T) {
	src := &stubSource{records: uiTestPlanets()}
	r := newTestUI(t, src)

	require.Equal(t, http.StatusOK, get(t, r, "/ui/realtime").Code)
	require.Equal(t, 1, src.calls)

	t.Run("requires csrf token", func(t *testing.T) {
		rec := postForm(t, r, "/ui/refresh", url.Values{"limit": {"10"}}, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, 1, src.calls)
	})

	t.Run("refetches", func(t *testing.T) {
		rec := postForm(t, r, "/ui/refresh", url.Values{"limit": {"10"}}, "tok")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Data refreshed successfully!")
		assert.Contains(t, rec.Body.String(), "Hot b")
		assert.Equal(t, 2, src.calls)
	})

	t.Run("failure shows notice", func(t *testing.T) {
		src.mu.Lock()
		src.err = domain.ErrUpstream(http.StatusServiceUnavailable, "archive returned HTTP 503")
		src.mu.Unlock()

		rec := postForm(t, r, "/ui/refresh", url.Values{"limit": {"10"}}, "tok")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), fetchFailedMessage)
		assert.NotContains(t, rec.Body.String(), "Data refreshed successfully!")
	})
}

func TestExplore(t *testing.T) {
	r := newTestUI(t, &stubSource{records: uiTestPlanets()})

	t.Run("snippet prefill", func(t *testing.T) {
		rec := get(t, r, "/ui/explore?snippet=by_host")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "GROUP BY hostname")
	})

	t.Run("run query", func(t *testing.T) {
		rec := postForm(t, r, "/ui/explore/run", url.Values{
			"sql":   {"SELECT pl_name FROM planets WHERE hostname = 'Alpha' ORDER BY pl_name"},
			"limit": {"10"},
		}, "tok")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "2 row(s)")
		assert.Contains(t, body, "<td>Hot b</td>")
		assert.NotContains(t, body, "csrf_token=")
	})

	t.Run("rejects writes", func(t *testing.T) {
		rec := postForm(t, r, "/ui/explore/run", url.Values{"sql": {"DELETE FROM planets"}}, "tok")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Query Error")
	})

	t.Run("csv export", func(t *testing.T) {
		rec := postForm(t, r, "/ui/explore/download.csv", url.Values{
			"sql": {"SELECT pl_name, pl_bmasse FROM planets ORDER BY pl_bmasse"},
		}, "tok")
		require.Equal(t, http.StatusOK, rec.Code)
		records, err := csv.NewReader(rec.Body).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, []string{"pl_name", "pl_bmasse"}, records[0])
		assert.Equal(t, "Earth", records[1][0])
	})
}

func TestStaticAssets(t *testing.T) {
	r := newTestUI(t, &stubSource{})

	rec := get(t, r, "/ui/static/js/charts.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Plotly.react")

	rec = get(t, r, "/ui/static/css/app.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}
