package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exodash/internal/domain"
	"exodash/internal/rv"
)

func TestBuildCurvesOverrideMode(t *testing.T) {
	snap := &domain.Snapshot{ID: "s1", Records: testPlanets()}
	set, err := BuildCurves(snap, domain.ViewRequest{Mode: domain.EccentricityOverride, Override: 0.5}, 0)
	require.NoError(t, err)

	assert.Equal(t, "s1", set.SnapshotID)
	assert.Equal(t, 3, set.Matched)
	assert.False(t, set.Empty)
	require.Len(t, set.Series, 3)
	for _, s := range set.Series {
		assert.InDelta(t, 0.5, s.Eccentricity, 0)
		assert.Len(t, s.TimeDays, rv.DefaultSamples)
		assert.Len(t, s.VelocityMS, rv.DefaultSamples)
		assert.InDelta(t, 2*s.PeriodDays, s.TimeDays[len(s.TimeDays)-1], 0)
	}
	assert.Equal(t, "Earth (Sun)", set.Series[0].Label)

	want, err := rv.Amplitude(1, 1, 365.25, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, want, set.Series[0].AmplitudeMS, 0)
}

func TestBuildCurvesCatalogMode(t *testing.T) {
	snap := &domain.Snapshot{Records: testPlanets()}
	set, err := BuildCurves(snap, domain.ViewRequest{Mode: domain.EccentricityCatalog}, 0)
	require.NoError(t, err)
	require.Len(t, set.Series, 3)
	assert.InDelta(t, 0.2, set.Series[2].Eccentricity, 0)
}

func TestBuildCurvesEmptyResult(t *testing.T) {
	big := 1e6
	snap := &domain.Snapshot{Records: testPlanets()}
	set, err := BuildCurves(snap, domain.ViewRequest{Filter: domain.FilterParams{MinMass: &big}}, 0)
	require.NoError(t, err)
	assert.True(t, set.Empty)
	assert.Empty(t, set.Series)
	assert.Zero(t, set.Matched)

	set, err = BuildCurves(nil, domain.ViewRequest{}, 0)
	require.NoError(t, err)
	assert.True(t, set.Empty)
}

func TestBuildCurvesSkipsInvalidPlanets(t *testing.T) {
	records := append(testPlanets(), domain.PlanetRecord{
		Name: "Wild d", HostName: "Beta", MassEarth: 2, PeriodDays: 5, SemiMajorAxisAU: 0.05, Eccentricity: 1.2, StarMassSolar: 1,
	})
	snap := &domain.Snapshot{Records: records}
	set, err := BuildCurves(snap, domain.ViewRequest{Mode: domain.EccentricityCatalog}, 0)
	require.NoError(t, err)
	assert.Len(t, set.Series, 3)
	require.Len(t, set.Skipped, 1)
	assert.Equal(t, "Wild d (Beta)", set.Skipped[0].Label)
	assert.Contains(t, set.Skipped[0].Reason, "eccentricity")
}

func TestBuildCurvesTruncates(t *testing.T) {
	snap := &domain.Snapshot{Records: testPlanets()}
	set, err := BuildCurves(snap, domain.ViewRequest{}, 2)
	require.NoError(t, err)
	assert.Len(t, set.Series, 2)
	assert.True(t, set.Truncated)
	assert.Equal(t, 3, set.Matched)
}

func TestBuildCurvesRejectsOverrideOutOfRange(t *testing.T) {
	_, err := BuildCurves(&domain.Snapshot{}, domain.ViewRequest{Override: 1}, 0)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestMissingMassRowNeverReachesViews(t *testing.T) {
	// One of four archive rows lacked a mass and was dropped upstream.
	src := &fakeSource{records: testPlanets(), dropped: 1}
	svc := newTestService(t, src)

	set, err := svc.Curves(context.Background(), domain.ViewRequest{Limit: 4})
	require.NoError(t, err)
	assert.Len(t, set.Series, 3)

	table, err := svc.Table(context.Background(), domain.ViewRequest{Limit: 4})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 3)
	assert.Equal(t, 1, table.Dropped)
	assert.False(t, table.Empty)
}

func TestTableFiltersByHost(t *testing.T) {
	svc := newTestService(t, &fakeSource{records: testPlanets()})
	table, err := svc.Table(context.Background(), domain.ViewRequest{Limit: 10, Filter: domain.FilterParams{HostName: "Alpha"}})
	require.NoError(t, err)
	assert.Equal(t, 3, table.Total)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Hot b", table.Rows[0].Name)
}

func TestScatterAndHosts(t *testing.T) {
	svc := newTestService(t, &fakeSource{records: testPlanets()})

	points, err := svc.ScatterPoints(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, domain.ScatterPoint{Label: "Earth", SemiMajorAxisAU: 1, PeriodDays: 365.25, MassEarth: 1}, points[0])

	hosts, err := svc.HostNames(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Sun"}, hosts)

	b := Bounds(&domain.Snapshot{Records: testPlanets()})
	assert.Equal(t, domain.Range{Min: 1, Max: 300}, b.Mass)
	assert.Equal(t, domain.Range{Min: 3, Max: 365.25}, b.Period)
}

func TestOrbitFor(t *testing.T) {
	svc := newTestService(t, &fakeSource{records: testPlanets()})

	view, err := svc.OrbitFor(context.Background(), domain.ViewRequest{Limit: 10, Planet: "Mini c", Mode: domain.EccentricityCatalog})
	require.NoError(t, err)
	assert.Equal(t, "Mini c (Alpha)", view.Label)
	assert.InDelta(t, 0.2, view.Eccentricity, 0)
	assert.Len(t, view.Path, DefaultOrbitSteps)

	_, err = svc.OrbitFor(context.Background(), domain.ViewRequest{Limit: 10, Planet: "Nope"})
	var nerr *domain.NotFoundError
	require.ErrorAs(t, err, &nerr)

	_, err = svc.OrbitFor(context.Background(), domain.ViewRequest{Limit: 10})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}
