// Package dashboard turns catalog snapshots into the views the UI, API and
// CLI render: filtered tables, radial-velocity curve sets, scatter points and
// orbit paths.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"exodash/internal/cache"
	"exodash/internal/domain"
	"exodash/internal/rv"
)

// Defaults for the curve view.
const (
	DefaultMaxCurves  = 50
	DefaultOrbitSteps = 361
)

// SnapshotListener is notified after a new snapshot is cached.
type SnapshotListener func(*domain.Snapshot)

// Service owns the per-process dashboard state: the snapshot cache. Fetches
// are collapsed per limit and serialized across limits, so at most one
// archive request is in flight.
type Service struct {
	source    domain.PlanetSource
	cache     *cache.SnapshotCache
	group     singleflight.Group
	fetchMu   sync.Mutex
	maxCurves int
	now       func() time.Time
	logger    *slog.Logger

	listenersMu sync.RWMutex
	listeners   []SnapshotListener
}

// Option configures Service.
type Option func(*Service)

// WithMaxCurves caps the number of series in a curve set.
func WithMaxCurves(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCurves = n
		}
	}
}

// WithClock sets the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a dashboard service reading from source and caching in c.
func NewService(source domain.PlanetSource, c *cache.SnapshotCache, opts ...Option) *Service {
	s := &Service{
		source:    source,
		cache:     c,
		maxCurves: DefaultMaxCurves,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnSnapshot registers fn to run after each newly fetched snapshot.
func (s *Service) OnSnapshot(fn SnapshotListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// MaxCurves returns the series cap of curve sets.
func (s *Service) MaxCurves() int { return s.maxCurves }

// Snapshot returns the cached snapshot for limit, fetching it on a miss.
func (s *Service) Snapshot(ctx context.Context, limit int) (*domain.Snapshot, error) {
	if err := domain.ValidateLimit(limit); err != nil {
		return nil, err
	}
	if snap, ok := s.cache.Get(limit); ok {
		return snap, nil
	}
	return s.load(ctx, limit, false)
}

// Refresh drops the cached snapshot for limit and fetches a new one. On
// failure the limit stays uncached.
func (s *Service) Refresh(ctx context.Context, limit int) (*domain.Snapshot, error) {
	if err := domain.ValidateLimit(limit); err != nil {
		return nil, err
	}
	s.cache.Evict(limit)
	return s.load(ctx, limit, true)
}

func (s *Service) load(ctx context.Context, limit int, force bool) (*domain.Snapshot, error) {
	key := strconv.Itoa(limit)
	if force {
		key = "refresh:" + key
	}
	// Shared fetches outlive the caller that started them. The archive
	// client applies its own timeout.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		s.fetchMu.Lock()
		defer s.fetchMu.Unlock()

		if !force {
			if snap, ok := s.cache.Peek(limit); ok {
				return snap, nil
			}
		}
		return s.fetch(fetchCtx, limit)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "shared in-flight snapshot fetch", "limit", limit)
	}
	return v.(*domain.Snapshot), nil
}

func (s *Service) fetch(ctx context.Context, limit int) (*domain.Snapshot, error) {
	start := s.now()
	records, dropped, err := s.source.FetchRecords(ctx, limit)
	if err != nil {
		s.logger.WarnContext(ctx, "snapshot fetch failed", "limit", limit, "error", err)
		return nil, fmt.Errorf("fetch snapshot for limit %d: %w", limit, err)
	}
	snap := &domain.Snapshot{
		ID:        uuid.NewString(),
		Limit:     limit,
		FetchedAt: s.now().UTC(),
		Records:   records,
		Dropped:   dropped,
	}
	s.cache.Put(snap)
	s.logger.InfoContext(ctx, "snapshot fetched",
		"id", snap.ID, "limit", limit, "records", len(records), "dropped", dropped,
		"duration", s.now().Sub(start))

	s.listenersMu.RLock()
	listeners := append([]SnapshotListener(nil), s.listeners...)
	s.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(snap)
	}
	return snap, nil
}

// Filter returns the records matching f, in order. Applying the same filter
// to its own output returns the same records.
func Filter(records []domain.PlanetRecord, f domain.FilterParams) ([]domain.PlanetRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	out := make([]domain.PlanetRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Bounds returns the mass and period ranges of snap.
func Bounds(snap *domain.Snapshot) domain.Bounds {
	if snap == nil {
		return domain.Bounds{}
	}
	return domain.BoundsOf(snap.Records)
}

// Hosts returns the distinct host star names of snap.
func Hosts(snap *domain.Snapshot) []string {
	if snap == nil {
		return nil
	}
	return domain.HostNames(snap.Records)
}

// Scatter maps every record of snap to a point in (semi-major axis, period,
// mass) space.
func Scatter(snap *domain.Snapshot) []domain.ScatterPoint {
	if snap == nil {
		return nil
	}
	out := make([]domain.ScatterPoint, 0, len(snap.Records))
	for _, r := range snap.Records {
		out = append(out, domain.ScatterPoint{
			Label:           r.Name,
			SemiMajorAxisAU: r.SemiMajorAxisAU,
			PeriodDays:      r.PeriodDays,
			MassEarth:       r.MassEarth,
		})
	}
	return out
}

// BuildCurves computes one curve per matching record of snap. Records whose
// amplitude cannot be computed are listed in Skipped; the rest are unaffected.
// At most maxCurves series are built.
func BuildCurves(snap *domain.Snapshot, req domain.ViewRequest, maxCurves int) (*domain.CurveSet, error) {
	if err := domain.ValidateOverride(req.Override); err != nil {
		return nil, err
	}
	mode := req.Mode
	if mode == "" {
		mode = domain.EccentricityOverride
	}
	req.Mode = mode

	var records []domain.PlanetRecord
	set := &domain.CurveSet{Mode: mode, Override: req.Override, Series: []domain.CurveSeries{}}
	if snap != nil {
		set.SnapshotID = snap.ID
		records = snap.Records
	}
	matched, err := Filter(records, req.Filter)
	if err != nil {
		return nil, err
	}
	set.Matched = len(matched)
	if len(matched) == 0 {
		set.Empty = true
		return set, nil
	}

	for _, p := range matched {
		ecc := req.Eccentricity(p)
		if maxCurves > 0 && len(set.Series) >= maxCurves {
			if _, err := rv.Amplitude(p.MassEarth, p.StarMassSolar, p.PeriodDays, ecc); err != nil {
				set.Skipped = append(set.Skipped, domain.SkippedPlanet{Label: p.Label(), Reason: err.Error()})
			} else {
				set.Truncated = true
			}
			continue
		}
		curve, err := rv.CurveFor(p, ecc)
		if err != nil {
			set.Skipped = append(set.Skipped, domain.SkippedPlanet{Label: p.Label(), Reason: err.Error()})
			continue
		}
		ts, vs := rv.Split(curve.Samples)
		set.Series = append(set.Series, domain.CurveSeries{
			Label:        p.Label(),
			Planet:       p.Name,
			Host:         p.HostName,
			AmplitudeMS:  curve.AmplitudeMS,
			Eccentricity: ecc,
			PeriodDays:   p.PeriodDays,
			TimeDays:     ts,
			VelocityMS:   vs,
		})
	}
	return set, nil
}

// Orbit returns the orbit path of the named planet in snap.
func Orbit(snap *domain.Snapshot, planet string, eccentricity float64) (*domain.OrbitView, error) {
	rec, ok := snap.Find(planet)
	if !ok {
		return nil, domain.ErrNotFound("planet %q not found", planet)
	}
	path, err := rv.OrbitPath(rec.SemiMajorAxisAU, eccentricity, DefaultOrbitSteps)
	if err != nil {
		return nil, err
	}
	return &domain.OrbitView{
		Label:           rec.Label(),
		SemiMajorAxisAU: rec.SemiMajorAxisAU,
		Eccentricity:    eccentricity,
		Path:            path,
	}, nil
}
