package dashboard

import (
	"context"

	"exodash/internal/domain"
)

// Curves resolves the snapshot for req.Limit and builds its curve set.
func (s *Service) Curves(ctx context.Context, req domain.ViewRequest) (*domain.CurveSet, error) {
	snap, err := s.Snapshot(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	return BuildCurves(snap, req, s.maxCurves)
}

// Table returns the records of the snapshot for req.Limit that match
// req.Filter.
func (s *Service) Table(ctx context.Context, req domain.ViewRequest) (*domain.PlanetTable, error) {
	snap, err := s.Snapshot(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	rows, err := Filter(snap.Records, req.Filter)
	if err != nil {
		return nil, err
	}
	return &domain.PlanetTable{
		SnapshotID: snap.ID,
		FetchedAt:  snap.FetchedAt,
		Total:      snap.Len(),
		Dropped:    snap.Dropped,
		Empty:      len(rows) == 0,
		Rows:       rows,
	}, nil
}

// ScatterPoints returns the unfiltered scatter view of the snapshot for limit.
func (s *Service) ScatterPoints(ctx context.Context, limit int) ([]domain.ScatterPoint, error) {
	snap, err := s.Snapshot(ctx, limit)
	if err != nil {
		return nil, err
	}
	return Scatter(snap), nil
}

// HostNames returns the host stars of the snapshot for limit.
func (s *Service) HostNames(ctx context.Context, limit int) ([]string, error) {
	snap, err := s.Snapshot(ctx, limit)
	if err != nil {
		return nil, err
	}
	return Hosts(snap), nil
}

// OrbitFor returns the orbit of req.Planet using the eccentricity req selects.
func (s *Service) OrbitFor(ctx context.Context, req domain.ViewRequest) (*domain.OrbitView, error) {
	if req.Planet == "" {
		return nil, domain.ErrValidation("planet is required")
	}
	snap, err := s.Snapshot(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	rec, ok := snap.Find(req.Planet)
	if !ok {
		return nil, domain.ErrNotFound("planet %q not found", req.Planet)
	}
	return Orbit(snap, rec.Name, req.Eccentricity(rec))
}
