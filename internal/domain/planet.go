package domain

import (
	"context"
	"fmt"
	"time"
)

// Row-limit bounds accepted by the archive query.
const (
	MinLimit     = 1
	MaxLimit     = 10000
	DefaultLimit = 10
)

// PlanetRecord is one complete row of the exoplanet catalog. The JSON names
// follow the archive's column names.
type PlanetRecord struct {
	Name            string  `json:"pl_name"`
	HostName        string  `json:"hostname"`
	MassEarth       float64 `json:"pl_bmasse"`
	PeriodDays      float64 `json:"pl_orbper"`
	SemiMajorAxisAU float64 `json:"pl_orbsmax"`
	Eccentricity    float64 `json:"pl_orbeccen"`
	StarMassSolar   float64 `json:"st_mass"`
}

// Label returns the series label used by charts, e.g. "51 Peg b (51 Peg)".
func (p PlanetRecord) Label() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.HostName)
}

// Snapshot is the materialized result of one catalog fetch. It is never
// mutated after construction; a refresh produces a new Snapshot.
type Snapshot struct {
	ID        string         `json:"id"`
	Limit     int            `json:"limit"`
	FetchedAt time.Time      `json:"fetched_at"`
	Records   []PlanetRecord `json:"records"`
	Dropped   int            `json:"dropped"` // incomplete rows removed
}

// Len returns the number of complete records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Find returns the record with the given planet name.
func (s *Snapshot) Find(name string) (PlanetRecord, bool) {
	if s == nil {
		return PlanetRecord{}, false
	}
	for i := range s.Records {
		if s.Records[i].Name == name {
			return s.Records[i], true
		}
	}
	return PlanetRecord{}, false
}

// PlanetSource fetches complete planet records from the catalog.
// Implemented by archive.Client.
type PlanetSource interface {
	// FetchRecords returns at most limit complete records and the number of
	// rows dropped for missing values.
	FetchRecords(ctx context.Context, limit int) ([]PlanetRecord, int, error)
}

// ValidateLimit checks that limit is within [MinLimit, MaxLimit].
func ValidateLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return ErrValidation("limit must be between %d and %d, got %d", MinLimit, MaxLimit, limit)
	}
	return nil
}
