package archive

import "exodash/internal/domain"

// RawRow is one row of the TAP JSON response. Columns are pointers so that
// nulls stay distinguishable from zero.
type RawRow struct {
	Name            *string  `json:"pl_name"`
	HostName        *string  `json:"hostname"`
	MassEarth       *float64 `json:"pl_bmasse"`
	PeriodDays      *float64 `json:"pl_orbper"`
	SemiMajorAxisAU *float64 `json:"pl_orbsmax"`
	Eccentricity    *float64 `json:"pl_orbeccen"`
	StarMassSolar   *float64 `json:"st_mass"`
}

// Complete reports whether every numeric column is present.
func (r RawRow) Complete() bool {
	return r.MassEarth != nil && r.PeriodDays != nil && r.SemiMajorAxisAU != nil &&
		r.Eccentricity != nil && r.StarMassSolar != nil
}

// Record converts a complete row. Missing names become empty strings.
func (r RawRow) Record() domain.PlanetRecord {
	rec := domain.PlanetRecord{
		MassEarth:       deref(r.MassEarth),
		PeriodDays:      deref(r.PeriodDays),
		SemiMajorAxisAU: deref(r.SemiMajorAxisAU),
		Eccentricity:    deref(r.Eccentricity),
		StarMassSolar:   deref(r.StarMassSolar),
	}
	if r.Name != nil {
		rec.Name = *r.Name
	}
	if r.HostName != nil {
		rec.HostName = *r.HostName
	}
	return rec
}

// Complete keeps the rows that have mass, period, semi-major axis,
// eccentricity and star mass, preserving order, and counts the rest.
func Complete(rows []RawRow) ([]domain.PlanetRecord, int) {
	records := make([]domain.PlanetRecord, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		if !r.Complete() {
			dropped++
			continue
		}
		records = append(records, r.Record())
	}
	return records, dropped
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
