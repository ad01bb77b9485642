package domain

import (
	"math"
	"sort"
)

// FilterParams narrows a snapshot by inclusive mass and period ranges and an
// optional host star. Nil bounds are unbounded.
type FilterParams struct {
	MinMass   *float64
	MaxMass   *float64
	MinPeriod *float64
	MaxPeriod *float64
	HostName  string
}

// Validate rejects inverted or non-finite ranges.
func (f FilterParams) Validate() error {
	bounds := []struct {
		name string
		v    *float64
	}{
		{"min_mass", f.MinMass},
		{"max_mass", f.MaxMass},
		{"min_period", f.MinPeriod},
		{"max_period", f.MaxPeriod},
	}
	for _, b := range bounds {
		if b.v != nil && (math.IsNaN(*b.v) || math.IsInf(*b.v, 0)) {
			return ErrValidation("%s must be a finite number", b.name)
		}
	}
	if f.MinMass != nil && f.MaxMass != nil && *f.MinMass > *f.MaxMass {
		return ErrValidation("minimum mass %g exceeds maximum mass %g", *f.MinMass, *f.MaxMass)
	}
	if f.MinPeriod != nil && f.MaxPeriod != nil && *f.MinPeriod > *f.MaxPeriod {
		return ErrValidation("minimum period %g exceeds maximum period %g", *f.MinPeriod, *f.MaxPeriod)
	}
	return nil
}

// Match reports whether p satisfies every bound.
func (f FilterParams) Match(p PlanetRecord) bool {
	if f.MinMass != nil && p.MassEarth < *f.MinMass {
		return false
	}
	if f.MaxMass != nil && p.MassEarth > *f.MaxMass {
		return false
	}
	if f.MinPeriod != nil && p.PeriodDays < *f.MinPeriod {
		return false
	}
	if f.MaxPeriod != nil && p.PeriodDays > *f.MaxPeriod {
		return false
	}
	if f.HostName != "" && p.HostName != f.HostName {
		return false
	}
	return true
}

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Bounds holds the observed mass and period ranges of a record set. The UI
// uses them as control limits and defaults.
type Bounds struct {
	Mass   Range `json:"mass"`
	Period Range `json:"period"`
}

// BoundsOf computes the ranges of records. It returns the zero value for an
// empty slice.
func BoundsOf(records []PlanetRecord) Bounds {
	if len(records) == 0 {
		return Bounds{}
	}
	b := Bounds{
		Mass:   Range{Min: records[0].MassEarth, Max: records[0].MassEarth},
		Period: Range{Min: records[0].PeriodDays, Max: records[0].PeriodDays},
	}
	for _, r := range records[1:] {
		b.Mass.Min = math.Min(b.Mass.Min, r.MassEarth)
		b.Mass.Max = math.Max(b.Mass.Max, r.MassEarth)
		b.Period.Min = math.Min(b.Period.Min, r.PeriodDays)
		b.Period.Max = math.Max(b.Period.Max, r.PeriodDays)
	}
	return b
}

// HostNames returns the sorted distinct host star names of records.
func HostNames(records []PlanetRecord) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, r := range records {
		if r.HostName == "" {
			continue
		}
		if _, ok := seen[r.HostName]; ok {
			continue
		}
		seen[r.HostName] = struct{}{}
		out = append(out, r.HostName)
	}
	sort.Strings(out)
	return out
}
