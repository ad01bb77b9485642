package domain

import "time"

// EccentricityMode selects which eccentricity feeds the amplitude formula.
type EccentricityMode string

const (
	// EccentricityOverride applies one user-chosen value to every planet.
	EccentricityOverride EccentricityMode = "override"
	// EccentricityCatalog uses each planet's archive-reported value.
	EccentricityCatalog EccentricityMode = "catalog"
)

// ParseEccentricityMode maps a raw parameter to a mode. Empty selects
// EccentricityOverride.
func ParseEccentricityMode(raw string) (EccentricityMode, error) {
	switch EccentricityMode(raw) {
	case "", EccentricityOverride:
		return EccentricityOverride, nil
	case EccentricityCatalog:
		return EccentricityCatalog, nil
	default:
		return "", ErrValidation("unknown eccentricity mode %q (use %q or %q)", raw, EccentricityOverride, EccentricityCatalog)
	}
}

// CurveSeries is one radial-velocity curve ready for a line chart.
type CurveSeries struct {
	Label        string    `json:"label"`
	Planet       string    `json:"planet"`
	Host         string    `json:"host"`
	AmplitudeMS  float64   `json:"amplitude_ms"`
	Eccentricity float64   `json:"eccentricity"`
	PeriodDays   float64   `json:"period_days"`
	TimeDays     []float64 `json:"time_days"`
	VelocityMS   []float64 `json:"velocity_ms"`
}

// SkippedPlanet records a planet whose curve could not be computed.
type SkippedPlanet struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// CurveSet is the result of one curve-building pass. Empty is set when the
// filters exclude every record; it is a state, not an error.
type CurveSet struct {
	SnapshotID string           `json:"snapshot_id"`
	Mode       EccentricityMode `json:"eccentricity_mode"`
	Override   float64          `json:"eccentricity_override"`
	Matched    int              `json:"matched"`
	Empty      bool             `json:"empty"`
	Truncated  bool             `json:"truncated"`
	Series     []CurveSeries    `json:"series"`
	Skipped    []SkippedPlanet  `json:"skipped,omitempty"`
}

// PlanetTable is the filtered record listing of a snapshot.
type PlanetTable struct {
	SnapshotID string         `json:"snapshot_id"`
	FetchedAt  time.Time      `json:"fetched_at"`
	Total      int            `json:"total"`
	Dropped    int            `json:"dropped"`
	Empty      bool           `json:"empty"`
	Rows       []PlanetRecord `json:"rows"`
}

// ScatterPoint is one planet in the semi-major axis / period / mass space.
type ScatterPoint struct {
	Label           string  `json:"label"`
	SemiMajorAxisAU float64 `json:"pl_orbsmax"`
	PeriodDays      float64 `json:"pl_orbper"`
	MassEarth       float64 `json:"pl_bmasse"`
}

// OrbitPoint is a position on an orbit in the orbital plane, in AU, with the
// host star at the origin.
type OrbitPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OrbitView is the static orbit of one planet.
type OrbitView struct {
	Label           string       `json:"label"`
	SemiMajorAxisAU float64      `json:"semi_major_axis_au"`
	Eccentricity    float64      `json:"eccentricity"`
	Path            []OrbitPoint `json:"path"`
}
