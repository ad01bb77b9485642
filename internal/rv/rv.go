// Package rv implements the radial-velocity model: the semi-amplitude K a
// planet induces on its host star and the sinusoidal velocity curve built
// from it. Every function is pure.
package rv

import (
	"math"

	"exodash/internal/domain"
)

// Physical constants in SI units. G is in m^3 kg^-1 s^-2, masses in kg.
const (
	G             = 6.67430e-11
	EarthMassKg   = 5.972168e24
	SolarMassKg   = 1.988409870698051e30
	SecondsPerDay = 86400.0
)

// DefaultSamples is the number of points in a synthesized curve.
const DefaultSamples = 1000

// Sample is one point of a velocity curve: time in days, velocity in m/s.
type Sample struct {
	T float64 `json:"t"`
	V float64 `json:"v"`
}

// Curve is the radial-velocity curve of one planet.
type Curve struct {
	AmplitudeMS float64  `json:"amplitude_ms"`
	PeriodDays  float64  `json:"period_days"`
	Samples     []Sample `json:"samples"`
}

// Amplitude returns K in m/s:
//
//	K = (2πG/P)^(1/3) · Mp / Ms^(2/3) / sqrt(1 − e²)
//
// with masses converted to kg and the period to seconds.
func Amplitude(planetMassEarth, starMassSolar, periodDays, eccentricity float64) (float64, error) {
	if !positiveFinite(planetMassEarth) {
		return 0, domain.ErrValidation("planet mass must be positive, got %g", planetMassEarth)
	}
	if !positiveFinite(starMassSolar) {
		return 0, domain.ErrValidation("star mass must be positive, got %g", starMassSolar)
	}
	if !positiveFinite(periodDays) {
		return 0, domain.ErrValidation("orbital period must be positive, got %g", periodDays)
	}
	if math.IsNaN(eccentricity) || eccentricity < 0 || eccentricity >= 1 {
		return 0, domain.ErrValidation("eccentricity must be in [0, 1), got %g", eccentricity)
	}

	mp := planetMassEarth * EarthMassKg
	ms := starMassSolar * SolarMassKg
	p := periodDays * SecondsPerDay

	k := math.Cbrt(2*math.Pi*G/p) * mp / math.Pow(ms, 2.0/3.0) / math.Sqrt(1-eccentricity*eccentricity)
	return k, nil
}

// VelocityAt returns K·sin(2πt/P).
func VelocityAt(k, periodDays, t float64) float64 {
	return k * math.Sin(2*math.Pi*t/periodDays)
}

// SynthesizeCurve samples VelocityAt DefaultSamples times, evenly spaced over
// [0, timeSpanDays] inclusive. The last sample is exactly timeSpanDays.
func SynthesizeCurve(k, periodDays, timeSpanDays float64) ([]Sample, error) {
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, domain.ErrValidation("amplitude must be finite, got %g", k)
	}
	if !positiveFinite(periodDays) {
		return nil, domain.ErrValidation("orbital period must be positive, got %g", periodDays)
	}
	if math.IsNaN(timeSpanDays) || math.IsInf(timeSpanDays, 0) || timeSpanDays < 0 {
		return nil, domain.ErrValidation("time span must be non-negative, got %g", timeSpanDays)
	}

	out := make([]Sample, DefaultSamples)
	step := timeSpanDays / float64(DefaultSamples-1)
	for i := range out {
		t := float64(i) * step
		if i == DefaultSamples-1 {
			t = timeSpanDays
		}
		out[i] = Sample{T: t, V: VelocityAt(k, periodDays, t)}
	}
	return out, nil
}

// CurveFor builds the curve of a catalog record over two orbital periods
// using the given eccentricity.
func CurveFor(p domain.PlanetRecord, eccentricity float64) (Curve, error) {
	k, err := Amplitude(p.MassEarth, p.StarMassSolar, p.PeriodDays, eccentricity)
	if err != nil {
		return Curve{}, err
	}
	samples, err := SynthesizeCurve(k, p.PeriodDays, 2*p.PeriodDays)
	if err != nil {
		return Curve{}, err
	}
	return Curve{AmplitudeMS: k, PeriodDays: p.PeriodDays, Samples: samples}, nil
}

// Split returns the time and velocity columns of samples.
func Split(samples []Sample) (ts, vs []float64) {
	ts = make([]float64, len(samples))
	vs = make([]float64, len(samples))
	for i, s := range samples {
		ts[i] = s.T
		vs[i] = s.V
	}
	return ts, vs
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
