package rv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exodash/internal/domain"
)

func TestAmplitudeKnownSystems(t *testing.T) {
	tests := []struct {
		name   string
		mass   float64
		star   float64
		period float64
		ecc    float64
		want   float64
		tol    float64
	}{
		{name: "earth around sun", mass: 1, star: 1, period: 365, ecc: 0, want: 0.089479, tol: 1e-5},
		{name: "earth around sun sidereal year", mass: 1, star: 1, period: 365.25, ecc: 0, want: 0.089459, tol: 1e-5},
		{name: "jupiter around sun", mass: 317.8, star: 1, period: 4332.59, ecc: 0.0489, want: 12.48, tol: 0.05},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			k, err := Amplitude(tc.mass, tc.star, tc.period, tc.ecc)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, k, tc.tol)
		})
	}
}

func TestAmplitudeLinearInPlanetMass(t *testing.T) {
	k1, err := Amplitude(3, 0.8, 12, 0.1)
	require.NoError(t, err)
	k2, err := Amplitude(6, 0.8, 12, 0.1)
	require.NoError(t, err)
	assert.InEpsilon(t, 2*k1, k2, 1e-12)
}

func TestAmplitudeGrowsWithEccentricity(t *testing.T) {
	prev := 0.0
	for _, e := range []float64{0, 0.1, 0.5, 0.9, 0.99, 0.9999} {
		k, err := Amplitude(1, 1, 365.25, e)
		require.NoError(t, err)
		assert.Greater(t, k, prev, "e=%g", e)
		prev = k
	}
	k0, _ := Amplitude(1, 1, 365.25, 0)
	assert.Greater(t, prev/k0, 50.0)
}

func TestAmplitudeRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name                    string
		mass, star, period, ecc float64
		wantErr                 string
	}{
		{name: "eccentricity one", mass: 1, star: 1, period: 1, ecc: 1, wantErr: "eccentricity"},
		{name: "negative eccentricity", mass: 1, star: 1, period: 1, ecc: -0.1, wantErr: "eccentricity"},
		{name: "nan eccentricity", mass: 1, star: 1, period: 1, ecc: math.NaN(), wantErr: "eccentricity"},
		{name: "zero period", mass: 1, star: 1, period: 0, ecc: 0, wantErr: "orbital period"},
		{name: "infinite period", mass: 1, star: 1, period: math.Inf(1), ecc: 0, wantErr: "orbital period"},
		{name: "zero planet mass", mass: 0, star: 1, period: 1, ecc: 0, wantErr: "planet mass"},
		{name: "negative star mass", mass: 1, star: -1, period: 1, ecc: 0, wantErr: "star mass"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Amplitude(tc.mass, tc.star, tc.period, tc.ecc)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Message, tc.wantErr)
		})
	}
}

func TestSynthesizeCurveShape(t *testing.T) {
	samples, err := SynthesizeCurve(10, 3, 6)
	require.NoError(t, err)
	require.Len(t, samples, DefaultSamples)

	assert.InDelta(t, 0, samples[0].T, 0)
	assert.InDelta(t, 0, samples[0].V, 0)
	assert.InDelta(t, 6, samples[len(samples)-1].T, 0)

	for i := 1; i < len(samples); i++ {
		assert.Greater(t, samples[i].T, samples[i-1].T)
		assert.LessOrEqual(t, math.Abs(samples[i].V), 10.0+1e-9)
	}
}

func TestSynthesizeCurveZeroSpan(t *testing.T) {
	samples, err := SynthesizeCurve(5, 2, 0)
	require.NoError(t, err)
	require.Len(t, samples, DefaultSamples)
	for _, s := range samples {
		assert.InDelta(t, 0, s.T, 0)
	}
}

func TestSynthesizeCurveRejectsInvalidInput(t *testing.T) {
	_, err := SynthesizeCurve(1, 0, 1)
	require.Error(t, err)
	_, err = SynthesizeCurve(1, 1, -1)
	require.Error(t, err)
	_, err = SynthesizeCurve(math.NaN(), 1, 1)
	require.Error(t, err)
}

func TestVelocityIsPeriodic(t *testing.T) {
	const k, p = 4.2, 7.5
	for _, ts := range []float64{0, 0.3, 1.9, 5.55, 12} {
		assert.InDelta(t, VelocityAt(k, p, ts), VelocityAt(k, p, ts+p), 1e-9)
	}
	assert.InDelta(t, k, VelocityAt(k, p, p/4), 1e-12)
}

func TestSynthesizedCurveIsPeriodic(t *testing.T) {
	// A span of 999/100 periods puts exactly 100 sample steps in one period.
	const k, p = 3.1, 2.0
	span := p * float64(DefaultSamples-1) / 100
	samples, err := SynthesizeCurve(k, p, span)
	require.NoError(t, err)
	require.Len(t, samples, DefaultSamples)

	const stepsPerPeriod = 100
	for i := 0; i+stepsPerPeriod < len(samples); i++ {
		a, b := samples[i], samples[i+stepsPerPeriod]
		require.InDelta(t, p, b.T-a.T, 1e-9, "sample %d", i)
		require.InDelta(t, a.V, b.V, 1e-9, "sample %d", i)
	}
}

func TestCurveForSpansTwoPeriods(t *testing.T) {
	rec := domain.PlanetRecord{Name: "b", HostName: "S", MassEarth: 10, PeriodDays: 4, StarMassSolar: 0.9}
	c, err := CurveFor(rec, 0.2)
	require.NoError(t, err)

	want, err := Amplitude(10, 0.9, 4, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, want, c.AmplitudeMS, 0)
	assert.InDelta(t, 8, c.Samples[len(c.Samples)-1].T, 0)

	ts, vs := Split(c.Samples)
	assert.Len(t, ts, DefaultSamples)
	assert.Len(t, vs, DefaultSamples)

	_, err = CurveFor(rec, 1)
	require.Error(t, err)
}
