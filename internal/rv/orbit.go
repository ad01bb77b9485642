package rv

import (
	"math"

	"exodash/internal/domain"
)

// OrbitPath returns n points of the Keplerian ellipse with semi-major axis a
// (AU) and eccentricity e, with the star at the origin focus. Points are
// evenly spaced in eccentric anomaly over one full turn, so the path closes.
func OrbitPath(a, e float64, n int) ([]domain.OrbitPoint, error) {
	if !positiveFinite(a) {
		return nil, domain.ErrValidation("semi-major axis must be positive, got %g", a)
	}
	if math.IsNaN(e) || e < 0 || e >= 1 {
		return nil, domain.ErrValidation("eccentricity must be in [0, 1), got %g", e)
	}
	if n < 2 {
		return nil, domain.ErrValidation("orbit path needs at least 2 points, got %d", n)
	}

	b := a * math.Sqrt(1-e*e)
	out := make([]domain.OrbitPoint, n)
	for i := range out {
		E := 2 * math.Pi * float64(i) / float64(n-1)
		out[i] = domain.OrbitPoint{X: a * (math.Cos(E) - e), Y: b * math.Sin(E)}
	}
	return out, nil
}
