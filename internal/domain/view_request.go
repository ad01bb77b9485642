package domain

import (
	"math"
	"strconv"
	"strings"
)

// Eccentricity override bounds and default.
const (
	MinEccentricityOverride     = 0.0
	MaxEccentricityOverride     = 0.99
	DefaultEccentricityOverride = 0.0
)

// Query parameter names shared by the UI forms and the JSON API.
const (
	ParamLimit     = "limit"
	ParamMinMass   = "min_mass"
	ParamMaxMass   = "max_mass"
	ParamMinPeriod = "min_period"
	ParamMaxPeriod = "max_period"
	ParamStar      = "star"
	ParamEccMode   = "ecc_mode"
	ParamEcc       = "ecc"
	ParamPlanet    = "planet"
)

// ViewRequest carries every user parameter of one dashboard interaction.
type ViewRequest struct {
	Limit    int
	Filter   FilterParams
	Mode     EccentricityMode
	Override float64
	Planet   string
}

// ParseViewRequest reads a ViewRequest from query or form values. Missing
// values take defaults; malformed ones yield a ValidationError.
func ParseViewRequest(values map[string][]string, defaultLimit int) (ViewRequest, error) {
	req := ViewRequest{
		Limit:    defaultLimit,
		Mode:     EccentricityOverride,
		Override: DefaultEccentricityOverride,
		Planet:   paramString(values, ParamPlanet),
	}
	if raw := paramString(values, ParamLimit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return ViewRequest{}, ErrValidation("%s must be an integer, got %q", ParamLimit, raw)
		}
		req.Limit = n
	}
	if err := ValidateLimit(req.Limit); err != nil {
		return ViewRequest{}, err
	}

	var err error
	if req.Filter.MinMass, err = paramFloat(values, ParamMinMass); err != nil {
		return ViewRequest{}, err
	}
	if req.Filter.MaxMass, err = paramFloat(values, ParamMaxMass); err != nil {
		return ViewRequest{}, err
	}
	if req.Filter.MinPeriod, err = paramFloat(values, ParamMinPeriod); err != nil {
		return ViewRequest{}, err
	}
	if req.Filter.MaxPeriod, err = paramFloat(values, ParamMaxPeriod); err != nil {
		return ViewRequest{}, err
	}
	req.Filter.HostName = paramString(values, ParamStar)
	if err := req.Filter.Validate(); err != nil {
		return ViewRequest{}, err
	}

	if req.Mode, err = ParseEccentricityMode(paramString(values, ParamEccMode)); err != nil {
		return ViewRequest{}, err
	}
	ecc, err := paramFloat(values, ParamEcc)
	if err != nil {
		return ViewRequest{}, err
	}
	if ecc != nil {
		req.Override = *ecc
	}
	if err := ValidateOverride(req.Override); err != nil {
		return ViewRequest{}, err
	}
	return req, nil
}

// ValidateOverride checks an eccentricity override against its slider range.
func ValidateOverride(e float64) error {
	if math.IsNaN(e) || e < MinEccentricityOverride || e > MaxEccentricityOverride {
		return ErrValidation("eccentricity override must be between %g and %g, got %g",
			MinEccentricityOverride, MaxEccentricityOverride, e)
	}
	return nil
}

// Eccentricity returns the eccentricity used for p under the request's mode.
func (r ViewRequest) Eccentricity(p PlanetRecord) float64 {
	if r.Mode == EccentricityCatalog {
		return p.Eccentricity
	}
	return r.Override
}

func paramString(values map[string][]string, key string) string {
	v := values[key]
	if len(v) == 0 {
		return ""
	}
	return strings.TrimSpace(v[0])
}

func paramFloat(values map[string][]string, key string) (*float64, error) {
	raw := paramString(values, key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrValidation("%s must be a finite number, got %q", key, raw)
	}
	return &f, nil
}
