package cli

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"exodash/internal/domain"
	"exodash/internal/rv"
)

const (
	curveFormatCSV  = "csv"
	curveFormatJSON = "json"
)

type curveOptions struct {
	planet     string
	catalogEcc bool
	mass       float64
	starMass   float64
	period     float64
	ecc        float64
	span       float64
	format     string
}

func newCurveCmd(opts *rootOptions) *cobra.Command {
	co := &curveOptions{}

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Synthesize a radial-velocity curve",
		Long: `Synthesize a 1000-point radial-velocity curve, either for a catalog planet
(--planet, looked up among the first --limit planets) or from explicit
--mass, --star-mass and --period values. The curve spans two orbital periods
unless --span is given.`,
		Example: `  exodash curve --planet "51 Peg b" --catalog-ecc
  exodash curve --mass 317.8 --star-mass 1 --period 4332.6 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if co.format != curveFormatCSV && co.format != curveFormatJSON {
				return fmt.Errorf("unsupported curve format %q: use 'csv' or 'json'", co.format)
			}

			p, err := co.planetRecord(cmd, opts)
			if err != nil {
				return err
			}
			ecc := co.ecc
			if co.catalogEcc {
				ecc = p.Eccentricity
			}
			series, err := buildSeries(p, ecc, co.span)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if co.format == curveFormatJSON {
				return printJSON(out, series)
			}
			return writeCurveCSV(out, series)
		},
	}

	f := cmd.Flags()
	f.StringVar(&co.planet, "planet", "", "Catalog planet name, e.g. \"51 Peg b\"")
	f.BoolVar(&co.catalogEcc, "catalog-ecc", false, "Use the catalog eccentricity of --planet")
	f.Float64Var(&co.mass, "mass", 0, "Planet mass in Earth masses")
	f.Float64Var(&co.starMass, "star-mass", 0, "Host star mass in solar masses")
	f.Float64Var(&co.period, "period", 0, "Orbital period in days")
	f.Float64Var(&co.ecc, "ecc", domain.DefaultEccentricityOverride, "Eccentricity override in [0, 1)")
	f.Float64Var(&co.span, "span", 0, "Time span in days (default two periods)")
	f.StringVar(&co.format, "format", curveFormatCSV, "Curve output format (csv, json)")
	cmd.MarkFlagsMutuallyExclusive("planet", "mass")
	cmd.MarkFlagsMutuallyExclusive("planet", "star-mass")
	cmd.MarkFlagsMutuallyExclusive("planet", "period")
	cmd.MarkFlagsMutuallyExclusive("catalog-ecc", "ecc")

	return cmd
}

// planetRecord resolves the planet either from the archive or from the
// explicit parameters.
func (co *curveOptions) planetRecord(cmd *cobra.Command, opts *rootOptions) (domain.PlanetRecord, error) {
	if co.planet == "" {
		if co.catalogEcc {
			return domain.PlanetRecord{}, domain.ErrValidation("--catalog-ecc requires --planet")
		}
		return domain.PlanetRecord{
			Name:          "custom",
			MassEarth:     co.mass,
			StarMassSolar: co.starMass,
			PeriodDays:    co.period,
		}, nil
	}

	records, _, err := opts.fetchRecords(cmd)
	if err != nil {
		return domain.PlanetRecord{}, err
	}
	snap := &domain.Snapshot{Records: records}
	p, ok := snap.Find(co.planet)
	if !ok {
		return domain.PlanetRecord{}, domain.ErrNotFound("planet %q is not among the first %d planets", co.planet, opts.limit)
	}
	return p, nil
}

func buildSeries(p domain.PlanetRecord, ecc, span float64) (domain.CurveSeries, error) {
	k, err := rv.Amplitude(p.MassEarth, p.StarMassSolar, p.PeriodDays, ecc)
	if err != nil {
		return domain.CurveSeries{}, err
	}
	if span == 0 {
		span = 2 * p.PeriodDays
	}
	samples, err := rv.SynthesizeCurve(k, p.PeriodDays, span)
	if err != nil {
		return domain.CurveSeries{}, err
	}
	ts, vs := rv.Split(samples)
	label := p.Name
	if p.HostName != "" {
		label = p.Label()
	}
	return domain.CurveSeries{
		Label:        label,
		Planet:       p.Name,
		Host:         p.HostName,
		AmplitudeMS:  k,
		Eccentricity: ecc,
		PeriodDays:   p.PeriodDays,
		TimeDays:     ts,
		VelocityMS:   vs,
	}, nil
}

func writeCurveCSV(w io.Writer, s domain.CurveSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t_days", "v_ms"}); err != nil {
		return err
	}
	for i := range s.TimeDays {
		if err := cw.Write([]string{formatSample(s.TimeDays[i]), formatSample(s.VelocityMS[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatSample(v float64) string {
	return fmt.Sprintf("%.10g", v)
}
