package cli

import (
	"github.com/spf13/cobra"

	"exodash/internal/rv"
)

type amplitudeResult struct {
	MassEarth     float64 `json:"pl_bmasse"`
	StarMassSolar float64 `json:"st_mass"`
	PeriodDays    float64 `json:"pl_orbper"`
	Eccentricity  float64 `json:"eccentricity"`
	AmplitudeMS   float64 `json:"amplitude_ms"`
}

func newAmplitudeCmd() *cobra.Command {
	var res amplitudeResult

	cmd := &cobra.Command{
		Use:   "amplitude",
		Short: "Compute the radial-velocity semi-amplitude K",
		Example: `  # Earth around the Sun, about 0.09 m/s
  exodash amplitude --mass 1 --star-mass 1 --period 365.25`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := rv.Amplitude(res.MassEarth, res.StarMassSolar, res.PeriodDays, res.Eccentricity)
			if err != nil {
				return err
			}
			res.AmplitudeMS = k

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == outputJSON {
				return printJSON(out, res)
			}
			return printDetail(out, [][2]string{
				{"Planet mass (Earth)", formatNumber(res.MassEarth)},
				{"Star mass (Sun)", formatNumber(res.StarMassSolar)},
				{"Period (days)", formatNumber(res.PeriodDays)},
				{"Eccentricity", formatNumber(res.Eccentricity)},
				{"K (m/s)", formatNumber(res.AmplitudeMS)},
			})
		},
	}

	f := cmd.Flags()
	f.Float64Var(&res.MassEarth, "mass", 0, "Planet mass in Earth masses (required)")
	f.Float64Var(&res.StarMassSolar, "star-mass", 0, "Host star mass in solar masses (required)")
	f.Float64Var(&res.PeriodDays, "period", 0, "Orbital period in days (required)")
	f.Float64Var(&res.Eccentricity, "ecc", 0, "Orbital eccentricity in [0, 1)")
	_ = cmd.MarkFlagRequired("mass")
	_ = cmd.MarkFlagRequired("star-mass")
	_ = cmd.MarkFlagRequired("period")

	return cmd
}
