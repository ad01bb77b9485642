package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"exodash/internal/domain"
	"exodash/internal/rv"
)

type fetchResult struct {
	Records []domain.PlanetRecord `json:"records"`
	Dropped int                   `json:"dropped"`
}

func newFetchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch planets from the NASA Exoplanet Archive",
		Long:  "Fetch the first --limit planets, shortest period first, and print the complete rows with their catalog amplitude.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, dropped, err := opts.fetchRecords(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == outputJSON {
				return printJSON(out, fetchResult{Records: records, Dropped: dropped})
			}

			rows := make([][]string, 0, len(records))
			for _, p := range records {
				k := "-"
				if v, err := rv.Amplitude(p.MassEarth, p.StarMassSolar, p.PeriodDays, p.Eccentricity); err == nil {
					k = formatNumber(v)
				}
				rows = append(rows, []string{
					p.Name, p.HostName,
					formatNumber(p.MassEarth),
					formatNumber(p.PeriodDays),
					formatNumber(p.SemiMajorAxisAU),
					formatNumber(p.Eccentricity),
					formatNumber(p.StarMassSolar),
					k,
				})
			}
			if err := printTable(out, []string{"PLANET", "HOST", "MASS_EARTH", "PERIOD_DAYS", "A_AU", "ECC", "STAR_MASS_SUN", "K_MS"}, rows); err != nil {
				return err
			}
			if dropped > 0 {
				_, err = cmd.ErrOrStderr().Write([]byte(strconv.Itoa(dropped) + " incomplete row(s) dropped\n"))
			}
			return err
		},
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
