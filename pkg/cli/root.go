// Package cli implements the exodash command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"exodash/internal/archive"
	"exodash/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

// Environment variables consulted when a flag is not set.
const (
	envOutput     = "EXODASH_OUTPUT"
	envProfile    = "EXODASH_PROFILE"
	envArchiveURL = "EXODASH_ARCHIVE_URL"
	envTimeout    = "EXODASH_TIMEOUT"
	envLimit      = "EXODASH_LIMIT"
)

// rootOptions holds the persistent settings after precedence is applied:
// flag > EXODASH_* environment > profile > default.
type rootOptions struct {
	output     string
	profile    string
	archiveURL string
	timeout    time.Duration
	limit      int
	listen     string

	// set records which options came from a flag, the environment or the
	// profile rather than a built-in default.
	set map[string]bool
}

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if getOutputFormat(rootCmd) == outputJSON {
			_ = printJSON(os.Stdout, map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "exodash",
		Short:         "Exoplanet radial-velocity dashboard",
		Long:          "Fetch planets from the NASA Exoplanet Archive, compute radial-velocity curves and serve the dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.output, "output", "o", "", "Output format (table, json); defaults to table on a terminal")
	pf.StringVarP(&opts.profile, "profile", "p", "", "Config profile to use")
	pf.StringVar(&opts.archiveURL, "archive-url", archive.DefaultEndpoint, "TAP sync endpoint of the exoplanet archive")
	pf.DurationVar(&opts.timeout, "timeout", archive.DefaultTimeout, "Archive request timeout")
	pf.IntVar(&opts.limit, "limit", domain.DefaultLimit, "Number of planets to request (1-10000)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newFetchCmd(opts))
	rootCmd.AddCommand(newAmplitudeCmd())
	rootCmd.AddCommand(newCurveCmd(opts))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// resolve fills every option the user did not pass as a flag from the
// environment, then the profile.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	flags := cmd.Flags()
	o.set = map[string]bool{
		"archive-url": flags.Changed("archive-url"),
		"timeout":     flags.Changed("timeout"),
		"limit":       flags.Changed("limit"),
	}

	if !flags.Changed("profile") {
		o.profile = os.Getenv(envProfile)
	}
	cfg, err := loadUserConfigOrEmpty()
	if err != nil {
		return err
	}
	p, err := cfg.ActiveProfile(o.profile)
	if err != nil {
		return err
	}
	o.listen = p.Listen

	if !flags.Changed("output") {
		switch {
		case os.Getenv(envOutput) != "":
			o.output = os.Getenv(envOutput)
		case p.Output != "":
			o.output = p.Output
		default:
			o.output = defaultOutputFor(cmd.OutOrStdout())
		}
		// keep the flag in sync so getOutputFormat sees the resolved value
		_ = cmd.Root().PersistentFlags().Set("output", o.output)
	}
	if err := validateOutputFormat(o.output); err != nil {
		return err
	}

	if !flags.Changed("archive-url") {
		if v := os.Getenv(envArchiveURL); v != "" {
			o.archiveURL, o.set["archive-url"] = v, true
		} else if p.ArchiveURL != "" {
			o.archiveURL, o.set["archive-url"] = p.ArchiveURL, true
		}
	}

	if !flags.Changed("timeout") {
		raw, source := os.Getenv(envTimeout), envTimeout
		if raw == "" {
			raw, source = p.Timeout, "profile timeout"
		}
		if raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil || d <= 0 {
				return fmt.Errorf("%s: invalid duration %q", source, raw)
			}
			o.timeout, o.set["timeout"] = d, true
		}
	}

	if !flags.Changed("limit") {
		if raw := os.Getenv(envLimit); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%s: invalid integer %q", envLimit, raw)
			}
			o.limit, o.set["limit"] = n, true
		} else if p.Limit != 0 {
			o.limit, o.set["limit"] = p.Limit, true
		}
	}
	return domain.ValidateLimit(o.limit)
}

// archiveClient builds a client for one-shot CLI use. A single request is
// made per invocation so no outbound rate limit applies.
func (o *rootOptions) archiveClient(cmd *cobra.Command) *archive.Client {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	return archive.NewClient(o.archiveURL,
		archive.WithTimeout(o.timeout),
		archive.WithRateLimit(0, 0),
		archive.WithLogger(logger),
	)
}

// fetchRecords loads the configured number of complete planets.
func (o *rootOptions) fetchRecords(cmd *cobra.Command) ([]domain.PlanetRecord, int, error) {
	records, dropped, err := o.archiveClient(cmd).FetchRecords(cmd.Context(), o.limit)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch planets from NASA Exoplanet Archive: %w", err)
	}
	return records, dropped, nil
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
