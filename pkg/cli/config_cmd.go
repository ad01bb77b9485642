package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"exodash/internal/domain"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration profiles",
	}

	cmd.AddCommand(newConfigViewCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUseCmd())

	return cmd
}

func newConfigViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "view",
		Aliases: []string{"show"},
		Short:   "Display the current configuration",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadUserConfigOrEmpty()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == outputJSON {
				return printJSON(out, cfg)
			}
			if len(cfg.Profiles) == 0 {
				_, err := fmt.Fprintf(out, "No profiles configured in %s\n", ConfigPath())
				return err
			}
			rows := make([][]string, 0, len(cfg.Profiles))
			for _, name := range cfg.ProfileNames() {
				current := ""
				if name == cfg.CurrentProfile {
					current = "*"
				}
				rows = append(rows, append([]string{current, name}, profileColumns(cfg.Profiles[name])...))
			}
			return printTable(out, []string{"CURRENT", "NAME", "ARCHIVE-URL", "TIMEOUT", "LIMIT", "OUTPUT", "LISTEN"}, rows)
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var (
		name       string
		archiveURL string
		timeout    string
		limit      int
		output     string
		listen     string
	)

	cmd := &cobra.Command{
		Use:     "set",
		Aliases: []string{"set-profile"},
		Short:   "Create or update a configuration profile",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("profile-output") {
				if err := validateOutputFormat(output); err != nil {
					return err
				}
			}
			if flags.Changed("profile-timeout") {
				if d, err := time.ParseDuration(timeout); err != nil || d <= 0 {
					return fmt.Errorf("invalid timeout %q", timeout)
				}
			}
			if flags.Changed("profile-limit") {
				if err := domain.ValidateLimit(limit); err != nil {
					return err
				}
			}

			cfg, err := loadUserConfigOrEmpty()
			if err != nil {
				return err
			}

			p := cfg.Profiles[name]
			if flags.Changed("profile-archive-url") {
				p.ArchiveURL = archiveURL
			}
			if flags.Changed("profile-timeout") {
				p.Timeout = timeout
			}
			if flags.Changed("profile-limit") {
				p.Limit = limit
			}
			if flags.Changed("profile-output") {
				p.Output = output
			}
			if flags.Changed("listen") {
				p.Listen = listen
			}
			cfg.Profiles[name] = p

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == outputJSON {
				return printJSON(out, map[string]string{
					"status":  "ok",
					"profile": name,
					"path":    ConfigPath(),
				})
			}
			_, err = fmt.Fprintf(out, "Profile %q saved to %s\n", name, ConfigPath())
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "Profile name (required)")
	f.StringVar(&archiveURL, "profile-archive-url", "", "Archive TAP endpoint stored in the profile")
	f.StringVar(&timeout, "profile-timeout", "", "Archive request timeout stored in the profile, e.g. 20s")
	f.IntVar(&limit, "profile-limit", 0, "Planet limit stored in the profile")
	f.StringVar(&output, "profile-output", "", "Default output format stored in the profile")
	f.StringVar(&listen, "listen", "", "Listen address used by serve")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newConfigUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Aliases: []string{"use-profile"},
		Short:   "Set the active configuration profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return fmt.Errorf("no config found: %w", err)
			}
			name := args[0]
			if _, ok := cfg.Profiles[name]; !ok {
				return fmt.Errorf("profile %q not found", name)
			}
			cfg.CurrentProfile = name
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == outputJSON {
				return printJSON(out, map[string]string{
					"status":         "ok",
					"active_profile": name,
				})
			}
			_, err = fmt.Fprintf(out, "Active profile set to %q\n", name)
			return err
		},
	}
}

func profileColumns(p Profile) []string {
	limit := ""
	if p.Limit != 0 {
		limit = strconv.Itoa(p.Limit)
	}
	return []string{p.ArchiveURL, p.Timeout, limit, p.Output, p.Listen}
}
