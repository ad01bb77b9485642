package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"exodash/internal/config"
	"exodash/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard server",
		Long: `Run the HTTP server with the dashboard UI under /ui and the JSON API under /v1.
Server settings come from the environment (LISTEN_ADDR, ARCHIVE_URL, ...); the
archive flags and the profile override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := serverConfig(opts, cmd.Flags().Changed("listen"), listen)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides LISTEN_ADDR and the profile)")
	return cmd
}

// serverConfig loads the server configuration from the environment and
// applies the CLI overrides on top.
func serverConfig(opts *rootOptions, listenChanged bool, listen string) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("could not load .env file", "error", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	switch {
	case listenChanged:
		cfg.ListenAddr = listen
	case opts.listen != "":
		cfg.ListenAddr = opts.listen
	}
	if opts.set["archive-url"] {
		cfg.Archive.URL = opts.archiveURL
	}
	if opts.set["timeout"] {
		cfg.Archive.Timeout = opts.timeout
	}
	if opts.set["limit"] {
		cfg.DefaultLimit = opts.limit
	}
	return cfg, cfg.Validate()
}
