package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/remind-api/internal/clock"
	"github.com/phrazzld/remind-api/internal/config"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "remind-api",
		Short: "Todo list server with reminder delivery",
		// Usage on every RunE error hides the actual message.
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to a config file (default ./config.yaml when present)")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newMigrateCommand(opts))
	return root
}

// loadConfig loads configuration and sets up the default logger.
func loadConfig(opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(opts)
			if err != nil {
				return err
			}

			log.Info("server configuration loaded",
				"port", cfg.Server.Port,
				"log_level", cfg.Server.LogLevel,
				"storage_driver", cfg.Storage.Driver,
				"push_enabled", cfg.Push.Enabled)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, cfg, log, clock.Real{}, os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(ctx)
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate {up|down|status|version|reset}",
		Short: "Run database migrations against the postgres store",
		Example: `
remind-api migrate up
REMIND_STORAGE_DATABASE_URL=postgres://... remind-api migrate status
`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: migrateCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isMigrateCommand(args[0]) {
				return fmt.Errorf("unknown migration command %q", args[0])
			}

			cfg, log, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg, args[0], log)
		},
	}
}

var migrateCommands = []string{
	postgres.MigrateUp,
	postgres.MigrateDown,
	postgres.MigrateStatus,
	postgres.MigrateVersion,
	postgres.MigrateReset,
}

func isMigrateCommand(name string) bool {
	for _, c := range migrateCommands {
		if c == name {
			return true
		}
	}
	return false
}

// errNoDatabase is returned by migrate when the postgres store is not
// configured.
var errNoDatabase = errors.New("migrations need storage.driver=postgres and storage.database_url")

func runMigrations(ctx context.Context, cfg *config.Config, command string, log *slog.Logger) error {
	if cfg.Storage.Driver != storageDriverPostgres || cfg.Storage.DatabaseURL == "" {
		return errNoDatabase
	}
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := postgres.Open(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database connection", "error", err)
		}
	}()

	return postgres.Migrate(ctx, db, command, log)
}
