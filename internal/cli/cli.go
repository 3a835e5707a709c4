package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"barefoot/config"
	"barefoot/internal/adapter/out/storage/postgres"
	"barefoot/internal/app"
	"barefoot/pkg/logger"

	"github.com/spf13/cobra"
)

// NewRootCommand returns the barefoot command tree.
func NewRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "barefoot",
		Short:         "Posts and auth service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (environment variables override it)")

	root.AddCommand(
		newServeCommand(&configFile),
		newMigrateCommand(&configFile),
	)
	return root
}

func newServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and gRPC APIs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(*configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = withLogger(ctx, cfg)

			a, err := app.NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}
}

func newMigrateCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations to PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(*configFile)
			if err != nil {
				return err
			}
			if cfg.Postgres.User == "" || cfg.Postgres.Host == "" {
				return fmt.Errorf("invalid config: postgres.user and postgres.host are required")
			}

			ctx := withLogger(cmd.Context(), cfg)
			pool, err := app.OpenPostgres(ctx, cfg.Postgres)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
			logger.FromContext(ctx).Info("migrations applied")
			return nil
		},
	}
}

func withLogger(ctx context.Context, cfg config.Config) context.Context {
	log := logger.New(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)
	return logger.WithLogger(ctx, log)
}
