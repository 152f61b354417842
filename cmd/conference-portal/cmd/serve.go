package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/upb/conference-portal/app"
	"github.com/upb/conference-portal/routes"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Starts the JSON API with the /auth endpoints and the /api/v1 product routes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			cfg.Server.AutoMigrate = true
		}

		deps, err := app.NewDependencies(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize dependencies: %w", err)
		}
		defer func() {
			if err := deps.Close(context.Background()); err != nil {
				logger.Warn("failed to close dependencies", zap.Error(err))
			}
		}()

		logger.Info("starting API server",
			zap.String("environment", cfg.Environment),
			zap.String("database", cfg.Database.LogString()),
		)

		srv := newHTTPServer(cfg.Server.Address(), routes.SetupRoutes(deps),
			cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
		return runServer(ctx, srv, cfg.Server.ShutdownTimeout, logger)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Apply pending migrations before serving (env: AUTO_MIGRATE)")
}
