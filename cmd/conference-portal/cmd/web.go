package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/upb/conference-portal/web"
	"github.com/upb/conference-portal/web/apiclient"
	"go.uber.org/zap"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the web tier",
	Long:  `Starts the server-rendered pages. Every page request is checked against the API identity endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := apiclient.New(cfg.Web.APIBaseURL, cfg.Web.APITimeout)
		if err != nil {
			return fmt.Errorf("failed to create API client: %w", err)
		}

		server, err := web.NewServer(client, cfg.Web, cfg.Auth.CookieName, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize web tier: %w", err)
		}

		logger.Info("starting web tier",
			zap.String("api", cfg.Web.APIBaseURL),
			zap.Duration("bootstrap_wait", cfg.Web.BootstrapWait),
		)

		srv := newHTTPServer(cfg.Web.Address(), server.Routes(),
			cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
		return runServer(ctx, srv, cfg.Server.ShutdownTimeout, logger)
	},
}
