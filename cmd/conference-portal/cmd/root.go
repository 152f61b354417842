// Package cmd holds the conference-portal command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/upb/conference-portal/config"
	"github.com/upb/conference-portal/internal/observability"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "conference-portal",
	Short: "Conference management portal",
	Long: `Conference Portal runs the JSON API (serve), the server-rendered web tier (web)
and the database schema tooling (migrate).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load(cmd.Context())
		if err := validateConfig(cmd, cfg); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Observability.LogLevel = level
		}

		var err error
		logger, err = observability.NewLogger(cfg.Observability)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (env: LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(migrateCmd)
}

// validateConfig checks only the sections the invoked command reads
func validateConfig(cmd *cobra.Command, c *config.Config) error {
	for p := cmd; p != nil; p = p.Parent() {
		switch p {
		case webCmd:
			return c.ValidateWeb()
		case migrateCmd:
			return c.ValidateDatabase()
		}
	}
	return c.Validate()
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
