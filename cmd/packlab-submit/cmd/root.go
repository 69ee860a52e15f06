package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robolab/packlab/internal/logger"
	"github.com/robolab/packlab/internal/service/submit"
	"github.com/robolab/packlab/internal/version"
)

var (
	// configPath stores the path to the API access YAML file.
	configPath string
	// logLevel adjusts logging verbosity.
	logLevel string

	// rootCmd represents the base command for submitting a project.
	rootCmd = &cobra.Command{
		Use:   "packlab-submit [project]",
		Short: "Pack a workspace project and submit it to the lab.",
		Long: `Packs the named project from the enclosing workspace into a gzipped tar
and uploads it to the lab job API with your credentials.

Paths matched by the project's .gitignore or .packlabignore stay out of
the upload and archives above the size limit are rejected before any
network traffic. Credentials are read from packlab-api-access.yaml in
the working directory or the workspace root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &submit.Options{
				ConfigPath: configPath,
				Project:    args[0],
			}

			return submit.Run(ctx, options)
		},
	}
)

// Execute runs the packlab-submit CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the API access file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "logging level (debug, info, warn, error)")
}
