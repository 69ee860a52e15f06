package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robolab/packlab/internal/logger"
	"github.com/robolab/packlab/internal/service/list"
	"github.com/robolab/packlab/internal/version"
)

var (
	// quiet prints bare package names instead of the table.
	quiet bool
	// logLevel adjusts logging verbosity.
	logLevel string

	// rootCmd represents the base command for listing workspace packages.
	rootCmd = &cobra.Command{
		Use:   "packlab-list [dir]",
		Short: "List the packages of the enclosing workspace.",
		Long: `Prints the package inventory of the workspace enclosing the given
directory (or the current one) as a table with name, version, path and
description. Quiet mode prints bare names, one per line, for scripting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Use directory argument if provided, otherwise the working directory.
			var dir string
			if len(args) > 0 {
				dir = args[0]
			}

			options := &list.Options{
				Dir:   dir,
				Quiet: quiet,
			}

			return list.Run(ctx, options)
		},
	}
)

// Execute runs the packlab-list CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print bare package names")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "logging level (debug, info, warn, error)")
}
