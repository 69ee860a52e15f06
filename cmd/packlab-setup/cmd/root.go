package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robolab/packlab/internal/logger"
	"github.com/robolab/packlab/internal/service/setup"
	"github.com/robolab/packlab/internal/version"
)

var (
	// setupPath stores the path to the package declaration TOML file.
	setupPath string
	// manifestPath stores the path to the package manifest YAML file.
	manifestPath string
	// prefix is the installation prefix directory.
	prefix string
	// describeOnly builds and validates the descriptor without installing.
	describeOnly bool
	// logLevel adjusts logging verbosity.
	logLevel string

	// rootCmd represents the base command for installing package sources.
	rootCmd = &cobra.Command{
		Use:   "packlab-setup [package-dir]",
		Short: "Build a package descriptor and install the declared sources.",
		Long: `Merges the project's setup.toml declaration with its package.yaml manifest
into a single descriptor, resolves every declared package to its source
directory and installs the sources into the prefix.

Runs against the current directory when no package directory is given.
Every file is applied with checksum verification and an install receipt
is written at the prefix root. A second run over an unchanged project
leaves the installed files untouched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Use package directory argument if provided, otherwise the working directory.
			var packageDir string
			if len(args) > 0 {
				packageDir = args[0]
			}

			options := &setup.Options{
				PackageDir:   packageDir,
				SetupPath:    setupPath,
				ManifestPath: manifestPath,
				Prefix:       prefix,
				DescribeOnly: describeOnly,
			}

			return setup.Run(ctx, options)
		},
	}
)

// Execute runs the packlab-setup CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&setupPath, "setup", "s", "", "path to the package declaration file")
	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "path to the package manifest file")
	rootCmd.Flags().StringVarP(&prefix, "prefix", "p", "", "installation prefix directory")
	rootCmd.Flags().BoolVar(&describeOnly, "describe-only", false, "build and validate the descriptor without installing")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "logging level (debug, info, warn, error)")
}
