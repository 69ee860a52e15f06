package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robolab/packlab/internal/declaration"
	"github.com/robolab/packlab/internal/domain/pkg"
	"github.com/robolab/packlab/internal/installer"
	"github.com/robolab/packlab/internal/logger"
	"github.com/robolab/packlab/internal/manifest"
)

// defaultPrefixDirName is the installation prefix created inside the
// project when no prefix is given.
const defaultPrefixDirName = "install"

// Options contains inputs for the setup entry point.
type Options struct {
	// PackageDir is the project directory (defaults to the working directory).
	PackageDir string
	// SetupPath is an optional declaration file path (defaults to setup.toml in PackageDir).
	SetupPath string
	// ManifestPath is an optional manifest file path (defaults to package.yaml in PackageDir).
	ManifestPath string
	// Prefix is the installation prefix (defaults to install under PackageDir).
	Prefix string
	// DescribeOnly stops after the descriptor is built and validated.
	DescribeOnly bool
}

// setup merges the package configuration records and drives the installer.
// It is unexported—callers should use Run, which encapsulates defaulting and validation.
type setup struct {
	// opts carries the resolved input paths.
	opts *Options
}

// Run executes the setup workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "packlab-setup")

	s, err := newSetup(opts)
	if err != nil {
		return fmt.Errorf("initialize setup: %w", err)
	}

	if err = s.Run(ctx); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	logger.Info(ctx, "Setup completed successfully")

	return nil
}

// newSetup resolves defaults for any options the caller left empty.
func newSetup(opts *Options) (*setup, error) {
	resolved := *opts

	if resolved.PackageDir == "" {
		workingDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}

		resolved.PackageDir = workingDir
	}

	if resolved.SetupPath == "" {
		resolved.SetupPath = filepath.Join(resolved.PackageDir, declaration.DefaultFilename)
	}

	if resolved.ManifestPath == "" {
		resolved.ManifestPath = filepath.Join(resolved.PackageDir, manifest.DefaultFilename)
	}

	if resolved.Prefix == "" {
		resolved.Prefix = filepath.Join(resolved.PackageDir, defaultPrefixDirName)
	}

	return &setup{opts: &resolved}, nil
}

// Run builds the descriptor and, unless DescribeOnly is set, installs it.
func (s *setup) Run(ctx context.Context) error {
	descriptor, err := s.buildDescriptor(ctx)
	if err != nil {
		return err
	}

	if s.opts.DescribeOnly {
		logger.Info(ctx, "Describe-only run, skipping installation")
		return nil
	}

	installReceipt, err := installer.New(descriptor, s.opts.PackageDir, s.opts.Prefix).Install(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Installed package",
		"package", installReceipt.Package,
		"version", installReceipt.Version,
		"files", len(installReceipt.Files),
		"prefix", s.opts.Prefix)

	return nil
}

// buildDescriptor loads both configuration records and merges them.
func (s *setup) buildDescriptor(ctx context.Context) (*pkg.Descriptor, error) {
	logger.InfoKV(ctx, "Loading package declaration", "path", s.opts.SetupPath)

	decl, err := declaration.Load(s.opts.SetupPath)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Loading package manifest", "path", s.opts.ManifestPath)

	packageManifest, err := manifest.Load(s.opts.ManifestPath)
	if err != nil {
		return nil, err
	}

	descriptor, err := pkg.Build(decl, packageManifest, s.opts.PackageDir)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Descriptor ready",
		"package", descriptor.Name,
		"version", descriptor.Version,
		"packages", len(descriptor.Packages))

	for _, location := range descriptor.SortedLocations() {
		logger.DebugKV(ctx, "Resolved package location",
			"package", location.Package,
			"dir", location.Dir)
	}

	return descriptor, nil
}
