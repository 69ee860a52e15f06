package installer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/robolab/packlab/internal/domain/pkg"
	"github.com/robolab/packlab/internal/logger"
	"github.com/robolab/packlab/internal/repository/receipt"
	"github.com/robolab/packlab/internal/version"
)

var (
	errInstallerAlreadyRunning = errors.New("an installation is already running")
	errUnsupportedFileType     = errors.New("unsupported file type")
)

// Installer copies descriptor package sources into an installation prefix.
type Installer struct {
	// descriptor is the merged package configuration to install.
	descriptor *pkg.Descriptor
	// root is the project directory the descriptor locations are relative to.
	root string
	// prefix is the installation prefix receiving the files.
	prefix string
	// repo persists the install receipt inside the prefix.
	repo receipt.Repository
}

// New creates an installer for the descriptor with a file-backed receipt
// repository inside the prefix.
func New(descriptor *pkg.Descriptor, root, prefix string) *Installer {
	return &Installer{
		descriptor: descriptor,
		root:       root,
		prefix:     prefix,
		repo:       receipt.NewFileRepository(filepath.Join(prefix, receipt.DefaultFilename)),
	}
}

// Install copies every declared package location into the prefix and writes
// the install receipt. A marker file in the prefix prevents two installations
// from running at the same time.
func (i *Installer) Install(ctx context.Context) (*receipt.Receipt, error) {
	if err := os.MkdirAll(i.prefix, DefaultFileMode); err != nil {
		return nil, fmt.Errorf("create prefix %s: %w", i.prefix, err)
	}

	if IsInstallerRunningNow(ctx, i.prefix) {
		return nil, errInstallerAlreadyRunning
	}

	markerPath := filepath.Join(i.prefix, MarkerFilename)

	marker, err := os.Create(markerPath)
	if err != nil {
		return nil, fmt.Errorf("create install marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return nil, fmt.Errorf("close install marker: %w", err)
	}

	defer func() {
		_ = os.Remove(markerPath)
	}()

	installReceipt, err := i.installPackages(ctx)
	if err != nil {
		return nil, err
	}

	if err = i.repo.Save(ctx, installReceipt); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Saved install receipt",
		"package", installReceipt.Package,
		"files", len(installReceipt.Files))

	return installReceipt, nil
}

// installPackages copies each package location and collects the receipt.
func (i *Installer) installPackages(ctx context.Context) (*receipt.Receipt, error) {
	actor, err := receipt.DetectActor()
	if err != nil {
		// Not an error - the receipt simply omits the actor.
		logger.Warnf(ctx, "Could not detect the installing user: %v", err)
	}

	installReceipt := &receipt.Receipt{
		ToolVersion: version.Short(),
		Package:     i.descriptor.Name,
		Version:     i.descriptor.Version,
		InstalledAt: time.Now().UTC(),
		InstalledBy: actor,
		Files:       make(map[string]string, defaultMapCapacity),
	}

	for _, location := range i.descriptor.SortedLocations() {
		if err = i.installLocation(ctx, location, installReceipt.Files); err != nil {
			return nil, err
		}
	}

	return installReceipt, nil
}

// installLocation copies the regular files of one package location into the
// prefix. Subdirectories are packages of their own and install only when
// declared.
func (i *Installer) installLocation(ctx context.Context, location pkg.PackageLocation, files map[string]string) error {
	sourceDir := filepath.Join(i.root, location.Dir)
	targetDir := filepath.Join(i.prefix, libDirName, packageInstallDir(location.Package))

	logger.InfoKV(ctx, "Installing package sources",
		"package", location.Package,
		"source", sourceDir,
		"target", targetDir)

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return fmt.Errorf("read package directory: %w", err)
	}

	for _, entry := range entries {
		sourcePath := filepath.Join(sourceDir, entry.Name())

		// Stat follows symlinks so linked sources install as regular files.
		info, err := os.Stat(sourcePath)
		if err != nil {
			return fmt.Errorf("stat %s: %w", sourcePath, err)
		}

		if info.IsDir() {
			continue
		}

		if !info.Mode().IsRegular() {
			return fmt.Errorf("%w: %s", errUnsupportedFileType, sourcePath)
		}

		targetPath := filepath.Join(targetDir, entry.Name())
		if err = i.installFile(ctx, sourcePath, targetPath, info.Mode().Perm(), files); err != nil {
			return err
		}
	}

	return nil
}

// installFile stages one file through go-update so a partially written target
// never replaces a good one. Files whose installed copy already matches the
// source checksum are skipped.
func (i *Installer) installFile(ctx context.Context, sourcePath, targetPath string, mode os.FileMode, files map[string]string) error {
	data, err := os.ReadFile(filepath.Clean(sourcePath))
	if err != nil {
		return fmt.Errorf("read %s: %w", sourcePath, err)
	}

	checksum, err := Checksum(data)
	if err != nil {
		return err
	}

	relativePath, err := filepath.Rel(i.prefix, targetPath)
	if err != nil {
		return err
	}

	receiptPath := filepath.ToSlash(relativePath)
	files[receiptPath] = base64.StdEncoding.EncodeToString(checksum)

	matches, err := targetMatches(targetPath, checksum)
	if err != nil {
		return err
	}

	if matches {
		logger.DebugKV(ctx, "File unchanged, skipping", "file", receiptPath)
		return nil
	}

	if err = os.MkdirAll(filepath.Dir(targetPath), DefaultFileMode); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	if _, err = os.Stat(targetPath); err != nil && os.IsNotExist(err) {
		var target *os.File

		if target, err = os.Create(targetPath); err != nil {
			return err
		}

		if err = target.Close(); err != nil {
			return err
		}
	}

	logger.DebugKV(ctx, "Applying file", "file", receiptPath)

	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: mode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("apply %s: %w", receiptPath, err)
	}

	oldPath := targetPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}

// targetMatches reports whether the installed file already carries the
// expected checksum. A missing file never matches.
func targetMatches(targetPath string, checksum []byte) (bool, error) {
	if _, err := os.Stat(targetPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	installed, err := FileChecksum(targetPath)
	if err != nil {
		return false, err
	}

	return bytes.Equal(installed, checksum), nil
}

// packageInstallDir converts a dotted package identifier into the directory
// path it installs to, one directory per namespace segment.
func packageInstallDir(name string) string {
	return filepath.Join(strings.Split(name, ".")...)
}
