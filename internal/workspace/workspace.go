package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robolab/packlab/internal/domain/pkg"
	"github.com/robolab/packlab/internal/manifest"
)

// SourceDirName is the workspace subdirectory that holds package sources.
const SourceDirName = "src"

var (
	// ErrNotInWorkspace is returned when no enclosing workspace exists.
	ErrNotInWorkspace = errors.New("not inside a workspace")
	// ErrPackageNotFound is returned when the workspace has no package with the requested name.
	ErrPackageNotFound = errors.New("package not found in workspace")
)

// Package is a source package found in a workspace.
type Package struct {
	// Name is the package name from the manifest.
	Name string
	// Dir is the absolute path of the package directory.
	Dir string
	// Manifest carries the parsed package manifest.
	Manifest *pkg.Manifest
}

// FindRoot walks up from start until it finds a directory containing
// a src subdirectory and returns it. It returns ErrNotInWorkspace when
// the filesystem root is reached without finding one.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		info, err := os.Stat(filepath.Join(dir, SourceDirName))
		if err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: searched from %s upwards", ErrNotInWorkspace, start)
		}

		dir = parent
	}
}

// Scan inventories the packages under the workspace src directory.
// Any directory carrying a manifest counts as a package and is not
// descended into further. Hidden directories are skipped entirely.
// Two directories declaring the same package name is a configuration
// error. The result is sorted by package name.
func Scan(root string) ([]*Package, error) {
	sourceDir := filepath.Join(root, SourceDirName)
	byName := make(map[string]*Package)

	var packages []*Package

	err := filepath.WalkDir(sourceDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() {
			return nil
		}

		if path != sourceDir && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}

		manifestPath := filepath.Join(path, manifest.DefaultFilename)

		if _, err = os.Stat(manifestPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}

			return fmt.Errorf("check manifest %s: %w", manifestPath, err)
		}

		parsed, err := manifest.Load(manifestPath)
		if err != nil {
			return err
		}

		found := &Package{
			Name:     parsed.Name,
			Dir:      path,
			Manifest: parsed,
		}

		if previous, ok := byName[found.Name]; ok {
			return &pkg.ConfigurationError{
				Package: found.Name,
				Dir:     path,
				Reason:  fmt.Sprintf("declared by both %s and %s", previous.Dir, path),
			}
		}

		byName[found.Name] = found
		packages = append(packages, found)

		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("scan workspace %s: %w", root, err)
	}

	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Name < packages[j].Name
	})

	return packages, nil
}

// FindPackage looks up the named package in the workspace.
func FindPackage(root, name string) (*Package, error) {
	packages, err := Scan(root)
	if err != nil {
		return nil, err
	}

	for _, found := range packages {
		if found.Name == name {
			return found, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
}
