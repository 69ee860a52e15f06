package pkg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Build merges a local declaration with a package manifest into a single
// descriptor. The merge is additive: the two records carry disjoint fields,
// so nothing is overwritten and the result is the union of both sides.
// Build validates both records, resolves every declared package to its
// source directory under root and fails when the sources are absent.
// It is deterministic: equal inputs always produce equal descriptors.
func Build(decl *Declaration, manifest *Manifest, root string) (*Descriptor, error) {
	if decl == nil || len(decl.Packages) == 0 {
		return nil, &ConfigurationError{Reason: "no packages declared"}
	}

	sourceRoot, ok := decl.PackageDir[RootNamespace]
	if !ok {
		return nil, &ConfigurationError{Reason: "package directory mapping has no root namespace entry"}
	}

	if err := checkPackageDir(decl.PackageDir); err != nil {
		return nil, err
	}

	if manifest == nil {
		return nil, &ManifestError{Reason: "no manifest provided"}
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	packages := append([]string(nil), decl.Packages...)
	sort.Strings(packages)

	locations := make(map[string]string, len(packages))

	for i, name := range packages {
		if !ValidIdentifier(name) {
			return nil, &ConfigurationError{Package: name, Reason: "not a valid package identifier"}
		}

		if i > 0 && packages[i-1] == name {
			return nil, &ConfigurationError{Package: name, Reason: "declared more than once"}
		}

		locations[name] = resolveDir(decl.PackageDir, name)
	}

	if err := checkLocations(root, packages, locations); err != nil {
		return nil, err
	}

	descriptor := &Descriptor{
		Name:         manifest.Name,
		Version:      manifest.Version,
		Description:  manifest.Description,
		Maintainers:  append([]Maintainer(nil), manifest.Maintainers...),
		Licenses:     append([]string(nil), manifest.Licenses...),
		Dependencies: manifest.Dependencies.Clone(),
		Packages:     packages,
		PackageDir:   make(map[string]string, len(decl.PackageDir)),
		SourceRoot:   sourceRoot,
		Locations:    locations,
	}

	for namespace, dir := range decl.PackageDir {
		descriptor.PackageDir[namespace] = dir
	}

	return descriptor, nil
}

// checkPackageDir rejects namespace keys that are not identifiers and
// directory values that would escape the project root. Namespaces are
// checked in sorted order so the first failure reported is stable.
func checkPackageDir(packageDir map[string]string) error {
	namespaces := make([]string, 0, len(packageDir))
	for namespace := range packageDir {
		namespaces = append(namespaces, namespace)
	}

	sort.Strings(namespaces)

	for _, namespace := range namespaces {
		if namespace != RootNamespace && !ValidIdentifier(namespace) {
			return &ConfigurationError{Package: namespace, Reason: "not a valid namespace"}
		}

		if dir := packageDir[namespace]; !localDir(dir) {
			return &ConfigurationError{Dir: dir, Reason: "package directories must stay inside the project"}
		}
	}

	return nil
}

// resolveDir maps a package identifier to its source directory using the
// most specific namespace entry available. An exact entry wins, then the
// longest declared parent namespace with the remaining segments appended
// as path components, then the root namespace entry.
func resolveDir(packageDir map[string]string, name string) string {
	segments := strings.Split(name, ".")

	for i := len(segments); i > 0; i-- {
		namespace := strings.Join(segments[:i], ".")

		base, ok := packageDir[namespace]
		if !ok {
			continue
		}

		return joinLocation(base, segments[i:])
	}

	return joinLocation(packageDir[RootNamespace], segments)
}

// joinLocation builds a relative source path from a base directory and
// trailing namespace segments. An empty base means the project root.
func joinLocation(base string, segments []string) string {
	location := filepath.Join(segments...)
	if base == "" {
		return location
	}

	return filepath.Join(base, location)
}

// checkLocations verifies that every resolved package directory exists
// under root. Packages are checked in sorted order so the first failure
// reported is stable across runs.
func checkLocations(root string, packages []string, locations map[string]string) error {
	if root == "" {
		root = "."
	}

	for _, name := range packages {
		dir := locations[name]

		info, err := os.Stat(filepath.Join(root, dir))

		switch {
		case errors.Is(err, fs.ErrNotExist):
			return &ConfigurationError{Package: name, Dir: dir, Reason: "source directory does not exist"}
		case err != nil:
			return &ConfigurationError{Package: name, Dir: dir, Reason: err.Error()}
		case !info.IsDir():
			return &ConfigurationError{Package: name, Dir: dir, Reason: "source path is not a directory"}
		}
	}

	return nil
}
