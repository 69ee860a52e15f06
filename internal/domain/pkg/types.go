package pkg

import "sort"

// RootNamespace is the reserved key in a package-dir mapping that names
// the directory holding top-level package sources.
const RootNamespace = ""

// Declaration is the local side of a package configuration:
// the packages a project registers and where their sources live.
type Declaration struct {
	// Packages lists the declared package identifiers.
	Packages []string
	// PackageDir maps a namespace to the directory holding its sources,
	// relative to the project root. The RootNamespace key is mandatory.
	PackageDir map[string]string
}

// Clone returns a deep copy of the declaration.
func (d *Declaration) Clone() *Declaration {
	if d == nil {
		return nil
	}

	clone := &Declaration{
		Packages: append([]string(nil), d.Packages...),
	}

	if d.PackageDir != nil {
		clone.PackageDir = make(map[string]string, len(d.PackageDir))
		for namespace, dir := range d.PackageDir {
			clone.PackageDir[namespace] = dir
		}
	}

	return clone
}

// Maintainer identifies a person responsible for a package.
type Maintainer struct {
	// Name is the maintainer's display name.
	Name string `yaml:"name"`
	// Email is the maintainer's contact address.
	Email string `yaml:"email,omitempty"`
}

// Dependencies groups the packages a manifest depends on by scope.
type Dependencies struct {
	// Build lists packages required to build this one.
	Build []string `yaml:"build,omitempty"`
	// Run lists packages required at runtime.
	Run []string `yaml:"run,omitempty"`
	// Test lists packages required only by the test suite.
	Test []string `yaml:"test,omitempty"`
}

// Clone returns a deep copy of the dependency sets.
func (d Dependencies) Clone() Dependencies {
	return Dependencies{
		Build: append([]string(nil), d.Build...),
		Run:   append([]string(nil), d.Run...),
		Test:  append([]string(nil), d.Test...),
	}
}

// Manifest is the external side of a package configuration:
// the metadata a package publishes about itself.
type Manifest struct {
	// Name is the package identifier the manifest describes.
	Name string `yaml:"name"`
	// Version is the package version in MAJOR.MINOR.PATCH form.
	Version string `yaml:"version"`
	// Description is a short human-readable summary.
	Description string `yaml:"description,omitempty"`
	// Maintainers lists the people responsible for the package.
	Maintainers []Maintainer `yaml:"maintainers,omitempty"`
	// Licenses lists the licenses the package is released under.
	Licenses []string `yaml:"licenses,omitempty"`
	// Dependencies lists the packages this one depends on.
	Dependencies Dependencies `yaml:"dependencies,omitempty"`
}

// Clone returns a deep copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}

	return &Manifest{
		Name:         m.Name,
		Version:      m.Version,
		Description:  m.Description,
		Maintainers:  append([]Maintainer(nil), m.Maintainers...),
		Licenses:     append([]string(nil), m.Licenses...),
		Dependencies: m.Dependencies.Clone(),
	}
}

// Descriptor is the merged configuration record produced by Build.
// It carries everything an installer needs and nothing else;
// callers must treat it as immutable and use Clone before mutating.
type Descriptor struct {
	// Name is the package name taken from the manifest.
	Name string
	// Version is the package version taken from the manifest.
	Version string
	// Description is the summary taken from the manifest.
	Description string
	// Maintainers lists the maintainers taken from the manifest.
	Maintainers []Maintainer
	// Licenses lists the licenses taken from the manifest.
	Licenses []string
	// Dependencies lists the dependency sets taken from the manifest.
	Dependencies Dependencies

	// Packages lists the declared package identifiers in sorted order.
	Packages []string
	// PackageDir is the namespace-to-directory mapping from the declaration.
	PackageDir map[string]string
	// SourceRoot is the directory mapped to the root namespace.
	SourceRoot string
	// Locations maps each declared package to its source directory,
	// relative to the project root.
	Locations map[string]string
}

// Clone returns a deep copy of the descriptor.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}

	clone := &Descriptor{
		Name:         d.Name,
		Version:      d.Version,
		Description:  d.Description,
		Maintainers:  append([]Maintainer(nil), d.Maintainers...),
		Licenses:     append([]string(nil), d.Licenses...),
		Dependencies: d.Dependencies.Clone(),
		Packages:     append([]string(nil), d.Packages...),
		SourceRoot:   d.SourceRoot,
	}

	if d.PackageDir != nil {
		clone.PackageDir = make(map[string]string, len(d.PackageDir))
		for namespace, dir := range d.PackageDir {
			clone.PackageDir[namespace] = dir
		}
	}

	if d.Locations != nil {
		clone.Locations = make(map[string]string, len(d.Locations))
		for name, dir := range d.Locations {
			clone.Locations[name] = dir
		}
	}

	return clone
}

// SortedLocations returns the package-to-directory pairs of the descriptor
// ordered by package name, for deterministic iteration.
func (d *Descriptor) SortedLocations() []PackageLocation {
	locations := make([]PackageLocation, 0, len(d.Locations))
	for name, dir := range d.Locations {
		locations = append(locations, PackageLocation{Package: name, Dir: dir})
	}

	sort.Slice(locations, func(i, j int) bool {
		return locations[i].Package < locations[j].Package
	})

	return locations
}

// PackageLocation pairs a package identifier with its source directory.
type PackageLocation struct {
	// Package is the package identifier.
	Package string
	// Dir is the package's source directory relative to the project root.
	Dir string
}
