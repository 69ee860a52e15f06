// Package setup builds a package descriptor and installs the package sources.
//
// It merges the project's setup.toml declaration with the package manifest,
// resolves every declared package to its source directory and hands the
// result to the installer. With DescribeOnly set it stops once the
// descriptor is built and validated.
package setup
