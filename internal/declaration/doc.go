// Package declaration loads the local side of a package configuration.
//
// A package declares the packages it registers and where their sources live
// in a setup.toml file next to its manifest:
//
//	packages = ["rll_tools"]
//
//	[package-dir]
//	"" = "src"
//
// The loader only enforces file shape; pkg.Build validates the contents.
package declaration
