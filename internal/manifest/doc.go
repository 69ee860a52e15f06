// Package manifest reads the ecosystem side of a package configuration.
//
// Every package publishes a package.yaml describing its name, version,
// maintainers, licenses and scoped dependencies. The manifest is merged with
// the local declaration by pkg.Build; a missing or malformed manifest is
// fatal to the invocation that needed it.
package manifest
