package pkg

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a package declaration that cannot produce
// a usable descriptor. It is fatal for the invocation that raised it.
type ConfigurationError struct {
	// Package is the offending package identifier, when one is known.
	Package string
	// Dir is the offending directory, when one is known.
	Dir string
	// Reason describes what is wrong with the declaration.
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	var builder strings.Builder

	builder.WriteString("invalid package configuration")

	if e.Package != "" {
		fmt.Fprintf(&builder, ": package %q", e.Package)
	}

	if e.Dir != "" {
		fmt.Fprintf(&builder, ": directory %q", e.Dir)
	}

	if e.Reason != "" {
		builder.WriteString(": ")
		builder.WriteString(e.Reason)
	}

	return builder.String()
}

// ManifestError reports a package manifest that is missing, unreadable
// or malformed. It is fatal for the invocation that raised it.
type ManifestError struct {
	// Path is the manifest location, when one is known.
	Path string
	// Field is the offending manifest field, when one is known.
	Field string
	// Reason describes what is wrong with the manifest.
	Reason string
	// Err is the underlying cause, when there is one.
	Err error
}

// Error implements the error interface.
func (e *ManifestError) Error() string {
	var builder strings.Builder

	builder.WriteString("invalid package manifest")

	if e.Path != "" {
		fmt.Fprintf(&builder, " %q", e.Path)
	}

	if e.Field != "" {
		fmt.Fprintf(&builder, ": field %q", e.Field)
	}

	if e.Reason != "" {
		builder.WriteString(": ")
		builder.WriteString(e.Reason)
	}

	if e.Err != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Err.Error())
	}

	return builder.String()
}

// Unwrap returns the underlying cause, if any.
func (e *ManifestError) Unwrap() error {
	return e.Err
}
