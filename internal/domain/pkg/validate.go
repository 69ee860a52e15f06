package pkg

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var (
	identifierSegment = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	versionPattern    = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// ValidIdentifier reports whether name is a well-formed package identifier:
// one or more dot-separated segments, each starting with a lowercase letter
// followed by lowercase letters, digits or underscores.
func ValidIdentifier(name string) bool {
	if name == "" {
		return false
	}

	for _, segment := range strings.Split(name, ".") {
		if !identifierSegment.MatchString(segment) {
			return false
		}
	}

	return true
}

// localDir reports whether dir is usable as a package directory:
// relative to the project root and free of parent traversal.
// The empty string is allowed and means the project root itself.
func localDir(dir string) bool {
	if dir == "" {
		return true
	}

	if strings.TrimSpace(dir) != dir {
		return false
	}

	if strings.HasPrefix(dir, "/") || strings.HasPrefix(dir, "\\") {
		return false
	}

	for _, segment := range strings.Split(strings.ReplaceAll(dir, "\\", "/"), "/") {
		if segment == ".." {
			return false
		}
	}

	return true
}

// Validate checks the manifest fields an installer relies on.
// Dependency entries are not validated: they may name system packages
// outside the identifier grammar.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return &ManifestError{Field: "name", Reason: "required"}
	}

	if !ValidIdentifier(m.Name) {
		return &ManifestError{Field: "name", Reason: "not a valid package identifier"}
	}

	if m.Version == "" {
		return &ManifestError{Field: "version", Reason: "required"}
	}

	if !versionPattern.MatchString(m.Version) {
		return &ManifestError{Field: "version", Reason: "must be in MAJOR.MINOR.PATCH form"}
	}

	for _, maintainer := range m.Maintainers {
		if maintainer.Name == "" {
			return &ManifestError{Field: "maintainers", Reason: "maintainer name is required"}
		}

		if maintainer.Email == "" {
			continue
		}

		if _, err := mail.ParseAddress(maintainer.Email); err != nil {
			return &ManifestError{
				Field:  "maintainers",
				Reason: fmt.Sprintf("bad email address for %q", maintainer.Name),
				Err:    err,
			}
		}
	}

	return nil
}
