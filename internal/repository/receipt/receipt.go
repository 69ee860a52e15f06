package receipt

import (
	"fmt"
	"os"
	"os/user"
	"time"
)

// Actor identifies who performed an installation.
type Actor struct {
	// Hostname is the machine the installation ran on.
	Hostname string `yaml:"hostname"`
	// Username is the operating system account that ran it.
	Username string `yaml:"username"`
}

// Receipt records the outcome of a package installation.
type Receipt struct {
	// ToolVersion is the packlab version that performed the installation.
	ToolVersion string `yaml:"tool_version"`
	// Package is the installed package name.
	Package string `yaml:"package"`
	// Version is the installed package version.
	Version string `yaml:"version"`
	// InstalledAt is the UTC timestamp of the installation.
	InstalledAt time.Time `yaml:"installed_at"`
	// InstalledBy identifies the host and user that installed the package.
	InstalledBy *Actor `yaml:"installed_by,omitempty"`
	// Files maps prefix-relative installed paths to their content checksums.
	Files map[string]string `yaml:"files"`
}

// DetectActor gathers host and user information for the receipt audit trail.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
