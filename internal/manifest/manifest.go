package manifest

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/robolab/packlab/internal/domain/pkg"
)

// DefaultFilename is the manifest file expected in a package root.
const DefaultFilename = "package.yaml"

// Load reads and validates a package manifest.
// Every failure surfaces as a *pkg.ManifestError naming the file and,
// when known, the offending field.
func Load(path string) (*pkg.Manifest, error) {
	if path == "" {
		path = DefaultFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &pkg.ManifestError{Path: path, Reason: "cannot read manifest", Err: err}
	}

	var m pkg.Manifest
	if err = yaml.Unmarshal(contents, &m); err != nil {
		return nil, &pkg.ManifestError{Path: path, Reason: "malformed YAML", Err: err}
	}

	if err = m.Validate(); err != nil {
		// Validate builds a fresh error value, so stamping the path is safe.
		var manifestErr *pkg.ManifestError
		if errors.As(err, &manifestErr) {
			manifestErr.Path = path
		}

		return nil, err
	}

	return &m, nil
}
