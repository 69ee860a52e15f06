package declaration

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/robolab/packlab/internal/domain/pkg"
)

// DefaultFilename is the declaration file expected in a package root.
const DefaultFilename = "setup.toml"

// fileDeclaration mirrors the on-disk TOML shape of a local declaration.
type fileDeclaration struct {
	// Packages lists the declared package identifiers.
	Packages []string `toml:"packages"`
	// PackageDir maps namespaces to source directories.
	PackageDir map[string]string `toml:"package-dir"`
}

// Load reads a local package declaration from a TOML file.
// Unknown keys are rejected so typos do not silently drop settings.
// Structural validity of the contents is enforced by pkg.Build, not here.
func Load(path string) (*pkg.Declaration, error) {
	if path == "" {
		path = DefaultFilename
	}

	var raw fileDeclaration

	meta, err := toml.DecodeFile(filepath.Clean(path), &raw)
	if err != nil {
		return nil, fmt.Errorf("read declaration %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}

		return nil, &pkg.ConfigurationError{
			Reason: fmt.Sprintf("unknown declaration keys: %s", strings.Join(keys, ", ")),
		}
	}

	return &pkg.Declaration{
		Packages:   raw.Packages,
		PackageDir: raw.PackageDir,
	}, nil
}
