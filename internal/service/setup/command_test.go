package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robolab/packlab/internal/declaration"
	"github.com/robolab/packlab/internal/manifest"
)

func writeProject(t *testing.T, dir string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "rll_tools"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "src", "rll_tools", "util.py"),
		[]byte("def noop(): pass\n"),
		0o644,
	))

	setupTOML := "packages = [\"rll_tools\"]\n\n[package-dir]\n\"\" = \"src\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, declaration.DefaultFilename), []byte(setupTOML), 0o644))

	manifestYAML := "name: rll_tools\nversion: 0.1.0\ndescription: Lab helper tools.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.DefaultFilename), []byte(manifestYAML), 0o644))
}

// TestNewSetup_Defaults verifies empty options resolve against the package
// directory.
func TestNewSetup_Defaults(t *testing.T) {
	t.Parallel()

	s, err := newSetup(&Options{PackageDir: filepath.Join("some", "project")})
	require.NoError(t, err)

	require.Equal(t, filepath.Join("some", "project", declaration.DefaultFilename), s.opts.SetupPath)
	require.Equal(t, filepath.Join("some", "project", manifest.DefaultFilename), s.opts.ManifestPath)
	require.Equal(t, filepath.Join("some", "project", defaultPrefixDirName), s.opts.Prefix)
	require.False(t, s.opts.DescribeOnly)
}

// TestRun_InstallsProject runs the full workflow against a real project tree.
func TestRun_InstallsProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProject(t, dir)

	require.NoError(t, Run(context.Background(), &Options{PackageDir: dir}))

	installed, err := os.ReadFile(filepath.Join(dir, "install", "lib", "rll_tools", "util.py"))
	require.NoError(t, err)
	require.Equal(t, "def noop(): pass\n", string(installed))
}

// TestRun_DescribeOnlySkipsInstaller verifies no prefix is created in a
// describe-only run.
func TestRun_DescribeOnlySkipsInstaller(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProject(t, dir)

	require.NoError(t, Run(context.Background(), &Options{PackageDir: dir, DescribeOnly: true}))

	_, err := os.Stat(filepath.Join(dir, "install"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRun_MissingDeclaration verifies the missing setup.toml surfaces as the
// underlying filesystem error.
func TestRun_MissingDeclaration(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{PackageDir: t.TempDir()})
	require.ErrorIs(t, err, os.ErrNotExist)
}
