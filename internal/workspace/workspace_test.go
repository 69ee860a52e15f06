package workspace_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robolab/packlab/internal/domain/pkg"
	"github.com/robolab/packlab/internal/manifest"
	"github.com/robolab/packlab/internal/workspace"
)

func writeManifest(t *testing.T, dir, name string) {
	t.Helper()

	content := fmt.Sprintf(`name: %s
version: 1.2.0
description: Test package.
maintainers:
  - name: Lab Crew
    email: crew@robolab.test
licenses:
  - MIT
`, name)

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.DefaultFilename), []byte(content), 0o644))
}

func writeWorkspacePackage(t *testing.T, root, dir, name string) string {
	t.Helper()

	packageDir := filepath.Join(root, workspace.SourceDirName, dir)
	writeManifest(t, packageDir, name)

	return packageDir
}

func TestFindRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	packageDir := writeWorkspacePackage(t, root, "demo_project", "demo_project")

	deep := filepath.Join(packageDir, "scripts", "nested")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	for _, start := range []string{root, packageDir, deep} {
		found, err := workspace.FindRoot(start)
		require.NoError(t, err)
		require.Equal(t, root, found)
	}
}

func TestFindRoot_NotInWorkspace(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	_, err := workspace.FindRoot(dir)
	require.ErrorIs(t, err, workspace.ErrNotInWorkspace)
}

func TestFindRoot_IgnoresSourceFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, workspace.SourceDirName), []byte("not a directory"), 0o644))

	_, err := workspace.FindRoot(dir)
	require.ErrorIs(t, err, workspace.ErrNotInWorkspace)
}

func TestScan_SortsPackagesByName(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	zetaDir := writeWorkspacePackage(t, root, "zeta_tools", "zeta_tools")
	alphaDir := writeWorkspacePackage(t, root, "nested/alpha_driver", "alpha_driver")

	packages, err := workspace.Scan(root)
	require.NoError(t, err)
	require.Len(t, packages, 2)

	require.Equal(t, "alpha_driver", packages[0].Name)
	require.Equal(t, alphaDir, packages[0].Dir)
	require.Equal(t, "1.2.0", packages[0].Manifest.Version)

	require.Equal(t, "zeta_tools", packages[1].Name)
	require.Equal(t, zetaDir, packages[1].Dir)
}

func TestScan_DoesNotDescendIntoPackages(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	packageDir := writeWorkspacePackage(t, root, "demo_project", "demo_project")

	// A vendored manifest inside an already discovered package is not
	// a workspace package of its own.
	writeManifest(t, filepath.Join(packageDir, "vendor", "third_party"), "third_party")

	packages, err := workspace.Scan(root)
	require.NoError(t, err)
	require.Len(t, packages, 1)
	require.Equal(t, "demo_project", packages[0].Name)
}

func TestScan_SkipsHiddenDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWorkspacePackage(t, root, ".archive/old_project", "old_project")
	writeWorkspacePackage(t, root, "demo_project", "demo_project")

	packages, err := workspace.Scan(root)
	require.NoError(t, err)
	require.Len(t, packages, 1)
	require.Equal(t, "demo_project", packages[0].Name)
}

func TestScan_RejectsDuplicatePackageNames(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeWorkspacePackage(t, root, "first_copy", "demo_project")
	writeWorkspacePackage(t, root, "second_copy", "demo_project")

	_, err := workspace.Scan(root)
	require.Error(t, err)

	var configurationErr *pkg.ConfigurationError

	require.ErrorAs(t, err, &configurationErr)
	require.Equal(t, "demo_project", configurationErr.Package)
	require.Contains(t, configurationErr.Reason, "declared by both")
}

func TestScan_EmptyWorkspace(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, workspace.SourceDirName), 0o755))

	packages, err := workspace.Scan(root)
	require.NoError(t, err)
	require.Empty(t, packages)
}

func TestScan_ReportsBrokenManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	packageDir := filepath.Join(root, workspace.SourceDirName, "broken_project")
	require.NoError(t, os.MkdirAll(packageDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(packageDir, manifest.DefaultFilename), []byte("name: [unclosed"), 0o644))

	_, err := workspace.Scan(root)
	require.Error(t, err)

	var manifestErr *pkg.ManifestError

	require.ErrorAs(t, err, &manifestErr)
}

func TestFindPackage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	packageDir := writeWorkspacePackage(t, root, "demo_project", "demo_project")

	found, err := workspace.FindPackage(root, "demo_project")
	require.NoError(t, err)
	require.Equal(t, packageDir, found.Dir)

	_, err = workspace.FindPackage(root, "missing_project")
	require.ErrorIs(t, err, workspace.ErrPackageNotFound)
}
