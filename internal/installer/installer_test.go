package installer

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robolab/packlab/internal/domain/pkg"
	"github.com/robolab/packlab/internal/repository/receipt"
	"github.com/robolab/packlab/internal/version"
)

func writeSource(t *testing.T, root, relPath, content string, mode os.FileMode) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))

	return path
}

func buildDescriptor(t *testing.T, root string, packages ...string) *pkg.Descriptor {
	t.Helper()

	declaration := &pkg.Declaration{
		Packages:   packages,
		PackageDir: map[string]string{pkg.RootNamespace: "src"},
	}
	manifest := &pkg.Manifest{
		Name:    "rll_tools",
		Version: "0.1.0",
	}

	descriptor, err := pkg.Build(declaration, manifest, root)
	require.NoError(t, err)

	return descriptor
}

func encodedChecksum(content string) string {
	sum := sha512.Sum512([]byte(content))

	return base64.StdEncoding.EncodeToString(sum[:])
}

// TestInstaller_InstallsPackageSources covers the happy path: files are
// copied under lib, modes survive, the receipt records the checksums and the
// marker is gone afterwards.
func TestInstaller_InstallsPackageSources(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	prefix := filepath.Join(root, "install")

	writeSource(t, root, "src/rll_tools/__init__.py", "", 0o644)
	writeSource(t, root, "src/rll_tools/util.py", "def find_workspace(): pass\n", 0o755)
	writeSource(t, root, "src/rll_tools/undeclared/run.py", "print('hidden')\n", 0o644)

	descriptor := buildDescriptor(t, root, "rll_tools")

	installReceipt, err := New(descriptor, root, prefix).Install(ctx)
	require.NoError(t, err)

	installedPath := filepath.Join(prefix, "lib", "rll_tools", "util.py")

	installed, err := os.ReadFile(installedPath)
	require.NoError(t, err)
	require.Equal(t, "def find_workspace(): pass\n", string(installed))

	info, err := os.Stat(installedPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// Subdirectories install only when declared as packages.
	_, err = os.Stat(filepath.Join(prefix, "lib", "rll_tools", "undeclared"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Equal(t, "rll_tools", installReceipt.Package)
	require.Equal(t, "0.1.0", installReceipt.Version)
	require.Equal(t, version.Short(), installReceipt.ToolVersion)
	require.WithinDuration(t, time.Now().UTC(), installReceipt.InstalledAt, time.Minute)
	require.Equal(t, map[string]string{
		"lib/rll_tools/__init__.py": encodedChecksum(""),
		"lib/rll_tools/util.py":     encodedChecksum("def find_workspace(): pass\n"),
	}, installReceipt.Files)

	saved, err := receipt.NewFileRepository(filepath.Join(prefix, receipt.DefaultFilename)).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, installReceipt.Files, saved.Files)

	_, err = os.Stat(filepath.Join(prefix, MarkerFilename))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestInstaller_NestedNamespaceTarget verifies dotted packages install one
// directory per namespace segment.
func TestInstaller_NestedNamespaceTarget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	prefix := filepath.Join(root, "install")

	writeSource(t, root, "src/rll_tools/__init__.py", "", 0o644)
	writeSource(t, root, "src/rll_tools/geometry/__init__.py", "", 0o644)
	writeSource(t, root, "src/rll_tools/geometry/frames.py", "TAU = 6.283185\n", 0o644)

	descriptor := buildDescriptor(t, root, "rll_tools", "rll_tools.geometry")

	installReceipt, err := New(descriptor, root, prefix).Install(ctx)
	require.NoError(t, err)

	installed, err := os.ReadFile(filepath.Join(prefix, "lib", "rll_tools", "geometry", "frames.py"))
	require.NoError(t, err)
	require.Equal(t, "TAU = 6.283185\n", string(installed))
	require.Contains(t, installReceipt.Files, "lib/rll_tools/geometry/frames.py")
}

// TestInstaller_SecondRunSkipsUnchangedFiles backdates an installed file and
// proves the second run leaves it untouched.
func TestInstaller_SecondRunSkipsUnchangedFiles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	prefix := filepath.Join(root, "install")

	writeSource(t, root, "src/rll_tools/__init__.py", "", 0o644)
	writeSource(t, root, "src/rll_tools/util.py", "VERSION = '0.1.0'\n", 0o644)

	descriptor := buildDescriptor(t, root, "rll_tools")
	worker := New(descriptor, root, prefix)

	_, err := worker.Install(ctx)
	require.NoError(t, err)

	installedPath := filepath.Join(prefix, "lib", "rll_tools", "util.py")
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(installedPath, past, past))

	_, err = worker.Install(ctx)
	require.NoError(t, err)

	info, err := os.Stat(installedPath)
	require.NoError(t, err)
	require.Equal(t, past.Unix(), info.ModTime().Unix())
}

// TestInstaller_RestoresTamperedFiles verifies a corrupted installed file is
// rewritten from the source on the next run.
func TestInstaller_RestoresTamperedFiles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	prefix := filepath.Join(root, "install")

	writeSource(t, root, "src/rll_tools/__init__.py", "", 0o644)
	writeSource(t, root, "src/rll_tools/util.py", "VERSION = '0.1.0'\n", 0o644)

	descriptor := buildDescriptor(t, root, "rll_tools")
	worker := New(descriptor, root, prefix)

	_, err := worker.Install(ctx)
	require.NoError(t, err)

	installedPath := filepath.Join(prefix, "lib", "rll_tools", "util.py")
	require.NoError(t, os.WriteFile(installedPath, []byte("tampered\n"), 0o644))

	_, err = worker.Install(ctx)
	require.NoError(t, err)

	restored, err := os.ReadFile(installedPath)
	require.NoError(t, err)
	require.Equal(t, "VERSION = '0.1.0'\n", string(restored))
}

// TestInstaller_RefusesParallelRun verifies a fresh marker blocks the run.
func TestInstaller_RefusesParallelRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	prefix := filepath.Join(root, "install")

	writeSource(t, root, "src/rll_tools/__init__.py", "", 0o644)
	descriptor := buildDescriptor(t, root, "rll_tools")

	require.NoError(t, os.MkdirAll(prefix, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, MarkerFilename), nil, 0o644))

	_, err := New(descriptor, root, prefix).Install(ctx)
	require.ErrorIs(t, err, errInstallerAlreadyRunning)
}

// TestInstaller_RecoversStaleMarker verifies a marker older than its lifetime
// is cleaned up and the installation proceeds.
func TestInstaller_RecoversStaleMarker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	prefix := filepath.Join(root, "install")

	writeSource(t, root, "src/rll_tools/__init__.py", "", 0o644)
	descriptor := buildDescriptor(t, root, "rll_tools")

	require.NoError(t, os.MkdirAll(prefix, 0o755))

	markerPath := filepath.Join(prefix, MarkerFilename)
	require.NoError(t, os.WriteFile(markerPath, nil, 0o644))

	stale := time.Now().Add(-2 * markerLifetime)
	require.NoError(t, os.Chtimes(markerPath, stale, stale))

	_, err := New(descriptor, root, prefix).Install(ctx)
	require.NoError(t, err)
}

// TestInstaller_FollowsSourceSymlinks verifies linked sources install as
// regular files.
func TestInstaller_FollowsSourceSymlinks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	prefix := filepath.Join(root, "install")

	writeSource(t, root, "src/rll_tools/__init__.py", "", 0o644)
	shared := writeSource(t, root, "shared/helper.py", "def helper(): pass\n", 0o644)
	require.NoError(t, os.Symlink(shared, filepath.Join(root, "src", "rll_tools", "helper.py")))

	descriptor := buildDescriptor(t, root, "rll_tools")

	installReceipt, err := New(descriptor, root, prefix).Install(ctx)
	require.NoError(t, err)

	installedPath := filepath.Join(prefix, "lib", "rll_tools", "helper.py")

	info, err := os.Lstat(installedPath)
	require.NoError(t, err)
	require.True(t, info.Mode().IsRegular())

	installed, err := os.ReadFile(installedPath)
	require.NoError(t, err)
	require.Equal(t, "def helper(): pass\n", string(installed))
	require.Contains(t, installReceipt.Files, "lib/rll_tools/helper.py")
}

// TestFileChecksum verifies checksums match the expected SHA-512 digest.
func TestFileChecksum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("checksum me"), 0o644))

	sum, err := FileChecksum(path)
	require.NoError(t, err)

	expected := sha512.Sum512([]byte("checksum me"))
	require.Equal(t, expected[:], sum)

	_, err = FileChecksum(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
}

func TestPackageInstallDir(t *testing.T) {
	t.Parallel()

	require.Equal(t, "rll_tools", packageInstallDir("rll_tools"))
	require.Equal(t, filepath.Join("rll_tools", "geometry"), packageInstallDir("rll_tools.geometry"))
}
