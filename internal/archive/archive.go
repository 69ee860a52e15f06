package archive

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const (
	// IgnoreFilename lists upload exclusions in the project root.
	IgnoreFilename = ".packlabignore"

	// gitignoreFilename is honored as well so uploads match the checkout.
	gitignoreFilename = ".gitignore"

	// bytesPerMegabyte converts byte counts for size messages.
	bytesPerMegabyte = 1024 * 1024
)

// ErrTooLarge is returned when an archive exceeds the allowed upload size.
var ErrTooLarge = errors.New("archive too large for upload")

// Pack streams a gzipped tar of directory into w:
// - every entry is stored under the directory's base name,
// - directories and regular files are stored as-is,
// - symlinks are dereferenced and the target content is stored,
// - paths matching .gitignore or .packlabignore patterns are skipped.
func Pack(directory string, w io.Writer) error {
	directory, err := filepath.Abs(directory)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", directory, err)
	}

	matcher, err := loadIgnoreMatcher(directory)
	if err != nil {
		return err
	}

	prefix := filepath.Base(directory)

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err = filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if matcher.Match(splitPath(path), entry.IsDir()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		return writeEntry(tw, directory, prefix, path, entry)
	})
	if err != nil {
		return err
	}

	if err = tw.Close(); err != nil {
		return fmt.Errorf("finish tar stream: %w", err)
	}

	if err = gz.Close(); err != nil {
		return fmt.Errorf("finish gzip stream: %w", err)
	}

	return nil
}

// CheckSize fails with ErrTooLarge when the file at path exceeds maxBytes.
func CheckSize(path string, maxBytes int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}

	if info.Size() > maxBytes {
		return fmt.Errorf("%w: %.1f MB exceeds the %.1f MB limit",
			ErrTooLarge, megabytes(info.Size()), megabytes(maxBytes))
	}

	return nil
}

// writeEntry stores one walked path in the tar stream.
func writeEntry(tw *tar.Writer, directory, prefix, path string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		return err
	}

	contentPath := path

	if info.Mode()&os.ModeSymlink == os.ModeSymlink {
		contentPath, info, err = followSymlink(path)
		if err != nil {
			return err
		}
	}

	header, err := tar.FileInfoHeader(info, contentPath)
	if err != nil {
		return err
	}

	relativePath, err := filepath.Rel(directory, path)
	if err != nil {
		return err
	}

	header.Name = filepath.ToSlash(filepath.Join(prefix, relativePath))

	switch {
	case info.Mode().IsDir():
		return tw.WriteHeader(header)
	case info.Mode().IsRegular():
		if err = tw.WriteHeader(header); err != nil {
			return err
		}

		return writeFileContent(tw, contentPath)
	default:
		return fmt.Errorf("unsupported file type: %s", path)
	}
}

// writeFileContent copies one file into the tar stream.
func writeFileContent(tw *tar.Writer, path string) error {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}

	defer func() {
		_ = file.Close()
	}()

	if _, err = io.Copy(tw, file); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}

	return nil
}

// followSymlink resolves a symlink to its target path and info.
func followSymlink(path string) (string, os.FileInfo, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", nil, err
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}

	info, err := os.Stat(target)

	return target, info, err
}

// loadIgnoreMatcher collects exclusion patterns from the checkout's ignore
// file and the packlab-specific one.
func loadIgnoreMatcher(directory string) (gitignore.Matcher, error) {
	var patterns []gitignore.Pattern

	domain := splitPath(directory)

	for _, name := range []string{gitignoreFilename, IgnoreFilename} {
		filePatterns, err := readIgnorePatterns(filepath.Join(directory, name), domain)
		if err != nil {
			return nil, err
		}

		patterns = append(patterns, filePatterns...)
	}

	return gitignore.NewMatcher(patterns), nil
}

// readIgnorePatterns parses one ignore file; a missing file yields nothing.
func readIgnorePatterns(path string, domain []string) ([]gitignore.Pattern, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("open ignore file %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	var patterns []gitignore.Pattern

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		patterns = append(patterns, gitignore.ParsePattern(line, domain))
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file %s: %w", path, err)
	}

	return patterns, nil
}

// splitPath breaks a path into the segments the gitignore matcher expects.
func splitPath(path string) []string {
	return strings.Split(path, string(filepath.Separator))
}

// megabytes reports a byte count in megabytes for size messages.
func megabytes(bytes int64) float64 {
	return float64(bytes) / bytesPerMegabyte
}
