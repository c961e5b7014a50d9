package pathutil

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrOutsideLibrary is returned when a path resolves outside the library root.
var ErrOutsideLibrary = errors.New("path escapes library root")

// NormalizePath converts Windows-style separators to the current platform's separator
// and cleans the resulting path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// LibraryRelative returns the path to target relative to the library root.
// The result always uses forward slashes.
func LibraryRelative(root, target string) (string, error) {
	rel, err := filepath.Rel(NormalizePath(root), NormalizePath(target))
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// LibraryRelativeDir returns the directory of target relative to root, or ""
// when the file sits directly in root.
func LibraryRelativeDir(root, target string) (string, error) {
	rel, err := LibraryRelative(root, filepath.Dir(NormalizePath(target)))
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}

// LibraryRelativeComponents splits the relative path from LibraryRelative into the
// first directory (if present) and the remaining path.
func LibraryRelativeComponents(root, target string) (string, string, error) {
	rel, err := LibraryRelative(root, target)
	if err != nil {
		return "", "", err
	}

	rel = strings.TrimPrefix(rel, "./")
	if rel == "." || rel == "" {
		return "", "", nil
	}

	parts := strings.Split(rel, "/")
	if len(parts) == 1 {
		return "", parts[0], nil
	}

	return parts[0], strings.Join(parts[1:], "/"), nil
}

// Within joins a slash separated relative path onto root and rejects results
// that leave root.
func Within(root, rel string) (string, error) {
	base := NormalizePath(root)
	joined := filepath.Join(base, NormalizePath(rel))

	check, err := filepath.Rel(base, joined)
	if err != nil {
		return "", err
	}
	if check == ".." || strings.HasPrefix(check, ".."+string(filepath.Separator)) {
		return "", ErrOutsideLibrary
	}
	return joined, nil
}
