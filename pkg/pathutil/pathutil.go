// Package pathutil holds filesystem path predicates shared by the
// publisher and the CLI.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveWithin joins rel to root and returns the destination path,
// rejecting paths that would resolve outside root. Absolute paths,
// empty paths and ".." escapes are refused.
func ResolveWithin(root, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty file path")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute file path %q is not allowed", rel)
	}

	dest := filepath.Join(root, filepath.FromSlash(rel))
	back, err := filepath.Rel(root, dest)
	if err != nil {
		return "", fmt.Errorf("file path %q is not relative to %s: %w", rel, root, err)
	}
	if back == "." {
		return "", fmt.Errorf("file path %q resolves to the directory itself", rel)
	}
	if back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file path %q escapes the working directory", rel)
	}
	return dest, nil
}

// PathOverlaps reports whether one path equals or contains the other.
func PathOverlaps(a, b string) bool {
	if a == b {
		return true
	}
	relAB, err := filepath.Rel(a, b)
	if err == nil && relAB != "." && relAB != ".." && !strings.HasPrefix(relAB, ".."+string(filepath.Separator)) {
		return true
	}
	relBA, err := filepath.Rel(b, a)
	if err == nil && relBA != "." && relBA != ".." && !strings.HasPrefix(relBA, ".."+string(filepath.Separator)) {
		return true
	}
	return false
}

// IsFilesystemRoot reports whether path points to filesystem root (POSIX or Windows volume root).
func IsFilesystemRoot(path string) bool {
	clean := filepath.Clean(path)
	if clean == string(filepath.Separator) {
		return true
	}
	volume := filepath.VolumeName(clean)
	return volume != "" && clean == volume+string(filepath.Separator)
}
