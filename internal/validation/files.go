package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// MaxFilenameLength bounds names derived from remote URLs.
const MaxFilenameLength = 128

// SanitizeFilename reduces name to a single safe path element. It returns
// "" when nothing usable is left, so callers can pick a fallback.
func SanitizeFilename(name string) string {
	// Only the last element counts; both separators are stripped so a
	// Windows-style name cannot escape either.
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == 0 || unicode.IsControl(r):
			continue
		case strings.ContainsRune(`<>:"|*`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name = strings.TrimSpace(b.String())
	name = strings.Trim(name, ".")

	if r := []rune(name); len(r) > MaxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		keep := MaxFilenameLength - len([]rune(ext))
		name = string([]rune(strings.TrimSuffix(name, ext))[:keep]) + ext
	}

	return name
}

// EnsureDir creates dir if needed and verifies it is a directory.
func EnsureDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("directory cannot be empty")
	}
	if strings.Contains(dir, "\x00") {
		return "", fmt.Errorf("path contains null bytes")
	}

	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(abs, 0o755); mkErr != nil {
			return "", fmt.Errorf("failed to create directory: %w", mkErr)
		}
	case err != nil:
		return "", fmt.Errorf("checking directory: %w", err)
	case !info.IsDir():
		return "", fmt.Errorf("path exists but is not a directory: %s", abs)
	}

	return abs, nil
}
