package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// TerseDir returns the tool's state directory (~/.terse), creating it if
// missing. Creation failure is ignored; callers treat writes under it as
// best-effort anyway.
func TerseDir() string {
	dir := filepath.Join(UserHomeDir(), ".terse")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// ExpandPath resolves a leading ~/ against the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	return path
}
