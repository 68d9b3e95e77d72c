package config

import (
	"errors"
	"os"
	"path/filepath"
)

// ResolveHome returns the taskboard home directory: override, then TASKBOARD_HOME,
// then ~/.taskboard.
func ResolveHome(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}
	if env := os.Getenv("TASKBOARD_HOME"); env != "" {
		return filepath.Clean(env), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("could not determine user home directory")
	}
	return filepath.Join(home, ".taskboard"), nil
}

// ProtectedDir holds files that must not be world-readable (database, daemon state).
func ProtectedDir(home string) string {
	return filepath.Join(home, "protected")
}
