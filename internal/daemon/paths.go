package daemon

import (
	"path/filepath"

	"github.com/GITHIYON49/taskmanagementapp/internal/config"
)

func pidPath(home string) string {
	return filepath.Join(config.ProtectedDir(home), "daemon.pid")
}

func lockPath(home string) string {
	return filepath.Join(config.ProtectedDir(home), "daemon.lock")
}

func addrPath(home string) string {
	return filepath.Join(config.ProtectedDir(home), "daemon.addr")
}

// LogPath is where a background daemon writes its log.
func LogPath(home string) string {
	return filepath.Join(config.ProtectedDir(home), "daemon.log")
}
