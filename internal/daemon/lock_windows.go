//go:build windows

package daemon

import (
	"os"
	"path/filepath"
)

// acquireLock creates path exclusively; the file is removed on release. A crash
// leaves it behind, so a stale file whose pid is gone is cleared once.
func acquireLock(path string) (*instanceLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if os.IsExist(err) && staleLock(path) {
		_ = os.Remove(path)
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	}
	if err != nil {
		if os.IsExist(err) {
			return nil, errLocked
		}
		return nil, err
	}
	l := &instanceLock{f: f, unlock: func() { _ = os.Remove(path) }}
	l.stamp()
	return l, nil
}

func staleLock(path string) bool {
	pid, ok := readPID(path)
	return !ok || !processExists(pid)
}
