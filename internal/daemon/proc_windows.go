//go:build windows

package daemon

import (
	"os"
	"os/exec"
	"syscall"
)

// detach puts the child in a new process group so console Ctrl+C does not reach it.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// processExists relies on FindProcess opening a handle, which fails for a dead pid.
func processExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}

// signalTerm kills outright; Windows has no SIGTERM for detached processes, so the
// shutdown snapshot is skipped there.
func signalTerm(proc *os.Process) error {
	return proc.Kill()
}
