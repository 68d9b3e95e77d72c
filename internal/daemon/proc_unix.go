//go:build !windows

package daemon

import (
	"os"
	"os/exec"
	"syscall"
)

// detach starts the child in its own session so it outlives the terminal.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

func processExists(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}

func signalTerm(proc *os.Process) error {
	return proc.Signal(syscall.SIGTERM)
}
