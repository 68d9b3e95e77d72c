package daemon

import (
	"errors"
	"os"
	"strconv"
)

var errLocked = errors.New("taskboard is already running for this home (lock held)")

// instanceLock keeps a second bridge from serving the same home. The holder's pid
// is written into the file for diagnostics only; the OS lock is what counts.
type instanceLock struct {
	f      *os.File
	unlock func()
}

func (l *instanceLock) stamp() {
	_ = l.f.Truncate(0)
	_, _ = l.f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
}

func (l *instanceLock) release() {
	if l == nil || l.f == nil {
		return
	}
	if l.unlock != nil {
		l.unlock()
	}
	_ = l.f.Close()
	l.f = nil
}
