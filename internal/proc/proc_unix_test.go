//go:build !windows

package proc

import (
	"errors"
	"syscall"
	"testing"
)

func assertProcessGone(t *testing.T, pid int) {
	t.Helper()

	err := syscall.Kill(pid, 0)
	if !errors.Is(err, syscall.ESRCH) {
		t.Fatalf("pid %d still present (kill 0: %v)", pid, err)
	}
}
