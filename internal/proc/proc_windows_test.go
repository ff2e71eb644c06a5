//go:build windows

package proc

import (
	"os"
	"testing"
)

func assertProcessGone(t *testing.T, pid int) {
	t.Helper()

	p, err := os.FindProcess(pid)
	if err != nil {
		return
	}
	defer p.Release()
	if err := p.Signal(os.Kill); err == nil {
		t.Fatalf("pid %d still present", pid)
	}
}
