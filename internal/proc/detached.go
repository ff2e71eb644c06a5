package proc

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// Handle owns a child started with Start. The caller never blocks on its
// output: stdout and stderr are drained and discarded in the background.
type Handle struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu      sync.Mutex
	waitErr error
}

// Start launches cmd detached from the caller's control flow. Stdin is
// closed; output is discarded.
func Start(cmd *exec.Cmd) (*Handle, error) {
	setProcessGroup(cmd)
	cmd.Stdin = nil
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	cmd.WaitDelay = pipeGrace

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cmd.Path, err)
	}

	h := &Handle{cmd: cmd, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		h.mu.Lock()
		h.waitErr = err
		h.mu.Unlock()
		close(h.done)
	}()
	return h, nil
}

func (h *Handle) PID() int { return h.cmd.Process.Pid }

// Done is closed once the child has exited and been reaped.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Err returns the wait error once the child has exited.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waitErr
}

// ErrStillRunning is returned by Terminate when the child outlives the wait.
var ErrStillRunning = errors.New("process still running after kill")

// Terminate kills the process tree and waits up to wait for the reap.
func (h *Handle) Terminate(wait time.Duration) error {
	if h.Exited() {
		return nil
	}
	killErr := killProcessGroup(h.cmd.Process)

	select {
	case <-h.done:
		return nil
	case <-time.After(wait):
		if killErr != nil {
			return fmt.Errorf("kill pid %d: %w", h.PID(), killErr)
		}
		return ErrStillRunning
	}
}
