// Package proc supervises child processes: stdin is written and closed,
// stdout and stderr are drained concurrently with the exit wait, and on
// timeout or cancellation the whole process tree is killed and reaped
// before control returns.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrTimedOut is returned when Options.Timeout elapses before the child exits.
var ErrTimedOut = errors.New("process timed out")

// pipeGrace bounds how long drains may run after a kill. Grandchildren that
// inherited the pipes can otherwise keep them open indefinitely.
var pipeGrace = 2 * time.Second

type Options struct {
	// Stdin is written to the child and the pipe closed. Empty closes it immediately.
	Stdin   string
	Timeout time.Duration
}

type Result struct {
	PID      int
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Run starts cmd and waits for it. A non-zero exit is not an error: callers
// inspect Result.ExitCode. Timeout yields ErrTimedOut; caller cancellation
// yields the context's error. In both cases the process group is already
// gone when Run returns.
func Run(ctx context.Context, cmd *exec.Cmd, opts Options) (*Result, error) {
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	setProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	res := &Result{PID: cmd.Process.Pid, ExitCode: -1}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		defer stdin.Close()
		if opts.Stdin == "" {
			return nil
		}
		if _, err := io.WriteString(stdin, opts.Stdin); err != nil && !isBrokenPipe(err) {
			return fmt.Errorf("write stdin: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})

	// Wait must not run before the pipes are fully read.
	var drainErr, waitErr error
	done := make(chan struct{})
	go func() {
		drainErr = g.Wait()
		waitErr = cmd.Wait()
		close(done)
	}()

	var stopErr error
	select {
	case <-done:
	case <-runCtx.Done():
		_ = killProcessGroup(cmd.Process)
		select {
		case <-done:
		case <-time.After(pipeGrace):
			_ = stdin.Close()
			_ = stdout.Close()
			_ = stderr.Close()
			<-done
		}
		stopErr = stopReason(ctx, runCtx)
	}

	res.Duration = time.Since(start)
	res.Stdout = outBuf.String()
	res.Stderr = errBuf.String()

	if stopErr != nil {
		return res, stopErr
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		res.ExitCode = 0
	case errors.As(waitErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("wait %s: %w", cmd.Path, waitErr)
	}

	if drainErr != nil {
		return res, fmt.Errorf("drain %s: %w", cmd.Path, drainErr)
	}
	return res, nil
}

// stopReason distinguishes our own deadline from the caller's context ending.
func stopReason(parent, run context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	if errors.Is(run.Err(), context.DeadlineExceeded) {
		return ErrTimedOut
	}
	return run.Err()
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
