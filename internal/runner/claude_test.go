package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/apppaths"
	"ultramdmemo/internal/envutil"
)

func installedPaths(t *testing.T) apppaths.Paths {
	t.Helper()

	p := apppaths.New(t.TempDir(), t.TempDir(), "@anthropic-ai/claude-code")
	for _, f := range []string{p.NodeExe(), p.CliEntry()} {
		require.NoError(t, os.MkdirAll(filepath.Dir(f), 0o755))
		require.NoError(t, os.WriteFile(f, []byte("stub"), 0o755))
	}
	return p
}

type capturedCall struct {
	name string
	args []string
	cmd  *exec.Cmd
}

func helperRunner(t *testing.T, p apppaths.Paths, timeout time.Duration, env ...string) (*ClaudeRunner, *[]capturedCall) {
	t.Helper()

	var calls []capturedCall
	r := NewClaudeRunner(ClaudeRunnerConfig{Paths: p, Timeout: timeout, Logger: zap.NewNop().Sugar()})
	r.execCommand = func(name string, args ...string) *exec.Cmd {
		cmd := exec.Command(os.Args[0], "-test.run=TestClaudeRunnerHelperProcess", "--")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		cmd.Env = append(cmd.Env, env...)
		calls = append(calls, capturedCall{name: name, args: append([]string(nil), args...), cmd: cmd})
		return cmd
	}
	return r, &calls
}

func TestClaudeRunner_Execute_CommandContract(t *testing.T) {
	t.Parallel()

	p := installedPaths(t)
	r, calls := helperRunner(t, p, 10*time.Second, "HELPER_ECHO_STDIN=1", "HELPER_EXIT=0")

	got, err := r.Execute(context.Background(), "整形してください", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", got)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	require.Equal(t, p.NodeExe(), call.name)
	require.Equal(t, []string{p.CliEntry(), "-p", "整形してください"}, call.args)

	ci, ok := envutil.Lookup(call.cmd.Env, "CI")
	require.True(t, ok)
	require.Equal(t, "true", ci)

	path, _ := envutil.Lookup(call.cmd.Env, "PATH")
	require.True(t, strings.HasPrefix(path, p.NodeBinDir()), path)
}

func TestClaudeRunner_Execute_NonZeroExit(t *testing.T) {
	t.Parallel()

	r, _ := helperRunner(t, installedPaths(t), 10*time.Second,
		"HELPER_STDOUT=partial output",
		"HELPER_STDERR=Invalid API key",
		"HELPER_EXIT=1",
	)

	got, err := r.Execute(context.Background(), "p", "in")
	require.Error(t, err)
	require.Empty(t, got)
	require.True(t, apperr.Is(err, apperr.CliFailed))

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 1, appErr.ExitCode)
	require.Equal(t, "Invalid API key", appErr.Stderr)
	require.Contains(t, err.Error(), "exited with code 1: Invalid API key")
}

func TestClaudeRunner_Execute_Timeout(t *testing.T) {
	t.Parallel()

	r, _ := helperRunner(t, installedPaths(t), time.Second, "HELPER_SLEEP=1h")

	start := time.Now()
	_, err := r.Execute(context.Background(), "p", "in")
	require.True(t, apperr.Is(err, apperr.Timeout), "err=%v", err)
	require.Contains(t, err.Error(), "1 seconds")
	require.Less(t, time.Since(start), 10*time.Second)
}

func TestClaudeRunner_Execute_Cancelled(t *testing.T) {
	t.Parallel()

	r, _ := helperRunner(t, installedPaths(t), time.Minute, "HELPER_SLEEP=1h")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := r.Execute(ctx, "p", "in")
	require.True(t, apperr.Is(err, apperr.Canceled), "err=%v", err)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, apperr.Is(err, apperr.Timeout))
}

// A caller deadline that fires before the CLI timeout belongs to the
// caller, so it is reported as cancellation.
func TestClaudeRunner_Execute_CallerDeadlineIsCanceled(t *testing.T) {
	t.Parallel()

	r, _ := helperRunner(t, installedPaths(t), time.Minute, "HELPER_SLEEP=1h")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Execute(ctx, "p", "in")
	require.True(t, apperr.Is(err, apperr.Canceled), "err=%v", err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, apperr.Is(err, apperr.Timeout))
	require.Less(t, time.Since(start), 10*time.Second)
}

func TestClaudeRunner_Execute_UnavailableDoesNotSpawn(t *testing.T) {
	t.Parallel()

	p := apppaths.New(t.TempDir(), t.TempDir(), "@anthropic-ai/claude-code")
	r, calls := helperRunner(t, p, time.Second)

	require.False(t, r.IsAvailable())
	_, err := r.Execute(context.Background(), "p", "in")
	require.True(t, apperr.Is(err, apperr.CliUnavailable))
	require.Empty(t, *calls)
}

func TestClaudeRunnerHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if os.Getenv("HELPER_ECHO_STDIN") == "1" {
		_, _ = io.Copy(os.Stdout, os.Stdin)
	}
	_, _ = os.Stdout.WriteString(os.Getenv("HELPER_STDOUT"))
	_, _ = os.Stderr.WriteString(os.Getenv("HELPER_STDERR"))

	if raw := os.Getenv("HELPER_SLEEP"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		time.Sleep(d)
	}

	code, _ := strconv.Atoi(os.Getenv("HELPER_EXIT"))
	os.Exit(code)
}
