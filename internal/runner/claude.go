package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/apppaths"
	"ultramdmemo/internal/envutil"
	"ultramdmemo/internal/proc"
)

const DefaultTimeout = 120 * time.Second

type ClaudeRunnerConfig struct {
	Paths   apppaths.Paths
	Timeout time.Duration
	Logger  *zap.SugaredLogger
}

// ClaudeRunner runs the locally installed CLI in print mode:
//
//	node cli.js -p "<prompt>" < payload
type ClaudeRunner struct {
	paths   apppaths.Paths
	timeout time.Duration
	logger  *zap.SugaredLogger

	execCommand func(name string, args ...string) *exec.Cmd
}

func NewClaudeRunner(cfg ClaudeRunnerConfig) *ClaudeRunner {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ClaudeRunner{
		paths:       cfg.Paths,
		timeout:     timeout,
		logger:      logger,
		execCommand: exec.Command,
	}
}

func (r *ClaudeRunner) Name() string { return "claude" }

func (r *ClaudeRunner) IsAvailable() bool {
	return r.paths.RuntimeInstalled() && r.paths.CliInstalled()
}

func (r *ClaudeRunner) Execute(ctx context.Context, prompt string, stdin string) (string, error) {
	if !r.IsAvailable() {
		return "", apperr.NewCliUnavailable(fmt.Sprintf("claude cli not installed at %s", r.paths.CliEntry()))
	}

	cmd := r.execCommand(r.paths.NodeExe(), r.paths.CliEntry(), "-p", prompt)
	cmd.Env = envutil.PrependPath(envutil.Set(envutil.Base(cmd.Env), "CI", "true"), r.paths.NodeBinDir())

	start := time.Now()
	r.logger.Infow(
		"cli_started",
		"tool", r.Name(),
		"prompt_chars", utf8.RuneCountInString(prompt),
		"stdin_chars", utf8.RuneCountInString(stdin),
		"timeout", r.timeout.String(),
	)

	res, err := proc.Run(ctx, cmd, proc.Options{Stdin: stdin, Timeout: r.timeout})
	if err != nil {
		r.logger.Infow(
			"cli_failed",
			"tool", r.Name(),
			"duration", time.Since(start).Round(time.Millisecond).String(),
			"err", err.Error(),
		)
		switch {
		case errors.Is(err, proc.ErrTimedOut):
			return "", apperr.NewTimeout("claude cli", r.timeout)
		// A deadline on ctx itself is the caller's, not ours.
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return "", apperr.NewCanceled("claude cli", err)
		default:
			return "", &apperr.Error{Code: apperr.CliUnavailable, Message: "could not run claude cli", Err: err}
		}
	}

	if res.ExitCode != 0 {
		r.logger.Infow(
			"cli_failed",
			"tool", r.Name(),
			"pid", res.PID,
			"exit_code", res.ExitCode,
			"duration", res.Duration.Round(time.Millisecond).String(),
		)
		return "", apperr.NewCliFailed(res.ExitCode, res.Stderr)
	}

	r.logger.Infow(
		"cli_finished",
		"tool", r.Name(),
		"pid", res.PID,
		"duration", res.Duration.Round(time.Millisecond).String(),
	)
	r.logOutput(res.Stdout)

	return res.Stdout, nil
}

func (r *ClaudeRunner) logOutput(out string) {
	if out == "" {
		r.logger.Debugw("llm_output", "tool", r.Name(), "empty", true)
		return
	}

	const maxChars = 8000
	truncated := false
	if len(out) > maxChars {
		truncated = true
		out = out[:maxChars] + "...(truncated)"
	}

	r.logger.Debugw("llm_output", "tool", r.Name(), "truncated", truncated, "output", out)
}

var _ ProcessHost = (*ClaudeRunner)(nil)
