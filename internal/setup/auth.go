package setup

import (
	"context"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/apppaths"
	"ultramdmemo/internal/envutil"
	"ultramdmemo/internal/proc"
)

const (
	DefaultProbeTimeout  = 20 * time.Second
	DefaultVerifyTimeout = 30 * time.Second
	DefaultPollInterval  = 10 * time.Second
	DefaultMaxPolls      = 60
)

type AuthenticatorConfig struct {
	Paths apppaths.Paths
	// CredentialsPath overrides Paths.CredentialsFile().
	CredentialsPath string
	ProbeTimeout    time.Duration
	VerifyTimeout   time.Duration
	PollInterval    time.Duration
	MaxPolls        int
	Logger          *zap.SugaredLogger
}

// Authenticator answers "is the CLI logged in" and drives the browser login.
// Nothing is cached: every query re-reads disk or re-probes the CLI.
type Authenticator struct {
	paths           apppaths.Paths
	credentialsPath string
	probeTimeout    time.Duration
	verifyTimeout   time.Duration
	pollInterval    time.Duration
	maxPolls        int
	logger          *zap.SugaredLogger

	execCommand   func(name string, args ...string) *exec.Cmd
	checkLogin    func(ctx context.Context) (bool, error)
	terminateWait time.Duration
}

func NewAuthenticator(cfg AuthenticatorConfig) *Authenticator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	a := &Authenticator{
		paths:           cfg.Paths,
		credentialsPath: cfg.CredentialsPath,
		probeTimeout:    cfg.ProbeTimeout,
		verifyTimeout:   cfg.VerifyTimeout,
		pollInterval:    cfg.PollInterval,
		maxPolls:        cfg.MaxPolls,
		logger:          logger,
		execCommand:     exec.Command,
		terminateWait:   5 * time.Second,
	}
	if a.credentialsPath == "" {
		a.credentialsPath = cfg.Paths.CredentialsFile()
	}
	if a.probeTimeout <= 0 {
		a.probeTimeout = DefaultProbeTimeout
	}
	if a.verifyTimeout <= 0 {
		a.verifyTimeout = DefaultVerifyTimeout
	}
	if a.pollInterval <= 0 {
		a.pollInterval = DefaultPollInterval
	}
	if a.maxPolls <= 0 {
		a.maxPolls = DefaultMaxPolls
	}
	a.checkLogin = a.IsLoggedIn
	return a
}

func (a *Authenticator) installed() bool {
	return a.paths.RuntimeInstalled() && a.paths.CliInstalled()
}

// IsLoggedIn checks the credentials file first and only spawns the CLI when
// that is inconclusive. A positive fast path wins even if the CLI would
// disagree. Probe failures read as "not logged in"; the only error returned
// is the caller's cancellation.
func (a *Authenticator) IsLoggedIn(ctx context.Context) (bool, error) {
	if !a.installed() {
		return false, nil
	}

	ok, err := hasAccessToken(a.credentialsPath)
	if err != nil {
		a.logger.Debugw("credentials_check_failed", "path", a.credentialsPath, "err", err)
	}
	if ok {
		return true, nil
	}

	return a.runProbe(ctx, "auth probe", a.probeTimeout, "config", "get")
}

// VerifyConnectivity sends a trivial prompt; a zero exit means the CLI can
// reach the service with the current credentials.
func (a *Authenticator) VerifyConnectivity(ctx context.Context) (bool, error) {
	if !a.installed() {
		return false, nil
	}
	return a.runProbe(ctx, "connectivity check", a.verifyTimeout, "-p", "test")
}

func (a *Authenticator) runProbe(ctx context.Context, op string, timeout time.Duration, args ...string) (bool, error) {
	cmd := a.execCommand(a.paths.NodeExe(), append([]string{a.paths.CliEntry()}, args...)...)
	cmd.Dir = a.paths.Home
	cmd.Env = envutil.PrependPath(envutil.Set(envutil.Base(cmd.Env), "CI", "true"), a.paths.NodeBinDir())

	start := time.Now()
	res, err := proc.Run(ctx, cmd, proc.Options{Timeout: timeout})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, apperr.NewCanceled(op, ctxErr)
		}
		a.logger.Debugw("cli_probe_failed", "op", op, "err", err)
		return false, nil
	}

	a.logger.Debugw(
		"cli_probe_finished",
		"op", op,
		"exit_code", res.ExitCode,
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	return res.ExitCode == 0, nil
}
