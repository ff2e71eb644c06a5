package setup

import (
	"context"
	"fmt"
	"time"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/envutil"
	"ultramdmemo/internal/proc"
)

type LoginPhase int

const (
	LoginWaiting LoginPhase = iota
	LoginSucceeded
	LoginTimedOut
	LoginCancelled
)

func (p LoginPhase) String() string {
	switch p {
	case LoginWaiting:
		return "waiting"
	case LoginSucceeded:
		return "succeeded"
	case LoginTimedOut:
		return "timed_out"
	case LoginCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// LoginState is the login wait loop's state. Only LoginWaiting is non-terminal.
type LoginState struct {
	Phase   LoginPhase
	Polls   int
	Elapsed time.Duration
}

func (s LoginState) tick(interval time.Duration) LoginState {
	s.Polls++
	s.Elapsed += interval
	return s
}

func (s LoginState) observe(loggedIn bool, maxPolls int) LoginState {
	switch {
	case loggedIn:
		s.Phase = LoginSucceeded
	case s.Polls >= maxPolls:
		s.Phase = LoginTimedOut
	}
	return s
}

func (s LoginState) cancel() LoginState {
	s.Phase = LoginCancelled
	return s
}

// RunLogin starts the CLI's browser login and waits until the credentials
// check passes, the poll ceiling is reached, or ctx ends. The login child
// is always terminated before returning.
func (a *Authenticator) RunLogin(ctx context.Context, progress Progress) error {
	if !a.installed() {
		return apperr.NewLoginRequired("claude cli is not installed; run setup first")
	}

	cmd := a.execCommand(a.paths.NodeExe(), a.paths.CliEntry(), "auth", "login")
	cmd.Dir = a.paths.Home
	// Started from inside a CLI session the nested CLI refuses to log in.
	cmd.Env = envutil.PrependPath(envutil.Unset(envutil.Base(cmd.Env), "CLAUDECODE"), a.paths.NodeBinDir())

	h, err := proc.Start(cmd)
	if err != nil {
		return apperr.NewSetupFailed(apperr.StageLogin, "start login", err)
	}
	a.logger.Infow("login_started", "pid", h.PID(), "poll_interval", a.pollInterval.String(), "max_polls", a.maxPolls)
	report(progress, "Complete the login in your browser...")

	state := a.waitForLogin(ctx, progress)

	if err := h.Terminate(a.terminateWait); err != nil {
		a.logger.Debugw("login_terminate_failed", "pid", h.PID(), "err", err)
	}
	a.logger.Infow("login_finished", "state", state.Phase.String(), "polls", state.Polls, "elapsed", state.Elapsed.String())

	switch state.Phase {
	case LoginSucceeded:
		report(progress, "Login completed")
		return nil
	case LoginTimedOut:
		return apperr.NewLoginTimeout(time.Duration(a.maxPolls) * a.pollInterval)
	default:
		return apperr.NewCanceled("login", ctx.Err())
	}
}

func (a *Authenticator) waitForLogin(ctx context.Context, progress Progress) LoginState {
	state := LoginState{Phase: LoginWaiting}

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for state.Phase == LoginWaiting {
		select {
		case <-ctx.Done():
			state = state.cancel()
		case <-ticker.C:
			state = state.tick(a.pollInterval)
			report(progress, fmt.Sprintf("Waiting for login (%ds elapsed)", int(state.Elapsed.Seconds())))

			ok, err := a.checkLogin(ctx)
			if err != nil && ctx.Err() != nil {
				state = state.cancel()
				continue
			}
			state = state.observe(ok, a.maxPolls)
		}
	}
	return state
}
