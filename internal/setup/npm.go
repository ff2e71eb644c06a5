package setup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/envutil"
	"ultramdmemo/internal/proc"
)

// EnsureCliPackage installs the CLI package into the private npm prefix
// using the runtime's bundled npm. It requires EnsureRuntime to have run.
func (p *Provisioner) EnsureCliPackage(ctx context.Context, progress Progress) error {
	if p.CliInstalled() {
		report(progress, "Claude Code is already installed")
		return nil
	}
	if !p.RuntimeInstalled() {
		return apperr.NewSetupFailed(apperr.StageCliInstall, "runtime not installed", errors.New(p.paths.NodeExe()))
	}

	report(progress, fmt.Sprintf("Installing %s...", p.cliPackage))
	start := time.Now()
	p.logger.Infow("cli_install_started", "package", p.cliPackage, "prefix", p.paths.NpmPrefix())

	cmd := p.execCommand(
		p.paths.NodeExe(),
		p.paths.NpmCli(),
		"install",
		"--global",
		"--prefix", p.paths.NpmPrefix(),
		"--cache", p.paths.NpmCache(),
		p.cliPackage,
	)
	cmd.Env = envutil.PrependPath(envutil.Base(cmd.Env), p.paths.NodeBinDir())

	res, err := proc.Run(ctx, cmd, proc.Options{Timeout: p.installTimeout})
	if err != nil {
		switch {
		case errors.Is(err, proc.ErrTimedOut):
			return apperr.NewSetupFailed(apperr.StageCliInstall, "npm install", apperr.NewTimeout("npm install", p.installTimeout))
		case ctx.Err() != nil:
			return apperr.NewCanceled("npm install", ctx.Err())
		default:
			return apperr.NewSetupFailed(apperr.StageCliInstall, "run npm", err)
		}
	}
	if res.ExitCode != 0 {
		p.logger.Infow("cli_install_failed", "package", p.cliPackage, "exit_code", res.ExitCode)
		return apperr.NewSetupFailed(
			apperr.StageCliInstall,
			fmt.Sprintf("npm install exited with code %d", res.ExitCode),
			errors.New(res.Stderr),
		)
	}
	if !p.CliInstalled() {
		return apperr.NewSetupFailed(apperr.StageCliInstall, "cli entry missing after install", errors.New(p.paths.CliEntry()))
	}

	p.logger.Infow(
		"cli_install_finished",
		"package", p.cliPackage,
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	report(progress, "Claude Code installed")
	return nil
}
