package fx

import (
	"ultramdmemo/config"
	"ultramdmemo/internal/apppaths"
	runnerPkg "ultramdmemo/internal/runner"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewClaudeRunnerConfig),
	AsProcessHost(runnerPkg.NewClaudeRunner),
)

// AsProcessHost exposes a constructor's result as runner.ProcessHost.
func AsProcessHost(f any) fx.Option {
	return fx.Provide(
		fx.Annotate(
			f,
			fx.As(new(runnerPkg.ProcessHost)),
		),
	)
}

// Provide config struct for `runnerPkg.ClaudeRunnerConfig`
type NewClaudeRunnerConfigParams struct {
	fx.In

	Logger *zap.SugaredLogger
	Cfg    *config.Config
	Paths  apppaths.Paths
}

func NewClaudeRunnerConfig(p NewClaudeRunnerConfigParams) runnerPkg.ClaudeRunnerConfig {
	return runnerPkg.ClaudeRunnerConfig{
		Paths:   p.Paths,
		Timeout: p.Cfg.CliTimeout,
		Logger:  p.Logger,
	}
}
