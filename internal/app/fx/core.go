package fx

import (
	"ultramdmemo/config"
	"ultramdmemo/internal/apppaths"
	"ultramdmemo/internal/logs"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var CoreAppOptions = fx.Options(
	fx.Provide(
		config.NewViper,
		config.NewConfig,
		logs.NewLogger,
		logs.NewSugaredLogger,
		apppaths.FromConfig,
	),
	fx.Invoke(logs.RegisterLifecycle),
	fx.Invoke(EnsureDirectories),
)

// EnsureDirectories creates the per-user directory layout before anything
// else touches it.
func EnsureDirectories(paths apppaths.Paths, logger *zap.SugaredLogger) error {
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}
	logger.Debugw("app_directories_ready", "base", paths.Base)
	return nil
}

// EventLogger routes fx's own events through zap. Quiet commands pass
// zapcore.DebugLevel so the events stay out of normal output.
func EventLogger(level zapcore.Level) fx.Option {
	return fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		l := &fxevent.ZapLogger{Logger: logger}
		l.UseLogLevel(level)
		return l
	})
}
