package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap/zapcore"

	appfx "ultramdmemo/internal/app/fx"
)

const (
	appStartTimeout = 15 * time.Second
	appStopTimeout  = 10 * time.Second
)

// withApp starts the non-HTTP object graph, fills targets, runs fn and
// stops the graph again.
func withApp(ctx context.Context, fn func() error, targets ...any) error {
	app := fx.New(
		appfx.EventLogger(zapcore.DebugLevel),
		appfx.Module,
		fx.Populate(targets...),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, appStartTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	runErr := fn()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), appStopTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("stop: %w", err)
	}
	return runErr
}
