package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap/zapcore"

	appfx "ultramdmemo/internal/app/fx"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP API on 127.0.0.1 until interrupted",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				appfx.EventLogger(zapcore.InfoLevel),
				appfx.Module,
				appfx.HTTPModule,
			)
			if err := app.Err(); err != nil {
				return err
			}

			startCtx, cancel := context.WithTimeout(cmd.Context(), appStartTimeout)
			defer cancel()
			if err := app.Start(startCtx); err != nil {
				return fmt.Errorf("start: %w", err)
			}

			select {
			case <-cmd.Context().Done():
			case <-app.Done():
			}

			stopCtx, cancelStop := context.WithTimeout(context.Background(), appStopTimeout)
			defer cancelStop()
			return app.Stop(stopCtx)
		},
	}
}
