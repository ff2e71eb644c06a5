package fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"ultramdmemo/internal/history"
	"ultramdmemo/internal/runner"
	"ultramdmemo/internal/transform"
)

var Module = fx.Options(
	fx.Provide(NewService),
)

type NewServiceParams struct {
	fx.In

	Host    runner.ProcessHost
	History *history.Store
	Logger  *zap.SugaredLogger
}

func NewService(p NewServiceParams) *transform.Service {
	return transform.NewService(transform.ServiceConfig{
		Host:    p.Host,
		History: p.History,
		Logger:  p.Logger,
	})
}
