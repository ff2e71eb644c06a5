package fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"ultramdmemo/internal/apppaths"
	"ultramdmemo/internal/settings"
)

var Module = fx.Options(
	fx.Provide(NewStore),
)

func NewStore(paths apppaths.Paths, logger *zap.SugaredLogger) *settings.Store {
	return settings.NewStore(paths.SettingsFile(), logger)
}
