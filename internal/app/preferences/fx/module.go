package fx

import (
	"go.uber.org/fx"

	"ultramdmemo/internal/app/preferences"
	"ultramdmemo/internal/router"
	"ultramdmemo/internal/settings"
)

var Module = fx.Module(
	"preferences",
	fx.Provide(
		func(s *settings.Store) preferences.Store { return s },
		router.AsRoute(preferences.NewGetHandler),
		router.AsRoute(preferences.NewPutHandler),
	),
)
