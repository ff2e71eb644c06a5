package fx

import (
	"go.uber.org/fx"

	"ultramdmemo/internal/app/transforms"
	"ultramdmemo/internal/router"
	"ultramdmemo/internal/settings"
	"ultramdmemo/internal/transform"
)

var Module = fx.Module(
	"transforms",
	fx.Provide(
		func(s *transform.Service) transforms.Transformer { return s },
		func(s *settings.Store) transforms.DefaultsLoader { return s },
		router.AsRoute(transforms.NewHandler),
	),
)
