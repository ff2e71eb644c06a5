package fx

import (
	"go.uber.org/fx"

	"ultramdmemo/internal/app/status"
	"ultramdmemo/internal/router"
	"ultramdmemo/internal/setup"
)

var Module = fx.Module(
	"status",
	fx.Provide(
		func(p *setup.Provisioner) status.InstallChecker { return p },
		func(a *setup.Authenticator) status.LoginChecker { return a },
		router.AsRoute(status.NewHandler),
	),
)
