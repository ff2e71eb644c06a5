package fx

import (
	"go.uber.org/fx"

	dbfx "ultramdmemo/db/fx"
	healthfx "ultramdmemo/internal/app/health/fx"
	historyentriesfx "ultramdmemo/internal/app/historyentries/fx"
	preferencesfx "ultramdmemo/internal/app/preferences/fx"
	statusfx "ultramdmemo/internal/app/status/fx"
	transformsfx "ultramdmemo/internal/app/transforms/fx"
	historyfx "ultramdmemo/internal/history/fx"
	routerfx "ultramdmemo/internal/router/fx"
	runnerfx "ultramdmemo/internal/runner/fx"
	serverfx "ultramdmemo/internal/server/fx"
	settingsfx "ultramdmemo/internal/settings/fx"
	setupfx "ultramdmemo/internal/setup/fx"
	transformfx "ultramdmemo/internal/transform/fx"
)

// Module is everything except the HTTP surface.
var Module = fx.Options(
	CoreAppOptions,
	dbfx.Module,
	historyfx.Module,
	settingsfx.Module,
	setupfx.Module,
	runnerfx.Module,
	transformfx.Module,
)

// HTTPModule adds the local API on top of Module.
var HTTPModule = fx.Options(
	routerfx.CoreRouterOptions,
	serverfx.Module,
	healthfx.Module,
	statusfx.Module,
	transformsfx.Module,
	historyentriesfx.Module,
	preferencesfx.Module,
)
