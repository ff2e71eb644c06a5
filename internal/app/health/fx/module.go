package fx

import (
	"go.uber.org/fx"

	"ultramdmemo/internal/app/health"
	"ultramdmemo/internal/history"
	"ultramdmemo/internal/router"
)

type catalogStateParams struct {
	fx.In

	Catalog *history.Catalog `optional:"true"`
}

// asCatalogState keeps a disabled catalog as a nil interface.
func asCatalogState(p catalogStateParams) health.CatalogState {
	if p.Catalog == nil {
		return nil
	}
	return p.Catalog
}

var Module = fx.Module(
	"health",
	fx.Provide(
		asCatalogState,
		router.AsRoute(health.NewHandler),
	),
)
