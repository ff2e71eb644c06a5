package fx

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"ultramdmemo/internal/apppaths"
	"ultramdmemo/internal/history"
)

var Module = fx.Module(
	"history",
	fx.Provide(
		NewCatalog,
		NewStore,
	),
)

type NewCatalogParams struct {
	fx.In

	Lc     fx.Lifecycle
	DB     *sqlx.DB `name:"catalog" optional:"true"`
	Logger *zap.SugaredLogger
}

// NewCatalog returns nil when the catalog database is disabled. A failed
// migration leaves the catalog unready and the store falls back to files.
func NewCatalog(p NewCatalogParams) *history.Catalog {
	if p.DB == nil {
		return nil
	}

	c := history.NewCatalog(p.DB, p.Logger)
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := c.Migrate(ctx); err != nil {
				p.Logger.Warnw("history_catalog_migrate_failed", "err", err)
			}
			return nil
		},
	})
	return c
}

type NewStoreParams struct {
	fx.In

	Paths   apppaths.Paths
	Catalog *history.Catalog `optional:"true"`
	Logger  *zap.SugaredLogger
}

func NewStore(p NewStoreParams) *history.Store {
	return history.NewStore(history.StoreConfig{
		Dir:     p.Paths.HistoryDir(),
		Catalog: p.Catalog,
		Logger:  p.Logger,
	})
}
