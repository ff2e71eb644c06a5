package fx

import (
	"ultramdmemo/db"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"sqlx-sqlite-db",
	fx.Provide(db.NewSQLXSQLiteDB),
)
