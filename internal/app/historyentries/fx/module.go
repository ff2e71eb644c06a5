package fx

import (
	"go.uber.org/fx"

	"ultramdmemo/internal/app/historyentries"
	"ultramdmemo/internal/history"
	"ultramdmemo/internal/router"
)

var Module = fx.Module(
	"historyentries",
	fx.Provide(
		func(s *history.Store) historyentries.Store { return s },
		router.AsRoute(historyentries.NewListHandler),
		router.AsRoute(historyentries.NewGetByIDHandler),
		router.AsRoute(historyentries.NewHTMLHandler),
		router.AsRoute(historyentries.NewDeleteHandler),
	),
)
