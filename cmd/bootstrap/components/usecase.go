package components

import (
	"garage-reservation/internal/pkg/clock"
	"garage-reservation/internal/usecase"
	"garage-reservation/internal/usecase/commands"
	"garage-reservation/internal/usecase/queries"
	"garage-reservation/internal/usecase/reconciler"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	usecase.NewAuthUseCase,
	usecase.NewTokenValidator,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
		// The reconciler loop drives the same command surface the HTTP
		// handlers use; both share one allocation mutex.
		func(cmds commands.BookingCommands) reconciler.Backlog { return cmds },
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewAnalyticsQueries,
		queries.NewExportQueries,
	),
)
