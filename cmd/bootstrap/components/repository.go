package components

import (
	repo_impl "garage-reservation/internal/infra/repository"
	"garage-reservation/internal/usecase"
	"garage-reservation/internal/usecase/commands"
	"garage-reservation/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewUserRepository,
			fx.As(new(usecase.UserRepository)),
		),
		fx.Annotate(
			repo_impl.NewBookingRepository,
			fx.As(new(commands.BookingStore)),
			fx.As(new(queries.BookingReadStore)),
		),
	),
)
