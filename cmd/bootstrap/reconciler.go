package bootstrap

import (
	"context"
	"log/slog"

	"garage-reservation/internal/domain/booking"
	"garage-reservation/internal/pkg/config"
	"garage-reservation/internal/usecase/reconciler"

	"go.uber.org/fx"
)

var ReconcilerModule = fx.Module("reconciler",
	fx.Provide(
		NewSlotPool,
		reconciler.NewTrigger,
		NewReconcilerRunner,
	),
	fx.Invoke(StartReconciler),
)

func NewSlotPool(cfg config.Config) (booking.Pool, error) {
	return booking.NewPool(cfg.Garage.PoolSize)
}

func NewReconcilerRunner(cfg config.Config, backlog reconciler.Backlog, trigger *reconciler.Trigger, logger *slog.Logger) *reconciler.Runner {
	return reconciler.NewRunner(cfg.Garage.ReconcileInterval, backlog, trigger, logger)
}

func StartReconciler(lc fx.Lifecycle, runner *reconciler.Runner) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go runner.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			runner.Shutdown()
			return nil
		},
	})
}
