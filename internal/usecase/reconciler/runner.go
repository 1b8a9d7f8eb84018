package reconciler

import (
	"context"
	"log/slog"
	"time"
)

// Backlog is the single entry point into the serialized reconcile pass.
type Backlog interface {
	ReconcileBacklog(ctx context.Context) (promoted int, err error)
}

// Runner owns the recurring backlog scan: a fixed-interval tick as the
// safety net, plus on-demand wakes from capacity-freeing events. Shutdown is
// graceful: no new runs are accepted and an in-flight run finishes.
type Runner struct {
	interval   time.Duration
	backlog    Backlog
	trigger    *Trigger
	logger     *slog.Logger
	shutdownCh chan struct{}
	doneCh     chan struct{}
}

func NewRunner(interval time.Duration, backlog Backlog, trigger *Trigger, logger *slog.Logger) *Runner {
	return &Runner{
		interval:   interval,
		backlog:    backlog,
		trigger:    trigger,
		logger:     logger,
		shutdownCh: make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start runs the scan loop until the context is cancelled or Shutdown is
// called. A failed pass is logged and retried on the next tick; it never
// stops the loop.
func (r *Runner) Start(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdownCh:
			return
		case <-ticker.C:
			r.runOnce(ctx)
		case <-r.trigger.C():
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	promoted, err := r.backlog.ReconcileBacklog(ctx)
	if err != nil {
		r.logger.Error("backlog reconcile pass failed", "error", err)
		return
	}
	if promoted > 0 {
		r.logger.Info("backlog reconcile pass promoted bookings", "promoted", promoted)
	}
}

// Shutdown stops the loop and waits for an in-flight run to finish.
func (r *Runner) Shutdown() {
	close(r.shutdownCh)
	<-r.doneCh
}
