//go:build unit

package reconciler_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"garage-reservation/internal/usecase/reconciler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBacklog struct {
	calls atomic.Int64
	ran   chan struct{}
	err   error
}

func newCountingBacklog() *countingBacklog {
	return &countingBacklog{ran: make(chan struct{}, 16)}
}

func (b *countingBacklog) ReconcileBacklog(_ context.Context) (int, error) {
	b.calls.Add(1)
	select {
	case b.ran <- struct{}{}:
	default:
	}
	return 0, b.err
}

func waitForRun(t *testing.T, b *countingBacklog) {
	t.Helper()
	select {
	case <-b.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("reconcile pass did not run in time")
	}
}

func TestRunnerTick(t *testing.T) {
	backlog := newCountingBacklog()
	trigger := reconciler.NewTrigger()
	runner := reconciler.NewRunner(10*time.Millisecond, backlog, trigger, slog.Default())

	go runner.Start(context.Background())
	defer runner.Shutdown()

	waitForRun(t, backlog)
	waitForRun(t, backlog)
	assert.GreaterOrEqual(t, backlog.calls.Load(), int64(2))
}

func TestRunnerWake(t *testing.T) {
	backlog := newCountingBacklog()
	trigger := reconciler.NewTrigger()
	// Interval long enough that only the wake can plausibly fire.
	runner := reconciler.NewRunner(time.Hour, backlog, trigger, slog.Default())

	go runner.Start(context.Background())
	defer runner.Shutdown()

	trigger.Wake()
	waitForRun(t, backlog)
	assert.Equal(t, int64(1), backlog.calls.Load())
}

func TestRunnerSurvivesFailedPass(t *testing.T) {
	backlog := newCountingBacklog()
	backlog.err = errors.New("store is down")
	trigger := reconciler.NewTrigger()
	runner := reconciler.NewRunner(10*time.Millisecond, backlog, trigger, slog.Default())

	go runner.Start(context.Background())
	defer runner.Shutdown()

	waitForRun(t, backlog)
	waitForRun(t, backlog)
	assert.GreaterOrEqual(t, backlog.calls.Load(), int64(2))
}

func TestRunnerShutdown(t *testing.T) {
	backlog := newCountingBacklog()
	trigger := reconciler.NewTrigger()
	runner := reconciler.NewRunner(time.Hour, backlog, trigger, slog.Default())

	done := make(chan struct{})
	go func() {
		runner.Start(context.Background())
		close(done)
	}()

	runner.Shutdown()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after shutdown")
	}
}

func TestTriggerCoalesces(t *testing.T) {
	trigger := reconciler.NewTrigger()
	trigger.Wake()
	trigger.Wake()
	trigger.Wake()

	select {
	case <-trigger.C():
	default:
		t.Fatal("expected a pending wake")
	}

	select {
	case <-trigger.C():
		t.Fatal("wakes must coalesce into one")
	default:
	}
	require.NotNil(t, trigger.C())
}
