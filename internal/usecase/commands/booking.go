package commands

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"garage-reservation/internal/domain/booking"
	"garage-reservation/internal/infra"
	"garage-reservation/internal/pkg/errs"
	"garage-reservation/internal/usecase/queries"
	"garage-reservation/internal/usecase/reconciler"

	"github.com/google/uuid"
)

type CreateBookingParams struct {
	Username       string
	StudentName    string
	StudentID      string
	StartMonth     string
	DurationMonths int
	PreferredSlot  *int
}

type CreateBookingResult struct {
	Booking *queries.BookingView
	Queued  bool
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, p CreateBookingParams) (*CreateBookingResult, error)
	AssignSlot(ctx context.Context, id uuid.UUID, slot int) (*queries.BookingView, error)
	RejectBooking(ctx context.Context, id uuid.UUID, message string) (*queries.BookingView, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*queries.BookingView, error)
	ExtendBooking(ctx context.Context, id uuid.UUID, extraMonths int) (*queries.BookingView, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	ReconcileBacklog(ctx context.Context) (int, error)
}

// bookingCommandsImpl serializes every allocation-affecting operation behind
// one mutex: each operation reads the approved set and writes its outcome as
// a unit. Without this, two concurrent creates can observe the same free
// slot and both claim it.
type bookingCommandsImpl struct {
	mu      sync.Mutex
	store   BookingStore
	pool    booking.Pool
	trigger *reconciler.Trigger
}

func NewBookingCommands(store BookingStore, pool booking.Pool, trigger *reconciler.Trigger) BookingCommands {
	return &bookingCommandsImpl{
		store:   store,
		pool:    pool,
		trigger: trigger,
	}
}

// CreateBooking normalizes the requested period, allocates a slot (or
// queues the request when the pool is exhausted) and persists the outcome.
func (c *bookingCommandsImpl) CreateBooking(ctx context.Context, p CreateBookingParams) (*CreateBookingResult, error) {
	start, err := booking.ParseMonth(p.StartMonth)
	if err != nil {
		return nil, err
	}
	period, err := booking.NewPeriod(start, p.DurationMonths)
	if err != nil {
		return nil, err
	}

	b, err := booking.NewBooking(p.Username, p.StudentName, p.StudentID, period)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	approved, err := c.store.ListApproved(ctx)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	result, err := c.pool.Allocate(period, p.PreferredSlot, approved)
	if err != nil {
		return nil, err
	}
	b.ApplyAllocation(result)

	if _, err := c.store.Create(ctx, b); err != nil {
		return nil, translateStoreErr(err)
	}

	return &CreateBookingResult{
		Booking: queries.NewBookingView(b),
		Queued:  !result.Approved(),
	}, nil
}

// AssignSlot is the explicit (admin) assignment path: the requested slot
// must be free for the booking's own period among all other approved
// bookings.
func (c *bookingCommandsImpl) AssignSlot(ctx context.Context, id uuid.UUID, slot int) (*queries.BookingView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status().IsTerminal() {
		return nil, errs.ErrBookingFinalized
	}

	period, err := b.Period()
	if err != nil {
		return nil, err
	}

	approved, err := c.store.ListApproved(ctx)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	result, err := c.pool.Allocate(period, &slot, excludeBooking(approved, id))
	if err != nil {
		return nil, err
	}
	result.Message = fmt.Sprintf("Slot %d assigned by admin.", slot)
	b.ApplyAllocation(result)

	if err := c.store.Patch(ctx, id, booking.PatchFromBooking(b)); err != nil {
		return nil, translateStoreErr(err)
	}
	return queries.NewBookingView(b), nil
}

func (c *bookingCommandsImpl) RejectBooking(ctx context.Context, id uuid.UUID, message string) (*queries.BookingView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Reject(message); err != nil {
		return nil, errs.Mark(err, errs.ErrBookingNotPending)
	}

	if err := c.store.Patch(ctx, id, booking.PatchFromBooking(b)); err != nil {
		return nil, translateStoreErr(err)
	}
	return queries.NewBookingView(b), nil
}

// CancelBooking releases any held slot and wakes the reconciler, since a
// cancellation is the most likely event to free capacity for the backlog.
func (c *bookingCommandsImpl) CancelBooking(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Cancel(); err != nil {
		return nil, errs.Mark(err, errs.ErrBookingFinalized)
	}

	if err := c.store.Patch(ctx, id, booking.PatchFromBooking(b)); err != nil {
		return nil, translateStoreErr(err)
	}

	c.trigger.Wake()
	return queries.NewBookingView(b), nil
}

// ExtendBooking validates the incremental extension window against other
// holders of the same slot and moves the end month forward. On conflict the
// stored period is left untouched.
func (c *bookingCommandsImpl) ExtendBooking(ctx context.Context, id uuid.UUID, extraMonths int) (*queries.BookingView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	approved, err := c.store.ListApproved(ctx)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	ext, err := booking.PlanExtension(b, extraMonths, approved)
	if err != nil {
		return nil, err
	}
	b.Extend(ext.NewEnd, ext.Extra)

	if err := c.store.Patch(ctx, id, booking.PatchFromBooking(b)); err != nil {
		return nil, translateStoreErr(err)
	}
	return queries.NewBookingView(b), nil
}

// DeleteBooking removes the record entirely and wakes the reconciler: a
// hard delete may free capacity just like a cancellation.
func (c *bookingCommandsImpl) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, id); err != nil {
		return translateStoreErr(err)
	}

	c.trigger.Wake()
	return nil
}

// ReconcileBacklog runs one promotion pass: pending bookings in FIFO order
// (identity keys are sortable creation keys), each allocated against the
// live approved set so promotions made earlier in the pass occupy capacity
// for the entries behind them. Per-entry failures are isolated; the next
// pass retries them.
func (c *bookingCommandsImpl) ReconcileBacklog(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending, err := c.store.ListPending(ctx)
	if err != nil {
		return 0, translateStoreErr(err)
	}
	approved, err := c.store.ListApproved(ctx)
	if err != nil {
		return 0, translateStoreErr(err)
	}

	sort.Slice(pending, func(i, j int) bool {
		a, b := pending[i].ID(), pending[j].ID()
		return bytes.Compare(a[:], b[:]) < 0
	})

	promoted := 0
	for _, p := range pending {
		period, err := p.Period()
		if err != nil {
			slog.Warn("leaving backlog entry with corrupt period pending",
				"booking_id", p.ID(), "start", p.StartMonth(), "end", p.EndMonth())
			continue
		}

		result, err := c.pool.Allocate(period, nil, approved)
		if err != nil {
			slog.Error("backlog allocation failed", "booking_id", p.ID(), "error", err)
			continue
		}
		if !result.Approved() {
			continue
		}

		result.Message = fmt.Sprintf("Slot %d assigned automatically from the waiting queue.", *result.Slot)
		p.ApplyAllocation(result)

		if err := c.store.Patch(ctx, p.ID(), booking.PatchFromBooking(p)); err != nil {
			slog.Error("backlog promotion write failed", "booking_id", p.ID(), "error", err)
			continue
		}

		// The promotion must occupy capacity for the rest of this pass.
		approved = append(approved, p)
		promoted++
	}

	return promoted, nil
}

func (c *bookingCommandsImpl) loadBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return b, nil
}

func excludeBooking(bs []*booking.Booking, id uuid.UUID) []*booking.Booking {
	result := make([]*booking.Booking, 0, len(bs))
	for _, b := range bs {
		if b.ID() != id {
			result = append(result, b)
		}
	}
	return result
}

func translateStoreErr(err error) error {
	switch {
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, errs.ErrBookingNotFound)
	case infra.IsKind(err, infra.KindUnavailable):
		return errs.Mark(err, errs.ErrStorageUnavailable)
	default:
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
}
