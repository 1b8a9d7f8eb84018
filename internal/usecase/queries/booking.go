package queries

import (
	"context"

	"garage-reservation/internal/domain/booking"
	"garage-reservation/internal/infra"
	"garage-reservation/internal/pkg/clock"
	"garage-reservation/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrInvalidStatusFilter = errs.New("invalid status filter")

// BookingReadStore is the read-only slice of the store contract. No
// serialization is required on this path.
type BookingReadStore interface {
	ListAll(ctx context.Context, status *booking.Status, search string) ([]*booking.Booking, error)
	ListApproved(ctx context.Context) ([]*booking.Booking, error)
	ListByUsername(ctx context.Context, username string) ([]*booking.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

type BookingQueries interface {
	ListBookings(ctx context.Context, status, search string) ([]*BookingView, error)
	ListUserBookings(ctx context.Context, username string) ([]*BookingView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	GarageStatus(ctx context.Context) ([]*SlotStatusView, error)
	Availability(ctx context.Context, startMonth string, durationMonths int) (*AvailabilityView, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
	pool  booking.Pool
	clock clock.Clock
}

func NewBookingQueries(store BookingReadStore, pool booking.Pool, clock clock.Clock) BookingQueries {
	return &bookingQueriesImpl{
		store: store,
		pool:  pool,
		clock: clock,
	}
}

func (q *bookingQueriesImpl) ListBookings(ctx context.Context, status, search string) ([]*BookingView, error) {
	var statusFilter *booking.Status
	if status != "" {
		s := booking.Status(status)
		if !s.IsValid() {
			return nil, ErrInvalidStatusFilter
		}
		statusFilter = &s
	}

	bookings, err := q.store.ListAll(ctx, statusFilter, search)
	if err != nil {
		return nil, translateReadErr(err)
	}
	return NewBookingViews(bookings), nil
}

func (q *bookingQueriesImpl) ListUserBookings(ctx context.Context, username string) ([]*BookingView, error) {
	bookings, err := q.store.ListByUsername(ctx, username)
	if err != nil {
		return nil, translateReadErr(err)
	}
	return NewBookingViews(bookings), nil
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	b, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, translateReadErr(err)
	}
	return NewBookingView(b), nil
}

// GarageStatus reports per-slot occupancy for the current month.
func (q *bookingQueriesImpl) GarageStatus(ctx context.Context) ([]*SlotStatusView, error) {
	now := booking.MonthOf(q.clock.Now())
	period, err := booking.NewPeriod(now, 1)
	if err != nil {
		return nil, err
	}

	approved, err := q.store.ListApproved(ctx)
	if err != nil {
		return nil, translateReadErr(err)
	}

	occupied := q.pool.OccupiedSlots(period, approved)
	statuses := make([]*SlotStatusView, 0, q.pool.Size())
	for slot := 1; slot <= q.pool.Size(); slot++ {
		statuses = append(statuses, &SlotStatusView{Slot: slot, Occupied: occupied[slot]})
	}
	return statuses, nil
}

// Availability is the read-only probe behind the booking form: which slots
// are free for a candidate period.
func (q *bookingQueriesImpl) Availability(ctx context.Context, startMonth string, durationMonths int) (*AvailabilityView, error) {
	start, err := booking.ParseMonth(startMonth)
	if err != nil {
		return nil, err
	}
	period, err := booking.NewPeriod(start, durationMonths)
	if err != nil {
		return nil, err
	}

	approved, err := q.store.ListApproved(ctx)
	if err != nil {
		return nil, translateReadErr(err)
	}

	return &AvailabilityView{
		StartMonth: period.Start().FormatFirstDay(),
		EndMonth:   period.End().FormatLastDay(),
		Available:  q.pool.AvailableSlots(period, approved),
	}, nil
}

func translateReadErr(err error) error {
	if infra.IsKind(err, infra.KindUnavailable) {
		return errs.Mark(err, errs.ErrStorageUnavailable)
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}
