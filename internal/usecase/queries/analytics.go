package queries

import (
	"context"
	"log/slog"

	"garage-reservation/internal/domain/booking"
	"garage-reservation/internal/pkg/clock"
)

const usageWindowMonths = 6

type AnalyticsQueries interface {
	Summary(ctx context.Context) (*AnalyticsView, error)
}

type analyticsQueriesImpl struct {
	store BookingReadStore
	clock clock.Clock
}

func NewAnalyticsQueries(store BookingReadStore, clock clock.Clock) AnalyticsQueries {
	return &analyticsQueriesImpl{
		store: store,
		clock: clock,
	}
}

// Summary aggregates status counters and a trailing six-month usage series
// keyed by start month. Pure read side; bookings with corrupt periods are
// counted in the totals but excluded from the usage series.
func (q *analyticsQueriesImpl) Summary(ctx context.Context) (*AnalyticsView, error) {
	bookings, err := q.store.ListAll(ctx, nil, "")
	if err != nil {
		return nil, translateReadErr(err)
	}

	view := &AnalyticsView{TotalBookings: len(bookings)}
	starts := make([]booking.Month, 0, len(bookings))
	for _, b := range bookings {
		switch b.Status() {
		case booking.StatusApproved:
			view.Approved++
		case booking.StatusPending:
			view.Pending++
		case booking.StatusRejected:
			view.Rejected++
		case booking.StatusCancelled:
			view.Cancelled++
		}

		start, err := booking.ParseMonth(b.StartMonth())
		if err != nil {
			slog.Warn("excluding booking with corrupt start month from usage series",
				"booking_id", b.ID(), "start", b.StartMonth())
			continue
		}
		starts = append(starts, start)
	}

	current := booking.MonthOf(q.clock.Now())
	view.MonthlyUsage = make([]MonthUsage, 0, usageWindowMonths)
	for i := usageWindowMonths - 1; i >= 0; i-- {
		month := current.AddMonths(-i)
		count := 0
		for _, start := range starts {
			if start.Equal(month) {
				count++
			}
		}
		view.MonthlyUsage = append(view.MonthlyUsage, MonthUsage{
			Month: month.FirstDay().Format("January 2006"),
			Count: count,
		})
	}

	return view, nil
}
