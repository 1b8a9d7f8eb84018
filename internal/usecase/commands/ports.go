package commands

import (
	"context"

	"garage-reservation/internal/domain/booking"

	"github.com/google/uuid"
)

// BookingStore is the write-side store contract the allocation engine
// consumes. The store is an external collaborator with single-document
// reads/writes and no multi-document transaction; the serialization needed
// for correctness lives in the commands layer, not here.
type BookingStore interface {
	ListApproved(ctx context.Context) ([]*booking.Booking, error)
	ListPending(ctx context.Context) ([]*booking.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	Create(ctx context.Context, b *booking.Booking) (uuid.UUID, error)
	Patch(ctx context.Context, id uuid.UUID, p booking.Patch) error
	Delete(ctx context.Context, id uuid.UUID) error
}
