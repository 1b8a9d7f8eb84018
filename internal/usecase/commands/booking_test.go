//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"garage-reservation/internal/domain/booking"
	"garage-reservation/internal/infra"
	"garage-reservation/internal/pkg/errs"
	"garage-reservation/internal/usecase/commands"
	"garage-reservation/internal/usecase/reconciler"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory BookingStore with the same patch semantics as
// the SQL store.
type fakeStore struct {
	bookings map[uuid.UUID]*booking.Booking
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: make(map[uuid.UUID]*booking.Booking)}
}

func (s *fakeStore) ListApproved(_ context.Context) ([]*booking.Booking, error) {
	return s.listByStatus(booking.StatusApproved)
}

func (s *fakeStore) ListPending(_ context.Context) ([]*booking.Booking, error) {
	return s.listByStatus(booking.StatusPending)
}

func (s *fakeStore) listByStatus(status booking.Status) ([]*booking.Booking, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var result []*booking.Booking
	for _, b := range s.bookings {
		if b.Status() == status {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID().String() < result[j].ID().String()
	})
	return result, nil
}

func (s *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	b, ok := s.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", errors.New("no rows"), infra.KindNotFound)
	}
	return clone(b), nil
}

func (s *fakeStore) Create(_ context.Context, b *booking.Booking) (uuid.UUID, error) {
	if s.failWith != nil {
		return uuid.Nil, s.failWith
	}
	s.bookings[b.ID()] = clone(b)
	return b.ID(), nil
}

func (s *fakeStore) Patch(_ context.Context, id uuid.UUID, p booking.Patch) error {
	if s.failWith != nil {
		return s.failWith
	}
	existing, ok := s.bookings[id]
	if !ok {
		return infra.WrapRepoErr("booking not found", errors.New("no rows"), infra.KindNotFound)
	}

	slot := existing.Slot()
	if p.ClearSlot {
		slot = nil
	} else if p.Slot != nil {
		slot = p.Slot
	}

	s.bookings[id] = booking.ReconstructBooking(
		existing.ID(), existing.Username(), existing.StudentName(), existing.StudentID(),
		existing.StartMonth(),
		coalesce(p.EndMonth, existing.EndMonth()),
		coalesce(p.DurationMonths, existing.DurationMonths()),
		slot,
		coalesce(p.Status, existing.Status()),
		coalesce(p.Message, existing.Message()),
		existing.CreatedAt(), existing.UpdatedAt(),
	)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.bookings[id]; !ok {
		return infra.WrapRepoErr("booking not found", errors.New("no rows"), infra.KindNotFound)
	}
	delete(s.bookings, id)
	return nil
}

// coalesce applies an optional patch field over the stored value.
func coalesce[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}

func clone(b *booking.Booking) *booking.Booking {
	return booking.ReconstructBooking(
		b.ID(), b.Username(), b.StudentName(), b.StudentID(),
		b.StartMonth(), b.EndMonth(), b.DurationMonths(),
		b.Slot(), b.Status(), b.Message(),
		b.CreatedAt(), b.UpdatedAt(),
	)
}

func newCommands(t *testing.T, store commands.BookingStore, poolSize int) (commands.BookingCommands, *reconciler.Trigger) {
	t.Helper()
	pool, err := booking.NewPool(poolSize)
	require.NoError(t, err)
	trigger := reconciler.NewTrigger()
	return commands.NewBookingCommands(store, pool, trigger), trigger
}

func create(t *testing.T, cmds commands.BookingCommands, p commands.CreateBookingParams) *commands.CreateBookingResult {
	t.Helper()
	result, err := cmds.CreateBooking(context.Background(), p)
	require.NoError(t, err)
	return result
}

func params(username, start string, months int, preferred *int) commands.CreateBookingParams {
	return commands.CreateBookingParams{
		Username:       username,
		StudentName:    "Student " + username,
		StudentID:      "S-" + username,
		StartMonth:     start,
		DurationMonths: months,
		PreferredSlot:  preferred,
	}
}

func TestCreateBooking(t *testing.T) {
	t.Run("auto-assigns lowest free slot", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 3)

		first := create(t, cmds, params("alice", "2025-09", 2, nil))
		assert.False(t, first.Queued)
		require.NotNil(t, first.Booking.Slot)
		assert.Equal(t, 1, *first.Booking.Slot)
		assert.Equal(t, "Approved", first.Booking.Status)

		second := create(t, cmds, params("bob", "2025-09", 2, nil))
		require.NotNil(t, second.Booking.Slot)
		assert.Equal(t, 2, *second.Booking.Slot)
	})

	t.Run("honors free preferred slot", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 3)

		preferred := 3
		result := create(t, cmds, params("alice", "2025-09", 2, &preferred))
		require.NotNil(t, result.Booking.Slot)
		assert.Equal(t, 3, *result.Booking.Slot)
	})

	t.Run("occupied preferred slot rejects with alternatives", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 3)
		create(t, cmds, params("alice", "2025-09", 2, nil)) // takes slot 1

		preferred := 1
		_, err := cmds.CreateBooking(context.Background(), params("bob", "2025-09", 2, &preferred))

		var slotErr *booking.SlotUnavailableError
		require.ErrorAs(t, err, &slotErr)
		assert.Equal(t, 1, slotErr.Slot)
		assert.Equal(t, []int{2, 3}, slotErr.Available)
		assert.Len(t, store.bookings, 1, "rejected request must not be persisted")
	})

	t.Run("preferred slot outside pool", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 3)

		preferred := 9
		_, err := cmds.CreateBooking(context.Background(), params("bob", "2025-09", 1, &preferred))
		assert.ErrorIs(t, err, booking.ErrSlotOutOfRange)
		assert.Empty(t, store.bookings)
	})

	t.Run("queues when pool exhausted", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 2)
		create(t, cmds, params("a", "2025-09", 2, nil))
		create(t, cmds, params("b", "2025-09", 2, nil))

		result := create(t, cmds, params("c", "2025-09", 2, nil))
		assert.True(t, result.Queued)
		assert.Nil(t, result.Booking.Slot)
		assert.Equal(t, "Pending", result.Booking.Status)
	})

	t.Run("non-overlapping periods share a slot", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 1)
		create(t, cmds, params("a", "2025-09", 2, nil)) // Sep-Oct
		result := create(t, cmds, params("b", "2025-11", 2, nil))
		assert.False(t, result.Queued)
		require.NotNil(t, result.Booking.Slot)
		assert.Equal(t, 1, *result.Booking.Slot)
	})

	t.Run("invalid start month", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 2)
		_, err := cmds.CreateBooking(context.Background(), params("a", "someday", 1, nil))
		assert.ErrorIs(t, err, booking.ErrInvalidPeriod)
	})

	t.Run("storage failure surfaces as unavailable", func(t *testing.T) {
		store := newFakeStore()
		store.failWith = infra.WrapRepoErr("timeout", context.DeadlineExceeded, infra.KindUnavailable)
		cmds, _ := newCommands(t, store, 2)

		_, err := cmds.CreateBooking(context.Background(), params("a", "2025-09", 1, nil))
		assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
	})
}

func TestAssignSlot(t *testing.T) {
	t.Run("assigns free slot to queued booking", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 2)
		create(t, cmds, params("a", "2025-09", 2, nil))
		create(t, cmds, params("b", "2025-09", 2, nil))
		queued := create(t, cmds, params("c", "2025-10", 1, nil))
		require.True(t, queued.Queued)

		// Slot 2's holder covers Sep-Oct; slot assignment must respect it.
		_, err := cmds.AssignSlot(context.Background(), queued.Booking.ID, 2)
		var slotErr *booking.SlotUnavailableError
		require.ErrorAs(t, err, &slotErr)

		// After the first holder cancels, the admin can hand over slot 1.
		first, err := cmds.CancelBooking(context.Background(), mustFind(t, store, "a"))
		require.NoError(t, err)
		assert.Equal(t, "Cancelled", first.Status)

		view, err := cmds.AssignSlot(context.Background(), queued.Booking.ID, 1)
		require.NoError(t, err)
		require.NotNil(t, view.Slot)
		assert.Equal(t, 1, *view.Slot)
		assert.Equal(t, "Approved", view.Status)
	})

	t.Run("unknown booking", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 2)
		_, err := cmds.AssignSlot(context.Background(), uuid.New(), 1)
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
	})

	t.Run("finalized booking", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 2)
		created := create(t, cmds, params("a", "2025-09", 1, nil))
		_, err := cmds.CancelBooking(context.Background(), created.Booking.ID)
		require.NoError(t, err)

		_, err = cmds.AssignSlot(context.Background(), created.Booking.ID, 1)
		assert.ErrorIs(t, err, errs.ErrBookingFinalized)
	})
}

func TestRejectBooking(t *testing.T) {
	store := newFakeStore()
	cmds, _ := newCommands(t, store, 1)
	create(t, cmds, params("a", "2025-09", 2, nil))
	queued := create(t, cmds, params("b", "2025-09", 2, nil))

	view, err := cmds.RejectBooking(context.Background(), queued.Booking.ID, "No capacity this term.")
	require.NoError(t, err)
	assert.Equal(t, "Rejected", view.Status)
	assert.Equal(t, "No capacity this term.", view.Message)

	_, err = cmds.RejectBooking(context.Background(), queued.Booking.ID, "again")
	assert.ErrorIs(t, err, errs.ErrBookingNotPending)
}

func TestCancelBooking(t *testing.T) {
	store := newFakeStore()
	cmds, trigger := newCommands(t, store, 1)
	created := create(t, cmds, params("a", "2025-09", 2, nil))

	view, err := cmds.CancelBooking(context.Background(), created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", view.Status)
	assert.Nil(t, view.Slot)

	select {
	case <-trigger.C():
	default:
		t.Fatal("cancel must wake the reconciler")
	}

	_, err = cmds.CancelBooking(context.Background(), created.Booking.ID)
	assert.ErrorIs(t, err, errs.ErrBookingFinalized)
}

func TestExtendBooking(t *testing.T) {
	t.Run("extends clear tail", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 2)
		created := create(t, cmds, params("a", "2025-09", 3, nil)) // ends Nov

		view, err := cmds.ExtendBooking(context.Background(), created.Booking.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, "31/01/2026", view.EndMonth)
		assert.Equal(t, 5, view.DurationMonths)
	})

	t.Run("conflict leaves stored period untouched", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 1)
		first := create(t, cmds, params("a", "2025-09", 2, nil))  // slot 1, Sep-Oct
		second := create(t, cmds, params("b", "2025-11", 1, nil)) // slot 1, Nov
		require.False(t, second.Queued)

		_, err := cmds.ExtendBooking(context.Background(), first.Booking.ID, 1)
		var conflict *booking.ExtensionConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, 1, conflict.Slot)

		stored := store.bookings[first.Booking.ID]
		assert.Equal(t, "31/10/2025", stored.EndMonth())
		assert.Equal(t, 2, stored.DurationMonths())
	})

	t.Run("queued booking cannot extend", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 1)
		create(t, cmds, params("a", "2025-09", 2, nil))
		queued := create(t, cmds, params("b", "2025-09", 2, nil))
		require.True(t, queued.Queued)

		_, err := cmds.ExtendBooking(context.Background(), queued.Booking.ID, 1)
		assert.ErrorIs(t, err, booking.ErrNotExtendable)
	})
}

func TestDeleteBooking(t *testing.T) {
	store := newFakeStore()
	cmds, trigger := newCommands(t, store, 1)
	created := create(t, cmds, params("a", "2025-09", 1, nil))

	require.NoError(t, cmds.DeleteBooking(context.Background(), created.Booking.ID))
	assert.Empty(t, store.bookings)

	select {
	case <-trigger.C():
	default:
		t.Fatal("delete must wake the reconciler")
	}

	err := cmds.DeleteBooking(context.Background(), created.Booking.ID)
	assert.ErrorIs(t, err, errs.ErrBookingNotFound)
}

func TestReconcileBacklog(t *testing.T) {
	t.Run("promotes in creation order", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 1)
		holder := create(t, cmds, params("a", "2025-09", 2, nil))
		firstQueued := create(t, cmds, params("b", "2025-09", 2, nil))
		secondQueued := create(t, cmds, params("c", "2025-09", 2, nil))
		require.True(t, firstQueued.Queued)
		require.True(t, secondQueued.Queued)

		_, err := cmds.CancelBooking(context.Background(), holder.Booking.ID)
		require.NoError(t, err)

		promoted, err := cmds.ReconcileBacklog(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, promoted)

		first := store.bookings[firstQueued.Booking.ID]
		assert.Equal(t, booking.StatusApproved, first.Status())
		require.NotNil(t, first.Slot())
		assert.Equal(t, 1, *first.Slot())
		assert.Equal(t, "Slot 1 assigned automatically from the waiting queue.", first.Message())

		second := store.bookings[secondQueued.Booking.ID]
		assert.Equal(t, booking.StatusPending, second.Status())
	})

	t.Run("promotions consume capacity within a pass", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 2)
		a := create(t, cmds, params("a", "2025-09", 2, nil))
		b := create(t, cmds, params("b", "2025-09", 2, nil))
		q1 := create(t, cmds, params("c", "2025-09", 2, nil))
		q2 := create(t, cmds, params("d", "2025-09", 2, nil))
		q3 := create(t, cmds, params("e", "2025-09", 2, nil))

		_, err := cmds.CancelBooking(context.Background(), a.Booking.ID)
		require.NoError(t, err)
		_, err = cmds.CancelBooking(context.Background(), b.Booking.ID)
		require.NoError(t, err)

		promoted, err := cmds.ReconcileBacklog(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, promoted)

		assert.Equal(t, booking.StatusApproved, store.bookings[q1.Booking.ID].Status())
		assert.Equal(t, booking.StatusApproved, store.bookings[q2.Booking.ID].Status())
		assert.Equal(t, booking.StatusPending, store.bookings[q3.Booking.ID].Status())
	})

	t.Run("no capacity promotes nothing", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 1)
		create(t, cmds, params("a", "2025-09", 2, nil))
		create(t, cmds, params("b", "2025-09", 2, nil))

		promoted, err := cmds.ReconcileBacklog(context.Background())
		require.NoError(t, err)
		assert.Zero(t, promoted)
	})

	t.Run("corrupt pending entry stays pending", func(t *testing.T) {
		store := newFakeStore()
		cmds, _ := newCommands(t, store, 1)

		corruptID, err := uuid.NewV7()
		require.NoError(t, err)
		store.bookings[corruptID] = booking.ReconstructBooking(
			corruptID, "eve", "Eve", "S-666",
			"garbage", "garbage", 1,
			nil, booking.StatusPending, "", zeroTime(), zeroTime(),
		)
		healthy := create(t, cmds, params("a", "2025-09", 1, nil))
		_, err = cmds.CancelBooking(context.Background(), healthy.Booking.ID)
		require.NoError(t, err)

		queued := create(t, cmds, params("b", "2025-09", 1, nil))
		require.False(t, queued.Queued, "slot freed by cancel should approve directly")

		promoted, err := cmds.ReconcileBacklog(context.Background())
		require.NoError(t, err)
		assert.Zero(t, promoted)
		assert.Equal(t, booking.StatusPending, store.bookings[corruptID].Status())
	})
}

func mustFind(t *testing.T, store *fakeStore, username string) uuid.UUID {
	t.Helper()
	for id, b := range store.bookings {
		if b.Username() == username {
			return id
		}
	}
	t.Fatalf("no booking for %s", username)
	return uuid.Nil
}

func zeroTime() (t time.Time) { return }
