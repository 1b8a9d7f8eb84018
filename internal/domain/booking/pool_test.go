//go:build unit

package booking_test

import (
	"errors"
	"testing"

	"garage-reservation/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedBooking(t *testing.T, slot int, start string, months int) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking("alice", "Alice", "S-001", mustPeriod(t, start, months))
	require.NoError(t, err)
	require.NoError(t, b.Approve(slot, "assigned"))
	return b
}

func TestNewPool(t *testing.T) {
	_, err := booking.NewPool(0)
	assert.ErrorIs(t, err, booking.ErrInvalidPoolSize)

	_, err = booking.NewPool(-1)
	assert.ErrorIs(t, err, booking.ErrInvalidPoolSize)

	p, err := booking.NewPool(8)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Size())
	assert.True(t, p.Contains(1))
	assert.True(t, p.Contains(8))
	assert.False(t, p.Contains(0))
	assert.False(t, p.Contains(9))
}

func TestPoolAvailableSlots(t *testing.T) {
	pool, err := booking.NewPool(4)
	require.NoError(t, err)

	period := mustPeriod(t, "2025-09", 2)

	t.Run("empty approved set", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3, 4}, pool.AvailableSlots(period, nil))
	})

	t.Run("overlapping holders excluded", func(t *testing.T) {
		approved := []*booking.Booking{
			approvedBooking(t, 2, "2025-09", 3),
			approvedBooking(t, 4, "2025-10", 1),
		}
		assert.Equal(t, []int{1, 3}, pool.AvailableSlots(period, approved))
	})

	t.Run("non-overlapping holders stay available", func(t *testing.T) {
		approved := []*booking.Booking{
			approvedBooking(t, 1, "2025-11", 2),
			approvedBooking(t, 2, "2025-01", 3),
		}
		assert.Equal(t, []int{1, 2, 3, 4}, pool.AvailableSlots(period, approved))
	})

	t.Run("approved booking without slot is ignored", func(t *testing.T) {
		b, err := booking.NewBooking("bob", "Bob", "S-002", period)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4}, pool.AvailableSlots(period, []*booking.Booking{b}))
	})

	t.Run("corrupt period is skipped", func(t *testing.T) {
		corrupt := booking.ReconstructBooking(
			approvedBooking(t, 1, "2025-09", 1).ID(),
			"eve", "Eve", "S-666",
			"garbage", "also garbage", 1,
			intPtr(3), booking.StatusApproved, "", zeroTime(), zeroTime(),
		)
		available := pool.AvailableSlots(period, []*booking.Booking{corrupt})
		assert.Equal(t, []int{1, 2, 3, 4}, available)
	})
}

func TestPoolAllocate(t *testing.T) {
	pool, err := booking.NewPool(3)
	require.NoError(t, err)

	period := mustPeriod(t, "2025-09", 2)

	t.Run("auto assigns lowest free slot", func(t *testing.T) {
		approved := []*booking.Booking{approvedBooking(t, 1, "2025-09", 2)}
		result, err := pool.Allocate(period, nil, approved)
		require.NoError(t, err)
		require.NotNil(t, result.Slot)
		assert.Equal(t, 2, *result.Slot)
		assert.Equal(t, booking.StatusApproved, result.Status)
		assert.True(t, result.Approved())
	})

	t.Run("preferred slot honored when free", func(t *testing.T) {
		preferred := 3
		result, err := pool.Allocate(period, &preferred, nil)
		require.NoError(t, err)
		require.NotNil(t, result.Slot)
		assert.Equal(t, 3, *result.Slot)
	})

	t.Run("preferred slot occupied reports alternatives", func(t *testing.T) {
		approved := []*booking.Booking{approvedBooking(t, 2, "2025-09", 2)}
		preferred := 2
		_, err := pool.Allocate(period, &preferred, approved)

		var slotErr *booking.SlotUnavailableError
		require.ErrorAs(t, err, &slotErr)
		assert.Equal(t, 2, slotErr.Slot)
		assert.Equal(t, []int{1, 3}, slotErr.Available)
	})

	t.Run("preferred slot outside pool is invalid input", func(t *testing.T) {
		preferred := 4
		_, err := pool.Allocate(period, &preferred, nil)
		assert.ErrorIs(t, err, booking.ErrSlotOutOfRange)

		var slotErr *booking.SlotUnavailableError
		assert.False(t, errors.As(err, &slotErr))
	})

	t.Run("exhausted pool queues", func(t *testing.T) {
		approved := []*booking.Booking{
			approvedBooking(t, 1, "2025-09", 2),
			approvedBooking(t, 2, "2025-09", 2),
			approvedBooking(t, 3, "2025-09", 2),
		}
		result, err := pool.Allocate(period, nil, approved)
		require.NoError(t, err)
		assert.Nil(t, result.Slot)
		assert.Equal(t, booking.StatusPending, result.Status)
		assert.False(t, result.Approved())
	})

	t.Run("deterministic for identical snapshots", func(t *testing.T) {
		approved := []*booking.Booking{approvedBooking(t, 1, "2025-09", 2)}
		first, err := pool.Allocate(period, nil, approved)
		require.NoError(t, err)
		second, err := pool.Allocate(period, nil, approved)
		require.NoError(t, err)
		assert.Equal(t, *first.Slot, *second.Slot)
	})
}
