package booking

import (
	"errors"
	"fmt"
	"log/slog"
)

var ErrInvalidPoolSize = errors.New("pool size must be positive")

// ErrSlotOutOfRange rejects a slot preference outside [1, pool size]. This is
// an invalid-input case and is reported before anything is persisted; it is
// deliberately distinct from SlotUnavailableError, which covers in-pool but
// occupied slots.
var ErrSlotOutOfRange = errors.New("slot out of range")

// SlotUnavailableError carries the full available list so the requester can
// pick another slot without a second round-trip.
type SlotUnavailableError struct {
	Slot      int
	Available []int
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %d is not available for this period", e.Slot)
}

// Pool is the fixed set of physical garage slots, numbered 1..size.
type Pool struct {
	size int
}

func NewPool(size int) (Pool, error) {
	if size <= 0 {
		return Pool{}, ErrInvalidPoolSize
	}
	return Pool{size: size}, nil
}

func (p Pool) Size() int { return p.size }

func (p Pool) Contains(slot int) bool {
	return slot >= 1 && slot <= p.size
}

// OccupiedSlots computes the slots held during any approved booking whose
// period intersects the candidate period. A booking with an unparsable
// stored period is skipped and logged; one corrupt record must not abort
// the computation.
func (p Pool) OccupiedSlots(period Period, approved []*Booking) map[int]bool {
	occupied := make(map[int]bool)
	for _, b := range approved {
		if !b.HoldsSlot() {
			continue
		}
		bp, err := b.Period()
		if err != nil {
			slog.Warn("skipping booking with corrupt period",
				"booking_id", b.ID(), "start", b.StartMonth(), "end", b.EndMonth())
			continue
		}
		if period.Overlaps(bp) {
			occupied[*b.Slot()] = true
		}
	}
	return occupied
}

// AvailableSlots is the pool minus the occupied slots, ascending. The order
// is the automatic-assignment tie-break.
func (p Pool) AvailableSlots(period Period, approved []*Booking) []int {
	occupied := p.OccupiedSlots(period, approved)
	available := make([]int, 0, p.size)
	for slot := 1; slot <= p.size; slot++ {
		if !occupied[slot] {
			available = append(available, slot)
		}
	}
	return available
}

// AllocationResult is the outcome of a slot allocation decision. Slot is nil
// for the queued outcome.
type AllocationResult struct {
	Slot    *int
	Status  Status
	Message string
}

func (r AllocationResult) Approved() bool {
	return r.Status == StatusApproved
}

// Allocate decides the slot assignment for a request. It is side-effect-free
// and deterministic for a fixed approved-set snapshot: the caller persists
// the outcome. Running out of capacity is not an error; it is the queueing
// outcome.
func (p Pool) Allocate(period Period, preferred *int, approved []*Booking) (AllocationResult, error) {
	if preferred != nil && !p.Contains(*preferred) {
		return AllocationResult{}, fmt.Errorf("%w: %d (pool size %d)", ErrSlotOutOfRange, *preferred, p.size)
	}

	available := p.AvailableSlots(period, approved)

	if preferred != nil {
		for _, slot := range available {
			if slot == *preferred {
				s := slot
				return AllocationResult{
					Slot:    &s,
					Status:  StatusApproved,
					Message: fmt.Sprintf("Slot %d assigned as requested.", slot),
				}, nil
			}
		}
		return AllocationResult{}, &SlotUnavailableError{Slot: *preferred, Available: available}
	}

	if len(available) > 0 {
		s := available[0]
		return AllocationResult{
			Slot:    &s,
			Status:  StatusApproved,
			Message: fmt.Sprintf("Slot %d assigned automatically.", s),
		}, nil
	}

	return AllocationResult{
		Status:  StatusPending,
		Message: "No slot available for this period. Added to the waiting queue.",
	}, nil
}
