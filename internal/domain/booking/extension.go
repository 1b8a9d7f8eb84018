package booking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidExtension = errors.New("invalid extension")
	ErrNotExtendable    = errors.New("only approved bookings holding a slot can be extended")
)

// ExtensionConflictError reports the slot another approved booking holds
// during the requested extension window.
type ExtensionConflictError struct {
	Slot int
}

func (e *ExtensionConflictError) Error() string {
	return fmt.Sprintf("slot %d is already booked during the extension window", e.Slot)
}

// Extension is a validated extension plan: the incremental window that was
// checked for conflicts and the resulting new end month.
type Extension struct {
	Window Period
	NewEnd Month
	Extra  int
}

// ExtensionWindow computes the incremental tail a booking would newly occupy:
// it starts the month immediately after the current end and spans extra
// months.
func ExtensionWindow(current Period, extra int) (Period, error) {
	if extra <= 0 {
		return Period{}, ErrInvalidExtension
	}
	return NewPeriod(current.End().AddMonths(1), extra)
}

// PlanExtension validates extending b by extra months against the approved
// set. Only the incremental window is tested, and only against *other*
// approved bookings on the same slot — the span b already holds was
// validated when it was allocated and is not reinterpreted here.
func PlanExtension(b *Booking, extra int, approved []*Booking) (*Extension, error) {
	if !b.HoldsSlot() {
		return nil, ErrNotExtendable
	}

	current, err := b.Period()
	if err != nil {
		return nil, err
	}

	window, err := ExtensionWindow(current, extra)
	if err != nil {
		return nil, err
	}

	slot := *b.Slot()
	for _, other := range approved {
		if other.ID() == b.ID() || !other.HoldsSlot() || *other.Slot() != slot {
			continue
		}
		op, err := other.Period()
		if err != nil {
			// Corrupt records cannot be proven conflict-free; skipping keeps
			// parity with the occupied-slot computation.
			continue
		}
		if window.Overlaps(op) {
			return nil, &ExtensionConflictError{Slot: slot}
		}
	}

	return &Extension{
		Window: window,
		NewEnd: window.End(),
		Extra:  extra,
	}, nil
}
