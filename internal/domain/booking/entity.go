package booking

import (
	"errors"
	"fmt"
	"time"

	"garage-reservation/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrEmptyStudentName = errors.New("student name cannot be empty")
	ErrEmptyStudentID   = errors.New("student ID cannot be empty")
	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrNotPending       = errors.New("booking is not pending")
	ErrFinalized        = errors.New("booking is already finalized")
	ErrCorruptPeriod    = errors.New("stored period is unparsable")
)

// Booking is the central entity. Period endpoints are kept in their textual
// storage encoding (DD/MM/YYYY); Period() normalizes them on demand so a
// corrupt stored record surfaces as ErrCorruptPeriod instead of poisoning
// the whole set.
type Booking struct {
	id             uuid.UUID
	username       string
	studentName    string
	studentID      string
	startMonth     string
	endMonth       string
	durationMonths int
	slot           *int
	status         Status
	message        string
	createdAt      time.Time
	updatedAt      time.Time
}

// NewBooking creates a Pending booking for the given period. The identity is
// a UUIDv7, so creation order is recoverable by sorting ids — the backlog
// relies on that for FIFO fairness.
func NewBooking(username, studentName, studentID string, period Period) (*Booking, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if studentName == "" {
		return nil, ErrEmptyStudentName
	}
	if studentID == "" {
		return nil, ErrEmptyStudentID
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:             id,
		username:       username,
		studentName:    studentName,
		studentID:      studentID,
		startMonth:     period.Start().FormatFirstDay(),
		endMonth:       period.End().FormatLastDay(),
		durationMonths: period.Months(),
		status:         StatusPending,
		message:        "Waiting for admin approval.",
	}, nil
}

func ReconstructBooking(
	id uuid.UUID,
	username, studentName, studentID string,
	startMonth, endMonth string,
	durationMonths int,
	slot *int,
	status Status,
	message string,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:             id,
		username:       username,
		studentName:    studentName,
		studentID:      studentID,
		startMonth:     startMonth,
		endMonth:       endMonth,
		durationMonths: durationMonths,
		slot:           slot,
		status:         status,
		message:        message,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (b *Booking) ID() uuid.UUID       { return b.id }
func (b *Booking) Username() string    { return b.username }
func (b *Booking) StudentName() string { return b.studentName }
func (b *Booking) StudentID() string   { return b.studentID }
func (b *Booking) StartMonth() string  { return b.startMonth }
func (b *Booking) EndMonth() string    { return b.endMonth }
func (b *Booking) DurationMonths() int { return b.durationMonths }
func (b *Booking) Status() Status      { return b.status }
func (b *Booking) Message() string     { return b.message }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// Slot returns a copy so callers cannot mutate the held slot through the
// pointer.
func (b *Booking) Slot() *int {
	if b.slot == nil {
		return nil
	}
	s := *b.slot
	return &s
}

// HoldsSlot reports whether the booking currently occupies a slot.
func (b *Booking) HoldsSlot() bool {
	return b.status == StatusApproved && b.slot != nil
}

// Period normalizes the stored endpoints.
func (b *Booking) Period() (Period, error) {
	p, err := ParsePeriod(b.startMonth, b.endMonth)
	if err != nil {
		return Period{}, errs.Mark(err, ErrCorruptPeriod)
	}
	return p, nil
}

// ApplyAllocation transfers an allocation outcome onto the booking.
func (b *Booking) ApplyAllocation(res AllocationResult) {
	if res.Slot != nil {
		s := *res.Slot
		b.slot = &s
	} else {
		b.slot = nil
	}
	b.status = res.Status
	b.message = res.Message
}

// Approve assigns the slot and moves the booking to Approved.
func (b *Booking) Approve(slot int, message string) error {
	if b.status.IsTerminal() {
		return ErrFinalized
	}
	s := slot
	b.slot = &s
	b.status = StatusApproved
	b.message = message
	return nil
}

// Reject finalizes a pending booking without a slot.
func (b *Booking) Reject(message string) error {
	if b.status != StatusPending {
		return ErrNotPending
	}
	b.status = StatusRejected
	if message == "" {
		message = "Rejected by admin."
	}
	b.message = message
	return nil
}

// Cancel releases any held slot and finalizes the booking.
func (b *Booking) Cancel() error {
	if b.status.IsTerminal() {
		return ErrFinalized
	}
	b.slot = nil
	b.status = StatusCancelled
	b.message = "Cancelled. Slot released."
	return nil
}

// Extend moves the end of the period forward. Slot and status are untouched;
// the caller is responsible for the conflict check (see PlanExtension).
func (b *Booking) Extend(newEnd Month, extraMonths int) {
	b.endMonth = newEnd.FormatLastDay()
	b.durationMonths += extraMonths
	b.message = fmt.Sprintf("Extended by %d month(s). Now ends on %s.", extraMonths, b.endMonth)
}
