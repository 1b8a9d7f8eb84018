package queries

import (
	"time"

	"garage-reservation/internal/domain/booking"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type BookingView struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	StudentName    string    `json:"student_name"`
	StudentID      string    `json:"student_id"`
	StartMonth     string    `json:"start_month"`
	EndMonth       string    `json:"end_month"`
	DurationMonths int       `json:"duration_months"`
	Slot           *int      `json:"slot,omitempty"`
	Status         string    `json:"status"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SlotStatusView struct {
	Slot     int  `json:"slot"`
	Occupied bool `json:"occupied"`
}

type AvailabilityView struct {
	StartMonth string `json:"start_month"`
	EndMonth   string `json:"end_month"`
	Available  []int  `json:"available"`
}

type MonthUsage struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type AnalyticsView struct {
	TotalBookings int          `json:"total_bookings"`
	Approved      int          `json:"approved"`
	Pending       int          `json:"pending"`
	Rejected      int          `json:"rejected"`
	Cancelled     int          `json:"cancelled"`
	MonthlyUsage  []MonthUsage `json:"monthly_usage"`
}

func NewBookingView(b *booking.Booking) *BookingView {
	return &BookingView{
		ID:             b.ID(),
		Username:       b.Username(),
		StudentName:    b.StudentName(),
		StudentID:      b.StudentID(),
		StartMonth:     b.StartMonth(),
		EndMonth:       b.EndMonth(),
		DurationMonths: b.DurationMonths(),
		Slot:           b.Slot(),
		Status:         b.Status().String(),
		Message:        b.Message(),
		CreatedAt:      b.CreatedAt(),
		UpdatedAt:      b.UpdatedAt(),
	}
}

func NewBookingViews(bs []*booking.Booking) []*BookingView {
	views := make([]*BookingView, len(bs))
	for i, b := range bs {
		views[i] = NewBookingView(b)
	}
	return views
}
