package request

import "strings"

type CreateBookingRequest struct {
	StudentName    string `json:"student_name" binding:"required"`
	StudentID      string `json:"student_id" binding:"required"`
	StartMonth     string `json:"start_month" binding:"required"`
	DurationMonths int    `json:"duration_months" binding:"required,min=1"`
	PreferredSlot  *int   `json:"preferred_slot,omitempty"`
}

func (r CreateBookingRequest) TrimmedStartMonth() string {
	return strings.TrimSpace(r.StartMonth)
}

type AssignSlotRequest struct {
	Slot int `json:"slot" binding:"required,min=1"`
}

type RejectBookingRequest struct {
	Message string `json:"message"`
}

type ExtendBookingRequest struct {
	ExtraMonths int `json:"extra_months" binding:"required,min=1"`
}
