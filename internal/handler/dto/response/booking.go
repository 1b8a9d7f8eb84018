package response

import (
	"log/slog"
	"time"

	"garage-reservation/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
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

type CreateBookingResponse struct {
	Booking BookingResponse `json:"booking"`
	Queued  bool            `json:"queued"`
}

type SlotUnavailableResponse struct {
	Slot      int   `json:"slot"`
	Available []int `json:"available"`
}

type ExtensionConflictResponse struct {
	Slot int `json:"slot"`
}

func FromBookingView(v *queries.BookingView) BookingResponse {
	var resp BookingResponse
	if err := copier.Copy(&resp, v); err != nil {
		slog.Error("failed to map booking view", "error", err)
	}
	return resp
}

func FromBookingViews(vs []*queries.BookingView) []BookingResponse {
	resps := make([]BookingResponse, len(vs))
	for i, v := range vs {
		resps[i] = FromBookingView(v)
	}
	return resps
}
