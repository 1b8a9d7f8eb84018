package api

import (
	"errors"
	"net/http"
	"strconv"

	"garage-reservation/internal/domain/booking"
	"garage-reservation/internal/handler/httperr"
	"garage-reservation/internal/pkg/errs"
	"garage-reservation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type GarageHandler struct {
	q queries.BookingQueries
}

func NewGarageHandler(q queries.BookingQueries) *GarageHandler {
	return &GarageHandler{q: q}
}

// @Summary Garage status
// @Description Per-slot occupancy for the current month
// @Tags garage
// @Produce json
// @Success 200 {array} queries.SlotStatusView
// @Router /garage/status [get]
func (h *GarageHandler) Status(c *gin.Context) {
	statuses, err := h.q.GarageStatus(c.Request.Context())
	if err != nil {
		h.abortWithQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// @Summary Slot availability
// @Description Free slots for a candidate period
// @Tags garage
// @Produce json
// @Param start_month query string true "Start month"
// @Param duration_months query int true "Duration in months"
// @Success 200 {object} queries.AvailabilityView
// @Failure 400 {object} map[string]string
// @Router /garage/availability [get]
func (h *GarageHandler) Availability(c *gin.Context) {
	startMonth := c.Query("start_month")
	durationMonths, err := strconv.Atoi(c.DefaultQuery("duration_months", "1"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid duration", nil)
		return
	}

	view, err := h.q.Availability(c.Request.Context(), startMonth, durationMonths)
	if err != nil {
		h.abortWithQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *GarageHandler) abortWithQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidPeriod):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid period", nil)
	case errors.Is(err, errs.ErrStorageUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Storage temporarily unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
