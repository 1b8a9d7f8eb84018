package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"garage-reservation/internal/handler/httperr"
	"garage-reservation/internal/pkg/clock"
	"garage-reservation/internal/pkg/errs"
	"garage-reservation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analytics queries.AnalyticsQueries
	export    queries.ExportQueries
	clock     clock.Clock
}

func NewAnalyticsHandler(analytics queries.AnalyticsQueries, export queries.ExportQueries, clock clock.Clock) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		export:    export,
		clock:     clock,
	}
}

// @Summary Booking analytics
// @Description Status counters and trailing six-month usage series (admin)
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} queries.AnalyticsView
// @Router /analytics [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	view, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		h.abortWithAnalyticsError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Export bookings CSV
// @Description Download all bookings as a CSV file (admin)
// @Tags analytics
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string
// @Router /export/csv [get]
func (h *AnalyticsHandler) ExportCSV(c *gin.Context) {
	data, err := h.export.BookingsCSV(c.Request.Context())
	if err != nil {
		h.abortWithAnalyticsError(c, err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.csv", h.clock.Now().Format(time.DateOnly))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *AnalyticsHandler) abortWithAnalyticsError(c *gin.Context, err error) {
	if errors.Is(err, errs.ErrStorageUnavailable) {
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Storage temporarily unavailable", nil)
		return
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
}
