package api

import (
	"errors"
	"net/http"

	"garage-reservation/internal/domain/booking"
	reqdto "garage-reservation/internal/handler/dto/request"
	resdto "garage-reservation/internal/handler/dto/response"
	"garage-reservation/internal/handler/httperr"
	"garage-reservation/internal/handler/middleware"
	"garage-reservation/internal/pkg/errs"
	"garage-reservation/internal/usecase/commands"
	"garage-reservation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Create booking
// @Description Request a garage slot for a period, optionally with a preferred slot
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Success 202 {object} resdto.CreateBookingResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing auth context"), "Unauthorized", nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.CreateBooking(c.Request.Context(), commands.CreateBookingParams{
		Username:       authUser.Username,
		StudentName:    req.StudentName,
		StudentID:      req.StudentID,
		StartMonth:     req.TrimmedStartMonth(),
		DurationMonths: req.DurationMonths,
		PreferredSlot:  req.PreferredSlot,
	})
	if err != nil {
		h.abortWithBookingError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Queued {
		status = http.StatusAccepted
	}
	c.JSON(status, resdto.CreateBookingResponse{
		Booking: resdto.FromBookingView(result.Booking),
		Queued:  result.Queued,
	})
}

// @Summary List bookings
// @Description List all bookings with optional status filter and student search (admin)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param search query string false "Student name or ID search"
// @Success 200 {array} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	views, err := h.q.ListBookings(c.Request.Context(), c.Query("status"), c.Query("search"))
	if err != nil {
		if errors.Is(err, queries.ErrInvalidStatusFilter) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid status filter", nil)
			return
		}
		h.abortWithBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingViews(views))
}

// @Summary List own bookings
// @Description List the authenticated user's bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.BookingResponse
// @Router /bookings/mine [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing auth context"), "Unauthorized", nil)
		return
	}

	views, err := h.q.ListUserBookings(c.Request.Context(), authUser.Username)
	if err != nil {
		h.abortWithBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingViews(views))
}

// @Summary Get booking
// @Description Get a booking by ID (owner or admin)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	view, ok := h.loadOwnedBooking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Assign slot
// @Description Assign a specific slot to a booking (admin)
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.AssignSlotRequest true "Slot assignment"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/slot [post]
func (h *BookingHandler) AssignSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return
	}

	var req reqdto.AssignSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.cmds.AssignSlot(c.Request.Context(), id, req.Slot)
	if err != nil {
		h.abortWithBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Reject booking
// @Description Reject a pending booking (admin)
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.RejectBookingRequest false "Rejection message"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/reject [post]
func (h *BookingHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return
	}

	var req reqdto.RejectBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
			return
		}
	}

	view, err := h.cmds.RejectBooking(c.Request.Context(), id, req.Message)
	if err != nil {
		h.abortWithBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Cancel booking
// @Description Cancel a booking and release its slot (owner or admin)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	view, ok := h.loadOwnedBooking(c)
	if !ok {
		return
	}

	updated, err := h.cmds.CancelBooking(c.Request.Context(), view.ID)
	if err != nil {
		h.abortWithBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(updated))
}

// @Summary Extend booking
// @Description Extend an approved booking by additional months (owner or admin)
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.ExtendBookingRequest true "Extension request"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/extend [post]
func (h *BookingHandler) Extend(c *gin.Context) {
	view, ok := h.loadOwnedBooking(c)
	if !ok {
		return
	}

	var req reqdto.ExtendBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	updated, err := h.cmds.ExtendBooking(c.Request.Context(), view.ID, req.ExtraMonths)
	if err != nil {
		h.abortWithBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(updated))
}

// @Summary Delete booking
// @Description Delete a booking record entirely (admin)
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return
	}

	if err := h.cmds.DeleteBooking(c.Request.Context(), id); err != nil {
		h.abortWithBookingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// loadOwnedBooking fetches the target booking and enforces that the caller
// owns it or is an admin.
func (h *BookingHandler) loadOwnedBooking(c *gin.Context) (*queries.BookingView, bool) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing auth context"), "Unauthorized", nil)
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking id", nil)
		return nil, false
	}

	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		h.abortWithBookingError(c, err)
		return nil, false
	}

	if view.Username != authUser.Username && !authUser.Role.IsAdmin() {
		// Existence of other users' bookings is not disclosed.
		httperr.AbortWithError(c, http.StatusNotFound, errors.New("booking not owned by caller"), "Booking not found", nil)
		return nil, false
	}
	return view, true
}

func (h *BookingHandler) abortWithBookingError(c *gin.Context, err error) {
	var slotErr *booking.SlotUnavailableError
	var extErr *booking.ExtensionConflictError

	switch {
	case errors.As(err, &slotErr):
		httperr.AbortWithError(c, http.StatusConflict, err,
			"Requested slot is not available for this period",
			resdto.SlotUnavailableResponse{Slot: slotErr.Slot, Available: slotErr.Available})
	case errors.As(err, &extErr):
		httperr.AbortWithError(c, http.StatusConflict, err,
			"Slot is already booked during the extension window",
			resdto.ExtensionConflictResponse{Slot: extErr.Slot})
	case errors.Is(err, booking.ErrInvalidPeriod):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid period", nil)
	case errors.Is(err, booking.ErrSlotOutOfRange):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Requested slot is outside the garage pool", nil)
	case errors.Is(err, booking.ErrInvalidExtension):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid extension", nil)
	case errors.Is(err, booking.ErrNotExtendable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Only approved bookings holding a slot can be extended", nil)
	case errors.Is(err, booking.ErrCorruptPeriod):
		httperr.AbortWithError(c, http.StatusConflict, err, "Stored booking period is unreadable", nil)
	case errors.Is(err, errs.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errors.Is(err, errs.ErrBookingNotPending):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking is not pending", nil)
	case errors.Is(err, errs.ErrBookingFinalized):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking is already finalized", nil)
	case errors.Is(err, booking.ErrEmptyStudentName),
		errors.Is(err, booking.ErrEmptyStudentID),
		errors.Is(err, booking.ErrEmptyUsername):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request data", nil)
	case errors.Is(err, errs.ErrStorageUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Storage temporarily unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
