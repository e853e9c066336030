// README: Booking handlers for the status workflow.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"luba/internal/http/middleware"
	"luba/internal/modules/booking"
	"luba/internal/types"
)

type BookingHandler struct {
	booking *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{booking: svc}
}

type bookingItem struct {
	ID types.ID `json:"id"`
	booking.Booking
}

func (h *BookingHandler) List(c *gin.Context) {
	status := booking.Status(c.Query("status"))
	switch status {
	case "", booking.StatusPending, booking.StatusAccepted, booking.StatusOnTheWay,
		booking.StatusArrived, booking.StatusCompleted, booking.StatusCancelled:
	default:
		writeError(c, http.StatusBadRequest, "unknown status filter")
		return
	}
	bookings, err := h.booking.List(c.Request.Context(), status)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	items := make([]bookingItem, len(bookings))
	for i, b := range bookings {
		items[i] = bookingItem{ID: b.ID, Booking: b}
	}
	writeJSON(c, http.StatusOK, map[string]any{"bookings": items})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	d, err := h.booking.GetDetail(c.Request.Context(), types.ID(id))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"id":      types.ID(id),
		"booking": d,
	})
}

func (h *BookingHandler) Accept(c *gin.Context) {
	h.transition(c, h.booking.Accept, booking.StatusAccepted)
}

func (h *BookingHandler) Reject(c *gin.Context) {
	h.transition(c, h.booking.Reject, booking.StatusCancelled)
}

func (h *BookingHandler) Start(c *gin.Context) {
	h.transition(c, h.booking.Start, booking.StatusOnTheWay)
}

func (h *BookingHandler) MarkArrived(c *gin.Context) {
	h.transition(c, h.booking.MarkArrived, booking.StatusArrived)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.booking.Complete, booking.StatusCompleted)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.booking.Cancel, booking.StatusCancelled)
}

func (h *BookingHandler) transition(c *gin.Context, do func(context.Context, booking.TransitionCommand) error, to booking.Status) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	err := do(c.Request.Context(), booking.TransitionCommand{
		BookingID: types.ID(id),
		Actor:     middleware.CallerUID(c),
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": to})
}
