// README: Active-session handlers (monitor snapshot, manual force-offline).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"luba/internal/http/middleware"
	"luba/internal/modules/session"
	"luba/internal/types"
)

type SessionHandler struct {
	session *session.Service
}

func NewSessionHandler(svc *session.Service) *SessionHandler {
	return &SessionHandler{session: svc}
}

// ListActive returns the currently online drivers with their hours online.
// Evaluation enforces the driving-hours policy as a side effect, so drivers
// past the cutoff never appear in the response.
func (h *SessionHandler) ListActive(c *gin.Context) {
	active, err := h.session.Evaluate(c.Request.Context())
	if err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"activeDrivers": active})
}

type forceOfflineReq struct {
	Reason string `json:"reason"`
}

func (h *SessionHandler) ForceOffline(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid driver id")
		return
	}
	var req forceOfflineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.session.ForceOffline(c.Request.Context(), session.ForceOfflineCommand{
		DriverID: types.ID(id),
		Reason:   req.Reason,
		Actor:    middleware.CallerUID(c),
	})
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
