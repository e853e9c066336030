// README: Audit trail handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"luba/internal/modules/audit"
)

type AuditHandler struct {
	store *audit.Store
}

func NewAuditHandler(store *audit.Store) *AuditHandler {
	return &AuditHandler{store: store}
}

// ListByEntity returns the recorded status changes for one entity, newest
// first.
func (h *AuditHandler) ListByEntity(c *gin.Context) {
	entityType := c.Param("entityType")
	entityID := c.Param("entityId")
	switch entityType {
	case "driverApplication", "driverStatus", "booking":
	default:
		writeError(c, http.StatusBadRequest, "unknown entity type")
		return
	}
	if !isValidID(entityID) {
		writeError(c, http.StatusBadRequest, "invalid entity id")
		return
	}
	events, err := h.store.ListByEntity(c.Request.Context(), entityType, entityID)
	if err != nil {
		writeError(c, http.StatusBadGateway, "audit trail unavailable")
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"events": events})
}
