// README: Dashboard statistics handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"luba/internal/modules/stats"
)

type StatsHandler struct {
	stats *stats.Service
}

func NewStatsHandler(svc *stats.Service) *StatsHandler {
	return &StatsHandler{stats: svc}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	d, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(c, http.StatusOK, d)
}
