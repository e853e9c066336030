// README: Driver application handlers (list, approve, reject, manual add).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"luba/internal/http/middleware"
	"luba/internal/modules/driver"
	"luba/internal/types"
)

type DriverHandler struct {
	driver *driver.Service
}

func NewDriverHandler(svc *driver.Service) *DriverHandler {
	return &DriverHandler{driver: svc}
}

// applicationItem re-attaches the tree key, which the stored record omits.
type applicationItem struct {
	ID types.ID `json:"id"`
	driver.Application
}

type profileItem struct {
	ID types.ID `json:"id"`
	driver.Profile
}

func (h *DriverHandler) ListApplications(c *gin.Context) {
	status := driver.ApplicationStatus(c.Query("status"))
	switch status {
	case "", driver.StatusPending, driver.StatusApproved, driver.StatusRejected:
	default:
		writeError(c, http.StatusBadRequest, "unknown status filter")
		return
	}
	apps, err := h.driver.ListApplications(c.Request.Context(), status)
	if err != nil {
		writeDriverError(c, err)
		return
	}
	items := make([]applicationItem, len(apps))
	for i, a := range apps {
		items[i] = applicationItem{ID: a.ID, Application: a}
	}
	writeJSON(c, http.StatusOK, map[string]any{"applications": items})
}

func (h *DriverHandler) GetApplication(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid application id")
		return
	}
	app, err := h.driver.GetApplication(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDriverError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, applicationItem{ID: app.ID, Application: *app})
}

func (h *DriverHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid application id")
		return
	}
	err := h.driver.Approve(c.Request.Context(), driver.ApproveCommand{
		ApplicationID: types.ID(id),
		Actor:         middleware.CallerUID(c),
	})
	if err != nil {
		writeDriverError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": driver.StatusApproved})
}

func (h *DriverHandler) Reject(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid application id")
		return
	}
	err := h.driver.Reject(c.Request.Context(), driver.RejectCommand{
		ApplicationID: types.ID(id),
		Actor:         middleware.CallerUID(c),
	})
	if err != nil {
		writeDriverError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": driver.StatusRejected})
}

type addDriverReq struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	IDNumber     string `json:"idNumber"`
	VehicleType  string `json:"vehicleType"`
	Registration string `json:"registration"`
	Helpers      int    `json:"helpers"`
}

func (h *DriverHandler) AddManual(c *gin.Context) {
	var req addDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.driver.AddManual(c.Request.Context(), driver.AddCommand{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		IDNumber:     req.IDNumber,
		VehicleType:  req.VehicleType,
		Registration: req.Registration,
		Helpers:      req.Helpers,
		Actor:        middleware.CallerUID(c),
	})
	if err != nil {
		writeDriverError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{"driverId": id})
}

func (h *DriverHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.driver.ListProfiles(c.Request.Context())
	if err != nil {
		writeDriverError(c, err)
		return
	}
	items := make([]profileItem, len(profiles))
	for i, p := range profiles {
		items[i] = profileItem{ID: p.ID, Profile: p}
	}
	writeJSON(c, http.StatusOK, map[string]any{"drivers": items})
}

func (h *DriverHandler) ListNotifications(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid application id")
		return
	}
	notifs, err := h.driver.ListNotifications(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDriverError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"notifications": notifs})
}

func (h *DriverHandler) ClearApplications(c *gin.Context) {
	if err := h.driver.ClearApplications(c.Request.Context(), middleware.CallerUID(c)); err != nil {
		writeDriverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
