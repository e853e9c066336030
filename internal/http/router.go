// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"luba/internal/http/handlers"
	"luba/internal/http/middleware"
	"luba/internal/infra"
	"luba/internal/logger"
	"luba/internal/modules/audit"
	"luba/internal/modules/booking"
	"luba/internal/modules/driver"
	"luba/internal/modules/session"
	"luba/internal/modules/stats"
)

type RouterDeps struct {
	Driver   *driver.Service
	Session  *session.Service
	Booking  *booking.Service
	Stats    *stats.Service
	Audit    *audit.Store
	Verifier infra.TokenVerifier
	Log      logger.ILogger
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api/admin", middleware.Auth(deps.Verifier), middleware.RequireAdmin())

	driverHandler := handlers.NewDriverHandler(deps.Driver)
	api.GET("/applications", driverHandler.ListApplications)
	api.GET("/applications/:id", driverHandler.GetApplication)
	api.POST("/applications/:id/approve", driverHandler.Approve)
	api.POST("/applications/:id/reject", driverHandler.Reject)
	api.DELETE("/applications", driverHandler.ClearApplications)
	api.GET("/applications/:id/notifications", driverHandler.ListNotifications)
	api.GET("/drivers", driverHandler.ListProfiles)
	api.POST("/drivers", driverHandler.AddManual)

	sessionHandler := handlers.NewSessionHandler(deps.Session)
	api.GET("/sessions/active", sessionHandler.ListActive)
	api.POST("/sessions/:id/force-offline", sessionHandler.ForceOffline)

	bookingHandler := handlers.NewBookingHandler(deps.Booking)
	api.GET("/bookings", bookingHandler.List)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.POST("/bookings/:id/accept", bookingHandler.Accept)
	api.POST("/bookings/:id/reject", bookingHandler.Reject)
	api.POST("/bookings/:id/start", bookingHandler.Start)
	api.POST("/bookings/:id/arrived", bookingHandler.MarkArrived)
	api.POST("/bookings/:id/complete", bookingHandler.Complete)
	api.POST("/bookings/:id/cancel", bookingHandler.Cancel)

	statsHandler := handlers.NewStatsHandler(deps.Stats)
	api.GET("/stats/dashboard", statsHandler.Dashboard)

	if deps.Audit != nil {
		auditHandler := handlers.NewAuditHandler(deps.Audit)
		api.GET("/audit/:entityType/:entityId", auditHandler.ListByEntity)
	}

	return r
}
