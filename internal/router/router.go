package router // package router defines how HTTP routes are registered for the staff API

import (
	"github.com/labstack/echo/v4"

	"github.com/ermekov/club-table-reservation/internal/handler"
	"github.com/ermekov/club-table-reservation/internal/middleware"
)

// RegisterRoutes wires the full staff API onto the provided Echo
// instance: an unauthenticated health check and login endpoint, and a
// JWT-protected group for reservation management.
func RegisterRoutes(e *echo.Echo, auth *handler.AuthHandler, admin *handler.AdminHandler, jwtSecret string) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Login does not require an existing token.
	e.POST("/v1/auth/login", auth.Login)

	// Everything else requires a valid staff token.
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("/reservations", admin.ListReservations)
	g.DELETE("/reservations/:id", admin.CancelReservation)
	g.GET("/zones", admin.ListZones)
	g.GET("/zones/:id/tables", admin.FreeTables)
}
