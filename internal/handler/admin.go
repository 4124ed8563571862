package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ermekov/club-table-reservation/internal/availability"
	"github.com/ermekov/club-table-reservation/internal/venue"
)

// AdminHandler exposes the booking state to venue staff: current
// reservations, live availability, and cancellation. All routes sit
// behind JWT middleware; the availability model stays the single
// source of truth, this layer only reads it and forwards cancel calls.
type AdminHandler struct {
	Avail *availability.Model
	Venue *venue.Venue
}

// NewAdminHandler constructs an AdminHandler. Both dependencies must
// be non-nil.
func NewAdminHandler(avail *availability.Model, v *venue.Venue) *AdminHandler {
	if avail == nil || v == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Avail: avail, Venue: v}
}

// ListReservations handles GET /v1/reservations. Returns every
// committed reservation ordered by id.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Avail.Reservations()})
}

// CancelReservation handles DELETE /v1/reservations/:id. Cancellation
// is idempotent: deleting an unknown id also yields 204.
func (h *AdminHandler) CancelReservation(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Avail.Cancel(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListZones handles GET /v1/zones. Returns the static venue topology.
func (h *AdminHandler) ListZones(c echo.Context) error {
	type zoneView struct {
		ID     string        `json:"id"`
		Tables []venue.Table `json:"tables"`
	}
	out := make([]zoneView, 0, len(h.Venue.Zones))
	for _, z := range h.Venue.Zones {
		out = append(out, zoneView{ID: z.ID, Tables: z.Tables})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// FreeTables handles GET /v1/zones/:id/tables?date=YYYY-MM-DD&time=HH:MM.
// It returns the tables free for the exact slot, in configured order.
func (h *AdminHandler) FreeTables(c echo.Context) error {
	zoneID := c.Param("id")
	date := c.QueryParam("date")
	tm := c.QueryParam("time")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if _, err := time.Parse("15:04", tm); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:MM"})
	}
	free, err := h.Avail.ListFreeTables(zoneID, date, tm)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown zone"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": free})
}
