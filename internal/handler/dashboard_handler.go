package handler

import (
	"time"

	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// rangeDates resolves a ?range= query (7d, 1m, 3m, 6m, 12m) into a window.
func rangeDates(c *fiber.Ctx) (time.Time, time.Time) {
	now := time.Now()
	switch c.Query("range", "7d") {
	case "1m":
		return now.AddDate(0, -1, 0), now
	case "3m":
		return now.AddDate(0, -3, 0), now
	case "6m":
		return now.AddDate(0, -6, 0), now
	case "12m":
		return now.AddDate(0, -12, 0), now
	default:
		return now.AddDate(0, 0, -7), now
	}
}

func (h *DashboardHandler) GetSalesPerDay(c *fiber.Ctx) error {
	start, end := rangeDates(c)
	data, err := h.service.GetSalesPerDay(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	start, end := rangeDates(c)
	data, err := h.service.GetStockMovement(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

func (h *DashboardHandler) GetActiveAlerts(c *fiber.Ctx) error {
	alerts, err := h.service.GetActiveAlerts()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}
