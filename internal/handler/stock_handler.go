package handler

import (
	"strconv"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StockHandler struct {
	stock  service.StockService
	alerts service.AlertService
}

func NewStockHandler(stock service.StockService, alerts service.AlertService) *StockHandler {
	return &StockHandler{stock: stock, alerts: alerts}
}

// RecordMovement handles manual ledger writes: goods receipts, adjustments,
// waste. Sales, refunds and exchanges write the ledger through their own
// services, not this endpoint.
func (h *StockHandler) RecordMovement(c *fiber.Ctx) error {
	var input service.MovementInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	switch input.MovementType {
	case model.MovementPurchase, model.MovementAdjustment, model.MovementWaste,
		model.MovementTransferIn, model.MovementTransferOut:
		// manual movement types
	default:
		return c.Status(400).JSON(fiber.Map{"error": "movement type not allowed here"})
	}

	entry, err := h.stock.RecordMovement(input, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Movement recorded", "data": entry})
}

func (h *StockHandler) GetHistory(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	entries, err := h.stock.History(productID, from, to, offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	balance, err := h.stock.CurrentBalance(productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": productID, "balance": balance})
}

func (h *StockHandler) GetAlerts(c *fiber.Ctx) error {
	alerts, err := h.alerts.ActiveAlerts()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}
