package handler

import (
	"time"

	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RefundHandler struct {
	service service.RefundService
}

func NewRefundHandler(s service.RefundService) *RefundHandler {
	return &RefundHandler{service: s}
}

func (h *RefundHandler) CreateRefund(c *fiber.Ctx) error {
	var input service.CreateRefundInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid operator"})
	}

	refund, err := h.service.CreateRefund(input, operatorID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Refund created", "data": refund})
}

func (h *RefundHandler) GetRefund(c *fiber.Ctx) error {
	refundID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid refund ID"})
	}

	refund, err := h.service.GetByID(refundID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(refund)
}

func (h *RefundHandler) GetRefunds(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	refunds, err := h.service.List(from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(refunds)
}

func (h *RefundHandler) DeleteRefund(c *fiber.Ctx) error {
	refundID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid refund ID"})
	}

	if err := h.service.DeleteRefund(refundID, getUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Refund deleted"})
}

func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	var from, to time.Time
	if fromParam := c.Query("from"); fromParam != "" {
		parsed, err := time.Parse("2006-01-02", fromParam)
		if err != nil {
			return from, to, fiber.NewError(400, "invalid from date, use YYYY-MM-DD")
		}
		from = parsed
	}
	if toParam := c.Query("to"); toParam != "" {
		parsed, err := time.Parse("2006-01-02", toParam)
		if err != nil {
			return from, to, fiber.NewError(400, "invalid to date, use YYYY-MM-DD")
		}
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}
