package handler

import (
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ExchangeHandler struct {
	service service.ExchangeService
}

func NewExchangeHandler(s service.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{service: s}
}

func (h *ExchangeHandler) CreateExchange(c *fiber.Ctx) error {
	var input service.CreateExchangeInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid operator"})
	}

	exchange, err := h.service.CreateExchange(input, operatorID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Exchange created", "data": exchange})
}

func (h *ExchangeHandler) GetExchange(c *fiber.Ctx) error {
	exchangeID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid exchange ID"})
	}

	exchange, err := h.service.GetByID(exchangeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(exchange)
}

func (h *ExchangeHandler) GetExchanges(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	exchanges, err := h.service.List(from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(exchanges)
}
