package handler

import (
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ShiftHandler struct {
	service service.ShiftService
}

func NewShiftHandler(s service.ShiftService) *ShiftHandler {
	return &ShiftHandler{service: s}
}

func (h *ShiftHandler) OpenShift(c *fiber.Ctx) error {
	var req service.OpenShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid operator"})
	}

	shift, err := h.service.Open(operatorID, req, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Shift opened", "data": shift.ToResponse()})
}

func (h *ShiftHandler) CloseShift(c *fiber.Ctx) error {
	shiftID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid shift ID"})
	}

	var req service.CloseShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid operator"})
	}

	shift, err := h.service.Close(shiftID, operatorID, req, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Shift closed", "data": shift.ToResponse()})
}

func (h *ShiftHandler) GetCurrentShift(c *fiber.Ctx) error {
	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid operator"})
	}

	shift, err := h.service.GetOpenByUser(operatorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shift.ToResponse())
}

func (h *ShiftHandler) GetShift(c *fiber.Ctx) error {
	shiftID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid shift ID"})
	}

	shift, err := h.service.GetByID(shiftID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shift)
}

func (h *ShiftHandler) GetShifts(c *fiber.Ctx) error {
	status := model.ShiftStatus(c.Query("status"))

	shifts, err := h.service.List(status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shifts)
}
