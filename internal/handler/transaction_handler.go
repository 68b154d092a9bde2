package handler

import (
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	service service.TransactionService
}

func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var input service.CreateTransactionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	operatorID, err := getOperatorID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid operator"})
	}

	tx, err := h.service.Create(input, operatorID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Transaction created", "data": tx})
}

type changeStatusRequest struct {
	Status model.TransactionStatus `json:"status"`
}

func (h *TransactionHandler) ChangeStatus(c *fiber.Ctx) error {
	txID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var req changeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	tx, err := h.service.ChangeStatus(txID, req.Status, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Status updated", "data": tx})
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	txID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	if err := h.service.Delete(txID, getUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	txID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	tx, err := h.service.GetByID(txID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tx)
}

func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	filter := repository.TransactionFilter{}

	if shiftParam := c.Query("shift_id"); shiftParam != "" {
		shiftID, err := uuid.Parse(shiftParam)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid shift ID"})
		}
		filter.ShiftID = &shiftID
	}
	if statusParam := c.Query("status"); statusParam != "" {
		filter.Status = model.TransactionStatus(statusParam)
	}
	if fromParam := c.Query("from"); fromParam != "" {
		from, err := time.Parse("2006-01-02", fromParam)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid from date, use YYYY-MM-DD"})
		}
		filter.FromDate = from
	}
	if toParam := c.Query("to"); toParam != "" {
		to, err := time.Parse("2006-01-02", toParam)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid to date, use YYYY-MM-DD"})
		}
		filter.ToDate = to.Add(24*time.Hour - time.Nanosecond)
	}

	transactions, err := h.service.List(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}
