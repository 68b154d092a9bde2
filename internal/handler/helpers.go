package handler

import (
	"errors"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func getOperatorID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(getUserID(c))
}

// Helper untuk parse UUID dari string
func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// respondError maps the service error taxonomy onto HTTP responses. Business
// rejections come back with a clear reason; a failed compensation gets the
// distinct "contact support" message and never leaks internals.
func respondError(c *fiber.Ctx, err error) error {
	var compErr *service.CompensationError
	if errors.As(err, &compErr) {
		return c.Status(500).JSON(fiber.Map{
			"error": "the operation could not be completed safely, contact support",
		})
	}

	switch {
	case errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrRefundNotFound),
		errors.Is(err, service.ErrExchangeNotFound),
		errors.Is(err, repository.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, repository.ErrStatusConflict):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrIllegalDelete),
		errors.Is(err, service.ErrShiftNotOpen),
		errors.Is(err, service.ErrShiftAlreadyOpen),
		errors.Is(err, service.ErrShiftAlreadyClosed),
		errors.Is(err, repository.ErrInsufficientStock):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}
