package service

import (
	"encoding/json"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MovementInput describes one stock movement request. Quantity is an unsigned
// magnitude; Direction decides the sign.
type MovementInput struct {
	ProductID     uuid.UUID                `json:"product_id" validate:"uuid_required"`
	Direction     model.MovementDirection  `json:"direction" validate:"required,oneof=IN OUT"`
	MovementType  model.MovementType       `json:"movement_type" validate:"required"`
	Quantity      decimal.Decimal          `json:"quantity"`
	UnitCost      decimal.Decimal          `json:"unit_cost"`
	ReferenceType model.StockReferenceType `json:"reference_type"`
	ReferenceID   *uuid.UUID               `json:"reference_id"`
	MovedAt       time.Time                `json:"moved_at"`
	Note          string                   `json:"note"`
}

type StockService interface {
	// RecordMovement appends to the ledger and updates the cached balance in
	// one unit of work, then re-evaluates stock alerts off the critical path.
	RecordMovement(input MovementInput, actorID string) (*model.StockLedgerEntry, error)
	// RecordReversal appends an offsetting entry undoing a previous one.
	// Used by saga compensation; the reversal bypasses the negative-stock
	// check direction only in the sense that it restores the prior balance.
	RecordReversal(original *model.StockLedgerEntry, note, actorID string) (*model.StockLedgerEntry, error)
	CurrentBalance(productID uuid.UUID) (decimal.Decimal, error)
	History(productID uuid.UUID, from, to time.Time, offset, limit int) ([]model.StockLedgerEntry, error)
}

type stockService struct {
	productRepo repository.ProductRepository
	ledgerRepo  repository.StockLedgerRepository
	alerts      AlertService
	wsHub       *ws.Hub
	logger      *logrus.Logger
	now         func() time.Time
}

func NewStockService(
	productRepo repository.ProductRepository,
	ledgerRepo repository.StockLedgerRepository,
	alerts AlertService,
	hub *ws.Hub,
	logger *logrus.Logger,
) StockService {
	return &stockService{
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
		alerts:      alerts,
		wsHub:       hub,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *stockService) RecordMovement(input MovementInput, actorID string) (*model.StockLedgerEntry, error) {
	if !input.Quantity.IsPositive() {
		return nil, validationError("movement quantity must be greater than zero")
	}
	if input.Direction != model.DirectionIn && input.Direction != model.DirectionOut {
		return nil, validationError("movement direction must be IN or OUT")
	}

	product, err := s.productRepo.FindByID(input.ProductID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.TrackStock {
		return nil, validationError("product %s does not track stock", product.SKU)
	}

	movedAt := input.MovedAt
	if movedAt.IsZero() {
		movedAt = s.now()
	}

	entry := &model.StockLedgerEntry{
		ProductID:     input.ProductID,
		Unit:          product.Unit,
		MovementType:  input.MovementType,
		Direction:     input.Direction,
		Quantity:      model.SignedQuantity(input.Direction, input.Quantity),
		UnitCost:      input.UnitCost,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		MovedAt:       movedAt,
		Note:          input.Note,
	}
	entry.CreatedBy = actorID
	entry.UpdatedBy = actorID
	entry.CreatedByUserID = &actorID

	appended, err := s.ledgerRepo.Append(entry)
	if err != nil {
		return nil, err
	}

	s.afterMutation(product, appended)
	return appended, nil
}

func (s *stockService) RecordReversal(original *model.StockLedgerEntry, note, actorID string) (*model.StockLedgerEntry, error) {
	reversal := &model.StockLedgerEntry{
		ProductID:       original.ProductID,
		Unit:            original.Unit,
		MovementType:    original.MovementType,
		Quantity:        original.Quantity.Neg(),
		UnitCost:        original.UnitCost,
		ReferenceType:   model.RefCompensation,
		ReferenceID:     original.ReferenceID,
		MovedAt:         s.now(),
		Note:            note,
		IsReversal:      true,
		ReversesEntryID: &original.ID,
	}
	if reversal.Quantity.IsNegative() {
		reversal.Direction = model.DirectionOut
	} else {
		reversal.Direction = model.DirectionIn
	}
	reversal.CreatedBy = actorID
	reversal.UpdatedBy = actorID
	reversal.CreatedByUserID = &actorID

	appended, err := s.ledgerRepo.Append(reversal)
	if err != nil {
		return nil, err
	}

	if product, perr := s.productRepo.FindByID(original.ProductID); perr == nil {
		s.afterMutation(product, appended)
	}
	return appended, nil
}

func (s *stockService) CurrentBalance(productID uuid.UUID) (decimal.Decimal, error) {
	balance, err := s.ledgerRepo.CurrentBalance(productID)
	if err == repository.ErrNotFound {
		return decimal.Zero, ErrProductNotFound
	}
	return balance, err
}

func (s *stockService) History(productID uuid.UUID, from, to time.Time, offset, limit int) ([]model.StockLedgerEntry, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.ledgerRepo.History(productID, from, to, offset, limit)
}

// afterMutation runs the alert evaluation and websocket broadcast. Failures
// here are logged and never surfaced to the mutation caller.
func (s *stockService) afterMutation(product *model.Product, entry *model.StockLedgerEntry) {
	raised, err := s.alerts.Evaluate(product, entry.Balance)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"product_id": product.ID,
			"balance":    entry.Balance,
		}).Warnf("stock alert evaluation failed: %v", err)
	}

	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": "movement_recorded",
			"movement": map[string]interface{}{
				"id":            entry.ID,
				"product_id":    product.ID,
				"sku":           product.SKU,
				"movement_type": entry.MovementType,
				"direction":     entry.Direction,
				"quantity":      entry.Quantity,
				"balance":       entry.Balance,
			},
			"alerts": raised,
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
