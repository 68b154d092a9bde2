package service

import (
	"fmt"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ExchangeLineInput struct {
	LineItemID       uuid.UUID       `json:"line_item_id" validate:"uuid_required"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
	NewProductID     uuid.UUID       `json:"new_product_id" validate:"uuid_required"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
}

type CreateExchangeInput struct {
	TransactionID uuid.UUID           `json:"transaction_id" validate:"uuid_required"`
	ShiftID       *uuid.UUID          `json:"shift_id,omitempty"`
	ExchangedAt   time.Time           `json:"exchanged_at"`
	Lines         []ExchangeLineInput `json:"lines"`
}

type ExchangeService interface {
	// CreateExchange runs the exchange saga: same skeleton as the refund saga
	// with a symmetric, doubled stock mutation (return old item, issue new).
	CreateExchange(input CreateExchangeInput, operatorID uuid.UUID, actorID string) (*model.ExchangeTransaction, error)
	GetByID(id uuid.UUID) (*model.ExchangeTransaction, error)
	List(from, to time.Time) ([]model.ExchangeTransaction, error)
}

type exchangeService struct {
	txRepo       repository.SalesTransactionRepository
	exchangeRepo repository.ExchangeRepository
	shiftRepo    repository.ShiftRepository
	productRepo  repository.ProductRepository
	stock        StockService
	logger       *logrus.Logger
	now          func() time.Time
}

func NewExchangeService(
	txRepo repository.SalesTransactionRepository,
	exchangeRepo repository.ExchangeRepository,
	shiftRepo repository.ShiftRepository,
	productRepo repository.ProductRepository,
	stock StockService,
	logger *logrus.Logger,
) ExchangeService {
	return &exchangeService{
		txRepo:       txRepo,
		exchangeRepo: exchangeRepo,
		shiftRepo:    shiftRepo,
		productRepo:  productRepo,
		stock:        stock,
		logger:       logger,
		now:          time.Now,
	}
}

type exchangeComputation struct {
	Lines     []model.ExchangeLineItem
	OldAmount decimal.Decimal
	NewAmount decimal.Decimal
	PriceDiff decimal.Decimal // absolute at aggregate level
	VatDiff   decimal.Decimal // absolute at aggregate level
}

// computeExchange derives per-line deltas between the returned and the newly
// issued item. priceDifference = newAmount - oldAmount, signed per line.
// The new item's VAT is kept at zero until the replacement product's tax
// model is wired in, so vatDifference only carries the returned share.
func computeExchange(original *model.SalesTransaction, lines []ExchangeLineInput, newProducts map[uuid.UUID]*model.Product) (*exchangeComputation, error) {
	out := &exchangeComputation{
		OldAmount: decimal.Zero,
		NewAmount: decimal.Zero,
	}
	priceDiff := decimal.Zero
	vatDiff := decimal.Zero

	for i, line := range lines {
		item := original.FindLineItem(line.LineItemID)
		if item == nil {
			return nil, validationError("line %d does not belong to transaction %s", i+1, original.ID)
		}
		if !line.ReturnedQuantity.IsPositive() {
			return nil, validationError("line %d: returned quantity must be greater than zero", i+1)
		}
		if line.ReturnedQuantity.GreaterThan(item.Quantity) {
			return nil, validationError("line %d: returned quantity %s exceeds sold quantity %s",
				i+1, line.ReturnedQuantity, item.Quantity)
		}
		if !line.NewQuantity.IsPositive() {
			return nil, validationError("line %d: new quantity must be greater than zero", i+1)
		}
		newProduct, ok := newProducts[line.NewProductID]
		if !ok {
			return nil, validationError("line %d: new product %s not found", i+1, line.NewProductID)
		}

		oldAmount := item.SellingPrice.Mul(line.ReturnedQuantity)
		newAmount := newProduct.SellingPrice.Mul(line.NewQuantity)
		oldVat := item.VatAmount.Mul(line.ReturnedQuantity).Div(item.Quantity)
		newVat := decimal.Zero

		out.Lines = append(out.Lines, model.ExchangeLineItem{
			LineItemID:        item.ID,
			ReturnedProductID: item.ProductID,
			ReturnedQuantity:  line.ReturnedQuantity,
			NewProductID:      newProduct.ID,
			NewQuantity:       line.NewQuantity,
			NewUnitPrice:      newProduct.SellingPrice,
			OldAmount:         oldAmount,
			NewAmount:         newAmount,
			PriceDifference:   newAmount.Sub(oldAmount),
			VatDifference:     newVat.Sub(oldVat),
		})
		out.OldAmount = out.OldAmount.Add(oldAmount)
		out.NewAmount = out.NewAmount.Add(newAmount)
		priceDiff = priceDiff.Add(newAmount.Sub(oldAmount))
		vatDiff = vatDiff.Add(newVat.Sub(oldVat))
	}

	out.PriceDiff = priceDiff.Abs()
	out.VatDiff = vatDiff.Abs()
	return out, nil
}

func (s *exchangeService) CreateExchange(input CreateExchangeInput, operatorID uuid.UUID, actorID string) (*model.ExchangeTransaction, error) {
	// --- Validate ---
	if len(input.Lines) == 0 {
		return nil, validationError("at least one exchange line is required")
	}

	original, err := s.txRepo.FindByID(input.TransactionID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	// The transition table is the single authority here: only settled carries
	// the exchanged edge. A billed sale settles first, then exchanges.
	if !model.CanTransition(original.Status, model.StatusExchanged) {
		return nil, fmt.Errorf("%w: cannot exchange a %s transaction",
			model.ErrInvalidTransition, original.Status)
	}
	if input.ShiftID != nil {
		shift, err := s.shiftRepo.FindByID(*input.ShiftID)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, validationError("shift %s not found", *input.ShiftID)
			}
			return nil, err
		}
		if !shift.IsOpen() {
			return nil, ErrShiftNotOpen
		}
	}

	// Every new product must exist before anything is touched.
	newProducts := map[uuid.UUID]*model.Product{}
	for _, line := range input.Lines {
		if _, ok := newProducts[line.NewProductID]; ok {
			continue
		}
		product, perr := s.productRepo.FindByID(line.NewProductID)
		if perr != nil {
			if perr == repository.ErrNotFound {
				return nil, ErrProductNotFound
			}
			return nil, perr
		}
		newProducts[line.NewProductID] = product
	}

	// --- Compute ---
	comp, err := computeExchange(original, input.Lines, newProducts)
	if err != nil {
		return nil, err
	}

	exchangedAt := input.ExchangedAt
	if exchangedAt.IsZero() {
		exchangedAt = s.now()
	}

	// --- Mutate original transaction ---
	previousStatus := original.Status
	if err := s.txRepo.UpdateStatus(original.ID, previousStatus, model.StatusExchanged, "", actorID); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, fmt.Errorf("%w: transaction is no longer %s", model.ErrInvalidTransition, previousStatus)
		}
		if err == repository.ErrNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	// --- Build the aggregate in memory ---
	exchange := &model.ExchangeTransaction{
		TransactionID:   original.ID,
		ShiftID:         input.ShiftID,
		OperatorID:      operatorID,
		ExchangedAt:     exchangedAt,
		OldAmount:       comp.OldAmount,
		NewAmount:       comp.NewAmount,
		PriceDifference: comp.PriceDiff,
		VatDifference:   comp.VatDiff,
	}
	exchange.ID = uuid.New()
	exchange.CreatedBy = actorID
	exchange.UpdatedBy = actorID
	for i := range comp.Lines {
		comp.Lines[i].ExchangeID = exchange.ID
		comp.Lines[i].CreatedBy = actorID
		comp.Lines[i].UpdatedBy = actorID
	}
	exchange.LineItems = comp.Lines

	// --- Mutate stock twice per line: returned item comes back in, the new
	// item goes out, each independently checked against AllowNegativeStock ---
	var recorded []*model.StockLedgerEntry
	exchangeID := exchange.ID
	for _, line := range exchange.LineItems {
		returnedProduct, perr := s.productRepo.FindByID(line.ReturnedProductID)
		if perr != nil {
			return nil, s.compensate(original, previousStatus, recorded, perr, actorID)
		}
		if returnedProduct.TrackStock {
			entry, merr := s.stock.RecordMovement(MovementInput{
				ProductID:     line.ReturnedProductID,
				Direction:     model.DirectionIn,
				MovementType:  model.MovementReturn,
				Quantity:      line.ReturnedQuantity,
				UnitCost:      returnedProduct.UnitCost,
				ReferenceType: model.RefExchange,
				ReferenceID:   &exchangeID,
				MovedAt:       exchangedAt,
			}, actorID)
			if merr != nil {
				return nil, s.compensate(original, previousStatus, recorded, merr, actorID)
			}
			recorded = append(recorded, entry)
		}

		newProduct := newProducts[line.NewProductID]
		if newProduct.TrackStock {
			entry, merr := s.stock.RecordMovement(MovementInput{
				ProductID:     line.NewProductID,
				Direction:     model.DirectionOut,
				MovementType:  model.MovementSale,
				Quantity:      line.NewQuantity,
				UnitCost:      newProduct.UnitCost,
				ReferenceType: model.RefExchange,
				ReferenceID:   &exchangeID,
				MovedAt:       exchangedAt,
			}, actorID)
			if merr != nil {
				return nil, s.compensate(original, previousStatus, recorded, merr, actorID)
			}
			recorded = append(recorded, entry)
		}
	}

	// --- Commit ---
	if err := s.exchangeRepo.Create(exchange); err != nil {
		return nil, s.compensate(original, previousStatus, recorded, err, actorID)
	}

	return s.exchangeRepo.FindByID(exchange.ID)
}

// compensate mirrors the refund saga: restore the snapshotted status, reverse
// every movement this attempt recorded, escalate when the rollback itself
// fails.
func (s *exchangeService) compensate(original *model.SalesTransaction, previousStatus model.TransactionStatus, recorded []*model.StockLedgerEntry, cause error, actorID string) error {
	fail := func(compErr error) error {
		e := &CompensationError{
			Saga:          "exchange",
			TransactionID: original.ID,
			Cause:         cause,
			CompensateErr: compErr,
		}
		for _, entry := range recorded {
			e.ProductIDs = append(e.ProductIDs, entry.ProductID)
		}
		s.logger.WithFields(logrus.Fields{
			"saga":           e.Saga,
			"transaction_id": e.TransactionID,
			"product_ids":    e.ProductIDs,
			"restore_status": previousStatus,
			"original_error": cause.Error(),
		}).Errorf("compensation failed, manual reconciliation required: %v", compErr)
		return e
	}

	if err := s.txRepo.UpdateStatus(original.ID, model.StatusExchanged, previousStatus, "", actorID); err != nil {
		return fail(err)
	}
	for _, entry := range recorded {
		if _, err := s.stock.RecordReversal(entry, "exchange aborted", actorID); err != nil {
			return fail(err)
		}
	}
	return cause
}

func (s *exchangeService) GetByID(id uuid.UUID) (*model.ExchangeTransaction, error) {
	exchange, err := s.exchangeRepo.FindByID(id)
	if err == repository.ErrNotFound {
		return nil, ErrExchangeNotFound
	}
	return exchange, err
}

func (s *exchangeService) List(from, to time.Time) ([]model.ExchangeTransaction, error) {
	return s.exchangeRepo.FindAll(from, to)
}
