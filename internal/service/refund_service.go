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

type RefundLineInput struct {
	LineItemID       uuid.UUID       `json:"line_item_id" validate:"uuid_required"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
}

type CreateRefundInput struct {
	TransactionID uuid.UUID         `json:"transaction_id" validate:"uuid_required"`
	ShiftID       *uuid.UUID        `json:"shift_id,omitempty"`
	CustomerID    *uuid.UUID        `json:"customer_id,omitempty"` // optional override
	IsCash        bool              `json:"is_cash"`
	RefundedAt    time.Time         `json:"refunded_at"`
	Lines         []RefundLineInput `json:"lines"`
}

type RefundService interface {
	// CreateRefund runs the refund saga: validate, compute, transition the
	// original transaction, build the refund aggregate, put stock back, then
	// commit. Failure after the status mutation triggers compensation; a
	// failed compensation surfaces as *CompensationError.
	CreateRefund(input CreateRefundInput, operatorID uuid.UUID, actorID string) (*model.RefundTransaction, error)
	GetByID(id uuid.UUID) (*model.RefundTransaction, error)
	List(from, to time.Time) ([]model.RefundTransaction, error)
	// DeleteRefund reverses the original transaction back to settled and
	// marks the refund Reversed; the row stays queryable. Stock is NOT
	// restored; reversing a refund is a bookkeeping correction, the returned
	// goods stay on the shelf.
	DeleteRefund(id uuid.UUID, actorID string) error
}

type refundService struct {
	txRepo      repository.SalesTransactionRepository
	refundRepo  repository.RefundRepository
	shiftRepo   repository.ShiftRepository
	productRepo repository.ProductRepository
	stock       StockService
	logger      *logrus.Logger
	now         func() time.Time
}

func NewRefundService(
	txRepo repository.SalesTransactionRepository,
	refundRepo repository.RefundRepository,
	shiftRepo repository.ShiftRepository,
	productRepo repository.ProductRepository,
	stock StockService,
	logger *logrus.Logger,
) RefundService {
	return &refundService{
		txRepo:      txRepo,
		refundRepo:  refundRepo,
		shiftRepo:   shiftRepo,
		productRepo: productRepo,
		stock:       stock,
		logger:      logger,
		now:         time.Now,
	}
}

// refundComputation is the result of the pure compute step, produced before
// anything is mutated.
type refundComputation struct {
	Lines       []model.RefundLineItem
	TotalAmount decimal.Decimal
	TotalVat    decimal.Decimal
}

// computeRefund derives refunded amounts from the original lines. Pure and
// deterministic: lineAmount = originalUnitPrice x returnedQty, lineVat is the
// original line VAT prorated by the returned share.
func computeRefund(original *model.SalesTransaction, lines []RefundLineInput) (*refundComputation, error) {
	out := &refundComputation{
		TotalAmount: decimal.Zero,
		TotalVat:    decimal.Zero,
	}

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

		amount := item.SellingPrice.Mul(line.ReturnedQuantity)
		vat := item.VatAmount.Mul(line.ReturnedQuantity).Div(item.Quantity)

		out.Lines = append(out.Lines, model.RefundLineItem{
			LineItemID:       item.ID,
			ProductID:        item.ProductID,
			ReturnedQuantity: line.ReturnedQuantity,
			Amount:           amount,
			VatAmount:        vat,
		})
		out.TotalAmount = out.TotalAmount.Add(amount)
		out.TotalVat = out.TotalVat.Add(vat)
	}

	return out, nil
}

func (s *refundService) CreateRefund(input CreateRefundInput, operatorID uuid.UUID, actorID string) (*model.RefundTransaction, error) {
	// --- Validate: everything checked before any mutation ---
	if len(input.Lines) == 0 {
		return nil, validationError("at least one refund line is required")
	}

	original, err := s.txRepo.FindByID(input.TransactionID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	// The transition table is the single authority on which originals can be
	// refunded; settled and billed both carry the refunded edge.
	if !model.CanTransition(original.Status, model.StatusRefunded) {
		return nil, fmt.Errorf("%w: cannot refund a %s transaction",
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

	// --- Compute: pure, no I/O ---
	comp, err := computeRefund(original, input.Lines)
	if err != nil {
		return nil, err
	}

	refundedAt := input.RefundedAt
	if refundedAt.IsZero() {
		refundedAt = s.now()
	}

	// --- Mutate original transaction: settled/billed -> refunded, CAS on the
	// snapshotted status so a concurrent saga loses cleanly ---
	previousStatus := original.Status
	if err := s.txRepo.UpdateStatus(original.ID, previousStatus, model.StatusRefunded, "", actorID); err != nil {
		if err == repository.ErrStatusConflict {
			return nil, fmt.Errorf("%w: transaction is no longer %s", model.ErrInvalidTransition, previousStatus)
		}
		if err == repository.ErrNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	// --- Build the refund aggregate in memory ---
	customerID := input.CustomerID
	if customerID == nil {
		customerID = original.CustomerID
	}
	refund := &model.RefundTransaction{
		TransactionID: original.ID,
		ShiftID:       input.ShiftID,
		CustomerID:    customerID,
		OperatorID:    operatorID,
		RefundedAt:    refundedAt,
		TotalAmount:   comp.TotalAmount,
		TotalVat:      comp.TotalVat,
		IsCash:        input.IsCash,
		Status:        model.RefundActive,
	}
	refund.ID = uuid.New()
	refund.CreatedBy = actorID
	refund.UpdatedBy = actorID
	for i := range comp.Lines {
		comp.Lines[i].RefundID = refund.ID
		comp.Lines[i].CreatedBy = actorID
		comp.Lines[i].UpdatedBy = actorID
	}
	refund.LineItems = comp.Lines

	// --- Mutate stock: put returned quantities back ---
	var recorded []*model.StockLedgerEntry
	for _, line := range refund.LineItems {
		product, perr := s.productRepo.FindByID(line.ProductID)
		if perr != nil {
			return nil, s.compensate(original, previousStatus, recorded, perr, actorID)
		}
		if !product.TrackStock {
			continue
		}
		refundID := refund.ID
		entry, merr := s.stock.RecordMovement(MovementInput{
			ProductID:     line.ProductID,
			Direction:     model.DirectionIn,
			MovementType:  model.MovementReturn,
			Quantity:      line.ReturnedQuantity,
			UnitCost:      product.UnitCost,
			ReferenceType: model.RefRefund,
			ReferenceID:   &refundID,
			MovedAt:       refundedAt,
		}, actorID)
		if merr != nil {
			return nil, s.compensate(original, previousStatus, recorded, merr, actorID)
		}
		recorded = append(recorded, entry)
	}

	// --- Commit the aggregate ---
	if err := s.refundRepo.Create(refund); err != nil {
		return nil, s.compensate(original, previousStatus, recorded, err, actorID)
	}

	return s.refundRepo.FindByID(refund.ID)
}

// compensate restores the original transaction's snapshotted status and
// reverses every stock movement this attempt recorded. The restored status
// comes from the in-memory snapshot, not re-derived, so concurrent external
// changes are not masked. Returns the original cause when compensation
// succeeds, otherwise a *CompensationError.
func (s *refundService) compensate(original *model.SalesTransaction, previousStatus model.TransactionStatus, recorded []*model.StockLedgerEntry, cause error, actorID string) error {
	fail := func(compErr error) error {
		e := &CompensationError{
			Saga:          "refund",
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

	if err := s.txRepo.UpdateStatus(original.ID, model.StatusRefunded, previousStatus, "", actorID); err != nil {
		return fail(err)
	}
	for _, entry := range recorded {
		if _, err := s.stock.RecordReversal(entry, "refund aborted", actorID); err != nil {
			return fail(err)
		}
	}
	return cause
}

func (s *refundService) GetByID(id uuid.UUID) (*model.RefundTransaction, error) {
	refund, err := s.refundRepo.FindByID(id)
	if err == repository.ErrNotFound {
		return nil, ErrRefundNotFound
	}
	return refund, err
}

func (s *refundService) List(from, to time.Time) ([]model.RefundTransaction, error) {
	return s.refundRepo.FindAll(from, to)
}

func (s *refundService) DeleteRefund(id uuid.UUID, actorID string) error {
	refund, err := s.refundRepo.FindByID(id)
	if err != nil {
		if err == repository.ErrNotFound {
			return ErrRefundNotFound
		}
		return err
	}
	if refund.Status == model.RefundReversed {
		return validationError("refund %s is already reversed", id)
	}

	if err := s.txRepo.UpdateStatus(refund.TransactionID, model.StatusRefunded, model.StatusSettled, "", actorID); err != nil {
		if err == repository.ErrStatusConflict {
			return fmt.Errorf("%w: transaction is no longer refunded", model.ErrInvalidTransition)
		}
		if err == repository.ErrNotFound {
			return ErrTransactionNotFound
		}
		return err
	}

	return s.refundRepo.MarkReversed(id, actorID)
}
