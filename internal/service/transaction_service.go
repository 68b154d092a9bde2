package service

import (
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CreateLineInput struct {
	ProductID      uuid.UUID        `json:"product_id" validate:"uuid_required"`
	Quantity       decimal.Decimal  `json:"quantity"`
	SellingPrice   *decimal.Decimal `json:"selling_price,omitempty"` // nil = product price
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
}

type ChargeInput struct {
	Name      string          `json:"name" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	VatAmount decimal.Decimal `json:"vat_amount"`
}

type CreateTransactionInput struct {
	ShiftID        *uuid.UUID        `json:"shift_id,omitempty"` // nil = no-shift sentinel
	CustomerID     *uuid.UUID        `json:"customer_id,omitempty"`
	SellingAt      time.Time         `json:"selling_at"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	CashPaid       decimal.Decimal   `json:"cash_paid"`
	CreditAmount   decimal.Decimal   `json:"credit_amount"`
	CreditDays     int               `json:"credit_days"`
	Lines          []CreateLineInput `json:"lines"`
	ServiceCharges []ChargeInput     `json:"service_charges,omitempty"`
	Modifiers      []ChargeInput     `json:"modifiers,omitempty"`
}

type TransactionService interface {
	Create(input CreateTransactionInput, operatorID uuid.UUID, actorID string) (*model.SalesTransaction, error)
	ChangeStatus(id uuid.UUID, target model.TransactionStatus, actorID string) (*model.SalesTransaction, error)
	Delete(id uuid.UUID, actorID string) error
	GetByID(id uuid.UUID) (*model.SalesTransaction, error)
	List(filter repository.TransactionFilter) ([]model.SalesTransaction, error)
}

type transactionService struct {
	txRepo       repository.SalesTransactionRepository
	productRepo  repository.ProductRepository
	shiftRepo    repository.ShiftRepository
	customerRepo repository.CustomerRepository
	stock        StockService
	logger       *logrus.Logger
	now          func() time.Time
}

func NewTransactionService(
	txRepo repository.SalesTransactionRepository,
	productRepo repository.ProductRepository,
	shiftRepo repository.ShiftRepository,
	customerRepo repository.CustomerRepository,
	stock StockService,
	logger *logrus.Logger,
) TransactionService {
	return &transactionService{
		txRepo:       txRepo,
		productRepo:  productRepo,
		shiftRepo:    shiftRepo,
		customerRepo: customerRepo,
		stock:        stock,
		logger:       logger,
		now:          time.Now,
	}
}

// requireOpenShift validates the shift reference. A nil id is the no-shift
// sentinel and passes.
func (s *transactionService) requireOpenShift(shiftID *uuid.UUID) error {
	if shiftID == nil {
		return nil
	}
	shift, err := s.shiftRepo.FindByID(*shiftID)
	if err != nil {
		if err == repository.ErrNotFound {
			return validationError("shift %s not found", *shiftID)
		}
		return err
	}
	if !shift.IsOpen() {
		return ErrShiftNotOpen
	}
	return nil
}

func (s *transactionService) Create(input CreateTransactionInput, operatorID uuid.UUID, actorID string) (*model.SalesTransaction, error) {
	// 1. Validate before any mutation
	if len(input.Lines) == 0 {
		return nil, validationError("at least one line item is required")
	}
	if err := s.requireOpenShift(input.ShiftID); err != nil {
		return nil, err
	}
	if input.CustomerID != nil {
		if _, err := s.customerRepo.FindByID(*input.CustomerID); err != nil {
			if err == repository.ErrNotFound {
				return nil, ErrCustomerNotFound
			}
			return nil, err
		}
	}

	sellingAt := input.SellingAt
	if sellingAt.IsZero() {
		sellingAt = s.now()
	}

	// 2. Build lines with a freshly computed total. VAT comes from each
	// line's own product rate, never a flat rate.
	tx := &model.SalesTransaction{
		Status:         model.StatusDraft,
		ShiftID:        input.ShiftID,
		CustomerID:     input.CustomerID,
		OperatorID:     operatorID,
		SellingAt:      sellingAt,
		DiscountAmount: input.DiscountAmount,
		CashPaid:       input.CashPaid,
		CreditAmount:   input.CreditAmount,
		CreditDays:     input.CreditDays,
	}
	tx.ID = uuid.New()
	tx.CreatedBy = actorID
	tx.UpdatedBy = actorID

	totalAmount := decimal.Zero
	totalVat := decimal.Zero
	products := map[uuid.UUID]*model.Product{}

	for i, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return nil, validationError("line %d: quantity must be greater than zero", i+1)
		}
		product, err := s.productRepo.FindByID(line.ProductID)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		products[product.ID] = product

		price := product.SellingPrice
		if line.SellingPrice != nil {
			price = *line.SellingPrice
		}
		lineVat := price.Mul(line.Quantity).Mul(product.VatRate).Div(decimal.NewFromInt(100))

		item := model.TransactionLineItem{
			TransactionID:  tx.ID,
			ProductID:      product.ID,
			Unit:           product.Unit,
			Quantity:       line.Quantity,
			UnitCost:       product.UnitCost,
			SellingPrice:   price,
			DiscountAmount: line.DiscountAmount,
			VatAmount:      lineVat,
			Status:         "Active",
		}
		item.CreatedBy = actorID
		item.UpdatedBy = actorID

		totalAmount = totalAmount.Add(item.LineTotal())
		totalVat = totalVat.Add(lineVat)
		tx.LineItems = append(tx.LineItems, item)
	}

	for _, charge := range input.ServiceCharges {
		sc := model.TransactionServiceCharge{
			TransactionID: tx.ID,
			Name:          charge.Name,
			Amount:        charge.Amount,
			VatAmount:     charge.VatAmount,
		}
		sc.CreatedBy = actorID
		sc.UpdatedBy = actorID
		tx.ServiceCharges = append(tx.ServiceCharges, sc)
		totalAmount = totalAmount.Add(charge.Amount)
		totalVat = totalVat.Add(charge.VatAmount)
	}
	for _, mod := range input.Modifiers {
		m := model.TransactionModifier{
			TransactionID: tx.ID,
			Name:          mod.Name,
			Amount:        mod.Amount,
			VatAmount:     mod.VatAmount,
		}
		m.CreatedBy = actorID
		m.UpdatedBy = actorID
		tx.Modifiers = append(tx.Modifiers, m)
		totalAmount = totalAmount.Add(mod.Amount)
		totalVat = totalVat.Add(mod.VatAmount)
	}

	tx.TotalAmount = totalAmount.Sub(input.DiscountAmount)
	tx.TotalVat = totalVat

	// 3. Persist the draft
	if err := s.txRepo.Create(tx); err != nil {
		return nil, err
	}

	// 4. Decrement stock per stock-tracked line. Any failure undoes the
	// whole create: movements already recorded are reversed and the draft is
	// removed, so nothing half-done stays visible.
	var recorded []*model.StockLedgerEntry
	for _, item := range tx.LineItems {
		product := products[item.ProductID]
		if !product.TrackStock {
			continue
		}
		txID := tx.ID
		entry, err := s.stock.RecordMovement(MovementInput{
			ProductID:     item.ProductID,
			Direction:     model.DirectionOut,
			MovementType:  model.MovementSale,
			Quantity:      item.Quantity,
			UnitCost:      item.UnitCost,
			ReferenceType: model.RefSale,
			ReferenceID:   &txID,
			MovedAt:       sellingAt,
		}, actorID)
		if err != nil {
			if cerr := s.undoCreate(tx, recorded, actorID); cerr != nil {
				compErr := &CompensationError{
					Saga:          "sale-create",
					TransactionID: tx.ID,
					Cause:         err,
					CompensateErr: cerr,
				}
				s.logTransactionCompensationFailure(compErr, recorded)
				return nil, compErr
			}
			return nil, err
		}
		recorded = append(recorded, entry)
	}

	// 5. Return the hydrated transaction
	return s.txRepo.FindByID(tx.ID)
}

func (s *transactionService) undoCreate(tx *model.SalesTransaction, recorded []*model.StockLedgerEntry, actorID string) error {
	for _, entry := range recorded {
		if _, err := s.stock.RecordReversal(entry, "sale create aborted", actorID); err != nil {
			return err
		}
	}
	return s.txRepo.Delete(tx.ID, actorID)
}

func (s *transactionService) logTransactionCompensationFailure(e *CompensationError, recorded []*model.StockLedgerEntry) {
	productIDs := make([]uuid.UUID, 0, len(recorded))
	for _, entry := range recorded {
		productIDs = append(productIDs, entry.ProductID)
	}
	e.ProductIDs = productIDs
	s.logger.WithFields(logrus.Fields{
		"saga":           e.Saga,
		"transaction_id": e.TransactionID,
		"product_ids":    productIDs,
	}).Errorf("compensation failed, manual reconciliation required: %v", e.CompensateErr)
}

func (s *transactionService) ChangeStatus(id uuid.UUID, target model.TransactionStatus, actorID string) (*model.SalesTransaction, error) {
	tx, err := s.txRepo.FindByID(id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	previous := tx.Status
	hadInvoice := tx.InvoiceNumber != ""
	if err := tx.TransitionTo(target, s.now()); err != nil {
		return nil, err
	}

	// Only send the invoice number when this transition assigned it.
	invoiceNumber := ""
	if !hadInvoice && tx.InvoiceNumber != "" {
		invoiceNumber = tx.InvoiceNumber
	}

	if err := s.txRepo.UpdateStatus(id, previous, target, invoiceNumber, actorID); err != nil {
		if err == repository.ErrStatusConflict {
			// Another writer moved the status first; treat as an illegal
			// transition from the caller's point of view.
			return nil, model.ErrInvalidTransition
		}
		if err == repository.ErrNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	return s.txRepo.FindByID(id)
}

func (s *transactionService) Delete(id uuid.UUID, actorID string) error {
	tx, err := s.txRepo.FindByID(id)
	if err != nil {
		if err == repository.ErrNotFound {
			return ErrTransactionNotFound
		}
		return err
	}
	if tx.Status != model.StatusDraft {
		return ErrIllegalDelete
	}

	// Drafts decremented stock on creation, so deleting one puts the stock
	// back through the ledger before the rows go away.
	for _, item := range tx.LineItems {
		product, perr := s.productRepo.FindByID(item.ProductID)
		if perr != nil || !product.TrackStock {
			continue
		}
		txID := tx.ID
		if _, err := s.stock.RecordMovement(MovementInput{
			ProductID:     item.ProductID,
			Direction:     model.DirectionIn,
			MovementType:  model.MovementReturn,
			Quantity:      item.Quantity,
			UnitCost:      item.UnitCost,
			ReferenceType: model.RefSale,
			ReferenceID:   &txID,
			Note:          "draft deleted",
		}, actorID); err != nil {
			return err
		}
	}

	return s.txRepo.Delete(id, actorID)
}

func (s *transactionService) GetByID(id uuid.UUID) (*model.SalesTransaction, error) {
	tx, err := s.txRepo.FindByID(id)
	if err == repository.ErrNotFound {
		return nil, ErrTransactionNotFound
	}
	return tx, err
}

func (s *transactionService) List(filter repository.TransactionFilter) ([]model.SalesTransaction, error) {
	return s.txRepo.FindAll(filter)
}
