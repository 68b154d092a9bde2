package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesTransaction is the aggregate root of a sale. Status only ever changes
// through TransitionTo; the persisted status column is written with a
// compare-and-swap (expected current status) to close concurrent
// refund/exchange races.
type SalesTransaction struct {
	BaseModel
	// InvoiceNumber is assigned lazily, once, on first billing. Immutable after.
	InvoiceNumber string `gorm:"type:varchar(50);uniqueIndex;default:null" json:"invoice_number,omitempty"`

	Status TransactionStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	// Version is bumped on every status write (optimistic-concurrency token).
	Version int `gorm:"not null;default:0" json:"version"`

	ShiftID *uuid.UUID `gorm:"type:uuid;index" json:"shift_id,omitempty"` // nil = no-shift sentinel
	Shift   *Shift     `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`

	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	OperatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"operator_id"`
	Operator   *User     `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`

	SellingAt time.Time `gorm:"not null" json:"selling_at"`

	// Totals are recomputed server side from lines + service charges - discount.
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	TotalVat       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_vat"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`

	// Payment split
	CashPaid     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cash_paid"`
	CreditAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_amount"`
	CreditDays   int             `gorm:"default:0" json:"credit_days"`

	LineItems      []TransactionLineItem      `gorm:"foreignKey:TransactionID" json:"line_items,omitempty"`
	Modifiers      []TransactionModifier      `gorm:"foreignKey:TransactionID" json:"modifiers,omitempty"`
	ServiceCharges []TransactionServiceCharge `gorm:"foreignKey:TransactionID" json:"service_charges,omitempty"`
}

func (SalesTransaction) TableName() string {
	return "sales_transactions"
}

type TransactionLineItem struct {
	BaseModel
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`

	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Unit      string    `gorm:"type:varchar(20)" json:"unit"`

	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	SellingPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"selling_price"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	VatAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_amount"`

	Status string `gorm:"type:varchar(20);default:'Active'" json:"status"`
}

func (TransactionLineItem) TableName() string {
	return "transaction_line_items"
}

// LineTotal is quantity x price - discount (VAT carried separately).
func (li *TransactionLineItem) LineTotal() decimal.Decimal {
	return li.SellingPrice.Mul(li.Quantity).Sub(li.DiscountAmount)
}

type TransactionModifier struct {
	BaseModel
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Name          string          `gorm:"type:varchar(100);not null" json:"name"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	VatAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_amount"`
}

func (TransactionModifier) TableName() string {
	return "transaction_modifiers"
}

type TransactionServiceCharge struct {
	BaseModel
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Name          string          `gorm:"type:varchar(100);not null" json:"name"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	VatAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_amount"`
}

func (TransactionServiceCharge) TableName() string {
	return "transaction_service_charges"
}

// FindLineItem returns the line item with the given id, or nil when it does
// not belong to this transaction.
func (t *SalesTransaction) FindLineItem(id uuid.UUID) *TransactionLineItem {
	for i := range t.LineItems {
		if t.LineItems[i].ID == id {
			return &t.LineItems[i]
		}
	}
	return nil
}
