package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RefundStatus string

const (
	RefundActive   RefundStatus = "Active"
	RefundReversed RefundStatus = "Reversed"
)

// RefundTransaction records one refund event against a settled or billed
// sales transaction. The original transaction is referenced, never deleted.
type RefundTransaction struct {
	BaseModel
	TransactionID uuid.UUID         `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Transaction   *SalesTransaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`

	ShiftID *uuid.UUID `gorm:"type:uuid;index" json:"shift_id,omitempty"`
	Shift   *Shift     `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`

	// Optional override; defaults to the original transaction's customer.
	CustomerID *uuid.UUID `gorm:"type:uuid" json:"customer_id,omitempty"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	OperatorID uuid.UUID `gorm:"type:uuid;not null" json:"operator_id"`
	Operator   *User     `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`

	RefundedAt time.Time `gorm:"not null" json:"refunded_at"`

	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	TotalVat    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_vat"`
	IsCash      bool            `gorm:"default:true" json:"is_cash"`

	Status RefundStatus `gorm:"type:varchar(10);not null;default:'Active'" json:"status"`

	LineItems []RefundLineItem `gorm:"foreignKey:RefundID" json:"line_items,omitempty"`
}

func (RefundTransaction) TableName() string {
	return "refund_transactions"
}

type RefundLineItem struct {
	BaseModel
	RefundID uuid.UUID `gorm:"type:uuid;not null;index" json:"refund_id"`

	LineItemID uuid.UUID            `gorm:"type:uuid;not null;index" json:"line_item_id"`
	LineItem   *TransactionLineItem `gorm:"foreignKey:LineItemID" json:"line_item,omitempty"`

	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	ReturnedQuantity decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"returned_quantity"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	VatAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_amount"`
}

func (RefundLineItem) TableName() string {
	return "refund_line_items"
}
