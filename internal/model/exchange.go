package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExchangeTransaction records an item swap against a settled or billed sale.
// Aggregate price/VAT differences are stored as absolute deltas; line level
// differences stay signed.
type ExchangeTransaction struct {
	BaseModel
	TransactionID uuid.UUID         `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Transaction   *SalesTransaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`

	ShiftID *uuid.UUID `gorm:"type:uuid;index" json:"shift_id,omitempty"`
	Shift   *Shift     `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`

	OperatorID uuid.UUID `gorm:"type:uuid;not null" json:"operator_id"`
	Operator   *User     `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`

	ExchangedAt time.Time `gorm:"not null" json:"exchanged_at"`

	OldAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"old_amount"`
	NewAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"new_amount"`
	PriceDifference decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price_difference"` // absolute
	VatDifference   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_difference"`   // absolute

	LineItems []ExchangeLineItem `gorm:"foreignKey:ExchangeID" json:"line_items,omitempty"`
}

func (ExchangeTransaction) TableName() string {
	return "exchange_transactions"
}

type ExchangeLineItem struct {
	BaseModel
	ExchangeID uuid.UUID `gorm:"type:uuid;not null;index" json:"exchange_id"`

	// Returned side: one original line item and the quantity coming back.
	LineItemID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"line_item_id"`
	LineItem          *TransactionLineItem `gorm:"foreignKey:LineItemID" json:"line_item,omitempty"`
	ReturnedProductID uuid.UUID            `gorm:"type:uuid;not null" json:"returned_product_id"`
	ReturnedQuantity  decimal.Decimal      `gorm:"type:decimal(20,4);not null" json:"returned_quantity"`

	// Issued side: the replacement product.
	NewProductID uuid.UUID       `gorm:"type:uuid;not null" json:"new_product_id"`
	NewProduct   *Product        `gorm:"foreignKey:NewProductID" json:"new_product,omitempty"`
	NewQuantity  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"new_quantity"`
	NewUnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"new_unit_price"`

	OldAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"old_amount"`
	NewAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"new_amount"`
	PriceDifference decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price_difference"` // signed: new - old
	VatDifference   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_difference"`   // signed
}

func (ExchangeLineItem) TableName() string {
	return "exchange_line_items"
}
