package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementPurchase    MovementType = "Purchase"
	MovementSale        MovementType = "Sale"
	MovementReturn      MovementType = "Return"
	MovementTransferIn  MovementType = "TransferIn"
	MovementTransferOut MovementType = "TransferOut"
	MovementAdjustment  MovementType = "Adjustment"
	MovementWaste       MovementType = "Waste"
	MovementOpening     MovementType = "Opening"
)

type MovementDirection string

const (
	DirectionIn  MovementDirection = "IN"
	DirectionOut MovementDirection = "OUT"
)

// StockReferenceType ties a ledger entry back to the document that caused it.
type StockReferenceType string

const (
	RefSale         StockReferenceType = "Sale"
	RefRefund       StockReferenceType = "Refund"
	RefExchange     StockReferenceType = "Exchange"
	RefGoodsReceipt StockReferenceType = "GoodsReceipt"
	RefAdjustment   StockReferenceType = "Adjustment"
	RefOpeningStock StockReferenceType = "OpeningStock"
	RefCompensation StockReferenceType = "Compensation"
)

// StockLedgerEntry is an append-only stock movement with the running balance
// after it was applied. Entries are never updated; a mistaken movement is
// undone by a reversal entry pointing back at the original.
type StockLedgerEntry struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_product_time,priority:1" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Unit      string    `gorm:"type:varchar(20)" json:"unit"`

	MovementType MovementType      `gorm:"type:varchar(20);not null" json:"movement_type"`
	Direction    MovementDirection `gorm:"type:varchar(3);not null" json:"direction"`

	// Quantity is signed: positive for IN, negative for OUT.
	Quantity decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitCost decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	// Balance is the product's running balance after this entry.
	Balance decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"balance"`

	ReferenceType StockReferenceType `gorm:"type:varchar(20);index" json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID         `gorm:"type:uuid;index" json:"reference_id,omitempty"`

	MovedAt time.Time `gorm:"not null;index:idx_ledger_product_time,priority:2" json:"moved_at"`
	Note    string    `gorm:"type:text" json:"note,omitempty"`

	IsReversal      bool       `gorm:"not null;default:false" json:"is_reversal"`
	ReversesEntryID *uuid.UUID `gorm:"type:uuid" json:"reverses_entry_id,omitempty"`

	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
}

func (StockLedgerEntry) TableName() string {
	return "stock_ledger_entries"
}

// SignedQuantity converts a direction plus magnitude into the quantity stored
// on the entry.
func SignedQuantity(direction MovementDirection, qty decimal.Decimal) decimal.Decimal {
	if direction == DirectionOut {
		return qty.Neg()
	}
	return qty
}
