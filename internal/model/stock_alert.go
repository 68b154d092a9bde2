package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AlertKind string

const (
	AlertOutOfStock AlertKind = "OutOfStock"
	AlertLowStock   AlertKind = "LowStock"
	AlertOverstock  AlertKind = "Overstock"
)

// StockAlert is a derived signal over the current ledger balance. At most one
// active alert of each kind exists per product; re-evaluation is idempotent.
type StockAlert struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_alert_product_kind,priority:1" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Kind   AlertKind `gorm:"type:varchar(20);not null;index:idx_alert_product_kind,priority:2" json:"kind"`
	Active bool      `gorm:"not null;default:true;index" json:"active"`

	// Balance that triggered the alert, for operator context.
	TriggeredBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"triggered_balance"`

	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func (StockAlert) TableName() string {
	return "stock_alerts"
}
