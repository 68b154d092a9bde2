package model

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	SKU     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name    string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Barcode string `gorm:"type:varchar(64);index" json:"barcode"`
	Unit    string `gorm:"type:varchar(20)" json:"unit"`

	UnitCost     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	VatRate      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat_rate"` // percent, per product

	// Stock configuration
	TrackStock         bool `gorm:"default:true" json:"track_stock"`
	AllowNegativeStock bool `gorm:"default:false" json:"allow_negative_stock"`

	// StockQuantity is a cached running balance. The stock ledger is its only
	// writer; every ledger append updates it in the same DB transaction.
	StockQuantity decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_quantity"`
	// OpeningStock is the historical snapshot recorded by the Opening ledger
	// entry when the product was created. Set once, never updated afterwards.
	OpeningStock decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_stock"`

	// Alert thresholds (zero disables the check)
	ReorderLevel decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"reorder_level"`
	MaximumStock decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"maximum_stock"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty"`
}
