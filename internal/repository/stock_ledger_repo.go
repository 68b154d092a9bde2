package repository

import (
	"errors"
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

type StockLedgerRepository interface {
	// Append writes one ledger entry and the product's cached balance in a
	// single DB transaction, holding a row lock on the product so writes to
	// the same product are serialized. entry.Quantity must already be signed;
	// Balance is computed here and set on the returned entry.
	Append(entry *model.StockLedgerEntry) (*model.StockLedgerEntry, error)
	History(productID uuid.UUID, from, to time.Time, offset, limit int) ([]model.StockLedgerEntry, error)
	CurrentBalance(productID uuid.UUID) (decimal.Decimal, error)
	MovementPerDay(startDate, endDate time.Time) ([]StockMovementData, error)
}

type stockLedgerRepo struct {
	db *gorm.DB
}

func NewStockLedgerRepo(db *gorm.DB) StockLedgerRepository {
	return &stockLedgerRepo{db}
}

// lockForUpdate adds SELECT ... FOR UPDATE to the query. Balance reads under
// this lock are serialized per product until the surrounding tx commits.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *stockLedgerRepo) Append(entry *model.StockLedgerEntry) (*model.StockLedgerEntry, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var product model.Product
		// Lock the product row; per-product single writer.
		if err := lockForUpdate(tx).First(&product, "id = ?", entry.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		newBalance := product.StockQuantity.Add(entry.Quantity)
		if newBalance.IsNegative() && !product.AllowNegativeStock {
			return ErrInsufficientStock
		}

		entry.Balance = newBalance
		if entry.Unit == "" {
			entry.Unit = product.Unit
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		// Cached balance is updated only here, never at call sites.
		return tx.Model(&model.Product{}).
			Where("id = ?", entry.ProductID).
			Updates(map[string]interface{}{
				"stock_quantity": newBalance,
				"updated_by":     entry.CreatedBy,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *stockLedgerRepo) History(productID uuid.UUID, from, to time.Time, offset, limit int) ([]model.StockLedgerEntry, error) {
	q := r.db.Where("product_id = ?", productID).Order("moved_at ASC, created_at ASC")

	if !from.IsZero() {
		q = q.Where("moved_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("moved_at <= ?", to)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []model.StockLedgerEntry
	err := q.Find(&entries).Error
	return entries, err
}

func (r *stockLedgerRepo) CurrentBalance(productID uuid.UUID) (decimal.Decimal, error) {
	var product model.Product
	err := r.db.Select("stock_quantity").First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, ErrNotFound
	}
	return product.StockQuantity, err
}

func (r *stockLedgerRepo) MovementPerDay(startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.Model(&model.StockLedgerEntry{}).
		Select(`
			DATE(moved_at) as date,
			COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN direction = 'OUT' THEN -quantity ELSE 0 END), 0) as outbound
		`).
		Where("moved_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(moved_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
