package repository

import (
	"errors"
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionFilter narrows list queries; zero values mean "any".
type TransactionFilter struct {
	ShiftID  *uuid.UUID
	Status   model.TransactionStatus
	FromDate time.Time
	ToDate   time.Time
}

// SalesSummaryData untuk dashboard aggregate per hari.
type SalesSummaryData struct {
	Date        string          `json:"date"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type SalesTransactionRepository interface {
	Create(t *model.SalesTransaction) error
	FindByID(id uuid.UUID) (*model.SalesTransaction, error)
	FindAll(filter TransactionFilter) ([]model.SalesTransaction, error)
	// UpdateStatus is a compare-and-swap write: the row's status must still be
	// `expected` or ErrStatusConflict is returned. invoiceNumber is only
	// written when non-empty (first billing); it is never overwritten.
	UpdateStatus(id uuid.UUID, expected, target model.TransactionStatus, invoiceNumber, updatedBy string) error
	Delete(id uuid.UUID, deletedBy string) error
	SalesPerDay(startDate, endDate time.Time) ([]SalesSummaryData, error)
}

type salesTransactionRepo struct {
	db *gorm.DB
}

func NewSalesTransactionRepo(db *gorm.DB) SalesTransactionRepository {
	return &salesTransactionRepo{db}
}

func (r *salesTransactionRepo) Create(t *model.SalesTransaction) error {
	// Line items, modifiers and service charges ride along via association.
	return r.db.Create(t).Error
}

func (r *salesTransactionRepo) FindByID(id uuid.UUID) (*model.SalesTransaction, error) {
	var t model.SalesTransaction
	err := r.db.
		Preload("LineItems").
		Preload("LineItems.Product").
		Preload("Modifiers").
		Preload("ServiceCharges").
		Preload("Customer").
		Preload("Shift").
		First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *salesTransactionRepo) FindAll(filter TransactionFilter) ([]model.SalesTransaction, error) {
	q := r.db.Preload("LineItems").Order("selling_at DESC")

	if filter.ShiftID != nil {
		q = q.Where("shift_id = ?", *filter.ShiftID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if !filter.FromDate.IsZero() {
		q = q.Where("selling_at >= ?", filter.FromDate)
	}
	if !filter.ToDate.IsZero() {
		q = q.Where("selling_at <= ?", filter.ToDate)
	}

	var transactions []model.SalesTransaction
	err := q.Find(&transactions).Error
	return transactions, err
}

func (r *salesTransactionRepo) UpdateStatus(id uuid.UUID, expected, target model.TransactionStatus, invoiceNumber, updatedBy string) error {
	updates := map[string]interface{}{
		"status":     target,
		"version":    gorm.Expr("version + 1"),
		"updated_by": updatedBy,
	}
	if invoiceNumber != "" {
		updates["invoice_number"] = invoiceNumber
	}

	res := r.db.Model(&model.SalesTransaction{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or another writer moved the status first.
		var count int64
		if err := r.db.Model(&model.SalesTransaction{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *salesTransactionRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.SalesTransaction{}).Where("id = ?", id).Update("deleted_by", deletedBy)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("transaction_id = ?", id).Delete(&model.TransactionLineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", id).Delete(&model.TransactionModifier{}).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", id).Delete(&model.TransactionServiceCharge{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.SalesTransaction{}, "id = ?", id).Error
	})
}

func (r *salesTransactionRepo) SalesPerDay(startDate, endDate time.Time) ([]SalesSummaryData, error) {
	var results []SalesSummaryData

	rows, err := r.db.Model(&model.SalesTransaction{}).
		Select(`
			DATE(selling_at) as date,
			COUNT(*) as count,
			COALESCE(SUM(total_amount), 0) as total_amount
		`).
		Where("selling_at BETWEEN ? AND ?", startDate, endDate).
		Where("status NOT IN ?", []model.TransactionStatus{model.StatusDraft, model.StatusCancelled}).
		Group("DATE(selling_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesSummaryData
		if err := rows.Scan(&data.Date, &data.Count, &data.TotalAmount); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
