package repository

import (
	"errors"
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundRepository interface {
	Create(refund *model.RefundTransaction) error
	FindByID(id uuid.UUID) (*model.RefundTransaction, error)
	FindAll(from, to time.Time) ([]model.RefundTransaction, error)
	// MarkReversed flips an Active refund to Reversed, compare-and-swap on
	// the status. The row is kept; reversed refunds stay queryable.
	MarkReversed(id uuid.UUID, actorID string) error
}

type refundRepo struct {
	db *gorm.DB
}

func NewRefundRepo(db *gorm.DB) RefundRepository {
	return &refundRepo{db}
}

func (r *refundRepo) Create(refund *model.RefundTransaction) error {
	return r.db.Create(refund).Error
}

func (r *refundRepo) FindByID(id uuid.UUID) (*model.RefundTransaction, error) {
	var refund model.RefundTransaction
	err := r.db.
		Preload("LineItems").
		Preload("LineItems.Product").
		Preload("Transaction").
		First(&refund, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &refund, err
}

func (r *refundRepo) FindAll(from, to time.Time) ([]model.RefundTransaction, error) {
	q := r.db.Preload("LineItems").Order("refunded_at DESC")
	if !from.IsZero() {
		q = q.Where("refunded_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("refunded_at <= ?", to)
	}

	var refunds []model.RefundTransaction
	err := q.Find(&refunds).Error
	return refunds, err
}

func (r *refundRepo) MarkReversed(id uuid.UUID, actorID string) error {
	res := r.db.Model(&model.RefundTransaction{}).
		Where("id = ? AND status = ?", id, model.RefundActive).
		Updates(map[string]interface{}{
			"status":     model.RefundReversed,
			"updated_by": actorID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
