package repository

import (
	"errors"
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockAlertRepository interface {
	FindActive(productID uuid.UUID, kind model.AlertKind) (*model.StockAlert, error)
	FindAllActive() ([]model.StockAlert, error)
	Create(alert *model.StockAlert) error
	Resolve(id uuid.UUID, at time.Time) error
}

type stockAlertRepo struct {
	db *gorm.DB
}

func NewStockAlertRepo(db *gorm.DB) StockAlertRepository {
	return &stockAlertRepo{db}
}

func (r *stockAlertRepo) FindActive(productID uuid.UUID, kind model.AlertKind) (*model.StockAlert, error) {
	var alert model.StockAlert
	err := r.db.First(&alert, "product_id = ? AND kind = ? AND active = ?", productID, kind, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &alert, err
}

func (r *stockAlertRepo) FindAllActive() ([]model.StockAlert, error) {
	var alerts []model.StockAlert
	err := r.db.Preload("Product").Where("active = ?", true).Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

func (r *stockAlertRepo) Create(alert *model.StockAlert) error {
	return r.db.Create(alert).Error
}

func (r *stockAlertRepo) Resolve(id uuid.UUID, at time.Time) error {
	return r.db.Model(&model.StockAlert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":      false,
			"resolved_at": at,
		}).Error
}
