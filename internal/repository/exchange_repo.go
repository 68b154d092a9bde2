package repository

import (
	"errors"
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExchangeRepository interface {
	Create(exchange *model.ExchangeTransaction) error
	FindByID(id uuid.UUID) (*model.ExchangeTransaction, error)
	FindAll(from, to time.Time) ([]model.ExchangeTransaction, error)
}

type exchangeRepo struct {
	db *gorm.DB
}

func NewExchangeRepo(db *gorm.DB) ExchangeRepository {
	return &exchangeRepo{db}
}

func (r *exchangeRepo) Create(exchange *model.ExchangeTransaction) error {
	return r.db.Create(exchange).Error
}

func (r *exchangeRepo) FindByID(id uuid.UUID) (*model.ExchangeTransaction, error) {
	var exchange model.ExchangeTransaction
	err := r.db.
		Preload("LineItems").
		Preload("LineItems.NewProduct").
		Preload("Transaction").
		First(&exchange, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &exchange, err
}

func (r *exchangeRepo) FindAll(from, to time.Time) ([]model.ExchangeTransaction, error) {
	q := r.db.Preload("LineItems").Order("exchanged_at DESC")
	if !from.IsZero() {
		q = q.Where("exchanged_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("exchanged_at <= ?", to)
	}

	var exchanges []model.ExchangeTransaction
	err := q.Find(&exchanges).Error
	return exchanges, err
}
