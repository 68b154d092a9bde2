package repository

import (
	"errors"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	Create(shift *model.Shift) error
	FindByID(id uuid.UUID) (*model.Shift, error)
	FindOpenByUser(userID uuid.UUID) (*model.Shift, error)
	FindAll(status model.ShiftStatus) ([]model.Shift, error)
	Update(shift *model.Shift) error
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db}
}

func (r *shiftRepo) Create(shift *model.Shift) error {
	return r.db.Create(shift).Error
}

func (r *shiftRepo) FindByID(id uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.Preload("OpenedBy").First(&shift, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &shift, err
}

func (r *shiftRepo) FindOpenByUser(userID uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.First(&shift, "opened_by_id = ? AND status = ?", userID, model.ShiftOpen).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &shift, err
}

func (r *shiftRepo) FindAll(status model.ShiftStatus) ([]model.Shift, error) {
	q := r.db.Preload("OpenedBy").Order("opened_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var shifts []model.Shift
	err := q.Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) Update(shift *model.Shift) error {
	return r.db.Save(shift).Error
}
