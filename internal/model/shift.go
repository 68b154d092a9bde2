package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "Open"
	ShiftClosed ShiftStatus = "Closed"
)

// Shift is a POS cash shift. Sales, refunds and exchanges attach to an open
// shift; a nil shift reference on a transaction means the no-shift sentinel.
type Shift struct {
	BaseModel
	Status ShiftStatus `gorm:"type:varchar(10);not null;default:'Open';index" json:"status"`

	OpenedByID uuid.UUID `gorm:"type:uuid;not null;index" json:"opened_by_id" validate:"uuid_required"`
	OpenedBy   *User     `gorm:"foreignKey:OpenedByID" json:"opened_by,omitempty"`
	OpenedAt   time.Time `gorm:"not null" json:"opened_at"`

	ClosedByID *uuid.UUID `gorm:"type:uuid" json:"closed_by_id,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`

	OpeningCash decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_cash"`
	ClosingCash decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"closing_cash"`

	Note string `gorm:"type:text" json:"note,omitempty"`
}

func (Shift) TableName() string {
	return "shifts"
}

// IsOpen reports whether the shift still accepts transactions.
func (s *Shift) IsOpen() bool {
	return s.Status == ShiftOpen
}

type ShiftResponse struct {
	ID          uuid.UUID       `json:"id"`
	Status      ShiftStatus     `json:"status"`
	OpenedByID  uuid.UUID       `json:"opened_by_id"`
	OpenedBy    *UserResponse   `json:"opened_by,omitempty"`
	OpenedAt    time.Time       `json:"opened_at"`
	ClosedByID  *uuid.UUID      `json:"closed_by_id,omitempty"`
	ClosedAt    *time.Time      `json:"closed_at,omitempty"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (s *Shift) ToResponse() ShiftResponse {
	response := ShiftResponse{
		ID:          s.ID,
		Status:      s.Status,
		OpenedByID:  s.OpenedByID,
		OpenedAt:    s.OpenedAt,
		ClosedByID:  s.ClosedByID,
		ClosedAt:    s.ClosedAt,
		OpeningCash: s.OpeningCash,
		ClosingCash: s.ClosingCash,
		Note:        s.Note,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}

	if s.OpenedBy != nil {
		userResp := s.OpenedBy.ToResponse()
		response.OpenedBy = &userResp
	}

	return response
}
