package model

import "github.com/shopspring/decimal"

type Customer struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	PhoneNumber string          `gorm:"type:varchar(20);index" json:"phone_number"`
	Email       string          `gorm:"type:varchar(255)" json:"email"`
	Address     string          `gorm:"type:text" json:"address"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_limit"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
}
