package repository

import "errors"

// Storage-level sentinel errors. GORM errors never leak past this package;
// services and in-memory test doubles match on these instead.
var (
	// ErrNotFound replaces gorm.ErrRecordNotFound at the repository boundary.
	ErrNotFound = errors.New("record not found")

	// ErrStatusConflict means a compare-and-swap status write hit a row whose
	// status had already moved. The caller must not retry blindly.
	ErrStatusConflict = errors.New("transaction status changed concurrently")

	// ErrInsufficientStock means a ledger append would take a product that
	// disallows negative stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock remaining")
)
