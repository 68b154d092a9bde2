package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Product management
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	// Customer management
	{Code: "customer:view", Name: "View Customer"},
	{Code: "customer:create", Name: "Create Customer"},
	{Code: "customer:update", Name: "Update Customer"},
	// Sales transactions
	{Code: "transaction:view", Name: "View Transaction"},
	{Code: "transaction:create", Name: "Create Transaction"},
	{Code: "transaction:update", Name: "Update Transaction Status"},
	{Code: "transaction:delete", Name: "Delete Draft Transaction"},
	// Refunds and exchanges
	{Code: "refund:view", Name: "View Refund"},
	{Code: "refund:create", Name: "Create Refund"},
	{Code: "refund:delete", Name: "Delete Refund"},
	{Code: "exchange:view", Name: "View Exchange"},
	{Code: "exchange:create", Name: "Create Exchange"},
	// Stock ledger
	{Code: "stock:view", Name: "View Stock Ledger"},
	{Code: "stock:move", Name: "Record Stock Movement"},
	// Dashboard
	{Code: "dashboard:view", Name: "View Dashboard"},
	// Cash shifts
	{Code: "shift:view", Name: "View Shift"},
	{Code: "shift:open", Name: "Open Shift"},
	{Code: "shift:close", Name: "Close Shift"},
}
