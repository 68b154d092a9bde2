package service

import (
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
)

// DashboardService serves read-only aggregates over committed rows. It never
// observes an in-flight saga's intermediate state because it only reads what
// the repositories have durably stored.
type DashboardService interface {
	GetSalesPerDay(startDate, endDate time.Time) ([]repository.SalesSummaryData, error)
	GetStockMovement(startDate, endDate time.Time) ([]repository.StockMovementData, error)
	GetActiveAlerts() ([]model.StockAlert, error)
}

type dashboardService struct {
	txRepo     repository.SalesTransactionRepository
	ledgerRepo repository.StockLedgerRepository
	alerts     AlertService
}

func NewDashboardService(txRepo repository.SalesTransactionRepository, ledgerRepo repository.StockLedgerRepository, alerts AlertService) DashboardService {
	return &dashboardService{
		txRepo:     txRepo,
		ledgerRepo: ledgerRepo,
		alerts:     alerts,
	}
}

func (s *dashboardService) GetSalesPerDay(startDate, endDate time.Time) ([]repository.SalesSummaryData, error) {
	return s.txRepo.SalesPerDay(startDate, endDate)
}

func (s *dashboardService) GetStockMovement(startDate, endDate time.Time) ([]repository.StockMovementData, error) {
	return s.ledgerRepo.MovementPerDay(startDate, endDate)
}

func (s *dashboardService) GetActiveAlerts() ([]model.StockAlert, error) {
	return s.alerts.ActiveAlerts()
}
