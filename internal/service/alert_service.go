package service

import (
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AlertService derives low-stock, out-of-stock and overstock signals from the
// current ledger balance. Evaluation is idempotent: at most one active alert
// of each kind exists per product, and re-evaluating an unchanged balance
// raises nothing new.
type AlertService interface {
	Evaluate(product *model.Product, balance decimal.Decimal) ([]model.StockAlert, error)
	ActiveAlerts() ([]model.StockAlert, error)
}

type alertService struct {
	alertRepo repository.StockAlertRepository
	logger    *logrus.Logger
	now       func() time.Time
}

func NewAlertService(alertRepo repository.StockAlertRepository, logger *logrus.Logger) AlertService {
	return &alertService{
		alertRepo: alertRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *alertService) Evaluate(product *model.Product, balance decimal.Decimal) ([]model.StockAlert, error) {
	conditions := map[model.AlertKind]bool{
		model.AlertOutOfStock: !balance.IsPositive(),
		model.AlertLowStock: balance.IsPositive() &&
			product.ReorderLevel.IsPositive() &&
			balance.LessThanOrEqual(product.ReorderLevel),
		model.AlertOverstock: product.MaximumStock.IsPositive() &&
			balance.GreaterThanOrEqual(product.MaximumStock),
	}

	var raised []model.StockAlert
	for _, kind := range []model.AlertKind{model.AlertOutOfStock, model.AlertLowStock, model.AlertOverstock} {
		active, err := s.alertRepo.FindActive(product.ID, kind)
		if err != nil && err != repository.ErrNotFound {
			return raised, err
		}

		switch {
		case conditions[kind] && active == nil:
			alert := model.StockAlert{
				ProductID:        product.ID,
				Kind:             kind,
				Active:           true,
				TriggeredBalance: balance,
			}
			alert.CreatedBy = "system"
			alert.UpdatedBy = "system"
			if err := s.alertRepo.Create(&alert); err != nil {
				return raised, err
			}
			raised = append(raised, alert)

		case !conditions[kind] && active != nil:
			if err := s.alertRepo.Resolve(active.ID, s.now()); err != nil {
				return raised, err
			}
		}
	}

	return raised, nil
}

func (s *alertService) ActiveAlerts() ([]model.StockAlert, error) {
	return s.alertRepo.FindAllActive()
}
