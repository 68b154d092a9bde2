package service

import (
	"testing"

	"go-pos-backend/internal/model"
)

func newAlertEnv() (*memAlertRepo, AlertService) {
	repo := newMemAlertRepo()
	return repo, NewAlertService(repo, testLogger())
}

func TestEvaluateRaisesOutOfStockAtZero(t *testing.T) {
	repo, svc := newAlertEnv()
	product := newTestProduct("SKU-1", "10.00", "0")

	raised, err := svc.Evaluate(product, dec("0"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raised) != 1 || raised[0].Kind != model.AlertOutOfStock {
		t.Fatalf("raised = %v, want one OutOfStock", raised)
	}
	if !raised[0].TriggeredBalance.Equal(dec("0")) {
		t.Errorf("TriggeredBalance = %s, want 0", raised[0].TriggeredBalance)
	}

	// Same balance again: idempotent, nothing new.
	raised, err = svc.Evaluate(product, dec("0"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raised) != 0 {
		t.Errorf("re-evaluation raised %d alerts, want 0", len(raised))
	}
	if len(repo.alerts) != 1 {
		t.Errorf("stored alerts = %d, want 1", len(repo.alerts))
	}
}

func TestEvaluateLowStockThreshold(t *testing.T) {
	_, svc := newAlertEnv()
	product := newTestProduct("SKU-1", "10.00", "0")
	product.ReorderLevel = dec("5")

	// Above threshold: nothing.
	raised, err := svc.Evaluate(product, dec("6"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raised) != 0 {
		t.Errorf("balance 6 raised %v", raised)
	}

	// At threshold: LowStock.
	raised, err = svc.Evaluate(product, dec("5"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raised) != 1 || raised[0].Kind != model.AlertLowStock {
		t.Fatalf("balance 5 raised %v, want LowStock", raised)
	}

	// Zero is out-of-stock territory, not low stock.
	raised, err = svc.Evaluate(product, dec("0"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raised) != 1 || raised[0].Kind != model.AlertOutOfStock {
		t.Fatalf("balance 0 raised %v, want OutOfStock", raised)
	}
}

func TestEvaluateLowStockDisabledWithoutThreshold(t *testing.T) {
	_, svc := newAlertEnv()
	product := newTestProduct("SKU-1", "10.00", "0") // ReorderLevel zero

	raised, err := svc.Evaluate(product, dec("1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raised) != 0 {
		t.Errorf("zero threshold raised %v", raised)
	}
}

func TestEvaluateOverstock(t *testing.T) {
	_, svc := newAlertEnv()
	product := newTestProduct("SKU-1", "10.00", "0")
	product.MaximumStock = dec("100")

	raised, err := svc.Evaluate(product, dec("100"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raised) != 1 || raised[0].Kind != model.AlertOverstock {
		t.Fatalf("balance 100 raised %v, want Overstock", raised)
	}
}

func TestEvaluateResolvesAndReRaises(t *testing.T) {
	repo, svc := newAlertEnv()
	product := newTestProduct("SKU-1", "10.00", "0")

	if _, err := svc.Evaluate(product, dec("0")); err != nil {
		t.Fatal(err)
	}

	// Restock clears the condition and resolves the alert.
	if _, err := svc.Evaluate(product, dec("10")); err != nil {
		t.Fatal(err)
	}
	active, err := svc.ActiveAlerts()
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("active alerts after restock = %d, want 0", len(active))
	}
	if repo.alerts[0].ResolvedAt == nil {
		t.Error("resolved alert has no ResolvedAt")
	}

	// Crossing the threshold again raises a fresh alert.
	raised, err := svc.Evaluate(product, dec("0"))
	if err != nil {
		t.Fatal(err)
	}
	if len(raised) != 1 {
		t.Fatalf("re-crossing raised %d alerts, want 1", len(raised))
	}
	if len(repo.alerts) != 2 {
		t.Errorf("stored alerts = %d, want 2 (one resolved, one active)", len(repo.alerts))
	}
}
