package service

import (
	"errors"
	"testing"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newProductEnv() (*stockEnv, ProductService) {
	env := newStockEnv()
	return env, NewProductService(env.products, env.stock)
}

func TestCreateProductRecordsOpeningStock(t *testing.T) {
	env, svc := newProductEnv()

	product := &model.Product{
		SKU:          "SKU-1",
		Name:         "Americano",
		Unit:         "cup",
		SellingPrice: dec("3.50"),
		TrackStock:   true,
	}
	if err := svc.Create(product, dec("25"), "manager"); err != nil {
		t.Fatal(err)
	}

	if !product.StockQuantity.Equal(dec("25")) {
		t.Errorf("stock quantity = %s, want 25", product.StockQuantity)
	}
	if !product.OpeningStock.Equal(dec("25")) {
		t.Errorf("opening stock = %s, want 25", product.OpeningStock)
	}

	entries := env.ledger.entriesFor(product.ID)
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	if entries[0].MovementType != model.MovementOpening || entries[0].ReferenceType != model.RefOpeningStock {
		t.Errorf("opening entry = %s/%s", entries[0].MovementType, entries[0].ReferenceType)
	}
	if !entries[0].Balance.Equal(dec("25")) {
		t.Errorf("opening balance = %s, want 25", entries[0].Balance)
	}
}

func TestCreateProductZeroOpeningStockSkipsLedger(t *testing.T) {
	env, svc := newProductEnv()

	product := &model.Product{SKU: "SKU-1", Name: "Americano", TrackStock: true}
	if err := svc.Create(product, decimal.Zero, "manager"); err != nil {
		t.Fatal(err)
	}
	if len(env.ledger.entries) != 0 {
		t.Errorf("zero opening stock wrote %d ledger entries", len(env.ledger.entries))
	}
}

func TestCreateProductValidation(t *testing.T) {
	_, svc := newProductEnv()

	// SKU missing
	err := svc.Create(&model.Product{Name: "No SKU"}, decimal.Zero, "manager")
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("missing SKU: expected ErrValidationFailed, got %v", err)
	}

	// negative opening stock
	err = svc.Create(&model.Product{SKU: "SKU-1", Name: "X"}, dec("-1"), "manager")
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("negative opening stock: expected ErrValidationFailed, got %v", err)
	}
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	_, svc := newProductEnv()

	first := &model.Product{SKU: "SKU-1", Name: "One"}
	if err := svc.Create(first, decimal.Zero, "manager"); err != nil {
		t.Fatal(err)
	}

	err := svc.Create(&model.Product{SKU: "SKU-1", Name: "Two"}, decimal.Zero, "manager")
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("duplicate SKU: expected ErrValidationFailed, got %v", err)
	}
}

func TestUpdateProductLeavesStockAlone(t *testing.T) {
	env, svc := newProductEnv()

	product := &model.Product{SKU: "SKU-1", Name: "Americano", TrackStock: true}
	if err := svc.Create(product, dec("10"), "manager"); err != nil {
		t.Fatal(err)
	}

	update := &model.Product{
		SKU:           "SKU-1",
		Name:          "Americano Grande",
		SellingPrice:  dec("4.00"),
		TrackStock:    true,
		StockQuantity: dec("999"), // must be ignored
	}
	updated, err := svc.Update(product.ID, update, "manager")
	if err != nil {
		t.Fatal(err)
	}

	if updated.Name != "Americano Grande" {
		t.Errorf("name = %s", updated.Name)
	}
	if !updated.StockQuantity.Equal(dec("10")) {
		t.Errorf("stock quantity changed through update: %s", updated.StockQuantity)
	}
	if len(env.ledger.entriesFor(product.ID)) != 1 {
		t.Error("update wrote to the ledger")
	}
}

func TestUpdateUnknownProduct(t *testing.T) {
	_, svc := newProductEnv()
	_, err := svc.Update(uuid.New(), &model.Product{SKU: "X", Name: "X"}, "manager")
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	env, svc := newProductEnv()
	product := newTestProduct("SKU-1", "4.00", "10")
	env.products.products[product.ID] = product

	if err := svc.Delete(product.ID, "manager"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetByID(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound after delete, got %v", err)
	}
}

func TestDeleteUnknownProduct(t *testing.T) {
	_, svc := newProductEnv()
	if err := svc.Delete(uuid.New(), "manager"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}
