package service

import (
	"errors"
	"testing"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
)

func newExchangeEnv() (*stockEnv, *memTxRepo, *memExchangeRepo, ExchangeService) {
	env := newStockEnv()
	txRepo := newMemTxRepo()
	exchangeRepo := newMemExchangeRepo()
	shiftRepo := newMemShiftRepo()
	svc := NewExchangeService(txRepo, exchangeRepo, shiftRepo, env.products, env.stock, testLogger())
	return env, txRepo, exchangeRepo, svc
}

func TestComputeExchangePriceDifference(t *testing.T) {
	env, txRepo, _, _ := newExchangeEnv()
	oldProduct := newTestProduct("OLD-1", "15.00", "0")
	newProduct := newTestProduct("NEW-1", "20.00", "10")
	env.products.products[oldProduct.ID] = oldProduct
	env.products.products[newProduct.ID] = newProduct

	tx := settledSale(txRepo, oldProduct, "1", "0")

	comp, err := computeExchange(tx, []ExchangeLineInput{
		{
			LineItemID:       tx.LineItems[0].ID,
			ReturnedQuantity: dec("1"),
			NewProductID:     newProduct.ID,
			NewQuantity:      dec("1"),
		},
	}, map[uuid.UUID]*model.Product{newProduct.ID: newProduct})
	if err != nil {
		t.Fatal(err)
	}

	if !comp.OldAmount.Equal(dec("15.00")) {
		t.Errorf("OldAmount = %s, want 15.00", comp.OldAmount)
	}
	if !comp.NewAmount.Equal(dec("20.00")) {
		t.Errorf("NewAmount = %s, want 20.00", comp.NewAmount)
	}
	if !comp.PriceDiff.Equal(dec("5.00")) {
		t.Errorf("PriceDiff = %s, want 5.00", comp.PriceDiff)
	}
	if !comp.Lines[0].PriceDifference.Equal(dec("5.00")) {
		t.Errorf("line PriceDifference = %s, want 5.00", comp.Lines[0].PriceDifference)
	}
}

func TestComputeExchangeAggregateDiffIsAbsolute(t *testing.T) {
	env, txRepo, _, _ := newExchangeEnv()
	// Downgrade: new item is cheaper, per-line diff is negative but the
	// aggregate carries the magnitude.
	oldProduct := newTestProduct("OLD-1", "20.00", "0")
	newProduct := newTestProduct("NEW-1", "15.00", "10")
	env.products.products[oldProduct.ID] = oldProduct
	env.products.products[newProduct.ID] = newProduct

	tx := settledSale(txRepo, oldProduct, "1", "0")

	comp, err := computeExchange(tx, []ExchangeLineInput{
		{
			LineItemID:       tx.LineItems[0].ID,
			ReturnedQuantity: dec("1"),
			NewProductID:     newProduct.ID,
			NewQuantity:      dec("1"),
		},
	}, map[uuid.UUID]*model.Product{newProduct.ID: newProduct})
	if err != nil {
		t.Fatal(err)
	}

	if !comp.Lines[0].PriceDifference.Equal(dec("-5.00")) {
		t.Errorf("line PriceDifference = %s, want -5.00", comp.Lines[0].PriceDifference)
	}
	if !comp.PriceDiff.Equal(dec("5.00")) {
		t.Errorf("aggregate PriceDiff = %s, want 5.00", comp.PriceDiff)
	}
}

func TestCreateExchangeHappyPath(t *testing.T) {
	env, txRepo, exchangeRepo, svc := newExchangeEnv()
	oldProduct := newTestProduct("OLD-1", "15.00", "2")
	newProduct := newTestProduct("NEW-1", "20.00", "10")
	env.products.products[oldProduct.ID] = oldProduct
	env.products.products[newProduct.ID] = newProduct

	tx := settledSale(txRepo, oldProduct, "1", "0")

	exchange, err := svc.CreateExchange(CreateExchangeInput{
		TransactionID: tx.ID,
		Lines: []ExchangeLineInput{
			{
				LineItemID:       tx.LineItems[0].ID,
				ReturnedQuantity: dec("1"),
				NewProductID:     newProduct.ID,
				NewQuantity:      dec("1"),
			},
		},
	}, uuid.New(), "cashier")
	if err != nil {
		t.Fatal(err)
	}

	if tx.Status != model.StatusExchanged {
		t.Errorf("transaction status = %s, want exchanged", tx.Status)
	}
	if !exchange.PriceDifference.Equal(dec("5.00")) {
		t.Errorf("PriceDifference = %s, want 5.00", exchange.PriceDifference)
	}
	if len(exchangeRepo.exchanges) != 1 {
		t.Fatalf("stored exchanges = %d, want 1", len(exchangeRepo.exchanges))
	}

	// Returned item back in (2 -> 3), new item out (10 -> 9).
	if !oldProduct.StockQuantity.Equal(dec("3")) {
		t.Errorf("returned product stock = %s, want 3", oldProduct.StockQuantity)
	}
	if !newProduct.StockQuantity.Equal(dec("9")) {
		t.Errorf("new product stock = %s, want 9", newProduct.StockQuantity)
	}
}

func TestCreateExchangeCompensatesWhenNewItemOutOfStock(t *testing.T) {
	env, txRepo, exchangeRepo, svc := newExchangeEnv()
	oldProduct := newTestProduct("OLD-1", "15.00", "2")
	newProduct := newTestProduct("NEW-1", "20.00", "0") // nothing to issue
	env.products.products[oldProduct.ID] = oldProduct
	env.products.products[newProduct.ID] = newProduct

	tx := settledSale(txRepo, oldProduct, "1", "0")

	_, err := svc.CreateExchange(CreateExchangeInput{
		TransactionID: tx.ID,
		Lines: []ExchangeLineInput{
			{
				LineItemID:       tx.LineItems[0].ID,
				ReturnedQuantity: dec("1"),
				NewProductID:     newProduct.ID,
				NewQuantity:      dec("1"),
			},
		},
	}, uuid.New(), "cashier")
	if !errors.Is(err, repository.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The return movement had already landed; compensation reverses it and
	// restores the status.
	if tx.Status != model.StatusSettled {
		t.Errorf("status after compensation = %s, want settled", tx.Status)
	}
	if !oldProduct.StockQuantity.Equal(dec("2")) {
		t.Errorf("returned product stock = %s, want 2", oldProduct.StockQuantity)
	}
	if !newProduct.StockQuantity.Equal(dec("0")) {
		t.Errorf("new product stock = %s, want 0", newProduct.StockQuantity)
	}
	if len(exchangeRepo.exchanges) != 0 {
		t.Error("exchange committed despite failure")
	}

	entries := env.ledger.entriesFor(oldProduct.ID)
	if len(entries) != 2 || !entries[1].IsReversal {
		t.Errorf("expected forward + reversal on the returned product, got %d entries", len(entries))
	}
}

func TestCreateExchangeSurfacesCompensationError(t *testing.T) {
	env, txRepo, exchangeRepo, svc := newExchangeEnv()
	oldProduct := newTestProduct("OLD-1", "15.00", "2")
	newProduct := newTestProduct("NEW-1", "20.00", "10")
	env.products.products[oldProduct.ID] = oldProduct
	env.products.products[newProduct.ID] = newProduct

	tx := settledSale(txRepo, oldProduct, "1", "0")

	exchangeRepo.createErr = errors.New("exchange insert failed")
	env.ledger.failReversal = errors.New("reversal write failed")

	_, err := svc.CreateExchange(CreateExchangeInput{
		TransactionID: tx.ID,
		Lines: []ExchangeLineInput{
			{
				LineItemID:       tx.LineItems[0].ID,
				ReturnedQuantity: dec("1"),
				NewProductID:     newProduct.ID,
				NewQuantity:      dec("1"),
			},
		},
	}, uuid.New(), "cashier")

	var compErr *CompensationError
	if !errors.As(err, &compErr) {
		t.Fatalf("expected *CompensationError, got %v", err)
	}
	if compErr.Saga != "exchange" {
		t.Errorf("Saga = %s, want exchange", compErr.Saga)
	}
	if compErr.TransactionID != tx.ID {
		t.Errorf("TransactionID = %s, want %s", compErr.TransactionID, tx.ID)
	}
}

func TestCreateExchangeRejectsUnknownNewProduct(t *testing.T) {
	env, txRepo, _, svc := newExchangeEnv()
	oldProduct := newTestProduct("OLD-1", "15.00", "2")
	env.products.products[oldProduct.ID] = oldProduct
	tx := settledSale(txRepo, oldProduct, "1", "0")

	_, err := svc.CreateExchange(CreateExchangeInput{
		TransactionID: tx.ID,
		Lines: []ExchangeLineInput{
			{
				LineItemID:       tx.LineItems[0].ID,
				ReturnedQuantity: dec("1"),
				NewProductID:     uuid.New(),
				NewQuantity:      dec("1"),
			},
		},
	}, uuid.New(), "cashier")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if tx.Status != model.StatusSettled {
		t.Errorf("validation failure must not touch the transaction, status = %s", tx.Status)
	}
}

func TestCreateExchangeRejectsBilledOriginal(t *testing.T) {
	env, txRepo, exchangeRepo, svc := newExchangeEnv()
	oldProduct := newTestProduct("OLD-1", "15.00", "2")
	newProduct := newTestProduct("NEW-1", "20.00", "10")
	env.products.products[oldProduct.ID] = oldProduct
	env.products.products[newProduct.ID] = newProduct

	tx := settledSale(txRepo, oldProduct, "1", "0")
	tx.Status = model.StatusBilled

	_, err := svc.CreateExchange(CreateExchangeInput{
		TransactionID: tx.ID,
		Lines: []ExchangeLineInput{
			{
				LineItemID:       tx.LineItems[0].ID,
				ReturnedQuantity: dec("1"),
				NewProductID:     newProduct.ID,
				NewQuantity:      dec("1"),
			},
		},
	}, uuid.New(), "cashier")
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// The status table has no billed -> exchanged edge; nothing may move.
	if tx.Status != model.StatusBilled {
		t.Errorf("transaction status = %s, want billed", tx.Status)
	}
	if len(exchangeRepo.exchanges) != 0 {
		t.Error("exchange stored despite rejection")
	}
	if len(env.ledger.entriesFor(newProduct.ID)) != 0 || len(env.ledger.entriesFor(oldProduct.ID)) != 0 {
		t.Error("stock touched despite rejection")
	}
}
