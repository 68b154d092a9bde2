package service

import (
	"errors"
	"testing"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
)

func newRefundEnv() (*stockEnv, *memTxRepo, *memRefundRepo, *memShiftRepo, RefundService) {
	env := newStockEnv()
	txRepo := newMemTxRepo()
	refundRepo := newMemRefundRepo()
	shiftRepo := newMemShiftRepo()
	svc := NewRefundService(txRepo, refundRepo, shiftRepo, env.products, env.stock, testLogger())
	return env, txRepo, refundRepo, shiftRepo, svc
}

func TestComputeRefundProratesVat(t *testing.T) {
	env, txRepo, _, _, _ := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product

	// Sold 5 units at 10.00 with 1.00 VAT on the line; return 2.
	tx := settledSale(txRepo, product, "5", "1.00")

	comp, err := computeRefund(tx, []RefundLineInput{
		{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("2")},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !comp.TotalAmount.Equal(dec("20.00")) {
		t.Errorf("TotalAmount = %s, want 20.00", comp.TotalAmount)
	}
	if !comp.TotalVat.Equal(dec("0.40")) {
		t.Errorf("TotalVat = %s, want 0.40", comp.TotalVat)
	}

	// Same input, same output.
	again, err := computeRefund(tx, []RefundLineInput{
		{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("2")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !again.TotalAmount.Equal(comp.TotalAmount) || !again.TotalVat.Equal(comp.TotalVat) {
		t.Error("computeRefund is not deterministic")
	}
}

func TestComputeRefundRejectsBadLines(t *testing.T) {
	env, txRepo, _, _, _ := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product
	tx := settledSale(txRepo, product, "5", "1.00")

	cases := []struct {
		name string
		line RefundLineInput
	}{
		{"foreign line item", RefundLineInput{LineItemID: uuid.New(), ReturnedQuantity: dec("1")}},
		{"zero quantity", RefundLineInput{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("0")}},
		{"negative quantity", RefundLineInput{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("-1")}},
		{"over sold quantity", RefundLineInput{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("6")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := computeRefund(tx, []RefundLineInput{tc.line})
			if !errors.Is(err, ErrValidationFailed) {
				t.Errorf("expected ErrValidationFailed, got %v", err)
			}
		})
	}
}

func TestCreateRefundHappyPath(t *testing.T) {
	env, txRepo, refundRepo, _, svc := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product
	tx := settledSale(txRepo, product, "5", "1.00")

	refund, err := svc.CreateRefund(CreateRefundInput{
		TransactionID: tx.ID,
		IsCash:        true,
		Lines: []RefundLineInput{
			{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("2")},
		},
	}, uuid.New(), "cashier")
	if err != nil {
		t.Fatal(err)
	}

	if tx.Status != model.StatusRefunded {
		t.Errorf("transaction status = %s, want refunded", tx.Status)
	}
	if !refund.TotalAmount.Equal(dec("20.00")) {
		t.Errorf("refund TotalAmount = %s, want 20.00", refund.TotalAmount)
	}
	if !refund.TotalVat.Equal(dec("0.40")) {
		t.Errorf("refund TotalVat = %s, want 0.40", refund.TotalVat)
	}
	if len(refundRepo.refunds) != 1 {
		t.Fatalf("stored refunds = %d, want 1", len(refundRepo.refunds))
	}

	// Returned goods go back in: 3 + 2 = 5.
	if !product.StockQuantity.Equal(dec("5")) {
		t.Errorf("stock after refund = %s, want 5", product.StockQuantity)
	}
	entries := env.ledger.entriesFor(product.ID)
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	if entries[0].MovementType != model.MovementReturn || entries[0].ReferenceType != model.RefRefund {
		t.Errorf("unexpected ledger entry: %s/%s", entries[0].MovementType, entries[0].ReferenceType)
	}
}

func TestCreateRefundBlockedOnRefundedTransaction(t *testing.T) {
	env, txRepo, _, _, svc := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product
	tx := settledSale(txRepo, product, "5", "1.00")

	input := CreateRefundInput{
		TransactionID: tx.ID,
		Lines: []RefundLineInput{
			{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("1")},
		},
	}
	if _, err := svc.CreateRefund(input, uuid.New(), "cashier"); err != nil {
		t.Fatal(err)
	}

	// Second refund of the same transaction must bounce off the terminal state.
	_, err := svc.CreateRefund(input, uuid.New(), "cashier")
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCreateRefundRequiresSettledOrBilled(t *testing.T) {
	env, txRepo, _, _, svc := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product
	tx := settledSale(txRepo, product, "5", "1.00")
	tx.Status = model.StatusDraft

	_, err := svc.CreateRefund(CreateRefundInput{
		TransactionID: tx.ID,
		Lines: []RefundLineInput{
			{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("1")},
		},
	}, uuid.New(), "cashier")
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCreateRefundRequiresOpenShift(t *testing.T) {
	env, txRepo, _, shiftRepo, svc := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product
	tx := settledSale(txRepo, product, "5", "1.00")

	closed := &model.Shift{Status: model.ShiftClosed, OpenedByID: uuid.New()}
	closed.ID = uuid.New()
	shiftRepo.shifts[closed.ID] = closed

	_, err := svc.CreateRefund(CreateRefundInput{
		TransactionID: tx.ID,
		ShiftID:       &closed.ID,
		Lines: []RefundLineInput{
			{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("1")},
		},
	}, uuid.New(), "cashier")
	if !errors.Is(err, ErrShiftNotOpen) {
		t.Fatalf("expected ErrShiftNotOpen, got %v", err)
	}
	if tx.Status != model.StatusSettled {
		t.Errorf("validation failure must not touch the transaction, status = %s", tx.Status)
	}
}

func TestCreateRefundCompensatesOnStockFailure(t *testing.T) {
	env, txRepo, refundRepo, _, svc := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product
	tx := settledSale(txRepo, product, "5", "1.00")

	boom := errors.New("ledger write failed")
	env.ledger.failOnProduct[product.ID] = boom

	_, err := svc.CreateRefund(CreateRefundInput{
		TransactionID: tx.ID,
		Lines: []RefundLineInput{
			{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("2")},
		},
	}, uuid.New(), "cashier")
	if !errors.Is(err, boom) {
		t.Fatalf("expected the original cause, got %v", err)
	}

	// Compensation restored the snapshotted status and nothing was committed.
	if tx.Status != model.StatusSettled {
		t.Errorf("status after compensation = %s, want settled", tx.Status)
	}
	if len(refundRepo.refunds) != 0 {
		t.Errorf("refund committed despite failure")
	}
	if !product.StockQuantity.Equal(dec("3")) {
		t.Errorf("stock after compensation = %s, want 3", product.StockQuantity)
	}
}

func TestCreateRefundCompensatesOnCommitFailure(t *testing.T) {
	env, txRepo, refundRepo, _, svc := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product
	tx := settledSale(txRepo, product, "5", "1.00")

	boom := errors.New("refund insert failed")
	refundRepo.createErr = boom

	_, err := svc.CreateRefund(CreateRefundInput{
		TransactionID: tx.ID,
		Lines: []RefundLineInput{
			{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("2")},
		},
	}, uuid.New(), "cashier")
	if !errors.Is(err, boom) {
		t.Fatalf("expected the original cause, got %v", err)
	}

	if tx.Status != model.StatusSettled {
		t.Errorf("status after compensation = %s, want settled", tx.Status)
	}
	// The forward movement and its reversal must both be on the ledger, and
	// the balance must be back where it started.
	entries := env.ledger.entriesFor(product.ID)
	if len(entries) != 2 {
		t.Fatalf("ledger entries = %d, want forward + reversal", len(entries))
	}
	if !entries[1].IsReversal || entries[1].ReversesEntryID == nil || *entries[1].ReversesEntryID != entries[0].ID {
		t.Error("second entry is not a reversal of the first")
	}
	if !product.StockQuantity.Equal(dec("3")) {
		t.Errorf("stock after compensation = %s, want 3", product.StockQuantity)
	}
}

func TestCreateRefundSurfacesCompensationError(t *testing.T) {
	env, txRepo, refundRepo, _, svc := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product
	tx := settledSale(txRepo, product, "5", "1.00")

	// The commit fails, and so does putting the stock movement back.
	refundRepo.createErr = errors.New("refund insert failed")
	env.ledger.failReversal = errors.New("reversal write failed")

	_, err := svc.CreateRefund(CreateRefundInput{
		TransactionID: tx.ID,
		Lines: []RefundLineInput{
			{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("2")},
		},
	}, uuid.New(), "cashier")

	var compErr *CompensationError
	if !errors.As(err, &compErr) {
		t.Fatalf("expected *CompensationError, got %v", err)
	}
	if compErr.Saga != "refund" {
		t.Errorf("Saga = %s, want refund", compErr.Saga)
	}
	if compErr.TransactionID != tx.ID {
		t.Errorf("TransactionID = %s, want %s", compErr.TransactionID, tx.ID)
	}
	if len(compErr.ProductIDs) != 1 || compErr.ProductIDs[0] != product.ID {
		t.Errorf("ProductIDs = %v, want [%s]", compErr.ProductIDs, product.ID)
	}
	if compErr.Cause == nil || compErr.CompensateErr == nil {
		t.Error("CompensationError must carry both the cause and the compensation failure")
	}
}

func TestDeleteRefundRestoresSettledWithoutTouchingStock(t *testing.T) {
	env, txRepo, refundRepo, _, svc := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product
	tx := settledSale(txRepo, product, "5", "1.00")

	refund, err := svc.CreateRefund(CreateRefundInput{
		TransactionID: tx.ID,
		Lines: []RefundLineInput{
			{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("2")},
		},
	}, uuid.New(), "cashier")
	if err != nil {
		t.Fatal(err)
	}
	stockAfterRefund := product.StockQuantity

	if err := svc.DeleteRefund(refund.ID, "supervisor"); err != nil {
		t.Fatal(err)
	}

	if tx.Status != model.StatusSettled {
		t.Errorf("status after refund delete = %s, want settled", tx.Status)
	}
	// The refund record survives, marked Reversed.
	stored, ok := refundRepo.refunds[refund.ID]
	if !ok {
		t.Fatal("refund record removed instead of reversed")
	}
	if stored.Status != model.RefundReversed {
		t.Errorf("refund status = %s, want Reversed", stored.Status)
	}
	// Deleting a refund is a bookkeeping correction; the returned goods stay.
	if !product.StockQuantity.Equal(stockAfterRefund) {
		t.Errorf("stock changed on refund delete: %s -> %s", stockAfterRefund, product.StockQuantity)
	}

	// A second reversal has nothing to undo.
	if err := svc.DeleteRefund(refund.ID, "supervisor"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("second reversal: expected ErrValidationFailed, got %v", err)
	}
}

func TestCreateRefundFromBilledOriginal(t *testing.T) {
	env, txRepo, refundRepo, _, svc := newRefundEnv()
	product := newTestProduct("SKU-1", "10.00", "3")
	env.products.products[product.ID] = product
	tx := settledSale(txRepo, product, "5", "1.00")
	tx.Status = model.StatusBilled

	// billed carries a refunded edge in the status table, so this goes through.
	_, err := svc.CreateRefund(CreateRefundInput{
		TransactionID: tx.ID,
		IsCash:        true,
		Lines: []RefundLineInput{
			{LineItemID: tx.LineItems[0].ID, ReturnedQuantity: dec("2")},
		},
	}, uuid.New(), "cashier")
	if err != nil {
		t.Fatal(err)
	}

	if tx.Status != model.StatusRefunded {
		t.Errorf("transaction status = %s, want refunded", tx.Status)
	}
	if len(refundRepo.refunds) != 1 {
		t.Fatalf("stored refunds = %d, want 1", len(refundRepo.refunds))
	}
}
