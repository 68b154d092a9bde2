package service

import (
	"io"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// In-memory repositories mirroring the persistence contracts, with fault
// injection switches so saga failure paths can be exercised deterministically.

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// --- products ---

type memProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: map[uuid.UUID]*model.Product{}}
}

func (r *memProductRepo) Create(product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) FindAll() ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindBySKU(sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memProductRepo) Update(product *model.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) Delete(id uuid.UUID, deletedBy string) error {
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// --- stock ledger ---

type memLedgerRepo struct {
	products *memProductRepo
	entries  []*model.StockLedgerEntry

	// failOnProduct makes Append fail for that product, leaving the ledger
	// untouched, the way a DB error would.
	failOnProduct map[uuid.UUID]error
	// failReversal makes only reversal entries fail, so a saga's forward
	// movements succeed but its rollback cannot.
	failReversal error
}

func newMemLedgerRepo(products *memProductRepo) *memLedgerRepo {
	return &memLedgerRepo{
		products:      products,
		failOnProduct: map[uuid.UUID]error{},
	}
}

func (r *memLedgerRepo) Append(entry *model.StockLedgerEntry) (*model.StockLedgerEntry, error) {
	if err, ok := r.failOnProduct[entry.ProductID]; ok {
		return nil, err
	}
	if entry.IsReversal && r.failReversal != nil {
		return nil, r.failReversal
	}

	product, ok := r.products.products[entry.ProductID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	newBalance := product.StockQuantity.Add(entry.Quantity)
	if newBalance.IsNegative() && !product.AllowNegativeStock {
		return nil, repository.ErrInsufficientStock
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.Balance = newBalance
	if entry.Unit == "" {
		entry.Unit = product.Unit
	}
	r.entries = append(r.entries, entry)
	product.StockQuantity = newBalance
	return entry, nil
}

func (r *memLedgerRepo) History(productID uuid.UUID, from, to time.Time, offset, limit int) ([]model.StockLedgerEntry, error) {
	var out []model.StockLedgerEntry
	for _, e := range r.entries {
		if e.ProductID != productID {
			continue
		}
		if !from.IsZero() && e.MovedAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.MovedAt.After(to) {
			continue
		}
		out = append(out, *e)
	}
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memLedgerRepo) CurrentBalance(productID uuid.UUID) (decimal.Decimal, error) {
	product, ok := r.products.products[productID]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	return product.StockQuantity, nil
}

func (r *memLedgerRepo) MovementPerDay(startDate, endDate time.Time) ([]repository.StockMovementData, error) {
	return nil, nil
}

// entriesFor returns the product's entries in append order.
func (r *memLedgerRepo) entriesFor(productID uuid.UUID) []*model.StockLedgerEntry {
	var out []*model.StockLedgerEntry
	for _, e := range r.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out
}

// --- sales transactions ---

type memTxRepo struct {
	transactions map[uuid.UUID]*model.SalesTransaction

	createErr       error
	updateStatusErr error // returned once, then cleared
}

func newMemTxRepo() *memTxRepo {
	return &memTxRepo{transactions: map[uuid.UUID]*model.SalesTransaction{}}
}

func (r *memTxRepo) Create(t *model.SalesTransaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	for i := range t.LineItems {
		if t.LineItems[i].ID == uuid.Nil {
			t.LineItems[i].ID = uuid.New()
		}
	}
	r.transactions[t.ID] = t
	return nil
}

// FindByID returns a copy, mirroring a fresh row scan; callers mutating the
// result in memory do not change the stored state.
func (r *memTxRepo) FindByID(id uuid.UUID) (*model.SalesTransaction, error) {
	t, ok := r.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	cp.LineItems = append([]model.TransactionLineItem(nil), t.LineItems...)
	return &cp, nil
}

func (r *memTxRepo) FindAll(filter repository.TransactionFilter) ([]model.SalesTransaction, error) {
	var out []model.SalesTransaction
	for _, t := range r.transactions {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.ShiftID != nil && (t.ShiftID == nil || *t.ShiftID != *filter.ShiftID) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTxRepo) UpdateStatus(id uuid.UUID, expected, target model.TransactionStatus, invoiceNumber, updatedBy string) error {
	if r.updateStatusErr != nil {
		err := r.updateStatusErr
		r.updateStatusErr = nil
		return err
	}
	t, ok := r.transactions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if t.Status != expected {
		return repository.ErrStatusConflict
	}
	t.Status = target
	t.Version++
	if invoiceNumber != "" {
		t.InvoiceNumber = invoiceNumber
	}
	t.UpdatedBy = updatedBy
	return nil
}

func (r *memTxRepo) Delete(id uuid.UUID, deletedBy string) error {
	if _, ok := r.transactions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.transactions, id)
	return nil
}

func (r *memTxRepo) SalesPerDay(startDate, endDate time.Time) ([]repository.SalesSummaryData, error) {
	return nil, nil
}

// --- refunds ---

type memRefundRepo struct {
	refunds   map[uuid.UUID]*model.RefundTransaction
	createErr error
}

func newMemRefundRepo() *memRefundRepo {
	return &memRefundRepo{refunds: map[uuid.UUID]*model.RefundTransaction{}}
}

func (r *memRefundRepo) Create(refund *model.RefundTransaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.refunds[refund.ID] = refund
	return nil
}

func (r *memRefundRepo) FindByID(id uuid.UUID) (*model.RefundTransaction, error) {
	refund, ok := r.refunds[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return refund, nil
}

func (r *memRefundRepo) FindAll(from, to time.Time) ([]model.RefundTransaction, error) {
	var out []model.RefundTransaction
	for _, refund := range r.refunds {
		out = append(out, *refund)
	}
	return out, nil
}

func (r *memRefundRepo) MarkReversed(id uuid.UUID, actorID string) error {
	refund, ok := r.refunds[id]
	if !ok || refund.Status != model.RefundActive {
		return repository.ErrNotFound
	}
	refund.Status = model.RefundReversed
	refund.UpdatedBy = actorID
	return nil
}

// --- exchanges ---

type memExchangeRepo struct {
	exchanges map[uuid.UUID]*model.ExchangeTransaction
	createErr error
}

func newMemExchangeRepo() *memExchangeRepo {
	return &memExchangeRepo{exchanges: map[uuid.UUID]*model.ExchangeTransaction{}}
}

func (r *memExchangeRepo) Create(exchange *model.ExchangeTransaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.exchanges[exchange.ID] = exchange
	return nil
}

func (r *memExchangeRepo) FindByID(id uuid.UUID) (*model.ExchangeTransaction, error) {
	exchange, ok := r.exchanges[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return exchange, nil
}

func (r *memExchangeRepo) FindAll(from, to time.Time) ([]model.ExchangeTransaction, error) {
	var out []model.ExchangeTransaction
	for _, exchange := range r.exchanges {
		out = append(out, *exchange)
	}
	return out, nil
}

// --- shifts ---

type memShiftRepo struct {
	shifts map[uuid.UUID]*model.Shift
}

func newMemShiftRepo() *memShiftRepo {
	return &memShiftRepo{shifts: map[uuid.UUID]*model.Shift{}}
}

func (r *memShiftRepo) Create(shift *model.Shift) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	r.shifts[shift.ID] = shift
	return nil
}

func (r *memShiftRepo) FindByID(id uuid.UUID) (*model.Shift, error) {
	shift, ok := r.shifts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return shift, nil
}

func (r *memShiftRepo) FindOpenByUser(userID uuid.UUID) (*model.Shift, error) {
	for _, shift := range r.shifts {
		if shift.OpenedByID == userID && shift.Status == model.ShiftOpen {
			return shift, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memShiftRepo) FindAll(status model.ShiftStatus) ([]model.Shift, error) {
	var out []model.Shift
	for _, shift := range r.shifts {
		if status != "" && shift.Status != status {
			continue
		}
		out = append(out, *shift)
	}
	return out, nil
}

func (r *memShiftRepo) Update(shift *model.Shift) error {
	if _, ok := r.shifts[shift.ID]; !ok {
		return repository.ErrNotFound
	}
	r.shifts[shift.ID] = shift
	return nil
}

// --- stock alerts ---

type memAlertRepo struct {
	alerts []*model.StockAlert
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{}
}

func (r *memAlertRepo) FindActive(productID uuid.UUID, kind model.AlertKind) (*model.StockAlert, error) {
	for _, alert := range r.alerts {
		if alert.ProductID == productID && alert.Kind == kind && alert.Active {
			return alert, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAlertRepo) FindAllActive() ([]model.StockAlert, error) {
	var out []model.StockAlert
	for _, alert := range r.alerts {
		if alert.Active {
			out = append(out, *alert)
		}
	}
	return out, nil
}

func (r *memAlertRepo) Create(alert *model.StockAlert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *memAlertRepo) Resolve(id uuid.UUID, at time.Time) error {
	for _, alert := range r.alerts {
		if alert.ID == id {
			alert.Active = false
			alert.ResolvedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- customers ---

type memCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: map[uuid.UUID]*model.Customer{}}
}

func (r *memCustomerRepo) Create(customer *model.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *memCustomerRepo) FindAll() ([]model.Customer, error) {
	var out []model.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memCustomerRepo) FindByID(id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *memCustomerRepo) Update(customer *model.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

// --- common fixtures ---

func newTestProduct(sku string, price, stock string) *model.Product {
	p := &model.Product{
		SKU:           sku,
		Name:          "Product " + sku,
		Unit:          "pcs",
		SellingPrice:  dec(price),
		UnitCost:      dec(price).Div(dec("2")),
		TrackStock:    true,
		StockQuantity: dec(stock),
	}
	p.ID = uuid.New()
	return p
}

// stockEnv bundles the stock plumbing every saga test needs.
type stockEnv struct {
	products *memProductRepo
	ledger   *memLedgerRepo
	alerts   *memAlertRepo
	stock    StockService
}

func newStockEnv() *stockEnv {
	products := newMemProductRepo()
	ledger := newMemLedgerRepo(products)
	alerts := newMemAlertRepo()
	logger := testLogger()
	alertSvc := NewAlertService(alerts, logger)
	stock := NewStockService(products, ledger, alertSvc, nil, logger)
	return &stockEnv{
		products: products,
		ledger:   ledger,
		alerts:   alerts,
		stock:    stock,
	}
}

// settledSale builds a committed sale of qty units of product, with the given
// per-line VAT total, ready to be refunded or exchanged.
func settledSale(txRepo *memTxRepo, product *model.Product, qty, lineVat string) *model.SalesTransaction {
	tx := &model.SalesTransaction{
		Status:      model.StatusSettled,
		OperatorID:  uuid.New(),
		SellingAt:   time.Now().Add(-time.Hour),
		TotalAmount: product.SellingPrice.Mul(dec(qty)),
		TotalVat:    dec(lineVat),
	}
	tx.ID = uuid.New()

	item := model.TransactionLineItem{
		TransactionID: tx.ID,
		ProductID:     product.ID,
		Unit:          product.Unit,
		Quantity:      dec(qty),
		SellingPrice:  product.SellingPrice,
		VatAmount:     dec(lineVat),
		Status:        "Active",
	}
	item.ID = uuid.New()
	tx.LineItems = []model.TransactionLineItem{item}

	txRepo.transactions[tx.ID] = tx
	return tx
}
