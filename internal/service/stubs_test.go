package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"craftledger/internal/dto"
	"craftledger/internal/model"
	"craftledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// errDuplicate mimics the driver error shape checked by IsUniqueViolation.
var errDuplicate = errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)")

// ── In-memory ItemRepository stub ────────────────────────────────────────────

type stubItemRepo struct {
	items map[uuid.UUID]*model.InventoryItem
	links map[uuid.UUID]*model.ItemLink

	stockCalls []repository.StockTransactionParams

	procMissing      bool // force ErrStockProcedureMissing
	updateStockCalls int
	createLinkCalls  int
	failCreateLink   error
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{
		items: make(map[uuid.UUID]*model.InventoryItem),
		links: make(map[uuid.UUID]*model.ItemLink),
	}
}

func (r *stubItemRepo) Create(_ context.Context, item *model.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	for _, existing := range r.items {
		if existing.SKU == item.SKU {
			return errDuplicate
		}
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	copied.Variants = nil
	for _, v := range r.items {
		if v.ParentItemID != nil && *v.ParentItemID == id {
			copied.Variants = append(copied.Variants, *v)
		}
	}
	return &copied, nil
}

func (r *stubItemRepo) FindByName(_ context.Context, name string) (*model.InventoryItem, error) {
	for _, item := range r.items {
		if item.Name == name && item.Active {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubItemRepo) List(_ context.Context, _ dto.ItemFilter) ([]model.InventoryItem, int64, error) {
	var out []model.InventoryItem
	for _, item := range r.items {
		if item.Active {
			out = append(out, *item)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubItemRepo) ListLowStock(_ context.Context) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range r.items {
		if item.Active && item.ParentItemID == nil &&
			item.CurrentStock.LessThanOrEqual(item.MinStock) && item.MinStock.Sign() > 0 {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubItemRepo) ListVariants(_ context.Context, parentID uuid.UUID) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range r.items {
		if item.ParentItemID != nil && *item.ParentItemID == parentID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubItemRepo) Update(_ context.Context, item *model.InventoryItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *stubItemRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := fields["name"].(string); ok {
		item.Name = name
	}
	if active, ok := fields["active"].(bool); ok {
		item.Active = active
	}
	return nil
}

func (r *stubItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *stubItemRepo) CreateLink(_ context.Context, link *model.ItemLink) error {
	r.createLinkCalls++
	if r.failCreateLink != nil {
		return r.failCreateLink
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	for _, l := range r.links {
		if l.ParentItemID == link.ParentItemID && l.ChildItemID == link.ChildItemID {
			return errDuplicate
		}
	}
	r.links[link.ID] = link
	return nil
}

func (r *stubItemRepo) ListLinks(_ context.Context) ([]model.ItemLink, error) {
	out := make([]model.ItemLink, 0, len(r.links))
	for _, l := range r.links {
		out = append(out, *l)
	}
	return out, nil
}

func (r *stubItemRepo) DeleteLink(_ context.Context, id uuid.UUID) error {
	delete(r.links, id)
	return nil
}

func (r *stubItemRepo) DeleteLinksForItem(_ context.Context, itemID uuid.UUID) error {
	for id, l := range r.links {
		if l.ParentItemID == itemID || l.ChildItemID == itemID {
			delete(r.links, id)
		}
	}
	return nil
}

// RecordStockTransaction mirrors the store procedure: the variant row takes
// the change when one is referenced, the parent row otherwise.
func (r *stubItemRepo) RecordStockTransaction(_ context.Context, p repository.StockTransactionParams) error {
	if r.procMissing {
		return repository.ErrStockProcedureMissing
	}
	r.stockCalls = append(r.stockCalls, p)
	target := p.ItemID
	if p.VariantItemID != nil {
		target = *p.VariantItemID
	}
	item, ok := r.items[target]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.CurrentStock = item.CurrentStock.Add(p.QuantityChange)
	return nil
}

func (r *stubItemRepo) UpdateStock(_ context.Context, id uuid.UUID, delta decimal.Decimal) error {
	r.updateStockCalls++
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.CurrentStock = item.CurrentStock.Add(delta)
	return nil
}

func (r *stubItemRepo) DB() *gorm.DB { return nil }

var _ repository.ItemRepository = (*stubItemRepo)(nil)

// ── In-memory AdjustmentRepository stub ──────────────────────────────────────

type stubAdjustmentRepo struct {
	rows       []model.InventoryAdjustment
	failCreate error
}

func (r *stubAdjustmentRepo) Create(_ context.Context, adj *model.InventoryAdjustment) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	if adj.ID == uuid.Nil {
		adj.ID = uuid.New()
	}
	adj.CreatedAt = time.Now()
	r.rows = append(r.rows, *adj)
	return nil
}

func (r *stubAdjustmentRepo) List(_ context.Context, limit int) ([]model.InventoryAdjustment, error) {
	if len(r.rows) > limit {
		return r.rows[:limit], nil
	}
	return r.rows, nil
}

func (r *stubAdjustmentRepo) ListByItem(_ context.Context, itemID uuid.UUID, limit int) ([]model.InventoryAdjustment, error) {
	var out []model.InventoryAdjustment
	for _, a := range r.rows {
		if a.ItemID == itemID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAdjustmentRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.InventoryAdjustment, error) {
	var out []model.InventoryAdjustment
	for _, a := range r.rows {
		if !a.CreatedAt.Before(from) && !a.CreatedAt.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ repository.AdjustmentRepository = (*stubAdjustmentRepo)(nil)

// ── In-memory TransactionRepository stub ─────────────────────────────────────

type stubTransactionRepo struct {
	rows map[uuid.UUID]*model.FinancialTransaction
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{rows: make(map[uuid.UUID]*model.FinancialTransaction)}
}

func (r *stubTransactionRepo) Create(_ context.Context, t *model.FinancialTransaction) error {
	if t.ReferenceNumber != nil {
		for _, existing := range r.rows {
			if existing.ReferenceNumber != nil && *existing.ReferenceNumber == *t.ReferenceNumber &&
				existing.Category == t.Category && existing.Type == t.Type {
				return errDuplicate
			}
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.rows[t.ID] = t
	return nil
}

// Upsert applies the (reference_number, category, type) conflict rule.
func (r *stubTransactionRepo) Upsert(_ context.Context, t *model.FinancialTransaction) error {
	if t.ReferenceNumber != nil {
		for _, existing := range r.rows {
			if existing.ReferenceNumber != nil && *existing.ReferenceNumber == *t.ReferenceNumber &&
				existing.Category == t.Category && existing.Type == t.Type {
				existing.Amount = t.Amount
				existing.PaymentMethod = t.PaymentMethod
				existing.Date = t.Date
				existing.Notes = t.Notes
				return nil
			}
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.rows[t.ID] = t
	return nil
}

func (r *stubTransactionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.FinancialTransaction, error) {
	t, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTransactionRepo) List(_ context.Context, _ repository.TransactionFilter) ([]model.FinancialTransaction, int64, error) {
	out := make([]model.FinancialTransaction, 0, len(r.rows))
	for _, t := range r.rows {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTransactionRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.FinancialTransaction, error) {
	var out []model.FinancialTransaction
	for _, t := range r.rows {
		if !t.Date.Before(from) && !t.Date.After(to) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTransactionRepo) Update(_ context.Context, t *model.FinancialTransaction) error {
	r.rows[t.ID] = t
	return nil
}

func (r *stubTransactionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

func (r *stubTransactionRepo) DeleteByReference(_ context.Context, ref, category, txType string) error {
	for id, t := range r.rows {
		if t.ReferenceNumber != nil && *t.ReferenceNumber == ref &&
			t.Category == category && t.Type == txType {
			delete(r.rows, id)
		}
	}
	return nil
}

func (r *stubTransactionRepo) byReference(ref string) *model.FinancialTransaction {
	for _, t := range r.rows {
		if t.ReferenceNumber != nil && *t.ReferenceNumber == ref {
			return t
		}
	}
	return nil
}

var _ repository.TransactionRepository = (*stubTransactionRepo)(nil)

// ── In-memory SalesRepository stub ───────────────────────────────────────────

type stubSalesRepo struct {
	orders map[uuid.UUID]*model.SalesOrder

	// numberAlwaysTaken makes every candidate order number collide.
	numberAlwaysTaken bool
}

func newStubSalesRepo() *stubSalesRepo {
	return &stubSalesRepo{orders: make(map[uuid.UUID]*model.SalesOrder)}
}

func (r *stubSalesRepo) CreateWithLines(_ context.Context, so *model.SalesOrder, lines []model.SalesOrderItem) error {
	if so.ID == uuid.Nil {
		so.ID = uuid.New()
	}
	so.CreatedAt = time.Now()
	for i := range lines {
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
		lines[i].SalesOrderID = so.ID
	}
	so.Items = lines
	r.orders[so.ID] = so
	return nil
}

func (r *stubSalesRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	so, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *so
	return &copied, nil
}

func (r *stubSalesRepo) List(_ context.Context, filter repository.SalesFilter) ([]model.SalesOrder, int64, error) {
	var out []model.SalesOrder
	for _, so := range r.orders {
		if filter.Status != "" && so.Status != filter.Status {
			continue
		}
		out = append(out, *so)
	}
	return out, int64(len(out)), nil
}

func (r *stubSalesRepo) Update(_ context.Context, so *model.SalesOrder) error {
	r.orders[so.ID] = so
	return nil
}

func (r *stubSalesRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	so, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	so.Status = status
	return nil
}

func (r *stubSalesRepo) DeleteWithLines(_ context.Context, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

func (r *stubSalesRepo) OrderNumberExists(_ context.Context, number string) (bool, error) {
	if r.numberAlwaysTaken {
		return true, nil
	}
	for _, so := range r.orders {
		if so.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubSalesRepo) ListCompletedBetween(_ context.Context, from, to time.Time) ([]model.SalesOrder, error) {
	var out []model.SalesOrder
	for _, so := range r.orders {
		if so.Status == model.SalesStatusCompleted &&
			!so.CreatedAt.Before(from) && !so.CreatedAt.After(to) {
			out = append(out, *so)
		}
	}
	return out, nil
}

func (r *stubSalesRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.SalesOrder, error) {
	var out []model.SalesOrder
	for _, so := range r.orders {
		if !so.CreatedAt.Before(from) && !so.CreatedAt.After(to) {
			out = append(out, *so)
		}
	}
	return out, nil
}

var _ repository.SalesRepository = (*stubSalesRepo)(nil)

// ── In-memory PurchaseRepository stub ────────────────────────────────────────

type stubPurchaseRepo struct {
	orders map[uuid.UUID]*model.PurchaseOrder
}

func newStubPurchaseRepo() *stubPurchaseRepo {
	return &stubPurchaseRepo{orders: make(map[uuid.UUID]*model.PurchaseOrder)}
}

func (r *stubPurchaseRepo) CreateWithLines(_ context.Context, po *model.PurchaseOrder, lines []model.PurchaseOrderItem) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	po.CreatedAt = time.Now()
	for i := range lines {
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
		lines[i].PurchaseOrderID = po.ID
	}
	po.Items = lines
	r.orders[po.ID] = po
	return nil
}

func (r *stubPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *po
	return &copied, nil
}

func (r *stubPurchaseRepo) List(_ context.Context, filter repository.PurchaseFilter) ([]model.PurchaseOrder, int64, error) {
	var out []model.PurchaseOrder
	for _, po := range r.orders {
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		out = append(out, *po)
	}
	return out, int64(len(out)), nil
}

func (r *stubPurchaseRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.PurchaseOrder, error) {
	var out []model.PurchaseOrder
	for _, po := range r.orders {
		if !po.CreatedAt.Before(from) && !po.CreatedAt.After(to) {
			out = append(out, *po)
		}
	}
	return out, nil
}

func (r *stubPurchaseRepo) Update(_ context.Context, po *model.PurchaseOrder) error {
	r.orders[po.ID] = po
	return nil
}

func (r *stubPurchaseRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	po, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	po.Status = status
	return nil
}

func (r *stubPurchaseRepo) ReplaceLines(_ context.Context, po *model.PurchaseOrder, lines []model.PurchaseOrderItem) error {
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].PurchaseOrderID = po.ID
	}
	po.Items = lines
	r.orders[po.ID] = po
	return nil
}

func (r *stubPurchaseRepo) DeleteWithLines(_ context.Context, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

var _ repository.PurchaseRepository = (*stubPurchaseRepo)(nil)

// ── In-memory InvoiceRepository stub ─────────────────────────────────────────

type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice // keyed by invoice id
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *stubInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	for _, existing := range r.invoices {
		if existing.SalesOrderID == inv.SalesOrderID {
			return errDuplicate
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.CreatedAt = time.Now()
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubInvoiceRepo) FindBySalesOrder(_ context.Context, salesOrderID uuid.UUID) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.SalesOrderID == salesOrderID {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInvoiceRepo) List(_ context.Context, _, _ int) ([]model.Invoice, int64, error) {
	out := make([]model.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (r *stubInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// ── In-memory CustomerRepository / SupplierRepository stubs ──────────────────

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) FindByPhone(_ context.Context, phone string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.Phone != nil && *c.Phone == phone {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCustomerRepo) List(_ context.Context) ([]model.Customer, error) {
	out := make([]model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.suppliers[s.ID] = s
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSupplierRepo) List(_ context.Context) ([]model.Supplier, error) {
	out := make([]model.Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubSupplierRepo) Update(_ context.Context, s *model.Supplier) error {
	r.suppliers[s.ID] = s
	return nil
}

func (r *stubSupplierRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.suppliers, id)
	return nil
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

// ── Queue / writer spies ─────────────────────────────────────────────────────

type auditQueueSpy struct {
	enqueued []*model.InventoryAdjustment
}

func (q *auditQueueSpy) EnqueueAudit(_ context.Context, adj *model.InventoryAdjustment) error {
	q.enqueued = append(q.enqueued, adj)
	return nil
}

type mailQueueSpy struct {
	invoiceIDs []uuid.UUID
}

func (q *mailQueueSpy) EnqueueInvoiceEmail(_ context.Context, invoiceID uuid.UUID) error {
	q.invoiceIDs = append(q.invoiceIDs, invoiceID)
	return nil
}

type pdfWriterStub struct{}

func (pdfWriterStub) WriteInvoicePDF(inv *model.Invoice, _ *model.SalesOrder) (string, error) {
	return "/tmp/" + inv.InvoiceNumber + ".pdf", nil
}

// ── Seed helpers ─────────────────────────────────────────────────────────────

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("invalid uuid %q: %v", s, err)
	}
	return id
}

func seedItem(repo *stubItemRepo, name, sku string, stock, minStock int64) *model.InventoryItem {
	item := &model.InventoryItem{
		ID:           uuid.New(),
		SKU:          sku,
		Name:         name,
		Unit:         "unit",
		SellingPrice: decimal.NewFromInt(100),
		PurchaseCost: decimal.NewFromInt(60),
		CurrentStock: decimal.NewFromInt(stock),
		MinStock:     decimal.NewFromInt(minStock),
		ItemType:     model.ItemTypeFinishedProducts,
		ItemCategory: model.ItemCategorySelling,
		Active:       true,
	}
	repo.items[item.ID] = item
	return item
}

func seedVariant(repo *stubItemRepo, parent *model.InventoryItem, name, sku string, stock int64) *model.InventoryItem {
	parentID := parent.ID
	v := &model.InventoryItem{
		ID:           uuid.New(),
		SKU:          sku,
		Name:         name,
		Unit:         "unit",
		SellingPrice: parent.SellingPrice,
		CurrentStock: decimal.NewFromInt(stock),
		ParentItemID: &parentID,
		ItemType:     parent.ItemType,
		ItemCategory: parent.ItemCategory,
		Active:       true,
	}
	repo.items[v.ID] = v
	return v
}

func seedSupplier(repo *stubSupplierRepo, name string) *model.Supplier {
	s := &model.Supplier{ID: uuid.New(), Name: name}
	repo.suppliers[s.ID] = s
	return s
}

func seedCustomer(repo *stubCustomerRepo, name, email string) *model.Customer {
	c := &model.Customer{ID: uuid.New(), Name: name}
	if email != "" {
		c.Email = &email
	}
	repo.customers[c.ID] = c
	return c
}
