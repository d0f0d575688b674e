package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Faroug/store-management-system/internal/domain"
	"github.com/Mohamed-Faroug/store-management-system/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedItem(t *testing.T, s *Store, id string, qty int) domain.Item {
	t.Helper()
	item := domain.Item{
		ID:           id,
		Name:         "Item " + id,
		SKU:          "SKU-" + id,
		Quantity:     qty,
		ReorderLevel: 5,
		CostPrice:    decimal.RequireFromString("2.00"),
		SellingPrice: decimal.RequireFromString("4.50"),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("seed item %s: %v", id, err)
	}
	return item
}

func saleLine(id, itemID string, qty int, price string) domain.SaleLine {
	p := decimal.RequireFromString(price)
	total := p.Mul(decimal.NewFromInt(int64(qty)))
	return domain.SaleLine{
		ID:         id,
		ItemID:     itemID,
		Quantity:   qty,
		UnitPrice:  p,
		TotalPrice: total,
		FinalPrice: total,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestRecordSaleDecrementsAndGuardsStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "w1", 10)

	if err := s.RecordSale(ctx, saleLine("sale-1", "w1", 7, "4.50")); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	item, err := s.GetItem(ctx, "w1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", item.Quantity)
	}

	err = s.RecordSale(ctx, saleLine("sale-2", "w1", 4, "4.50"))
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The failed sale must not leave a ledger row behind.
	lines, err := s.ListSales(ctx, "w1", 10)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected a single ledger row, got %d", len(lines))
	}

	if err := s.RecordSale(ctx, saleLine("sale-3", "missing", 1, "1.00")); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown item, got %v", err)
	}
}

func TestRecordPurchaseTopsUpAndOptionallyUpdatesCost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "w1", 2)

	cost := decimal.RequireFromString("1.75")
	line := domain.PurchaseLine{
		ID:        "pl-1",
		ItemID:    "w1",
		Quantity:  8,
		UnitCost:  cost,
		TotalCost: cost.Mul(decimal.NewFromInt(8)),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.RecordPurchase(ctx, line, true); err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	item, err := s.GetItem(ctx, "w1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Quantity != 10 {
		t.Fatalf("expected quantity 10, got %d", item.Quantity)
	}
	if !item.CostPrice.Equal(cost) {
		t.Fatalf("expected cost updated to 1.75, got %s", item.CostPrice)
	}

	line.ID = "pl-2"
	line.UnitCost = decimal.RequireFromString("9.00")
	if err := s.RecordPurchase(ctx, line, false); err != nil {
		t.Fatalf("record purchase without cost update: %v", err)
	}
	item, _ = s.GetItem(ctx, "w1")
	if !item.CostPrice.Equal(cost) {
		t.Fatalf("expected cost to stay 1.75, got %s", item.CostPrice)
	}
}

func TestAdjustStockWritesAuditLine(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "w1", 10)

	item, err := s.AdjustStock(ctx, "w1", domain.AdjustSet, 4, time.Now().UTC())
	if err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if item.Quantity != 4 {
		t.Fatalf("expected quantity 4 after set, got %d", item.Quantity)
	}

	item, err = s.AdjustStock(ctx, "w1", domain.AdjustSubtract, 100, time.Now().UTC())
	if err != nil {
		t.Fatalf("subtract adjust: %v", err)
	}
	if item.Quantity != 0 {
		t.Fatalf("expected quantity clamped to 0, got %d", item.Quantity)
	}

	lines, err := s.ListSales(ctx, "w1", 10)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d", len(lines))
	}
	for _, ln := range lines {
		if !ln.UnitPrice.IsZero() {
			t.Fatalf("expected zero-price audit line, got %s", ln.UnitPrice)
		}
	}
}

func TestCreateInvoiceIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "w1", 10)
	seedItem(t, s, "w2", 1)

	inv := domain.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-TEST-1",
		TotalAmount:   decimal.RequireFromString("22.50"),
		FinalAmount:   decimal.RequireFromString("22.50"),
		PaymentMethod: "cash",
		Status:        domain.DocStatusCompleted,
		CreatedAt:     time.Now().UTC(),
		Lines: []domain.SaleLine{
			saleLine("sl-1", "w1", 3, "4.50"),
			saleLine("sl-2", "w2", 2, "4.50"), // only 1 in stock
		},
	}
	if err := s.CreateInvoice(ctx, inv); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Nothing moved: the first line must have been rolled back too.
	w1, _ := s.GetItem(ctx, "w1")
	w2, _ := s.GetItem(ctx, "w2")
	if w1.Quantity != 10 || w2.Quantity != 1 {
		t.Fatalf("expected stock untouched (10, 1), got (%d, %d)", w1.Quantity, w2.Quantity)
	}
	if _, err := s.GetInvoice(ctx, "inv-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no invoice row, got %v", err)
	}

	inv.Lines[1] = saleLine("sl-2", "w2", 1, "4.50")
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	got, err := s.GetInvoice(ctx, "inv-1")
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if got.InvoiceNumber != "INV-TEST-1" || len(got.Lines) != 2 {
		t.Fatalf("unexpected invoice %+v", got)
	}
}

func TestDeleteItemBlockedByHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "w1", 10)
	seedItem(t, s, "w2", 10)

	if err := s.RecordSale(ctx, saleLine("sale-1", "w1", 1, "4.50")); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	if err := s.DeleteItem(ctx, "w1"); !errors.Is(err, store.ErrItemInUse) {
		t.Fatalf("expected ErrItemInUse, got %v", err)
	}
	if err := s.DeleteItem(ctx, "w2"); err != nil {
		t.Fatalf("expected delete of unused item to succeed, got %v", err)
	}
	if err := s.DeleteItem(ctx, "w2"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDuplicateSKURejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "w1", 1)

	dup := domain.Item{
		ID:        "w2",
		Name:      "Duplicate",
		SKU:       "SKU-w1",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateItem(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused SKU, got %v", err)
	}

	// Items without a SKU do not collide with each other.
	for i, id := range []string{"n1", "n2"} {
		blank := domain.Item{ID: id, Name: "No SKU", CreatedAt: time.Now().UTC()}
		if err := s.CreateItem(ctx, blank); err != nil {
			t.Fatalf("create blank-sku item %d: %v", i, err)
		}
	}
}

func TestLowAndOutOfStockQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "low", 5)   // at reorder level
	seedItem(t, s, "ok", 50)   // healthy
	seedItem(t, s, "empty", 0) // gone

	low, err := s.ListLowStock(ctx)
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	// Zero-quantity items are still at or below their reorder level, so
	// they show up in the low-stock list as well as the out-of-stock one.
	if len(low) != 2 || low[0].ID != "empty" || low[1].ID != "low" {
		t.Fatalf("expected empty and low items sorted by quantity, got %+v", low)
	}

	out, err := s.ListOutOfStock(ctx)
	if err != nil {
		t.Fatalf("list out of stock: %v", err)
	}
	if len(out) != 1 || out[0].ID != "empty" {
		t.Fatalf("expected only the empty item, got %+v", out)
	}
}

func TestSalesSummaryExcludesAdjustments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "w1", 20)

	if err := s.RecordSale(ctx, saleLine("sale-1", "w1", 2, "4.50")); err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if _, err := s.AdjustStock(ctx, "w1", domain.AdjustSubtract, 3, time.Now().UTC()); err != nil {
		t.Fatalf("adjust stock: %v", err)
	}

	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(time.Hour)
	sum, err := s.SalesSummary(ctx, from, to)
	if err != nil {
		t.Fatalf("sales summary: %v", err)
	}
	if sum.TotalSales != 1 || sum.TotalQuantity != 2 {
		t.Fatalf("expected 1 sale of quantity 2, got %d sales quantity %d", sum.TotalSales, sum.TotalQuantity)
	}
	if !sum.TotalAmount.Equal(decimal.RequireFromString("9")) {
		t.Fatalf("expected amount 9, got %s", sum.TotalAmount)
	}

	top, err := s.TopItems(ctx, from, to, 5)
	if err != nil {
		t.Fatalf("top items: %v", err)
	}
	if len(top) != 1 || top[0].TotalQty != 2 {
		t.Fatalf("expected one ranked item with qty 2, got %+v", top)
	}
}

func TestUserAccounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := domain.UserAccount{
		Username:     "admin",
		PasswordHash: "$2a$10$hash",
		Role:         "admin",
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.CreateUser(ctx, account); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.CreateUser(ctx, account); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.PasswordHash != "$2a$10$hash" || !got.Active {
		t.Fatalf("unexpected account %+v", got)
	}

	if err := s.UpdateUserPassword(ctx, "admin", "$2a$10$newhash"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	got, _ = s.GetUserByUsername(ctx, "admin")
	if got.PasswordHash != "$2a$10$newhash" {
		t.Fatalf("expected rotated hash, got %s", got.PasswordHash)
	}

	if err := s.UpdateUserPassword(ctx, "ghost", "$2a$10$x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestListInvoicesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "w1", 50)

	for i, number := range []string{"INV-A", "INV-B"} {
		inv := domain.Invoice{
			ID:            "inv-" + number,
			InvoiceNumber: number,
			CustomerName:  "Customer " + number,
			TotalAmount:   decimal.RequireFromString("4.50"),
			FinalAmount:   decimal.RequireFromString("4.50"),
			PaymentMethod: "cash",
			Status:        domain.DocStatusCompleted,
			CreatedAt:     time.Now().UTC(),
			Lines:         []domain.SaleLine{saleLine("sl-"+number, "w1", i+1, "4.50")},
		}
		if err := s.CreateInvoice(ctx, inv); err != nil {
			t.Fatalf("create invoice %s: %v", number, err)
		}
	}

	byNumber, err := s.ListInvoices(ctx, domain.InvoiceFilter{InvoiceNumber: "INV-A"})
	if err != nil {
		t.Fatalf("list by number: %v", err)
	}
	if len(byNumber) != 1 || byNumber[0].InvoiceNumber != "INV-A" {
		t.Fatalf("expected exactly INV-A, got %+v", byNumber)
	}

	byCustomer, err := s.ListInvoices(ctx, domain.InvoiceFilter{Customer: "customer inv-b"})
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if len(byCustomer) != 1 || byCustomer[0].InvoiceNumber != "INV-B" {
		t.Fatalf("expected exactly INV-B, got %+v", byCustomer)
	}

	today := time.Now().UTC().Format("2006-01-02")
	byDate, err := s.ListInvoices(ctx, domain.InvoiceFilter{Date: today})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(byDate) != 2 {
		t.Fatalf("expected both invoices for today, got %d", len(byDate))
	}
}
