package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Faroug/store-management-system/internal/cache"
	"github.com/Mohamed-Faroug/store-management-system/internal/domain"
	"github.com/Mohamed-Faroug/store-management-system/internal/store"
	"github.com/Mohamed-Faroug/store-management-system/internal/store/memory"
)

func seedItems() []domain.Item {
	return []domain.Item{
		{
			ID:           "item-widget",
			Name:         "Widget",
			SKU:          "WID-01",
			Quantity:     10,
			ReorderLevel: 5,
			CostPrice:    decimal.RequireFromString("2.00"),
			SellingPrice: decimal.RequireFromString("4.50"),
			CreatedAt:    time.Now().UTC(),
		},
		{
			ID:           "item-gadget",
			Name:         "Gadget",
			SKU:          "GAD-01",
			Quantity:     0,
			ReorderLevel: 3,
			CostPrice:    decimal.RequireFromString("6.00"),
			SellingPrice: decimal.RequireFromString("10.00"),
			CreatedAt:    time.Now().UTC(),
		},
	}
}

func newTestService(settings Settings) (*Service, *memory.Store) {
	repo := memory.NewSeeded(seedItems()...)
	return New(repo, cache.NoopStockAlertCache{}, 5*time.Second, settings), repo
}

func adminContext() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func cashierContext() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "kasir", Role: "cashier"})
}

func TestRecordSaleDecrementsStock(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := cashierContext()

	line, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-widget", Quantity: 7})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("4.50")) {
		t.Fatalf("expected unit price 4.50 from item, got %s", line.UnitPrice)
	}
	if !line.TotalPrice.Equal(decimal.RequireFromString("31.50")) {
		t.Fatalf("expected total 31.50, got %s", line.TotalPrice)
	}

	item, err := svc.GetItem(ctx, "item-widget")
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("expected quantity 3 after sale, got %d", item.Quantity)
	}
}

func TestRecordSaleRejectsOversellWithoutLedgerRow(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := cashierContext()

	_, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-widget", Quantity: 11})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	item, err := svc.GetItem(ctx, "item-widget")
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if item.Quantity != 10 {
		t.Fatalf("expected quantity untouched at 10, got %d", item.Quantity)
	}

	lines, err := svc.ListSales(ctx, "item-widget", 10)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no ledger rows after failed sale, got %d", len(lines))
	}
}

func TestRecordSaleExplicitPriceDoesNotChangeItem(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := cashierContext()

	price := decimal.RequireFromString("3.00")
	line, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-widget", Quantity: 1, UnitPrice: price})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if !line.UnitPrice.Equal(price) {
		t.Fatalf("expected override price 3.00, got %s", line.UnitPrice)
	}

	item, err := svc.GetItem(ctx, "item-widget")
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if !item.SellingPrice.Equal(decimal.RequireFromString("4.50")) {
		t.Fatalf("expected selling price to stay 4.50, got %s", item.SellingPrice)
	}
}

func TestRecordSaleRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := cashierContext()

	if _, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-widget", Quantity: 0}); !errors.Is(err, store.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for zero quantity, got %v", err)
	}
	if _, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "", Quantity: 1}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing item id, got %v", err)
	}
	if _, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-missing", Quantity: 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown item, got %v", err)
	}
}

func TestRecordPurchaseTopsUpStockAndFollowsCostSetting(t *testing.T) {
	svc, _ := newTestService(Settings{UpdateCostOnPurchase: true})
	ctx := adminContext()

	cost := decimal.RequireFromString("2.40")
	_, err := svc.RecordPurchase(ctx, domain.RecordPurchaseRequest{ItemID: "item-widget", Quantity: 20, UnitCost: cost})
	if err != nil {
		t.Fatalf("record purchase failed: %v", err)
	}

	item, err := svc.GetItem(ctx, "item-widget")
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if item.Quantity != 30 {
		t.Fatalf("expected quantity 30 after purchase, got %d", item.Quantity)
	}
	if !item.CostPrice.Equal(cost) {
		t.Fatalf("expected cost price updated to 2.40, got %s", item.CostPrice)
	}
}

func TestRecordPurchaseKeepsCostWhenDisabled(t *testing.T) {
	svc, _ := newTestService(Settings{UpdateCostOnPurchase: false})
	ctx := adminContext()

	_, err := svc.RecordPurchase(ctx, domain.RecordPurchaseRequest{
		ItemID:   "item-widget",
		Quantity: 5,
		UnitCost: decimal.RequireFromString("9.99"),
	})
	if err != nil {
		t.Fatalf("record purchase failed: %v", err)
	}

	item, err := svc.GetItem(ctx, "item-widget")
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if !item.CostPrice.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("expected cost price to stay 2.00, got %s", item.CostPrice)
	}
}

func TestStockAlertsListsLowAndOutOfStock(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := cashierContext()

	// Drop the widget to its reorder level.
	if _, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-widget", Quantity: 5}); err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	alerts, err := svc.StockAlerts(ctx)
	if err != nil {
		t.Fatalf("stock alerts failed: %v", err)
	}
	// The empty gadget sits at or below its reorder level too, so it is
	// reported both as low stock and as out of stock.
	if len(alerts.LowStock) != 2 || alerts.LowStock[0].ID != "item-gadget" || alerts.LowStock[1].ID != "item-widget" {
		t.Fatalf("expected gadget and widget in low stock, got %+v", alerts.LowStock)
	}
	if len(alerts.OutOfStock) != 1 || alerts.OutOfStock[0].ID != "item-gadget" {
		t.Fatalf("expected gadget in out of stock, got %+v", alerts.OutOfStock)
	}
}

func TestAdjustStockModes(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := adminContext()

	item, err := svc.AdjustStock(ctx, domain.StockAdjustmentRequest{ItemID: "item-widget", Mode: domain.AdjustSet, Quantity: 20, Reason: "recount"})
	if err != nil {
		t.Fatalf("set adjustment failed: %v", err)
	}
	if item.Quantity != 20 {
		t.Fatalf("expected quantity 20 after set, got %d", item.Quantity)
	}

	item, err = svc.AdjustStock(ctx, domain.StockAdjustmentRequest{ItemID: "item-widget", Mode: domain.AdjustAdd, Quantity: 5})
	if err != nil {
		t.Fatalf("add adjustment failed: %v", err)
	}
	if item.Quantity != 25 {
		t.Fatalf("expected quantity 25 after add, got %d", item.Quantity)
	}

	// Subtracting past zero clamps instead of going negative.
	item, err = svc.AdjustStock(ctx, domain.StockAdjustmentRequest{ItemID: "item-widget", Mode: domain.AdjustSubtract, Quantity: 100})
	if err != nil {
		t.Fatalf("subtract adjustment failed: %v", err)
	}
	if item.Quantity != 0 {
		t.Fatalf("expected quantity clamped to 0, got %d", item.Quantity)
	}
}

func TestAdjustStockRejectsNegativeAndNonAdmin(t *testing.T) {
	svc, _ := newTestService(Settings{})

	_, err := svc.AdjustStock(adminContext(), domain.StockAdjustmentRequest{ItemID: "item-widget", Mode: domain.AdjustSet, Quantity: -1})
	if !errors.Is(err, store.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for negative target, got %v", err)
	}

	_, err = svc.AdjustStock(cashierContext(), domain.StockAdjustmentRequest{ItemID: "item-widget", Mode: domain.AdjustSet, Quantity: 1})
	if err == nil {
		t.Fatalf("expected cashier adjustment to be rejected")
	}
}

func TestAdjustStockLeavesAuditTrail(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := adminContext()

	if _, err := svc.AdjustStock(ctx, domain.StockAdjustmentRequest{ItemID: "item-widget", Mode: domain.AdjustSubtract, Quantity: 4, Reason: "damage"}); err != nil {
		t.Fatalf("adjustment failed: %v", err)
	}

	lines, err := svc.ListSales(ctx, "item-widget", 10)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one audit line, got %d", len(lines))
	}
	if !lines[0].UnitPrice.IsZero() || lines[0].Quantity != 4 {
		t.Fatalf("expected zero-price audit line with quantity 4, got %+v", lines[0])
	}
}

func TestCreateInvoiceComputesTotalsAndTax(t *testing.T) {
	svc, _ := newTestService(Settings{
		TaxRatePercent: decimal.RequireFromString("10"),
		PaymentMethods: []string{"cash", "card"},
	})
	ctx := cashierContext()

	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		CustomerName:  "Alia",
		PaymentMethod: "card",
		Lines: []domain.InvoiceLineRequest{
			{ItemID: "item-widget", Quantity: 4},
		},
		DiscountAmount: decimal.RequireFromString("3.00"),
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}

	if !inv.TotalAmount.Equal(decimal.RequireFromString("18.00")) {
		t.Fatalf("expected total 18.00, got %s", inv.TotalAmount)
	}
	// Tax applies to the discounted base: (18 - 3) * 10% = 1.50.
	if !inv.TaxAmount.Equal(decimal.RequireFromString("1.50")) {
		t.Fatalf("expected tax 1.50, got %s", inv.TaxAmount)
	}
	if !inv.FinalAmount.Equal(decimal.RequireFromString("16.50")) {
		t.Fatalf("expected final 16.50, got %s", inv.FinalAmount)
	}
	if inv.Status != domain.DocStatusCompleted {
		t.Fatalf("expected completed status, got %s", inv.Status)
	}
	if inv.CreatedBy != "kasir" {
		t.Fatalf("expected created_by kasir, got %s", inv.CreatedBy)
	}

	item, err := svc.GetItem(ctx, "item-widget")
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if item.Quantity != 6 {
		t.Fatalf("expected quantity 6 after invoice, got %d", item.Quantity)
	}
}

func TestCreateInvoiceAllOrNothing(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := cashierContext()

	_, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Lines: []domain.InvoiceLineRequest{
			{ItemID: "item-widget", Quantity: 2},
			{ItemID: "item-gadget", Quantity: 1}, // out of stock
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	item, err := svc.GetItem(ctx, "item-widget")
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if item.Quantity != 10 {
		t.Fatalf("expected widget untouched at 10 after rejected invoice, got %d", item.Quantity)
	}
}

func TestCreateInvoiceMergesDuplicateLines(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := cashierContext()

	inv, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		Lines: []domain.InvoiceLineRequest{
			{ItemID: "item-widget", Quantity: 2},
			{ItemID: "item-widget", Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	if len(inv.Lines) != 1 {
		t.Fatalf("expected duplicate lines merged into one, got %d", len(inv.Lines))
	}
	if inv.Lines[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", inv.Lines[0].Quantity)
	}
}

func TestCreateInvoiceRejectsNonPositiveLineQuantity(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := cashierContext()

	for _, qty := range []int{0, -2} {
		_, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
			Lines: []domain.InvoiceLineRequest{
				{ItemID: "item-widget", Quantity: 1},
				{ItemID: "item-widget", Quantity: qty},
			},
		})
		if !errors.Is(err, store.ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestCreateInvoiceRejectsUnsupportedPayment(t *testing.T) {
	svc, _ := newTestService(Settings{PaymentMethods: []string{"cash"}})
	ctx := cashierContext()

	_, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		PaymentMethod: "crypto",
		Lines:         []domain.InvoiceLineRequest{{ItemID: "item-widget", Quantity: 1}},
	})
	if !errors.Is(err, store.ErrInvalidPayment) {
		t.Fatalf("expected ErrInvalidPayment, got %v", err)
	}
}

func TestCreateInvoiceRejectsEmptyBasket(t *testing.T) {
	svc, _ := newTestService(Settings{})

	_, err := svc.CreateInvoice(cashierContext(), domain.InvoiceCreateRequest{})
	if !errors.Is(err, store.ErrEmptyInvoice) {
		t.Fatalf("expected ErrEmptyInvoice, got %v", err)
	}
}

func TestCreatePurchaseReceivesDelivery(t *testing.T) {
	svc, _ := newTestService(Settings{UpdateCostOnPurchase: true})
	ctx := adminContext()

	p, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		SupplierName: "Acme Wholesale",
		Lines: []domain.PurchaseLineRequest{
			{ItemID: "item-widget", Quantity: 10, UnitCost: decimal.RequireFromString("1.80")},
			{ItemID: "item-gadget", Quantity: 6, UnitCost: decimal.RequireFromString("5.50")},
		},
	})
	if err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}
	if !p.TotalAmount.Equal(decimal.RequireFromString("51.00")) {
		t.Fatalf("expected total 51.00, got %s", p.TotalAmount)
	}

	widget, _ := svc.GetItem(ctx, "item-widget")
	gadget, _ := svc.GetItem(ctx, "item-gadget")
	if widget.Quantity != 20 || gadget.Quantity != 6 {
		t.Fatalf("expected quantities 20 and 6, got %d and %d", widget.Quantity, gadget.Quantity)
	}
	if !widget.CostPrice.Equal(decimal.RequireFromString("1.80")) {
		t.Fatalf("expected widget cost updated to 1.80, got %s", widget.CostPrice)
	}
}

func TestCreatePurchaseRequiresAdmin(t *testing.T) {
	svc, _ := newTestService(Settings{})

	_, err := svc.CreatePurchase(cashierContext(), domain.PurchaseCreateRequest{
		Lines: []domain.PurchaseLineRequest{{ItemID: "item-widget", Quantity: 1}},
	})
	if err == nil {
		t.Fatalf("expected cashier purchase to be rejected")
	}
}

func TestDailyReportExcludesAdjustments(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := adminContext()

	if _, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-widget", Quantity: 2}); err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if _, err := svc.AdjustStock(ctx, domain.StockAdjustmentRequest{ItemID: "item-widget", Mode: domain.AdjustSubtract, Quantity: 3, Reason: "breakage"}); err != nil {
		t.Fatalf("adjustment failed: %v", err)
	}

	summary, err := svc.DailyReport(ctx, "")
	if err != nil {
		t.Fatalf("daily report failed: %v", err)
	}
	if summary.TotalSales != 1 || summary.TotalQuantity != 2 {
		t.Fatalf("expected 1 sale of quantity 2, got %d sales quantity %d", summary.TotalSales, summary.TotalQuantity)
	}
	if !summary.TotalAmount.Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("expected amount 9.00, got %s", summary.TotalAmount)
	}
}

func TestDailyReportRejectsBadDate(t *testing.T) {
	svc, _ := newTestService(Settings{})

	_, err := svc.DailyReport(context.Background(), "31-12-2025")
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad date, got %v", err)
	}
}

func TestTopItemsRanksByQuantity(t *testing.T) {
	svc, _ := newTestService(Settings{UpdateCostOnPurchase: false})
	ctx := adminContext()

	if _, err := svc.RecordPurchase(ctx, domain.RecordPurchaseRequest{ItemID: "item-gadget", Quantity: 10}); err != nil {
		t.Fatalf("record purchase failed: %v", err)
	}
	if _, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-widget", Quantity: 6}); err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if _, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-gadget", Quantity: 2}); err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	top, err := svc.TopItems(ctx, 7, 10)
	if err != nil {
		t.Fatalf("top items failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 ranked items, got %d", len(top))
	}
	if top[0].ItemID != "item-widget" || top[0].TotalQty != 6 {
		t.Fatalf("expected widget ranked first with qty 6, got %+v", top[0])
	}
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := cashierContext()

	const attempts = 25
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-widget", Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, store.ErrInsufficientStock) {
			t.Fatalf("unexpected error from concurrent sale: %v", err)
		}
	}
	if succeeded != 10 {
		t.Fatalf("expected exactly 10 sales to succeed, got %d", succeeded)
	}

	item, err := svc.GetItem(ctx, "item-widget")
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if item.Quantity != 0 {
		t.Fatalf("expected quantity 0 after concurrent drain, got %d", item.Quantity)
	}
}

func TestCreateItemDefaultsAndValidation(t *testing.T) {
	svc, _ := newTestService(Settings{DefaultReorderLevel: 7})
	ctx := adminContext()

	item, err := svc.CreateItem(ctx, domain.ItemCreateRequest{
		Name:            "Sprocket",
		SKU:             "spr-01",
		InitialQuantity: 3,
		SellingPrice:    decimal.RequireFromString("1.25"),
	})
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	if item.SKU != "SPR-01" {
		t.Fatalf("expected SKU upper-cased, got %s", item.SKU)
	}
	if item.ReorderLevel != 7 {
		t.Fatalf("expected default reorder level 7, got %d", item.ReorderLevel)
	}

	if _, err := svc.CreateItem(ctx, domain.ItemCreateRequest{Name: "Bad", InitialQuantity: -1}); !errors.Is(err, store.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for negative initial stock, got %v", err)
	}
	if _, err := svc.CreateItem(ctx, domain.ItemCreateRequest{Name: "Orphan", CategoryID: "cat-missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown category, got %v", err)
	}
	if _, err := svc.CreateItem(cashierContext(), domain.ItemCreateRequest{Name: "Nope"}); err == nil {
		t.Fatalf("expected cashier item creation to be rejected")
	}
}

func TestUpdateItemNeverTouchesQuantity(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := adminContext()

	name := "Widget Mk2"
	price := decimal.RequireFromString("5.00")
	item, err := svc.UpdateItem(ctx, "item-widget", domain.ItemUpdateRequest{Name: &name, SellingPrice: &price})
	if err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	if item.Name != "Widget Mk2" || !item.SellingPrice.Equal(price) {
		t.Fatalf("expected updated name and price, got %+v", item)
	}
	if item.Quantity != 10 {
		t.Fatalf("expected quantity untouched by update, got %d", item.Quantity)
	}
}

func TestDeleteItemBlockedByLedgerHistory(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := adminContext()

	if _, err := svc.RecordSale(ctx, domain.RecordSaleRequest{ItemID: "item-widget", Quantity: 1}); err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	if err := svc.DeleteItem(ctx, "item-widget"); !errors.Is(err, store.ErrItemInUse) {
		t.Fatalf("expected ErrItemInUse for item with history, got %v", err)
	}
	if err := svc.DeleteItem(ctx, "item-gadget"); err != nil {
		t.Fatalf("expected delete of unused item to succeed, got %v", err)
	}
}

func TestUserManagement(t *testing.T) {
	svc, _ := newTestService(Settings{})
	ctx := adminContext()

	user, err := svc.CreateUser(ctx, domain.UserCreateRequest{Username: " Kasir2 ", Role: "cashier"}, "$2a$10$fakehashfakehashfakehash")
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if user.Username != "kasir2" {
		t.Fatalf("expected normalized username kasir2, got %s", user.Username)
	}

	if _, err := svc.CreateUser(ctx, domain.UserCreateRequest{Username: "kasir2"}, "$2a$10$other"); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for existing username, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, domain.UserCreateRequest{Username: "root", Role: "superuser"}, "$2a$10$hash"); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
	if _, err := svc.CreateUser(cashierContext(), domain.UserCreateRequest{Username: "x"}, "$2a$10$hash"); err == nil {
		t.Fatalf("expected cashier user creation to be rejected")
	}

	// A cashier may rotate their own password but not someone else's.
	selfCtx := WithActor(context.Background(), domain.Actor{Username: "kasir2", Role: "cashier"})
	if err := svc.UpdateUserPassword(selfCtx, "kasir2", "$2a$10$newhash"); err != nil {
		t.Fatalf("self password update failed: %v", err)
	}
	if err := svc.UpdateUserPassword(selfCtx, "admin", "$2a$10$newhash"); err == nil {
		t.Fatalf("expected cross-user password update to be rejected")
	}
}
