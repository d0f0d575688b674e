package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Faroug/store-management-system/internal/cache"
	"github.com/Mohamed-Faroug/store-management-system/internal/domain"
	"github.com/Mohamed-Faroug/store-management-system/internal/store"
	"github.com/Mohamed-Faroug/store-management-system/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Settings are the injected store-level policies. They come from
// configuration at startup, never from mutable global state.
type Settings struct {
	TaxRatePercent       decimal.Decimal
	PaymentMethods       []string
	UpdateCostOnPurchase bool
	DefaultReorderLevel  int
}

const alertsCacheKey = "stock:alerts"

type Service struct {
	repo     store.Repository
	alerts   cache.StockAlertCache
	alertTTL time.Duration
	settings Settings
}

func New(repo store.Repository, alerts cache.StockAlertCache, alertTTL time.Duration, settings Settings) *Service {
	if alerts == nil {
		alerts = cache.NoopStockAlertCache{}
	}
	if alertTTL < time.Second {
		alertTTL = 30 * time.Second
	}
	if len(settings.PaymentMethods) == 0 {
		settings.PaymentMethods = []string{"cash"}
	}
	if settings.DefaultReorderLevel < 1 {
		settings.DefaultReorderLevel = 5
	}

	return &Service{
		repo:     repo,
		alerts:   alerts,
		alertTTL: alertTTL,
		settings: settings,
	}
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (domain.Category, error) {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return domain.Category{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Category{}, store.ErrInvalidInput
	}

	category := domain.Category{
		ID:          xid.New("cat"),
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return store.ErrInvalidInput
	}
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) CreateItem(ctx context.Context, req domain.ItemCreateRequest) (domain.Item, error) {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return domain.Item{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	if req.Name == "" {
		return domain.Item{}, store.ErrInvalidInput
	}
	if req.InitialQuantity < 0 {
		return domain.Item{}, store.ErrInvalidQuantity
	}
	if req.CostPrice.IsNegative() || req.SellingPrice.IsNegative() {
		return domain.Item{}, store.ErrInvalidInput
	}

	reorderLevel := s.settings.DefaultReorderLevel
	if req.ReorderLevel != nil {
		if *req.ReorderLevel < 0 {
			return domain.Item{}, store.ErrInvalidInput
		}
		reorderLevel = *req.ReorderLevel
	}

	if req.CategoryID != "" {
		if _, err := s.repo.GetCategory(ctx, req.CategoryID); err != nil {
			return domain.Item{}, err
		}
	}

	item := domain.Item{
		ID:           xid.New("item"),
		Name:         req.Name,
		CategoryID:   strings.TrimSpace(req.CategoryID),
		SKU:          req.SKU,
		Description:  strings.TrimSpace(req.Description),
		Quantity:     req.InitialQuantity,
		ReorderLevel: reorderLevel,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}

	s.invalidateAlerts(ctx)
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (domain.Item, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Item{}, store.ErrInvalidInput
	}
	return s.repo.GetItem(ctx, id)
}

func (s *Service) UpdateItem(ctx context.Context, id string, req domain.ItemUpdateRequest) (domain.Item, error) {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return domain.Item{}, err
	}

	existing, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}

	updated := existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Item{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.CategoryID != nil {
		categoryID := strings.TrimSpace(*req.CategoryID)
		if categoryID != "" {
			if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
				return domain.Item{}, err
			}
		}
		updated.CategoryID = categoryID
	}
	if req.SKU != nil {
		updated.SKU = strings.ToUpper(strings.TrimSpace(*req.SKU))
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.ReorderLevel != nil {
		if *req.ReorderLevel < 0 {
			return domain.Item{}, store.ErrInvalidInput
		}
		updated.ReorderLevel = *req.ReorderLevel
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return domain.Item{}, store.ErrInvalidInput
		}
		updated.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		if req.SellingPrice.IsNegative() {
			return domain.Item{}, store.ErrInvalidInput
		}
		updated.SellingPrice = *req.SellingPrice
	}

	if err := s.repo.UpdateItem(ctx, updated); err != nil {
		return domain.Item{}, err
	}
	s.invalidateAlerts(ctx)
	return updated, nil
}

// DeleteItem refuses to remove an item that appears in the sales or
// purchases ledger: deleting it would orphan the history that on-hand
// quantities are reconciled against.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return store.ErrInvalidInput
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.invalidateAlerts(ctx)
	return nil
}

func (s *Service) ListItems(ctx context.Context, search, categoryID string) ([]domain.Item, error) {
	return s.repo.ListItems(ctx, strings.TrimSpace(search), strings.TrimSpace(categoryID))
}

func (s *Service) StockAlerts(ctx context.Context) (domain.StockAlerts, error) {
	if cached, ok, err := s.alerts.Get(ctx, alertsCacheKey); err == nil && ok {
		return *cached, nil
	} else if err != nil {
		log.Printf("[service] WARN: stock alert cache read failed: %v", err)
	}

	low, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return domain.StockAlerts{}, err
	}
	out, err := s.repo.ListOutOfStock(ctx)
	if err != nil {
		return domain.StockAlerts{}, err
	}

	alerts := domain.StockAlerts{LowStock: low, OutOfStock: out}
	if err := s.alerts.Set(ctx, alertsCacheKey, &alerts, s.alertTTL); err != nil {
		log.Printf("[service] WARN: stock alert cache write failed: %v", err)
	}
	return alerts, nil
}

func (s *Service) ListLowStock(ctx context.Context) ([]domain.Item, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *Service) ListOutOfStock(ctx context.Context) ([]domain.Item, error) {
	return s.repo.ListOutOfStock(ctx)
}

// RecordSale writes a single standalone sale line. The unit price defaults
// to the item's selling price; passing an explicit price charges that price
// for this sale only and never writes it back to the item.
func (s *Service) RecordSale(ctx context.Context, req domain.RecordSaleRequest) (domain.SaleLine, error) {
	if strings.TrimSpace(req.ItemID) == "" {
		return domain.SaleLine{}, store.ErrInvalidInput
	}
	if req.Quantity <= 0 {
		return domain.SaleLine{}, store.ErrInvalidQuantity
	}
	if req.UnitPrice.IsNegative() {
		return domain.SaleLine{}, store.ErrInvalidInput
	}

	item, err := s.repo.GetItem(ctx, req.ItemID)
	if err != nil {
		return domain.SaleLine{}, err
	}

	unitPrice := req.UnitPrice
	if unitPrice.IsZero() {
		unitPrice = item.SellingPrice
	}

	total := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
	line := domain.SaleLine{
		ID:             xid.New("sale"),
		InvoiceID:      strings.TrimSpace(req.InvoiceID),
		ItemID:         item.ID,
		Quantity:       req.Quantity,
		UnitPrice:      unitPrice,
		TotalPrice:     total,
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		FinalPrice:     total,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.RecordSale(ctx, line); err != nil {
		return domain.SaleLine{}, err
	}

	s.invalidateAlerts(ctx)
	return line, nil
}

// RecordPurchase writes a single standalone purchase line and tops up the
// item quantity. Whether the item's cost price follows the purchase cost is
// a store-level setting.
func (s *Service) RecordPurchase(ctx context.Context, req domain.RecordPurchaseRequest) (domain.PurchaseLine, error) {
	if strings.TrimSpace(req.ItemID) == "" {
		return domain.PurchaseLine{}, store.ErrInvalidInput
	}
	if req.Quantity <= 0 {
		return domain.PurchaseLine{}, store.ErrInvalidQuantity
	}
	if req.UnitCost.IsNegative() {
		return domain.PurchaseLine{}, store.ErrInvalidInput
	}

	item, err := s.repo.GetItem(ctx, req.ItemID)
	if err != nil {
		return domain.PurchaseLine{}, err
	}

	unitCost := req.UnitCost
	if unitCost.IsZero() {
		unitCost = item.CostPrice
	}

	line := domain.PurchaseLine{
		ID:         xid.New("pline"),
		PurchaseID: strings.TrimSpace(req.PurchaseID),
		ItemID:     item.ID,
		Quantity:   req.Quantity,
		UnitCost:   unitCost,
		TotalCost:  unitCost.Mul(decimal.NewFromInt(int64(req.Quantity))),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.RecordPurchase(ctx, line, s.settings.UpdateCostOnPurchase); err != nil {
		return domain.PurchaseLine{}, err
	}

	s.invalidateAlerts(ctx)
	return line, nil
}

func (s *Service) AdjustStock(ctx context.Context, req domain.StockAdjustmentRequest) (domain.Item, error) {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return domain.Item{}, err
	}

	req.Mode = strings.ToLower(strings.TrimSpace(req.Mode))
	if req.Mode == "" {
		req.Mode = domain.AdjustSet
	}
	switch req.Mode {
	case domain.AdjustAdd, domain.AdjustSubtract, domain.AdjustSet:
	default:
		return domain.Item{}, store.ErrInvalidInput
	}
	if strings.TrimSpace(req.ItemID) == "" {
		return domain.Item{}, store.ErrInvalidInput
	}
	if req.Quantity < 0 {
		return domain.Item{}, store.ErrInvalidQuantity
	}

	item, err := s.repo.AdjustStock(ctx, req.ItemID, req.Mode, req.Quantity, time.Now().UTC())
	if err != nil {
		return domain.Item{}, err
	}

	actor, _ := ActorFromContext(ctx)
	log.Printf("[service] stock adjusted item=%s mode=%s qty=%d by=%s reason=%q",
		item.ID, req.Mode, req.Quantity, actor.Username, strings.TrimSpace(req.Reason))

	s.invalidateAlerts(ctx)
	return item, nil
}

// CreateInvoice sells a whole basket atomically. If any line cannot be
// satisfied the entire invoice is rejected and no stock moves.
func (s *Service) CreateInvoice(ctx context.Context, req domain.InvoiceCreateRequest) (domain.Invoice, error) {
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cash"
	}
	if !s.isSupportedPaymentMethod(req.PaymentMethod) {
		return domain.Invoice{}, store.ErrInvalidPayment
	}
	if req.DiscountAmount.IsNegative() {
		return domain.Invoice{}, store.ErrInvalidInput
	}

	lines, err := normalizeLines(req.Lines)
	if err != nil {
		return domain.Invoice{}, err
	}
	if len(lines) == 0 {
		return domain.Invoice{}, store.ErrEmptyInvoice
	}

	now := time.Now().UTC()
	invoiceID := xid.New("inv")

	total := decimal.Zero
	saleLines := make([]domain.SaleLine, 0, len(lines))
	for _, ln := range lines {
		item, err := s.repo.GetItem(ctx, ln.ItemID)
		if err != nil {
			return domain.Invoice{}, err
		}

		unitPrice := ln.UnitPrice
		if unitPrice.IsNegative() {
			return domain.Invoice{}, store.ErrInvalidInput
		}
		if unitPrice.IsZero() {
			unitPrice = item.SellingPrice
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		total = total.Add(lineTotal)

		saleLines = append(saleLines, domain.SaleLine{
			ID:             xid.New("sale"),
			InvoiceID:      invoiceID,
			ItemID:         item.ID,
			Quantity:       ln.Quantity,
			UnitPrice:      unitPrice,
			TotalPrice:     lineTotal,
			DiscountAmount: decimal.Zero,
			TaxAmount:      decimal.Zero,
			FinalPrice:     lineTotal,
			CreatedAt:      now,
		})
	}

	if req.DiscountAmount.GreaterThan(total) {
		return domain.Invoice{}, store.ErrInvalidInput
	}

	taxBase := total.Sub(req.DiscountAmount)
	var tax decimal.Decimal
	if req.TaxAmount != nil {
		if req.TaxAmount.IsNegative() {
			return domain.Invoice{}, store.ErrInvalidInput
		}
		tax = *req.TaxAmount
	} else {
		tax = taxBase.Mul(s.settings.TaxRatePercent).Div(decimal.NewFromInt(100)).Round(2)
	}

	prefix := "INV"
	if req.PointOfSale {
		prefix = "POS"
	}

	actor, _ := ActorFromContext(ctx)
	inv := domain.Invoice{
		ID:             invoiceID,
		InvoiceNumber:  xid.Number(prefix, now),
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		TotalAmount:    total,
		DiscountAmount: req.DiscountAmount,
		TaxAmount:      tax,
		FinalAmount:    taxBase.Add(tax),
		PaymentMethod:  req.PaymentMethod,
		Status:         domain.DocStatusCompleted,
		CreatedAt:      now,
		CreatedBy:      actor.Username,
		Lines:          saleLines,
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return domain.Invoice{}, err
	}

	log.Printf("[service] invoice created number=%s lines=%d final=%s by=%s",
		inv.InvoiceNumber, len(inv.Lines), inv.FinalAmount, actor.Username)

	s.invalidateAlerts(ctx)
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Invoice{}, store.ErrInvalidInput
	}
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) ListInvoices(ctx context.Context, f domain.InvoiceFilter) ([]domain.Invoice, error) {
	if f.Date != "" {
		if _, err := time.Parse("2006-01-02", f.Date); err != nil {
			return nil, store.ErrInvalidInput
		}
	}
	return s.repo.ListInvoices(ctx, f)
}

// CreatePurchase receives a whole delivery atomically.
func (s *Service) CreatePurchase(ctx context.Context, req domain.PurchaseCreateRequest) (domain.Purchase, error) {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return domain.Purchase{}, err
	}

	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cash"
	}
	if !s.isSupportedPaymentMethod(req.PaymentMethod) {
		return domain.Purchase{}, store.ErrInvalidPayment
	}
	if req.DiscountAmount.IsNegative() || req.TaxAmount.IsNegative() {
		return domain.Purchase{}, store.ErrInvalidInput
	}
	if len(req.Lines) == 0 {
		return domain.Purchase{}, store.ErrEmptyPurchase
	}

	now := time.Now().UTC()
	purchaseID := xid.New("pur")

	total := decimal.Zero
	purchaseLines := make([]domain.PurchaseLine, 0, len(req.Lines))
	for _, ln := range req.Lines {
		if ln.Quantity <= 0 {
			return domain.Purchase{}, store.ErrInvalidQuantity
		}
		if ln.UnitCost.IsNegative() {
			return domain.Purchase{}, store.ErrInvalidInput
		}
		item, err := s.repo.GetItem(ctx, ln.ItemID)
		if err != nil {
			return domain.Purchase{}, err
		}

		unitCost := ln.UnitCost
		if unitCost.IsZero() {
			unitCost = item.CostPrice
		}
		lineTotal := unitCost.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		total = total.Add(lineTotal)

		purchaseLines = append(purchaseLines, domain.PurchaseLine{
			ID:         xid.New("pline"),
			PurchaseID: purchaseID,
			ItemID:     item.ID,
			Quantity:   ln.Quantity,
			UnitCost:   unitCost,
			TotalCost:  lineTotal,
			CreatedAt:  now,
		})
	}

	if req.DiscountAmount.GreaterThan(total) {
		return domain.Purchase{}, store.ErrInvalidInput
	}

	actor, _ := ActorFromContext(ctx)
	p := domain.Purchase{
		ID:             purchaseID,
		PurchaseNumber: xid.Number("PUR", now),
		SupplierName:   strings.TrimSpace(req.SupplierName),
		SupplierPhone:  strings.TrimSpace(req.SupplierPhone),
		TotalAmount:    total,
		DiscountAmount: req.DiscountAmount,
		TaxAmount:      req.TaxAmount,
		FinalAmount:    total.Sub(req.DiscountAmount).Add(req.TaxAmount),
		PaymentMethod:  req.PaymentMethod,
		Status:         domain.DocStatusCompleted,
		CreatedAt:      now,
		CreatedBy:      actor.Username,
		Lines:          purchaseLines,
	}

	if err := s.repo.CreatePurchase(ctx, p, s.settings.UpdateCostOnPurchase); err != nil {
		return domain.Purchase{}, err
	}

	log.Printf("[service] purchase created number=%s lines=%d final=%s by=%s",
		p.PurchaseNumber, len(p.Lines), p.FinalAmount, actor.Username)

	s.invalidateAlerts(ctx)
	return p, nil
}

func (s *Service) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Purchase{}, store.ErrInvalidInput
	}
	return s.repo.GetPurchase(ctx, id)
}

func (s *Service) ListPurchases(ctx context.Context, limit int) ([]domain.Purchase, error) {
	return s.repo.ListPurchases(ctx, limit)
}

func (s *Service) ListSales(ctx context.Context, itemID string, limit int) ([]domain.SaleLine, error) {
	return s.repo.ListSales(ctx, strings.TrimSpace(itemID), limit)
}

// DailyReport summarizes one day's sales. An empty date means today.
func (s *Service) DailyReport(ctx context.Context, date string) (domain.SalesSummary, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		now := time.Now().UTC()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return domain.SalesSummary{}, store.ErrInvalidInput
		}
		day = parsed.UTC()
	}
	return s.repo.SalesSummary(ctx, day, day.Add(24*time.Hour))
}

// MonthlyReport summarizes one calendar month, given as "2006-01".
func (s *Service) MonthlyReport(ctx context.Context, month string) (domain.SalesSummary, error) {
	var from time.Time
	if strings.TrimSpace(month) == "" {
		now := time.Now().UTC()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return domain.SalesSummary{}, store.ErrInvalidInput
		}
		from = parsed.UTC()
	}
	return s.repo.SalesSummary(ctx, from, from.AddDate(0, 1, 0))
}

func (s *Service) TopItems(ctx context.Context, days, limit int) ([]domain.ItemSales, error) {
	if days < 1 {
		days = 30
	}
	to := time.Now().UTC()
	from := to.Add(-time.Duration(days) * 24 * time.Hour)
	return s.repo.TopItems(ctx, from, to, limit)
}

func (s *Service) CreateUser(ctx context.Context, req domain.UserCreateRequest, passwordHash string) (domain.UserView, error) {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return domain.UserView{}, err
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if req.Username == "" || passwordHash == "" {
		return domain.UserView{}, store.ErrInvalidInput
	}
	if req.Role == "" {
		req.Role = domain.RoleCashier
	}
	if req.Role != domain.RoleAdmin && req.Role != domain.RoleCashier {
		return domain.UserView{}, store.ErrInvalidInput
	}

	account := domain.UserAccount{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, account); err != nil {
		return domain.UserView{}, err
	}
	return toUserView(account), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.UserView, error) {
	if err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	accounts, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.UserView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, toUserView(account))
	}
	return views, nil
}

func (s *Service) UpdateUserPassword(ctx context.Context, username, passwordHash string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return errors.New("authentication required")
	}
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || passwordHash == "" {
		return store.ErrInvalidInput
	}
	if actor.Role != domain.RoleAdmin && actor.Username != username {
		return fmt.Errorf("admin role required")
	}
	return s.repo.UpdateUserPassword(ctx, username, passwordHash)
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (domain.UserAccount, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return domain.UserAccount{}, store.ErrInvalidInput
	}
	return s.repo.GetUserByUsername(ctx, username)
}

func (s *Service) invalidateAlerts(ctx context.Context) {
	if err := s.alerts.Invalidate(ctx, alertsCacheKey); err != nil {
		log.Printf("[service] WARN: stock alert cache invalidation failed: %v", err)
	}
}

func (s *Service) isSupportedPaymentMethod(method string) bool {
	for _, m := range s.settings.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

func requireRole(ctx context.Context, role string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != role {
		return fmt.Errorf("%s role required", role)
	}
	return nil
}

// normalizeLines merges duplicate item references so a basket that lists
// the same item twice is treated as one line with the summed quantity.
// Lines with a blank item ID are treated as cart placeholders and skipped;
// a non-positive quantity on a real line is rejected outright.
func normalizeLines(lines []domain.InvoiceLineRequest) ([]domain.InvoiceLineRequest, error) {
	type key struct {
		itemID string
		price  string
	}
	agg := make(map[key]domain.InvoiceLineRequest, len(lines))
	order := make([]key, 0, len(lines))
	for _, ln := range lines {
		ln.ItemID = strings.TrimSpace(ln.ItemID)
		if ln.ItemID == "" {
			continue
		}
		if ln.Quantity < 1 {
			return nil, store.ErrInvalidQuantity
		}
		k := key{itemID: ln.ItemID, price: ln.UnitPrice.String()}
		existing, ok := agg[k]
		if !ok {
			order = append(order, k)
			agg[k] = ln
			continue
		}
		existing.Quantity += ln.Quantity
		agg[k] = existing
	}

	normalized := make([]domain.InvoiceLineRequest, 0, len(agg))
	for _, k := range order {
		normalized = append(normalized, agg[k])
	}
	return normalized, nil
}

func toUserView(account domain.UserAccount) domain.UserView {
	return domain.UserView{
		Username:  account.Username,
		Role:      account.Role,
		Active:    account.Active,
		CreatedAt: account.CreatedAt,
	}
}
