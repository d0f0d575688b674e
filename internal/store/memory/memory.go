// Package memory implements the store.Repository interface with in-memory
// maps. It is used by unit tests and by local runs that do not need a
// database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-Faroug/store-management-system/internal/domain"
	"github.com/Mohamed-Faroug/store-management-system/internal/store"
)

type Store struct {
	mu         sync.Mutex
	categories map[string]domain.Category
	items      map[string]domain.Item
	sales      []domain.SaleLine
	purchases  []domain.PurchaseLine
	invoices   map[string]domain.Invoice
	orders     map[string]domain.Purchase
	users      map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		categories: make(map[string]domain.Category),
		items:      make(map[string]domain.Item),
		invoices:   make(map[string]domain.Invoice),
		orders:     make(map[string]domain.Purchase),
		users:      make(map[string]domain.UserAccount),
	}
}

// NewSeeded returns a store pre-populated with the given items.
func NewSeeded(items ...domain.Item) *Store {
	s := New()
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *Store) CreateCategory(_ context.Context, c domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; ok {
		return store.ErrDuplicate
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	for _, it := range s.items {
		if it.CategoryID == id {
			return store.ErrItemInUse
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateItem(_ context.Context, it domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[it.ID]; ok {
		return store.ErrDuplicate
	}
	if it.SKU != "" {
		for _, other := range s.items {
			if other.SKU == it.SKU {
				return store.ErrDuplicate
			}
		}
	}
	s.items[it.ID] = it
	return nil
}

func (s *Store) GetItem(_ context.Context, id string) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return domain.Item{}, store.ErrNotFound
	}
	return it, nil
}

func (s *Store) GetItemBySKU(_ context.Context, sku string) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.SKU == sku {
			return it, nil
		}
	}
	return domain.Item{}, store.ErrNotFound
}

func (s *Store) UpdateItem(_ context.Context, it domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[it.ID]
	if !ok {
		return store.ErrNotFound
	}
	// Quantity moves only through ledger operations.
	it.Quantity = cur.Quantity
	s.items[it.ID] = it
	return nil
}

func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return store.ErrNotFound
	}
	for _, ln := range s.sales {
		if ln.ItemID == id {
			return store.ErrItemInUse
		}
	}
	for _, ln := range s.purchases {
		if ln.ItemID == id {
			return store.ErrItemInUse
		}
	}
	delete(s.items, id)
	return nil
}

func (s *Store) ListItems(_ context.Context, search, categoryID string) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(search)
	out := make([]domain.Item, 0, len(s.items))
	for _, it := range s.items {
		if categoryID != "" && it.CategoryID != categoryID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) && !strings.Contains(strings.ToLower(it.SKU), q) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListLowStock(_ context.Context) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Item
	for _, it := range s.items {
		if it.Quantity <= it.ReorderLevel {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

func (s *Store) ListOutOfStock(_ context.Context) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Item
	for _, it := range s.items {
		if it.Quantity == 0 {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) RecordSale(_ context.Context, line domain.SaleLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordSaleLocked(line)
}

func (s *Store) recordSaleLocked(line domain.SaleLine) error {
	it, ok := s.items[line.ItemID]
	if !ok {
		return store.ErrNotFound
	}
	if line.Quantity <= 0 {
		return store.ErrInvalidQuantity
	}
	if it.Quantity < line.Quantity {
		return store.ErrInsufficientStock
	}
	it.Quantity -= line.Quantity
	s.items[it.ID] = it
	s.sales = append(s.sales, line)
	return nil
}

func (s *Store) RecordPurchase(_ context.Context, line domain.PurchaseLine, updateCost bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordPurchaseLocked(line, updateCost)
}

func (s *Store) recordPurchaseLocked(line domain.PurchaseLine, updateCost bool) error {
	it, ok := s.items[line.ItemID]
	if !ok {
		return store.ErrNotFound
	}
	if line.Quantity <= 0 {
		return store.ErrInvalidQuantity
	}
	it.Quantity += line.Quantity
	if updateCost {
		it.CostPrice = line.UnitCost
	}
	s.items[it.ID] = it
	s.purchases = append(s.purchases, line)
	return nil
}

func (s *Store) AdjustStock(_ context.Context, itemID, mode string, qty int, at time.Time) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok {
		return domain.Item{}, store.ErrNotFound
	}
	var next int
	switch mode {
	case domain.AdjustAdd:
		next = it.Quantity + qty
	case domain.AdjustSubtract:
		next = it.Quantity - qty
		if next < 0 {
			next = 0
		}
	case domain.AdjustSet:
		next = qty
	default:
		return domain.Item{}, store.ErrInvalidQuantity
	}
	delta := it.Quantity - next
	it.Quantity = next
	s.items[it.ID] = it
	if delta != 0 {
		s.sales = append(s.sales, domain.SaleLine{
			ID:        "adj-" + itemID + "-" + at.Format("20060102150405.000000"),
			ItemID:    itemID,
			Quantity:  delta,
			UnitPrice: decimal.Zero,
			CreatedAt: at,
		})
	}
	return it, nil
}

func (s *Store) CreateInvoice(_ context.Context, inv domain.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(inv.Lines) == 0 {
		return store.ErrEmptyInvoice
	}
	if _, ok := s.invoices[inv.ID]; ok {
		return store.ErrDuplicate
	}
	// Check every line before mutating anything so a failure mid-invoice
	// never leaves partial stock movement behind.
	need := make(map[string]int)
	for _, ln := range inv.Lines {
		if ln.Quantity <= 0 {
			return store.ErrInvalidQuantity
		}
		need[ln.ItemID] += ln.Quantity
	}
	for id, n := range need {
		it, ok := s.items[id]
		if !ok {
			return store.ErrNotFound
		}
		if it.Quantity < n {
			return store.ErrInsufficientStock
		}
	}
	for _, ln := range inv.Lines {
		if err := s.recordSaleLocked(ln); err != nil {
			return err
		}
	}
	s.invoices[inv.ID] = inv
	return nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return domain.Invoice{}, store.ErrNotFound
	}
	return inv, nil
}

func (s *Store) ListInvoices(_ context.Context, f domain.InvoiceFilter) ([]domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if f.Date != "" && inv.CreatedAt.Format("2006-01-02") != f.Date {
			continue
		}
		if f.Customer != "" && !strings.Contains(strings.ToLower(inv.CustomerName), strings.ToLower(f.Customer)) {
			continue
		}
		if f.InvoiceNumber != "" && inv.InvoiceNumber != f.InvoiceNumber {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) CreatePurchase(_ context.Context, p domain.Purchase, updateCost bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(p.Lines) == 0 {
		return store.ErrEmptyPurchase
	}
	if _, ok := s.orders[p.ID]; ok {
		return store.ErrDuplicate
	}
	for _, ln := range p.Lines {
		if ln.Quantity <= 0 {
			return store.ErrInvalidQuantity
		}
		if _, ok := s.items[ln.ItemID]; !ok {
			return store.ErrNotFound
		}
	}
	for _, ln := range p.Lines {
		if err := s.recordPurchaseLocked(ln, updateCost); err != nil {
			return err
		}
	}
	s.orders[p.ID] = p
	return nil
}

func (s *Store) GetPurchase(_ context.Context, id string) (domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.orders[id]
	if !ok {
		return domain.Purchase{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPurchases(_ context.Context, limit int) ([]domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Purchase, 0, len(s.orders))
	for _, p := range s.orders {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListSales(_ context.Context, itemID string, limit int) ([]domain.SaleLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.SaleLine
	for _, ln := range s.sales {
		if itemID != "" && ln.ItemID != itemID {
			continue
		}
		out = append(out, ln)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SalesSummary(_ context.Context, from, to time.Time) (domain.SalesSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := domain.SalesSummary{
		From:        from.Format("2006-01-02"),
		To:          to.Format("2006-01-02"),
		TotalAmount: decimal.Zero,
	}
	for _, ln := range s.sales {
		if ln.CreatedAt.Before(from) || !ln.CreatedAt.Before(to) {
			continue
		}
		if ln.UnitPrice.IsZero() {
			continue // adjustment audit line
		}
		sum.TotalSales++
		sum.TotalQuantity += int64(ln.Quantity)
		sum.TotalAmount = sum.TotalAmount.Add(ln.FinalPrice)
	}
	return sum, nil
}

func (s *Store) TopItems(_ context.Context, from, to time.Time, limit int) ([]domain.ItemSales, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byItem := make(map[string]*domain.ItemSales)
	for _, ln := range s.sales {
		if ln.CreatedAt.Before(from) || !ln.CreatedAt.Before(to) {
			continue
		}
		if ln.UnitPrice.IsZero() {
			continue
		}
		agg, ok := byItem[ln.ItemID]
		if !ok {
			name := ln.ItemID
			if it, ok := s.items[ln.ItemID]; ok {
				name = it.Name
			}
			agg = &domain.ItemSales{ItemID: ln.ItemID, Name: name, TotalAmount: decimal.Zero}
			byItem[ln.ItemID] = agg
		}
		agg.TotalQty += int64(ln.Quantity)
		agg.TotalAmount = agg.TotalAmount.Add(ln.FinalPrice)
	}
	out := make([]domain.ItemSales, 0, len(byItem))
	for _, agg := range byItem {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalQty > out[j].TotalQty })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, u domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return store.ErrDuplicate
	}
	s.users[u.Username] = u
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return domain.UserAccount{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.users[username] = u
	return nil
}

var _ store.Repository = (*Store)(nil)
