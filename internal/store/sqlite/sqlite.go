// Package sqlite implements store.Repository on an embedded SQLite
// database. It is the default backend for single-node deployments where
// running a Postgres server is not worth the trouble.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/Mohamed-Faroug/store-management-system/internal/domain"
	"github.com/Mohamed-Faroug/store-management-system/internal/store"
	"github.com/Mohamed-Faroug/store-management-system/internal/xid"
)

type Store struct {
	db *sqlx.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category_id TEXT NOT NULL DEFAULT '',
		sku TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		reorder_level INTEGER NOT NULL DEFAULT 5,
		cost_price TEXT NOT NULL DEFAULT '0',
		selling_price TEXT NOT NULL DEFAULT '0',
		created_at DATETIME NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_items_sku ON items(sku) WHERE sku <> '';`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		invoice_number TEXT NOT NULL UNIQUE,
		customer_name TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		total_amount TEXT NOT NULL DEFAULT '0',
		discount_amount TEXT NOT NULL DEFAULT '0',
		tax_amount TEXT NOT NULL DEFAULT '0',
		final_amount TEXT NOT NULL DEFAULT '0',
		payment_method TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		created_by TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		invoice_id TEXT NOT NULL DEFAULT '',
		item_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price TEXT NOT NULL DEFAULT '0',
		total_price TEXT NOT NULL DEFAULT '0',
		discount_amount TEXT NOT NULL DEFAULT '0',
		tax_amount TEXT NOT NULL DEFAULT '0',
		final_price TEXT NOT NULL DEFAULT '0',
		created_at DATETIME NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_item ON sales(item_id);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_invoice ON sales(invoice_id);`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id TEXT PRIMARY KEY,
		purchase_number TEXT NOT NULL UNIQUE,
		supplier_name TEXT NOT NULL DEFAULT '',
		supplier_phone TEXT NOT NULL DEFAULT '',
		total_amount TEXT NOT NULL DEFAULT '0',
		discount_amount TEXT NOT NULL DEFAULT '0',
		tax_amount TEXT NOT NULL DEFAULT '0',
		final_amount TEXT NOT NULL DEFAULT '0',
		payment_method TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		created_by TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS purchase_items (
		id TEXT PRIMARY KEY,
		purchase_id TEXT NOT NULL DEFAULT '',
		item_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_cost TEXT NOT NULL DEFAULT '0',
		total_cost TEXT NOT NULL DEFAULT '0',
		created_at DATETIME NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_items_item ON purchase_items(item_id);`,
	`CREATE TABLE IF NOT EXISTS app_users (
		username TEXT PRIMARY KEY,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);`,
}

func New(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time; a single connection keeps the
	// driver from returning SQLITE_BUSY under concurrent mutations.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, created_at)
		VALUES (?,?,?,?)
	`, c.ID, c.Name, c.Description, c.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := s.db.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, store.ErrNotFound
	}
	return c, err
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories := make([]domain.Category, 0, 16)
	err := s.db.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY name ASC`)
	return categories, err
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	var inUse bool
	if err := s.db.GetContext(ctx, &inUse, `SELECT EXISTS (SELECT 1 FROM items WHERE category_id = ?)`, id); err != nil {
		return err
	}
	if inUse {
		return store.ErrItemInUse
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) CreateItem(ctx context.Context, it domain.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (
			id, name, category_id, sku, description, quantity, reorder_level,
			cost_price, selling_price, created_at
		)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`, it.ID, it.Name, it.CategoryID, it.SKU, it.Description, it.Quantity,
		it.ReorderLevel, it.CostPrice, it.SellingPrice, it.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) GetItem(ctx context.Context, id string) (domain.Item, error) {
	var it domain.Item
	err := s.db.GetContext(ctx, &it, `SELECT * FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, store.ErrNotFound
	}
	return it, err
}

func (s *Store) GetItemBySKU(ctx context.Context, sku string) (domain.Item, error) {
	var it domain.Item
	err := s.db.GetContext(ctx, &it, `SELECT * FROM items WHERE sku = ? AND sku <> ''`, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, store.ErrNotFound
	}
	return it, err
}

func (s *Store) UpdateItem(ctx context.Context, it domain.Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET name = ?, category_id = ?, sku = ?, description = ?,
			reorder_level = ?, cost_price = ?, selling_price = ?
		WHERE id = ?
	`, it.Name, it.CategoryID, it.SKU, it.Description, it.ReorderLevel,
		it.CostPrice, it.SellingPrice, it.ID)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var inUse bool
	err = tx.GetContext(ctx, &inUse, `
		SELECT EXISTS (SELECT 1 FROM sales WHERE item_id = ?)
			OR EXISTS (SELECT 1 FROM purchase_items WHERE item_id = ?)
	`, id, id)
	if err != nil {
		return err
	}
	if inUse {
		return store.ErrItemInUse
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListItems(ctx context.Context, search, categoryID string) ([]domain.Item, error) {
	items := make([]domain.Item, 0, 64)
	pattern := "%" + strings.ToLower(search) + "%"
	err := s.db.SelectContext(ctx, &items, `
		SELECT * FROM items
		WHERE (? = '' OR lower(name) LIKE ? OR lower(sku) LIKE ?)
			AND (? = '' OR category_id = ?)
		ORDER BY name ASC
	`, search, pattern, pattern, categoryID, categoryID)
	return items, err
}

func (s *Store) ListLowStock(ctx context.Context) ([]domain.Item, error) {
	items := make([]domain.Item, 0, 16)
	err := s.db.SelectContext(ctx, &items, `
		SELECT * FROM items
		WHERE quantity <= reorder_level
		ORDER BY quantity ASC
	`)
	return items, err
}

func (s *Store) ListOutOfStock(ctx context.Context) ([]domain.Item, error) {
	items := make([]domain.Item, 0, 16)
	err := s.db.SelectContext(ctx, &items, `
		SELECT * FROM items WHERE quantity = 0 ORDER BY name ASC
	`)
	return items, err
}

func (s *Store) RecordSale(ctx context.Context, line domain.SaleLine) error {
	if line.Quantity <= 0 {
		return store.ErrInvalidQuantity
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := decrementStock(ctx, tx, line.ItemID, line.Quantity); err != nil {
		return err
	}
	if err := insertSaleLine(ctx, tx, line); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrTransactionFailed, err)
	}
	return nil
}

// decrementStock is the stock-floor guard: the conditional update refuses
// to take more units than the item has, so quantity can never go negative
// even with racing writers.
func decrementStock(ctx context.Context, tx *sqlx.Tx, itemID string, qty int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE items
		SET quantity = quantity - ?
		WHERE id = ? AND quantity >= ?
	`, qty, itemID, qty)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM items WHERE id = ?)`, itemID); err != nil {
			return err
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrInsufficientStock
	}
	return nil
}

func insertSaleLine(ctx context.Context, tx *sqlx.Tx, line domain.SaleLine) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sales (
			id, invoice_id, item_id, quantity, unit_price, total_price,
			discount_amount, tax_amount, final_price, created_at
		)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`, line.ID, line.InvoiceID, line.ItemID, line.Quantity, line.UnitPrice,
		line.TotalPrice, line.DiscountAmount, line.TaxAmount, line.FinalPrice, line.CreatedAt)
	return err
}

func (s *Store) RecordPurchase(ctx context.Context, line domain.PurchaseLine, updateCost bool) error {
	if line.Quantity <= 0 {
		return store.ErrInvalidQuantity
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := incrementStock(ctx, tx, line, updateCost); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrTransactionFailed, err)
	}
	return nil
}

func incrementStock(ctx context.Context, tx *sqlx.Tx, line domain.PurchaseLine, updateCost bool) error {
	var res sql.Result
	var err error
	if updateCost {
		res, err = tx.ExecContext(ctx, `
			UPDATE items SET quantity = quantity + ?, cost_price = ? WHERE id = ?
		`, line.Quantity, line.UnitCost, line.ItemID)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE items SET quantity = quantity + ? WHERE id = ?
		`, line.Quantity, line.ItemID)
	}
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO purchase_items (id, purchase_id, item_id, quantity, unit_cost, total_cost, created_at)
		VALUES (?,?,?,?,?,?,?)
	`, line.ID, line.PurchaseID, line.ItemID, line.Quantity, line.UnitCost, line.TotalCost, line.CreatedAt)
	return err
}

func (s *Store) AdjustStock(ctx context.Context, itemID, mode string, qty int, at time.Time) (domain.Item, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Item{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var it domain.Item
	err = tx.GetContext(ctx, &it, `SELECT * FROM items WHERE id = ?`, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Item{}, err
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
	if delta != 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE items SET quantity = ? WHERE id = ?`, next, itemID); err != nil {
			return domain.Item{}, err
		}
		line := domain.SaleLine{
			ID:        xid.New("adj"),
			ItemID:    itemID,
			Quantity:  delta,
			UnitPrice: decimal.Zero,
			CreatedAt: at,
		}
		if err := insertSaleLine(ctx, tx, line); err != nil {
			return domain.Item{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Item{}, fmt.Errorf("%w: %v", store.ErrTransactionFailed, err)
	}
	it.Quantity = next
	return it, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv domain.Invoice) error {
	if len(inv.Lines) == 0 {
		return store.ErrEmptyInvoice
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (
			id, invoice_number, customer_name, customer_phone, total_amount,
			discount_amount, tax_amount, final_amount, payment_method, status,
			created_at, created_by
		)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	`, inv.ID, inv.InvoiceNumber, inv.CustomerName, inv.CustomerPhone, inv.TotalAmount,
		inv.DiscountAmount, inv.TaxAmount, inv.FinalAmount, inv.PaymentMethod, inv.Status,
		inv.CreatedAt, inv.CreatedBy)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return err
	}

	for _, line := range inv.Lines {
		if line.Quantity <= 0 {
			return store.ErrInvalidQuantity
		}
		if err := decrementStock(ctx, tx, line.ItemID, line.Quantity); err != nil {
			return err
		}
		if err := insertSaleLine(ctx, tx, line); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrTransactionFailed, err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	var inv domain.Invoice
	err := s.db.GetContext(ctx, &inv, `SELECT * FROM invoices WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invoice{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Invoice{}, err
	}

	lines := make([]domain.SaleLine, 0, 8)
	err = s.db.SelectContext(ctx, &lines, `
		SELECT * FROM sales WHERE invoice_id = ? ORDER BY created_at ASC
	`, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.Lines = lines
	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, f domain.InvoiceFilter) ([]domain.Invoice, error) {
	limit := f.Limit
	if limit < 1 {
		limit = 100
	}
	invoices := make([]domain.Invoice, 0, limit)
	err := s.db.SelectContext(ctx, &invoices, `
		SELECT * FROM invoices
		WHERE (? = '' OR date(created_at) = ?)
			AND (? = '' OR lower(customer_name) LIKE '%' || lower(?) || '%')
			AND (? = '' OR invoice_number = ?)
		ORDER BY created_at DESC
		LIMIT ?
	`, f.Date, f.Date, f.Customer, f.Customer, f.InvoiceNumber, f.InvoiceNumber, limit)
	return invoices, err
}

func (s *Store) CreatePurchase(ctx context.Context, p domain.Purchase, updateCost bool) error {
	if len(p.Lines) == 0 {
		return store.ErrEmptyPurchase
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO purchases (
			id, purchase_number, supplier_name, supplier_phone, total_amount,
			discount_amount, tax_amount, final_amount, payment_method, status,
			created_at, created_by
		)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	`, p.ID, p.PurchaseNumber, p.SupplierName, p.SupplierPhone, p.TotalAmount,
		p.DiscountAmount, p.TaxAmount, p.FinalAmount, p.PaymentMethod, p.Status,
		p.CreatedAt, p.CreatedBy)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return err
	}

	for _, line := range p.Lines {
		if line.Quantity <= 0 {
			return store.ErrInvalidQuantity
		}
		if err := incrementStock(ctx, tx, line, updateCost); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrTransactionFailed, err)
	}
	return nil
}

func (s *Store) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	var p domain.Purchase
	err := s.db.GetContext(ctx, &p, `SELECT * FROM purchases WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Purchase{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Purchase{}, err
	}

	lines := make([]domain.PurchaseLine, 0, 8)
	err = s.db.SelectContext(ctx, &lines, `
		SELECT * FROM purchase_items WHERE purchase_id = ? ORDER BY created_at ASC
	`, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	p.Lines = lines
	return p, nil
}

func (s *Store) ListPurchases(ctx context.Context, limit int) ([]domain.Purchase, error) {
	if limit < 1 {
		limit = 100
	}
	purchases := make([]domain.Purchase, 0, limit)
	err := s.db.SelectContext(ctx, &purchases, `
		SELECT * FROM purchases ORDER BY created_at DESC LIMIT ?
	`, limit)
	return purchases, err
}

func (s *Store) ListSales(ctx context.Context, itemID string, limit int) ([]domain.SaleLine, error) {
	if limit < 1 {
		limit = 100
	}
	lines := make([]domain.SaleLine, 0, limit)
	err := s.db.SelectContext(ctx, &lines, `
		SELECT * FROM sales
		WHERE (? = '' OR item_id = ?)
		ORDER BY created_at DESC
		LIMIT ?
	`, itemID, itemID, limit)
	return lines, err
}

func (s *Store) SalesSummary(ctx context.Context, from, to time.Time) (domain.SalesSummary, error) {
	sum := domain.SalesSummary{
		From:        from.Format("2006-01-02"),
		To:          to.Format("2006-01-02"),
		TotalAmount: decimal.Zero,
	}
	var total sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(quantity),0), COALESCE(SUM(CAST(final_price AS REAL)),0)
		FROM sales
		WHERE created_at >= ? AND created_at < ? AND CAST(unit_price AS REAL) > 0
	`, from, to).Scan(&sum.TotalSales, &sum.TotalQuantity, &total)
	if err != nil {
		return sum, err
	}
	if total.Valid {
		if amount, err := decimal.NewFromString(total.String); err == nil {
			sum.TotalAmount = amount
		}
	}
	return sum, nil
}

func (s *Store) TopItems(ctx context.Context, from, to time.Time, limit int) ([]domain.ItemSales, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.item_id, i.name, COALESCE(SUM(s.quantity),0), COALESCE(SUM(CAST(s.final_price AS REAL)),0)
		FROM sales s
		JOIN items i ON i.id = s.item_id
		WHERE s.created_at >= ? AND s.created_at < ? AND CAST(s.unit_price AS REAL) > 0
		GROUP BY s.item_id, i.name
		ORDER BY SUM(s.quantity) DESC
		LIMIT ?
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.ItemSales, 0, limit)
	for rows.Next() {
		var row domain.ItemSales
		var amount float64
		if err := rows.Scan(&row.ItemID, &row.Name, &row.TotalQty, &amount); err != nil {
			return nil, err
		}
		row.TotalAmount = decimal.NewFromFloat(amount)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, u domain.UserAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at)
		VALUES (?,?,?,?,?)
	`, u.Username, u.PasswordHash, u.Role, u.Active, u.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.UserAccount, error) {
	var u domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		WHERE username = ?
	`, username).Scan(&u.Username, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserAccount{}, store.ErrNotFound
	}
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users SET password = ? WHERE username = ?
	`, passwordHash, username)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: UNIQUE")
}

var _ store.Repository = (*Store)(nil)
