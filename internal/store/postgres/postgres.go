package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"github.com/Mohamed-Faroug/store-management-system/internal/domain"
	"github.com/Mohamed-Faroug/store-management-system/internal/store"
	"github.com/Mohamed-Faroug/store-management-system/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, created_at)
		VALUES ($1,$2,$3,$4)
	`, c.ID, c.Name, c.Description, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description,''), created_at
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, store.ErrNotFound
		}
		return domain.Category{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description,''), created_at
		FROM categories
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	var inUse bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM items WHERE category_id = $1)
	`, id).Scan(&inUse)
	if err != nil {
		return err
	}
	if inUse {
		return store.ErrItemInUse
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateItem(ctx context.Context, it domain.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (
			id, name, category_id, sku, description, quantity, reorder_level,
			cost_price, selling_price, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, it.ID, it.Name, nullIfEmpty(it.CategoryID), nullIfEmpty(it.SKU), it.Description,
		it.Quantity, it.ReorderLevel, it.CostPrice, it.SellingPrice, it.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

const itemColumns = `
	id, name, COALESCE(category_id,''), COALESCE(sku,''), COALESCE(description,''),
	quantity, reorder_level, cost_price, selling_price, created_at
`

func scanItem(row interface{ Scan(...any) error }) (domain.Item, error) {
	var it domain.Item
	err := row.Scan(&it.ID, &it.Name, &it.CategoryID, &it.SKU, &it.Description,
		&it.Quantity, &it.ReorderLevel, &it.CostPrice, &it.SellingPrice, &it.CreatedAt)
	if err != nil {
		return domain.Item{}, err
	}
	it.CreatedAt = it.CreatedAt.UTC()
	return it, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (domain.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, store.ErrNotFound
		}
		return domain.Item{}, err
	}
	return it, nil
}

func (s *Store) GetItemBySKU(ctx context.Context, sku string) (domain.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE sku = $1`, sku)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, store.ErrNotFound
		}
		return domain.Item{}, err
	}
	return it, nil
}

// UpdateItem writes catalog fields only. Quantity is never touched here;
// it moves through the ledger operations.
func (s *Store) UpdateItem(ctx context.Context, it domain.Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET name = $2, category_id = $3, sku = $4, description = $5,
			reorder_level = $6, cost_price = $7, selling_price = $8
		WHERE id = $1
	`, it.ID, it.Name, nullIfEmpty(it.CategoryID), nullIfEmpty(it.SKU), it.Description,
		it.ReorderLevel, it.CostPrice, it.SellingPrice)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var inUse bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM sales WHERE item_id = $1)
			OR EXISTS (SELECT 1 FROM purchase_items WHERE item_id = $1)
	`, id).Scan(&inUse)
	if err != nil {
		return err
	}
	if inUse {
		return store.ErrItemInUse
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) ListItems(ctx context.Context, search, categoryID string) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')
			AND ($2 = '' OR category_id = $2)
		ORDER BY name ASC
	`, search, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0, 64)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListLowStock(ctx context.Context) ([]domain.Item, error) {
	return s.listItemsWhere(ctx, `quantity <= reorder_level`, `quantity ASC`)
}

func (s *Store) ListOutOfStock(ctx context.Context) ([]domain.Item, error) {
	return s.listItemsWhere(ctx, `quantity = 0`, `name ASC`)
}

func (s *Store) listItemsWhere(ctx context.Context, where, order string) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items WHERE `+where+` ORDER BY `+order)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0, 16)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) RecordSale(ctx context.Context, line domain.SaleLine) error {
	if line.Quantity <= 0 {
		return store.ErrInvalidQuantity
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
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

// decrementStock takes the stock off an item inside tx. The conditional
// update is what enforces the never-negative invariant under concurrency:
// a second writer racing for the same units sees zero rows affected.
func decrementStock(ctx context.Context, tx *sql.Tx, itemID string, qty int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE items
		SET quantity = quantity - $1
		WHERE id = $2 AND quantity >= $1
	`, qty, itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrInsufficientStock
	}
	return nil
}

func insertSaleLine(ctx context.Context, tx *sql.Tx, line domain.SaleLine) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sales (
			id, invoice_id, item_id, quantity, unit_price, total_price,
			discount_amount, tax_amount, final_price, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, line.ID, nullIfEmpty(line.InvoiceID), line.ItemID, line.Quantity, line.UnitPrice,
		line.TotalPrice, line.DiscountAmount, line.TaxAmount, line.FinalPrice, line.CreatedAt)
	return err
}

func (s *Store) RecordPurchase(ctx context.Context, line domain.PurchaseLine, updateCost bool) error {
	if line.Quantity <= 0 {
		return store.ErrInvalidQuantity
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
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

func incrementStock(ctx context.Context, tx *sql.Tx, line domain.PurchaseLine, updateCost bool) error {
	query := `UPDATE items SET quantity = quantity + $1 WHERE id = $2`
	args := []any{line.Quantity, line.ItemID}
	if updateCost {
		query = `UPDATE items SET quantity = quantity + $1, cost_price = $3 WHERE id = $2`
		args = append(args, line.UnitCost)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO purchase_items (id, purchase_id, item_id, quantity, unit_cost, total_cost, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, line.ID, nullIfEmpty(line.PurchaseID), line.ItemID, line.Quantity, line.UnitCost, line.TotalCost, line.CreatedAt)
	return err
}

func (s *Store) AdjustStock(ctx context.Context, itemID, mode string, qty int, at time.Time) (domain.Item, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return domain.Item{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, itemID)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, store.ErrNotFound
		}
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
		_, err = tx.ExecContext(ctx, `UPDATE items SET quantity = $2 WHERE id = $1`, itemID, next)
		if err != nil {
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

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
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
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, inv.ID, inv.InvoiceNumber, inv.CustomerName, inv.CustomerPhone, inv.TotalAmount,
		inv.DiscountAmount, inv.TaxAmount, inv.FinalAmount, inv.PaymentMethod, inv.Status,
		inv.CreatedAt, nullIfEmpty(inv.CreatedBy))
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
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

const invoiceColumns = `
	id, invoice_number, COALESCE(customer_name,''), COALESCE(customer_phone,''),
	total_amount, discount_amount, tax_amount, final_amount, payment_method,
	status, created_at, COALESCE(created_by,'')
`

func scanInvoice(row interface{ Scan(...any) error }) (domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerPhone,
		&inv.TotalAmount, &inv.DiscountAmount, &inv.TaxAmount, &inv.FinalAmount,
		&inv.PaymentMethod, &inv.Status, &inv.CreatedAt, &inv.CreatedBy)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.CreatedAt = inv.CreatedAt.UTC()
	return inv, nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invoice{}, store.ErrNotFound
		}
		return domain.Invoice{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(invoice_id,''), item_id, quantity, unit_price, total_price,
			discount_amount, tax_amount, final_price, created_at
		FROM sales
		WHERE invoice_id = $1
		ORDER BY created_at ASC
	`, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	defer rows.Close()

	lines := make([]domain.SaleLine, 0, 8)
	for rows.Next() {
		var ln domain.SaleLine
		if err := rows.Scan(&ln.ID, &ln.InvoiceID, &ln.ItemID, &ln.Quantity, &ln.UnitPrice,
			&ln.TotalPrice, &ln.DiscountAmount, &ln.TaxAmount, &ln.FinalPrice, &ln.CreatedAt); err != nil {
			return domain.Invoice{}, err
		}
		ln.CreatedAt = ln.CreatedAt.UTC()
		lines = append(lines, ln)
	}
	if err := rows.Err(); err != nil {
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
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE ($1 = '' OR created_at::date = $1::date)
			AND ($2 = '' OR customer_name ILIKE '%' || $2 || '%')
			AND ($3 = '' OR invoice_number = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`, f.Date, f.Customer, f.InvoiceNumber, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, limit)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *Store) CreatePurchase(ctx context.Context, p domain.Purchase, updateCost bool) error {
	if len(p.Lines) == 0 {
		return store.ErrEmptyPurchase
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
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
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, p.ID, p.PurchaseNumber, p.SupplierName, p.SupplierPhone, p.TotalAmount,
		p.DiscountAmount, p.TaxAmount, p.FinalAmount, p.PaymentMethod, p.Status,
		p.CreatedAt, nullIfEmpty(p.CreatedBy))
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
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

const purchaseColumns = `
	id, purchase_number, COALESCE(supplier_name,''), COALESCE(supplier_phone,''),
	total_amount, discount_amount, tax_amount, final_amount, payment_method,
	status, created_at, COALESCE(created_by,'')
`

func scanPurchase(row interface{ Scan(...any) error }) (domain.Purchase, error) {
	var p domain.Purchase
	err := row.Scan(&p.ID, &p.PurchaseNumber, &p.SupplierName, &p.SupplierPhone,
		&p.TotalAmount, &p.DiscountAmount, &p.TaxAmount, &p.FinalAmount,
		&p.PaymentMethod, &p.Status, &p.CreatedAt, &p.CreatedBy)
	if err != nil {
		return domain.Purchase{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (s *Store) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
	p, err := scanPurchase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Purchase{}, store.ErrNotFound
		}
		return domain.Purchase{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(purchase_id,''), item_id, quantity, unit_cost, total_cost, created_at
		FROM purchase_items
		WHERE purchase_id = $1
		ORDER BY created_at ASC
	`, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	defer rows.Close()

	lines := make([]domain.PurchaseLine, 0, 8)
	for rows.Next() {
		var ln domain.PurchaseLine
		if err := rows.Scan(&ln.ID, &ln.PurchaseID, &ln.ItemID, &ln.Quantity, &ln.UnitCost, &ln.TotalCost, &ln.CreatedAt); err != nil {
			return domain.Purchase{}, err
		}
		ln.CreatedAt = ln.CreatedAt.UTC()
		lines = append(lines, ln)
	}
	if err := rows.Err(); err != nil {
		return domain.Purchase{}, err
	}
	p.Lines = lines
	return p, nil
}

func (s *Store) ListPurchases(ctx context.Context, limit int) ([]domain.Purchase, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0, limit)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (s *Store) ListSales(ctx context.Context, itemID string, limit int) ([]domain.SaleLine, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(invoice_id,''), item_id, quantity, unit_price, total_price,
			discount_amount, tax_amount, final_price, created_at
		FROM sales
		WHERE ($1 = '' OR item_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, itemID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.SaleLine, 0, limit)
	for rows.Next() {
		var ln domain.SaleLine
		if err := rows.Scan(&ln.ID, &ln.InvoiceID, &ln.ItemID, &ln.Quantity, &ln.UnitPrice,
			&ln.TotalPrice, &ln.DiscountAmount, &ln.TaxAmount, &ln.FinalPrice, &ln.CreatedAt); err != nil {
			return nil, err
		}
		ln.CreatedAt = ln.CreatedAt.UTC()
		lines = append(lines, ln)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Store) SalesSummary(ctx context.Context, from, to time.Time) (domain.SalesSummary, error) {
	sum := domain.SalesSummary{
		From:        from.Format("2006-01-02"),
		To:          to.Format("2006-01-02"),
		TotalAmount: decimal.Zero,
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)::bigint, COALESCE(SUM(quantity),0)::bigint, COALESCE(SUM(final_price),0)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2 AND unit_price > 0
	`, from, to).Scan(&sum.TotalSales, &sum.TotalQuantity, &sum.TotalAmount)
	if err != nil {
		return sum, err
	}
	return sum, nil
}

func (s *Store) TopItems(ctx context.Context, from, to time.Time, limit int) ([]domain.ItemSales, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.item_id, i.name, COALESCE(SUM(s.quantity),0)::bigint, COALESCE(SUM(s.final_price),0)
		FROM sales s
		JOIN items i ON i.id = s.item_id
		WHERE s.created_at >= $1 AND s.created_at < $2 AND s.unit_price > 0
		GROUP BY s.item_id, i.name
		ORDER BY SUM(s.quantity) DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.ItemSales, 0, limit)
	for rows.Next() {
		var row domain.ItemSales
		if err := rows.Scan(&row.ItemID, &row.Name, &row.TotalQty, &row.TotalAmount); err != nil {
			return nil, err
		}
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
		VALUES ($1,$2,$3,$4,$5)
	`, u.Username, u.PasswordHash, u.Role, u.Active, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.UserAccount, error) {
	var u domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		WHERE username = $1
	`, username).Scan(&u.Username, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserAccount{}, store.ErrNotFound
		}
		return domain.UserAccount{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
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
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2
		WHERE username = $1
	`, username, passwordHash)
	if err != nil {
		return err
	}
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
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

var _ store.Repository = (*Store)(nil)
