package store

import (
	"context"
	"errors"
	"time"

	"github.com/Mohamed-Faroug/store-management-system/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidPayment    = errors.New("unsupported payment method")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyInvoice      = errors.New("invoice has no lines")
	ErrEmptyPurchase     = errors.New("purchase has no lines")
	ErrItemInUse         = errors.New("item has ledger history")
	ErrDuplicate         = errors.New("duplicate record")
	ErrTransactionFailed = errors.New("transaction failed")
)

// Repository is the persistence boundary. All stock mutations are atomic:
// either every line of a document commits and every affected item quantity
// moves with it, or nothing does.
type Repository interface {
	CreateCategory(ctx context.Context, c domain.Category) error
	GetCategory(ctx context.Context, id string) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateItem(ctx context.Context, it domain.Item) error
	GetItem(ctx context.Context, id string) (domain.Item, error)
	GetItemBySKU(ctx context.Context, sku string) (domain.Item, error)
	UpdateItem(ctx context.Context, it domain.Item) error
	// DeleteItem fails with ErrItemInUse when any sale or purchase line
	// references the item.
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, search, categoryID string) ([]domain.Item, error)
	ListLowStock(ctx context.Context) ([]domain.Item, error)
	ListOutOfStock(ctx context.Context) ([]domain.Item, error)

	// RecordSale appends one sale line and decrements the item quantity,
	// failing with ErrInsufficientStock when on-hand stock is short. On
	// failure no ledger row is written.
	RecordSale(ctx context.Context, line domain.SaleLine) error
	// RecordPurchase appends one purchase line and increments the item
	// quantity. When updateCost is true the item's cost price is set to
	// the line's unit cost.
	RecordPurchase(ctx context.Context, line domain.PurchaseLine, updateCost bool) error
	// AdjustStock moves the item quantity per mode (add, subtract, set)
	// and writes a zero-priced audit sale line for the delta. Subtract
	// clamps at zero rather than failing.
	AdjustStock(ctx context.Context, itemID, mode string, qty int, at time.Time) (domain.Item, error)

	CreateInvoice(ctx context.Context, inv domain.Invoice) error
	GetInvoice(ctx context.Context, id string) (domain.Invoice, error)
	ListInvoices(ctx context.Context, f domain.InvoiceFilter) ([]domain.Invoice, error)
	CreatePurchase(ctx context.Context, p domain.Purchase, updateCost bool) error
	GetPurchase(ctx context.Context, id string) (domain.Purchase, error)
	ListPurchases(ctx context.Context, limit int) ([]domain.Purchase, error)
	ListSales(ctx context.Context, itemID string, limit int) ([]domain.SaleLine, error)

	SalesSummary(ctx context.Context, from, to time.Time) (domain.SalesSummary, error)
	TopItems(ctx context.Context, from, to time.Time, limit int) ([]domain.ItemSales, error)

	CreateUser(ctx context.Context, u domain.UserAccount) error
	GetUserByUsername(ctx context.Context, username string) (domain.UserAccount, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username, passwordHash string) error
}
