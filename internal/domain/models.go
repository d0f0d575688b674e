package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Item is a stocked product. Quantity is mutated exclusively through the
// ledger operations (sale, purchase, manual adjustment).
type Item struct {
	ID           string          `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	CategoryID   string          `json:"category_id,omitempty" db:"category_id"`
	SKU          string          `json:"sku,omitempty" db:"sku"`
	Description  string          `json:"description,omitempty" db:"description"`
	Quantity     int             `json:"quantity" db:"quantity"`
	ReorderLevel int             `json:"reorder_level" db:"reorder_level"`
	CostPrice    decimal.Decimal `json:"cost_price" db:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price" db:"selling_price"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

type ItemCreateRequest struct {
	Name            string          `json:"name"`
	CategoryID      string          `json:"category_id"`
	SKU             string          `json:"sku"`
	Description     string          `json:"description"`
	InitialQuantity int             `json:"initial_quantity"`
	ReorderLevel    *int            `json:"reorder_level,omitempty"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
}

type ItemUpdateRequest struct {
	Name         *string          `json:"name,omitempty"`
	CategoryID   *string          `json:"category_id,omitempty"`
	SKU          *string          `json:"sku,omitempty"`
	Description  *string          `json:"description,omitempty"`
	ReorderLevel *int             `json:"reorder_level,omitempty"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
}

// SaleLine is an immutable ledger record of one stock decrement. Manual
// stock adjustments are recorded as sale lines with a zero unit price and a
// signed quantity: positive quantity means stock went down, negative means
// stock went up, so on-hand quantity is always purchases minus sale-line
// quantities.
type SaleLine struct {
	ID             string          `json:"id" db:"id"`
	InvoiceID      string          `json:"invoice_id,omitempty" db:"invoice_id"`
	ItemID         string          `json:"item_id" db:"item_id"`
	Quantity       int             `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice     decimal.Decimal `json:"total_price" db:"total_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	FinalPrice     decimal.Decimal `json:"final_price" db:"final_price"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// PurchaseLine is an immutable ledger record of one stock increment.
type PurchaseLine struct {
	ID         string          `json:"id" db:"id"`
	PurchaseID string          `json:"purchase_id" db:"purchase_id"`
	ItemID     string          `json:"item_id" db:"item_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	TotalCost  decimal.Decimal `json:"total_cost" db:"total_cost"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// Invoice aggregates sale lines with totals, discount, tax and payment
// method. FinalAmount = TotalAmount - DiscountAmount + TaxAmount.
type Invoice struct {
	ID             string          `json:"id" db:"id"`
	InvoiceNumber  string          `json:"invoice_number" db:"invoice_number"`
	CustomerName   string          `json:"customer_name,omitempty" db:"customer_name"`
	CustomerPhone  string          `json:"customer_phone,omitempty" db:"customer_phone"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount" db:"final_amount"`
	PaymentMethod  string          `json:"payment_method" db:"payment_method"`
	Status         string          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	CreatedBy      string          `json:"created_by,omitempty" db:"created_by"`
	Lines          []SaleLine      `json:"lines,omitempty"`
}

// Purchase is the incoming-stock counterpart of Invoice.
type Purchase struct {
	ID             string          `json:"id" db:"id"`
	PurchaseNumber string          `json:"purchase_number" db:"purchase_number"`
	SupplierName   string          `json:"supplier_name,omitempty" db:"supplier_name"`
	SupplierPhone  string          `json:"supplier_phone,omitempty" db:"supplier_phone"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount" db:"final_amount"`
	PaymentMethod  string          `json:"payment_method" db:"payment_method"`
	Status         string          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	CreatedBy      string          `json:"created_by,omitempty" db:"created_by"`
	Lines          []PurchaseLine  `json:"lines,omitempty"`
}

type RecordSaleRequest struct {
	ItemID    string          `json:"item_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	InvoiceID string          `json:"invoice_id,omitempty"`
}

type RecordPurchaseRequest struct {
	ItemID     string          `json:"item_id"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	PurchaseID string          `json:"purchase_id"`
}

type StockAdjustmentRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Mode     string `json:"mode"`
	Reason   string `json:"reason,omitempty"`
}

type InvoiceLineRequest struct {
	ItemID    string          `json:"item_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type InvoiceCreateRequest struct {
	Lines          []InvoiceLineRequest `json:"lines"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	TaxAmount      *decimal.Decimal     `json:"tax_amount,omitempty"`
	CustomerName   string               `json:"customer_name,omitempty"`
	CustomerPhone  string               `json:"customer_phone,omitempty"`
	PaymentMethod  string               `json:"payment_method"`
	PointOfSale    bool                 `json:"point_of_sale,omitempty"`
}

type PurchaseLineRequest struct {
	ItemID   string          `json:"item_id"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

type PurchaseCreateRequest struct {
	Lines          []PurchaseLineRequest `json:"lines"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	SupplierName   string                `json:"supplier_name,omitempty"`
	SupplierPhone  string                `json:"supplier_phone,omitempty"`
	PaymentMethod  string                `json:"payment_method"`
}

type InvoiceFilter struct {
	Date          string
	Customer      string
	InvoiceNumber string
	Limit         int
}

type StockAlerts struct {
	LowStock   []Item `json:"low_stock"`
	OutOfStock []Item `json:"out_of_stock"`
}

// SalesSummary aggregates the sales ledger over a period. Adjustment audit
// lines (zero unit price) are excluded.
type SalesSummary struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	TotalSales    int64           `json:"total_sales"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type ItemSales struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	TotalQty    int64           `json:"total_qty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserView struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is the internal persistence model for auth credentials.
type UserAccount struct {
	Username     string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
}

const (
	AdjustAdd      = "add"
	AdjustSubtract = "subtract"
	AdjustSet      = "set"
)

const (
	DocStatusCompleted = "completed"
)

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)
