package domain

import "time"

// All monetary amounts are integer rupiah.

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryCreateRequest struct {
	Name string `json:"name"`
}

type Product struct {
	ID            string    `json:"id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	CategoryID    string    `json:"category_id"`
	CostPrice     int64     `json:"cost_price"`
	Price         int64     `json:"price"`
	ResellerPrice int64     `json:"reseller_price"`
	Stock         int       `json:"stock"`
	ImageURL      string    `json:"image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProductCreateRequest struct {
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	CategoryID    string `json:"category_id"`
	CostPrice     int64  `json:"cost_price"`
	Price         int64  `json:"price"`
	ResellerPrice int64  `json:"reseller_price"`
	Stock         int    `json:"stock"`
	ImageURL      string `json:"image_url,omitempty"`
}

type ProductUpdateRequest struct {
	Name          *string `json:"name,omitempty"`
	CategoryID    *string `json:"category_id,omitempty"`
	CostPrice     *int64  `json:"cost_price,omitempty"`
	Price         *int64  `json:"price,omitempty"`
	ResellerPrice *int64  `json:"reseller_price,omitempty"`
	Stock         *int    `json:"stock,omitempty"`
	ImageURL      *string `json:"image_url,omitempty"`
}

type CartItem struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// Discount carries the raw entered value. The same value is
// reinterpreted when the kind changes: 10 means Rp10 as fixed and 10%
// as percentage. Callers that switch kinds keep the number as typed.
type Discount struct {
	Kind  string `json:"kind"`
	Value int64  `json:"value"`
}

type QuoteRequest struct {
	PriceMode string     `json:"price_mode"`
	Discount  Discount   `json:"discount"`
	Items     []CartItem `json:"items"`
}

type QuoteResponse struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	GrandTotal     int64 `json:"grand_total"`
	ItemCount      int   `json:"item_count"`
}

type CheckoutRequest struct {
	IdempotencyKey string     `json:"idempotency_key"`
	PriceMode      string     `json:"price_mode"`
	PaymentMethod  string     `json:"payment_method"`
	CashReceived   int64      `json:"cash_received"`
	Discount       Discount   `json:"discount"`
	Items          []CartItem `json:"items"`
}

type SaleLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Qty         int    `json:"qty"`
	UnitPrice   int64  `json:"unit_price"`
	PriceMode   string `json:"price_mode"`
	CostPrice   int64  `json:"cost_price"`
	Subtotal    int64  `json:"subtotal"`
}

type Sale struct {
	ID             string     `json:"id"`
	IdempotencyKey string     `json:"idempotency_key"`
	PriceMode      string     `json:"price_mode"`
	PaymentMethod  string     `json:"payment_method"`
	Subtotal       int64      `json:"subtotal"`
	DiscountKind   string     `json:"discount_kind"`
	DiscountValue  int64      `json:"discount_value"`
	DiscountAmount int64      `json:"discount_amount"`
	GrandTotal     int64      `json:"grand_total"`
	CashReceived   int64      `json:"cash_received"`
	Change         int64      `json:"change"`
	CashierName    string     `json:"cashier_name"`
	CreatedAt      time.Time  `json:"created_at"`
	Lines          []SaleLine `json:"lines"`
}

type CheckoutResponse struct {
	SaleID         string     `json:"sale_id"`
	PriceMode      string     `json:"price_mode"`
	PaymentMethod  string     `json:"payment_method"`
	Subtotal       int64      `json:"subtotal"`
	DiscountAmount int64      `json:"discount_amount"`
	GrandTotal     int64      `json:"grand_total"`
	CashReceived   int64      `json:"cash_received"`
	Change         int64      `json:"change"`
	Lines          []SaleLine `json:"lines"`
	Duplicate      bool       `json:"duplicate"`
	CreatedAt      string     `json:"created_at"`
}

type ReceiptResponse struct {
	SaleID       string `json:"sale_id"`
	Text         string `json:"text"`
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
}

type InvoiceLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Qty         int    `json:"qty"`
	UnitPrice   int64  `json:"unit_price"`
	Subtotal    int64  `json:"subtotal"`
}

type Invoice struct {
	ID               string        `json:"id"`
	CustomerName     string        `json:"customer_name"`
	CustomerWhatsApp string        `json:"customer_whatsapp"`
	DueDate          time.Time     `json:"due_date"`
	DueDateNotes     string        `json:"due_date_notes,omitempty"`
	Status           string        `json:"status"`
	Total            int64         `json:"total"`
	CreatedAt        time.Time     `json:"created_at"`
	Lines            []InvoiceLine `json:"lines"`
}

type InvoiceCreateRequest struct {
	CustomerName     string     `json:"customer_name"`
	CustomerWhatsApp string     `json:"customer_whatsapp"`
	DueDate          string     `json:"due_date"`
	DueDateNotes     string     `json:"due_date_notes"`
	Items            []CartItem `json:"items"`
}

type InvoiceResponse struct {
	Invoice Invoice `json:"invoice"`
}

type InvoiceListResponse struct {
	Invoices []Invoice `json:"invoices"`
}

type Expense struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Amount     int64     `json:"amount"`
	Category   string    `json:"category"`
	Note       string    `json:"note,omitempty"`
	SpentAt    time.Time `json:"spent_at"`
	RecordedBy string    `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type ExpenseCreateRequest struct {
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Category string `json:"category"`
	Note     string `json:"note"`
	SpentAt  string `json:"spent_at"`
}

type ExpenseFilter struct {
	Category string
	Month    string // YYYY-MM, empty for all
}

type Settings struct {
	StoreName     string    `json:"store_name"`
	StoreAddress  string    `json:"store_address"`
	StoreWhatsApp string    `json:"store_whatsapp"`
	LogoURL       string    `json:"logo_url,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SettingsUpdateRequest struct {
	StoreName     *string `json:"store_name,omitempty"`
	StoreAddress  *string `json:"store_address,omitempty"`
	StoreWhatsApp *string `json:"store_whatsapp,omitempty"`
	LogoURL       *string `json:"logo_url,omitempty"`
}

type DashboardSummary struct {
	Date             string    `json:"date"`
	Revenue          int64     `json:"revenue"`
	Transactions     int64     `json:"transactions"`
	PendingInvoices  int64     `json:"pending_invoices"`
	LowStockProducts []Product `json:"low_stock_products"`
	RecentSales      []Sale    `json:"recent_sales"`
}

type SalesReportPayment struct {
	PaymentMethod string `json:"payment_method"`
	Transactions  int64  `json:"transactions"`
	Total         int64  `json:"total"`
}

type SalesReport struct {
	From         string               `json:"from"`
	To           string               `json:"to"`
	Transactions int64                `json:"transactions"`
	Revenue      int64                `json:"revenue"`
	Discounts    int64                `json:"discounts"`
	CostOfGoods  int64                `json:"cost_of_goods"`
	GrossProfit  int64                `json:"gross_profit"`
	Expenses     int64                `json:"expenses"`
	ByPayment    []SalesReportPayment `json:"by_payment"`
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported  int              `json:"imported"`
	RowErrors []ImportRowError `json:"row_errors,omitempty"`
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

type User struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	PriceModeStandard = "standard"
	PriceModeReseller = "reseller"
)

const (
	DiscountKindFixed   = "rp"
	DiscountKindPercent = "percent"
)

const (
	PaymentCash     = "cash"
	PaymentQRIS     = "qris"
	PaymentTransfer = "transfer"
)

const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

const (
	RoleAdmin   = "admin"
	RoleOwner   = "owner"
	RoleCashier = "cashier"
)
