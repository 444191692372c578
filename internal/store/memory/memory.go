package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"javasnursery/backend/internal/domain"
	"javasnursery/backend/internal/store"
	"javasnursery/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	categories      map[string]domain.Category
	products        map[string]domain.Product
	salesByID       map[string]*domain.Sale
	salesByIdem     map[string]*domain.Sale
	invoicesByID    map[string]*domain.Invoice
	expensesByID    map[string]domain.Expense
	settings        domain.Settings
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD, SEED_OWNER_PASSWORD and
// SEED_CASHIER_PASSWORD environment variables. If unset, hardcoded dev
// defaults are used with a warning printed to stdout. These credentials
// are never used in production (the backend uses PostgreSQL when
// DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	ownerPwd := envOr("SEED_OWNER_PASSWORD", "owner123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD, SEED_OWNER_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"owner", ownerPwd, domain.RoleOwner},
		{"cashier", cashierPwd, domain.RoleCashier},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	categories := []domain.Category{
		{ID: "cat-tanaman-hias", Name: "Tanaman Hias", CreatedAt: now},
		{ID: "cat-tanaman-buah", Name: "Tanaman Buah", CreatedAt: now},
		{ID: "cat-media-tanam", Name: "Media Tanam", CreatedAt: now},
		{ID: "cat-pupuk", Name: "Pupuk", CreatedAt: now},
		{ID: "cat-pot", Name: "Pot", CreatedAt: now},
	}

	products := []domain.Product{
		{ID: "prd-monstera-01", SKU: "TH-MONSTERA-01", Name: "Monstera Deliciosa", CategoryID: "cat-tanaman-hias", CostPrice: 35000, Price: 55000, ResellerPrice: 45000, Stock: 12},
		{ID: "prd-aglaonema-01", SKU: "TH-AGLAONEMA-01", Name: "Aglaonema Red Sumatra", CategoryID: "cat-tanaman-hias", CostPrice: 25000, Price: 40000, ResellerPrice: 32000, Stock: 20},
		{ID: "prd-sansevieria-01", SKU: "TH-SANSE-01", Name: "Sansevieria Trifasciata", CategoryID: "cat-tanaman-hias", CostPrice: 15000, Price: 25000, ResellerPrice: 20000, Stock: 30},
		{ID: "prd-mangga-01", SKU: "TB-MANGGA-01", Name: "Bibit Mangga Harum Manis", CategoryID: "cat-tanaman-buah", CostPrice: 40000, Price: 65000, ResellerPrice: 55000, Stock: 15},
		{ID: "prd-jambu-01", SKU: "TB-JAMBU-01", Name: "Bibit Jambu Kristal", CategoryID: "cat-tanaman-buah", CostPrice: 30000, Price: 50000, ResellerPrice: 42000, Stock: 18},
		{ID: "prd-sekam-01", SKU: "MT-SEKAM-01", Name: "Sekam Bakar 5L", CategoryID: "cat-media-tanam", CostPrice: 8000, Price: 15000, ResellerPrice: 12000, Stock: 50},
		{ID: "prd-kompos-01", SKU: "MT-KOMPOS-01", Name: "Kompos Organik 5kg", CategoryID: "cat-media-tanam", CostPrice: 12000, Price: 20000, ResellerPrice: 17000, Stock: 40},
		{ID: "prd-npk-01", SKU: "PK-NPK-01", Name: "Pupuk NPK 16-16-16 1kg", CategoryID: "cat-pupuk", CostPrice: 18000, Price: 28000, ResellerPrice: 24000, Stock: 35},
		{ID: "prd-pot20-01", SKU: "PT-POT20-01", Name: "Pot Plastik 20cm", CategoryID: "cat-pot", CostPrice: 5000, Price: 10000, ResellerPrice: 8000, Stock: 100},
		{ID: "prd-pot30-01", SKU: "PT-POT30-01", Name: "Pot Tanah Liat 30cm", CategoryID: "cat-pot", CostPrice: 20000, Price: 35000, ResellerPrice: 30000, Stock: 25},
	}

	categoryMap := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		categoryMap[c.ID] = c
	}
	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.CreatedAt = now
		productMap[p.ID] = p
	}

	return &Store{
		categories:   categoryMap,
		products:     productMap,
		salesByID:    make(map[string]*domain.Sale),
		salesByIdem:  make(map[string]*domain.Sale),
		invoicesByID: make(map[string]*domain.Invoice),
		expensesByID: make(map[string]domain.Expense),
		settings: domain.Settings{
			StoreName:    "Javas Nursery",
			StoreAddress: "Jl. Raya Kebun No. 1",
			UpdatedAt:    now,
		},
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b domain.Category) int {
		return cmpString(a.Name, b.Name)
	})
	return categories, nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(category.Name) == "" {
		return nil, store.ErrValidation
	}
	for _, existing := range s.categories {
		if strings.EqualFold(existing.Name, category.Name) {
			return nil, store.ErrConflict
		}
	}
	if category.ID == "" {
		category.ID = xid.New("cat")
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	s.categories[category.ID] = category
	created := category
	return &created, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	for _, p := range s.products {
		if p.CategoryID == id {
			return store.ErrConflict
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.CategoryID == b.CategoryID {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.CategoryID, b.CategoryID)
	})
	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateProduct(product); err != nil {
		return nil, err
	}
	for _, existing := range s.products {
		if existing.SKU == product.SKU {
			return nil, store.ErrConflict
		}
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateProduct(product); err != nil {
		return nil, err
	}
	current, ok := s.products[product.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	for _, existing := range s.products {
		if existing.ID != product.ID && existing.SKU == product.SKU {
			return nil, store.ErrConflict
		}
	}
	product.CreatedAt = current.CreatedAt
	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	for _, sale := range s.salesByID {
		for _, line := range sale.Lines {
			if line.ProductID == id {
				return store.ErrConflict
			}
		}
	}
	for _, invoice := range s.invoicesByID {
		for _, line := range invoice.Lines {
			if line.ProductID == id {
				return store.ErrConflict
			}
		}
	}
	delete(s.products, id)
	return nil
}

func (s *Store) SetStock(_ context.Context, id string, stock int) error {
	if stock < 0 {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return store.ErrNotFound
	}
	product.Stock = stock
	s.products[id] = product
	return nil
}

func (s *Store) BulkImportProducts(_ context.Context, products []domain.Product) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if err := validateProduct(p); err != nil {
			return 0, err
		}
		if _, dup := seen[p.SKU]; dup {
			return 0, store.ErrConflict
		}
		seen[p.SKU] = struct{}{}
		for _, existing := range s.products {
			if existing.SKU == p.SKU {
				return 0, store.ErrConflict
			}
		}
	}

	now := time.Now().UTC()
	for _, p := range products {
		if p.ID == "" {
			p.ID = xid.New("prd")
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		s.products[p.ID] = p
	}
	return len(products), nil
}

func (s *Store) ListLowStockProducts(_ context.Context, threshold int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, 8)
	for _, p := range s.products {
		if p.Stock <= threshold {
			result = append(result, p)
		}
	}
	slices.SortFunc(result, func(a, b domain.Product) int {
		if a.Stock == b.Stock {
			return cmpString(a.Name, b.Name)
		}
		return a.Stock - b.Stock
	})
	return result, nil
}

func (s *Store) FindSaleByIdempotency(_ context.Context, key string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByIdem[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) FindSaleByID(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

// CommitSale persists the sale and decrements stock as one step under
// the store lock. Any line that would push stock negative aborts the
// whole sale before anything changes.
func (s *Store) CommitSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.IdempotencyKey == "" || len(sale.Lines) == 0 {
		return nil, store.ErrValidation
	}
	if existing, ok := s.salesByIdem[sale.IdempotencyKey]; ok {
		return cloneSale(existing), nil
	}

	for _, line := range sale.Lines {
		if line.Qty < 1 {
			return nil, store.ErrValidation
		}
		product, ok := s.products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s unavailable", line.ProductID)
		}
		if product.Stock < line.Qty {
			return nil, store.ErrInsufficientStock
		}
	}

	for _, line := range sale.Lines {
		product := s.products[line.ProductID]
		product.Stock -= line.Qty
		s.products[line.ProductID] = product
	}

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	saleCopy := cloneSale(&sale)
	s.salesByID[sale.ID] = saleCopy
	s.salesByIdem[sale.IdempotencyKey] = saleCopy
	return cloneSale(saleCopy), nil
}

func (s *Store) ListSales(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	result := make([]domain.Sale, 0, limit)
	for _, sale := range s.salesByID {
		if !from.IsZero() && sale.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && sale.CreatedAt.After(to) {
			continue
		}
		result = append(result, *cloneSale(sale))
	}
	slices.SortFunc(result, func(a, b domain.Sale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CreateInvoice reserves stock at issue time with the same conditional
// decrement as CommitSale.
func (s *Store) CreateInvoice(_ context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(invoice.Lines) == 0 {
		return nil, store.ErrValidation
	}
	for _, line := range invoice.Lines {
		if line.Qty < 1 {
			return nil, store.ErrValidation
		}
		product, ok := s.products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s unavailable", line.ProductID)
		}
		if product.Stock < line.Qty {
			return nil, store.ErrInsufficientStock
		}
	}

	for _, line := range invoice.Lines {
		product := s.products[line.ProductID]
		product.Stock -= line.Qty
		s.products[line.ProductID] = product
	}

	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}
	if invoice.Status == "" {
		invoice.Status = domain.InvoiceStatusPending
	}

	invoiceCopy := cloneInvoice(&invoice)
	s.invoicesByID[invoice.ID] = invoiceCopy
	return cloneInvoice(invoiceCopy), nil
}

func (s *Store) GetInvoiceByID(_ context.Context, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoice, ok := s.invoicesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneInvoice(invoice), nil
}

func (s *Store) ListInvoices(_ context.Context, limit int) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	result := make([]domain.Invoice, 0, len(s.invoicesByID))
	for _, invoice := range s.invoicesByID {
		result = append(result, *cloneInvoice(invoice))
	}
	slices.SortFunc(result, func(a, b domain.Invoice) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) MarkInvoicePaid(_ context.Context, id string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invoice, ok := s.invoicesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if invoice.Status != domain.InvoiceStatusPending {
		return nil, store.ErrConflict
	}
	invoice.Status = domain.InvoiceStatusPaid
	return cloneInvoice(invoice), nil
}

// ReverseInvoice restores each line's qty to its product and deletes
// the invoice. A second reversal finds nothing and returns ErrNotFound.
func (s *Store) ReverseInvoice(_ context.Context, id string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invoice, ok := s.invoicesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	for _, line := range invoice.Lines {
		product, ok := s.products[line.ProductID]
		if !ok {
			continue
		}
		product.Stock += line.Qty
		s.products[line.ProductID] = product
	}
	delete(s.invoicesByID, id)
	return cloneInvoice(invoice), nil
}

func (s *Store) CreateExpense(_ context.Context, expense domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(expense.Name) == "" || expense.Amount < 1 {
		return nil, store.ErrValidation
	}
	if expense.ID == "" {
		expense.ID = xid.New("exp")
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}
	if expense.SpentAt.IsZero() {
		expense.SpentAt = expense.CreatedAt
	}
	s.expensesByID[expense.ID] = expense
	created := expense
	return &created, nil
}

func (s *Store) ListExpenses(_ context.Context, filter domain.ExpenseFilter, limit int) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 200
	}
	result := make([]domain.Expense, 0, limit)
	for _, expense := range s.expensesByID {
		if filter.Category != "" && expense.Category != filter.Category {
			continue
		}
		if filter.Month != "" && expense.SpentAt.Format("2006-01") != filter.Month {
			continue
		}
		result = append(result, expense)
	}
	slices.SortFunc(result, func(a, b domain.Expense) int {
		if a.SpentAt.Equal(b.SpentAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.SpentAt.After(b.SpentAt) {
			return -1
		}
		return 1
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expensesByID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.expensesByID, id)
	return nil
}

func (s *Store) SumExpenses(_ context.Context, from time.Time, to time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, expense := range s.expensesByID {
		if !from.IsZero() && expense.SpentAt.Before(from) {
			continue
		}
		if !to.IsZero() && expense.SpentAt.After(to) {
			continue
		}
		total += expense.Amount
	}
	return total, nil
}

func (s *Store) GetSettings(_ context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := s.settings
	return &settings, nil
}

func (s *Store) UpdateSettings(_ context.Context, settings domain.Settings) (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(settings.StoreName) == "" {
		return nil, store.ErrValidation
	}
	settings.UpdatedAt = time.Now().UTC()
	s.settings = settings
	updated := settings
	return &updated, nil
}

func (s *Store) CountPendingInvoices(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, invoice := range s.invoicesByID {
		if invoice.Status == domain.InvoiceStatusPending {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetSalesReport(_ context.Context, from time.Time, to time.Time) (domain.SalesReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := domain.SalesReport{
		From:      from.Format("2006-01-02"),
		To:        to.Format("2006-01-02"),
		ByPayment: make([]domain.SalesReportPayment, 0, 3),
	}
	byPayment := make(map[string]*domain.SalesReportPayment, 3)

	for _, sale := range s.salesByID {
		if sale.CreatedAt.Before(from) || sale.CreatedAt.After(to) {
			continue
		}
		report.Transactions++
		report.Revenue += sale.GrandTotal
		report.Discounts += sale.DiscountAmount
		for _, line := range sale.Lines {
			report.CostOfGoods += int64(line.Qty) * line.CostPrice
		}
		entry, ok := byPayment[sale.PaymentMethod]
		if !ok {
			entry = &domain.SalesReportPayment{PaymentMethod: sale.PaymentMethod}
			byPayment[sale.PaymentMethod] = entry
		}
		entry.Transactions++
		entry.Total += sale.GrandTotal
	}

	report.GrossProfit = report.Revenue - report.CostOfGoods
	for _, expense := range s.expensesByID {
		if expense.SpentAt.Before(from) || expense.SpentAt.After(to) {
			continue
		}
		report.Expenses += expense.Amount
	}

	for _, entry := range byPayment {
		report.ByPayment = append(report.ByPayment, *entry)
	}
	slices.SortFunc(report.ByPayment, func(a, b domain.SalesReportPayment) int {
		return cmpString(a.PaymentMethod, b.PaymentMethod)
	})
	return report, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 200
	}
	result := make([]domain.AuditLog, 0, limit)
	for _, entry := range s.auditLogs {
		if !from.IsZero() && entry.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && entry.CreatedAt.After(to) {
			continue
		}
		result = append(result, entry)
	}
	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" || user.Password == "" {
		return store.ErrValidation
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrConflict
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func validateProduct(product domain.Product) error {
	if strings.TrimSpace(product.SKU) == "" || strings.TrimSpace(product.Name) == "" {
		return store.ErrValidation
	}
	if product.CostPrice < 0 || product.Price < 1 || product.ResellerPrice < 0 {
		return store.ErrValidation
	}
	if product.Stock < 0 {
		return store.ErrValidation
	}
	return nil
}

func cloneSale(sale *domain.Sale) *domain.Sale {
	copySale := *sale
	copySale.Lines = make([]domain.SaleLine, len(sale.Lines))
	copy(copySale.Lines, sale.Lines)
	return &copySale
}

func cloneInvoice(invoice *domain.Invoice) *domain.Invoice {
	copyInvoice := *invoice
	copyInvoice.Lines = make([]domain.InvoiceLine, len(invoice.Lines))
	copy(copyInvoice.Lines, invoice.Lines)
	return &copyInvoice
}

func cmpString(a, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}
