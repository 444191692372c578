package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"javasnursery/backend/internal/cache"
	"javasnursery/backend/internal/cart"
	"javasnursery/backend/internal/domain"
	"javasnursery/backend/internal/store"
	"javasnursery/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const catalogCacheKey = "catalog:products"

type Service struct {
	repo              store.Repository
	catalog           cache.CatalogCache
	catalogTTL        time.Duration
	lowStockThreshold int
}

func New(repo store.Repository, catalog cache.CatalogCache, catalogTTL time.Duration, lowStockThreshold int) *Service {
	if catalog == nil {
		catalog = cache.NoopCatalogCache{}
	}
	if catalogTTL < time.Second {
		catalogTTL = 30 * time.Second
	}
	if lowStockThreshold < 1 {
		lowStockThreshold = 5
	}

	return &Service{
		repo:              repo,
		catalog:           catalog,
		catalogTTL:        catalogTTL,
		lowStockThreshold: lowStockThreshold,
	}
}

// ListCatalog serves the sellable product list, cached for the
// configured TTL. Only in-stock products are sellable; a product that
// drains to zero drops out as soon as the committing sale invalidates
// the cache. Admin views use ListProducts, which is unfiltered.
func (s *Service) ListCatalog(ctx context.Context) ([]domain.Product, error) {
	if cached, found, err := s.catalog.Get(ctx, catalogCacheKey); err == nil && found {
		return cached, nil
	} else if err != nil {
		log.Printf("[service] WARN: catalog cache read failed: %v", err)
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	sellable := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if product.Stock > 0 {
			sellable = append(sellable, product)
		}
	}
	if err := s.catalog.Set(ctx, catalogCacheKey, sellable, s.catalogTTL); err != nil {
		log.Printf("[service] WARN: catalog cache write failed: %v", err)
	}
	return sellable, nil
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	if err := s.catalog.Invalidate(ctx, catalogCacheKey); err != nil {
		log.Printf("[service] WARN: catalog cache invalidation failed: %v", err)
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	if req.SKU == "" || req.Name == "" {
		return domain.Product{}, store.ErrValidation
	}
	if req.CostPrice < 0 || req.Price < 1 || req.ResellerPrice < 0 || req.Stock < 0 {
		return domain.Product{}, store.ErrValidation
	}
	if req.ResellerPrice == 0 {
		req.ResellerPrice = req.Price
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		ID:            xid.New("prd"),
		SKU:           req.SKU,
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		CostPrice:     req.CostPrice,
		Price:         req.Price,
		ResellerPrice: req.ResellerPrice,
		Stock:         req.Stock,
		ImageURL:      req.ImageURL,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateCatalog(ctx)
	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("sku=%s,price=%d,stock=%d", created.SKU, created.Price, created.Stock))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	current, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	product := *current
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.CostPrice != nil {
		product.CostPrice = *req.CostPrice
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.ResellerPrice != nil {
		product.ResellerPrice = *req.ResellerPrice
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateCatalog(ctx)
	s.logAudit(ctx, "product_update", "product", updated.ID, fmt.Sprintf("sku=%s,price=%d,stock=%d", updated.SKU, updated.Price, updated.Stock))
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	s.logAudit(ctx, "product_delete", "product", id, "")
	return nil
}

func (s *Service) SetStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return store.ErrValidation
	}
	if err := s.repo.SetStock(ctx, id, stock); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	s.logAudit(ctx, "stock_set", "product", id, fmt.Sprintf("stock=%d", stock))
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (domain.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Category{}, store.ErrValidation
	}

	created, err := s.repo.CreateCategory(ctx, domain.Category{
		ID:        xid.New("cat"),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.Category{}, err
	}

	s.logAudit(ctx, "category_create", "category", created.ID, "name="+created.Name)
	return *created, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "category_delete", "category", id, "")
	return nil
}

// Quote computes the totals a cashier sees before committing. It has
// no side effects.
func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.QuoteResponse, error) {
	priceMode, err := normalizePriceMode(req.PriceMode)
	if err != nil {
		return domain.QuoteResponse{}, err
	}
	if err := validateDiscount(req.Discount); err != nil {
		return domain.QuoteResponse{}, err
	}

	items := normalizeItems(req.Items)
	if len(items) == 0 {
		return domain.QuoteResponse{}, store.ErrValidation
	}

	basket, err := s.buildCart(ctx, items)
	if err != nil {
		return domain.QuoteResponse{}, err
	}

	subtotal := basket.Subtotal(priceMode)
	discountAmount := cart.DiscountAmount(subtotal, req.Discount)
	return domain.QuoteResponse{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		GrandTotal:     cart.GrandTotal(subtotal, discountAmount),
		ItemCount:      basket.ItemCount(),
	}, nil
}

// Checkout validates the cart, computes totals, and commits the sale
// in one repository transaction. Transient failures are retried a
// bounded number of times; the idempotency key makes a retry after an
// ambiguous failure replay the stored sale instead of double-charging.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = xid.New("idem")
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}
	if !isSupportedPaymentMethod(req.PaymentMethod) {
		return domain.CheckoutResponse{}, store.ErrValidation
	}
	priceMode, err := normalizePriceMode(req.PriceMode)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}
	if err := validateDiscount(req.Discount); err != nil {
		return domain.CheckoutResponse{}, err
	}
	if req.CashReceived < 0 {
		return domain.CheckoutResponse{}, store.ErrValidation
	}

	items := normalizeItems(req.Items)
	if len(items) == 0 {
		return domain.CheckoutResponse{}, store.ErrValidation
	}

	if existing, err := s.repo.FindSaleByIdempotency(ctx, req.IdempotencyKey); err == nil {
		return toCheckoutResponse(existing, true), nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.CheckoutResponse{}, err
	}

	basket, err := s.buildCart(ctx, items)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	subtotal := basket.Subtotal(priceMode)
	discountAmount := cart.DiscountAmount(subtotal, req.Discount)
	grandTotal := cart.GrandTotal(subtotal, discountAmount)

	cashReceived := req.CashReceived
	var change int64
	if req.PaymentMethod == domain.PaymentCash {
		// Cash must cover the total as entered. Zero tendered against a
		// positive total is rejected like any other short payment.
		change, err = cart.Change(cashReceived, grandTotal)
		if err != nil {
			return domain.CheckoutResponse{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
		}
	} else {
		cashReceived = grandTotal
		change = 0
	}

	lines := make([]domain.SaleLine, 0, len(basket.Lines))
	for _, line := range basket.Lines {
		unitPrice := cart.UnitPrice(line.Product, priceMode)
		lines = append(lines, domain.SaleLine{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Qty:         line.Qty,
			UnitPrice:   unitPrice,
			PriceMode:   priceMode,
			CostPrice:   line.Product.CostPrice,
			Subtotal:    int64(line.Qty) * unitPrice,
		})
	}

	actor, _ := ActorFromContext(ctx)
	sale := domain.Sale{
		ID:             xid.New("sale"),
		IdempotencyKey: req.IdempotencyKey,
		PriceMode:      priceMode,
		PaymentMethod:  req.PaymentMethod,
		Subtotal:       subtotal,
		DiscountKind:   req.Discount.Kind,
		DiscountValue:  req.Discount.Value,
		DiscountAmount: discountAmount,
		GrandTotal:     grandTotal,
		CashReceived:   cashReceived,
		Change:         change,
		CashierName:    actor.Username,
		CreatedAt:      time.Now().UTC(),
		Lines:          lines,
	}

	created, err := s.commitWithRetry(ctx, sale)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	s.invalidateCatalog(ctx)
	s.logAudit(ctx, "checkout", "sale", created.ID,
		fmt.Sprintf("total=%d,payment=%s,discount=%d,mode=%s", created.GrandTotal, created.PaymentMethod, created.DiscountAmount, created.PriceMode))

	return toCheckoutResponse(created, created.ID != sale.ID), nil
}

// commitWithRetry retries CommitSale on transient failures only.
// Validation, stock, and conflict errors are final.
func (s *Service) commitWithRetry(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	var created *domain.Sale
	backoff := retry.WithMaxRetries(2, retry.NewExponential(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var commitErr error
		created, commitErr = s.repo.CommitSale(ctx, sale)
		if commitErr == nil {
			return nil
		}
		if isPermanentError(commitErr) {
			return commitErr
		}
		log.Printf("[service] WARN: commit sale %s failed, retrying: %v", sale.ID, commitErr)
		return retry.RetryableError(commitErr)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) LookupSaleByIdempotency(ctx context.Context, idempotencyKey string) (domain.CheckoutResponse, error) {
	if idempotencyKey == "" {
		return domain.CheckoutResponse{}, store.ErrValidation
	}
	sale, err := s.repo.FindSaleByIdempotency(ctx, idempotencyKey)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}
	return toCheckoutResponse(sale, true), nil
}

func (s *Service) ListSales(ctx context.Context, date string, limit int) ([]domain.Sale, error) {
	from, to, err := dayRange(date)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, from, to, limit)
}

// Receipt renders the printable receipt text for a sale, plus a
// wa.me share link so the cashier can send it as a WhatsApp message.
func (s *Service) Receipt(ctx context.Context, saleID string) (domain.ReceiptResponse, error) {
	saleID = strings.TrimSpace(saleID)
	if saleID == "" {
		return domain.ReceiptResponse{}, store.ErrValidation
	}
	sale, err := s.repo.FindSaleByID(ctx, saleID)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.ReceiptResponse{}, err
	}
	storeName := "Javas Nursery"
	storeAddress := ""
	if settings != nil {
		storeName = settings.StoreName
		storeAddress = settings.StoreAddress
	}

	lines := []string{
		"*" + storeName + "*",
	}
	if storeAddress != "" {
		lines = append(lines, storeAddress)
	}
	lines = append(lines,
		"========================",
		"Nota: "+sale.ID,
		"Tanggal: "+sale.CreatedAt.Format("2006-01-02 15:04"),
		"------------------------",
	)
	for _, line := range sale.Lines {
		lines = append(lines, fmt.Sprintf("%s x%d", line.ProductName, line.Qty))
		lines = append(lines, "  "+formatRupiah(line.Subtotal))
	}
	lines = append(lines,
		"------------------------",
		"Subtotal : "+formatRupiah(sale.Subtotal),
		"Diskon   : "+formatRupiah(sale.DiscountAmount),
		"Total    : "+formatRupiah(sale.GrandTotal),
		fmt.Sprintf("Bayar (%s) : %s", sale.PaymentMethod, formatRupiah(sale.CashReceived)),
		"Kembali  : "+formatRupiah(sale.Change),
		"========================",
		"Terima kasih!",
	)

	text := strings.Join(lines, "\n")
	return domain.ReceiptResponse{
		SaleID:       sale.ID,
		Text:         text,
		WhatsAppLink: "https://wa.me/?text=" + url.QueryEscape(text),
	}, nil
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Amount < 1 {
		return domain.Expense{}, store.ErrValidation
	}

	spentAt := time.Now().UTC()
	if strings.TrimSpace(req.SpentAt) != "" {
		parsed, err := time.Parse("2006-01-02", req.SpentAt)
		if err != nil {
			return domain.Expense{}, store.ErrValidation
		}
		spentAt = parsed.UTC()
	}

	actor, _ := ActorFromContext(ctx)
	created, err := s.repo.CreateExpense(ctx, domain.Expense{
		ID:         xid.New("exp"),
		Name:       req.Name,
		Amount:     req.Amount,
		Category:   strings.TrimSpace(req.Category),
		Note:       strings.TrimSpace(req.Note),
		SpentAt:    spentAt,
		RecordedBy: actor.Username,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return domain.Expense{}, err
	}

	s.logAudit(ctx, "expense_create", "expense", created.ID, fmt.Sprintf("amount=%d,category=%s", created.Amount, created.Category))
	return *created, nil
}

func (s *Service) ListExpenses(ctx context.Context, filter domain.ExpenseFilter, limit int) ([]domain.Expense, error) {
	if filter.Month != "" {
		if _, err := time.Parse("2006-01", filter.Month); err != nil {
			return nil, store.ErrValidation
		}
	}
	return s.repo.ListExpenses(ctx, filter, limit)
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "expense_delete", "expense", id, "")
	return nil
}

func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Settings{StoreName: "Javas Nursery"}, nil
		}
		return domain.Settings{}, err
	}
	return *settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, req domain.SettingsUpdateRequest) (domain.Settings, error) {
	current, err := s.GetSettings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	if req.StoreName != nil {
		current.StoreName = strings.TrimSpace(*req.StoreName)
	}
	if req.StoreAddress != nil {
		current.StoreAddress = strings.TrimSpace(*req.StoreAddress)
	}
	if req.StoreWhatsApp != nil {
		current.StoreWhatsApp = strings.TrimSpace(*req.StoreWhatsApp)
	}
	if req.LogoURL != nil {
		current.LogoURL = strings.TrimSpace(*req.LogoURL)
	}
	if current.StoreName == "" {
		return domain.Settings{}, store.ErrValidation
	}

	updated, err := s.repo.UpdateSettings(ctx, current)
	if err != nil {
		return domain.Settings{}, err
	}

	s.logAudit(ctx, "settings_update", "settings", "", "name="+updated.StoreName)
	return *updated, nil
}

// DashboardSummary is the landing-page snapshot: today's numbers, the
// products running low, and the latest sales.
func (s *Service) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	sales, err := s.repo.ListSales(ctx, from, to, 500)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	var revenue int64
	for _, sale := range sales {
		revenue += sale.GrandTotal
	}

	lowStock, err := s.repo.ListLowStockProducts(ctx, s.lowStockThreshold)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	pending, err := s.repo.CountPendingInvoices(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	recent := sales
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return domain.DashboardSummary{
		Date:             from.Format("2006-01-02"),
		Revenue:          revenue,
		Transactions:     int64(len(sales)),
		PendingInvoices:  pending,
		LowStockProducts: lowStock,
		RecentSales:      recent,
	}, nil
}

func (s *Service) SalesReport(ctx context.Context, fromDate string, toDate string) (domain.SalesReport, error) {
	from, _, err := dayRange(fromDate)
	if err != nil {
		return domain.SalesReport{}, err
	}
	_, to, err := dayRange(toDate)
	if err != nil {
		return domain.SalesReport{}, err
	}
	if !from.Before(to) {
		return domain.SalesReport{}, store.ErrValidation
	}
	return s.repo.GetSalesReport(ctx, from, to)
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrValidation
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

func (s *Service) buildCart(ctx context.Context, items []domain.CartItem) (*cart.Cart, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	basket := &cart.Cart{Lines: make([]cart.Line, 0, len(items))}
	for _, item := range items {
		product, exists := products[item.ProductID]
		if !exists {
			return nil, fmt.Errorf("%w: product %s unavailable", store.ErrValidation, item.ProductID)
		}
		if product.Stock < item.Qty {
			return nil, fmt.Errorf("%w: %s has %d left", store.ErrInsufficientStock, product.Name, product.Stock)
		}
		basket.Lines = append(basket.Lines, cart.Line{Product: product, Qty: item.Qty})
	}
	return basket, nil
}

func toCheckoutResponse(sale *domain.Sale, duplicate bool) domain.CheckoutResponse {
	return domain.CheckoutResponse{
		SaleID:         sale.ID,
		PriceMode:      sale.PriceMode,
		PaymentMethod:  sale.PaymentMethod,
		Subtotal:       sale.Subtotal,
		DiscountAmount: sale.DiscountAmount,
		GrandTotal:     sale.GrandTotal,
		CashReceived:   sale.CashReceived,
		Change:         sale.Change,
		Lines:          sale.Lines,
		Duplicate:      duplicate,
		CreatedAt:      sale.CreatedAt.Format(time.RFC3339),
	}
}

func normalizeItems(items []domain.CartItem) []domain.CartItem {
	agg := make(map[string]int, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Qty < 1 {
			continue
		}
		if _, seen := agg[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		agg[item.ProductID] += item.Qty
	}

	normalized := make([]domain.CartItem, 0, len(agg))
	for _, id := range order {
		normalized = append(normalized, domain.CartItem{ProductID: id, Qty: agg[id]})
	}
	return normalized
}

func normalizePriceMode(mode string) (string, error) {
	switch mode {
	case "", domain.PriceModeStandard:
		return domain.PriceModeStandard, nil
	case domain.PriceModeReseller:
		return domain.PriceModeReseller, nil
	default:
		return "", store.ErrValidation
	}
}

func validateDiscount(discount domain.Discount) error {
	if discount.Value < 0 {
		return store.ErrValidation
	}
	switch discount.Kind {
	case "", domain.DiscountKindFixed, domain.DiscountKindPercent:
		return nil
	default:
		return store.ErrValidation
	}
}

func isSupportedPaymentMethod(method string) bool {
	switch method {
	case domain.PaymentCash, domain.PaymentQRIS, domain.PaymentTransfer:
		return true
	}
	return false
}

func isPermanentError(err error) bool {
	return errors.Is(err, store.ErrValidation) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrInsufficientStock) ||
		errors.Is(err, store.ErrConflict)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

func dayRange(date string) (time.Time, time.Time, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		now := time.Now().UTC()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return time.Time{}, time.Time{}, store.ErrValidation
		}
		day = parsed.UTC()
	}
	return day, day.Add(24 * time.Hour), nil
}

func formatRupiah(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if negative {
		return "-Rp" + b.String()
	}
	return "Rp" + b.String()
}
