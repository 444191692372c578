package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"javasnursery/backend/internal/cache"
	"javasnursery/backend/internal/domain"
	"javasnursery/backend/internal/store"
	"javasnursery/backend/internal/store/memory"
)

func newTestService() *Service {
	return New(memory.NewSeeded(), cache.NoopCatalogCache{}, 5*time.Second, 5)
}

func testCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "cashier", Role: "cashier"})
}

func TestQuoteComputesPercentageDiscount(t *testing.T) {
	svc := newTestService()

	resp, err := svc.Quote(testCtx(), domain.QuoteRequest{
		PriceMode: domain.PriceModeStandard,
		Discount:  domain.Discount{Kind: domain.DiscountKindPercent, Value: 10},
		Items: []domain.CartItem{
			{ProductID: "prd-monstera-01", Qty: 2},
		},
	})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if resp.Subtotal != 110000 {
		t.Fatalf("expected subtotal 110000, got %d", resp.Subtotal)
	}
	if resp.DiscountAmount != 11000 {
		t.Fatalf("expected discount 11000, got %d", resp.DiscountAmount)
	}
	if resp.GrandTotal != 99000 {
		t.Fatalf("expected grand total 99000, got %d", resp.GrandTotal)
	}
}

func TestCheckoutDecrementsStockPerLine(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	before, err := svc.GetProduct(ctx, "prd-monstera-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		IdempotencyKey: "idem-stock",
		PaymentMethod:  domain.PaymentCash,
		CashReceived:   200000,
		Items: []domain.CartItem{
			{ProductID: "prd-monstera-01", Qty: 2},
			{ProductID: "prd-sekam-01", Qty: 3},
		},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	after, err := svc.GetProduct(ctx, "prd-monstera-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Stock != before.Stock-2 {
		t.Fatalf("expected stock %d, got %d", before.Stock-2, after.Stock)
	}

	var lineSum int64
	for _, line := range resp.Lines {
		lineSum += line.Subtotal
	}
	if lineSum != resp.Subtotal {
		t.Fatalf("line subtotals %d do not add up to sale subtotal %d", lineSum, resp.Subtotal)
	}
}

func TestCheckoutCashChange(t *testing.T) {
	svc := newTestService()

	resp, err := svc.Checkout(testCtx(), domain.CheckoutRequest{
		IdempotencyKey: "idem-change",
		PaymentMethod:  domain.PaymentCash,
		CashReceived:   100000,
		Discount:       domain.Discount{Kind: domain.DiscountKindPercent, Value: 10},
		Items: []domain.CartItem{
			{ProductID: "prd-monstera-01", Qty: 2},
		},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if resp.GrandTotal != 99000 {
		t.Fatalf("expected grand total 99000, got %d", resp.GrandTotal)
	}
	if resp.Change != 1000 {
		t.Fatalf("expected change 1000, got %d", resp.Change)
	}
}

func TestCheckoutRejectsInsufficientCash(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	before, err := svc.GetProduct(ctx, "prd-monstera-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	_, err = svc.Checkout(ctx, domain.CheckoutRequest{
		IdempotencyKey: "idem-short-cash",
		PaymentMethod:  domain.PaymentCash,
		CashReceived:   50000,
		Items: []domain.CartItem{
			{ProductID: "prd-monstera-01", Qty: 2},
		},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	after, err := svc.GetProduct(ctx, "prd-monstera-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Stock != before.Stock {
		t.Fatalf("stock changed after rejected checkout: %d -> %d", before.Stock, after.Stock)
	}

	if _, err := svc.LookupSaleByIdempotency(ctx, "idem-short-cash"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no sale persisted, got %v", err)
	}
}

func TestCheckoutRejectsZeroCashTendered(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	before, err := svc.GetProduct(ctx, "prd-monstera-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	_, err = svc.Checkout(ctx, domain.CheckoutRequest{
		IdempotencyKey: "idem-zero-cash",
		PaymentMethod:  domain.PaymentCash,
		CashReceived:   0,
		Items: []domain.CartItem{
			{ProductID: "prd-monstera-01", Qty: 2},
		},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for zero cash against positive total, got %v", err)
	}

	after, err := svc.GetProduct(ctx, "prd-monstera-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Stock != before.Stock {
		t.Fatalf("stock changed after rejected checkout: %d -> %d", before.Stock, after.Stock)
	}

	if _, err := svc.LookupSaleByIdempotency(ctx, "idem-zero-cash"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no sale persisted, got %v", err)
	}
}

func TestListCatalogExcludesZeroStockProducts(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	if err := svc.SetStock(ctx, "prd-monstera-01", 0); err != nil {
		t.Fatalf("set stock: %v", err)
	}

	catalog, err := svc.ListCatalog(ctx)
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	for _, p := range catalog {
		if p.ID == "prd-monstera-01" {
			t.Fatalf("zero-stock product still in sellable catalog")
		}
	}
	if len(catalog) == 0 {
		t.Fatal("expected remaining in-stock products in catalog")
	}

	// The admin stock view keeps showing the product so it can be restocked.
	products, err := svc.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	found := false
	for _, p := range products {
		if p.ID == "prd-monstera-01" {
			found = true
		}
	}
	if !found {
		t.Fatal("zero-stock product missing from unfiltered product list")
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc := newTestService()

	_, err := svc.Checkout(testCtx(), domain.CheckoutRequest{
		IdempotencyKey: "idem-empty",
		PaymentMethod:  domain.PaymentCash,
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckoutRejectsOversell(t *testing.T) {
	svc := newTestService()

	_, err := svc.Checkout(testCtx(), domain.CheckoutRequest{
		IdempotencyKey: "idem-oversell",
		PaymentMethod:  domain.PaymentCash,
		CashReceived:   10000000,
		Items: []domain.CartItem{
			{ProductID: "prd-monstera-01", Qty: 999},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestCheckoutIdempotentReplay(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	req := domain.CheckoutRequest{
		IdempotencyKey: "idem-replay",
		PaymentMethod:  domain.PaymentQRIS,
		Items: []domain.CartItem{
			{ProductID: "prd-sekam-01", Qty: 2},
		},
	}
	first, err := svc.Checkout(ctx, req)
	if err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}
	if first.Duplicate {
		t.Fatal("first checkout flagged as duplicate")
	}

	stockAfterFirst, err := svc.GetProduct(ctx, "prd-sekam-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	second, err := svc.Checkout(ctx, req)
	if err != nil {
		t.Fatalf("replay checkout failed: %v", err)
	}
	if !second.Duplicate {
		t.Fatal("expected replay to be flagged duplicate")
	}
	if second.SaleID != first.SaleID {
		t.Fatalf("replay returned different sale: %s vs %s", second.SaleID, first.SaleID)
	}

	stockAfterReplay, err := svc.GetProduct(ctx, "prd-sekam-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if stockAfterReplay.Stock != stockAfterFirst.Stock {
		t.Fatalf("replay decremented stock again: %d -> %d", stockAfterFirst.Stock, stockAfterReplay.Stock)
	}
}

func TestCheckoutResellerMode(t *testing.T) {
	svc := newTestService()

	resp, err := svc.Checkout(testCtx(), domain.CheckoutRequest{
		IdempotencyKey: "idem-reseller",
		PriceMode:      domain.PriceModeReseller,
		PaymentMethod:  domain.PaymentTransfer,
		Items: []domain.CartItem{
			{ProductID: "prd-monstera-01", Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if resp.Subtotal != 45000 {
		t.Fatalf("expected reseller subtotal 45000, got %d", resp.Subtotal)
	}
	for _, line := range resp.Lines {
		if line.PriceMode != domain.PriceModeReseller {
			t.Fatalf("expected reseller price mode on line %s, got %q", line.ProductID, line.PriceMode)
		}
	}
}

func TestCheckoutDiscountFloorsAtZero(t *testing.T) {
	svc := newTestService()

	resp, err := svc.Checkout(testCtx(), domain.CheckoutRequest{
		IdempotencyKey: "idem-floor",
		PaymentMethod:  domain.PaymentCash,
		Discount:       domain.Discount{Kind: domain.DiscountKindFixed, Value: 9999999},
		Items: []domain.CartItem{
			{ProductID: "prd-pot20-01", Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if resp.GrandTotal != 0 {
		t.Fatalf("expected grand total 0, got %d", resp.GrandTotal)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	before, err := svc.GetProduct(ctx, "prd-mangga-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	created, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		CustomerName:     "Bu Sari",
		CustomerWhatsApp: "6281234567890",
		DueDate:          time.Now().UTC().AddDate(0, 0, 14).Format("2006-01-02"),
		Items: []domain.CartItem{
			{ProductID: "prd-mangga-01", Qty: 3},
		},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	if created.Invoice.Status != domain.InvoiceStatusPending {
		t.Fatalf("expected pending status, got %s", created.Invoice.Status)
	}
	if created.Invoice.Total != 3*65000 {
		t.Fatalf("expected total %d, got %d", 3*65000, created.Invoice.Total)
	}

	reserved, err := svc.GetProduct(ctx, "prd-mangga-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if reserved.Stock != before.Stock-3 {
		t.Fatalf("expected stock %d after reserve, got %d", before.Stock-3, reserved.Stock)
	}

	paid, err := svc.MarkInvoicePaid(ctx, created.Invoice.ID)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Invoice.Status != domain.InvoiceStatusPaid {
		t.Fatalf("expected paid status, got %s", paid.Invoice.Status)
	}

	if _, err := svc.MarkInvoicePaid(ctx, created.Invoice.ID); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on second mark paid, got %v", err)
	}
}

func TestInvoiceReversalRestocksOnce(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	before, err := svc.GetProduct(ctx, "prd-jambu-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	created, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		CustomerName: "Pak Budi",
		DueDate:      time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
		Items: []domain.CartItem{
			{ProductID: "prd-jambu-01", Qty: 4},
		},
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}

	if _, err := svc.ReverseInvoice(ctx, created.Invoice.ID); err != nil {
		t.Fatalf("reverse invoice failed: %v", err)
	}

	restored, err := svc.GetProduct(ctx, "prd-jambu-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if restored.Stock != before.Stock {
		t.Fatalf("expected stock %d after reversal, got %d", before.Stock, restored.Stock)
	}

	if _, err := svc.ReverseInvoice(ctx, created.Invoice.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on second reversal, got %v", err)
	}

	again, err := svc.GetProduct(ctx, "prd-jambu-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if again.Stock != before.Stock {
		t.Fatalf("second reversal changed stock: %d -> %d", before.Stock, again.Stock)
	}
}

func TestReceiptContainsTotals(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	resp, err := svc.Checkout(ctx, domain.CheckoutRequest{
		IdempotencyKey: "idem-receipt",
		PaymentMethod:  domain.PaymentCash,
		CashReceived:   60000,
		Items: []domain.CartItem{
			{ProductID: "prd-monstera-01", Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	receipt, err := svc.Receipt(ctx, resp.SaleID)
	if err != nil {
		t.Fatalf("receipt failed: %v", err)
	}
	if receipt.Text == "" {
		t.Fatal("expected receipt text")
	}
	if receipt.WhatsAppLink == "" {
		t.Fatal("expected whatsapp link")
	}
}

func TestDashboardSummaryCountsTodaySales(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{
		IdempotencyKey: "idem-dash",
		PaymentMethod:  domain.PaymentCash,
		CashReceived:   100000,
		Items: []domain.CartItem{
			{ProductID: "prd-sekam-01", Qty: 1},
		},
	}); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	summary, err := svc.DashboardSummary(ctx)
	if err != nil {
		t.Fatalf("dashboard summary failed: %v", err)
	}
	if summary.Transactions != 1 {
		t.Fatalf("expected 1 transaction, got %d", summary.Transactions)
	}
	if summary.Revenue != 15000 {
		t.Fatalf("expected revenue 15000, got %d", summary.Revenue)
	}
}

func TestExpenseCreateAndFilter(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	created, err := svc.CreateExpense(ctx, domain.ExpenseCreateRequest{
		Name:     "Beli polybag",
		Amount:   75000,
		Category: "operasional",
		SpentAt:  "2026-08-01",
	})
	if err != nil {
		t.Fatalf("create expense failed: %v", err)
	}
	if created.RecordedBy != "cashier" {
		t.Fatalf("expected recorded_by cashier, got %s", created.RecordedBy)
	}

	expenses, err := svc.ListExpenses(ctx, domain.ExpenseFilter{Month: "2026-08"}, 10)
	if err != nil {
		t.Fatalf("list expenses failed: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expenses))
	}

	none, err := svc.ListExpenses(ctx, domain.ExpenseFilter{Month: "2026-07"}, 10)
	if err != nil {
		t.Fatalf("list expenses failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no expenses for other month, got %d", len(none))
	}
}

func TestSettingsUpdate(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	name := "Javas Nursery Cabang Timur"
	updated, err := svc.UpdateSettings(ctx, domain.SettingsUpdateRequest{StoreName: &name})
	if err != nil {
		t.Fatalf("update settings failed: %v", err)
	}
	if updated.StoreName != name {
		t.Fatalf("expected store name %q, got %q", name, updated.StoreName)
	}

	fetched, err := svc.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings failed: %v", err)
	}
	if fetched.StoreName != name {
		t.Fatalf("expected persisted store name %q, got %q", name, fetched.StoreName)
	}
}

func TestAuditLogWrittenOnCheckout(t *testing.T) {
	svc := newTestService()
	ctx := WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})

	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{
		IdempotencyKey: "idem-audit",
		PaymentMethod:  domain.PaymentCash,
		CashReceived:   100000,
		Items: []domain.CartItem{
			{ProductID: "prd-pot20-01", Qty: 1},
		},
	}); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	logs, err := svc.ListAuditLogs(ctx, "", 10)
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	found := false
	for _, entry := range logs {
		if entry.Action == "checkout" && entry.ActorUsername == "admin" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected checkout audit entry for admin")
	}
}
