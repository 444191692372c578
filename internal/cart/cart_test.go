package cart

import (
	"errors"
	"testing"

	"javasnursery/backend/internal/domain"
)

func testProduct(id string, price int64, stock int) domain.Product {
	return domain.Product{
		ID:            id,
		SKU:           "SKU-" + id,
		Name:          "Product " + id,
		Price:         price,
		ResellerPrice: price - 5000,
		Stock:         stock,
	}
}

func TestAddIncrementsExistingLine(t *testing.T) {
	c := &Cart{}
	p := testProduct("p1", 55000, 10)
	if err := c.Add(p); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(p); err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(c.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Lines))
	}
	if c.Lines[0].Qty != 2 {
		t.Fatalf("expected qty 2, got %d", c.Lines[0].Qty)
	}
}

func TestAddRejectsBeyondStock(t *testing.T) {
	c := &Cart{}
	p := testProduct("p1", 55000, 1)
	if err := c.Add(p); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := c.Add(p)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if c.Lines[0].Qty != 1 {
		t.Fatalf("cart changed after rejected add: qty %d", c.Lines[0].Qty)
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	c := &Cart{}
	if err := c.Add(testProduct("p1", 55000, 10)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.SetQuantity("p1", 0); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if len(c.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(c.Lines))
	}
}

func TestSetQuantityStockGuardLeavesCartUnchanged(t *testing.T) {
	c := &Cart{}
	if err := c.Add(testProduct("p1", 55000, 3)); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := c.SetQuantity("p1", 4)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if c.Lines[0].Qty != 1 {
		t.Fatalf("expected qty 1 after rejected update, got %d", c.Lines[0].Qty)
	}
}

func TestPercentageDiscountTotals(t *testing.T) {
	c := &Cart{}
	p := testProduct("p1", 55000, 10)
	for i := 0; i < 2; i++ {
		if err := c.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	subtotal := c.Subtotal(domain.PriceModeStandard)
	if subtotal != 110000 {
		t.Fatalf("expected subtotal 110000, got %d", subtotal)
	}
	discount := DiscountAmount(subtotal, domain.Discount{Kind: domain.DiscountKindPercent, Value: 10})
	if discount != 11000 {
		t.Fatalf("expected discount 11000, got %d", discount)
	}
	total := GrandTotal(subtotal, discount)
	if total != 99000 {
		t.Fatalf("expected grand total 99000, got %d", total)
	}

	change, err := Change(100000, total)
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if change != 1000 {
		t.Fatalf("expected change 1000, got %d", change)
	}
}

func TestChangeRejectsInsufficientCash(t *testing.T) {
	if _, err := Change(98000, 99000); err == nil {
		t.Fatal("expected error for cash below total")
	}
}

func TestGrandTotalFloorsAtZero(t *testing.T) {
	if total := GrandTotal(50000, 60000); total != 0 {
		t.Fatalf("expected 0, got %d", total)
	}
}

func TestZeroDiscountIdentity(t *testing.T) {
	if amount := DiscountAmount(110000, domain.Discount{}); amount != 0 {
		t.Fatalf("expected 0, got %d", amount)
	}
	if total := GrandTotal(110000, 0); total != 110000 {
		t.Fatalf("expected 110000, got %d", total)
	}
}

// The entered discount value is reinterpreted raw when the kind
// changes: 10 means Rp10 as fixed and 10% as percentage.
func TestDiscountKindSwitchKeepsRawValue(t *testing.T) {
	subtotal := int64(110000)
	asFixed := DiscountAmount(subtotal, domain.Discount{Kind: domain.DiscountKindFixed, Value: 10})
	if asFixed != 10 {
		t.Fatalf("expected fixed discount 10, got %d", asFixed)
	}
	asPercent := DiscountAmount(subtotal, domain.Discount{Kind: domain.DiscountKindPercent, Value: 10})
	if asPercent != 11000 {
		t.Fatalf("expected percentage discount 11000, got %d", asPercent)
	}
}

func TestResellerModeUsesResellerPrice(t *testing.T) {
	c := &Cart{}
	if err := c.Add(testProduct("p1", 55000, 10)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if subtotal := c.Subtotal(domain.PriceModeReseller); subtotal != 50000 {
		t.Fatalf("expected reseller subtotal 50000, got %d", subtotal)
	}
}

func TestItemCount(t *testing.T) {
	c := &Cart{}
	p1 := testProduct("p1", 55000, 10)
	p2 := testProduct("p2", 25000, 10)
	for i := 0; i < 2; i++ {
		if err := c.Add(p1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := c.Add(p2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if count := c.ItemCount(); count != 3 {
		t.Fatalf("expected item count 3, got %d", count)
	}
}
