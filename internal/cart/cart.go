package cart

import (
	"errors"
	"fmt"

	"javasnursery/backend/internal/domain"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// Line is a cart row bound to a product snapshot. Stock is the stock
// observed when the product was added; the authoritative check happens
// again at commit time.
type Line struct {
	Product domain.Product
	Qty     int
}

type Cart struct {
	Lines []Line
}

// Add puts one unit of the product in the cart. An existing line is
// incremented; a new product gets a line with qty 1. Going past the
// observed stock fails and leaves the cart unchanged.
func (c *Cart) Add(product domain.Product) error {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == product.ID {
			if c.Lines[i].Qty+1 > product.Stock {
				return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, product.Name, product.Stock)
			}
			c.Lines[i].Qty++
			return nil
		}
	}
	if product.Stock < 1 {
		return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, product.Name, product.Stock)
	}
	c.Lines = append(c.Lines, Line{Product: product, Qty: 1})
	return nil
}

// SetQuantity replaces a line's quantity. Anything below 1 removes the
// line; anything above the observed stock fails and leaves the cart
// unchanged. Unknown products are a no-op.
func (c *Cart) SetQuantity(productID string, qty int) error {
	for i := range c.Lines {
		if c.Lines[i].Product.ID != productID {
			continue
		}
		if qty < 1 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
		if qty > c.Lines[i].Product.Stock {
			return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, c.Lines[i].Product.Name, c.Lines[i].Product.Stock)
		}
		c.Lines[i].Qty = qty
		return nil
	}
	return nil
}

func (c *Cart) ItemCount() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Qty
	}
	return total
}

// UnitPrice picks the product price for the active mode. Every line in
// a cart uses the same mode.
func UnitPrice(product domain.Product, priceMode string) int64 {
	if priceMode == domain.PriceModeReseller {
		return product.ResellerPrice
	}
	return product.Price
}

func (c *Cart) Subtotal(priceMode string) int64 {
	var subtotal int64
	for _, line := range c.Lines {
		subtotal += int64(line.Qty) * UnitPrice(line.Product, priceMode)
	}
	return subtotal
}

// DiscountAmount converts the entered discount into rupiah. Fixed
// discounts use the raw value; percentages are taken from the
// subtotal. The raw value survives kind switches unchanged.
func DiscountAmount(subtotal int64, discount domain.Discount) int64 {
	if discount.Value <= 0 {
		return 0
	}
	if discount.Kind == domain.DiscountKindPercent {
		return subtotal * discount.Value / 100
	}
	return discount.Value
}

// GrandTotal never goes below zero even when the discount exceeds the
// subtotal.
func GrandTotal(subtotal int64, discountAmount int64) int64 {
	total := subtotal - discountAmount
	if total < 0 {
		return 0
	}
	return total
}

// Change is what the cashier hands back on a cash payment.
func Change(cashReceived int64, grandTotal int64) (int64, error) {
	if cashReceived < grandTotal {
		return 0, fmt.Errorf("cash received %d is less than total %d", cashReceived, grandTotal)
	}
	return cashReceived - grandTotal, nil
}
