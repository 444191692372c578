package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"javasnursery/backend/internal/cart"
	"javasnursery/backend/internal/domain"
	"javasnursery/backend/internal/store"
	"javasnursery/backend/internal/xid"
)

// CreateInvoice issues a deferred-payment invoice. Stock is reserved
// immediately, in the same transaction that writes the invoice, so a
// pending invoice can never oversell the shelf. Invoices always use
// the standard price.
func (s *Service) CreateInvoice(ctx context.Context, req domain.InvoiceCreateRequest) (domain.InvoiceResponse, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return domain.InvoiceResponse{}, store.ErrValidation
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return domain.InvoiceResponse{}, store.ErrValidation
	}

	items := normalizeItems(req.Items)
	if len(items) == 0 {
		return domain.InvoiceResponse{}, store.ErrValidation
	}

	basket, err := s.buildCart(ctx, items)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	lines := make([]domain.InvoiceLine, 0, len(basket.Lines))
	var total int64
	for _, line := range basket.Lines {
		unitPrice := cart.UnitPrice(line.Product, domain.PriceModeStandard)
		subtotal := int64(line.Qty) * unitPrice
		lines = append(lines, domain.InvoiceLine{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Qty:         line.Qty,
			UnitPrice:   unitPrice,
			Subtotal:    subtotal,
		})
		total += subtotal
	}

	created, err := s.repo.CreateInvoice(ctx, domain.Invoice{
		ID:               xid.New("inv"),
		CustomerName:     req.CustomerName,
		CustomerWhatsApp: strings.TrimSpace(req.CustomerWhatsApp),
		DueDate:          dueDate.UTC(),
		DueDateNotes:     strings.TrimSpace(req.DueDateNotes),
		Status:           domain.InvoiceStatusPending,
		Total:            total,
		CreatedAt:        time.Now().UTC(),
		Lines:            lines,
	})
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	s.invalidateCatalog(ctx)
	s.logAudit(ctx, "invoice_create", "invoice", created.ID,
		fmt.Sprintf("customer=%s,total=%d,due=%s", created.CustomerName, created.Total, created.DueDate.Format("2006-01-02")))
	return domain.InvoiceResponse{Invoice: *created}, nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (domain.InvoiceResponse, error) {
	invoice, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}
	return domain.InvoiceResponse{Invoice: *invoice}, nil
}

func (s *Service) ListInvoices(ctx context.Context, limit int) (domain.InvoiceListResponse, error) {
	invoices, err := s.repo.ListInvoices(ctx, limit)
	if err != nil {
		return domain.InvoiceListResponse{}, err
	}
	return domain.InvoiceListResponse{Invoices: invoices}, nil
}

// MarkInvoicePaid moves a pending invoice to paid. Any other starting
// state is a conflict.
func (s *Service) MarkInvoicePaid(ctx context.Context, id string) (domain.InvoiceResponse, error) {
	invoice, err := s.repo.MarkInvoicePaid(ctx, id)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	s.logAudit(ctx, "invoice_paid", "invoice", invoice.ID, fmt.Sprintf("total=%d", invoice.Total))
	return domain.InvoiceResponse{Invoice: *invoice}, nil
}

// ReverseInvoice cancels an invoice and puts every reserved unit back
// on the shelf. The repository deletes the invoice in the same
// transaction, so the restock can never run twice.
func (s *Service) ReverseInvoice(ctx context.Context, id string) (domain.InvoiceResponse, error) {
	invoice, err := s.repo.ReverseInvoice(ctx, id)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	s.invalidateCatalog(ctx)
	s.logAudit(ctx, "invoice_reverse", "invoice", invoice.ID,
		fmt.Sprintf("customer=%s,total=%d,status=%s", invoice.CustomerName, invoice.Total, invoice.Status))
	return domain.InvoiceResponse{Invoice: *invoice}, nil
}
