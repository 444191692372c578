package store

import (
	"context"
	"errors"
	"time"

	"javasnursery/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
)

type Repository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, stock int) error
	BulkImportProducts(ctx context.Context, products []domain.Product) (int, error)
	ListLowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error)

	FindSaleByIdempotency(ctx context.Context, key string) (*domain.Sale, error)
	FindSaleByID(ctx context.Context, id string) (*domain.Sale, error)
	CommitSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	ListSales(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.Sale, error)

	CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)
	GetInvoiceByID(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, limit int) ([]domain.Invoice, error)
	MarkInvoicePaid(ctx context.Context, id string) (*domain.Invoice, error)
	ReverseInvoice(ctx context.Context, id string) (*domain.Invoice, error)

	CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter, limit int) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	SumExpenses(ctx context.Context, from time.Time, to time.Time) (int64, error)

	GetSettings(ctx context.Context) (*domain.Settings, error)
	UpdateSettings(ctx context.Context, settings domain.Settings) (*domain.Settings, error)

	CountPendingInvoices(ctx context.Context) (int64, error)
	GetSalesReport(ctx context.Context, from time.Time, to time.Time) (domain.SalesReport, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
