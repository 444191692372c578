package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"javasnursery/backend/internal/domain"
	"javasnursery/backend/internal/store"
	"javasnursery/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	if category.Name == "" {
		return nil, store.ErrValidation
	}
	if category.ID == "" {
		category.ID = xid.New("cat")
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, created_at)
		VALUES ($1,$2,$3)
	`, category.ID, category.Name, category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := category
	return &created, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, name, COALESCE(category_id,''), cost_price, price, reseller_price, stock, COALESCE(image_url,''), created_at
		FROM products
		ORDER BY category_id, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sku, name, COALESCE(category_id,''), cost_price, price, reseller_price, stock, COALESCE(image_url,''), created_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.CostPrice, &p.Price, &p.ResellerPrice, &p.Stock, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, name, COALESCE(category_id,''), cost_price, price, reseller_price, stock, COALESCE(image_url,''), created_at
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, name, category_id, cost_price, price, reseller_price, stock, image_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
	`, product.ID, product.SKU, product.Name, nullIfEmpty(product.CategoryID), product.CostPrice,
		product.Price, product.ResellerPrice, product.Stock, nullIfEmpty(product.ImageURL), product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET sku = $2, name = $3, category_id = $4, cost_price = $5, price = $6,
			reseller_price = $7, stock = $8, image_url = $9, updated_at = now()
		WHERE id = $1
	`, product.ID, product.SKU, product.Name, nullIfEmpty(product.CategoryID), product.CostPrice,
		product.Price, product.ResellerPrice, product.Stock, nullIfEmpty(product.ImageURL))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET stock = $2, updated_at = now()
		WHERE id = $1
	`, id, stock)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// BulkImportProducts inserts every row inside one transaction so a
// re-run after a failure never leaves half a file behind.
func (s *Store) BulkImportProducts(ctx context.Context, products []domain.Product) (int, error) {
	if len(products) == 0 {
		return 0, store.ErrValidation
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, err
	}
	defer func() { _ = pgTx.Rollback() }()

	now := time.Now().UTC()
	for _, product := range products {
		if err := validateProduct(product); err != nil {
			return 0, err
		}
		if product.ID == "" {
			product.ID = xid.New("prd")
		}
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO products (id, sku, name, category_id, cost_price, price, reseller_price, stock, image_url, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
		`, product.ID, product.SKU, product.Name, nullIfEmpty(product.CategoryID), product.CostPrice,
			product.Price, product.ResellerPrice, product.Stock, nullIfEmpty(product.ImageURL), now)
		if err != nil {
			if isUniqueViolation(err) {
				return 0, store.ErrConflict
			}
			return 0, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return 0, err
	}
	return len(products), nil
}

func (s *Store) ListLowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, name, COALESCE(category_id,''), cost_price, price, reseller_price, stock, COALESCE(image_url,''), created_at
		FROM products
		WHERE stock <= $1
		ORDER BY stock, name
	`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 16)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) FindSaleByIdempotency(ctx context.Context, key string) (*domain.Sale, error) {
	return s.findSale(ctx, "idempotency_key", key)
}

func (s *Store) FindSaleByID(ctx context.Context, id string) (*domain.Sale, error) {
	return s.findSale(ctx, "id", id)
}

func (s *Store) findSale(ctx context.Context, column string, value string) (*domain.Sale, error) {
	if column != "id" && column != "idempotency_key" {
		return nil, fmt.Errorf("unsupported lookup column")
	}

	var sale domain.Sale
	query := fmt.Sprintf(`
		SELECT id, idempotency_key, price_mode, payment_method, subtotal,
			discount_kind, discount_value, discount_amount, grand_total,
			cash_received, change, COALESCE(cashier_name,''), created_at
		FROM sales
		WHERE %s = $1
	`, column)

	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&sale.ID,
		&sale.IdempotencyKey,
		&sale.PriceMode,
		&sale.PaymentMethod,
		&sale.Subtotal,
		&sale.DiscountKind,
		&sale.DiscountValue,
		&sale.DiscountAmount,
		&sale.GrandTotal,
		&sale.CashReceived,
		&sale.Change,
		&sale.CashierName,
		&sale.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sale.CreatedAt = sale.CreatedAt.UTC()

	lines, err := s.loadSaleLines(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Lines = lines
	return &sale, nil
}

func (s *Store) loadSaleLines(ctx context.Context, saleID string) ([]domain.SaleLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, qty, unit_price, price_mode, cost_price, subtotal
		FROM sale_lines
		WHERE sale_id = $1
		ORDER BY id ASC
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.SaleLine, 0, 8)
	for rows.Next() {
		var line domain.SaleLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Qty, &line.UnitPrice, &line.PriceMode, &line.CostPrice, &line.Subtotal); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// CommitSale writes the sale header, its lines, and the stock
// decrements in one serializable transaction. Each decrement is
// conditional on remaining stock, so two cashiers selling the last
// unit cannot both succeed. A replay on the idempotency key returns
// the stored sale.
func (s *Store) CommitSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.IdempotencyKey == "" || len(sale.Lines) == 0 {
		return nil, store.ErrValidation
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO sales (
			id, idempotency_key, price_mode, payment_method, subtotal,
			discount_kind, discount_value, discount_amount, grand_total,
			cash_received, change, cashier_name, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, sale.ID, sale.IdempotencyKey, sale.PriceMode, sale.PaymentMethod, sale.Subtotal,
		sale.DiscountKind, sale.DiscountValue, sale.DiscountAmount, sale.GrandTotal,
		sale.CashReceived, sale.Change, nullIfEmpty(sale.CashierName), sale.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.FindSaleByIdempotency(ctx, sale.IdempotencyKey)
			if lookupErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}

	for _, line := range sale.Lines {
		if line.Qty < 1 {
			return nil, store.ErrValidation
		}
		res, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = now()
			WHERE id = $2 AND stock >= $1
		`, line.Qty, line.ProductID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, store.ErrInsufficientStock
		}

		_, err = pgTx.ExecContext(ctx, `
			INSERT INTO sale_lines (sale_id, product_id, product_name, qty, unit_price, price_mode, cost_price, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, sale.ID, line.ProductID, line.ProductName, line.Qty, line.UnitPrice, line.PriceMode, line.CostPrice, line.Subtotal)
		if err != nil {
			return nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, idempotency_key, price_mode, payment_method, subtotal,
			discount_kind, discount_value, discount_amount, grand_total,
			cash_received, change, COALESCE(cashier_name,''), created_at
		FROM sales
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, limit)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.IdempotencyKey, &sale.PriceMode, &sale.PaymentMethod,
			&sale.Subtotal, &sale.DiscountKind, &sale.DiscountValue, &sale.DiscountAmount,
			&sale.GrandTotal, &sale.CashReceived, &sale.Change, &sale.CashierName, &sale.CreatedAt); err != nil {
			return nil, err
		}
		sale.CreatedAt = sale.CreatedAt.UTC()
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		lines, err := s.loadSaleLines(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Lines = lines
	}
	return sales, nil
}

// CreateInvoice reserves stock at issue time with the same conditional
// decrement as CommitSale.
func (s *Store) CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	if len(invoice.Lines) == 0 {
		return nil, store.ErrValidation
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}
	if invoice.Status == "" {
		invoice.Status = domain.InvoiceStatusPending
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO invoices (id, customer_name, customer_whatsapp, due_date, due_date_notes, status, total, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, invoice.ID, invoice.CustomerName, nullIfEmpty(invoice.CustomerWhatsApp), nowDateUTC(invoice.DueDate),
		nullIfEmpty(invoice.DueDateNotes), invoice.Status, invoice.Total, invoice.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, line := range invoice.Lines {
		if line.Qty < 1 {
			return nil, store.ErrValidation
		}
		res, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = now()
			WHERE id = $2 AND stock >= $1
		`, line.Qty, line.ProductID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, store.ErrInsufficientStock
		}

		_, err = pgTx.ExecContext(ctx, `
			INSERT INTO invoice_lines (invoice_id, product_id, product_name, qty, unit_price, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, invoice.ID, line.ProductID, line.ProductName, line.Qty, line.UnitPrice, line.Subtotal)
		if err != nil {
			return nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Store) GetInvoiceByID(ctx context.Context, id string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_name, COALESCE(customer_whatsapp,''), due_date, COALESCE(due_date_notes,''), status, total, created_at
		FROM invoices
		WHERE id = $1
	`, id).Scan(&invoice.ID, &invoice.CustomerName, &invoice.CustomerWhatsApp, &invoice.DueDate,
		&invoice.DueDateNotes, &invoice.Status, &invoice.Total, &invoice.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	invoice.CreatedAt = invoice.CreatedAt.UTC()
	invoice.DueDate = invoice.DueDate.UTC()

	lines, err := s.loadInvoiceLines(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines
	return &invoice, nil
}

func (s *Store) loadInvoiceLines(ctx context.Context, invoiceID string) ([]domain.InvoiceLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, qty, unit_price, subtotal
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY id ASC
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.InvoiceLine, 0, 8)
	for rows.Next() {
		var line domain.InvoiceLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Qty, &line.UnitPrice, &line.Subtotal); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Store) ListInvoices(ctx context.Context, limit int) ([]domain.Invoice, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_name, COALESCE(customer_whatsapp,''), due_date, COALESCE(due_date_notes,''), status, total, created_at
		FROM invoices
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, limit)
	for rows.Next() {
		var invoice domain.Invoice
		if err := rows.Scan(&invoice.ID, &invoice.CustomerName, &invoice.CustomerWhatsApp, &invoice.DueDate,
			&invoice.DueDateNotes, &invoice.Status, &invoice.Total, &invoice.CreatedAt); err != nil {
			return nil, err
		}
		invoice.CreatedAt = invoice.CreatedAt.UTC()
		invoice.DueDate = invoice.DueDate.UTC()
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range invoices {
		lines, err := s.loadInvoiceLines(ctx, invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].Lines = lines
	}
	return invoices, nil
}

func (s *Store) MarkInvoicePaid(ctx context.Context, id string) (*domain.Invoice, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
	`, id, domain.InvoiceStatusPaid, domain.InvoiceStatusPending)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, lookupErr := s.GetInvoiceByID(ctx, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, store.ErrConflict
	}
	return s.GetInvoiceByID(ctx, id)
}

// ReverseInvoice restores every line's qty to its product and deletes
// the invoice, all in one transaction. The row lock plus delete makes
// a second reversal see nothing and fail with ErrNotFound.
func (s *Store) ReverseInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var invoice domain.Invoice
	err = pgTx.QueryRowContext(ctx, `
		SELECT id, customer_name, COALESCE(customer_whatsapp,''), due_date, COALESCE(due_date_notes,''), status, total, created_at
		FROM invoices
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&invoice.ID, &invoice.CustomerName, &invoice.CustomerWhatsApp, &invoice.DueDate,
		&invoice.DueDateNotes, &invoice.Status, &invoice.Total, &invoice.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	lineRows, err := pgTx.QueryContext(ctx, `
		SELECT product_id, product_name, qty, unit_price, subtotal
		FROM invoice_lines
		WHERE invoice_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.InvoiceLine, 0, 8)
	for lineRows.Next() {
		var line domain.InvoiceLine
		if err := lineRows.Scan(&line.ProductID, &line.ProductName, &line.Qty, &line.UnitPrice, &line.Subtotal); err != nil {
			_ = lineRows.Close()
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := lineRows.Err(); err != nil {
		_ = lineRows.Close()
		return nil, err
	}
	_ = lineRows.Close()

	for _, line := range lines {
		_, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock + $1, updated_at = now()
			WHERE id = $2
		`, line.Qty, line.ProductID)
		if err != nil {
			return nil, err
		}
	}

	if _, err := pgTx.ExecContext(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, id); err != nil {
		return nil, err
	}
	if _, err := pgTx.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	invoice.CreatedAt = invoice.CreatedAt.UTC()
	invoice.DueDate = invoice.DueDate.UTC()
	invoice.Lines = lines
	return &invoice, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	if expense.Name == "" || expense.Amount < 1 {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, name, amount, category, note, spent_at, recorded_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, expense.ID, expense.Name, expense.Amount, nullIfEmpty(expense.Category), nullIfEmpty(expense.Note),
		expense.SpentAt, nullIfEmpty(expense.RecordedBy), expense.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := expense
	return &created, nil
}

func (s *Store) ListExpenses(ctx context.Context, filter domain.ExpenseFilter, limit int) ([]domain.Expense, error) {
	if limit < 1 {
		limit = 200
	}

	query := `
		SELECT id, name, amount, COALESCE(category,''), COALESCE(note,''), spent_at, COALESCE(recorded_by,''), created_at
		FROM expenses
		WHERE ($1 = '' OR category = $1)
			AND ($2 = '' OR to_char(spent_at, 'YYYY-MM') = $2)
		ORDER BY spent_at DESC, id DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, filter.Category, filter.Month, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, limit)
	for rows.Next() {
		var expense domain.Expense
		if err := rows.Scan(&expense.ID, &expense.Name, &expense.Amount, &expense.Category,
			&expense.Note, &expense.SpentAt, &expense.RecordedBy, &expense.CreatedAt); err != nil {
			return nil, err
		}
		expense.SpentAt = expense.SpentAt.UTC()
		expense.CreatedAt = expense.CreatedAt.UTC()
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SumExpenses(ctx context.Context, from time.Time, to time.Time) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE spent_at >= $1 AND spent_at <= $2
	`, from, to).Scan(&total)
	return total, err
}

func (s *Store) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT store_name, COALESCE(store_address,''), COALESCE(store_whatsapp,''), COALESCE(logo_url,''), updated_at
		FROM settings
		WHERE id = 1
	`).Scan(&settings.StoreName, &settings.StoreAddress, &settings.StoreWhatsApp, &settings.LogoURL, &settings.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	settings.UpdatedAt = settings.UpdatedAt.UTC()
	return &settings, nil
}

func (s *Store) UpdateSettings(ctx context.Context, settings domain.Settings) (*domain.Settings, error) {
	if settings.StoreName == "" {
		return nil, store.ErrValidation
	}
	settings.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, store_name, store_address, store_whatsapp, logo_url, updated_at)
		VALUES (1,$1,$2,$3,$4,$5)
		ON CONFLICT (id)
		DO UPDATE SET store_name = EXCLUDED.store_name, store_address = EXCLUDED.store_address,
			store_whatsapp = EXCLUDED.store_whatsapp, logo_url = EXCLUDED.logo_url, updated_at = EXCLUDED.updated_at
	`, settings.StoreName, nullIfEmpty(settings.StoreAddress), nullIfEmpty(settings.StoreWhatsApp),
		nullIfEmpty(settings.LogoURL), settings.UpdatedAt)
	if err != nil {
		return nil, err
	}

	updated := settings
	return &updated, nil
}

func (s *Store) CountPendingInvoices(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invoices WHERE status = $1
	`, domain.InvoiceStatusPending).Scan(&count)
	return count, err
}

func (s *Store) GetSalesReport(ctx context.Context, from time.Time, to time.Time) (domain.SalesReport, error) {
	report := domain.SalesReport{
		From:      from.Format("2006-01-02"),
		To:        to.Format("2006-01-02"),
		ByPayment: make([]domain.SalesReportPayment, 0, 3),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(grand_total), 0), COALESCE(SUM(discount_amount), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at <= $2
	`, from, to).Scan(&report.Transactions, &report.Revenue, &report.Discounts)
	if err != nil {
		return report, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(l.qty * l.cost_price), 0)
		FROM sale_lines l
		JOIN sales s ON s.id = l.sale_id
		WHERE s.created_at >= $1 AND s.created_at <= $2
	`, from, to).Scan(&report.CostOfGoods)
	if err != nil {
		return report, err
	}
	report.GrossProfit = report.Revenue - report.CostOfGoods

	expenses, err := s.SumExpenses(ctx, from, to)
	if err != nil {
		return report, err
	}
	report.Expenses = expenses

	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_method, COUNT(*), COALESCE(SUM(grand_total), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY payment_method
		ORDER BY payment_method
	`, from, to)
	if err != nil {
		return report, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.SalesReportPayment
		if err := rows.Scan(&entry.PaymentMethod, &entry.Transactions, &entry.Total); err != nil {
			return report, err
		}
		report.ByPayment = append(report.ByPayment, entry)
	}
	if err := rows.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType,
		nullIfEmpty(entry.EntityID), nullIfEmpty(entry.Detail), entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, COALESCE(entity_id,''), COALESCE(detail,''), created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action,
			&entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrValidation
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.CostPrice, &p.Price,
		&p.ResellerPrice, &p.Stock, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func validateProduct(product domain.Product) error {
	if product.SKU == "" || product.Name == "" {
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func nowDateUTC(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}
