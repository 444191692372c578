package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"javasnursery/backend/internal/domain"
	"javasnursery/backend/internal/store"
	"javasnursery/backend/internal/xid"
)

var csvImportHeader = []string{"sku", "name", "category_id", "cost_price", "price", "reseller_price", "stock"}

// ImportProductsCSV parses a product CSV and inserts every row in one
// repository transaction. A malformed row produces a row-scoped error
// (row numbers count the header as row 1); any rejected row aborts the
// whole batch so a corrected file can simply be re-uploaded.
func (s *Service) ImportProductsCSV(ctx context.Context, r io.Reader) (domain.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("%w: missing header row", store.ErrValidation)
	}
	if err := validateImportHeader(header); err != nil {
		return domain.ImportResult{}, err
	}

	var (
		products  []domain.Product
		rowErrors []domain.ImportRowError
		seenSKUs  = make(map[string]int)
	)

	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			rowErrors = append(rowErrors, domain.ImportRowError{Row: row, Message: err.Error()})
			continue
		}

		product, rowErr := parseProductRow(record)
		if rowErr != "" {
			rowErrors = append(rowErrors, domain.ImportRowError{Row: row, Message: rowErr})
			continue
		}
		if firstRow, dup := seenSKUs[product.SKU]; dup {
			rowErrors = append(rowErrors, domain.ImportRowError{Row: row, Message: fmt.Sprintf("duplicate sku %s (first seen on row %d)", product.SKU, firstRow)})
			continue
		}
		seenSKUs[product.SKU] = row

		product.ID = xid.New("prd")
		product.CreatedAt = time.Now().UTC()
		products = append(products, product)
	}

	if len(rowErrors) > 0 {
		return domain.ImportResult{RowErrors: rowErrors}, nil
	}
	if len(products) == 0 {
		return domain.ImportResult{}, fmt.Errorf("%w: no data rows", store.ErrValidation)
	}

	imported, err := s.repo.BulkImportProducts(ctx, products)
	if err != nil {
		return domain.ImportResult{}, err
	}

	s.invalidateCatalog(ctx)
	s.logAudit(ctx, "product_import", "product", "", fmt.Sprintf("imported=%d", imported))
	return domain.ImportResult{Imported: imported}, nil
}

func validateImportHeader(header []string) error {
	if len(header) != len(csvImportHeader) {
		return fmt.Errorf("%w: expected header %s", store.ErrValidation, strings.Join(csvImportHeader, ","))
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), csvImportHeader[i]) {
			return fmt.Errorf("%w: expected header %s", store.ErrValidation, strings.Join(csvImportHeader, ","))
		}
	}
	return nil
}

func parseProductRow(record []string) (domain.Product, string) {
	if len(record) != len(csvImportHeader) {
		return domain.Product{}, fmt.Sprintf("expected %d columns, got %d", len(csvImportHeader), len(record))
	}

	sku := strings.TrimSpace(record[0])
	name := strings.TrimSpace(record[1])
	if sku == "" {
		return domain.Product{}, "sku is required"
	}
	if name == "" {
		return domain.Product{}, "name is required"
	}

	costPrice, err := parseAmount(record[3], "cost_price")
	if err != "" {
		return domain.Product{}, err
	}
	price, err := parseAmount(record[4], "price")
	if err != "" {
		return domain.Product{}, err
	}
	resellerPrice, err := parseAmount(record[5], "reseller_price")
	if err != "" {
		return domain.Product{}, err
	}
	stock, convErr := strconv.Atoi(strings.TrimSpace(record[6]))
	if convErr != nil {
		return domain.Product{}, fmt.Sprintf("stock %q is not a whole number", strings.TrimSpace(record[6]))
	}

	if price < 1 {
		return domain.Product{}, "price must be at least 1"
	}
	if costPrice < 0 || resellerPrice < 0 || stock < 0 {
		return domain.Product{}, "negative values are not allowed"
	}
	if resellerPrice == 0 {
		resellerPrice = price
	}

	return domain.Product{
		SKU:           sku,
		Name:          name,
		CategoryID:    strings.TrimSpace(record[2]),
		CostPrice:     costPrice,
		Price:         price,
		ResellerPrice: resellerPrice,
		Stock:         stock,
	}, ""
}

func parseAmount(raw string, field string) (int64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ""
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s %q is not a whole number", field, raw)
	}
	return value, ""
}
