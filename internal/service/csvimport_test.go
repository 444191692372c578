package service

import (
	"strings"
	"testing"
)

const csvHeader = "sku,name,category_id,cost_price,price,reseller_price,stock\n"

func TestImportProductsCSVWellFormedRows(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	body := csvHeader +
		"TH-PALEM-01,Palem Kuning,cat-tanaman-hias,30000,50000,42000,8\n" +
		"MT-COCOPEAT-01,Cocopeat 5L,cat-media-tanam,6000,12000,10000,60\n"

	result, err := svc.ImportProductsCSV(ctx, strings.NewReader(body))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(result.RowErrors) != 0 {
		t.Fatalf("expected no row errors, got %v", result.RowErrors)
	}
	if result.Imported != 2 {
		t.Fatalf("expected 2 imported rows, got %d", result.Imported)
	}

	products, err := svc.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	found := false
	for _, p := range products {
		if p.SKU == "TH-PALEM-01" {
			found = true
			if p.Price != 50000 || p.Stock != 8 {
				t.Fatalf("imported product has wrong values: price=%d stock=%d", p.Price, p.Stock)
			}
		}
	}
	if !found {
		t.Fatal("imported product not found in catalog")
	}
}

func TestImportProductsCSVRejectsMalformedNumeric(t *testing.T) {
	svc := newTestService()
	ctx := testCtx()

	body := csvHeader +
		"TH-PALEM-01,Palem Kuning,cat-tanaman-hias,30000,50000,42000,8\n" +
		"MT-COCOPEAT-01,Cocopeat 5L,cat-media-tanam,6000,banyak,10000,60\n"

	result, err := svc.ImportProductsCSV(ctx, strings.NewReader(body))
	if err != nil {
		t.Fatalf("import returned error instead of row errors: %v", err)
	}
	if len(result.RowErrors) != 1 {
		t.Fatalf("expected 1 row error, got %d", len(result.RowErrors))
	}
	if result.RowErrors[0].Row != 3 {
		t.Fatalf("expected error on row 3, got row %d", result.RowErrors[0].Row)
	}
	if result.Imported != 0 {
		t.Fatalf("expected nothing imported alongside row errors, got %d", result.Imported)
	}

	products, err := svc.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	for _, p := range products {
		if p.SKU == "TH-PALEM-01" {
			t.Fatal("batch with a rejected row must import nothing")
		}
	}
}

func TestImportProductsCSVQuotedCommaInName(t *testing.T) {
	svc := newTestService()

	body := csvHeader +
		"PT-POT40-01,\"Pot Besar, Motif Batu\",cat-pot,25000,45000,40000,12\n"

	result, err := svc.ImportProductsCSV(testCtx(), strings.NewReader(body))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported row, got %d", result.Imported)
	}
}

func TestImportProductsCSVRejectsWrongHeader(t *testing.T) {
	svc := newTestService()

	body := "sku,name,price\nTH-X-01,Anything,5000\n"
	if _, err := svc.ImportProductsCSV(testCtx(), strings.NewReader(body)); err == nil {
		t.Fatal("expected header validation error")
	}
}

func TestImportProductsCSVRejectsDuplicateSKU(t *testing.T) {
	svc := newTestService()

	body := csvHeader +
		"TH-PALEM-01,Palem Kuning,cat-tanaman-hias,30000,50000,42000,8\n" +
		"TH-PALEM-01,Palem Kuning Lagi,cat-tanaman-hias,30000,50000,42000,8\n"

	result, err := svc.ImportProductsCSV(testCtx(), strings.NewReader(body))
	if err != nil {
		t.Fatalf("import returned error instead of row errors: %v", err)
	}
	if len(result.RowErrors) != 1 {
		t.Fatalf("expected 1 row error, got %d", len(result.RowErrors))
	}
}
