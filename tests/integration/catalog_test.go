//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/v1/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeData[pageResponse[productResponse]](t, resp)
	if page.Total != 8 {
		t.Fatalf("expected 8 products, got %d", page.Total)
	}
	if page.Skip != 0 || page.Limit != 100 {
		t.Errorf("expected skip 0 limit 100, got skip %d limit %d", page.Skip, page.Limit)
	}
}

func TestListProducts_Pagination(t *testing.T) {
	resp := doGet(t, "/api/v1/products?skip=2&limit=3&order_by=sku&order_dir=asc")
	defer resp.Body.Close()

	page := decodeData[pageResponse[productResponse]](t, resp)
	if page.Total != 8 {
		t.Fatalf("expected total 8, got %d", page.Total)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page.Items))
	}
	if page.Skip != 2 || page.Limit != 3 {
		t.Errorf("expected skip 2 limit 3, got skip %d limit %d", page.Skip, page.Limit)
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i-1].SKU > page.Items[i].SKU {
			t.Errorf("items not sorted by sku asc: %q before %q", page.Items[i-1].SKU, page.Items[i].SKU)
		}
	}
}

func TestListProducts_Search(t *testing.T) {
	resp := doGet(t, "/api/v1/products?search=keyboard")
	defer resp.Body.Close()

	page := decodeData[pageResponse[productResponse]](t, resp)
	if page.Total != 1 {
		t.Fatalf("expected 1 match, got %d", page.Total)
	}

	p := page.Items[0]
	if p.SKU != "KB-MECH-87" {
		t.Errorf("sku: got %q, want %q", p.SKU, "KB-MECH-87")
	}
	if p.Name != "Mechanical Keyboard" {
		t.Errorf("name: got %q, want %q", p.Name, "Mechanical Keyboard")
	}
	if !decimal.RequireFromString(p.Price).Equal(decimal.RequireFromString("89.90")) {
		t.Errorf("price: got %s, want 89.90", p.Price)
	}
	if p.StockQty != 40 {
		t.Errorf("stock_qty: got %d, want 40", p.StockQty)
	}
	if !p.IsActive {
		t.Error("expected product to be active")
	}
}

func TestListProducts_UnknownSortColumn(t *testing.T) {
	resp := doGet(t, "/api/v1/products?order_by=price;drop")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	decodeError(t, resp)
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/v1/products/999999")
	defer resp.Body.Close()

	msg := decodeError(t, resp)
	if msg != "Product with id 999999 not found" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestCreateProduct(t *testing.T) {
	resp := doPost(t, "/api/v1/products", map[string]any{
		"name":      "Cable Organizer",
		"sku":       "CO-NEO-05",
		"price":     "9.90",
		"stock_qty": 300,
		"is_active": true,
	})
	defer resp.Body.Close()

	created := decodeData[productResponse](t, resp)
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got := decodeData[productResponse](t, doGet(t, fmt.Sprintf("/api/v1/products/%d", created.ID)))
	if got.SKU != "CO-NEO-05" {
		t.Errorf("sku: got %q, want %q", got.SKU, "CO-NEO-05")
	}
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	resp := doPost(t, "/api/v1/products", map[string]any{
		"name":      "Another Keyboard",
		"sku":       "KB-MECH-87",
		"price":     "10.00",
		"stock_qty": 1,
		"is_active": true,
	})
	defer resp.Body.Close()

	msg := decodeError(t, resp)
	if msg != "product with SKU 'KB-MECH-87' already exists" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	resp := doPost(t, "/api/v1/products", map[string]any{
		"name":      "",
		"sku":       "X-1",
		"price":     "1.00",
		"stock_qty": 1,
	})
	defer resp.Body.Close()

	msg := decodeError(t, resp)
	if msg != "product name cannot be empty" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestAutocompleteProducts(t *testing.T) {
	resp := doGet(t, "/api/v1/products/search/autocomplete?q=mo&limit=5")
	defer resp.Body.Close()

	items := decodeData[[]productResponse](t, resp)
	if len(items) == 0 {
		t.Fatal("expected autocomplete matches for 'mo'")
	}
	for _, p := range items {
		if !p.IsActive {
			t.Errorf("autocomplete returned inactive product %q", p.SKU)
		}
	}
}

func TestListCustomers(t *testing.T) {
	resp := doGet(t, "/api/v1/customers?search=ana.souza")
	defer resp.Body.Close()

	page := decodeData[pageResponse[customerResponse]](t, resp)
	if page.Total != 1 {
		t.Fatalf("expected 1 match, got %d", page.Total)
	}
	if page.Items[0].Name != "Ana Souza" {
		t.Errorf("name: got %q, want %q", page.Items[0].Name, "Ana Souza")
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	resp := doPost(t, "/api/v1/customers", map[string]any{
		"name":     "Ana Clone",
		"email":    "ana.souza@example.com",
		"document": "11122233344",
	})
	defer resp.Body.Close()

	msg := decodeError(t, resp)
	if msg != "customer with email 'ana.souza@example.com' already exists" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestCreateCustomer_InvalidDocument(t *testing.T) {
	// Nine digits dressed up with punctuation is still not a CPF.
	for _, doc := range []string{"123", "123.456.789"} {
		resp := doPost(t, "/api/v1/customers", map[string]any{
			"name":     "Eva Prado",
			"email":    "eva.prado@example.com",
			"document": doc,
		})
		msg := decodeError(t, resp)
		resp.Body.Close()
		if msg != "invalid document format (must be CPF or CNPJ)" {
			t.Fatalf("document %q: unexpected message: %q", doc, msg)
		}
	}
}
