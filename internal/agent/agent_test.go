package agent

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediequip-storefront/internal/demo"
	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/session"
)

func testServer(t *testing.T) (*Server, gateway.Commerce) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := demo.New()
	sessions := session.NewManager(gw, session.Config{Logger: logger})
	t.Cleanup(sessions.Close)
	return NewServer(sessions, gw, logger), gw
}

func TestSearchProductsTool(t *testing.T) {
	s, _ := testServer(t)

	_, out, err := s.searchProducts(context.Background(), nil, SearchInput{Query: "nebulizer"})
	if err != nil {
		t.Fatalf("search_products: %v", err)
	}
	if len(out.Products) != 1 || !strings.Contains(out.Products[0].Title, "NebuMist") {
		t.Errorf("products = %+v, want the NebuMist nebulizer", out.Products)
	}

	if _, _, err := s.searchProducts(context.Background(), nil, SearchInput{}); err == nil {
		t.Error("empty query: err = nil")
	}
}

func TestGetProductTool(t *testing.T) {
	s, _ := testServer(t)

	_, product, err := s.getProduct(context.Background(), nil, GetProductInput{ID: "demo-product-01"})
	if err != nil {
		t.Fatalf("get_product: %v", err)
	}
	if product.Category != "Oxygen Concentrator" {
		t.Errorf("category = %q", product.Category)
	}

	if _, _, err := s.getProduct(context.Background(), nil, GetProductInput{ID: "ghost"}); err == nil {
		t.Error("unknown product: err = nil")
	}
}

func TestCartToolsShareTheAgentSession(t *testing.T) {
	s, _ := testServer(t)
	ctx := context.Background()

	_, view, err := s.addToCart(ctx, nil, AddToCartInput{ProductID: "demo-product-01", Quantity: 2})
	if err != nil {
		t.Fatalf("add_to_cart: %v", err)
	}
	if view.Count != 2 {
		t.Errorf("count after add = %d, want 2", view.Count)
	}

	_, view, err = s.viewCart(ctx, nil, CartInput{})
	if err != nil {
		t.Fatalf("view_cart: %v", err)
	}
	if view.Count != 2 {
		t.Errorf("view_cart sees count %d, want 2 (session not shared)", view.Count)
	}
}

func TestUpdateCartToolReconcilesToTheGivenList(t *testing.T) {
	s, _ := testServer(t)
	ctx := context.Background()

	if _, _, err := s.addToCart(ctx, nil, AddToCartInput{ProductID: "demo-product-01", Quantity: 3}); err != nil {
		t.Fatalf("add_to_cart: %v", err)
	}

	_, view, err := s.updateCart(ctx, nil, UpdateCartInput{Lines: []CartLineSpec{
		{ProductID: "demo-product-02", Quantity: 1},
	}})
	if err != nil {
		t.Fatalf("update_cart: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].ProductID != "demo-product-02" {
		t.Errorf("lines = %+v, want only demo-product-02", view.Lines)
	}

	_, view, err = s.updateCart(ctx, nil, UpdateCartInput{Lines: []CartLineSpec{
		{ProductID: "demo-product-02", Quantity: 0},
	}})
	if err != nil {
		t.Fatalf("update_cart to zero: %v", err)
	}
	if view.Count != 0 {
		t.Errorf("count = %d after zeroing, want 0", view.Count)
	}
}

func TestBeginCheckoutTool(t *testing.T) {
	s, _ := testServer(t)
	ctx := context.Background()

	if _, _, err := s.beginCheckout(ctx, nil, CartInput{}); err == nil {
		t.Error("empty cart: err = nil")
	}

	if _, _, err := s.addToCart(ctx, nil, AddToCartInput{ProductID: "demo-product-03"}); err != nil {
		t.Fatalf("add_to_cart: %v", err)
	}
	_, out, err := s.beginCheckout(ctx, nil, CartInput{})
	if err != nil {
		t.Fatalf("begin_checkout: %v", err)
	}
	if out.CheckoutURL == "" || out.ItemCount != 1 {
		t.Errorf("checkout = %+v", out)
	}
}

func TestToolsCanJoinABrowserSession(t *testing.T) {
	s, _ := testServer(t)
	ctx := context.Background()

	browser, err := s.sessions.Create(ctx, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, view, err := s.addToCart(ctx, nil, AddToCartInput{
		SessionRef: SessionRef{SessionID: browser.ID},
		ProductID:  "demo-product-04",
	})
	if err != nil {
		t.Fatalf("add_to_cart: %v", err)
	}
	if view.Count != 1 {
		t.Errorf("count = %d, want 1", view.Count)
	}
	if browser.Cart.Count() != 1 {
		t.Error("browser session cart was not updated")
	}

	if _, _, err := s.viewCart(ctx, nil, CartInput{SessionRef: SessionRef{SessionID: "ghost"}}); err == nil {
		t.Error("unknown session: err = nil")
	}
}

func TestHandlerRequiresTheAgentHeader(t *testing.T) {
	s, _ := testServer(t)
	handler := s.Handler()

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{
			name:     "missing header",
			header:   "",
			wantCode: "agent_required",
		},
		{
			name:     "malformed header",
			header:   `profile=`,
			wantCode: "agent_required",
		},
		{
			name:     "newer major rejected",
			header:   `profile="https://agent.example/p";version="v2.0.0"`,
			wantCode: "version_not_supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}"))
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body["error"] != tt.wantCode {
				t.Errorf("error = %q, want %q", body["error"], tt.wantCode)
			}
		})
	}
}
