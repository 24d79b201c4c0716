// Package agent exposes the storefront to MCP clients: catalog search,
// cart manipulation, and checkout handoff as tools, gated by the
// Storefront-Agent identification header.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/page"
	"mediequip-storefront/internal/reconcile"
	"mediequip-storefront/internal/session"
)

// Server binds MCP tools to the session manager and gateway.
//
// Tools accept an optional session_id to join a browser session; calls
// without one share a single lazily-created agent session, so an agent
// conversation keeps one cart across tool calls.
type Server struct {
	sessions *session.Manager
	gw       gateway.Commerce
	logger   *slog.Logger

	mu        sync.Mutex
	agentSess *session.Session
}

// NewServer creates the agent tool server.
func NewServer(sessions *session.Manager, gw gateway.Commerce, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{sessions: sessions, gw: gw, logger: logger}
}

// MCPServer builds the MCP server with all storefront tools registered.
func (s *Server) MCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mediequip-storefront",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: page.StoreName + " storefront. Use these tools to " +
				"search the medical equipment catalog, manage a cart, and hand " +
				"off to checkout.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_products",
		Description: "Search the catalog by free-text query over title, vendor, and tags.",
	}, s.searchProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_product",
		Description: "Get one product by id or handle, including price and category.",
	}, s.getProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_cart",
		Description: "View the current cart: lines, item count, and total.",
	}, s.viewCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_to_cart",
		Description: "Add a product to the cart. Quantity defaults to 1.",
	}, s.addToCart)

	mcp.AddTool(server, &mcp.Tool{
		Name: "update_cart",
		Description: "Set the cart to exactly the given product/quantity list. " +
			"Omitted products are removed; quantity 0 removes a product.",
	}, s.updateCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "begin_checkout",
		Description: "Get the checkout handoff URL for the current cart.",
	}, s.beginCheckout)

	return server
}

// Handler returns the HTTP handler for the /mcp endpoint. Every request
// must identify itself with a Storefront-Agent header; agents declaring
// a contract major newer than ServedMajor are rejected.
func (s *Server) Handler() http.Handler {
	server := s.MCPServer()
	inner := mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseHeader(r.Header.Get(HeaderName))
		if err != nil {
			s.rejectAgent(w, http.StatusBadRequest, "agent_required", err.Error())
			return
		}
		if err := CheckVersion(id.Version); err != nil {
			s.rejectAgent(w, http.StatusBadRequest, "version_not_supported", err.Error())
			return
		}
		inner.ServeHTTP(w, r)
	})
}

func (s *Server) rejectAgent(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}

// === Tool input/output types ===

// SessionRef joins an existing browser session. Empty means the shared
// agent session.
type SessionRef struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"existing session to operate on"`
}

// SearchInput is the input schema for search_products.
type SearchInput struct {
	Query string `json:"query" jsonschema:"free-text search query,required"`
}

// SearchOutput lists matching products.
type SearchOutput struct {
	Products []model.Product `json:"products"`
}

// GetProductInput is the input schema for get_product.
type GetProductInput struct {
	ID string `json:"id" jsonschema:"product id or handle,required"`
}

// CartInput is the input schema for view_cart and begin_checkout.
type CartInput struct {
	SessionRef
}

// AddToCartInput is the input schema for add_to_cart.
type AddToCartInput struct {
	SessionRef
	ProductID string `json:"product_id" jsonschema:"product id or handle,required"`
	Quantity  int    `json:"quantity,omitempty" jsonschema:"quantity, defaults to 1"`
}

// CartLineSpec is one desired product/quantity pair in update_cart.
type CartLineSpec struct {
	ProductID string `json:"product_id" jsonschema:"product id or handle,required"`
	Quantity  int    `json:"quantity" jsonschema:"desired quantity, 0 removes,required"`
}

// UpdateCartInput is the input schema for update_cart.
type UpdateCartInput struct {
	SessionRef
	Lines []CartLineSpec `json:"lines" jsonschema:"complete desired cart contents,required"`
}

// CheckoutOutput carries the handoff URL for begin_checkout.
type CheckoutOutput struct {
	CheckoutURL string `json:"checkout_url"`
	ItemCount   int    `json:"item_count"`
	Total       string `json:"total"`
}

// === Tool handlers ===

func (s *Server) searchProducts(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, *SearchOutput, error) {
	if input.Query == "" {
		return nil, nil, fmt.Errorf("query is required")
	}
	products, err := s.gw.SearchProducts(ctx, input.Query)
	if err != nil {
		return nil, nil, s.toolError(err)
	}
	return nil, &SearchOutput{Products: products}, nil
}

func (s *Server) getProduct(ctx context.Context, req *mcp.CallToolRequest, input GetProductInput) (*mcp.CallToolResult, *model.Product, error) {
	if input.ID == "" {
		return nil, nil, fmt.Errorf("id is required")
	}
	product, err := s.gw.FetchProduct(ctx, input.ID)
	if err != nil {
		return nil, nil, s.toolError(err)
	}
	return nil, product, nil
}

func (s *Server) viewCart(ctx context.Context, req *mcp.CallToolRequest, input CartInput) (*mcp.CallToolResult, *page.CartView, error) {
	sess, err := s.resolve(ctx, input.SessionID)
	if err != nil {
		return nil, nil, s.toolError(err)
	}
	return nil, cartView(sess), nil
}

func (s *Server) addToCart(ctx context.Context, req *mcp.CallToolRequest, input AddToCartInput) (*mcp.CallToolResult, *page.CartView, error) {
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}
	sess, err := s.resolve(ctx, input.SessionID)
	if err != nil {
		return nil, nil, s.toolError(err)
	}

	product, err := s.gw.FetchProduct(ctx, input.ProductID)
	if err != nil {
		return nil, nil, s.toolError(err)
	}
	if err := sess.Cart.AddToCart(ctx, *product, input.Quantity); err != nil {
		return nil, nil, s.toolError(err)
	}
	return nil, cartView(sess), nil
}

func (s *Server) updateCart(ctx context.Context, req *mcp.CallToolRequest, input UpdateCartInput) (*mcp.CallToolResult, *page.CartView, error) {
	sess, err := s.resolve(ctx, input.SessionID)
	if err != nil {
		return nil, nil, s.toolError(err)
	}

	desired := make([]reconcile.DesiredLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.ProductID == "" {
			return nil, nil, fmt.Errorf("lines[].product_id is required")
		}
		product, err := s.gw.FetchProduct(ctx, line.ProductID)
		if err != nil {
			return nil, nil, s.toolError(err)
		}
		if !product.Purchasable() {
			return nil, nil, fmt.Errorf("product %s has no purchasable variant", line.ProductID)
		}
		desired = append(desired, reconcile.DesiredLine{
			VariantID: product.VariantID,
			Quantity:  line.Quantity,
		})
	}

	if err := sess.Cart.ApplyBulkOrder(ctx, desired); err != nil {
		return nil, nil, s.toolError(err)
	}
	return nil, cartView(sess), nil
}

func (s *Server) beginCheckout(ctx context.Context, req *mcp.CallToolRequest, input CartInput) (*mcp.CallToolResult, *CheckoutOutput, error) {
	sess, err := s.resolve(ctx, input.SessionID)
	if err != nil {
		return nil, nil, s.toolError(err)
	}

	count := sess.Cart.Count()
	url := sess.Cart.CheckoutURL()
	if count == 0 || url == "" {
		return nil, nil, fmt.Errorf("cart is empty, add products before checkout")
	}
	return nil, &CheckoutOutput{
		CheckoutURL: url,
		ItemCount:   count,
		Total:       model.FormatCents(sess.Cart.Total()),
	}, nil
}

// resolve maps a session reference to a live session, creating the
// shared agent session on first unreferenced call.
func (s *Server) resolve(ctx context.Context, sessionID string) (*session.Session, error) {
	if sessionID != "" {
		return s.sessions.Get(sessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.agentSess != nil {
		if sess, err := s.sessions.Get(s.agentSess.ID); err == nil {
			return sess, nil
		}
		// Expired; fall through and replace it.
	}
	sess, err := s.sessions.Create(ctx, "")
	if err != nil {
		return nil, err
	}
	s.agentSess = sess
	return sess, nil
}

// toolError converts gateway errors to tool errors without leaking
// internals.
func (s *Server) toolError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	s.logger.Error("mcp tool error", "error", err)
	return fmt.Errorf("internal error")
}

func cartView(sess *session.Session) *page.CartView {
	return &page.CartView{
		Lines:       sess.Cart.Lines(),
		TotalCents:  sess.Cart.Total(),
		Total:       model.FormatCents(sess.Cart.Total()),
		Count:       sess.Cart.Count(),
		CheckoutURL: sess.Cart.CheckoutURL(),
	}
}
