// Package gateway defines the interface to the hosted commerce backend.
// The backend owns inventory, pricing, payment, and fulfillment; the
// storefront consumes it as a request/response black box.
package gateway

import (
	"context"

	"mediequip-storefront/internal/model"
)

// Commerce abstracts the commerce backend's operations. The production
// implementation is internal/shopify; internal/demo provides a
// deterministic in-memory backend for credential-less runs and tests.
//
// Error contract: missing resources (cart, product, customer) come back as
// model.ErrNotFound; rejected input as model.ErrInvalidInput with the
// backend's first field-level message; bad or expired credentials as
// model.ErrUnauthorized; transport failures as model.ErrUpstream. Callers
// recover with errors.Is.
type Commerce interface {
	// CreateCart creates a new empty cart and returns its server-assigned
	// identifier and checkout handoff URL.
	CreateCart(ctx context.Context) (*model.Cart, error)

	// FetchCart retrieves a cart by identifier. A stale or unknown
	// identifier yields model.ErrNotFound.
	FetchCart(ctx context.Context, cartID string) (*model.Cart, error)

	// AddLines adds variants to the cart and returns the authoritative
	// post-mutation cart.
	AddLines(ctx context.Context, cartID string, lines []model.LineInput) (*model.Cart, error)

	// UpdateLines changes quantities of existing lines and returns the
	// authoritative post-mutation cart.
	UpdateLines(ctx context.Context, cartID string, lines []model.LineUpdate) (*model.Cart, error)

	// RemoveLines removes lines by line identifier and returns the
	// authoritative post-mutation cart.
	RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*model.Cart, error)

	// FetchProducts returns up to limit products.
	FetchProducts(ctx context.Context, limit int) ([]model.Product, error)

	// FetchProduct returns a single product by identifier.
	FetchProduct(ctx context.Context, id string) (*model.Product, error)

	// FetchProductsByCategory returns products matching a display category
	// (backend-side keyword query; see internal/catalog for the keyword
	// tables).
	FetchProductsByCategory(ctx context.Context, category string) ([]model.Product, error)

	// SearchProducts returns products matching a free-text query.
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)

	// RegisterCustomer creates a customer record. Registration alone does
	// not establish a session.
	RegisterCustomer(ctx context.Context, email, password, firstName, lastName string) error

	// LoginCustomer exchanges credentials for an access token.
	LoginCustomer(ctx context.Context, email, password string) (string, error)

	// GetCustomer resolves the customer profile (with addresses and order
	// history) for an access token. Expired or invalid tokens yield
	// model.ErrUnauthorized.
	GetCustomer(ctx context.Context, token string) (*model.Customer, error)

	// RecoverPassword requests a password-recovery email. The backend
	// acknowledges without revealing whether the address exists.
	RecoverPassword(ctx context.Context, email string) error

	// CreateAddress adds a mailing address to the customer record.
	CreateAddress(ctx context.Context, token string, address model.Address) error

	// DeleteAddress removes a mailing address by identifier.
	DeleteAddress(ctx context.Context, token, addressID string) error
}
