// Package model defines data structures shared across the storefront:
// products, carts, customers, and the error taxonomy.
package model

// === Products ===

// Product is a read-only catalog entry sourced from the commerce backend.
// Category and Rating are derived client-side (see internal/catalog); the
// backend does not guarantee either.
type Product struct {
	ID       string `json:"id"`
	Handle   string `json:"handle"`
	Vendor   string `json:"vendor"`
	Title    string `json:"title"`
	Category string `json:"category"`

	// Prices in minor currency units (cents). CompareAtPriceCents is 0
	// when the product has no compare-at price.
	PriceCents          int64 `json:"price_cents"`
	CompareAtPriceCents int64 `json:"compare_at_price_cents,omitempty"`

	Image  string   `json:"image"`            // primary image URL
	Images []string `json:"images,omitempty"` // gallery, primary first
	Tags   []string `json:"tags,omitempty"`

	// Specs is a short plain-text line derived from the description,
	// used on listing cards.
	Specs       string `json:"specs,omitempty"`
	Description string `json:"description,omitempty"`

	InStock bool `json:"in_stock"`

	// VariantID identifies the purchasable SKU. A product without a
	// variant ID cannot be added to a cart.
	VariantID string `json:"variant_id,omitempty"`

	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"review_count,omitempty"`
}

// Purchasable reports whether the product can be added to a cart.
func (p *Product) Purchasable() bool {
	return p.VariantID != ""
}

// === Cart ===

// Cart is the server-authoritative cart state. Every mutation replaces
// Lines wholesale with the backend's response; nothing is merged locally.
type Cart struct {
	ID          string     `json:"id"`
	CheckoutURL string     `json:"checkout_url,omitempty"`
	Lines       []CartLine `json:"lines"`
}

// CartLine is one product/variant/quantity entry within a cart.
// LineID is the server-assigned line identifier, distinct from both the
// product and variant identifiers.
type CartLine struct {
	LineID       string `json:"line_id"`
	ProductID    string `json:"product_id"`
	VariantID    string `json:"variant_id"`
	Title        string `json:"title"`
	Vendor       string `json:"vendor,omitempty"`
	VariantTitle string `json:"variant_title,omitempty"` // empty for "Default Title"
	Image        string `json:"image,omitempty"`
	PriceCents   int64  `json:"price_cents"`
	Quantity     int    `json:"quantity"`
}

// LineInput requests the addition of a variant to a cart.
type LineInput struct {
	VariantID string `json:"merchandise_id"`
	Quantity  int    `json:"quantity"`
}

// LineUpdate requests a quantity change for an existing cart line.
type LineUpdate struct {
	LineID   string `json:"id"`
	Quantity int    `json:"quantity"`
}

// === Customers ===

// Customer is the authenticated shopper's profile as resolved from the
// backend with an access token.
type Customer struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
	Orders    []Order   `json:"orders,omitempty"`
}

// Address is a customer mailing address. ID is server-assigned.
type Address struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Address1  string `json:"address1" validate:"required"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city" validate:"required"`
	Province  string `json:"province,omitempty"`
	Country   string `json:"country" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	Phone     string `json:"phone,omitempty"`
}

// Order is a read-only historical order from the backend.
type Order struct {
	ID          string      `json:"id"`
	OrderNumber int         `json:"order_number"`
	ProcessedAt string      `json:"processed_at"` // RFC3339 from the backend
	TotalCents  int64       `json:"total_cents"`
	Currency    string      `json:"currency,omitempty"`
	StatusURL   string      `json:"status_url,omitempty"`
	Lines       []OrderLine `json:"lines,omitempty"`
}

// OrderLine is a summary entry within a historical order.
type OrderLine struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}
