// Package demo is an in-memory commerce backend seeded with a small
// medical-equipment catalog. It serves credential-less runs and handler
// tests with the same contract as the production gateway.
package demo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"mediequip-storefront/internal/catalog"
	"mediequip-storefront/internal/model"
)

// Gateway implements gateway.Commerce entirely in memory.
type Gateway struct {
	mu        sync.Mutex
	products  []model.Product
	carts     map[string]*model.Cart
	customers map[string]*account // keyed by email
	tokens    map[string]string   // token -> email
}

// account is one registered demo customer.
type account struct {
	password string
	customer model.Customer
}

// New creates a gateway with the seeded catalog and no customers.
func New() *Gateway {
	return &Gateway{
		products:  seedCatalog(),
		carts:     map[string]*model.Cart{},
		customers: map[string]*account{},
		tokens:    map[string]string{},
	}
}

// CreateCart implements gateway.Commerce.
func (g *Gateway) CreateCart(ctx context.Context) (*model.Cart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := "demo-cart-" + uuid.NewString()
	cart := &model.Cart{
		ID:          id,
		CheckoutURL: "https://demo.invalid/checkout/" + id,
		Lines:       []model.CartLine{},
	}
	g.carts[id] = cart
	return copyCart(cart), nil
}

// FetchCart implements gateway.Commerce.
func (g *Gateway) FetchCart(ctx context.Context, cartID string) (*model.Cart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cart, ok := g.carts[cartID]
	if !ok {
		return nil, model.NewNotFoundError("cart")
	}
	return copyCart(cart), nil
}

// AddLines implements gateway.Commerce. Adding an existing variant
// merges quantities onto the existing line, as the hosted backend does.
func (g *Gateway) AddLines(ctx context.Context, cartID string, lines []model.LineInput) (*model.Cart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cart, ok := g.carts[cartID]
	if !ok {
		return nil, model.NewNotFoundError("cart")
	}

	for _, in := range lines {
		product, ok := g.productByVariant(in.VariantID)
		if !ok {
			return nil, model.NewValidationError("merchandiseId", "variant does not exist")
		}
		if in.Quantity < 1 {
			return nil, model.NewValidationError("quantity", "must be at least 1")
		}

		merged := false
		for i := range cart.Lines {
			if cart.Lines[i].VariantID == in.VariantID {
				cart.Lines[i].Quantity += in.Quantity
				merged = true
				break
			}
		}
		if merged {
			continue
		}
		cart.Lines = append(cart.Lines, model.CartLine{
			LineID:     "demo-line-" + uuid.NewString(),
			ProductID:  product.ID,
			VariantID:  product.VariantID,
			Title:      product.Title,
			Vendor:     product.Vendor,
			Image:      product.Image,
			PriceCents: product.PriceCents,
			Quantity:   in.Quantity,
		})
	}
	return copyCart(cart), nil
}

// UpdateLines implements gateway.Commerce.
func (g *Gateway) UpdateLines(ctx context.Context, cartID string, lines []model.LineUpdate) (*model.Cart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cart, ok := g.carts[cartID]
	if !ok {
		return nil, model.NewNotFoundError("cart")
	}
	for _, update := range lines {
		found := false
		for i := range cart.Lines {
			if cart.Lines[i].LineID == update.LineID {
				cart.Lines[i].Quantity = update.Quantity
				found = true
				break
			}
		}
		if !found {
			return nil, model.NewValidationError("id", "line does not exist")
		}
	}
	return copyCart(cart), nil
}

// RemoveLines implements gateway.Commerce. Unknown line identifiers are
// ignored, matching the hosted backend's tolerance.
func (g *Gateway) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*model.Cart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cart, ok := g.carts[cartID]
	if !ok {
		return nil, model.NewNotFoundError("cart")
	}

	drop := make(map[string]bool, len(lineIDs))
	for _, id := range lineIDs {
		drop[id] = true
	}
	kept := cart.Lines[:0]
	for _, line := range cart.Lines {
		if !drop[line.LineID] {
			kept = append(kept, line)
		}
	}
	cart.Lines = kept
	return copyCart(cart), nil
}

// FetchProducts implements gateway.Commerce.
func (g *Gateway) FetchProducts(ctx context.Context, limit int) ([]model.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if limit <= 0 || limit > len(g.products) {
		limit = len(g.products)
	}
	out := make([]model.Product, limit)
	copy(out, g.products[:limit])
	return out, nil
}

// FetchProduct implements gateway.Commerce.
func (g *Gateway) FetchProduct(ctx context.Context, id string) (*model.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, p := range g.products {
		if p.ID == id || p.Handle == id {
			out := p
			return &out, nil
		}
	}
	return nil, model.NewNotFoundError("product")
}

// FetchProductsByCategory implements gateway.Commerce.
func (g *Gateway) FetchProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	if category == "" || category == "All" {
		return g.FetchProducts(ctx, 0)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	out := []model.Product{}
	for _, p := range g.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// SearchProducts implements gateway.Commerce. Case-insensitive substring
// match over title, vendor, and tags.
func (g *Gateway) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		out := make([]model.Product, len(g.products))
		copy(out, g.products)
		return out, nil
	}

	out := []model.Product{}
	for _, p := range g.products {
		haystack := strings.ToLower(p.Title + " " + p.Vendor + " " + strings.Join(p.Tags, " "))
		if strings.Contains(haystack, needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

// RegisterCustomer implements gateway.Commerce.
func (g *Gateway) RegisterCustomer(ctx context.Context, email, password, firstName, lastName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return model.NewValidationError("email", "is invalid")
	}
	if len(password) < 5 {
		return model.NewValidationError("password", "is too short (minimum is 5 characters)")
	}
	if _, exists := g.customers[email]; exists {
		return model.NewValidationError("email", "has already been taken")
	}

	g.customers[email] = &account{
		password: password,
		customer: model.Customer{
			ID:        "demo-customer-" + uuid.NewString(),
			FirstName: firstName,
			LastName:  lastName,
			Email:     email,
		},
	}
	return nil
}

// LoginCustomer implements gateway.Commerce.
func (g *Gateway) LoginCustomer(ctx context.Context, email, password string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	acct, ok := g.customers[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acct.password != password {
		return "", model.NewAuthenticationError("Unidentified customer")
	}

	token := "demo-token-" + uuid.NewString()
	g.tokens[token] = acct.customer.Email
	return token, nil
}

// GetCustomer implements gateway.Commerce.
func (g *Gateway) GetCustomer(ctx context.Context, token string) (*model.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	acct, err := g.accountForToken(token)
	if err != nil {
		return nil, err
	}
	out := acct.customer
	out.Addresses = append([]model.Address(nil), acct.customer.Addresses...)
	out.Orders = append([]model.Order(nil), acct.customer.Orders...)
	return &out, nil
}

// RecoverPassword implements gateway.Commerce. Always acknowledges.
func (g *Gateway) RecoverPassword(ctx context.Context, email string) error {
	return nil
}

// CreateAddress implements gateway.Commerce.
func (g *Gateway) CreateAddress(ctx context.Context, token string, address model.Address) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	acct, err := g.accountForToken(token)
	if err != nil {
		return err
	}
	if address.Address1 == "" {
		return model.NewValidationError("address1", "can't be blank")
	}
	address.ID = "demo-address-" + uuid.NewString()
	acct.customer.Addresses = append(acct.customer.Addresses, address)
	return nil
}

// DeleteAddress implements gateway.Commerce.
func (g *Gateway) DeleteAddress(ctx context.Context, token, addressID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	acct, err := g.accountForToken(token)
	if err != nil {
		return err
	}
	kept := acct.customer.Addresses[:0]
	for _, a := range acct.customer.Addresses {
		if a.ID != addressID {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(acct.customer.Addresses) {
		return model.NewValidationError("id", "address does not exist")
	}
	acct.customer.Addresses = kept
	return nil
}

// accountForToken resolves a session token. Caller holds g.mu.
func (g *Gateway) accountForToken(token string) (*account, error) {
	email, ok := g.tokens[token]
	if !ok {
		return nil, model.NewAuthenticationError("customer not found or token expired")
	}
	acct, ok := g.customers[email]
	if !ok {
		return nil, model.NewAuthenticationError("customer not found or token expired")
	}
	return acct, nil
}

func (g *Gateway) productByVariant(variantID string) (model.Product, bool) {
	for _, p := range g.products {
		if p.VariantID == variantID {
			return p, true
		}
	}
	return model.Product{}, false
}

func copyCart(cart *model.Cart) *model.Cart {
	out := &model.Cart{
		ID:          cart.ID,
		CheckoutURL: cart.CheckoutURL,
		Lines:       make([]model.CartLine, len(cart.Lines)),
	}
	copy(out.Lines, cart.Lines)
	return out
}

// seedCatalog builds the demo product set. Identifiers are fixed so
// carts and tests behave the same on every run; categories and ratings
// go through the same inference used for live products.
func seedCatalog() []model.Product {
	seeds := []struct {
		handle      string
		title       string
		vendor      string
		productType string
		priceCents  int64
		compareAt   int64
		tags        []string
		specs       string
	}{
		{"oxyflow-5l-concentrator", "OxyFlow 5L Oxygen Concentrator", "OxyFlow", "Oxygen Concentrator", 124900, 149900, []string{"oxygen", "respiratory", "5l"}, "5 L/min continuous flow, 93% purity, 42 dB"},
		{"aerocare-portable-concentrator", "AeroCare Portable Oxygen Concentrator", "AeroCare", "Oxygen Concentrator", 219900, 0, []string{"oxygen", "portable", "travel"}, "Pulse dose, 2.3 kg, 8-cell battery"},
		{"vitalis-icu-monitor", "Vitalis Multi-Parameter Patient Monitor", "Vitalis", "Patient Monitor", 189900, 214900, []string{"icu", "vital signs", "monitor"}, "12.1 inch display, ECG/SpO2/NIBP/Temp"},
		{"pulsepoint-fingertip-oximeter", "PulsePoint Fingertip Pulse Oximeter", "PulsePoint", "Pulse Oximeter", 2999, 4499, []string{"spo2", "oximeter", "home care"}, "SpO2 and pulse rate, OLED display"},
		{"thermoscan-infrared-thermometer", "ThermoScan Infrared Forehead Thermometer", "ThermoScan", "Thermometer", 3499, 0, []string{"thermometer", "infrared", "contactless"}, "Non-contact, 1 second reading"},
		{"medibed-fowler-hospital-bed", "MediBed Deluxe Fowler Hospital Bed", "MediBed", "Hospital Furniture", 349900, 399900, []string{"bed", "fowler", "ward"}, "Manual three-function fowler bed with castors"},
		{"flexaid-wheelchair-standard", "FlexAid Standard Folding Wheelchair", "FlexAid", "Wheelchair", 64900, 74900, []string{"wheelchair", "mobility", "folding"}, "Powder-coated steel frame, 100 kg capacity"},
		{"breathewell-bipap-machine", "BreatheWell Auto BiPAP Machine", "BreatheWell", "BiPAP", 289900, 0, []string{"bipap", "sleep apnea", "respiratory"}, "Auto pressure 4-25 cmH2O, heated humidifier"},
		{"nebumist-compressor-nebulizer", "NebuMist Compressor Nebulizer", "NebuMist", "Nebulizer", 8999, 12999, []string{"nebulizer", "respiratory", "pediatric"}, "0.2 ml/min nebulization rate, low noise"},
		{"glucocheck-blood-glucose-meter", "GlucoCheck Blood Glucose Monitor Kit", "GlucoCheck", "Diagnostics", 4999, 6999, []string{"glucose", "diabetes", "monitor"}, "50 strips included, 5 second result"},
	}

	products := make([]model.Product, 0, len(seeds))
	for i, s := range seeds {
		id := fmt.Sprintf("demo-product-%02d", i+1)
		image := fmt.Sprintf("https://demo.invalid/images/%s.jpg", s.handle)
		products = append(products, model.Product{
			ID:                  id,
			Handle:              s.handle,
			Vendor:              s.vendor,
			Title:               s.title,
			Category:            catalog.Infer(s.title, s.tags, s.productType, nil),
			PriceCents:          s.priceCents,
			CompareAtPriceCents: s.compareAt,
			Image:               image,
			Images:              []string{image},
			Tags:                s.tags,
			Specs:               s.specs,
			Description:         s.specs,
			InStock:             true,
			VariantID:           fmt.Sprintf("demo-variant-%02d", i+1),
			Rating:              catalog.Rating(id),
			ReviewCount:         catalog.ReviewCount(s.title),
		})
	}
	return products
}
