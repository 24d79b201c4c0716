// Package store holds the client-side state stores: the cart/wishlist
// store and the auth store. Each store is the single source of truth
// for its slice of session state, reconciled against the commerce
// gateway and mirrored into the persisted key-value store.
package store

import (
	"context"
	"log/slog"
	"sync"

	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/reconcile"
	"mediequip-storefront/internal/storage"
)

// Cart is the cart/wishlist store. Local cart state is always the last
// authoritative gateway response; mutations replace the whole line set
// rather than patching it, so local state can never drift from the
// server. The wishlist is purely client-owned and persisted on every
// change.
//
// Gateway calls run outside the state lock: a second call while one is
// in flight is allowed to race, and the store applies whichever
// response arrives. Callers disable triggering controls while Loading
// reports true.
type Cart struct {
	gw     gateway.Commerce
	kv     storage.Store
	logger *slog.Logger

	mu          sync.Mutex
	cartID      string
	checkoutURL string
	lines       []model.CartLine
	wishlist    []model.Product
	loading     int

	// clearWG tracks the background cart re-creation spawned by Clear.
	clearWG sync.WaitGroup
}

// NewCart creates the cart/wishlist store. Call Init before use.
func NewCart(gw gateway.Commerce, kv storage.Store, logger *slog.Logger) *Cart {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cart{gw: gw, kv: kv, logger: logger}
}

// Init runs the once-per-session initialization: recover the persisted
// cart identifier (creating a fresh cart when it is absent or stale),
// persist the resulting identifier, and load the wishlist snapshot.
// Initialization failure is logged, not returned: the store stays
// usable and AddToCart self-heals by creating a cart on demand.
func (c *Cart) Init(ctx context.Context) {
	c.setLoading(true)
	defer c.setLoading(false)

	c.loadWishlist()

	var cart *model.Cart
	var err error
	if id, ok := c.kv.Get(storage.KeyCartID); ok && id != "" {
		cart, err = c.gw.FetchCart(ctx, id)
		if err != nil {
			cart, err = c.gw.CreateCart(ctx)
		}
	} else {
		cart, err = c.gw.CreateCart(ctx)
	}
	if err != nil {
		c.logger.Warn("cart initialization failed", "error", err)
		return
	}

	c.applyCart(cart)
}

// AddToCart adds quantity units of the product's purchasable variant.
// Products without a variant identifier are rejected up front. A
// missing cart identifier (failed initialization) is healed by creating
// and persisting a new cart before the add, so the request is never
// silently dropped.
func (c *Cart) AddToCart(ctx context.Context, product model.Product, quantity int) error {
	if !product.Purchasable() {
		return model.NewValidationError("product", "no purchasable variant")
	}
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	cartID := c.cartID
	c.mu.Unlock()

	if cartID == "" {
		cart, err := c.gw.CreateCart(ctx)
		if err != nil {
			return err
		}
		c.applyCart(cart)
		cartID = cart.ID
	}

	c.setLoading(true)
	defer c.setLoading(false)

	cart, err := c.gw.AddLines(ctx, cartID, []model.LineInput{
		{VariantID: product.VariantID, Quantity: quantity},
	})
	if err != nil {
		c.logger.Error("add to cart failed", "product", product.ID, "error", err)
		return err
	}
	c.applyLines(cart)
	return nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity
// below one is defined as removal.
func (c *Cart) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity < 1 {
		return c.RemoveFromCart(ctx, lineID)
	}

	c.mu.Lock()
	cartID := c.cartID
	c.mu.Unlock()
	if cartID == "" {
		return model.NewNotFoundError("cart")
	}

	c.setLoading(true)
	defer c.setLoading(false)

	cart, err := c.gw.UpdateLines(ctx, cartID, []model.LineUpdate{
		{LineID: lineID, Quantity: quantity},
	})
	if err != nil {
		return err
	}
	c.applyLines(cart)
	return nil
}

// RemoveFromCart removes a line by its server-assigned identifier.
func (c *Cart) RemoveFromCart(ctx context.Context, lineID string) error {
	c.mu.Lock()
	cartID := c.cartID
	c.mu.Unlock()
	if cartID == "" {
		return model.NewNotFoundError("cart")
	}

	c.setLoading(true)
	defer c.setLoading(false)

	cart, err := c.gw.RemoveLines(ctx, cartID, []string{lineID})
	if err != nil {
		return err
	}
	c.applyLines(cart)
	return nil
}

// Clear discards the local line items and the persisted identifier
// immediately, then requests a brand-new cart in the background so
// clearing feels instantaneous after checkout. The new identifier is
// persisted when it arrives.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	c.lines = nil
	c.cartID = ""
	c.mu.Unlock()

	if err := c.kv.Delete(storage.KeyCartID); err != nil {
		c.logger.Warn("discarding cart id failed", "error", err)
	}

	// The replacement cart must outlive the request that triggered the
	// clear.
	ctx = context.WithoutCancel(ctx)

	c.clearWG.Add(1)
	go func() {
		defer c.clearWG.Done()
		cart, err := c.gw.CreateCart(ctx)
		if err != nil {
			c.logger.Warn("cart re-creation after clear failed", "error", err)
			return
		}
		c.applyCart(cart)
	}()
}

// Wait blocks until background work spawned by Clear has settled.
func (c *Cart) Wait() {
	c.clearWG.Wait()
}

// ApplyBulkOrder reconciles the cart against a desired variant/quantity
// set with the minimum mutation sequence: removals, then quantity
// updates, then adds. Each step replaces local state with the gateway's
// response, so a failure partway leaves the last known-good state.
func (c *Cart) ApplyBulkOrder(ctx context.Context, desired []reconcile.DesiredLine) error {
	c.mu.Lock()
	cartID := c.cartID
	current := c.lines
	c.mu.Unlock()

	if cartID == "" {
		cart, err := c.gw.CreateCart(ctx)
		if err != nil {
			return err
		}
		c.applyCart(cart)
		cartID = cart.ID
		current = nil
	}

	diff := reconcile.DiffLines(current, desired)
	if diff.IsEmpty() {
		return nil
	}

	c.setLoading(true)
	defer c.setLoading(false)

	if len(diff.ToRemove) > 0 {
		cart, err := c.gw.RemoveLines(ctx, cartID, diff.ToRemove)
		if err != nil {
			return err
		}
		c.applyLines(cart)
	}
	if len(diff.ToUpdate) > 0 {
		cart, err := c.gw.UpdateLines(ctx, cartID, diff.ToUpdate)
		if err != nil {
			return err
		}
		c.applyLines(cart)
	}
	if len(diff.ToAdd) > 0 {
		cart, err := c.gw.AddLines(ctx, cartID, diff.ToAdd)
		if err != nil {
			return err
		}
		c.applyLines(cart)
	}
	return nil
}

// Lines returns the last authoritative line set.
func (c *Cart) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total returns sum(price × quantity) in cents, recomputed on every
// read from the last server response.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, line := range c.lines {
		total += line.PriceCents * int64(line.Quantity)
	}
	return total
}

// Count returns the summed quantity across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// CheckoutURL returns the checkout handoff URL from the last cart
// response, empty before initialization settles.
func (c *Cart) CheckoutURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkoutURL
}

// CartID returns the current server-assigned cart identifier.
func (c *Cart) CartID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cartID
}

// Loading reports whether a gateway call is in flight.
func (c *Cart) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading > 0
}

// applyCart adopts a full cart response: identifier, checkout URL, and
// line set, persisting the identifier.
func (c *Cart) applyCart(cart *model.Cart) {
	c.mu.Lock()
	c.cartID = cart.ID
	c.checkoutURL = cart.CheckoutURL
	c.lines = cart.Lines
	c.mu.Unlock()

	if err := c.kv.Set(storage.KeyCartID, cart.ID); err != nil {
		c.logger.Warn("persisting cart id failed", "error", err)
	}
}

// applyLines adopts the line set (and checkout URL, which mutations
// echo back) from a mutation response.
func (c *Cart) applyLines(cart *model.Cart) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = cart.Lines
	if cart.CheckoutURL != "" {
		c.checkoutURL = cart.CheckoutURL
	}
}

func (c *Cart) setLoading(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.loading++
	} else {
		c.loading--
	}
}
