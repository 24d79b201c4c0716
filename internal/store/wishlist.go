package store

import (
	"context"
	"encoding/json"

	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/storage"
)

// loadWishlist restores the persisted wishlist snapshot. A snapshot
// that fails to deserialize is treated as absent, never as an error.
func (c *Cart) loadWishlist() {
	raw, ok := c.kv.Get(storage.KeyWishlist)
	if !ok || raw == "" {
		return
	}
	var saved []model.Product
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		c.logger.Warn("discarding unreadable wishlist snapshot", "error", err)
		return
	}
	c.mu.Lock()
	c.wishlist = saved
	c.mu.Unlock()
}

// AddToWishlist adds a product with set semantics: a product identifier
// already present leaves the wishlist unchanged.
func (c *Cart) AddToWishlist(product model.Product) {
	c.mu.Lock()
	for _, p := range c.wishlist {
		if p.ID == product.ID {
			c.mu.Unlock()
			return
		}
	}
	c.wishlist = append(c.wishlist, product)
	c.mu.Unlock()

	c.persistWishlist()
}

// RemoveFromWishlist removes a product by identifier.
func (c *Cart) RemoveFromWishlist(productID string) {
	c.mu.Lock()
	kept := c.wishlist[:0]
	for _, p := range c.wishlist {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	c.wishlist = kept
	c.mu.Unlock()

	c.persistWishlist()
}

// InWishlist reports membership by product identifier.
func (c *Cart) InWishlist(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.wishlist {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// Wishlist returns the current wishlist snapshot.
func (c *Cart) Wishlist() []model.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Product, len(c.wishlist))
	copy(out, c.wishlist)
	return out
}

// MoveToCart adds a wishlist product to the cart and, only when the add
// succeeds, removes it from the wishlist.
func (c *Cart) MoveToCart(ctx context.Context, productID string) error {
	c.mu.Lock()
	var product *model.Product
	for i := range c.wishlist {
		if c.wishlist[i].ID == productID {
			product = &c.wishlist[i]
			break
		}
	}
	c.mu.Unlock()

	if product == nil {
		return model.NewNotFoundError("wishlist product")
	}
	if err := c.AddToCart(ctx, *product, 1); err != nil {
		return err
	}
	c.RemoveFromWishlist(productID)
	return nil
}

// persistWishlist writes the full snapshot. Write failures are logged
// and ignored; the in-memory wishlist stays authoritative for the
// session.
func (c *Cart) persistWishlist() {
	c.mu.Lock()
	raw, err := json.Marshal(c.wishlist)
	c.mu.Unlock()
	if err != nil {
		c.logger.Warn("serializing wishlist failed", "error", err)
		return
	}
	if err := c.kv.Set(storage.KeyWishlist, string(raw)); err != nil {
		c.logger.Warn("persisting wishlist failed", "error", err)
	}
}
