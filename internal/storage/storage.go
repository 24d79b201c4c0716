// Package storage provides the durable key-value store backing client
// state that must survive restarts: the cart identifier, the wishlist
// snapshot, and the customer access token.
//
// The contract mirrors browser local storage: writes are synchronous from
// the caller's perspective, and reads that fail to deserialize are treated
// as absent, never surfaced as errors.
package storage

// Well-known keys. Logical names; the backing store decides layout.
const (
	KeyCartID        = "cart_id"
	KeyWishlist      = "wishlist"
	KeyCustomerToken = "customer_token"
)

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)

	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
