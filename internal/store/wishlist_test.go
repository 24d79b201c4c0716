package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/storage"
)

func TestWishlistSetSemantics(t *testing.T) {
	kv := storage.NewMemoryStore()
	c := NewCart(&gateway.Mock{}, kv, testLogger())

	p := purchasable("p1", "v1", 100)
	c.AddToWishlist(p)
	c.AddToWishlist(p)

	if got := len(c.Wishlist()); got != 1 {
		t.Errorf("len(Wishlist()) = %d after duplicate add, want 1", got)
	}
	if !c.InWishlist("p1") {
		t.Error("InWishlist(p1) = false")
	}

	c.RemoveFromWishlist("p1")
	if c.InWishlist("p1") {
		t.Error("InWishlist(p1) = true after removal")
	}
}

func TestWishlistPersistsOnEveryChange(t *testing.T) {
	kv := storage.NewMemoryStore()
	c := NewCart(&gateway.Mock{}, kv, testLogger())

	c.AddToWishlist(purchasable("p1", "v1", 100))
	c.AddToWishlist(purchasable("p2", "v2", 200))

	raw, ok := kv.Get(storage.KeyWishlist)
	if !ok {
		t.Fatal("wishlist not persisted")
	}
	var saved []model.Product
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("snapshot holds %d products, want 2", len(saved))
	}

	c.RemoveFromWishlist("p1")
	raw, _ = kv.Get(storage.KeyWishlist)
	saved = nil
	json.Unmarshal([]byte(raw), &saved)
	if len(saved) != 1 || saved[0].ID != "p2" {
		t.Errorf("snapshot after removal = %+v, want only p2", saved)
	}
}

func TestWishlistLoadsAtInit(t *testing.T) {
	kv := storage.NewMemoryStore()
	snapshot, _ := json.Marshal([]model.Product{purchasable("p1", "v1", 100)})
	kv.Set(storage.KeyWishlist, string(snapshot))

	c := NewCart(&gateway.Mock{
		CreateCartFunc: func(ctx context.Context) (*model.Cart, error) { return serverCart("cart-1"), nil },
	}, kv, testLogger())
	c.Init(context.Background())

	if !c.InWishlist("p1") {
		t.Error("persisted wishlist not restored")
	}
}

func TestWishlistCorruptSnapshotYieldsEmpty(t *testing.T) {
	kv := storage.NewMemoryStore()
	kv.Set(storage.KeyWishlist, "{not json")

	c := NewCart(&gateway.Mock{
		CreateCartFunc: func(ctx context.Context) (*model.Cart, error) { return serverCart("cart-1"), nil },
	}, kv, testLogger())
	c.Init(context.Background())

	if got := len(c.Wishlist()); got != 0 {
		t.Errorf("len(Wishlist()) = %d for corrupt snapshot, want 0", got)
	}
}

func TestMoveToCart(t *testing.T) {
	t.Run("removes from wishlist only on success", func(t *testing.T) {
		gw := &gateway.Mock{
			CreateCartFunc: func(ctx context.Context) (*model.Cart, error) { return serverCart("cart-1"), nil },
			AddLinesFunc: func(ctx context.Context, cartID string, lines []model.LineInput) (*model.Cart, error) {
				return serverCart("cart-1", model.CartLine{LineID: "l1", VariantID: lines[0].VariantID, PriceCents: 100, Quantity: 1}), nil
			},
		}
		c := NewCart(gw, storage.NewMemoryStore(), testLogger())
		c.Init(context.Background())
		c.AddToWishlist(purchasable("p1", "v1", 100))

		if err := c.MoveToCart(context.Background(), "p1"); err != nil {
			t.Fatalf("MoveToCart: %v", err)
		}
		if c.InWishlist("p1") {
			t.Error("product still wishlisted after successful move")
		}
		if c.Count() != 1 {
			t.Errorf("Count() = %d, want 1", c.Count())
		}
	})

	t.Run("keeps the product when the add fails", func(t *testing.T) {
		gw := &gateway.Mock{
			CreateCartFunc: func(ctx context.Context) (*model.Cart, error) { return serverCart("cart-1"), nil },
			AddLinesFunc: func(ctx context.Context, cartID string, lines []model.LineInput) (*model.Cart, error) {
				return nil, model.NewNetworkError("storefront", errors.New("down"))
			},
		}
		c := NewCart(gw, storage.NewMemoryStore(), testLogger())
		c.Init(context.Background())
		c.AddToWishlist(purchasable("p1", "v1", 100))

		if err := c.MoveToCart(context.Background(), "p1"); !errors.Is(err, model.ErrUpstream) {
			t.Fatalf("err = %v, want ErrUpstream", err)
		}
		if !c.InWishlist("p1") {
			t.Error("product lost from wishlist after failed move")
		}
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		c := NewCart(&gateway.Mock{}, storage.NewMemoryStore(), testLogger())
		if err := c.MoveToCart(context.Background(), "ghost"); !errors.Is(err, model.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}
