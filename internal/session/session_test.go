package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"mediequip-storefront/internal/demo"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/storage"
)

func testManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(demo.New(), cfg)
	t.Cleanup(m.Close)
	return m
}

func TestCreateWiresAWorkingSession(t *testing.T) {
	m := testManager(t, Config{})

	s, err := m.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == "" {
		t.Fatal("session has no id")
	}
	if s.Cart.CartID() == "" {
		t.Error("cart was not initialized")
	}

	view := s.Pages.Build(context.Background(), s.Router.Navigate("/products"))
	if view.Page != "products" {
		t.Errorf("page = %q, want %q", view.Page, "products")
	}
}

func TestGetResolvesAndRefreshes(t *testing.T) {
	m := testManager(t, Config{})

	s, err := m.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}

	if _, err := m.Get("no-such-session"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestIdleSessionsExpire(t *testing.T) {
	m := testManager(t, Config{IdleTTL: 20 * time.Millisecond})

	s, err := m.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	if _, err := m.Get(s.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expired session: err = %v, want ErrNotFound", err)
	}
	if n := m.Len(); n != 0 {
		t.Errorf("Len() = %d after expiry, want 0", n)
	}
}

func TestAccessKeepsASessionAlive(t *testing.T) {
	m := testManager(t, Config{IdleTTL: 60 * time.Millisecond})

	s, err := m.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		if _, err := m.Get(s.ID); err != nil {
			t.Fatalf("Get after %d touches: %v", i, err)
		}
	}
}

func TestClientIDResumesThePersistedCart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	gw := demo.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m1 := NewManager(gw, Config{DataDir: dir, Logger: logger})
	first, err := m1.Create(ctx, "kiosk-7")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ClientID != "kiosk-7" {
		t.Fatalf("ClientID = %q, want %q", first.ClientID, "kiosk-7")
	}

	p, err := gw.FetchProduct(ctx, "demo-product-01")
	if err != nil {
		t.Fatalf("FetchProduct: %v", err)
	}
	if err := first.Cart.AddToCart(ctx, *p, 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	cartID := first.Cart.CartID()
	m1.Close()

	m2 := NewManager(gw, Config{DataDir: dir, Logger: logger})
	t.Cleanup(m2.Close)
	second, err := m2.Create(ctx, "kiosk-7")
	if err != nil {
		t.Fatalf("Create (resume): %v", err)
	}
	if second.ID == first.ID {
		t.Error("resumed session reused the old session id")
	}
	if got := second.Cart.CartID(); got != cartID {
		t.Errorf("resumed cart id = %q, want %q", got, cartID)
	}
	if n := second.Cart.Count(); n != 2 {
		t.Errorf("resumed cart count = %d, want 2", n)
	}
}

func TestFreshSessionsGetDistinctNamespaces(t *testing.T) {
	ctx := context.Background()
	m := testManager(t, Config{DataDir: t.TempDir()})

	a, err := m.Create(ctx, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := m.Create(ctx, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ClientID == b.ClientID {
		t.Errorf("both sessions share namespace %q", a.ClientID)
	}
	if a.Cart.CartID() == b.Cart.CartID() {
		t.Error("fresh sessions share a cart")
	}
}

func TestCreateRejectsUnsafeClientIDs(t *testing.T) {
	m := testManager(t, Config{DataDir: t.TempDir()})

	for _, id := range []string{"../escape", "a/b", ".", "..", ".hidden", "with space", "x\x00y"} {
		if _, err := m.Create(context.Background(), id); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("Create(%q): err = %v, want ErrInvalidInput", id, err)
		}
	}
}

func TestFileBackedSessionsPersistAcrossManagers(t *testing.T) {
	dir := t.TempDir()
	m := testManager(t, Config{DataDir: dir})

	s, err := m.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	cartID := s.Cart.CartID()
	if cartID == "" {
		t.Fatal("cart was not initialized")
	}
	m.Close()

	kv, err := storage.NewFileStore(dir, s.ID)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if got, ok := kv.Get(storage.KeyCartID); !ok || got != cartID {
		t.Errorf("persisted cart id = %q, %v, want %q", got, ok, cartID)
	}
}
