package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileStore(dir, "client-1")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, ok := s.Get(KeyCartID); ok {
		t.Error("fresh store should not have cart_id")
	}

	if err := s.Set(KeyCartID, "gid://shop/Cart/abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(KeyWishlist, `[{"id":"p1"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A new store over the same file sees the persisted values.
	reloaded, err := NewFileStore(dir, "client-1")
	if err != nil {
		t.Fatalf("NewFileStore (reload): %v", err)
	}
	if v, ok := reloaded.Get(KeyCartID); !ok || v != "gid://shop/Cart/abc" {
		t.Errorf("Get(cart_id) = %q, %v", v, ok)
	}
	if v, ok := reloaded.Get(KeyWishlist); !ok || v != `[{"id":"p1"}]` {
		t.Errorf("Get(wishlist) = %q, %v", v, ok)
	}
}

func TestFileStoreDelete(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "client")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := s.Set(KeyCustomerToken, "tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete(KeyCustomerToken); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get(KeyCustomerToken); ok {
		t.Error("token still present after Delete")
	}

	// Deleting an absent key is a no-op.
	if err := s.Delete("never-set"); err != nil {
		t.Errorf("Delete(absent) = %v", err)
	}
}

func TestFileStoreCorruptDocumentTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileStore(dir, "client")
	if err != nil {
		t.Fatalf("NewFileStore on corrupt file: %v", err)
	}
	if _, ok := s.Get(KeyCartID); ok {
		t.Error("corrupt document should read as empty")
	}

	// Store remains writable and recovers the file.
	if err := s.Set(KeyCartID, "new"); err != nil {
		t.Fatalf("Set after corruption: %v", err)
	}
	reloaded, err := NewFileStore(dir, "client")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := reloaded.Get(KeyCartID); v != "new" {
		t.Errorf("Get after recovery = %q", v)
	}
}

func TestFileStoreSeparateNamespaces(t *testing.T) {
	dir := t.TempDir()

	a, _ := NewFileStore(dir, "a")
	b, _ := NewFileStore(dir, "b")

	if err := a.Set(KeyCartID, "cart-a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Get(KeyCartID); ok {
		t.Error("namespace b sees namespace a's keys")
	}
}
