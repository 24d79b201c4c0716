package store

import (
	"context"
	"errors"
	"testing"

	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/storage"
)

func testCustomer() *model.Customer {
	return &model.Customer{
		ID:        "gid://shopify/Customer/c1",
		FirstName: "Dana",
		LastName:  "Reyes",
		Email:     "dana@clinic.example",
	}
}

func TestAuthBootstrap(t *testing.T) {
	t.Run("valid persisted token resolves the customer", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		kv.Set(storage.KeyCustomerToken, "tok-1")
		gw := &gateway.Mock{
			GetCustomerFunc: func(ctx context.Context, token string) (*model.Customer, error) {
				if token != "tok-1" {
					t.Errorf("token = %q, want tok-1", token)
				}
				return testCustomer(), nil
			},
		}

		a := NewAuth(gw, kv, testLogger(), nil)
		a.Init(context.Background())

		if !a.IsAuthenticated() {
			t.Error("IsAuthenticated() = false with a valid token")
		}
	})

	t.Run("invalid token is discarded", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		kv.Set(storage.KeyCustomerToken, "tok-expired")
		gw := &gateway.Mock{
			GetCustomerFunc: func(ctx context.Context, token string) (*model.Customer, error) {
				return nil, model.NewAuthenticationError("customer not found or token expired")
			},
		}

		a := NewAuth(gw, kv, testLogger(), nil)
		a.Init(context.Background())

		if a.IsAuthenticated() {
			t.Error("IsAuthenticated() = true with an expired token")
		}
		if _, ok := kv.Get(storage.KeyCustomerToken); ok {
			t.Error("expired token still persisted")
		}
	})

	t.Run("no token is a quiet no-op", func(t *testing.T) {
		called := false
		gw := &gateway.Mock{
			GetCustomerFunc: func(ctx context.Context, token string) (*model.Customer, error) {
				called = true
				return nil, nil
			},
		}
		a := NewAuth(gw, storage.NewMemoryStore(), testLogger(), nil)
		a.Init(context.Background())
		if called {
			t.Error("gateway called without a persisted token")
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("persists the token and resolves the customer", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		gw := &gateway.Mock{
			LoginCustomerFunc: func(ctx context.Context, email, password string) (string, error) {
				return "tok-login", nil
			},
			GetCustomerFunc: func(ctx context.Context, token string) (*model.Customer, error) {
				return testCustomer(), nil
			},
		}

		a := NewAuth(gw, kv, testLogger(), nil)
		if err := a.Login(context.Background(), "dana@clinic.example", "hunter2"); err != nil {
			t.Fatalf("Login: %v", err)
		}

		if tok, _ := kv.Get(storage.KeyCustomerToken); tok != "tok-login" {
			t.Errorf("persisted token = %q", tok)
		}
		if got := a.Customer(); got == nil || got.Email != "dana@clinic.example" {
			t.Errorf("Customer() = %+v", got)
		}
	})

	t.Run("bad credentials stay unauthenticated", func(t *testing.T) {
		gw := &gateway.Mock{
			LoginCustomerFunc: func(ctx context.Context, email, password string) (string, error) {
				return "", model.NewAuthenticationError("Unidentified customer")
			},
		}
		a := NewAuth(gw, storage.NewMemoryStore(), testLogger(), nil)
		err := a.Login(context.Background(), "dana@clinic.example", "wrong")
		if !errors.Is(err, model.ErrUnauthorized) {
			t.Errorf("err = %v, want ErrUnauthorized", err)
		}
		if a.IsAuthenticated() {
			t.Error("IsAuthenticated() = true after failed login")
		}
	})

	t.Run("unresolvable token is discarded", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		gw := &gateway.Mock{
			LoginCustomerFunc: func(ctx context.Context, email, password string) (string, error) {
				return "tok-orphan", nil
			},
			GetCustomerFunc: func(ctx context.Context, token string) (*model.Customer, error) {
				return nil, model.NewNetworkError("storefront", errors.New("down"))
			},
		}
		a := NewAuth(gw, kv, testLogger(), nil)
		if err := a.Login(context.Background(), "dana@clinic.example", "hunter2"); err == nil {
			t.Fatal("Login succeeded with unresolvable customer")
		}
		if _, ok := kv.Get(storage.KeyCustomerToken); ok {
			t.Error("orphan token still persisted")
		}
	})
}

func TestRegister(t *testing.T) {
	t.Run("registers then logs in", func(t *testing.T) {
		var calls []string
		gw := &gateway.Mock{
			RegisterCustomerFunc: func(ctx context.Context, email, password, firstName, lastName string) error {
				calls = append(calls, "register")
				return nil
			},
			LoginCustomerFunc: func(ctx context.Context, email, password string) (string, error) {
				calls = append(calls, "login")
				return "tok-1", nil
			},
			GetCustomerFunc: func(ctx context.Context, token string) (*model.Customer, error) {
				return testCustomer(), nil
			},
		}

		a := NewAuth(gw, storage.NewMemoryStore(), testLogger(), nil)
		if err := a.Register(context.Background(), "dana@clinic.example", "hunter2", "Dana", "Reyes"); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if len(calls) != 2 || calls[0] != "register" || calls[1] != "login" {
			t.Errorf("calls = %v, want [register login]", calls)
		}
		if !a.IsAuthenticated() {
			t.Error("IsAuthenticated() = false after register+login")
		}
	})

	t.Run("field rejection surfaces as validation error", func(t *testing.T) {
		gw := &gateway.Mock{
			RegisterCustomerFunc: func(ctx context.Context, email, password, firstName, lastName string) error {
				return model.NewValidationError("email", "has already been taken")
			},
		}
		a := NewAuth(gw, storage.NewMemoryStore(), testLogger(), nil)
		err := a.Register(context.Background(), "dana@clinic.example", "hunter2", "Dana", "Reyes")
		if !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("registration success but login failure stays unauthenticated", func(t *testing.T) {
		gw := &gateway.Mock{
			RegisterCustomerFunc: func(ctx context.Context, email, password, firstName, lastName string) error {
				return nil
			},
			LoginCustomerFunc: func(ctx context.Context, email, password string) (string, error) {
				return "", model.NewAuthenticationError("account requires activation")
			},
		}
		a := NewAuth(gw, storage.NewMemoryStore(), testLogger(), nil)
		err := a.Register(context.Background(), "dana@clinic.example", "hunter2", "Dana", "Reyes")
		if !errors.Is(err, model.ErrUnauthorized) {
			t.Errorf("err = %v, want the login failure", err)
		}
		if a.IsAuthenticated() {
			t.Error("IsAuthenticated() = true despite failed login")
		}
	})
}

func TestRecoverPasswordSwallowsErrors(t *testing.T) {
	gw := &gateway.Mock{
		RecoverPasswordFunc: func(ctx context.Context, email string) error {
			return model.NewNetworkError("storefront", errors.New("down"))
		},
	}
	a := NewAuth(gw, storage.NewMemoryStore(), testLogger(), nil)
	a.RecoverPassword(context.Background(), "dana@clinic.example")
}

func TestAddresses(t *testing.T) {
	validAddress := model.Address{
		FirstName: "Dana", LastName: "Reyes",
		Address1: "12 Harbor Way", City: "Portland",
		Country: "United States", Zip: "97201",
	}

	t.Run("no-op when unauthenticated", func(t *testing.T) {
		called := false
		gw := &gateway.Mock{
			CreateAddressFunc: func(ctx context.Context, token string, address model.Address) error {
				called = true
				return nil
			},
		}
		a := NewAuth(gw, storage.NewMemoryStore(), testLogger(), nil)
		if err := a.AddAddress(context.Background(), validAddress); err != nil {
			t.Fatalf("AddAddress: %v", err)
		}
		if called {
			t.Error("gateway called without a session")
		}
	})

	t.Run("rejects an incomplete address before the gateway", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		kv.Set(storage.KeyCustomerToken, "tok-1")
		called := false
		gw := &gateway.Mock{
			CreateAddressFunc: func(ctx context.Context, token string, address model.Address) error {
				called = true
				return nil
			},
		}
		a := NewAuth(gw, kv, testLogger(), nil)
		err := a.AddAddress(context.Background(), model.Address{FirstName: "Dana"})
		if !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
		if called {
			t.Error("gateway called for an invalid address")
		}
	})

	t.Run("create refreshes the customer record", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		kv.Set(storage.KeyCustomerToken, "tok-1")
		refreshed := testCustomer()
		refreshed.Addresses = []model.Address{{ID: "a1", City: "Portland"}}
		gw := &gateway.Mock{
			CreateAddressFunc: func(ctx context.Context, token string, address model.Address) error {
				return nil
			},
			GetCustomerFunc: func(ctx context.Context, token string) (*model.Customer, error) {
				return refreshed, nil
			},
		}
		a := NewAuth(gw, kv, testLogger(), nil)
		if err := a.AddAddress(context.Background(), validAddress); err != nil {
			t.Fatalf("AddAddress: %v", err)
		}
		got := a.Customer()
		if got == nil || len(got.Addresses) != 1 {
			t.Errorf("Customer() = %+v, want refreshed record", got)
		}
	})

	t.Run("remove refreshes the customer record", func(t *testing.T) {
		kv := storage.NewMemoryStore()
		kv.Set(storage.KeyCustomerToken, "tok-1")
		var deleted string
		gw := &gateway.Mock{
			DeleteAddressFunc: func(ctx context.Context, token, addressID string) error {
				deleted = addressID
				return nil
			},
			GetCustomerFunc: func(ctx context.Context, token string) (*model.Customer, error) {
				return testCustomer(), nil
			},
		}
		a := NewAuth(gw, kv, testLogger(), nil)
		if err := a.RemoveAddress(context.Background(), "a1"); err != nil {
			t.Fatalf("RemoveAddress: %v", err)
		}
		if deleted != "a1" {
			t.Errorf("deleted = %q, want a1", deleted)
		}
	})
}

func TestLogout(t *testing.T) {
	kv := storage.NewMemoryStore()
	kv.Set(storage.KeyCustomerToken, "tok-1")
	gw := &gateway.Mock{
		GetCustomerFunc: func(ctx context.Context, token string) (*model.Customer, error) {
			if _, ok := kv.Get(storage.KeyCustomerToken); !ok {
				return nil, model.NewAuthenticationError("no session")
			}
			return testCustomer(), nil
		},
	}

	var navigatedTo string
	a := NewAuth(gw, kv, testLogger(), func(path string) { navigatedTo = path })
	a.Init(context.Background())
	if !a.IsAuthenticated() {
		t.Fatal("not authenticated before logout")
	}

	a.Logout()

	if a.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after logout")
	}
	if _, ok := kv.Get(storage.KeyCustomerToken); ok {
		t.Error("token still persisted after logout")
	}
	if navigatedTo != "/login" {
		t.Errorf("navigated to %q, want /login", navigatedTo)
	}

	// A reload must not resolve a customer again.
	b := NewAuth(gw, kv, testLogger(), nil)
	b.Init(context.Background())
	if b.IsAuthenticated() {
		t.Error("reload resolved a customer after logout")
	}
}
