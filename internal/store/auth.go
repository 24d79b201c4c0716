package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/storage"
)

// Auth owns the authentication session lifecycle: token persistence,
// customer profile resolution, and address mutations. A token that
// fails to resolve is always discarded together with the profile, so
// Customer() == nil reliably means unauthenticated.
type Auth struct {
	gw       gateway.Commerce
	kv       storage.Store
	logger   *slog.Logger
	validate *validator.Validate

	// navigate is the router hook used by Logout to force the client
	// back to the login page. Injected to keep the store decoupled from
	// the router type.
	navigate func(path string)

	mu       sync.Mutex
	customer *model.Customer
	loading  int
}

// NewAuth creates the auth store. navigate may be nil when no router is
// attached (tests, agent sessions).
func NewAuth(gw gateway.Commerce, kv storage.Store, logger *slog.Logger, navigate func(path string)) *Auth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{
		gw:       gw,
		kv:       kv,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		navigate: navigate,
	}
}

// Init performs the session bootstrap: when a persisted token exists,
// resolve the customer; any failure discards the token and leaves the
// store unauthenticated. Never returns an error.
func (a *Auth) Init(ctx context.Context) {
	token, ok := a.kv.Get(storage.KeyCustomerToken)
	if !ok || token == "" {
		return
	}

	a.setLoading(true)
	defer a.setLoading(false)

	customer, err := a.gw.GetCustomer(ctx, token)
	if err != nil {
		a.logger.Info("persisted session invalid, clearing", "error", err)
		a.clearSession()
		return
	}
	a.setCustomer(customer)
}

// Login exchanges credentials for a token, persists it, and resolves
// the customer. Bad credentials surface as model.ErrUnauthorized with
// the backend's message; a token that cannot be resolved afterwards is
// discarded and the resolution error returned.
func (a *Auth) Login(ctx context.Context, email, password string) error {
	a.setLoading(true)
	defer a.setLoading(false)

	token, err := a.gw.LoginCustomer(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.kv.Set(storage.KeyCustomerToken, token); err != nil {
		a.logger.Warn("persisting session token failed", "error", err)
	}

	customer, err := a.gw.GetCustomer(ctx, token)
	if err != nil {
		a.clearSession()
		return err
	}
	a.setCustomer(customer)
	return nil
}

// Register creates a customer record, then logs in with the same
// credentials. Registration alone does not authenticate: a login
// failure after a successful registration is surfaced and the caller
// stays unauthenticated.
func (a *Auth) Register(ctx context.Context, email, password, firstName, lastName string) error {
	a.setLoading(true)
	defer a.setLoading(false)

	if err := a.gw.RegisterCustomer(ctx, email, password, firstName, lastName); err != nil {
		return err
	}
	return a.Login(ctx, email, password)
}

// RecoverPassword requests a recovery email. It always succeeds from
// the caller's point of view: the client must not be able to tell an
// unknown address from a sent email (account-enumeration policy), so
// gateway errors are logged and swallowed.
func (a *Auth) RecoverPassword(ctx context.Context, email string) {
	if err := a.gw.RecoverPassword(ctx, email); err != nil {
		a.logger.Warn("password recovery request failed", "error", err)
	}
}

// AddAddress validates and creates a mailing address, then refreshes
// the full customer record. A no-op when unauthenticated.
func (a *Auth) AddAddress(ctx context.Context, address model.Address) error {
	token, ok := a.token()
	if !ok {
		return nil
	}

	if err := a.validate.Struct(address); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			return model.NewValidationError(invalid[0].Field(), "is required")
		}
		return model.NewValidationError("", err.Error())
	}

	a.setLoading(true)
	defer a.setLoading(false)

	if err := a.gw.CreateAddress(ctx, token, address); err != nil {
		return err
	}
	return a.refresh(ctx, token)
}

// RemoveAddress deletes an address by identifier and refreshes the
// customer record. A no-op when unauthenticated.
func (a *Auth) RemoveAddress(ctx context.Context, addressID string) error {
	token, ok := a.token()
	if !ok {
		return nil
	}

	a.setLoading(true)
	defer a.setLoading(false)

	if err := a.gw.DeleteAddress(ctx, token, addressID); err != nil {
		return err
	}
	return a.refresh(ctx, token)
}

// Logout discards the persisted token, clears the customer, and forces
// navigation to the login page. A full reset: downstream components
// assume a nil customer means unauthenticated and must not see stale
// profile data.
func (a *Auth) Logout() {
	a.clearSession()
	if a.navigate != nil {
		a.navigate("/login")
	}
}

// Customer returns the resolved profile, nil when unauthenticated.
func (a *Auth) Customer() *model.Customer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.customer
}

// IsAuthenticated reports whether a customer profile is resolved.
func (a *Auth) IsAuthenticated() bool {
	return a.Customer() != nil
}

// Loading reports whether a transition-triggering call is in flight.
func (a *Auth) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading > 0
}

// refresh re-resolves the customer record after an address mutation.
// Simplicity over optimistic patching: address lists are small.
func (a *Auth) refresh(ctx context.Context, token string) error {
	customer, err := a.gw.GetCustomer(ctx, token)
	if err != nil {
		return err
	}
	a.setCustomer(customer)
	return nil
}

func (a *Auth) token() (string, bool) {
	token, ok := a.kv.Get(storage.KeyCustomerToken)
	return token, ok && token != ""
}

func (a *Auth) setCustomer(customer *model.Customer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.customer = customer
}

func (a *Auth) clearSession() {
	if err := a.kv.Delete(storage.KeyCustomerToken); err != nil {
		a.logger.Warn("discarding session token failed", "error", err)
	}
	a.setCustomer(nil)
}

func (a *Auth) setLoading(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if on {
		a.loading++
	} else {
		a.loading--
	}
}
