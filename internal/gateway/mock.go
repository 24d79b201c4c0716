package gateway

import (
	"context"

	"mediequip-storefront/internal/model"
)

// Mock implements Commerce for testing.
// Each method can be configured via function fields; unconfigured methods
// return zero values or not-found.
type Mock struct {
	CreateCartFunc              func(ctx context.Context) (*model.Cart, error)
	FetchCartFunc               func(ctx context.Context, cartID string) (*model.Cart, error)
	AddLinesFunc                func(ctx context.Context, cartID string, lines []model.LineInput) (*model.Cart, error)
	UpdateLinesFunc             func(ctx context.Context, cartID string, lines []model.LineUpdate) (*model.Cart, error)
	RemoveLinesFunc             func(ctx context.Context, cartID string, lineIDs []string) (*model.Cart, error)
	FetchProductsFunc           func(ctx context.Context, limit int) ([]model.Product, error)
	FetchProductFunc            func(ctx context.Context, id string) (*model.Product, error)
	FetchProductsByCategoryFunc func(ctx context.Context, category string) ([]model.Product, error)
	SearchProductsFunc          func(ctx context.Context, query string) ([]model.Product, error)
	RegisterCustomerFunc        func(ctx context.Context, email, password, firstName, lastName string) error
	LoginCustomerFunc           func(ctx context.Context, email, password string) (string, error)
	GetCustomerFunc             func(ctx context.Context, token string) (*model.Customer, error)
	RecoverPasswordFunc         func(ctx context.Context, email string) error
	CreateAddressFunc           func(ctx context.Context, token string, address model.Address) error
	DeleteAddressFunc           func(ctx context.Context, token, addressID string) error
}

func (m *Mock) CreateCart(ctx context.Context) (*model.Cart, error) {
	if m.CreateCartFunc != nil {
		return m.CreateCartFunc(ctx)
	}
	return &model.Cart{ID: "mock-cart", CheckoutURL: "https://example.test/checkout"}, nil
}

func (m *Mock) FetchCart(ctx context.Context, cartID string) (*model.Cart, error) {
	if m.FetchCartFunc != nil {
		return m.FetchCartFunc(ctx, cartID)
	}
	return nil, model.NewNotFoundError("cart")
}

func (m *Mock) AddLines(ctx context.Context, cartID string, lines []model.LineInput) (*model.Cart, error) {
	if m.AddLinesFunc != nil {
		return m.AddLinesFunc(ctx, cartID, lines)
	}
	return nil, model.NewNotFoundError("cart")
}

func (m *Mock) UpdateLines(ctx context.Context, cartID string, lines []model.LineUpdate) (*model.Cart, error) {
	if m.UpdateLinesFunc != nil {
		return m.UpdateLinesFunc(ctx, cartID, lines)
	}
	return nil, model.NewNotFoundError("cart")
}

func (m *Mock) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*model.Cart, error) {
	if m.RemoveLinesFunc != nil {
		return m.RemoveLinesFunc(ctx, cartID, lineIDs)
	}
	return nil, model.NewNotFoundError("cart")
}

func (m *Mock) FetchProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if m.FetchProductsFunc != nil {
		return m.FetchProductsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *Mock) FetchProduct(ctx context.Context, id string) (*model.Product, error) {
	if m.FetchProductFunc != nil {
		return m.FetchProductFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("product")
}

func (m *Mock) FetchProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	if m.FetchProductsByCategoryFunc != nil {
		return m.FetchProductsByCategoryFunc(ctx, category)
	}
	return nil, nil
}

func (m *Mock) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	if m.SearchProductsFunc != nil {
		return m.SearchProductsFunc(ctx, query)
	}
	return nil, nil
}

func (m *Mock) RegisterCustomer(ctx context.Context, email, password, firstName, lastName string) error {
	if m.RegisterCustomerFunc != nil {
		return m.RegisterCustomerFunc(ctx, email, password, firstName, lastName)
	}
	return nil
}

func (m *Mock) LoginCustomer(ctx context.Context, email, password string) (string, error) {
	if m.LoginCustomerFunc != nil {
		return m.LoginCustomerFunc(ctx, email, password)
	}
	return "", model.NewAuthenticationError("not configured")
}

func (m *Mock) GetCustomer(ctx context.Context, token string) (*model.Customer, error) {
	if m.GetCustomerFunc != nil {
		return m.GetCustomerFunc(ctx, token)
	}
	return nil, model.NewAuthenticationError("not configured")
}

func (m *Mock) RecoverPassword(ctx context.Context, email string) error {
	if m.RecoverPasswordFunc != nil {
		return m.RecoverPasswordFunc(ctx, email)
	}
	return nil
}

func (m *Mock) CreateAddress(ctx context.Context, token string, address model.Address) error {
	if m.CreateAddressFunc != nil {
		return m.CreateAddressFunc(ctx, token, address)
	}
	return nil
}

func (m *Mock) DeleteAddress(ctx context.Context, token, addressID string) error {
	if m.DeleteAddressFunc != nil {
		return m.DeleteAddressFunc(ctx, token, addressID)
	}
	return nil
}
