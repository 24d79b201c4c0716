package shopify

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"mediequip-storefront/internal/model"
)

func errMissingPayload(op string) error {
	return fmt.Errorf("%s: response missing expected payload", op)
}

// RegisterCustomer implements gateway.Commerce. Field-level rejections
// (taken email, weak password) surface as validation errors carrying the
// backend's first message.
func (c *Client) RegisterCustomer(ctx context.Context, email, password, firstName, lastName string) error {
	vars := map[string]any{
		"input": map[string]any{
			"email":     email,
			"password":  password,
			"firstName": firstName,
			"lastName":  lastName,
		},
	}
	data, err := c.execute(ctx, customerCreateMutation, vars)
	if err != nil {
		return err
	}
	if field, msg, ok := firstUserError(data.Get("customerCreate")); ok {
		return model.NewValidationError(field, msg)
	}
	return nil
}

// LoginCustomer implements gateway.Commerce. Bad credentials surface as an
// authentication error with the backend's message.
func (c *Client) LoginCustomer(ctx context.Context, email, password string) (string, error) {
	vars := map[string]any{
		"input": map[string]any{
			"email":    email,
			"password": password,
		},
	}
	data, err := c.execute(ctx, customerAccessTokenCreateMutation, vars)
	if err != nil {
		return "", err
	}
	payload := data.Get("customerAccessTokenCreate")
	if _, msg, ok := firstUserError(payload); ok {
		return "", model.NewAuthenticationError(msg)
	}
	token := payload.Get("customerAccessToken.accessToken").String()
	if token == "" {
		return "", model.NewAuthenticationError("no access token returned")
	}
	return token, nil
}

// GetCustomer implements gateway.Commerce. A null customer means the token
// is invalid or expired; callers clear the session on that error.
func (c *Client) GetCustomer(ctx context.Context, token string) (*model.Customer, error) {
	data, err := c.execute(ctx, customerQuery, map[string]any{"customerAccessToken": token})
	if err != nil {
		return nil, err
	}
	node := data.Get("customer")
	if !node.Exists() || node.Type == gjson.Null {
		return nil, model.NewAuthenticationError("customer not found or token expired")
	}
	customer := transformCustomer(node)
	return &customer, nil
}

// RecoverPassword implements gateway.Commerce. User errors are discarded:
// the caller must not be able to distinguish "email not found" from "email
// sent" (account-enumeration policy).
func (c *Client) RecoverPassword(ctx context.Context, email string) error {
	_, err := c.execute(ctx, customerRecoverMutation, map[string]any{"email": email})
	return err
}

// CreateAddress implements gateway.Commerce.
func (c *Client) CreateAddress(ctx context.Context, token string, address model.Address) error {
	vars := map[string]any{
		"customerAccessToken": token,
		"address": map[string]any{
			"firstName": address.FirstName,
			"lastName":  address.LastName,
			"address1":  address.Address1,
			"address2":  address.Address2,
			"city":      address.City,
			"province":  address.Province,
			"country":   address.Country,
			"zip":       address.Zip,
			"phone":     address.Phone,
		},
	}
	data, err := c.execute(ctx, customerAddressCreateMutation, vars)
	if err != nil {
		return err
	}
	if field, msg, ok := firstUserError(data.Get("customerAddressCreate")); ok {
		return model.NewValidationError(field, msg)
	}
	return nil
}

// DeleteAddress implements gateway.Commerce.
func (c *Client) DeleteAddress(ctx context.Context, token, addressID string) error {
	vars := map[string]any{
		"id":                  addressID,
		"customerAccessToken": token,
	}
	data, err := c.execute(ctx, customerAddressDeleteMutation, vars)
	if err != nil {
		return err
	}
	if field, msg, ok := firstUserError(data.Get("customerAddressDelete")); ok {
		return model.NewValidationError(field, msg)
	}
	return nil
}
