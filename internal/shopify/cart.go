package shopify

import (
	"context"

	"github.com/tidwall/gjson"

	"mediequip-storefront/internal/model"
)

// CreateCart implements gateway.Commerce.
func (c *Client) CreateCart(ctx context.Context) (*model.Cart, error) {
	data, err := c.execute(ctx, cartCreateMutation, nil)
	if err != nil {
		return nil, err
	}
	cart := data.Get("cartCreate.cart")
	if !cart.Exists() {
		return nil, model.NewNetworkError("storefront", errMissingPayload("cartCreate"))
	}
	return transformCart(cart), nil
}

// FetchCart implements gateway.Commerce. Stale identifiers come back as
// a null cart, which maps to model.ErrNotFound so the store can recover
// by creating a fresh cart.
func (c *Client) FetchCart(ctx context.Context, cartID string) (*model.Cart, error) {
	data, err := c.execute(ctx, cartQuery, map[string]any{"cartId": cartID})
	if err != nil {
		return nil, err
	}
	cart := data.Get("cart")
	if !cart.Exists() || cart.Type == gjson.Null {
		return nil, model.NewNotFoundError("cart")
	}
	return transformCart(cart), nil
}

// AddLines implements gateway.Commerce.
func (c *Client) AddLines(ctx context.Context, cartID string, lines []model.LineInput) (*model.Cart, error) {
	vars := map[string]any{
		"cartId": cartID,
		"lines":  lineInputs(lines),
	}
	data, err := c.execute(ctx, cartLinesAddMutation, vars)
	if err != nil {
		return nil, err
	}
	return cartMutationResult(data.Get("cartLinesAdd"))
}

// UpdateLines implements gateway.Commerce.
func (c *Client) UpdateLines(ctx context.Context, cartID string, lines []model.LineUpdate) (*model.Cart, error) {
	updates := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		updates = append(updates, map[string]any{"id": l.LineID, "quantity": l.Quantity})
	}
	vars := map[string]any{
		"cartId": cartID,
		"lines":  updates,
	}
	data, err := c.execute(ctx, cartLinesUpdateMutation, vars)
	if err != nil {
		return nil, err
	}
	return cartMutationResult(data.Get("cartLinesUpdate"))
}

// RemoveLines implements gateway.Commerce.
func (c *Client) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*model.Cart, error) {
	vars := map[string]any{
		"cartId":  cartID,
		"lineIds": lineIDs,
	}
	data, err := c.execute(ctx, cartLinesRemoveMutation, vars)
	if err != nil {
		return nil, err
	}
	return cartMutationResult(data.Get("cartLinesRemove"))
}

func lineInputs(lines []model.LineInput) []map[string]any {
	out := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		out = append(out, map[string]any{"merchandiseId": l.VariantID, "quantity": l.Quantity})
	}
	return out
}
