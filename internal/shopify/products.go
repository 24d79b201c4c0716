package shopify

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"mediequip-storefront/internal/catalog"
	"mediequip-storefront/internal/model"
)

// maxProductPage is the Storefront API's per-request ceiling; requesting it
// outright sidesteps pagination for a catalog of this size.
const maxProductPage = 250

// FetchProducts implements gateway.Commerce.
func (c *Client) FetchProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 || limit > maxProductPage {
		limit = maxProductPage
	}
	data, err := c.execute(ctx, productsQuery, map[string]any{"first": limit})
	if err != nil {
		return nil, err
	}
	return transformProducts(data.Get("products.edges")), nil
}

// FetchProduct implements gateway.Commerce.
func (c *Client) FetchProduct(ctx context.Context, id string) (*model.Product, error) {
	data, err := c.execute(ctx, productByIDQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	node := data.Get("product")
	if !node.Exists() || node.Type == gjson.Null {
		return nil, model.NewNotFoundError("product")
	}
	p := transformProduct(node)
	return &p, nil
}

// FetchProductsByCategory implements gateway.Commerce. The backend has no
// category field, so the query is assembled from the category's keyword
// list. When the keyword query fails upstream, the full catalog is fetched
// and filtered by inferred category instead, which is slower but always
// consistent with what the listing page displays.
func (c *Client) FetchProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	if category == "" || category == "All" {
		return c.FetchProducts(ctx, maxProductPage)
	}

	query := categoryQuery(category)
	data, err := c.execute(ctx, productSearchQuery, map[string]any{"query": query, "first": maxProductPage})
	if err == nil {
		return transformProducts(data.Get("products.edges")), nil
	}

	c.logger.Warn("category query failed, falling back to client-side filter",
		"category", category, "error", err)

	all, err := c.FetchProducts(ctx, maxProductPage)
	if err != nil {
		return nil, err
	}
	filtered := make([]model.Product, 0, len(all))
	for _, p := range all {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// SearchProducts implements gateway.Commerce.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	q := fmt.Sprintf("title:*%s* OR vendor:*%s* OR tag:%s OR product_type:%s", query, query, query, query)
	data, err := c.execute(ctx, productSearchQuery, map[string]any{"query": q, "first": maxProductPage})
	if err != nil {
		return nil, err
	}
	return transformProducts(data.Get("products.edges")), nil
}

// categoryQuery builds a Storefront search query for a display category.
// Only the first four keywords are used to keep the query string within
// the API's length tolerance.
func categoryQuery(category string) string {
	keywords := catalog.Keywords(category)
	if len(keywords) == 0 {
		return fmt.Sprintf("title:*%s* OR product_type:%s OR tag:%s", category, category, category)
	}
	if len(keywords) > 4 {
		keywords = keywords[:4]
	}

	titleTerms := make([]string, 0, len(keywords))
	tagTerms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		titleTerms = append(titleTerms, fmt.Sprintf("title:*%s*", k))
		tagTerms = append(tagTerms, fmt.Sprintf("tag:%s", k))
	}
	return fmt.Sprintf("(%s) OR (%s) OR product_type:%s",
		strings.Join(titleTerms, " OR "),
		strings.Join(tagTerms, " OR "),
		category)
}
