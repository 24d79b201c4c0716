package shopify

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"mediequip-storefront/internal/catalog"
	"mediequip-storefront/internal/model"
)

// placeholderImage is shown when a product carries no imagery at all.
const placeholderImage = "https://via.placeholder.com/400?text=No+Image"

// specLineLength bounds the short plain-text spec line on listing cards.
const specLineLength = 60

// cartMutationResult unwraps a cart mutation payload: user errors map to
// validation errors, a missing cart is an upstream defect, and otherwise
// the authoritative cart is returned.
func cartMutationResult(payload gjson.Result) (*model.Cart, error) {
	if field, msg, ok := firstUserError(payload); ok {
		return nil, model.NewValidationError(field, msg)
	}
	cart := payload.Get("cart")
	if !cart.Exists() || cart.Type == gjson.Null {
		return nil, model.NewNetworkError("storefront", errMissingPayload("cart mutation"))
	}
	return transformCart(cart), nil
}

// transformCart maps a cart fragment response onto the model cart. The
// line set wholesale replaces whatever the store held before.
func transformCart(cart gjson.Result) *model.Cart {
	out := &model.Cart{
		ID:          cart.Get("id").String(),
		CheckoutURL: cart.Get("checkoutUrl").String(),
		Lines:       []model.CartLine{},
	}

	for _, edge := range cart.Get("lines.edges").Array() {
		node := edge.Get("node")
		merch := node.Get("merchandise")

		variantTitle := merch.Get("title").String()
		if variantTitle == "Default Title" {
			variantTitle = ""
		}

		out.Lines = append(out.Lines, model.CartLine{
			LineID:       node.Get("id").String(),
			ProductID:    merch.Get("product.id").String(),
			VariantID:    merch.Get("id").String(),
			Title:        merch.Get("product.title").String(),
			Vendor:       merch.Get("product.vendor").String(),
			VariantTitle: variantTitle,
			Image:        merch.Get("image.url").String(),
			PriceCents:   model.ParseCents(merch.Get("price.amount").String()),
			Quantity:     int(node.Get("quantity").Int()),
		})
	}
	return out
}

func transformProducts(edges gjson.Result) []model.Product {
	out := []model.Product{}
	for _, edge := range edges.Array() {
		out = append(out, transformProduct(edge.Get("node")))
	}
	return out
}

// transformProduct maps a product fragment response onto the model
// product, deriving category, spec line, and rating client-side.
func transformProduct(node gjson.Result) model.Product {
	firstVariant := node.Get("variants.edges.0.node")

	images := []string{}
	for _, edge := range node.Get("images.edges").Array() {
		if url := edge.Get("node.url").String(); url != "" {
			images = append(images, url)
		}
	}
	if len(images) == 0 {
		if url := firstVariant.Get("image.url").String(); url != "" {
			images = append(images, url)
		} else {
			images = append(images, placeholderImage)
		}
	}

	tags := []string{}
	for _, tag := range node.Get("tags").Array() {
		tags = append(tags, tag.String())
	}

	collections := []catalog.Collection{}
	for _, edge := range node.Get("collections.edges").Array() {
		collections = append(collections, catalog.Collection{
			Title:  edge.Get("node.title").String(),
			Handle: edge.Get("node.handle").String(),
		})
	}

	id := node.Get("id").String()
	title := node.Get("title").String()
	productType := node.Get("productType").String()

	description := node.Get("descriptionHtml").String()
	if description == "" {
		description = node.Get("description").String()
	}

	return model.Product{
		ID:                  id,
		Handle:              node.Get("handle").String(),
		Vendor:              node.Get("vendor").String(),
		Title:               title,
		Category:            catalog.Infer(title, tags, productType, collections),
		PriceCents:          model.ParseCents(firstVariant.Get("price.amount").String()),
		CompareAtPriceCents: model.ParseCents(firstVariant.Get("compareAtPrice.amount").String()),
		Image:               images[0],
		Images:              images,
		Tags:                tags,
		Specs:               specLine(node.Get("description").String()),
		Description:         description,
		InStock:             firstVariant.Get("availableForSale").Bool(),
		VariantID:           firstVariant.Get("id").String(),
		Rating:              catalog.Rating(id),
		ReviewCount:         catalog.ReviewCount(title),
	}
}

// transformCustomer maps a customer query response (profile, addresses,
// recent orders) onto the model customer.
func transformCustomer(node gjson.Result) model.Customer {
	customer := model.Customer{
		ID:        node.Get("id").String(),
		FirstName: node.Get("firstName").String(),
		LastName:  node.Get("lastName").String(),
		Email:     node.Get("email").String(),
		Phone:     node.Get("phone").String(),
	}

	for _, edge := range node.Get("addresses.edges").Array() {
		a := edge.Get("node")
		customer.Addresses = append(customer.Addresses, model.Address{
			ID:        a.Get("id").String(),
			FirstName: a.Get("firstName").String(),
			LastName:  a.Get("lastName").String(),
			Address1:  a.Get("address1").String(),
			Address2:  a.Get("address2").String(),
			City:      a.Get("city").String(),
			Province:  a.Get("province").String(),
			Country:   a.Get("country").String(),
			Zip:       a.Get("zip").String(),
			Phone:     a.Get("phone").String(),
		})
	}

	for _, edge := range node.Get("orders.edges").Array() {
		o := edge.Get("node")
		order := model.Order{
			ID:          o.Get("id").String(),
			OrderNumber: int(o.Get("orderNumber").Int()),
			ProcessedAt: o.Get("processedAt").String(),
			TotalCents:  model.ParseCents(o.Get("totalPrice.amount").String()),
			Currency:    o.Get("totalPrice.currencyCode").String(),
			StatusURL:   o.Get("statusUrl").String(),
		}
		for _, li := range o.Get("lineItems.edges").Array() {
			order.Lines = append(order.Lines, model.OrderLine{
				Title:    li.Get("node.title").String(),
				Quantity: int(li.Get("node.quantity").Int()),
			})
		}
		customer.Orders = append(customer.Orders, order)
	}

	return customer
}

// specLine flattens an HTML description into a short plain-text line for
// listing cards. Parse failures fall back to the raw string.
func specLine(description string) string {
	if description == "" {
		return ""
	}

	text := description
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(description)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	// Truncate on a rune boundary so a multi-byte character at the
	// cutoff is dropped whole rather than split into invalid UTF-8.
	if len(text) > specLineLength {
		cut := specLineLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text + "..."
}
