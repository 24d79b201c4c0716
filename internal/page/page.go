// Package page binds the storefront's routable paths to view-model
// builders. A view model is what a rendering layer (or the JSON API)
// needs to draw a page: the page name, a title, and page-specific data
// read from the stores and the gateway.
package page

import (
	"context"
	"log/slog"
	"sync"

	"mediequip-storefront/internal/catalog"
	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/router"
	"mediequip-storefront/internal/store"
)

// Store identity shown across pages and used by the support assistant.
const (
	StoreName    = "MediEquip Surgicals"
	ContactPhone = "+91 90000 12345"
	ContactEmail = "support@mediequip.in"
)

// View is one rendered page's model.
type View struct {
	Page     string            `json:"page"`
	Title    string            `json:"title"`
	Path     string            `json:"path"`
	Params   map[string]string `json:"params,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Data     any               `json:"data,omitempty"`
}

// Registry builds views for every routable path against the session's
// stores and the shared gateway.
type Registry struct {
	gw     gateway.Commerce
	cart   *store.Cart
	auth   *store.Auth
	logger *slog.Logger

	mu       sync.Mutex
	lastPage string
}

// NewRegistry creates a page registry.
func NewRegistry(gw gateway.Commerce, cart *store.Cart, auth *store.Auth, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{gw: gw, cart: cart, auth: auth, logger: logger}
}

// Mount registers every routable path on the router, in match order.
func (reg *Registry) Mount(r *router.Router) {
	r.Handle("/", "home")
	r.Handle("/products", "products")
	r.Handle("/products/:id", "product-detail")
	r.Handle("/cart", "cart")
	r.Handle("/wishlist", "wishlist")
	r.Handle("/checkout", "checkout")
	r.Handle("/bulk-orders", "bulk-orders")
	r.Handle("/about", "about")
	r.Handle("/contact", "contact")
	r.Handle("/policy", "policy")
	r.Handle("/login", "login")
	r.Handle("/register", "register")
	r.Handle("/account", "account")
	r.Handle("/order-success", "order-success")
}

// CartView summarizes the cart store for cart-bearing pages.
type CartView struct {
	Lines       []model.CartLine `json:"lines"`
	TotalCents  int64            `json:"total_cents"`
	Total       string           `json:"total"`
	Count       int              `json:"count"`
	CheckoutURL string           `json:"checkout_url,omitempty"`
}

func (reg *Registry) cartView() CartView {
	total := reg.cart.Total()
	return CartView{
		Lines:       reg.cart.Lines(),
		TotalCents:  total,
		Total:       model.FormatCents(total),
		Count:       reg.cart.Count(),
		CheckoutURL: reg.cart.CheckoutURL(),
	}
}

// Build resolves a location to its view model. Gateway failures degrade
// the page (logged, empty product lists) rather than failing the
// navigation; a missing product yields the not-found view.
func (reg *Registry) Build(ctx context.Context, loc router.Location) View {
	view := View{
		Page:   loc.Page,
		Path:   loc.Path,
		Params: loc.Params,
	}
	entered := reg.enterPage(loc.Page)

	switch loc.Page {
	case "home":
		view.Title = StoreName
		view.Data = reg.homeData(ctx)
	case "products":
		view.Title = "Products"
		view.Data = reg.productsData(ctx, loc)
	case "product-detail":
		return reg.productDetail(ctx, view, loc.Params["id"])
	case "cart":
		view.Title = "Your Cart"
		view.Data = reg.cartView()
	case "wishlist":
		view.Title = "Wishlist"
		view.Data = reg.cart.Wishlist()
	case "checkout":
		return reg.checkout(view)
	case "bulk-orders":
		view.Title = "Bulk Orders"
		view.Data = reg.bulkOrderData(ctx)
	case "about":
		view.Title = "About " + StoreName
		view.Data = aboutContent
	case "contact":
		view.Title = "Contact Us"
		view.Data = ContactData{Phone: ContactPhone, Email: ContactEmail}
	case "policy":
		return reg.policy(view, loc.Query.Get("type"))
	case "login":
		view.Title = "Login"
	case "register":
		view.Title = "Create Account"
	case "account":
		return reg.account(view)
	case "order-success":
		// Post-purchase landing: the completed cart is gone, start
		// fresh. Runs once on arrival; re-rendering the same page must
		// not discard another cart.
		if entered {
			reg.cart.Clear(ctx)
		}
		view.Title = "Order Placed"
	default:
		view.Page = router.NotFoundPage
		view.Title = "Page Not Found"
		view.Data = NotFoundData{
			Message:  "The page you are looking for (" + loc.Path + ") does not exist.",
			HomePath: "/",
		}
	}
	return view
}

// enterPage records the page being built and reports whether it differs
// from the previous build, i.e. the session just arrived on it.
func (reg *Registry) enterPage(page string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	entered := page != reg.lastPage
	reg.lastPage = page
	return entered
}

// HomeData backs the landing page.
type HomeData struct {
	Featured   []model.Product `json:"featured"`
	Categories []string        `json:"categories"`
}

func (reg *Registry) homeData(ctx context.Context) HomeData {
	featured, err := reg.gw.FetchProducts(ctx, 8)
	if err != nil {
		reg.logger.Warn("featured products unavailable", "error", err)
	}
	return HomeData{Featured: featured, Categories: catalog.Categories}
}

// ProductsData backs the listing page, honoring the category and
// search query parameters.
type ProductsData struct {
	Products   []model.Product `json:"products"`
	Categories []string        `json:"categories"`
	Category   string          `json:"category,omitempty"`
	Search     string          `json:"search,omitempty"`
}

func (reg *Registry) productsData(ctx context.Context, loc router.Location) ProductsData {
	data := ProductsData{
		Categories: catalog.Categories,
		Category:   loc.Query.Get("category"),
		Search:     loc.Query.Get("search"),
	}

	var err error
	switch {
	case data.Search != "":
		data.Products, err = reg.gw.SearchProducts(ctx, data.Search)
	case data.Category != "":
		data.Products, err = reg.gw.FetchProductsByCategory(ctx, data.Category)
	default:
		data.Products, err = reg.gw.FetchProducts(ctx, 0)
	}
	if err != nil {
		reg.logger.Warn("product listing unavailable", "error", err)
		data.Products = []model.Product{}
	}
	return data
}

// ProductDetailData backs the product page.
type ProductDetailData struct {
	Product    model.Product `json:"product"`
	Wishlisted bool          `json:"wishlisted"`
}

func (reg *Registry) productDetail(ctx context.Context, view View, id string) View {
	product, err := reg.gw.FetchProduct(ctx, id)
	if err != nil {
		view.Page = router.NotFoundPage
		view.Title = "Product Not Found"
		view.Data = NotFoundData{
			Message:  "The product you are looking for does not exist.",
			HomePath: "/products",
		}
		return view
	}
	view.Title = product.Title
	view.Data = ProductDetailData{
		Product:    *product,
		Wishlisted: reg.cart.InWishlist(product.ID),
	}
	return view
}

// CheckoutData backs the checkout handoff page.
type CheckoutData struct {
	Cart     CartView        `json:"cart"`
	Customer *model.Customer `json:"customer,omitempty"`
}

func (reg *Registry) checkout(view View) View {
	if !reg.auth.IsAuthenticated() {
		view.Title = "Checkout"
		view.Redirect = "/login"
		return view
	}
	view.Title = "Checkout"
	view.Data = CheckoutData{
		Cart:     reg.cartView(),
		Customer: reg.auth.Customer(),
	}
	return view
}

// BulkOrderData backs the bulk order form with the full catalog.
type BulkOrderData struct {
	Products []model.Product `json:"products"`
	Cart     CartView        `json:"cart"`
}

func (reg *Registry) bulkOrderData(ctx context.Context) BulkOrderData {
	products, err := reg.gw.FetchProducts(ctx, 0)
	if err != nil {
		reg.logger.Warn("bulk order catalog unavailable", "error", err)
		products = []model.Product{}
	}
	return BulkOrderData{Products: products, Cart: reg.cartView()}
}

// AccountData backs the customer account page.
type AccountData struct {
	Customer *model.Customer `json:"customer"`
}

func (reg *Registry) account(view View) View {
	if !reg.auth.IsAuthenticated() {
		view.Title = "Account"
		view.Redirect = "/login"
		return view
	}
	view.Title = "My Account"
	view.Data = AccountData{Customer: reg.auth.Customer()}
	return view
}

// ContactData backs the contact page.
type ContactData struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// NotFoundData backs the not-found view: a message and a link back.
type NotFoundData struct {
	Message  string `json:"message"`
	HomePath string `json:"home_path"`
}
