package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mediequip-storefront/internal/chat"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/page"
	"mediequip-storefront/internal/reconcile"
	"mediequip-storefront/internal/router"
	"mediequip-storefront/internal/session"
)

// sessionState is the response body for session creation and every
// navigation or mutation: the active view model plus cart and auth
// summaries.
type sessionState struct {
	SessionID     string        `json:"session_id"`
	ClientID      string        `json:"client_id"`
	View          page.View     `json:"view"`
	Cart          page.CartView `json:"cart"`
	Wishlist      int           `json:"wishlist_count"`
	Authenticated bool          `json:"authenticated"`
}

func (h *Handler) state(r *http.Request, sess *session.Session, loc router.Location) sessionState {
	return sessionState{
		SessionID: sess.ID,
		ClientID:  sess.ClientID,
		View:      sess.Pages.Build(r.Context(), loc),
		Cart: page.CartView{
			Lines:       sess.Cart.Lines(),
			TotalCents:  sess.Cart.Total(),
			Total:       model.FormatCents(sess.Cart.Total()),
			Count:       sess.Cart.Count(),
			CheckoutURL: sess.Cart.CheckoutURL(),
		},
		Wishlist:      len(sess.Cart.Wishlist()),
		Authenticated: sess.Auth.IsAuthenticated(),
	}
}

func (h *Handler) currentState(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	h.writeJSON(w, http.StatusOK, h.state(r, sess, sess.Router.Current()))
}

// handleCreateSession mints a session. The body is optional; a client
// that echoes back an earlier client_id resumes that persisted cart,
// wishlist, and login.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID string `json:"client_id"`
	}
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, model.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err)))
		return
	}

	sess, err := h.sessions.Create(r.Context(), req.ClientID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.state(r, sess, sess.Router.Current()))
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	h.currentState(w, r, sess)
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		h.writeError(w, model.NewValidationError("path", "cannot be empty"))
		return
	}

	loc := sess.Router.Navigate(req.Path)
	h.writeJSON(w, http.StatusOK, h.state(r, sess, loc))
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	loc := sess.Router.Back()
	h.writeJSON(w, http.StatusOK, h.state(r, sess, loc))
}

// === Cart ===

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		h.writeError(w, model.NewValidationError("product_id", "cannot be empty"))
		return
	}

	product, err := h.gw.FetchProduct(r.Context(), req.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := sess.Cart.AddToCart(r.Context(), *product, req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	h.currentState(w, r, sess)
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := sess.Cart.UpdateQuantity(r.Context(), r.PathValue("lineID"), req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	h.currentState(w, r, sess)
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Cart.RemoveFromCart(r.Context(), r.PathValue("lineID")); err != nil {
		h.writeError(w, err)
		return
	}
	h.currentState(w, r, sess)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	sess.Cart.Clear(r.Context())
	h.currentState(w, r, sess)
}

func (h *Handler) handleBulkOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Lines []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"lines"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	desired := make([]reconcile.DesiredLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.ProductID == "" {
			h.writeError(w, model.NewValidationError("lines", "product_id cannot be empty"))
			return
		}
		product, err := h.gw.FetchProduct(r.Context(), line.ProductID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if !product.Purchasable() {
			h.writeError(w, model.NewValidationError("lines", "product has no purchasable variant"))
			return
		}
		desired = append(desired, reconcile.DesiredLine{
			VariantID: product.VariantID,
			Quantity:  line.Quantity,
		})
	}

	if err := sess.Cart.ApplyBulkOrder(r.Context(), desired); err != nil {
		h.writeError(w, err)
		return
	}
	h.currentState(w, r, sess)
}

// === Wishlist ===

func (h *Handler) handleAddWishlist(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	product, err := h.gw.FetchProduct(r.Context(), r.PathValue("productID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	sess.Cart.AddToWishlist(*product)
	h.currentState(w, r, sess)
}

func (h *Handler) handleRemoveWishlist(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	sess.Cart.RemoveFromWishlist(r.PathValue("productID"))
	h.currentState(w, r, sess)
}

// === Auth ===

type credentialsRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := sess.Auth.Login(r.Context(), req.Email, req.Password); err != nil {
		h.writeError(w, err)
		return
	}
	h.currentState(w, r, sess)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := sess.Auth.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName); err != nil {
		h.writeError(w, err)
		return
	}
	h.currentState(w, r, sess)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	sess.Auth.Logout()
	h.currentState(w, r, sess)
}

func (h *Handler) handleRecover(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		h.writeError(w, model.NewValidationError("email", "cannot be empty"))
		return
	}

	sess.Auth.RecoverPassword(r.Context(), req.Email)
	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "if the address exists, a recovery email has been sent",
	})
}

func (h *Handler) handleAddAddress(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var address model.Address
	if !h.decode(w, r, &address) {
		return
	}
	if err := sess.Auth.AddAddress(r.Context(), address); err != nil {
		h.writeError(w, err)
		return
	}
	h.currentState(w, r, sess)
}

func (h *Handler) handleRemoveAddress(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Auth.RemoveAddress(r.Context(), r.PathValue("addressID")); err != nil {
		h.writeError(w, err)
		return
	}
	h.currentState(w, r, sess)
}

// === Chat ===

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveSession(w, r); !ok {
		return
	}

	if h.assistant == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: errorBody{Code: "CHAT_UNAVAILABLE", Message: "chat is not configured"},
		})
		return
	}

	var req struct {
		Message string         `json:"message"`
		History []chat.Message `json:"history,omitempty"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	reply, err := h.assistant.Send(r.Context(), req.History, req.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
