package handler

import (
	"net/http"
	"strconv"

	"mediequip-storefront/internal/model"
)

// defaultProductLimit bounds unqualified catalog listings.
const defaultProductLimit = 50

type productsResponse struct {
	Products []model.Product `json:"products"`
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		products, err := h.gw.FetchProductsByCategory(r.Context(), category)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, productsResponse{Products: products})
		return
	}

	limit := defaultProductLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, model.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	products, err := h.gw.FetchProducts(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, productsResponse{Products: products})
}

func (h *Handler) handleProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.gw.FetchProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, model.NewValidationError("q", "cannot be empty"))
		return
	}

	products, err := h.gw.SearchProducts(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, productsResponse{Products: products})
}
