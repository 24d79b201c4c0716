// Package handler provides the HTTP API over sessions: navigation,
// cart, wishlist, auth, chat, and the catalog read side.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"mediequip-storefront/internal/chat"
	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/session"
)

// MaxRequestBodySize limits JSON request bodies to 1MB.
const MaxRequestBodySize = 1 << 20

// Assistant answers chat messages. Satisfied by chat.Assistant.
type Assistant interface {
	Send(ctx context.Context, history []chat.Message, message string) (string, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	sessions  *session.Manager
	gw        gateway.Commerce
	assistant Assistant
	agent     http.Handler
	logger    *slog.Logger
}

// New creates a Handler. assistant and agent may be nil; the chat and
// MCP endpoints then answer 503 and 404 respectively.
func New(sessions *session.Manager, gw gateway.Commerce, assistant Assistant, agent http.Handler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions:  sessions,
		gw:        gw,
		assistant: assistant,
		agent:     agent,
		logger:    logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /sessions", h.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}/view", h.handleView)
	mux.HandleFunc("POST /sessions/{id}/navigate", h.handleNavigate)
	mux.HandleFunc("POST /sessions/{id}/back", h.handleBack)

	mux.HandleFunc("POST /sessions/{id}/cart/items", h.handleAddCartItem)
	mux.HandleFunc("PATCH /sessions/{id}/cart/items/{lineID}", h.handleUpdateCartItem)
	mux.HandleFunc("DELETE /sessions/{id}/cart/items/{lineID}", h.handleRemoveCartItem)
	mux.HandleFunc("POST /sessions/{id}/cart/clear", h.handleClearCart)
	mux.HandleFunc("POST /sessions/{id}/cart/bulk", h.handleBulkOrder)

	mux.HandleFunc("POST /sessions/{id}/wishlist/{productID}", h.handleAddWishlist)
	mux.HandleFunc("DELETE /sessions/{id}/wishlist/{productID}", h.handleRemoveWishlist)

	mux.HandleFunc("POST /sessions/{id}/login", h.handleLogin)
	mux.HandleFunc("POST /sessions/{id}/register", h.handleRegister)
	mux.HandleFunc("POST /sessions/{id}/logout", h.handleLogout)
	mux.HandleFunc("POST /sessions/{id}/recover", h.handleRecover)
	mux.HandleFunc("POST /sessions/{id}/addresses", h.handleAddAddress)
	mux.HandleFunc("DELETE /sessions/{id}/addresses/{addressID}", h.handleRemoveAddress)

	mux.HandleFunc("POST /sessions/{id}/chat", h.handleChat)

	mux.HandleFunc("GET /products", h.handleProducts)
	mux.HandleFunc("GET /products/{id}", h.handleProduct)
	mux.HandleFunc("GET /search", h.handleSearch)

	if h.agent != nil {
		mux.Handle("/mcp", h.agent)
	}

	mux.HandleFunc("GET /health", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveSession maps the {id} path value to a live session.
func (h *Handler) resolveSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return sess, true
}

// decode reads a size-limited JSON request body into dst.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			h.writeError(w, model.NewValidationError("body", "request body is required"))
			return false
		}
		h.writeError(w, model.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err)))
		return false
	}
	return true
}

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from
// APIError if present anywhere in the chain.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
