// Package session wires one router and one set of stores per client
// session, keyed by an opaque identifier. Sessions expire after an idle
// period; persisted keys (cart id, wishlist, token) outlive them.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/page"
	"mediequip-storefront/internal/router"
	"mediequip-storefront/internal/storage"
	"mediequip-storefront/internal/store"
)

// DefaultIdleTTL is how long a session survives without a request.
const DefaultIdleTTL = 30 * time.Minute

// Session is one client's live state: router, stores, and page
// registry, all sharing a persisted namespace.
type Session struct {
	ID     string
	Router *router.Router
	Cart   *store.Cart
	Auth   *store.Auth
	Pages  *page.Registry

	// ClientID names the persisted namespace. A client that presents
	// the same value on a later create resumes the same cart, wishlist,
	// and customer token.
	ClientID string

	lastSeen time.Time
}

// Manager creates, resolves, and expires sessions against a shared
// gateway.
type Manager struct {
	gw      gateway.Commerce
	logger  *slog.Logger
	dataDir string
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// Config holds manager construction options.
type Config struct {
	// DataDir is where per-session key-value documents live. Empty
	// means in-memory persistence (state is lost with the process).
	DataDir string

	// IdleTTL overrides DefaultIdleTTL.
	IdleTTL time.Duration

	Logger *slog.Logger
}

// NewManager creates a session manager.
func NewManager(gw gateway.Commerce, cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Manager{
		gw:       gw,
		logger:   logger,
		dataDir:  cfg.DataDir,
		idleTTL:  ttl,
		sessions: map[string]*Session{},
	}
}

// Create builds a new session: a fresh router with all pages mounted
// and initialized cart and auth stores. clientID selects the persisted
// namespace; passing the value from an earlier session resumes its cart,
// wishlist, and customer token through the stores' init recovery. An
// empty clientID gets a fresh namespace.
func (m *Manager) Create(ctx context.Context, clientID string) (*Session, error) {
	id := uuid.NewString()

	if clientID == "" {
		clientID = id
	} else if !validClientID(clientID) {
		return nil, model.NewValidationError("client_id", "must be 1-64 letters, digits, '.', '_', or '-'")
	}

	kv, err := m.openStore(clientID)
	if err != nil {
		return nil, model.NewInternalError(err)
	}

	logger := m.logger.With("session", id)
	r := router.New()
	cart := store.NewCart(m.gw, kv, logger)
	auth := store.NewAuth(m.gw, kv, logger, func(path string) { r.Navigate(path) })
	pages := page.NewRegistry(m.gw, cart, auth, logger)
	pages.Mount(r)

	cart.Init(ctx)
	auth.Init(ctx)

	s := &Session{
		ID:       id,
		Router:   r,
		Cart:     cart,
		Auth:     auth,
		Pages:    pages,
		ClientID: clientID,
		lastSeen: time.Now(),
	}

	m.mu.Lock()
	m.pruneLocked()
	m.sessions[id] = s
	m.mu.Unlock()

	logger.Info("session created")
	return s, nil
}

// Get resolves a live session and refreshes its idle clock. Expired or
// unknown identifiers yield model.ErrNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked()
	s, ok := m.sessions[id]
	if !ok {
		return nil, model.NewNotFoundError("session")
	}
	s.lastSeen = time.Now()
	return s, nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close waits for background store work across all sessions.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Cart.Wait()
	}
}

// pruneLocked drops sessions idle past the TTL. In-memory state only;
// the persisted namespace survives for a future session. Caller holds
// m.mu.
func (m *Manager) pruneLocked() {
	cutoff := time.Now().Add(-m.idleTTL)
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			m.logger.Info("session expired", "session", id)
		}
	}
}

func (m *Manager) openStore(id string) (storage.Store, error) {
	if m.dataDir == "" {
		return storage.NewMemoryStore(), nil
	}
	return storage.NewFileStore(m.dataDir, id)
}

// validClientID keeps client-supplied namespaces safe to join into a
// storage path. "." and ".." are rejected by the leading-dot rule.
func validClientID(id string) bool {
	if len(id) > 64 || id[0] == '.' {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}
