// Package router maps a session's current location onto exactly one
// registered page, extracts route parameters, and provides imperative
// navigation over an internal history stack.
package router

import (
	"net/url"
	"strings"
	"sync"
)

// NotFoundPage is the page name published when no registered pattern
// matches the current path.
const NotFoundPage = "not-found"

// Location is one atomic navigation snapshot. Path, query, and params
// always describe the same moment; consumers never observe a partial
// update. Treat it as read-only.
type Location struct {
	// Path is the decoded, unnormalized current path.
	Path string

	// Query holds the parsed query parameters.
	Query url.Values

	// Params holds the extracted route parameters: empty, or one entry.
	Params map[string]string

	// Page is the registered page name the location resolved to, or
	// NotFoundPage when nothing matched.
	Page string

	// Pattern is the registered pattern that matched, empty on no match.
	Pattern string
}

// NotFound reports whether the location resolved to no registered route.
func (l Location) NotFound() bool {
	return l.Page == NotFoundPage
}

type route struct {
	pattern string
	page    string

	// paramBase and paramName are precomputed for patterns holding a
	// single :name segment; paramName is empty for literal patterns.
	paramBase string
	paramName string
}

// Router is the navigation core. Registration happens once at startup;
// after that every mutation goes through Navigate, Back, Forward, or
// SetQuery, each of which publishes one Location to subscribers.
type Router struct {
	mu      sync.Mutex
	routes  []route
	history []string
	index   int
	current Location

	subs    map[int]func(Location)
	nextSub int

	scrollReset func()
}

// Option configures a Router.
type Option func(*Router)

// WithScrollReset installs a hook invoked after every programmatic
// navigation, mirroring the storefront's scroll-to-top on page change.
// Back and forward traversal do not trigger it.
func WithScrollReset(fn func()) Option {
	return func(r *Router) { r.scrollReset = fn }
}

// New creates a router positioned at the root path.
func New(opts ...Option) *Router {
	r := &Router{
		history: []string{"/"},
		subs:    map[int]func(Location){},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.current = r.resolve("/")
	return r
}

// Handle registers a pattern in evaluation order; the first registered
// pattern that matches wins. A pattern is either literal ("/cart") or
// carries exactly one trailing parameter segment ("/products/:id").
func (r *Router) Handle(pattern, page string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt := route{pattern: pattern, page: page}
	if base, name, ok := strings.Cut(pattern, "/:"); ok {
		rt.paramBase = strings.TrimSuffix(base, "/")
		rt.paramName = name
	}
	r.routes = append(r.routes, rt)

	// Registration may precede the first navigation; keep the current
	// snapshot consistent with the route table.
	r.current = r.resolve(r.history[r.index])
}

// Current returns the active location snapshot.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate pushes a new history entry for to (a path with optional
// query string), updates the snapshot, and publishes it. Forward
// entries beyond the current position are discarded, as a browser does.
func (r *Router) Navigate(to string) Location {
	r.mu.Lock()
	r.history = append(r.history[:r.index+1], to)
	r.index = len(r.history) - 1
	loc := r.resolve(to)
	r.current = loc
	subs := r.subscribers()
	reset := r.scrollReset
	r.mu.Unlock()

	if reset != nil {
		reset()
	}
	for _, fn := range subs {
		fn(loc)
	}
	return loc
}

// Back moves one history entry backwards, as a browser back action
// does: the snapshot updates and publishes without pushing a new entry.
// At the oldest entry it is a no-op.
func (r *Router) Back() Location {
	return r.traverse(-1)
}

// Forward moves one history entry forwards; a no-op at the newest entry.
func (r *Router) Forward() Location {
	return r.traverse(1)
}

func (r *Router) traverse(delta int) Location {
	r.mu.Lock()
	next := r.index + delta
	if next < 0 || next >= len(r.history) {
		loc := r.current
		r.mu.Unlock()
		return loc
	}
	r.index = next
	loc := r.resolve(r.history[r.index])
	r.current = loc
	subs := r.subscribers()
	r.mu.Unlock()

	for _, fn := range subs {
		fn(loc)
	}
	return loc
}

// SetQuery re-navigates to the current path with the query string
// replaced. Setting then reading returns the same key/value pairs.
func (r *Router) SetQuery(values url.Values) Location {
	r.mu.Lock()
	path := r.current.Path
	r.mu.Unlock()

	if encoded := values.Encode(); encoded != "" {
		return r.Navigate(path + "?" + encoded)
	}
	return r.Navigate(path)
}

// Subscribe registers fn to receive every published Location. The
// returned function removes the subscription. Callbacks run on the
// navigating goroutine; navigating from inside one is a caller error.
func (r *Router) Subscribe(fn func(Location)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// subscribers snapshots the callback set in registration order.
// Caller holds r.mu.
func (r *Router) subscribers() []func(Location) {
	out := make([]func(Location), 0, len(r.subs))
	for id := 0; id < r.nextSub; id++ {
		if fn, ok := r.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// resolve matches a raw location string against the route table.
// Caller holds r.mu.
func (r *Router) resolve(raw string) Location {
	rawPath, rawQuery, _ := strings.Cut(raw, "?")

	path := rawPath
	if decoded, err := url.PathUnescape(rawPath); err == nil {
		path = decoded
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}

	loc := Location{
		Path:   path,
		Query:  query,
		Params: map[string]string{},
		Page:   NotFoundPage,
	}

	for _, rt := range r.routes {
		if rt.paramName == "" {
			// Literal: exact, or the trailing-slash variant of a
			// non-root pattern.
			if path == rt.pattern || (rt.pattern != "/" && path == rt.pattern+"/") {
				loc.Page = rt.page
				loc.Pattern = rt.pattern
				return loc
			}
			continue
		}

		rest, ok := strings.CutPrefix(path, rt.paramBase+"/")
		if !ok {
			continue
		}
		rest = strings.TrimSuffix(rest, "/")
		if rest == "" {
			continue
		}
		loc.Page = rt.page
		loc.Pattern = rt.pattern
		loc.Params[rt.paramName] = rest
		return loc
	}
	return loc
}
