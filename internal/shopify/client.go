// Package shopify implements the commerce gateway against the Shopify
// Storefront GraphQL API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/transport"
)

// defaultAPIVersion pins the Storefront API version the query documents
// were written against.
const defaultAPIVersion = "2024-07"

// Config holds Shopify-specific gateway configuration.
type Config struct {
	// Domain is the myshopify domain, e.g. "acme-eu.myshopify.com".
	Domain string

	// AccessToken is the public Storefront API access token.
	AccessToken string

	// APIVersion overrides the pinned Storefront API version.
	APIVersion string

	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration

	// Transport overrides the HTTP round tripper. Defaults to the Chrome
	// fingerprint transport; the Shopify CDN rate-limits Go's native TLS
	// fingerprint under load.
	Transport http.RoundTripper

	Logger *slog.Logger
}

// Client implements gateway.Commerce using the Storefront API.
//
// All operations are single GraphQL documents; errors from the GraphQL
// layer (the "errors" array and per-mutation userErrors) are mapped onto
// the model error taxonomy so callers never see Shopify specifics.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	logger     *slog.Logger
}

// New creates a Storefront API client.
func New(cfg Config) (*Client, error) {
	if cfg.Domain == "" {
		return nil, fmt.Errorf("shopify: domain required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("shopify: access token required")
	}

	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rt := cfg.Transport
	if rt == nil {
		rt = transport.NewChromeTransport(timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: rt},
		endpoint:   fmt.Sprintf("https://%s/api/%s/graphql.json", cfg.Domain, version),
		token:      cfg.AccessToken,
		logger:     logger,
	}, nil
}

// execute posts one GraphQL document and returns the "data" subtree.
// GraphQL-level errors are joined into a single upstream error; throttling
// is detected and surfaced as model.ErrRateLimited.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any) (gjson.Result, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return gjson.Result{}, model.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, model.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, model.NewNetworkError("storefront", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, model.NewNetworkError("storefront", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return gjson.Result{}, model.NewRateLimitError("storefront")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return gjson.Result{}, model.NewNetworkError("storefront",
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	parsed := gjson.ParseBytes(body)
	if errs := parsed.Get("errors"); errs.Exists() && len(errs.Array()) > 0 {
		messages := make([]string, 0, len(errs.Array()))
		throttled := false
		for _, e := range errs.Array() {
			msg := e.Get("message").String()
			messages = append(messages, msg)
			if e.Get("extensions.code").String() == "THROTTLED" || strings.Contains(msg, "Throttled") {
				throttled = true
			}
		}
		if throttled {
			return gjson.Result{}, model.NewRateLimitError("storefront")
		}
		return gjson.Result{}, model.NewNetworkError("storefront",
			fmt.Errorf("graphql: %s", strings.Join(messages, ", ")))
	}

	return parsed.Get("data"), nil
}

// firstUserError extracts the first field-level user error from a mutation
// payload, or a zero result if the mutation succeeded.
func firstUserError(payload gjson.Result) (field, message string, ok bool) {
	ue := payload.Get("customerUserErrors.0")
	if !ue.Exists() {
		ue = payload.Get("userErrors.0")
	}
	if !ue.Exists() {
		return "", "", false
	}
	// "field" is a path like ["input", "email"]; the last element names
	// the offending field.
	if fields := ue.Get("field").Array(); len(fields) > 0 {
		field = fields[len(fields)-1].String()
	}
	return field, ue.Get("message").String(), true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
