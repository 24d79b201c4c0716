package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storefront.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Gateway.Mode != "demo" {
		t.Errorf("Gateway.Mode = %q, want demo", cfg.Gateway.Mode)
	}
	if cfg.SessionIdleMinutes != 30 {
		t.Errorf("SessionIdleMinutes = %d, want 30", cfg.SessionIdleMinutes)
	}
	if cfg.ChatEnabled() {
		t.Error("chat enabled without an api key")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9090,
		"gateway": {"mode": "shopify"},
		"shopify": {"domain": "acme.myshopify.com", "access_token": "shpat-test"},
		"chat": {"api_key": "gm-test", "model": "gemini-2.5-flash"}
	}`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Shopify.Domain != "acme.myshopify.com" {
		t.Errorf("Shopify.Domain = %q", cfg.Shopify.Domain)
	}
	if !cfg.ChatEnabled() {
		t.Error("chat should be enabled")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"port": 9090}`)
	t.Setenv("STOREFRONT_PORT", "7070")
	t.Setenv("STOREFRONT_LOG__LEVEL", "debug")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 7070 {
		t.Errorf("Port = %d, want 7070 (env should win)", cfg.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestShopifyModeRequiresCredentials(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing domain",
			content: `{"gateway": {"mode": "shopify"}, "shopify": {"access_token": "x"}}`,
			wantErr: "shopify.domain",
		},
		{
			name:    "missing token",
			content: `{"gateway": {"mode": "shopify"}, "shopify": {"domain": "acme.myshopify.com"}}`,
			wantErr: "shopify.access_token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(context.Background(), path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestInvalidValuesAreRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad environment", content: `{"environment": "staging"}`},
		{name: "bad log level", content: `{"log": {"level": "verbose"}}`},
		{name: "bad gateway mode", content: `{"gateway": {"mode": "magento"}}`},
		{name: "port out of range", content: `{"port": 70000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(context.Background(), path); err == nil {
				t.Error("Load: err = nil, want validation error")
			}
		})
	}
}

func TestExplicitMissingFileIsAnError(t *testing.T) {
	if _, err := Load(context.Background(), "/does/not/exist.json"); err == nil {
		t.Error("Load: err = nil, want file error")
	}
}

func TestMalformedFileIsAnError(t *testing.T) {
	path := writeConfig(t, `{not json`)
	if _, err := Load(context.Background(), path); err == nil {
		t.Error("Load: err = nil, want parse error")
	}
}
