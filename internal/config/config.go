// Package config handles loading and validation of service configuration.
// Sources, lowest to highest priority: built-in defaults, an optional
// JSON file, STOREFRONT_-prefixed environment variables. In production
// the storefront token and chat API key may come from Secret Manager.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides. Double underscore nests:
// STOREFRONT_SHOPIFY__DOMAIN sets shopify.domain.
const EnvPrefix = "STOREFRONT_"

// Config holds all service configuration.
type Config struct {
	Port        int    `koanf:"port" validate:"min=1,max=65535"`
	Environment string `koanf:"environment" validate:"oneof=development production"`

	// DataDir is where per-session storage documents live. Empty keeps
	// sessions in memory.
	DataDir string `koanf:"data_dir"`

	// SessionIdleMinutes is how long an untouched session survives.
	SessionIdleMinutes int `koanf:"session_idle_minutes" validate:"min=1"`

	Log     LogConfig     `koanf:"log"`
	Gateway GatewayConfig `koanf:"gateway"`
	Shopify ShopifyConfig `koanf:"shopify"`
	Chat    ChatConfig    `koanf:"chat"`
	GCP     GCPConfig     `koanf:"gcp"`
}

// LogConfig controls the slog setup.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`

	// File enables rotated file output alongside stderr. Empty logs to
	// stderr only.
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// GatewayConfig selects the commerce backend.
type GatewayConfig struct {
	// Mode is "shopify" for the Storefront API or "demo" for the
	// in-memory catalog.
	Mode string `koanf:"mode" validate:"oneof=shopify demo"`
}

// ShopifyConfig configures the Storefront API client. Required when
// gateway.mode is "shopify".
type ShopifyConfig struct {
	Domain      string `koanf:"domain"`
	AccessToken string `koanf:"access_token"`
	APIVersion  string `koanf:"api_version"`
}

// ChatConfig configures the store assistant. Chat is disabled without
// an API key.
type ChatConfig struct {
	APIKey            string `koanf:"api_key"`
	Model             string `koanf:"model"`
	RequestsPerMinute int    `koanf:"requests_per_minute"`
}

// GCPConfig enables the Secret Manager overlay in production.
type GCPConfig struct {
	Project string `koanf:"project"`

	// SecretName holds a JSON document with shopify.access_token and
	// chat.api_key. Defaults to "storefront".
	SecretName string `koanf:"secret_name"`
}

// secretPayload is the Secret Manager document shape.
type secretPayload struct {
	ShopifyAccessToken string `json:"shopify_access_token"`
	ChatAPIKey         string `json:"chat_api_key"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"port":                     8080,
		"environment":              "development",
		"session_idle_minutes":     30,
		"log.level":                "info",
		"log.format":               "text",
		"log.max_size_mb":          50,
		"log.max_backups":          3,
		"log.max_age_days":         28,
		"gateway.mode":             "demo",
		"chat.requests_per_minute": 10,
		"gcp.secret_name":          "storefront",
	}
}

// Load reads configuration. path names an optional JSON file; empty
// falls back to the CONFIG_FILE environment variable, and a missing
// file is only an error when one was named explicitly.
func Load(ctx context.Context, path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Environment == "production" && cfg.GCP.Project != "" {
		if err := cfg.loadSecrets(ctx); err != nil {
			return nil, fmt.Errorf("loading secrets: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadSecrets overlays sensitive values from Secret Manager. Values
// already set by file or environment win; the secret only fills gaps.
func (c *Config) loadSecrets(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCP.Project, c.GCP.SecretName)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", name, err)
	}

	var payload secretPayload
	if err := json.Unmarshal(result.Payload.Data, &payload); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	if c.Shopify.AccessToken == "" {
		c.Shopify.AccessToken = payload.ShopifyAccessToken
	}
	if c.Chat.APIKey == "" {
		c.Chat.APIKey = payload.ChatAPIKey
	}
	return nil
}

// validate checks struct constraints plus the cross-field rules the
// tags cannot express.
func (c *Config) validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			return fmt.Errorf("invalid config: %s failed %q", invalid[0].Namespace(), invalid[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Gateway.Mode == "shopify" {
		if c.Shopify.Domain == "" {
			return fmt.Errorf("shopify.domain is required when gateway.mode is shopify")
		}
		if c.Shopify.AccessToken == "" {
			return fmt.Errorf("shopify.access_token is required when gateway.mode is shopify")
		}
	}
	return nil
}

// ChatEnabled reports whether the assistant can be constructed.
func (c *Config) ChatEnabled() bool {
	return c.Chat.APIKey != ""
}
