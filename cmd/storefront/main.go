// Storefront session engine: headless navigation, cart, and account
// state over a commerce backend, with a JSON API and an MCP agent
// surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"mediequip-storefront/internal/agent"
	"mediequip-storefront/internal/chat"
	"mediequip-storefront/internal/config"
	"mediequip-storefront/internal/demo"
	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/handler"
	"mediequip-storefront/internal/middleware"
	"mediequip-storefront/internal/session"
	"mediequip-storefront/internal/shopify"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := initLogger(cfg)

	logger.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("gateway", cfg.Gateway.Mode),
		slog.Bool("chat", cfg.ChatEnabled()),
	)

	gw, err := createGateway(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	sessions := session.NewManager(gw, session.Config{
		DataDir: cfg.DataDir,
		IdleTTL: time.Duration(cfg.SessionIdleMinutes) * time.Minute,
		Logger:  logger,
	})
	defer sessions.Close()

	var assistant handler.Assistant
	if cfg.ChatEnabled() {
		a, err := chat.New(gw, chat.Config{
			APIKey:            cfg.Chat.APIKey,
			Model:             cfg.Chat.Model,
			RequestsPerMinute: cfg.Chat.RequestsPerMinute,
			Logger:            logger,
		})
		if err != nil {
			return fmt.Errorf("creating chat assistant: %w", err)
		}
		assistant = a
	}

	agentSrv := agent.NewServer(sessions, gw, logger)

	h := handler.New(sessions, gw, assistant, agentSrv.Handler(), logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Recovery outermost so panics in logging are still caught.
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.Logging(logger),
	)(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// createGateway selects the commerce backend per configuration.
func createGateway(cfg *config.Config, logger *slog.Logger) (gateway.Commerce, error) {
	switch cfg.Gateway.Mode {
	case "shopify":
		return shopify.New(shopify.Config{
			Domain:      cfg.Shopify.Domain,
			AccessToken: cfg.Shopify.AccessToken,
			APIVersion:  cfg.Shopify.APIVersion,
			Logger:      logger,
		})
	case "demo":
		return demo.New(), nil
	default:
		return nil, fmt.Errorf("unsupported gateway mode: %s", cfg.Gateway.Mode)
	}
}

// initLogger builds the slog setup: JSON in production for Cloud
// Logging, text in development, optionally teeing into a rotated file.
func initLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var out io.Writer = os.Stdout
	if cfg.Log.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   true,
		})
	}

	if cfg.Log.Format == "json" || cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}
