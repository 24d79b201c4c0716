// Package chat implements the store assistant on the Gemini
// generateContent API. One request per message: a system prompt built
// from store and catalog data plus the conversation so far.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"mediequip-storefront/internal/catalog"
	"mediequip-storefront/internal/gateway"
	"mediequip-storefront/internal/model"
	"mediequip-storefront/internal/page"
)

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel    = "gemini-2.5-flash"

	// fallbackModel handles the primary model id aging out of the API.
	fallbackModel = "gemini-2.0-flash"

	// knowledgeBaseLimit caps how many products the system prompt carries.
	knowledgeBaseLimit = 250
)

// Canned replies for failures the user cannot act on.
const (
	quotaMessage = "My daily chat quota is currently full or still activating. " +
		"Please try again shortly or contact us at " + page.ContactPhone
	troubleMessage = "I apologize, but I'm having trouble connecting. " +
		"Please try again in a few minutes or call us at " + page.ContactPhone
)

// Greeting opens every new conversation.
const Greeting = "Hello! I'm the " + page.StoreName + " assistant. " +
	"How can I help you with our medical equipment or store info today?"

// RoleUser and RoleModel are the two conversation roles the API accepts.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config holds assistant construction options.
type Config struct {
	// APIKey authenticates against the generative language API.
	APIKey string

	// Model overrides the default model id.
	Model string

	// Endpoint overrides the API base URL. Tests point it at a local
	// server.
	Endpoint string

	// RequestsPerMinute bounds outbound calls. Defaults to 10.
	RequestsPerMinute int

	// Timeout bounds each HTTP request. Defaults to 60s.
	Timeout time.Duration

	Logger *slog.Logger
}

// Assistant answers store questions over the Gemini API, grounded on a
// product knowledge base loaded once from the commerce gateway.
type Assistant struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	limiter    *rate.Limiter
	gw         gateway.Commerce
	logger     *slog.Logger

	kbOnce sync.Once
	kb     string
}

// New creates an assistant.
func New(gw gateway.Commerce, cfg Config) (*Assistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("chat: api key required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 10
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Assistant{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60), rpm),
		gw:         gw,
		logger:     logger,
	}, nil
}

// Send answers one user message given the conversation so far. Failures
// the user cannot act on come back as canned replies, not errors: quota
// exhaustion yields a contact message, anything else a generic
// trouble-connecting message. The error return covers only invalid
// input and context cancellation.
func (a *Assistant) Send(ctx context.Context, history []Message, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", model.NewValidationError("message", "cannot be empty")
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return "", model.NewInternalError(err)
	}

	reply, err := a.generate(ctx, a.model, history, message)
	if err != nil && isModelNotFound(err) && a.model != fallbackModel {
		a.logger.Warn("chat model unavailable, retrying on fallback",
			"model", a.model, "fallback", fallbackModel)
		reply, err = a.generate(ctx, fallbackModel, history, message)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", model.NewInternalError(ctx.Err())
		}
		a.logger.Error("chat request failed", "error", err)
		if errors.Is(err, model.ErrRateLimited) {
			return quotaMessage, nil
		}
		return troubleMessage, nil
	}
	return reply, nil
}

// generate performs one generateContent call against the named model.
func (a *Assistant) generate(ctx context.Context, modelID string, history []Message, message string) (string, error) {
	contents := make([]map[string]any, 0, len(history)+1)
	for _, m := range trimHistory(history) {
		contents = append(contents, turn(m.Role, m.Content))
	}
	contents = append(contents, turn(RoleUser, message))

	payload, err := json.Marshal(map[string]any{
		"systemInstruction": map[string]any{
			"parts": []map[string]string{{"text": a.systemPrompt(ctx)}},
		},
		"contents": contents,
	})
	if err != nil {
		return "", model.NewInternalError(err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", a.endpoint, modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", model.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", model.NewNetworkError("chat", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", model.NewNetworkError("chat", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", model.NewRateLimitError("chat")
		case http.StatusNotFound:
			return "", model.NewNotFoundError("model " + modelID)
		default:
			return "", model.NewNetworkError("chat",
				fmt.Errorf("status %d: %s", resp.StatusCode, msg))
		}
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return "", model.NewNetworkError("chat", fmt.Errorf("empty candidate"))
	}
	return text, nil
}

// systemPrompt assembles store identity, categories, and the product
// knowledge base.
func (a *Assistant) systemPrompt(ctx context.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the official AI assistant for %s.\n", page.StoreName)
	b.WriteString("Store Information:\n")
	fmt.Fprintf(&b, "- Support: %s, %s\n", page.ContactPhone, page.ContactEmail)
	fmt.Fprintf(&b, "- Available Categories: %s\n", strings.Join(catalog.Categories, ", "))
	b.WriteString("- Product Knowledge Base:\n")
	b.WriteString(a.knowledgeBase(ctx))
	b.WriteString("\nGuidelines:\n")
	fmt.Fprintf(&b, "1. Only answer questions regarding %s and medical surgical equipment.\n", page.StoreName)
	b.WriteString("2. If a user asks for product info, use the pricing and details from the Knowledge Base above.\n")
	b.WriteString("3. Be professional, concise, and helpful.\n")
	return b.String()
}

// knowledgeBase loads the catalog once. A failed load leaves the prompt
// without product lines rather than failing the chat.
func (a *Assistant) knowledgeBase(ctx context.Context) string {
	a.kbOnce.Do(func() {
		products, err := a.gw.FetchProducts(ctx, knowledgeBaseLimit)
		if err != nil {
			a.logger.Warn("chat knowledge base unavailable", "error", err)
			return
		}
		lines := make([]string, 0, len(products))
		for _, p := range products {
			lines = append(lines, fmt.Sprintf("- %s: %s (Category: %s)",
				p.Title, model.FormatCents(p.PriceCents), p.Category))
		}
		a.kb = strings.Join(lines, "\n")
	})
	return a.kb
}

// trimHistory drops leading model turns so the first turn the API sees
// comes from the user, and skips turns with unknown roles.
func trimHistory(history []Message) []Message {
	out := make([]Message, 0, len(history))
	for _, m := range history {
		if m.Role != RoleUser && m.Role != RoleModel {
			continue
		}
		if len(out) == 0 && m.Role != RoleUser {
			continue
		}
		out = append(out, m)
	}
	return out
}

func turn(role, text string) map[string]any {
	return map[string]any{
		"role":  role,
		"parts": []map[string]string{{"text": text}},
	}
}

// isModelNotFound reports whether the error indicates the model id does
// not exist in the API, the one failure worth a fallback attempt.
func isModelNotFound(err error) bool {
	if errors.Is(err, model.ErrNotFound) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "is not found") || strings.Contains(msg, "[404")
}
