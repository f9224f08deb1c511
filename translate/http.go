package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// API formats spoken by HTTP backends.
const (
	FormatOpenAIChat   = "openai-chat"
	FormatGeminiNative = "gemini"
)

// Provider holds the configuration for one HTTP translation service.
type Provider struct {
	// ID is a short identifier used in logs and aggregate errors.
	ID string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// Model is the model identifier.
	Model string
	// Format selects the request/response shape (FormatOpenAIChat default).
	Format string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the per-request timeout.
	Timeout time.Duration
	// MaxRetries is the retry budget for transport errors, 5xx, and 429.
	MaxRetries int
}

const systemPrompt = `You are a professional translator specializing in software localization.
Translate the user's text from %s to %s.
Preserve format specifiers (%%s, %%d, {name}) and leading/trailing whitespace exactly.
Return ONLY the translated text, no explanations and no quotes.`

// HTTPBackend is a Backend over an OpenAI-compatible or Gemini-native API.
type HTTPBackend struct {
	prov   Provider
	client *http.Client
}

// NewHTTPBackend constructs a backend for the given provider configuration.
func NewHTTPBackend(prov Provider) *HTTPBackend {
	if prov.Timeout <= 0 {
		prov.Timeout = 60 * time.Second
	}
	if prov.MaxRetries <= 0 {
		prov.MaxRetries = 3
	}
	return &HTTPBackend{
		prov:   prov,
		client: makeHTTPClient(prov.Proxy, prov.Timeout),
	}
}

// Name implements Backend.
func (b *HTTPBackend) Name() string { return b.prov.ID }

// Translate implements Backend.
func (b *HTTPBackend) Translate(ctx context.Context, text, fromLocale, toLocale string) (string, error) {
	system := fmt.Sprintf(systemPrompt, LanguageName(fromLocale), LanguageName(toLocale))

	endpoint, headers, body, err := b.buildRequest(system, text)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	respBody, err := b.doWithRetry(ctx, endpoint, headers, body)
	if err != nil {
		return "", err
	}

	result, err := extractResponseText(respBody)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

func (b *HTTPBackend) buildRequest(system, user string) (string, map[string]string, []byte, error) {
	headers := map[string]string{"Content-Type": "application/json"}
	base := strings.TrimRight(b.prov.BaseURL, "/")

	switch b.prov.Format {
	case FormatGeminiNative:
		endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, b.prov.Model)
		if b.prov.APIKey != "" {
			headers["x-goog-api-key"] = b.prov.APIKey
		}
		body, err := buildGeminiRequest(system, user)
		return endpoint, headers, body, err

	default: // FormatOpenAIChat
		endpoint := base
		if !strings.HasSuffix(endpoint, "/chat/completions") {
			endpoint += "/chat/completions"
		}
		if b.prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + b.prov.APIKey
		}
		body, err := buildChatRequest(b.prov.Model, system, user)
		return endpoint, headers, body, err
	}
}

// doWithRetry posts the request, retrying transport errors and 5xx with
// exponential backoff and honoring Retry-After on 429.
func (b *HTTPBackend) doWithRetry(ctx context.Context, endpoint string, headers map[string]string, body []byte) ([]byte, error) {
	maxRetries := b.prov.MaxRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := b.client.Do(req)
		if err != nil {
			if attempt < maxRetries {
				if werr := sleepCtx(ctx, backoff(attempt)); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, fmt.Errorf("API request failed: %w", err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt < maxRetries {
				if werr := sleepCtx(ctx, retryAfter(resp)); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, fmt.Errorf("rate limited after %d retries", maxRetries)

		case resp.StatusCode >= 500:
			if attempt < maxRetries {
				if werr := sleepCtx(ctx, backoff(attempt)); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 300))

		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("exhausted all %d retries", maxRetries)
}

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

func buildChatRequest(model, system, user string) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
	}
	return json.Marshal(req)
}

func buildGeminiRequest(system, user string) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	req := struct {
		Contents          []content `json:"contents"`
		SystemInstruction *content  `json:"systemInstruction,omitempty"`
		GenerationConfig  struct {
			Temperature float64 `json:"temperature"`
		} `json:"generationConfig"`
	}{
		Contents:          []content{{Role: "user", Parts: []part{{Text: user}}}},
		SystemInstruction: &content{Parts: []part{{Text: system}}},
	}
	req.GenerationConfig.Temperature = 0.3
	return json.Marshal(req)
}

// extractResponseText pulls the generated text out of either response shape.
func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	// OpenAI chat: choices[0].message.content
	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	// Gemini: candidates[0].content.parts[0].text
	if candidates, ok := raw["candidates"].([]any); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]any); ok {
			if content, ok := candidate["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]any); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 300))
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// retryAfter reads the Retry-After header of a 429 response, with a
// conservative default when absent or unparseable.
func retryAfter(resp *http.Response) time.Duration {
	const defaultDelay = 5 * time.Second
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return defaultDelay
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultDelay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
