package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// stubBackend is a scriptable Backend for chain tests.
type stubBackend struct {
	name   string
	result string
	err    error
	calls  int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Translate(_ context.Context, _, _, _ string) (string, error) {
	s.calls++
	return s.result, s.err
}

func TestChainTranslate(t *testing.T) {
	t.Run("first success wins", func(t *testing.T) {
		a := &stubBackend{name: "a", result: "Bonjour"}
		b := &stubBackend{name: "b", result: "unused"}
		chain := NewChain(a, b)

		got, err := chain.Translate(context.Background(), "Hello", "en", "fr")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if got != "Bonjour" {
			t.Fatalf("got %q, want Bonjour", got)
		}
		if b.calls != 0 {
			t.Fatal("second backend called after first succeeded")
		}
	})

	t.Run("falls through failures", func(t *testing.T) {
		a := &stubBackend{name: "a", err: errors.New("boom")}
		b := &stubBackend{name: "b", result: ""}
		c := &stubBackend{name: "c", result: "Bonjour"}
		chain := NewChain(a, b, c)

		got, err := chain.Translate(context.Background(), "Hello", "en", "fr")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if got != "Bonjour" {
			t.Fatalf("got %q, want Bonjour", got)
		}
	})

	t.Run("aggregates every failure in order", func(t *testing.T) {
		a := &stubBackend{name: "alpha", err: errors.New("first failure")}
		b := &stubBackend{name: "beta", err: errors.New("second failure")}
		chain := NewChain(a, b)

		_, err := chain.Translate(context.Background(), "Hello", "en", "fr")
		if err == nil {
			t.Fatal("expected error when all backends fail")
		}
		msg := err.Error()
		for _, want := range []string{"alpha", "first failure", "beta", "second failure"} {
			if !strings.Contains(msg, want) {
				t.Fatalf("aggregate error %q missing %q", msg, want)
			}
		}
		if ia := strings.Index(msg, "alpha"); ia > strings.Index(msg, "beta") {
			t.Fatal("aggregate error lost attempt order")
		}
	})

	t.Run("empty result counts as failure", func(t *testing.T) {
		a := &stubBackend{name: "a", result: "  "}
		chain := NewChain(a)

		_, err := chain.Translate(context.Background(), "Hello", "en", "fr")
		if err == nil || !strings.Contains(err.Error(), "empty result") {
			t.Fatalf("expected empty-result failure, got %v", err)
		}
	})

	t.Run("no backends configured", func(t *testing.T) {
		if _, err := NewChain().Translate(context.Background(), "x", "en", "fr"); err == nil {
			t.Fatal("expected error from empty chain")
		}
	})
}

func TestHTTPBackend(t *testing.T) {
	t.Run("openai chat format", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("path = %q", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("Authorization = %q", got)
			}
			var req struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decoding request: %v", err)
			}
			if len(req.Messages) != 2 || req.Messages[1].Content != "Hello" {
				t.Errorf("messages = %+v", req.Messages)
			}
			if !strings.Contains(req.Messages[0].Content, "French") {
				t.Errorf("system prompt missing target language: %q", req.Messages[0].Content)
			}
			fmt.Fprintln(w, `{"choices":[{"message":{"content":"Bonjour"}}]}`)
		}))
		defer srv.Close()

		b := NewHTTPBackend(Provider{
			ID: "test", BaseURL: srv.URL, APIKey: "test-key", Model: "m",
		})
		got, err := b.Translate(context.Background(), "Hello", "en", "fr")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if got != "Bonjour" {
			t.Fatalf("got %q, want Bonjour", got)
		}
	})

	t.Run("gemini native format", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.URL.Path, ":generateContent") {
				t.Errorf("path = %q", r.URL.Path)
			}
			if got := r.Header.Get("x-goog-api-key"); got != "gk" {
				t.Errorf("x-goog-api-key = %q", got)
			}
			fmt.Fprintln(w, `{"candidates":[{"content":{"parts":[{"text":"Hallo"}]}}]}`)
		}))
		defer srv.Close()

		b := NewHTTPBackend(Provider{
			ID: "gemini", BaseURL: srv.URL, APIKey: "gk", Model: "g", Format: FormatGeminiNative,
		})
		got, err := b.Translate(context.Background(), "Hello", "en", "de")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if got != "Hallo" {
			t.Fatalf("got %q, want Hallo", got)
		}
	})

	t.Run("api error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintln(w, `{"error":{"message":"quota exceeded"}}`)
		}))
		defer srv.Close()

		b := NewHTTPBackend(Provider{ID: "t", BaseURL: srv.URL, Model: "m"})
		_, err := b.Translate(context.Background(), "Hello", "en", "fr")
		if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
			t.Fatalf("expected API error, got %v", err)
		}
	})

	t.Run("retries server errors", func(t *testing.T) {
		var hits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			if hits == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprintln(w, `{"choices":[{"message":{"content":"ok"}}]}`)
		}))
		defer srv.Close()

		b := NewHTTPBackend(Provider{ID: "t", BaseURL: srv.URL, Model: "m", MaxRetries: 2})
		got, err := b.Translate(context.Background(), "Hello", "en", "fr")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if got != "ok" || hits != 2 {
			t.Fatalf("got %q after %d hits", got, hits)
		}
	})

	t.Run("client errors do not retry", func(t *testing.T) {
		var hits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		b := NewHTTPBackend(Provider{ID: "t", BaseURL: srv.URL, Model: "m", MaxRetries: 3})
		if _, err := b.Translate(context.Background(), "Hello", "en", "fr"); err == nil {
			t.Fatal("expected error for 400")
		}
		if hits != 1 {
			t.Fatalf("400 retried %d times", hits)
		}
	})
}

func TestLanguageName(t *testing.T) {
	cases := map[string]string{
		"fr":    "French",
		"zh-CN": "Simplified Chinese",
		"de-AT": "German",
		"xx":    "xx",
	}
	for code, want := range cases {
		if got := LanguageName(code); got != want {
			t.Errorf("LanguageName(%q) = %q, want %q", code, got, want)
		}
	}
}
