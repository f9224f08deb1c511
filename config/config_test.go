package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		f, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if f.SourceLocale != "en" {
			t.Fatalf("SourceLocale = %q, want en", f.SourceLocale)
		}
		if len(f.LocaleRoots) != 1 || f.LocaleRoots[0] != "locales" {
			t.Fatalf("LocaleRoots = %v", f.LocaleRoots)
		}
		if len(f.Providers) != 2 {
			t.Fatalf("expected default providers, got %+v", f.Providers)
		}
	})

	t.Run("parses full file", func(t *testing.T) {
		dir := t.TempDir()
		content := `source_locale: zh-CN
locale_roots:
  - src/locales
  - shared/locales
exclude:
  - "*.bak"
providers:
  - id: openai
    base_url: https://api.openai.com/v1
    api_key_env: OPENAI_API_KEY
    model: gpt-4o-mini
  - id: gemini
    base_url: https://generativelanguage.googleapis.com
    format: gemini
    model: gemini-2.0-flash
`
		if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		f, err := Load(dir)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if f.SourceLocale != "zh-CN" {
			t.Fatalf("SourceLocale = %q", f.SourceLocale)
		}
		if len(f.LocaleRoots) != 2 {
			t.Fatalf("LocaleRoots = %v", f.LocaleRoots)
		}
		if len(f.Providers) != 2 || f.Providers[1].Format != "gemini" {
			t.Fatalf("Providers = %+v", f.Providers)
		}
	})

	t.Run("provider without id rejected", func(t *testing.T) {
		dir := t.TempDir()
		content := "providers:\n  - model: m\n"
		if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "no id") {
			t.Fatalf("expected id validation error, got %v", err)
		}
	})

	t.Run("unknown provider format rejected", func(t *testing.T) {
		dir := t.TempDir()
		content := "providers:\n  - id: x\n    format: soap\n"
		if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "unknown format") {
			t.Fatalf("expected format validation error, got %v", err)
		}
	})

	t.Run("malformed yaml rejected", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, FileName), []byte(":\t bad"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(dir); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestResolvedRoots(t *testing.T) {
	f := &File{LocaleRoots: []string{"locales", "/abs/locales"}}
	roots, err := f.ResolvedRoots("/project")
	if err != nil {
		t.Fatalf("ResolvedRoots: %v", err)
	}
	if roots[0] != filepath.Join("/project", "locales") {
		t.Fatalf("relative root = %q", roots[0])
	}
	if roots[1] != "/abs/locales" {
		t.Fatalf("absolute root = %q", roots[1])
	}
}

func TestBackends(t *testing.T) {
	f := &File{Providers: DefaultProviders()}
	backends := f.Backends()
	if len(backends) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(backends))
	}
	if backends[0].Name() != "openai" || backends[1].Name() != "google" {
		t.Fatalf("backend order wrong: %s, %s", backends[0].Name(), backends[1].Name())
	}
}
