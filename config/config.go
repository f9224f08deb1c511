// Package config — .i18nkit.yaml configuration file support.
//
// The file declares the source locale, the locale roots to manage, the
// include/exclude globs applied to locale entry names, and the ordered
// list of translation providers:
//
//	source_locale: en
//	locale_roots:
//	  - src/locales
//	exclude:
//	  - "*.bak"
//	providers:
//	  - id: openai
//	    base_url: https://api.openai.com/v1
//	    api_key_env: OPENAI_API_KEY
//	    model: gpt-4o-mini
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/i18nkit/i18nkit/translate"
)

// FileName is the default config file name.
const FileName = ".i18nkit.yaml"

// File is the top-level .i18nkit.yaml structure.
type File struct {
	// SourceLocale is the origin-of-truth locale code (default "en").
	SourceLocale string `yaml:"source_locale,omitempty"`
	// LocaleRoots are locale root directories relative to the project
	// root (default: ["locales"]).
	LocaleRoots []string `yaml:"locale_roots,omitempty"`
	// Include/Exclude are glob patterns applied to raw locale entry names.
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
	// Providers is the ordered translation backend list; the first usable
	// result wins.
	Providers []Provider `yaml:"providers,omitempty"`
}

// Provider declares one translation backend.
type Provider struct {
	// ID identifies the provider in logs and errors.
	ID string `yaml:"id"`
	// BaseURL is the API base URL.
	BaseURL string `yaml:"base_url,omitempty"`
	// APIKeyEnv names the environment variable holding the API key.
	// Keys never live in the config file itself.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	// Model is the model identifier.
	Model string `yaml:"model,omitempty"`
	// Format: "openai-chat" (default) or "gemini".
	Format string `yaml:"format,omitempty"`
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string `yaml:"proxy,omitempty"`
	// TimeoutSeconds is the per-request timeout (default 60).
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
	// MaxRetries is the retry budget (default 3).
	MaxRetries int `yaml:"max_retries,omitempty"`
}

// Load reads and validates .i18nkit.yaml from rootDir. A missing file is
// not an error: defaults are returned.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	f := &File{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Defaults
	if f.SourceLocale == "" {
		f.SourceLocale = "en"
	}
	if len(f.LocaleRoots) == 0 {
		f.LocaleRoots = []string{"locales"}
	}
	if len(f.Providers) == 0 {
		f.Providers = DefaultProviders()
	}

	for i := range f.Providers {
		p := &f.Providers[i]
		if p.ID == "" {
			return nil, fmt.Errorf("%s: provider #%d has no id", path, i+1)
		}
		switch p.Format {
		case "", translate.FormatOpenAIChat, translate.FormatGeminiNative:
		default:
			return nil, fmt.Errorf("%s: provider %q has unknown format %q (valid: %s, %s)",
				path, p.ID, p.Format, translate.FormatOpenAIChat, translate.FormatGeminiNative)
		}
	}

	return f, nil
}

// ResolvedRoots returns the locale roots as absolute paths under rootDir.
func (f *File) ResolvedRoots(rootDir string) ([]string, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	roots := make([]string, len(f.LocaleRoots))
	for i, r := range f.LocaleRoots {
		if filepath.IsAbs(r) {
			roots[i] = r
		} else {
			roots[i] = filepath.Join(abs, r)
		}
	}
	return roots, nil
}

// Backends builds the translation backend chain from the declared
// providers, resolving API keys from the environment.
func (f *File) Backends() []translate.Backend {
	backends := make([]translate.Backend, 0, len(f.Providers))
	for _, p := range f.Providers {
		backends = append(backends, translate.NewHTTPBackend(translate.Provider{
			ID:         p.ID,
			BaseURL:    p.BaseURL,
			APIKey:     os.Getenv(p.APIKeyEnv),
			Model:      p.Model,
			Format:     p.Format,
			Proxy:      p.Proxy,
			Timeout:    time.Duration(p.TimeoutSeconds) * time.Second,
			MaxRetries: p.MaxRetries,
		}))
	}
	return backends
}

// DefaultProviders returns the pre-configured provider definitions used
// when .i18nkit.yaml declares none.
func DefaultProviders() []Provider {
	return []Provider{
		{
			ID:        "openai",
			BaseURL:   "https://api.openai.com/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Model:     "gpt-4o-mini",
			Format:    translate.FormatOpenAIChat,
		},
		{
			ID:        "google",
			BaseURL:   "https://generativelanguage.googleapis.com",
			APIKeyEnv: "GEMINI_API_KEY",
			Model:     "gemini-2.0-flash",
			Format:    translate.FormatGeminiNative,
		},
	}
}
