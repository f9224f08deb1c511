// Package translate implements machine translation of locale values through
// an ordered list of backends with fallback and error aggregation.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend translates a single string between two locales.
type Backend interface {
	// Name identifies the backend in diagnostics and aggregate errors.
	Name() string
	// Translate returns the translation of text from one locale to another.
	Translate(ctx context.Context, text, fromLocale, toLocale string) (string, error)
}

// Chain tries backends in order, stopping at the first usable result.
type Chain struct {
	backends []Backend

	// OnLog receives per-attempt diagnostics.
	OnLog func(format string, args ...any)
}

// NewChain constructs a Chain over the given backends, tried in order.
func NewChain(backends ...Backend) *Chain {
	return &Chain{backends: backends}
}

// Backends returns the configured backends in attempt order.
func (c *Chain) Backends() []Backend { return c.backends }

// Translate runs the fallback sequence: each backend is attempted in order
// and the first non-empty result wins. A backend that errors or returns an
// empty result is recorded and the next one is tried. When every backend
// fails, the returned error aggregates the complete ordered list of
// per-backend failures so callers can diagnose which were attempted.
func (c *Chain) Translate(ctx context.Context, text, fromLocale, toLocale string) (string, error) {
	if len(c.backends) == 0 {
		return "", errors.New("no translation backends configured")
	}

	var attempts []error
	for _, b := range c.backends {
		result, err := b.Translate(ctx, text, fromLocale, toLocale)
		if err == nil && strings.TrimSpace(result) != "" {
			return result, nil
		}
		if err == nil {
			err = errors.New("returned empty result")
		}
		attempts = append(attempts, fmt.Errorf("%s: %w", b.Name(), err))
		c.logf("translation via %s failed: %v", b.Name(), err)

		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("all %d translation backends failed: %w",
		len(attempts), errors.Join(attempts...))
}

func (c *Chain) logf(format string, args ...any) {
	if c.OnLog != nil {
		c.OnLog(format, args...)
	}
}
