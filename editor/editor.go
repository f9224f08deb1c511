// Package editor implements the read, write, remove, and bulk-translate
// operations over the locale entries of one locale root.
//
// Reads flow store → resolver → cache; writes flow override check →
// resolver → cache mutation → disk. Every multi-locale operation settles
// independently per locale: one locale's failure never aborts the batch.
package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/i18nkit/i18nkit/filecache"
	"github.com/i18nkit/i18nkit/keypath"
	"github.com/i18nkit/i18nkit/localestore"
)

// Record is one (key × locale) addressable unit.
type Record struct {
	// Code is the locale this record belongs to.
	Code string
	// EntryPath is the locale's file or directory under the root.
	EntryPath string
	// IsDirectory mirrors the owning locale entry.
	IsDirectory bool
	// FilePath is the concrete file the record lives in.
	FilePath string
	// KeyPath is the dotted path used to index the parsed file content;
	// empty means the whole file is the value.
	KeyPath string
	// FullKey is the caller-supplied dotted key, identical across the
	// records of one lookup.
	FullKey string
	// ID is an ephemeral per-lookup identifier for display and debugging.
	ID string
	// Value is the current value at KeyPath: a scalar, a subtree, or nil
	// when absent.
	Value any
}

// Translator translates a single string between locales.
type Translator interface {
	Translate(ctx context.Context, text, fromLocale, toLocale string) (string, error)
}

// ConfirmFunc asks the user a single yes/no question.
type ConfirmFunc func(message string) bool

// Options configures an Editor.
type Options struct {
	// Confirm is consulted before a write that would overwrite an
	// existing value. A nil Confirm declines every conflicting write.
	Confirm ConfirmFunc
	// Translator performs bulk translation for TransI18n.
	Translator Translator
	// OnError receives non-fatal diagnostics.
	OnError func(format string, args ...any)
}

// Editor composes a locale store and the shared file cache.
type Editor struct {
	store *localestore.Store
	cache *filecache.Cache
	opts  Options
}

// New constructs an Editor over store and cache.
func New(store *localestore.Store, cache *filecache.Cache, opts Options) *Editor {
	return &Editor{store: store, cache: cache, opts: opts}
}

// GetI18n returns one Record per locale for the given dotted key, with
// Value read through the cache.
func (e *Editor) GetI18n(fullKey string) []Record {
	entries := e.store.ListLocales()
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		filePath, keyPath := e.store.Resolve(entry, fullKey)
		tree := e.cache.Read(filePath, true)
		value, ok := keypath.Get(tree, keyPath)
		if !ok {
			value = nil
		}
		records = append(records, Record{
			Code:        entry.Code,
			EntryPath:   entry.EntryPath,
			IsDirectory: entry.IsDirectory,
			FilePath:    filePath,
			KeyPath:     keyPath,
			FullKey:     fullKey,
			ID:          uuid.NewString(),
			Value:       value,
		})
	}
	return records
}

// WriteI18n persists every record concurrently. Each write re-reads its
// file through the cache immediately before merging, assigns the record's
// key path as one literal key, and rewrites the whole file. Individual
// file failures are aggregated; completed writes are never rolled back.
func (e *Editor) WriteI18n(records []Record) error {
	errs := make([]error, len(records))
	var wg sync.WaitGroup
	for i, rec := range records {
		wg.Add(1)
		go func(i int, rec Record) {
			defer wg.Done()
			tree := e.cache.Read(rec.FilePath, true)
			keypath.Merge(tree, rec.KeyPath, rec.Value)
			errs[i] = e.cache.Persist(rec.FilePath)
		}(i, rec)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// RemoveI18n removes the key from every locale, best-effort per locale.
func (e *Editor) RemoveI18n(fullKey string) error {
	records := e.GetI18n(fullKey)
	errs := make([]error, len(records))
	var wg sync.WaitGroup
	for i, rec := range records {
		wg.Add(1)
		go func(i int, rec Record) {
			defer wg.Done()
			tree := e.cache.Read(rec.FilePath, true)
			keypath.Omit(tree, rec.KeyPath)
			errs[i] = e.cache.Persist(rec.FilePath)
		}(i, rec)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// TransI18n translates the source-locale value of fullKey into every other
// locale and persists the results. Locales whose translation fails keep
// their previous value.
func (e *Editor) TransI18n(ctx context.Context, fullKey string) ([]Record, error) {
	if e.opts.Translator == nil {
		return nil, errors.New("no translator configured")
	}
	records := e.GetI18n(fullKey)
	if len(records) == 0 {
		return nil, errors.New("no locales found")
	}
	translated := TranslateBatch(ctx, e.opts.Translator, records, e.store.SourceLocale(), e.opts.OnError)
	if err := e.WriteI18n(translated); err != nil {
		return translated, err
	}
	return translated, nil
}

// TranslateBatch fills in translated values for every non-source record.
// The record whose Code equals sourceLocale is the value origin and is
// returned unchanged; all other locales are translated concurrently. A
// failed locale keeps its previous value — the batch itself never fails.
func TranslateBatch(ctx context.Context, tr Translator, records []Record, sourceLocale string, onError func(format string, args ...any)) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	var source *Record
	for i := range out {
		if out[i].Code == sourceLocale {
			source = &out[i]
			break
		}
	}
	if source == nil {
		return out
	}
	sourceValue, ok := source.Value.(string)
	if !ok || sourceValue == "" {
		return out
	}

	var wg sync.WaitGroup
	for i := range out {
		if out[i].Code == sourceLocale {
			continue
		}
		wg.Add(1)
		go func(rec *Record) {
			defer wg.Done()
			result, err := tr.Translate(ctx, sourceValue, sourceLocale, rec.Code)
			if err != nil {
				if onError != nil {
					onError("translating %q to %s: %v", rec.FullKey, rec.Code, err)
				}
				return // keep the previous value
			}
			rec.Value = result
		}(&out[i])
	}
	wg.Wait()
	return out
}
