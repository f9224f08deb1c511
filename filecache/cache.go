// Package filecache implements the shared read-through cache of parsed
// locale files, kept coherent by filesystem watch events.
//
// The cache maps absolute file paths to parsed key/value trees. Reads are
// best-effort: a missing, unreadable, or malformed file degrades to an empty
// tree and never surfaces an error. Cached trees are mutated in place, so
// every reader observes the latest write; there is no cross-operation
// transaction, and a watcher refresh may interleave between a read and a
// subsequent write.
package filecache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// Options configures a Cache.
type Options struct {
	// OnError receives non-fatal diagnostics (watch failures etc.).
	OnError func(format string, args ...any)
}

// Cache is a mapping from absolute file path to parsed file content.
// One Cache instance is shared by every store and editor in the process.
type Cache struct {
	mu    sync.Mutex
	files map[string]map[string]any

	sf   singleflight.Group
	opts Options
}

// New constructs an empty Cache.
func New(opts Options) *Cache {
	return &Cache{
		files: make(map[string]map[string]any),
		opts:  opts,
	}
}

// Read returns the parsed content of path. When useCache is true and an
// entry exists it is returned as-is; otherwise the file is parsed from disk
// and the entry replaced. Concurrent parses of one path are deduplicated.
func (c *Cache) Read(path string, useCache bool) map[string]any {
	path = filepath.Clean(path)

	if useCache {
		c.mu.Lock()
		tree, ok := c.files[path]
		c.mu.Unlock()
		if ok {
			return tree
		}
	}

	v, _, _ := c.sf.Do(path, func() (any, error) {
		tree := parseFile(path)
		c.mu.Lock()
		c.files[path] = tree
		c.mu.Unlock()
		return tree, nil
	})
	return v.(map[string]any)
}

// Refresh re-reads path from disk, replacing any cached entry.
func (c *Cache) Refresh(path string) {
	c.Read(path, false)
}

// Invalidate removes the cache entry for path.
func (c *Cache) Invalidate(path string) {
	path = filepath.Clean(path)
	c.mu.Lock()
	delete(c.files, path)
	c.mu.Unlock()
}

// Persist serializes the cached tree for path and writes the whole file to
// disk: 2-space pretty JSON for .json files, YAML otherwise.
func (c *Cache) Persist(path string) error {
	path = filepath.Clean(path)
	tree := c.Read(path, true)

	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(tree, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	} else {
		data, err = yaml.Marshal(tree)
	}
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Watch installs a recursive filesystem watcher under root and keeps the
// cache coherent until ctx is cancelled: create/change of a JSON or YAML
// file refreshes its entry, delete removes it, anything else is ignored.
func (c *Cache) Watch(ctx context.Context, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	// fsnotify watches are per-directory; walk the tree to cover namespace
	// subdirectories, and add new directories as they appear.
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", root, err)
	}

	go c.watchLoop(ctx, watcher)
	return nil
}

func (c *Cache) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Op.Has(fsnotify.Create):
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						c.reportf("watching %s: %v", event.Name, err)
					}
					continue
				}
				if isLocaleFile(event.Name) {
					c.Refresh(event.Name)
				}
			case event.Op.Has(fsnotify.Write):
				if isLocaleFile(event.Name) {
					c.Refresh(event.Name)
				}
			case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
				if isLocaleFile(event.Name) {
					c.Invalidate(event.Name)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.reportf("watch error: %v", err)
		}
	}
}

func (c *Cache) reportf(format string, args ...any) {
	if c.opts.OnError != nil {
		c.opts.OnError(format, args...)
	}
}

// isLocaleFile reports whether a path carries a JSON or YAML extension.
func isLocaleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yml", ".yaml":
		return true
	}
	return false
}

// parseFile reads and parses path by extension. Every failure, including a
// non-object document, yields an empty tree: a malformed locale file
// degrades to "empty", never a crash.
func parseFile(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]any{}
	}

	var v any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &v)
	} else {
		err = yaml.Unmarshal(data, &v)
	}
	if err != nil {
		return map[string]any{}
	}

	tree, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return tree
}
