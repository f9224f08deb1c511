package editor

import (
	"fmt"

	"github.com/i18nkit/i18nkit/keypath"
)

// CheckOverride reports whether writing fullKey is safe. It inspects the
// source-locale file: a defined non-object value at the key itself, or at
// the nearest ancestor, is a conflict — the write would silently replace
// an existing leaf or flatten a subtree. Object-valued ancestors are safe
// nesting, never conflicts.
//
// On conflict the configured ConfirmFunc is asked; the write proceeds only
// on an explicit yes. A declined conflict is a normal abort, not an error.
func (e *Editor) CheckOverride(fullKey string) bool {
	entry, ok := e.store.SourceEntry()
	if !ok {
		// No source locale on disk: nothing to conflict with.
		return true
	}

	lookup := func(key string) any {
		filePath, keyPath := e.store.Resolve(entry, key)
		tree := e.cache.Read(filePath, true)
		v, found := keypath.Get(tree, keyPath)
		if !found {
			return nil
		}
		return v
	}

	conflictKey := ""
	var conflictValue any
	if v := lookup(fullKey); v != nil && !keypath.IsSubtree(v) {
		conflictKey, conflictValue = fullKey, v
	} else {
		for _, ancestor := range keypath.Ancestors(fullKey) {
			v := lookup(ancestor)
			if v == nil || keypath.IsSubtree(v) {
				continue
			}
			conflictKey, conflictValue = ancestor, v
			break
		}
	}

	if conflictKey == "" {
		return true
	}
	if e.opts.Confirm == nil {
		return false
	}
	return e.opts.Confirm(fmt.Sprintf(
		"key %q already has the value %v — overwrite it?", conflictKey, conflictValue))
}
