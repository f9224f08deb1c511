// Package keypath implements dotted key-path operations over parsed
// translation file content (nested map[string]any trees).
//
// Lookups are literal-first: at every level the remaining joined path is
// tried as one map key before a segment is consumed. This makes flat files
// written with literal dotted keys ({"a.b.c": "x"}) and nested files
// ({"a": {"b": {"c": "x"}}}) addressable through the same path.
package keypath

import "strings"

// Get returns the value at the dotted path inside tree.
// An empty path addresses the whole tree.
func Get(tree map[string]any, path string) (any, bool) {
	if tree == nil {
		return nil, false
	}
	if path == "" {
		return tree, true
	}
	if v, ok := tree[path]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, false
	}
	child, ok := tree[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return Get(child, rest)
}

// Merge assigns value under the full dotted path as ONE literal key.
// Writing "a.b.c" produces the top-level key "a.b.c", never the nested
// shape {a:{b:{c:...}}} — deep-setting would change the on-disk file shape.
//
// An empty path with a map value merges the map's keys into the tree's
// top level; any other value with an empty path lands under the "" key.
func Merge(tree map[string]any, path string, value any) {
	if path == "" {
		if m, ok := value.(map[string]any); ok {
			for k, v := range m {
				tree[k] = v
			}
			return
		}
	}
	tree[path] = value
}

// Omit removes the value at the dotted path. The literal key is removed
// when present; otherwise the path is walked segment by segment and the
// leaf is deleted. Parent maps emptied by the deletion are left in place.
// An empty path clears the whole tree.
func Omit(tree map[string]any, path string) {
	if tree == nil {
		return
	}
	if path == "" {
		for k := range tree {
			delete(tree, k)
		}
		return
	}
	if _, ok := tree[path]; ok {
		delete(tree, path)
		return
	}
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return
	}
	if child, ok := tree[head].(map[string]any); ok {
		Omit(child, rest)
	}
}

// IsSubtree reports whether a value read from a tree is itself a nested
// object rather than a leaf.
func IsSubtree(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// Ancestors returns the proper ancestor paths of a dotted key, nearest
// first: Ancestors("a.b.c") = ["a.b", "a"].
func Ancestors(path string) []string {
	var out []string
	for {
		idx := strings.LastIndexByte(path, '.')
		if idx < 0 {
			return out
		}
		path = path[:idx]
		out = append(out, path)
	}
}
