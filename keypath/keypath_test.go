package keypath

import (
	"reflect"
	"testing"
)

func nested() map[string]any {
	return map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": "x"},
			"n": 42,
		},
		"top": "level",
	}
}

func TestGet(t *testing.T) {
	t.Run("nested path", func(t *testing.T) {
		v, ok := Get(nested(), "a.b.c")
		if !ok || v != "x" {
			t.Fatalf("Get(a.b.c) = %v, %v; want x, true", v, ok)
		}
	})

	t.Run("literal key wins over split", func(t *testing.T) {
		tree := map[string]any{"a.b.c": "flat", "a": map[string]any{"b": map[string]any{"c": "deep"}}}
		v, ok := Get(tree, "a.b.c")
		if !ok || v != "flat" {
			t.Fatalf("Get literal = %v, %v; want flat, true", v, ok)
		}
	})

	t.Run("literal key at inner level", func(t *testing.T) {
		tree := map[string]any{"ns": map[string]any{"a.b": "flat"}}
		v, ok := Get(tree, "ns.a.b")
		if !ok || v != "flat" {
			t.Fatalf("Get(ns.a.b) = %v, %v; want flat, true", v, ok)
		}
	})

	t.Run("empty path returns whole tree", func(t *testing.T) {
		tree := nested()
		v, ok := Get(tree, "")
		if !ok || !reflect.DeepEqual(v, tree) {
			t.Fatalf("Get(\"\") did not return the tree")
		}
	})

	t.Run("missing key", func(t *testing.T) {
		if _, ok := Get(nested(), "a.b.z"); ok {
			t.Fatal("expected miss for a.b.z")
		}
	})

	t.Run("scalar in the middle", func(t *testing.T) {
		if _, ok := Get(nested(), "a.n.deeper"); ok {
			t.Fatal("expected miss when descending through a scalar")
		}
	})

	t.Run("nil tree", func(t *testing.T) {
		if _, ok := Get(nil, "a"); ok {
			t.Fatal("expected miss on nil tree")
		}
	})
}

func TestMerge(t *testing.T) {
	t.Run("assigns literal dotted key", func(t *testing.T) {
		tree := map[string]any{}
		Merge(tree, "a.b.c", "x")
		if v, ok := tree["a.b.c"]; !ok || v != "x" {
			t.Fatalf("want literal top-level key a.b.c, got %v", tree)
		}
		if _, ok := tree["a"]; ok {
			t.Fatal("Merge must not deep-set nested maps")
		}
	})

	t.Run("empty path merges map top-level", func(t *testing.T) {
		tree := map[string]any{"keep": true}
		Merge(tree, "", map[string]any{"a": 1, "b": 2})
		if tree["a"] != 1 || tree["b"] != 2 || tree["keep"] != true {
			t.Fatalf("unexpected tree after merge: %v", tree)
		}
	})

	t.Run("round-trips through Get", func(t *testing.T) {
		tree := map[string]any{}
		Merge(tree, "nav.home.title", "Home")
		v, ok := Get(tree, "nav.home.title")
		if !ok || v != "Home" {
			t.Fatalf("Get after Merge = %v, %v", v, ok)
		}
	})
}

func TestOmit(t *testing.T) {
	t.Run("removes nested leaf", func(t *testing.T) {
		tree := nested()
		Omit(tree, "a.b.c")
		if _, ok := Get(tree, "a.b.c"); ok {
			t.Fatal("a.b.c still present after Omit")
		}
		if _, ok := Get(tree, "a.n"); !ok {
			t.Fatal("sibling a.n removed by Omit")
		}
	})

	t.Run("removes literal key", func(t *testing.T) {
		tree := map[string]any{"a.b.c": "x"}
		Omit(tree, "a.b.c")
		if len(tree) != 0 {
			t.Fatalf("literal key not removed: %v", tree)
		}
	})

	t.Run("missing key is a no-op", func(t *testing.T) {
		tree := nested()
		Omit(tree, "does.not.exist")
		if _, ok := Get(tree, "a.b.c"); !ok {
			t.Fatal("Omit of missing key damaged the tree")
		}
	})

	t.Run("empty path clears tree", func(t *testing.T) {
		tree := nested()
		Omit(tree, "")
		if len(tree) != 0 {
			t.Fatalf("tree not cleared: %v", tree)
		}
	})
}

func TestAncestors(t *testing.T) {
	got := Ancestors("a.b.c")
	want := []string{"a.b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Ancestors(a.b.c) = %v, want %v", got, want)
	}
	if got := Ancestors("single"); got != nil {
		t.Fatalf("Ancestors(single) = %v, want nil", got)
	}
}

func TestIsSubtree(t *testing.T) {
	if !IsSubtree(map[string]any{}) {
		t.Fatal("map should be a subtree")
	}
	if IsSubtree("leaf") || IsSubtree(nil) || IsSubtree(3) {
		t.Fatal("scalars must not be subtrees")
	}
}
