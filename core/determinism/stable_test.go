// Package determinism - Ordering primitive tests
package determinism

import (
	"testing"
)

// TestSortedKeys proves map keys come back sorted regardless of insertion
func TestSortedKeys(t *testing.T) {
	m := map[string]int{"c": 1, "a": 2, "b": 3}
	keys := SortedKeys(m)
	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Position %d: expected %q, got %q", i, want[i], keys[i])
		}
	}
}

// TestRangeMapSortedStopsEarly proves the callback can halt iteration
func TestRangeMapSortedStopsEarly(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2, "c": 3}
	var visited []string
	RangeMapSorted(m, func(k string, _ int) bool {
		visited = append(visited, k)
		return k != "b"
	})
	if len(visited) != 2 || visited[0] != "a" || visited[1] != "b" {
		t.Errorf("Expected visit [a b], got %v", visited)
	}
}

// TestSortSliceStable proves equal elements keep their input order
func TestSortSliceStable(t *testing.T) {
	type pair struct {
		key   int
		label string
	}
	s := []pair{{1, "first"}, {0, "x"}, {1, "second"}}
	SortSlice(s, func(a, b pair) bool { return a.key < b.key })
	if s[1].label != "first" || s[2].label != "second" {
		t.Errorf("Stable order lost: %v", s)
	}
}
