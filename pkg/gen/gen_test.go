package gen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"10": 0, "2": 0, "b": 0, "1": 0, "a": 0}
	require.Equal(t, []string{"1", "2", "10", "a", "b"}, SortedKeys(m))
	require.Equal(t, []int{1, 5, 9}, SortedIntKeys(map[int]bool{9: true, 1: true, 5: true}))
}

func TestUniqueSorted(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, UniqueSorted([]string{"b", "", "a", "b"}))
	require.Equal(t, []string{}, UniqueSorted(nil))
}

func TestCloneMap(t *testing.T) {
	src := map[string]any{
		"list": []any{1.0, map[string]any{"x": "y"}},
		"obj":  map[string]any{"n": 2.0},
	}
	c := CloneMap(src)
	require.Equal(t, src, c)
	c["obj"].(map[string]any)["n"] = 3.0
	c["list"].([]any)[1].(map[string]any)["x"] = "z"
	require.Equal(t, 2.0, src["obj"].(map[string]any)["n"])
	require.Equal(t, "y", src["list"].([]any)[1].(map[string]any)["x"])
}

func TestMergeMaps(t *testing.T) {
	r := MergeMaps(map[string]any{"a": 1, "b": 1}, nil, map[string]any{"b": 2})
	require.Equal(t, map[string]any{"a": 1, "b": 2}, r)
}
