package gen

import (
	"slices"
	"strconv"
)

// NaturalLess orders numeric strings by value, and everything else lexicographically.
// Numeric strings sort before non-numeric strings.
func NaturalLess(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return a < b
}

// SortedKeys returns the keys of m in natural order (see NaturalLess).
// JSON objects decode into maps, so this is how we recover a stable visiting order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if NaturalLess(a, b) {
			return -1
		} else if NaturalLess(b, a) {
			return 1
		}
		return 0
	})
	return keys
}

// SortedIntKeys returns the keys of m in ascending order
func SortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// UniqueSorted returns the sorted set of strings in 'a'. Empty strings are dropped.
func UniqueSorted(a []string) []string {
	r := make([]string, 0, len(a))
	for _, s := range a {
		if s != "" {
			r = append(r, s)
		}
	}
	slices.Sort(r)
	return slices.Compact(r)
}
