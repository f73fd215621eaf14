package gen

// CloneValue deep-copies a value produced by encoding/json (maps, slices and scalars).
// Values of other types are returned as-is.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = CloneValue(e)
		}
		return c
	default:
		return v
	}
}

// CloneMap deep-copies a decoded JSON object. A nil map yields an empty map.
func CloneMap(m map[string]any) map[string]any {
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = CloneValue(v)
	}
	return c
}

// MergeMaps returns a new map containing the contents of each of 'maps' in turn.
// Later maps win on key conflicts.
func MergeMaps(maps ...map[string]any) map[string]any {
	n := 0
	for _, m := range maps {
		n += len(m)
	}
	r := make(map[string]any, n)
	for _, m := range maps {
		for k, v := range m {
			r[k] = v
		}
	}
	return r
}
