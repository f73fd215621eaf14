package openlabel

import (
	"strings"

	"github.com/stobias123/fiftyone/pkg/gen"
)

// Keys that describe structure rather than attributes, and are never copied into label attributes
var structuralKeys = map[string]bool{
	"frame_intervals":      true,
	"val":                  true,
	"attributes":           true,
	"object_data":          true,
	"object_data_pointers": true,
	"bbox":                 true,
	"point2d":              true,
	"poly2d":               true,
}

// Attribute names that refer to a stream
var streamKeys = []string{"stream", "coordinate_system"}

func isStreamKey(name string) bool {
	name = strings.ToLower(name)
	for _, k := range streamKeys {
		if k == name {
			return true
		}
	}
	return false
}

// ParseAttributes splits a raw annotation node into plain attributes and a stream reference.
//
// Flat keys of node (other than the structural keys) are plain attributes. A flat "stream" or
// "coordinate_system" string also sets the stream reference. Then every {name, val} record
// in node["attributes"] (which is grouped by attribute type, eg "text", "num", "boolean")
// is applied: stream names override the stream reference, and everything else is
// written into the attributes, overwriting flat keys of the same name.
// The node is not modified. Malformed substructures are ignored.
func ParseAttributes(node map[string]any) (map[string]any, string) {
	attributes := map[string]any{}
	stream := ""
	for k, v := range node {
		if structuralKeys[k] {
			continue
		}
		attributes[k] = gen.CloneValue(v)
	}
	for _, k := range streamKeys {
		if s, ok := node[k].(string); ok {
			stream = s
		}
	}

	grouped, _ := node["attributes"].(map[string]any)
	for _, attrType := range gen.SortedKeys(grouped) {
		records, _ := grouped[attrType].([]any)
		for _, r := range records {
			record, ok := r.(map[string]any)
			if !ok {
				continue
			}
			name, ok := record["name"].(string)
			if !ok {
				continue
			}
			val := record["val"]
			if isStreamKey(name) {
				if s, ok := val.(string); ok {
					stream = s
				}
				continue
			}
			if structuralKeys[strings.ToLower(name)] {
				continue
			}
			attributes[name] = gen.CloneValue(val)
		}
	}
	return attributes, stream
}

// asMap returns v as a JSON object, or nil
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asString returns v if it is a string, otherwise ""
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asNumber returns v as a float64 if it's a JSON number. Booleans are not numbers.
func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
