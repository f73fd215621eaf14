package openlabel

import (
	"fmt"
	"slices"

	"github.com/stobias123/fiftyone/pkg/labels"
)

// ParseLabelTypes validates a list of label type names.
// An empty list means all supported types.
func ParseLabelTypes(names []string) ([]labels.LabelType, error) {
	if len(names) == 0 {
		return slices.Clone(labels.SupportedTypes), nil
	}
	types := []labels.LabelType{}
	bad := []string{}
	for _, n := range names {
		t := labels.LabelType(n)
		if !slices.Contains(labels.SupportedTypes, t) {
			bad = append(bad, n)
		} else if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	switch {
	case len(bad) == 1:
		return nil, fmt.Errorf("%w: Unsupported label type '%v'. Supported types are %v", ErrInvalidConfiguration, bad[0], labels.SupportedTypes)
	case len(bad) > 1:
		return nil, fmt.Errorf("%w: Unsupported label types %v. Supported types are %v", ErrInvalidConfiguration, bad, labels.SupportedTypes)
	}
	return types, nil
}
