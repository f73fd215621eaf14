package openlabel

import (
	"github.com/stobias123/fiftyone/pkg/gen"
	"github.com/stobias123/fiftyone/pkg/labels"
)

// ShapeCollection is an ordered list of shapes of one kind belonging to one object,
// plus attributes and a stream reference shared by all of them.
type ShapeCollection struct {
	Kind       ShapeKind
	Shapes     []*Shape
	Attributes map[string]any
	Stream     string
}

func NewShapeCollection(kind ShapeKind) *ShapeCollection {
	return &ShapeCollection{
		Kind:       kind,
		Attributes: map[string]any{},
	}
}

// parseShapeCollection builds a collection from the shape list stored under one key of
// "object_data". The rest of object_data supplies the collection attributes.
// Coordinates that could not be parsed are returned as 'ignored'.
func parseShapeCollection(kind ShapeKind, list []any, objectData map[string]any) (c *ShapeCollection, ignored []any) {
	c = NewShapeCollection(kind)
	for _, item := range list {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		s, bad := ParseShape(kind, raw)
		ignored = append(ignored, bad...)
		c.Shapes = append(c.Shapes, s)
	}
	if len(objectData) != 0 {
		c.Attributes, c.Stream = ParseAttributes(objectData)
	}
	return c, ignored
}

// Merge appends the shapes of other, and merges its attributes over ours.
func (c *ShapeCollection) Merge(other *ShapeCollection) {
	if other == nil {
		return
	}
	c.Shapes = append(c.Shapes, other.Shapes...)
	for k, v := range other.Attributes {
		c.Attributes[k] = v
	}
	if c.Stream == "" {
		c.Stream = other.Stream
	}
}

// Streams returns every stream referenced by the collection or its shapes
func (c *ShapeCollection) Streams() []string {
	streams := []string{}
	if c.Stream != "" {
		streams = append(streams, c.Stream)
	}
	for _, s := range c.Shapes {
		if s.Stream != "" {
			streams = append(streams, s.Stream)
		}
	}
	return streams
}

func (c *ShapeCollection) Clone() *ShapeCollection {
	r := &ShapeCollection{
		Kind:       c.Kind,
		Attributes: gen.CloneMap(c.Attributes),
		Stream:     c.Stream,
	}
	if c.Shapes != nil {
		r.Shapes = make([]*Shape, len(c.Shapes))
	}
	for i, s := range c.Shapes {
		r.Shapes[i] = &Shape{
			Kind:       s.Kind,
			Coords:     append([]float64(nil), s.Coords...),
			Attributes: gen.CloneMap(s.Attributes),
			Stream:     s.Stream,
		}
	}
	return r
}

// Project converts the collection into labels.
//
// Normally every shape becomes its own label. If asPoints is true, all shapes must be points,
// and they are concatenated into a single multi-point Keypoint label (or no label if
// the collection is empty).
func (c *ShapeCollection) Project(label string, inherited map[string]any, size FrameSize, asPoints bool, skeleton *labels.Skeleton, skeletonKey string) ([]labels.Label, error) {
	base := gen.MergeMaps(inherited, c.Attributes)
	if asPoints {
		return c.projectPoints(label, base, size, skeleton, skeletonKey)
	}
	result := make([]labels.Label, 0, len(c.Shapes))
	for _, s := range c.Shapes {
		l, err := s.ToLabel(label, base, size, skeleton, skeletonKey)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, nil
}

func (c *ShapeCollection) projectPoints(label string, base map[string]any, size FrameSize, skeleton *labels.Skeleton, skeletonKey string) ([]labels.Label, error) {
	if len(c.Shapes) == 0 {
		return nil, nil
	}
	for _, s := range c.Shapes {
		if s.Kind != ShapePoint {
			return nil, &TypeMismatchError{Found: s.Kind}
		}
	}

	// Concatenate coordinates, and turn every shape attribute into a list with one entry per point
	combined := &Shape{
		Kind: ShapePoint,
	}
	perPoint := map[string][]any{}
	n := 0
	for _, s := range c.Shapes {
		m := len(s.Coords) / 2
		for k, v := range s.Attributes {
			list, ok := perPoint[k]
			if !ok {
				list = make([]any, n)
			}
			if vl, isList := v.([]any); isList && len(vl) == m {
				for _, e := range vl {
					list = append(list, gen.CloneValue(e))
				}
			} else {
				for i := 0; i < m; i++ {
					list = append(list, gen.CloneValue(v))
				}
			}
			perPoint[k] = list
		}
		n += m
		for k, list := range perPoint {
			for len(list) < n {
				list = append(list, nil)
			}
			perPoint[k] = list
		}
		combined.Coords = append(combined.Coords, s.Coords[:2*m]...)
		if s.Stream != "" {
			combined.Stream = s.Stream
		}
	}

	combined.Attributes = make(map[string]any, len(perPoint))
	for k, list := range perPoint {
		combined.Attributes[k] = list
	}
	l, err := combined.ToLabel(label, base, size, skeleton, skeletonKey)
	if err != nil {
		return nil, err
	}
	return []labels.Label{l}, nil
}
