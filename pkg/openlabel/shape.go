package openlabel

import (
	"fmt"

	"github.com/stobias123/fiftyone/pkg/gen"
	"github.com/stobias123/fiftyone/pkg/labels"
)

// ShapeKind identifies the geometry of a Shape
type ShapeKind int

const (
	ShapeBBox ShapeKind = iota
	ShapePolygon2D
	ShapePoint
	numShapeKinds
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBBox:
		return "bounding box"
	case ShapePolygon2D:
		return "polygon"
	case ShapePoint:
		return "point"
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// The key under "object_data" that holds a list of shapes of this kind
func (k ShapeKind) objectDataKey() string {
	switch k {
	case ShapeBBox:
		return "bbox"
	case ShapePolygon2D:
		return "poly2d"
	case ShapePoint:
		return "point2d"
	}
	return ""
}

// FrameSize is the size of an image or video frame, in pixels
type FrameSize struct {
	Width  float64
	Height float64
}

// Shape is one raw geometric record, in absolute pixel coordinates.
//
// BBox coordinates are (cx, cy, w, h). Polygon2D and Point coordinates are
// a flat list of alternating x,y values.
type Shape struct {
	Kind       ShapeKind
	Coords     []float64
	Attributes map[string]any
	Stream     string
}

// ParseShape builds a shape from a raw record such as {"val": [...], "name": "...", "attributes": {...}}.
// Values of "val" that are not numbers are skipped, and returned as 'ignored'.
func ParseShape(kind ShapeKind, raw map[string]any) (s *Shape, ignored []any) {
	s = &Shape{
		Kind: kind,
	}
	if val, ok := raw["val"]; ok && val != nil {
		list, ok := val.([]any)
		if !ok {
			list = []any{val}
		}
		s.Coords = make([]float64, 0, len(list))
		for _, v := range list {
			f, ok := asNumber(v)
			if !ok {
				ignored = append(ignored, v)
				continue
			}
			s.Coords = append(s.Coords, f)
		}
	}
	s.Attributes, s.Stream = ParseAttributes(raw)
	return s, ignored
}

// ToLabel converts the shape into a label with relative coordinates.
// The shape's own attributes are merged over 'inherited'.
// 'skeleton' and 'skeletonKey' only affect points.
func (s *Shape) ToLabel(label string, inherited map[string]any, size FrameSize, skeleton *labels.Skeleton, skeletonKey string) (labels.Label, error) {
	attrs := gen.CloneMap(gen.MergeMaps(inherited, s.Attributes))
	switch s.Kind {
	case ShapeBBox:
		return s.toDetection(label, attrs, size)
	case ShapePolygon2D:
		return s.toPolyline(label, attrs, size)
	case ShapePoint:
		return s.toKeypoint(label, attrs, size, skeleton, skeletonKey)
	}
	return nil, fmt.Errorf("Unknown shape kind %v", s.Kind)
}

func (s *Shape) toDetection(label string, attrs map[string]any, size FrameSize) (*labels.Detection, error) {
	if len(s.Coords) != 4 {
		return nil, &MalformedShapeError{Kind: ShapeBBox, Expected: 4, Found: len(s.Coords)}
	}
	cx, cy, w, h := s.Coords[0], s.Coords[1], s.Coords[2], s.Coords[3]
	x := cx - w/2
	y := cy - h/2
	return &labels.Detection{
		Label:       label,
		BoundingBox: [4]float64{x / size.Width, y / size.Height, w / size.Width, h / size.Height},
		Attributes:  attrs,
	}, nil
}

func (s *Shape) toPolyline(label string, attrs map[string]any, size FrameSize) (*labels.Polyline, error) {
	points := s.relativePoints(size)

	filled, ok := attrs["filled"].(bool)
	if !ok {
		isHole, _ := attrs["is_hole"].(bool)
		filled = !isHole
	}
	closed, ok := attrs["closed"].(bool)
	if !ok {
		closed = true
	}
	delete(attrs, "filled")
	delete(attrs, "closed")
	delete(attrs, "label")

	return &labels.Polyline{
		Label:      label,
		Points:     [][]labels.Point{points},
		Filled:     filled,
		Closed:     closed,
		Attributes: attrs,
	}, nil
}

func (s *Shape) toKeypoint(label string, attrs map[string]any, size FrameSize, skeleton *labels.Skeleton, skeletonKey string) (*labels.Keypoint, error) {
	points := s.relativePoints(size)
	if skeleton != nil && skeletonKey != "" {
		if order, ok := attrs[skeletonKey]; ok {
			delete(attrs, skeletonKey)
			points, attrs = sortBySkeleton(points, attrs, toStringList(order), skeleton.Labels)
		}
	}
	return &labels.Keypoint{
		Label:      label,
		Points:     points,
		Attributes: attrs,
	}, nil
}

// relativePoints pairs up the coordinates. A dangling x coordinate is dropped.
func (s *Shape) relativePoints(size FrameSize) []labels.Point {
	points := make([]labels.Point, 0, len(s.Coords)/2)
	for i := 0; i+1 < len(s.Coords); i += 2 {
		points = append(points, labels.Point{X: s.Coords[i] / size.Width, Y: s.Coords[i+1] / size.Height})
	}
	return points
}

// sortBySkeleton reorders points (and every attribute list aligned with the points)
// into skeleton order. Skeleton labels missing from labelOrder become NaN points, with nil
// attribute entries. Nothing changes unless labelOrder names every point.
func sortBySkeleton(points []labels.Point, attrs map[string]any, labelOrder []string, skeletonOrder []string) ([]labels.Point, map[string]any) {
	if len(points) != len(labelOrder) {
		return points, attrs
	}

	indexOf := map[string]int{}
	for i, l := range labelOrder {
		if _, ok := indexOf[l]; !ok {
			indexOf[l] = i
		}
	}

	aligned := map[string][]any{}
	sortedAttrs := map[string]any{}
	for k, v := range attrs {
		if list, ok := v.([]any); ok && len(list) == len(points) {
			aligned[k] = list
			sortedAttrs[k] = make([]any, 0, len(skeletonOrder))
		} else {
			sortedAttrs[k] = v
		}
	}

	sorted := make([]labels.Point, 0, len(skeletonOrder))
	for _, l := range skeletonOrder {
		i, ok := indexOf[l]
		if ok {
			sorted = append(sorted, points[i])
		} else {
			sorted = append(sorted, labels.NaNPoint())
		}
		for k, list := range aligned {
			var v any
			if ok {
				v = list[i]
			}
			sortedAttrs[k] = append(sortedAttrs[k].([]any), v)
		}
	}
	return sorted, sortedAttrs
}

func toStringList(v any) []string {
	switch t := v.(type) {
	case []any:
		r := make([]string, len(t))
		for i, e := range t {
			if s, ok := e.(string); ok {
				r[i] = s
			} else {
				r[i] = fmt.Sprint(e)
			}
		}
		return r
	case []string:
		return t
	case string:
		return []string{t}
	}
	return nil
}
