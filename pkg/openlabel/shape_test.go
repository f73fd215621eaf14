package openlabel

import (
	"math"
	"testing"

	"github.com/stobias123/fiftyone/pkg/labels"
	"github.com/stretchr/testify/require"
)

func TestParseAttributes(t *testing.T) {
	node := map[string]any{
		"val":               []any{1.0, 2.0},
		"frame_intervals":   []any{},
		"occluded":          false,
		"coordinate_system": "cam_front",
		"attributes": map[string]any{
			"text": []any{
				map[string]any{"name": "color", "val": "red"},
				map[string]any{"name": "Stream", "val": "cam_rear"},
				"garbage",
			},
			"boolean": []any{
				map[string]any{"name": "occluded", "val": true},
				map[string]any{"name": "val", "val": 5.0},
			},
		},
	}
	attrs, stream := ParseAttributes(node)
	require.Equal(t, "cam_rear", stream)
	require.Equal(t, map[string]any{
		"occluded":          true,
		"color":             "red",
		"coordinate_system": "cam_front",
	}, attrs)

	// The input is not modified
	require.Len(t, node, 5)

	attrs, stream = ParseAttributes(nil)
	require.Empty(t, attrs)
	require.Equal(t, "", stream)
}

func TestBBoxToDetection(t *testing.T) {
	s, ignored := ParseShape(ShapeBBox, map[string]any{
		"val":  []any{50.0, 50.0, 20.0, 10.0},
		"name": "box",
	})
	require.Empty(t, ignored)
	l, err := s.ToLabel("car", map[string]any{"name": "parent", "speed": 3.0}, FrameSize{100, 100}, nil, "")
	require.NoError(t, err)
	det := l.(*labels.Detection)
	require.Equal(t, "car", det.Label)
	want := [4]float64{0.40, 0.45, 0.20, 0.10}
	for i := range want {
		require.InDelta(t, want[i], det.BoundingBox[i], 1e-9)
	}
	require.Equal(t, map[string]any{"name": "box", "speed": 3.0}, det.Attributes)
}

func TestBBoxMalformed(t *testing.T) {
	s, ignored := ParseShape(ShapeBBox, map[string]any{"val": []any{1.0, 2.0, 3.0}})
	require.Empty(t, ignored)
	_, err := s.ToLabel("car", nil, FrameSize{100, 100}, nil, "")
	var malformed *MalformedShapeError
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, 4, malformed.Expected)
	require.Equal(t, 3, malformed.Found)

	// Non-numeric values are skipped, which leaves the box short of coordinates
	s, ignored = ParseShape(ShapeBBox, map[string]any{"val": []any{1.0, "x", 3.0, 4.0}})
	require.Equal(t, []any{"x"}, ignored)
	require.Equal(t, []float64{1, 3, 4}, s.Coords)
	_, err = s.ToLabel("car", nil, FrameSize{100, 100}, nil, "")
	require.ErrorAs(t, err, &malformed)

	s, ignored = ParseShape(ShapeBBox, map[string]any{"val": "nope"})
	require.Equal(t, []any{"nope"}, ignored)
	require.Empty(t, s.Coords)
}

func TestPolygonDefaults(t *testing.T) {
	s, ignored := ParseShape(ShapePolygon2D, map[string]any{"val": []any{0.0, 0.0, 10.0, 0.0, 10.0, 10.0}})
	require.Empty(t, ignored)
	l, err := s.ToLabel("road", nil, FrameSize{10, 10}, nil, "")
	require.NoError(t, err)
	p := l.(*labels.Polyline)
	require.True(t, p.Filled)
	require.True(t, p.Closed)
	require.Equal(t, [][]labels.Point{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}}, p.Points)
	require.Empty(t, p.Attributes)
}

func TestPolygonHoleAndClosed(t *testing.T) {
	s, ignored := ParseShape(ShapePolygon2D, map[string]any{
		"val":     []any{0.0, 0.0, 10.0, 0.0, 10.0, 10.0},
		"is_hole": true,
		"closed":  false,
		"label":   "ignored",
	})
	require.Empty(t, ignored)
	l, err := s.ToLabel("road", nil, FrameSize{10, 10}, nil, "")
	require.NoError(t, err)
	p := l.(*labels.Polyline)
	require.False(t, p.Filled)
	require.False(t, p.Closed)
	require.Equal(t, map[string]any{"is_hole": true}, p.Attributes)

	// An explicit 'filled' wins over is_hole
	s.Attributes["filled"] = true
	l, err = s.ToLabel("road", nil, FrameSize{10, 10}, nil, "")
	require.NoError(t, err)
	require.True(t, l.(*labels.Polyline).Filled)

	// A dangling x coordinate is dropped
	s.Coords = s.Coords[:5]
	l, err = s.ToLabel("road", nil, FrameSize{10, 10}, nil, "")
	require.NoError(t, err)
	require.Equal(t, [][]labels.Point{{{X: 0, Y: 0}, {X: 1, Y: 0}}}, l.(*labels.Polyline).Points)
}

func TestPointSkeletonPadding(t *testing.T) {
	s, ignored := ParseShape(ShapePoint, map[string]any{
		"val":         []any{10.0, 20.0, 30.0, 40.0},
		"point_names": []any{"left", "right"},
		"visible":     []any{true, false},
		"kind":        "person",
	})
	require.Empty(t, ignored)
	skeleton := &labels.Skeleton{Labels: []string{"left", "right", "center"}}
	l, err := s.ToLabel("person", nil, FrameSize{100, 100}, skeleton, "point_names")
	require.NoError(t, err)
	kp := l.(*labels.Keypoint)
	require.Len(t, kp.Points, 3)
	require.InDelta(t, 0.1, kp.Points[0].X, 1e-9)
	require.InDelta(t, 0.2, kp.Points[0].Y, 1e-9)
	require.InDelta(t, 0.3, kp.Points[1].X, 1e-9)
	require.InDelta(t, 0.4, kp.Points[1].Y, 1e-9)
	require.True(t, math.IsNaN(kp.Points[2].X))
	require.True(t, math.IsNaN(kp.Points[2].Y))
	require.Equal(t, []any{true, false, nil}, kp.Attributes["visible"])
	require.Equal(t, "person", kp.Attributes["kind"])
	require.NotContains(t, kp.Attributes, "point_names")
}

func TestPointSkeletonReorder(t *testing.T) {
	s, ignored := ParseShape(ShapePoint, map[string]any{
		"val":         []any{10.0, 10.0, 20.0, 20.0},
		"point_names": []any{"right", "left"},
	})
	require.Empty(t, ignored)
	skeleton := &labels.Skeleton{Labels: []string{"left", "right"}}
	l, err := s.ToLabel("person", nil, FrameSize{100, 100}, skeleton, "point_names")
	require.NoError(t, err)
	require.Equal(t, []labels.Point{{X: 0.2, Y: 0.2}, {X: 0.1, Y: 0.1}}, l.(*labels.Keypoint).Points)

	// Orderings that don't name every point are ignored
	s.Attributes["point_names"] = []any{"left"}
	l, err = s.ToLabel("person", nil, FrameSize{100, 100}, skeleton, "point_names")
	require.NoError(t, err)
	require.Equal(t, []labels.Point{{X: 0.1, Y: 0.1}, {X: 0.2, Y: 0.2}}, l.(*labels.Keypoint).Points)
}

func TestPointSkeletonKeyWithoutSkeleton(t *testing.T) {
	s, ignored := ParseShape(ShapePoint, map[string]any{
		"val":         []any{10.0, 10.0, 20.0, 20.0, 30.0},
		"point_names": []any{"right", "left"},
	})
	require.Empty(t, ignored)
	l, err := s.ToLabel("person", nil, FrameSize{100, 100}, nil, "point_names")
	require.NoError(t, err)
	kp := l.(*labels.Keypoint)
	require.Equal(t, []labels.Point{{X: 0.1, Y: 0.1}, {X: 0.2, Y: 0.2}}, kp.Points)
	require.Equal(t, []any{"right", "left"}, kp.Attributes["point_names"])
}

func TestShapeCollectionCloneKeepsNil(t *testing.T) {
	c := NewShapeCollection(ShapePoint)
	require.Nil(t, c.Clone().Shapes)

	c.Shapes = []*Shape{{Kind: ShapePoint, Coords: []float64{1, 2}, Attributes: map[string]any{}}}
	clone := c.Clone()
	require.Equal(t, c, clone)
	require.NotSame(t, c.Shapes[0], clone.Shapes[0])
}

func TestShapeCollectionMerge(t *testing.T) {
	a := NewShapeCollection(ShapeBBox)
	a.Shapes = []*Shape{{Kind: ShapeBBox, Coords: []float64{1, 1, 1, 1}}}
	a.Attributes = map[string]any{"x": 1.0, "y": 1.0}
	b := NewShapeCollection(ShapeBBox)
	b.Shapes = []*Shape{{Kind: ShapeBBox, Coords: []float64{2, 2, 2, 2}}}
	b.Attributes = map[string]any{"y": 2.0}
	b.Stream = "cam"
	a.Merge(b)
	require.Len(t, a.Shapes, 2)
	require.Equal(t, map[string]any{"x": 1.0, "y": 2.0}, a.Attributes)
	require.Equal(t, "cam", a.Stream)
	require.Equal(t, []string{"cam"}, a.Streams())
}

func TestShapeCollectionIndividual(t *testing.T) {
	c := NewShapeCollection(ShapeBBox)
	c.Attributes = map[string]any{"source": "collection", "shared": 1.0}
	c.Shapes = []*Shape{
		{Kind: ShapeBBox, Coords: []float64{10, 10, 10, 10}, Attributes: map[string]any{"source": "shape"}},
		{Kind: ShapeBBox, Coords: []float64{20, 20, 10, 10}},
	}
	ls, err := c.Project("car", map[string]any{"shared": 0.0, "name": "obj"}, FrameSize{100, 100}, false, nil, "")
	require.NoError(t, err)
	require.Len(t, ls, 2)
	require.Equal(t, map[string]any{"source": "shape", "shared": 1.0, "name": "obj"}, ls[0].(*labels.Detection).Attributes)
	require.Equal(t, map[string]any{"source": "collection", "shared": 1.0, "name": "obj"}, ls[1].(*labels.Detection).Attributes)

	// Labels don't share attribute maps
	ls[0].(*labels.Detection).Attributes["name"] = "changed"
	require.Equal(t, "obj", ls[1].(*labels.Detection).Attributes["name"])
}

func TestShapeCollectionPoints(t *testing.T) {
	c := NewShapeCollection(ShapePoint)
	ls, err := c.Project("person", nil, FrameSize{100, 100}, true, nil, "")
	require.NoError(t, err)
	require.Len(t, ls, 0)

	c.Shapes = []*Shape{
		{Kind: ShapePoint, Coords: []float64{10, 10}, Attributes: map[string]any{"point_names": "right", "occluded": true}},
		{Kind: ShapePoint, Coords: []float64{20, 20, 30, 30}, Attributes: map[string]any{"point_names": []any{"left", "center"}}},
	}
	ls, err = c.Project("person", nil, FrameSize{100, 100}, true, nil, "")
	require.NoError(t, err)
	require.Len(t, ls, 1)
	kp := ls[0].(*labels.Keypoint)
	require.Len(t, kp.Points, 3)
	require.Equal(t, []any{"right", "left", "center"}, kp.Attributes["point_names"])
	require.Equal(t, []any{true, nil, nil}, kp.Attributes["occluded"])

	skeleton := &labels.Skeleton{Labels: []string{"left", "center", "right"}}
	ls, err = c.Project("person", nil, FrameSize{100, 100}, true, skeleton, "point_names")
	require.NoError(t, err)
	kp = ls[0].(*labels.Keypoint)
	require.Equal(t, []labels.Point{{X: 0.2, Y: 0.2}, {X: 0.3, Y: 0.3}, {X: 0.1, Y: 0.1}}, kp.Points)
	require.Equal(t, []any{nil, nil, true}, kp.Attributes["occluded"])
}

func TestShapeCollectionTypeMismatch(t *testing.T) {
	c := NewShapeCollection(ShapePoint)
	c.Shapes = []*Shape{
		{Kind: ShapePoint, Coords: []float64{1, 1}},
		{Kind: ShapeBBox, Coords: []float64{1, 1, 1, 1}},
	}
	_, err := c.Project("x", nil, FrameSize{10, 10}, true, nil, "")
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, ShapeBBox, mismatch.Found)
}
