package openlabel

import (
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/labels"
	"github.com/stretchr/testify/require"
)

func bboxRecord(cx, cy, w, h float64) map[string]any {
	return map[string]any{
		"object_data": map[string]any{
			"bbox": map[string]any{"val": []any{cx, cy, w, h}},
		},
	}
}

func TestObjectParse(t *testing.T) {
	o := NewObject("7", false)
	ignored := o.Update(map[string]any{
		"name": "car_7",
		"type": "car",
		"object_data": map[string]any{
			"bbox": []any{
				map[string]any{"name": "b1", "val": []any{10.0, 10.0, 4.0, 4.0}},
				map[string]any{"name": "b2", "val": []any{20.0, 20.0, 4.0, 4.0}, "stream": "cam"},
			},
			"poly2d":  map[string]any{"val": []any{0.0, 0.0, 1.0, 0.0, 1.0, 1.0}},
			"quality": "high",
		},
		"frame_intervals": []any{},
		"attributes": map[string]any{
			"text": []any{map[string]any{"name": "color", "val": "blue"}},
		},
	}, 0)
	require.Empty(t, ignored)
	require.Equal(t, "car_7", o.Name)
	require.Equal(t, "car", o.Type)
	require.Len(t, o.Shapes(ShapeBBox).Shapes, 2)
	require.Len(t, o.Shapes(ShapePolygon2D).Shapes, 1)
	require.Len(t, o.Shapes(ShapePoint).Shapes, 0)
	require.Equal(t, map[string]any{"quality": "high"}, o.Shapes(ShapeBBox).Attributes)
	require.Equal(t, map[string]any{"color": "blue"}, o.OtherAttrs)
	require.Equal(t, []string{"cam"}, o.Streams())
	require.False(t, o.IsStreamless())
	require.Equal(t, map[string]any{"name": "car_7", ObjectIDAttribute: "7", "color": "blue"}, o.Attributes(nil))
}

func TestObjectFrames(t *testing.T) {
	o := NewObject("1", false)
	require.Empty(t, o.Update(bboxRecord(50, 50, 10, 10), 2))
	require.Empty(t, o.Update(map[string]any{"type": "person", "name": "bob"}, 0))
	require.Empty(t, o.Update(bboxRecord(60, 60, 10, 10), 3))
	require.Empty(t, o.Update(map[string]any{"name": "robert", "occluded": true}, 3))
	require.Equal(t, []int{2, 3}, o.FrameNumbers())
	require.True(t, o.FrameObjects[2].IsFrameLevel)
	require.False(t, o.HasShapes())
	require.True(t, o.IsStreamless())

	byFrame, err := o.Project(ShapeBBox, FrameSize{100, 100}, false, nil, "")
	require.NoError(t, err)
	require.Len(t, byFrame[0], 0)
	require.Len(t, byFrame[2], 1)
	require.Len(t, byFrame[3], 1)
	d2 := byFrame[2][0].(*labels.Detection)
	require.Equal(t, "person", d2.Label)
	require.Equal(t, "bob", d2.Attributes["name"])
	d3 := byFrame[3][0].(*labels.Detection)
	require.Equal(t, "robert", d3.Attributes["name"])
	require.Equal(t, true, d3.Attributes["occluded"])
	require.Equal(t, "1", d3.Attributes[ObjectIDAttribute])
}

func TestObjectKeepFrames(t *testing.T) {
	o := NewObject("1", false)
	for _, fn := range []int{1, 2, 3} {
		require.Empty(t, o.Update(bboxRecord(50, 50, 10, 10), fn))
	}
	k := o.KeepFrames([]int{2})
	require.Equal(t, []int{2}, k.FrameNumbers())
	require.Equal(t, []int{1, 2, 3}, o.FrameNumbers())

	// The copy does not alias the original
	k.FrameObjects[2].OtherAttrs["x"] = 1.0
	require.Empty(t, o.FrameObjects[2].OtherAttrs)
}

func TestObjectBadCoordinates(t *testing.T) {
	o := NewObject("2", false)
	ignored := o.Update(map[string]any{
		"object_data": map[string]any{
			"bbox":   []any{map[string]any{"val": []any{1.0, 2.0, 3.0, 4.0}}},
			"poly2d": []any{map[string]any{"val": []any{0.0, 0.0, "x", 10.0, 0.0}}},
		},
	}, 0)
	require.Equal(t, []any{"x"}, ignored)
	require.Len(t, o.Shapes(ShapeBBox).Shapes, 1)
	require.Equal(t, []float64{0, 0, 10, 0}, o.Shapes(ShapePolygon2D).Shapes[0].Coords)

	r := NewObjectRegistry(logs.NewTestingLog(t))
	r.Ingest(map[string]any{
		"2": map[string]any{"object_data": map[string]any{"bbox": []any{map[string]any{"val": "bad"}}}},
	}, "a", 0)
	require.Equal(t, 1, r.Len())
}

func TestObjectRegistryResolve(t *testing.T) {
	r := NewObjectRegistry(logs.NewTestingLog(t))
	r.Ingest(map[string]any{
		"plain":    bboxRecord(10, 10, 2, 2),
		"streamed": map[string]any{"stream": "cam", "type": "car"},
	}, "a", 0)
	for _, fn := range []int{1, 2, 3} {
		r.Ingest(map[string]any{
			"streamed": bboxRecord(50, 50, 10, 10),
			"tracked":  bboxRecord(50, 50, 10, 10),
		}, "a", fn)
	}
	r.Ingest(map[string]any{"other": bboxRecord(1, 1, 1, 1)}, "b", 0)
	require.Equal(t, 4, r.Len())

	// Streamless, sample-level: only top-level objects without a stream
	streamless := r.Resolve(StreamInfos{{LabelFileID: "a", IsSampleLevel: true}})
	require.Equal(t, 2, streamless.Len())
	plain := streamless.Get("a", "plain")
	require.NotNil(t, plain)
	require.Equal(t, r.Get("a", "plain"), plain)
	require.NotSame(t, r.Get("a", "plain"), plain)
	tracked := streamless.Get("a", "tracked")
	require.Equal(t, []int{1, 2, 3}, tracked.FrameNumbers())
	require.Nil(t, streamless.Get("a", "streamed"))
	require.Nil(t, streamless.Get("b", "other"))

	// Sample-level stream: everything is kept
	cam := NewStream("cam")
	sample := r.Resolve(StreamInfos{{Stream: cam, LabelFileID: "a", FrameNumbers: []int{1, 2, 3}, IsSampleLevel: true}})
	require.Equal(t, 3, sample.Len())
	require.Equal(t, []int{1, 2, 3}, sample.Get("a", "streamed").FrameNumbers())

	// Frame-level stream: frames are pruned, and objects with nothing left are omitted
	pruned := r.Resolve(StreamInfos{{Stream: cam, LabelFileID: "a", FrameNumbers: []int{2}}})
	require.Equal(t, []int{2}, pruned.Get("a", "streamed").FrameNumbers())
	require.Equal(t, []int{2}, pruned.Get("a", "tracked").FrameNumbers())
	require.Equal(t, []int{1, 2, 3}, r.Get("a", "tracked").FrameNumbers())
	require.NotNil(t, pruned.Get("a", "plain"))

	none := r.Resolve(StreamInfos{{Stream: cam, LabelFileID: "a", FrameNumbers: []int{9}}})
	require.Nil(t, none.Get("a", "tracked"))
	require.NotNil(t, none.Get("a", "plain"))

	// Multiple infos are unioned
	union := r.Resolve(StreamInfos{
		{Stream: cam, LabelFileID: "a", FrameNumbers: []int{1}},
		{Stream: cam, LabelFileID: "a", FrameNumbers: []int{3}},
	})
	require.Equal(t, []int{1, 3}, union.Get("a", "tracked").FrameNumbers())
}
