package labels

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointJSON(t *testing.T) {
	b, err := json.Marshal([]Point{{0.5, 0.25}, NaNPoint()})
	require.NoError(t, err)
	require.Equal(t, `[[0.5,0.25],[null,null]]`, string(b))

	var pts []Point
	require.NoError(t, json.Unmarshal(b, &pts))
	require.Equal(t, 0.5, pts[0].X)
	require.True(t, math.IsNaN(pts[1].X))
	require.True(t, pts[1].IsNaN())
}

func TestFrameMerge(t *testing.T) {
	a := NewFrame(map[string]any{"weather": "sunny"})
	a.Detections = []*Detection{{Label: "car"}}
	b := NewFrame(map[string]any{"weather": "rain", "time": "day"})
	b.Detections = []*Detection{{Label: "bus"}}
	b.AddSegmentationPolylines([]*Polyline{{Label: "road"}})
	a.Merge(b)
	require.Equal(t, map[string]any{"weather": "sunny", "time": "day"}, a.Attributes)
	require.Len(t, a.Detections, 2)
	require.Equal(t, "bus", a.Detections[1].LabelName())
	require.Equal(t, 1, a.NumSegmentations())
	require.Len(t, a.Get(TypeSegmentations), 1)
}

func TestRect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: 5, Width: 10, Height: 10}
	require.Equal(t, Rect{X: 5, Y: 5, Width: 5, Height: 5}, a.Intersection(b))
	require.Equal(t, 0, a.Intersection(Rect{X: 20, Y: 20, Width: 1, Height: 1}).Area())
	require.Equal(t, [4]float64{0.25, 0.5, 0.5, 0.25}, Rect{X: 1, Y: 2, Width: 2, Height: 1}.Relative(4, 4))
}
