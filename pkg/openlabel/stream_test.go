package openlabel

import (
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/gen"
	"github.com/stretchr/testify/require"
)

func TestStreamUpdate(t *testing.T) {
	s := NewStream("cam")
	ok := s.Update(map[string]any{
		"type": "camera",
		"uri":  "img001.jpg",
		"stream_properties": map[string]any{
			"intrinsics_pinhole": map[string]any{
				"Width_Px":  640.0,
				"height_px": 480.0,
			},
			"height": "not a number",
		},
		"description": "front camera",
	}, 0)
	require.True(t, ok)
	require.Equal(t, CameraStreamType, s.Type)
	require.Equal(t, 640.0, s.Width)
	require.Equal(t, 480.0, s.Height)
	require.Equal(t, []string{"img001.jpg"}, s.URIs())
	require.Equal(t, map[string]any{"description": "front camera"}, s.OtherAttrs)
	size, ok := s.Dimensions()
	require.True(t, ok)
	require.Equal(t, FrameSize{Width: 640, Height: 480}, size)
}

func TestStreamRejectsNonCamera(t *testing.T) {
	s := NewStream("lidar")
	ok := s.Update(map[string]any{"type": "lidar", "uri": "scan.pcd", "description": "x"}, 0)
	require.False(t, ok)
	require.Equal(t, "", s.Type)
	require.Empty(t, s.URIs())
	require.Empty(t, s.OtherAttrs)

	// The frame override is still registered, but stays empty
	ok = s.Update(map[string]any{"type": "lidar", "uri": "scan.pcd"}, 3)
	require.False(t, ok)
	require.Len(t, s.FrameStreams, 1)
	require.Empty(t, s.FrameStreams[3].URIs())
	require.Empty(t, s.URIs())
}

func TestStreamRegistryRejectedFrameStream(t *testing.T) {
	r := NewStreamRegistry(logs.NewTestingLog(t))
	r.Ingest(map[string]any{
		"lidar": map[string]any{"type": "lidar", "uri": "scan.pcd"},
	}, "a", 5)
	s := r.Get("a", "lidar")
	require.NotNil(t, s)
	require.Equal(t, []int{5}, gen.SortedIntKeys(s.FrameStreams))
	require.Empty(t, r.URIs())

	// A rejected top-level stream is never created
	r.Ingest(map[string]any{
		"radar": map[string]any{"type": "radar", "uri": "scan.pcd"},
	}, "a", 0)
	require.Nil(t, r.Get("a", "radar"))
}

func TestStreamFrameNumbers(t *testing.T) {
	s := NewStream("cam")
	s.Update(map[string]any{"uri": "video.mp4"}, 0)
	s.Update(map[string]any{"uri": "frame_0002.jpg", "weather": "rain"}, 2)
	s.Update(map[string]any{"uri": "frame_0001.jpg"}, 1)
	s.Update(map[string]any{"uri": "frame_0002.jpg"}, 3)

	require.Equal(t, []string{"frame_0001.jpg", "frame_0002.jpg", "video.mp4"}, s.URIs())

	frames, sampleLevel := s.FrameNumbers("video.mp4")
	require.True(t, sampleLevel)
	require.Equal(t, []int{1, 2, 3}, frames)

	frames, sampleLevel = s.FrameNumbers("frame_0002.jpg")
	require.False(t, sampleLevel)
	require.Equal(t, []int{2, 3}, frames)

	frames, sampleLevel = s.FrameNumbers("unknown.jpg")
	require.False(t, sampleLevel)
	require.Empty(t, frames)

	// Overrides never nest
	require.Empty(t, s.FrameStreams[2].FrameStreams)
	require.Equal(t, "rain", s.FrameStreams[2].OtherAttrs["weather"])
}

func TestStreamRegistryIdempotent(t *testing.T) {
	r := NewStreamRegistry(logs.NewTestingLog(t))
	d := map[string]any{
		"cam": map[string]any{"type": "camera", "uri": "img001.jpg"},
	}
	r.Ingest(d, "labels/a", 0)
	s1 := r.Get("labels/a", "cam").Clone()
	uris1 := r.URIs()
	r.Ingest(d, "labels/a", 0)
	require.Equal(t, 1, r.Len())
	require.Equal(t, s1, r.Get("labels/a", "cam"))
	require.Equal(t, uris1, r.URIs())
	require.Len(t, r.Resolve("img001.jpg"), 1)
}

func TestStreamRegistryResolve(t *testing.T) {
	r := NewStreamRegistry(logs.NewTestingLog(t))
	require.Empty(t, r.Resolve("anything.jpg"))

	r.Ingest(map[string]any{
		"cam":   map[string]any{"type": "camera", "uri": "video.mp4"},
		"lidar": map[string]any{"type": "lidar", "uri": "video.mp4"},
		"bad":   "not an object",
	}, "a", 0)
	r.Ingest(map[string]any{
		"cam": map[string]any{"uri": "frame.jpg"},
	}, "b", 4)
	require.Equal(t, 2, r.Len())
	require.Nil(t, r.Get("a", "lidar"))

	infos := r.Resolve("video.mp4")
	require.Len(t, infos, 1)
	require.True(t, infos[0].IsSampleLevel)
	require.Equal(t, "a", infos[0].LabelFileID)

	infos = r.Resolve("frame.jpg")
	require.Len(t, infos, 1)
	require.False(t, infos[0].IsSampleLevel)
	require.Equal(t, "b", infos[0].LabelFileID)
	require.Equal(t, []int{4}, infos[0].FrameNumbers)

	// Unknown media falls back to the most recent label file
	infos = r.Resolve("other.jpg")
	require.Len(t, infos, 1)
	require.True(t, infos[0].IsStreamless())
	require.True(t, infos[0].IsSampleLevel)
	require.Equal(t, "b", infos[0].LabelFileID)

	infos = r.Resolve("other.jpg", "a", "b")
	require.Len(t, infos, 2)
	require.Equal(t, "a", infos[0].LabelFileID)
}

func TestStreamRegistryDimensions(t *testing.T) {
	r := NewStreamRegistry(logs.NewTestingLog(t))
	r.Ingest(map[string]any{
		"cam": map[string]any{"uri": "frame.jpg", "stream_properties": map[string]any{"width": 320.0, "height": 240.0}},
	}, "b", 2)
	r.Ingest(map[string]any{
		"cam": map[string]any{"uri": "video.mp4"},
	}, "a", 0)

	size, ok := r.Dimensions("frame.jpg")
	require.True(t, ok)
	require.Equal(t, FrameSize{Width: 320, Height: 240}, size)

	_, ok = r.Dimensions("video.mp4")
	require.False(t, ok)
}

func TestStreamInfosAttributes(t *testing.T) {
	s := NewStream("cam")
	s.Update(map[string]any{"uri": "video.mp4", "weather": "sunny", "site": "a"}, 0)
	s.Update(map[string]any{"weather": "rain"}, 2)
	infos := StreamInfos{
		{Stream: s, LabelFileID: "x", FrameNumbers: []int{2, 5}, IsSampleLevel: true},
		{LabelFileID: "y", FrameNumbers: []int{1, 2}},
	}
	require.Equal(t, []int{1, 2, 5}, infos.FrameNumbers())
	require.Equal(t, map[string]any{"weather": "sunny", "site": "a"}, infos.Attributes(0))
	require.Equal(t, map[string]any{"weather": "rain", "site": "a"}, infos.Attributes(2))
	require.Equal(t, map[string]any{}, infos.Attributes(1))
}
