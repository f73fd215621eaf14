package openlabel

import (
	"slices"
	"strings"

	"github.com/stobias123/fiftyone/pkg/gen"
)

// The only stream type that we model
const CameraStreamType = "camera"

var (
	heightKeys = []string{"height", "height_px"}
	widthKeys  = []string{"width", "width_px"}
	uriKeys    = []string{"uri"}
)

// Stream is a named media channel declared in a label file.
// Frame-level overrides are stored in FrameStreams, keyed by frame number.
// Overrides are only one level deep.
type Stream struct {
	Name         string
	Type         string
	Properties   map[string]any
	Height       float64 // Zero if unknown
	Width        float64 // Zero if unknown
	OtherAttrs   map[string]any
	FrameStreams map[int]*Stream

	uris []string // sorted and unique
}

func NewStream(name string) *Stream {
	return &Stream{
		Name:         name,
		OtherAttrs:   map[string]any{},
		FrameStreams: map[int]*Stream{},
	}
}

// Update merges raw stream information into the stream.
// If frameNumber is not zero, the information is applied to that frame's override instead.
// Returns false if the update was rejected because the stream is not a camera.
// A rejected frame update still registers the (possibly empty) frame override.
func (s *Stream) Update(raw map[string]any, frameNumber int) bool {
	if frameNumber != 0 {
		fs := s.FrameStreams[frameNumber]
		if fs == nil {
			fs = NewStream(s.Name)
		}
		s.FrameStreams[frameNumber] = fs
		return fs.Update(raw, 0)
	}

	streamType := ""
	properties := map[string]any(nil)
	uris := []string{}
	other := map[string]any{}
	for k, v := range raw {
		switch {
		case k == "type":
			streamType = asString(v)
		case k == "stream_properties":
			properties = asMap(v)
		case slices.Contains(uriKeys, k):
			if u := asString(v); u != "" {
				uris = append(uris, u)
			}
		default:
			other[k] = gen.CloneValue(v)
		}
	}

	if streamType != "" {
		if streamType != CameraStreamType {
			return false
		}
		s.Type = streamType
	}
	if len(properties) != 0 {
		s.Properties = gen.CloneMap(properties)
		s.scanProperties(properties)
	}
	if len(uris) != 0 {
		s.uris = gen.UniqueSorted(append(s.uris, uris...))
	}
	for k, v := range other {
		s.OtherAttrs[k] = v
	}
	return true
}

// scanProperties looks for numeric width/height values anywhere inside the stream properties
func (s *Stream) scanProperties(props map[string]any) {
	for k, v := range props {
		if f, ok := asNumber(v); ok {
			key := strings.ToLower(k)
			if slices.Contains(heightKeys, key) {
				s.Height = f
			}
			if slices.Contains(widthKeys, key) {
				s.Width = f
			}
		} else if m := asMap(v); m != nil {
			s.scanProperties(m)
		}
	}
}

// URIs returns every URI exposed by this stream, including those of frame overrides
func (s *Stream) URIs() []string {
	all := slices.Clone(s.uris)
	for _, fs := range s.FrameStreams {
		all = append(all, fs.URIs()...)
	}
	return gen.UniqueSorted(all)
}

// FrameNumbers returns the frames of this stream that apply to uri.
// If uri is one of the stream's own URIs, then the whole stream applies to it, so all
// frame numbers are returned and isSampleLevel is true.
func (s *Stream) FrameNumbers(uri string) (frameNumbers []int, isSampleLevel bool) {
	frameNumbers = []int{}
	if slices.Contains(s.uris, uri) {
		return gen.SortedIntKeys(s.FrameStreams), true
	}
	for _, fn := range gen.SortedIntKeys(s.FrameStreams) {
		if slices.Contains(s.FrameStreams[fn].uris, uri) {
			frameNumbers = append(frameNumbers, fn)
		}
	}
	return frameNumbers, false
}

// Dimensions returns the declared frame size, if both width and height are known
func (s *Stream) Dimensions() (FrameSize, bool) {
	if s.Width > 0 && s.Height > 0 {
		return FrameSize{Width: s.Width, Height: s.Height}, true
	}
	return FrameSize{}, false
}

func (s *Stream) Clone() *Stream {
	c := &Stream{
		Name:         s.Name,
		Type:         s.Type,
		Height:       s.Height,
		Width:        s.Width,
		OtherAttrs:   gen.CloneMap(s.OtherAttrs),
		FrameStreams: make(map[int]*Stream, len(s.FrameStreams)),
		uris:         slices.Clone(s.uris),
	}
	if s.Properties != nil {
		c.Properties = gen.CloneMap(s.Properties)
	}
	for fn, fs := range s.FrameStreams {
		c.FrameStreams[fn] = fs.Clone()
	}
	return c
}
