package openlabel

import (
	"slices"

	"github.com/stobias123/fiftyone/pkg/gen"
)

// StreamInfo binds a stream (or no stream) to a requested media URI
type StreamInfo struct {
	Stream        *Stream // nil if the media was not matched to any stream
	LabelFileID   string
	FrameNumbers  []int
	IsSampleLevel bool
}

// IsStreamless is true when the media was not matched to any declared stream
func (i *StreamInfo) IsStreamless() bool {
	return i.Stream == nil
}

// Attributes returns the stream attributes that apply to a frame.
// Frame-level overrides take precedence over the stream's top-level attributes.
func (i *StreamInfo) Attributes(frameNumber int) map[string]any {
	if i.Stream == nil {
		return map[string]any{}
	}
	attrs := gen.CloneMap(i.Stream.OtherAttrs)
	if frameNumber != 0 {
		if fs := i.Stream.FrameStreams[frameNumber]; fs != nil {
			for k, v := range fs.OtherAttrs {
				attrs[k] = gen.CloneValue(v)
			}
		}
	}
	return attrs
}

// StreamInfos is the set of streams that apply to one media URI
type StreamInfos []*StreamInfo

// FrameNumbers returns the sorted union of the frame numbers of all infos
func (s StreamInfos) FrameNumbers() []int {
	all := []int{}
	for _, info := range s {
		all = append(all, info.FrameNumbers...)
	}
	slices.Sort(all)
	return slices.Compact(all)
}

// Attributes returns the combined stream attributes for a frame.
// Frame number 0 means the whole sample, which only draws from sample-level infos.
func (s StreamInfos) Attributes(frameNumber int) map[string]any {
	attrs := map[string]any{}
	for _, info := range s {
		applies := false
		if frameNumber == 0 {
			applies = info.IsSampleLevel
		} else {
			applies = slices.Contains(info.FrameNumbers, frameNumber)
		}
		if applies {
			for k, v := range info.Attributes(frameNumber) {
				attrs[k] = v
			}
		}
	}
	return attrs
}
