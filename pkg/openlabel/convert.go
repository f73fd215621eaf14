package openlabel

import (
	"slices"

	"github.com/stobias123/fiftyone/pkg/labels"
)

// ConvertOptions control how objects are turned into labels
type ConvertOptions struct {
	LabelTypes   []labels.LabelType
	UsePolylines bool // Produce segmentations as polylines instead of instance masks
	Skeleton     *labels.Skeleton
	SkeletonKey  string
}

// LabelConverter turns resolved objects into labels
type LabelConverter struct {
	Objects *ObjectRegistry
}

func NewLabelConverter(objects *ObjectRegistry) *LabelConverter {
	return &LabelConverter{
		Objects: objects,
	}
}

// Convert produces the labels of every object.
//
// The sample frame holds the sample-level stream attributes. The frames map holds the
// labels of each frame, plus the labels of top-level shapes under frame number 0.
func (c *LabelConverter) Convert(size FrameSize, opts ConvertOptions, infos StreamInfos) (sample *labels.Frame, frames map[int]*labels.Frame, err error) {
	frames = map[int]*labels.Frame{}
	for _, fn := range infos.FrameNumbers() {
		frames[fn] = labels.NewFrame(infos.Attributes(fn))
	}
	frame := func(fn int) *labels.Frame {
		f := frames[fn]
		if f == nil {
			if fn == 0 {
				f = labels.NewFrame(nil)
			} else {
				f = labels.NewFrame(infos.Attributes(fn))
			}
			frames[fn] = f
		}
		return f
	}

	for _, obj := range c.Objects.All() {
		if slices.Contains(opts.LabelTypes, labels.TypeDetections) {
			byFrame, err := obj.Project(ShapeBBox, size, false, nil, "")
			if err != nil {
				return nil, nil, err
			}
			for fn, ls := range byFrame {
				if len(ls) != 0 {
					f := frame(fn)
					for _, l := range ls {
						f.Detections = append(f.Detections, l.(*labels.Detection))
					}
				}
			}
		}

		if slices.Contains(opts.LabelTypes, labels.TypeKeypoints) {
			byFrame, err := obj.Project(ShapePoint, size, true, opts.Skeleton, opts.SkeletonKey)
			if err != nil {
				return nil, nil, err
			}
			for fn, ls := range byFrame {
				if len(ls) != 0 {
					f := frame(fn)
					for _, l := range ls {
						f.Keypoints = append(f.Keypoints, l.(*labels.Keypoint))
					}
				}
			}
		}

		if slices.Contains(opts.LabelTypes, labels.TypeSegmentations) {
			byFrame, err := obj.Project(ShapePolygon2D, size, false, nil, "")
			if err != nil {
				return nil, nil, err
			}
			for fn, ls := range byFrame {
				if len(ls) == 0 {
					continue
				}
				polys := make([]*labels.Polyline, 0, len(ls))
				for _, l := range ls {
					polys = append(polys, l.(*labels.Polyline))
				}
				if opts.UsePolylines {
					frame(fn).AddSegmentationPolylines(polys)
				} else if dets := labels.PolylinesToDetections(polys, int(size.Width), int(size.Height)); len(dets) != 0 {
					frame(fn).AddSegmentationDetections(dets)
				}
			}
		}
	}

	sample = labels.NewFrame(infos.Attributes(0))
	return sample, frames, nil
}
