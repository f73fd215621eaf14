package labels

// Segmentations holds either polylines or instance-mask detections,
// depending on how the import was configured.
type Segmentations struct {
	Polylines  []*Polyline  `json:"polylines,omitempty"`
	Detections []*Detection `json:"detections,omitempty"`
}

// Frame is the set of labels for one image, one video frame, or one whole video,
// along with stream attributes that apply to it.
type Frame struct {
	Attributes    map[string]any `json:"attributes,omitempty"`
	Detections    []*Detection   `json:"detections,omitempty"`
	Keypoints     []*Keypoint    `json:"keypoints,omitempty"`
	Segmentations *Segmentations `json:"segmentations,omitempty"`
}

func NewFrame(attributes map[string]any) *Frame {
	if attributes == nil {
		attributes = map[string]any{}
	}
	return &Frame{
		Attributes: attributes,
	}
}

func (f *Frame) NumSegmentations() int {
	if f.Segmentations == nil {
		return 0
	}
	return len(f.Segmentations.Polylines) + len(f.Segmentations.Detections)
}

func (f *Frame) AddSegmentationPolylines(p []*Polyline) {
	if f.Segmentations == nil {
		f.Segmentations = &Segmentations{}
	}
	f.Segmentations.Polylines = append(f.Segmentations.Polylines, p...)
}

func (f *Frame) AddSegmentationDetections(d []*Detection) {
	if f.Segmentations == nil {
		f.Segmentations = &Segmentations{}
	}
	f.Segmentations.Detections = append(f.Segmentations.Detections, d...)
}

// Merge appends the labels of 'other' to f.
// Attributes of 'other' are only copied if f does not already have them.
func (f *Frame) Merge(other *Frame) {
	if other == nil {
		return
	}
	if f.Attributes == nil {
		f.Attributes = map[string]any{}
	}
	for k, v := range other.Attributes {
		if _, ok := f.Attributes[k]; !ok {
			f.Attributes[k] = v
		}
	}
	f.Detections = append(f.Detections, other.Detections...)
	f.Keypoints = append(f.Keypoints, other.Keypoints...)
	if other.Segmentations != nil {
		f.AddSegmentationPolylines(other.Segmentations.Polylines)
		f.AddSegmentationDetections(other.Segmentations.Detections)
	}
}

// Get returns the labels of a single type. Segmentations are returned as either
// []*Polyline or []*Detection, whichever is populated.
func (f *Frame) Get(t LabelType) any {
	switch t {
	case TypeDetections:
		return f.Detections
	case TypeKeypoints:
		return f.Keypoints
	case TypeSegmentations:
		if f.Segmentations == nil {
			return nil
		}
		if len(f.Segmentations.Polylines) != 0 {
			return f.Segmentations.Polylines
		}
		return f.Segmentations.Detections
	}
	return nil
}
