package labels

// LabelType is one of the label kinds that an importer can produce
type LabelType string

const (
	TypeDetections    LabelType = "detections"
	TypeSegmentations LabelType = "segmentations"
	TypeKeypoints     LabelType = "keypoints"
)

// SupportedTypes is the complete list of label types, in canonical order
var SupportedTypes = []LabelType{TypeDetections, TypeSegmentations, TypeKeypoints}

// Label is implemented by Detection, Polyline and Keypoint
type Label interface {
	LabelName() string
}

// Detection is an axis-aligned box, in coordinates relative to the frame size (0..1).
// Mask, if present, covers exactly the bounding box.
type Detection struct {
	Label       string         `json:"label"`
	BoundingBox [4]float64     `json:"bounding_box"` // [x, y, width, height]
	Mask        *Mask          `json:"mask,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// Polyline is a set of point rings, in relative coordinates
type Polyline struct {
	Label      string         `json:"label"`
	Points     [][]Point      `json:"points"`
	Filled     bool           `json:"filled"`
	Closed     bool           `json:"closed"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Keypoint is a list of points, in relative coordinates.
// Missing skeleton points have NaN coordinates.
type Keypoint struct {
	Label      string         `json:"label"`
	Points     []Point        `json:"points"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (d *Detection) LabelName() string { return d.Label }
func (p *Polyline) LabelName() string  { return p.Label }
func (k *Keypoint) LabelName() string  { return k.Label }

// Skeleton defines the order (and connectivity) of keypoints
type Skeleton struct {
	Labels []string `json:"labels"`
	Edges  [][]int  `json:"edges,omitempty"`
}

// MediaType is the kind of media in a dataset
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Field describes one field of a dataset schema
type Field struct {
	Name            string `json:"name"`
	FType           string `json:"ftype"`
	Subfield        string `json:"subfield,omitempty"`
	EmbeddedDocType string `json:"embeddedDocType,omitempty"`
}

// Field types of the dataset schema
const (
	FieldTypeString   = "StringField"
	FieldTypeInt      = "IntField"
	FieldTypeFloat    = "FloatField"
	FieldTypeBool     = "BooleanField"
	FieldTypeList     = "ListField"
	FieldTypeDict     = "DictField"
	FieldTypeEmbedded = "EmbeddedDocumentField"
	FieldTypeFrames   = "FramesField"
)
