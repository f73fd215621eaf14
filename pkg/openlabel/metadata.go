package openlabel

import (
	"strings"

	"github.com/stobias123/fiftyone/pkg/gen"
)

type SegmentationType int

const (
	SegmentationInstance SegmentationType = iota
	SegmentationSemantic
)

func (s SegmentationType) String() string {
	if s == SegmentationSemantic {
		return "semantic"
	}
	return "instance"
}

// Metadata keys whose values may name the media file that a label file describes
var fileIDKeys = []string{"file_id", "uri", "filepath"}

// Metadata is the "metadata" block of a label file
type Metadata struct {
	Raw              map[string]any
	SegmentationType SegmentationType
}

func NewMetadata(raw map[string]any) *Metadata {
	m := &Metadata{
		Raw: gen.CloneMap(raw),
	}
	if asString(raw["annotation_type"]) == "semantic segmentation" {
		m.SegmentationType = SegmentationSemantic
	}
	return m
}

// PotentialFileIDs returns the metadata values that may identify the labelled media
func (m *Metadata) PotentialFileIDs() []string {
	ids := []string{}
	for _, k := range gen.SortedKeys(m.Raw) {
		lk := strings.ToLower(k)
		for _, fk := range fileIDKeys {
			if lk == fk {
				if s := asString(m.Raw[k]); s != "" {
					ids = append(ids, s)
				}
			}
		}
	}
	return ids
}
