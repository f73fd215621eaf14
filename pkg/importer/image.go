package importer

import (
	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/gen"
	"github.com/stobias123/fiftyone/pkg/labels"
)

// ImageImporter imports an OpenLABEL image dataset
type ImageImporter struct {
	*importer
}

// ImageSample is one imported image
type ImageSample struct {
	FileID   string
	Path     string
	Metadata *SampleMetadata
	Labels   *labels.Frame // Labels of all frames and streams that refer to this image

	labelTypes []labels.LabelType
}

// ScalarLabels returns the labels of the single imported label type.
// If more than one label type is imported, ok is false.
func (s *ImageSample) ScalarLabels() (value any, ok bool) {
	if len(s.labelTypes) != 1 {
		return nil, false
	}
	return s.Labels.Get(s.labelTypes[0]), true
}

func NewImageImporter(log logs.Log, cfg Config) (*ImageImporter, error) {
	im, err := newImporter(log, cfg, labels.MediaImage, ProbeImage)
	if err != nil {
		return nil, err
	}
	return &ImageImporter{im}, nil
}

// Next returns the next sample, or io.EOF.
// If a sample's media cannot be found, the error wraps ErrMediaNotFound, and iteration may continue.
func (im *ImageImporter) Next() (*ImageSample, error) {
	fileID, path, md, sample, frames, err := im.nextSample()
	if err != nil {
		return nil, err
	}

	// An image gets the labels of every frame that refers to it
	merged := sample
	merged.Merge(frames[0])
	for _, fn := range gen.SortedIntKeys(frames) {
		if fn != 0 {
			merged.Merge(frames[fn])
		}
	}

	return &ImageSample{
		FileID:     fileID,
		Path:       path,
		Metadata:   md,
		Labels:     merged,
		labelTypes: im.labelTypes,
	}, nil
}

// FieldSchema returns the sample fields produced by the import
func (im *ImageImporter) FieldSchema() []labels.Field {
	fields := []labels.Field{
		{Name: "filepath", FType: labels.FieldTypeString},
		{Name: "metadata", FType: labels.FieldTypeEmbedded, EmbeddedDocType: "ImageMetadata"},
	}
	return append(fields, im.labelFields()...)
}
