package importer

import (
	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/labels"
)

// VideoImporter imports an OpenLABEL video dataset
type VideoImporter struct {
	*importer
}

// VideoSample is one imported video
type VideoSample struct {
	FileID       string
	Path         string
	Metadata     *SampleMetadata
	SampleLabels *labels.Frame         // Stream attributes that apply to the whole video
	FrameLabels  map[int]*labels.Frame // Keyed by frame number, starting at 1
}

func NewVideoImporter(log logs.Log, cfg Config) (*VideoImporter, error) {
	im, err := newImporter(log, cfg, labels.MediaVideo, ProbeVideo)
	if err != nil {
		return nil, err
	}
	return &VideoImporter{im}, nil
}

// Next returns the next sample, or io.EOF.
// If a sample's media cannot be found, the error wraps ErrMediaNotFound, and iteration may continue.
func (im *VideoImporter) Next() (*VideoSample, error) {
	fileID, path, md, sample, frames, err := im.nextSample()
	if err != nil {
		return nil, err
	}
	// Top-level shapes have no frame number, so they don't belong to any frame of a video
	delete(frames, 0)
	return &VideoSample{
		FileID:       fileID,
		Path:         path,
		Metadata:     md,
		SampleLabels: sample,
		FrameLabels:  frames,
	}, nil
}

// FieldSchema returns the sample fields and frame fields produced by the import
func (im *VideoImporter) FieldSchema() (sampleFields, frameFields []labels.Field) {
	sampleFields = []labels.Field{
		{Name: "filepath", FType: labels.FieldTypeString},
		{Name: "metadata", FType: labels.FieldTypeEmbedded, EmbeddedDocType: "VideoMetadata"},
		{Name: "frames", FType: labels.FieldTypeFrames},
	}
	frameFields = []labels.Field{
		{Name: "frame_number", FType: labels.FieldTypeInt},
	}
	frameFields = append(frameFields, im.labelFields()...)
	return
}
