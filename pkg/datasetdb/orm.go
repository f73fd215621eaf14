package datasetdb

import (
	"github.com/cyclopcam/dbh"
	"github.com/stobias123/fiftyone/pkg/importer"
	"github.com/stobias123/fiftyone/pkg/labels"
)

// BaseModel is our base class for a GORM model.
// The default GORM Model uses int, but we prefer int64
type BaseModel struct {
	ID int64 `gorm:"primaryKey" json:"id"`
}

// Dataset is the persisted document of one dataset and its schema
type Dataset struct {
	BaseModel
	Name                 string                         `json:"name"`
	MediaType            labels.MediaType               `json:"mediaType"`
	SampleCollectionName string                         `json:"sampleCollectionName"`
	Persistent           bool                           `json:"persistent"`
	Info                 *dbh.JSONField[map[string]any] `json:"info"`
	SampleFields         *dbh.JSONField[[]*SampleField] `json:"sampleFields"`
	FrameFields          *dbh.JSONField[[]*SampleField] `json:"frameFields" gorm:"default:null"` // Only for video datasets
	DefaultTargets       *dbh.JSONField[map[string]any] `json:"defaultTargets" gorm:"default:null"`
	LabelTargets         *dbh.JSONField[map[string]any] `json:"labelTargets" gorm:"default:null"`
	Version              string                         `json:"version"`
	CreatedAt            dbh.IntTime                    `json:"createdAt"`
}

// A single imported sample. Labels is the JSON of a labels.Frame.
type Sample struct {
	BaseModel
	DatasetID   int64                                    `json:"datasetID"`
	FileID      string                                   `json:"fileID"`
	Filepath    string                                   `json:"filepath"`
	Metadata    *dbh.JSONField[*importer.SampleMetadata] `json:"metadata" gorm:"default:null"`
	Labels      *dbh.JSONField[*labels.Frame]            `json:"labels" gorm:"default:null"`
	FrameLabels *dbh.JSONField[map[int]*labels.Frame]    `json:"frameLabels" gorm:"default:null"` // Only for video samples
	CreatedAt   dbh.IntTime                              `json:"createdAt"`
}

func makeJSON[T any](v T) *dbh.JSONField[T] {
	var f dbh.JSONField[T]
	f.Data = v
	return &f
}

func (d *Dataset) sampleFields() []*SampleField {
	if d.SampleFields == nil {
		return nil
	}
	return d.SampleFields.Data
}

func (d *Dataset) frameFields() []*SampleField {
	if d.FrameFields == nil {
		return nil
	}
	return d.FrameFields.Data
}

// Field returns the sample-level schema entry with the given name
func (d *Dataset) Field(name string) *SampleField {
	for _, f := range d.sampleFields() {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FrameField returns the frame-level schema entry with the given name
func (d *Dataset) FrameField(name string) *SampleField {
	for _, f := range d.frameFields() {
		if f.Name == name {
			return f
		}
	}
	return nil
}
