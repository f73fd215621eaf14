package datasetdb

import (
	"errors"
	"fmt"
	"io"

	"github.com/stobias123/fiftyone/pkg/importer"
	"github.com/stobias123/fiftyone/pkg/labels"
)

const importBatchSize = 100

type ImportOptions struct {
	Dataset    string           `json:"dataset"` // Created if it doesn't exist yet
	MediaType  labels.MediaType `json:"mediaType"`
	Persistent bool             `json:"persistent"`
	Importer   importer.Config  `json:"importer"`
}

type ImportResult struct {
	Dataset    *Dataset `json:"dataset"`
	NumSamples int      `json:"numSamples"`
	NumSkipped int      `json:"numSkipped"` // Samples whose media could not be found
}

// importSource is a prepared importer, which yields samples ready to be stored
type importSource struct {
	sampleFields []labels.Field
	frameFields  []labels.Field
	next         func() (*Sample, error)
}

// openImportSource validates the importer config and parses every label file
func openImportSource(d *DatasetDB, opts ImportOptions) (*importSource, error) {
	switch opts.MediaType {
	case labels.MediaImage:
		im, err := importer.NewImageImporter(d.Log, opts.Importer)
		if err != nil {
			return nil, err
		}
		if err := im.Setup(); err != nil {
			return nil, err
		}
		return &importSource{
			sampleFields: im.FieldSchema(),
			next: func() (*Sample, error) {
				s, err := im.Next()
				if err != nil {
					return nil, err
				}
				return NewSample(s.FileID, s.Path, s.Metadata, s.Labels, nil), nil
			},
		}, nil
	case labels.MediaVideo:
		im, err := importer.NewVideoImporter(d.Log, opts.Importer)
		if err != nil {
			return nil, err
		}
		if err := im.Setup(); err != nil {
			return nil, err
		}
		src := &importSource{
			next: func() (*Sample, error) {
				s, err := im.Next()
				if err != nil {
					return nil, err
				}
				return NewSample(s.FileID, s.Path, s.Metadata, s.SampleLabels, s.FrameLabels), nil
			},
		}
		src.sampleFields, src.frameFields = im.FieldSchema()
		return src, nil
	}
	return nil, fmt.Errorf("Unsupported media type '%v'", opts.MediaType)
}

// Import runs an OpenLABEL import, and adds the samples to a dataset.
// The label fields of the import are merged into the dataset's schema.
// The importer is set up before the dataset is touched, so a bad config or label file
// leaves no trace. A dataset created by a failed import is deleted again.
func (d *DatasetDB) Import(opts ImportOptions) (result *ImportResult, err error) {
	src, err := openImportSource(d, opts)
	if err != nil {
		return nil, err
	}

	ds, err := d.GetDataset(opts.Dataset)
	if errors.Is(err, ErrDatasetNotFound) {
		ds = NewDataset(opts.Dataset, opts.MediaType)
		ds.Persistent = opts.Persistent
		ds.Info.Data["importer"] = "openlabel"
		if err := d.CreateDataset(ds); err != nil {
			return nil, err
		}
		defer func() {
			if err != nil {
				if delErr := d.DeleteDataset(ds.Name); delErr != nil {
					d.Log.Errorf("Failed to remove dataset '%v' after failed import: %v", ds.Name, delErr)
				}
			}
		}()
	} else if err != nil {
		return nil, err
	} else if ds.MediaType != opts.MediaType {
		return nil, fmt.Errorf("Dataset '%v' is a %v dataset, but a %v import was requested", ds.Name, ds.MediaType, opts.MediaType)
	}

	if err := d.MergeSchema(ds, src.sampleFields, false); err != nil {
		return nil, err
	}
	if len(src.frameFields) != 0 {
		if err := d.MergeSchema(ds, src.frameFields, true); err != nil {
			return nil, err
		}
	}

	result = &ImportResult{
		Dataset: ds,
	}
	batch := []*Sample{}
	flush := func() error {
		if err := d.AddSamples(ds.ID, batch); err != nil {
			return err
		}
		result.NumSamples += len(batch)
		batch = batch[:0]
		return nil
	}
	for {
		s, err := src.next()
		if errors.Is(err, io.EOF) {
			break
		} else if errors.Is(err, importer.ErrMediaNotFound) {
			d.Log.Warnf("Skipping sample: %v", err)
			result.NumSkipped++
			continue
		} else if err != nil {
			return nil, err
		}
		batch = append(batch, s)
		if len(batch) >= importBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	d.Log.Infof("Imported %v samples into '%v' (%v skipped)", result.NumSamples, ds.Name, result.NumSkipped)
	return result, nil
}
