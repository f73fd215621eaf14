package datasetdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/importer"
	"github.com/stobias123/fiftyone/pkg/labels"
	"gorm.io/gorm"
)

// Version is written into every dataset that we create
const Version = "1.0"

var ErrDatasetExists = errors.New("Dataset already exists")
var ErrDatasetNotFound = errors.New("Dataset not found")
var ErrSampleNotFound = errors.New("Sample not found")
var ErrFieldConflict = errors.New("Field conflicts with existing schema")

// DatasetDB persists dataset schemas and imported samples
type DatasetDB struct {
	Log logs.Log
	DB  *gorm.DB
}

// Open or create a dataset DB in an SQLite file
func NewDatasetDB(log logs.Log, dbFilename string) (*DatasetDB, error) {
	os.MkdirAll(filepath.Dir(dbFilename), 0770)
	return NewDatasetDBFromConfig(log, dbh.MakeSqliteConfig(dbFilename))
}

func NewDatasetDBFromConfig(log logs.Log, cfg dbh.DBConfig) (*DatasetDB, error) {
	db, err := dbh.OpenDB(log, cfg, Migrations(log), 0)
	if err != nil {
		return nil, fmt.Errorf("Failed to open database %v: %w", cfg.Database, err)
	}
	return &DatasetDB{
		Log: log,
		DB:  db,
	}, nil
}

func (d *DatasetDB) Close() {
	if db, err := d.DB.DB(); err == nil {
		db.Close()
	}
}

// NewDataset returns an unsaved dataset document
func NewDataset(name string, mediaType labels.MediaType) *Dataset {
	return &Dataset{
		Name:                 name,
		MediaType:            mediaType,
		SampleCollectionName: "samples." + name,
		Info:                 makeJSON(map[string]any{}),
		SampleFields:         makeJSON([]*SampleField{}),
		Version:              Version,
	}
}

// CreateDataset inserts a new dataset.
// Returns ErrDatasetExists if the name or sample collection name is already taken.
func (d *DatasetDB) CreateDataset(ds *Dataset) error {
	if ds.Name == "" {
		return fmt.Errorf("Dataset name may not be empty")
	}
	if ds.SampleCollectionName == "" {
		ds.SampleCollectionName = "samples." + ds.Name
	}
	if ds.Version == "" {
		ds.Version = Version
	}
	if ds.Info == nil {
		ds.Info = makeJSON(map[string]any{})
	}
	if ds.SampleFields == nil {
		ds.SampleFields = makeJSON([]*SampleField{})
	}
	if ds.MediaType == labels.MediaVideo && ds.FrameFields == nil {
		ds.FrameFields = makeJSON([]*SampleField{})
	}
	ds.CreatedAt = dbh.MakeIntTime(time.Now())

	return d.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Dataset{}).Where("name = ? OR sample_collection_name = ?", ds.Name, ds.SampleCollectionName).Count(&count).Error; err != nil {
			return err
		}
		if count != 0 {
			return fmt.Errorf("%w: '%v'", ErrDatasetExists, ds.Name)
		}
		if err := tx.Create(ds).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: '%v'", ErrDatasetExists, ds.Name)
			}
			return err
		}
		d.Log.Infof("Created %v dataset '%v'", ds.MediaType, ds.Name)
		return nil
	})
}

func (d *DatasetDB) GetDataset(name string) (*Dataset, error) {
	ds := Dataset{}
	if err := d.DB.Where("name = ?", name).First(&ds).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: '%v'", ErrDatasetNotFound, name)
		}
		return nil, err
	}
	return &ds, nil
}

// ListDatasets returns all datasets, sorted by name
func (d *DatasetDB) ListDatasets() ([]*Dataset, error) {
	all := []*Dataset{}
	if err := d.DB.Order("name").Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}

// DeleteDataset removes the dataset and all of its samples
func (d *DatasetDB) DeleteDataset(name string) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		ds := Dataset{}
		if err := tx.Where("name = ?", name).First(&ds).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: '%v'", ErrDatasetNotFound, name)
			}
			return err
		}
		if err := tx.Where("dataset_id = ?", ds.ID).Delete(&Sample{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&ds).Error; err != nil {
			return err
		}
		d.Log.Infof("Deleted dataset '%v'", name)
		return nil
	})
}

// MergeSchema adds fields to the dataset's sample schema (or frame schema, if frameLevel is true).
// Fields that already exist must match, otherwise ErrFieldConflict is returned and nothing is saved.
func (d *DatasetDB) MergeSchema(ds *Dataset, fields []labels.Field, frameLevel bool) error {
	if frameLevel && ds.MediaType != labels.MediaVideo {
		return fmt.Errorf("Only video datasets have frame fields")
	}
	existing := ds.sampleFields()
	if frameLevel {
		existing = ds.frameFields()
	}
	merged := append([]*SampleField{}, existing...)
	changed := false
	for _, f := range fields {
		var match *SampleField
		for _, e := range existing {
			if e.Name == f.Name {
				match = e
				break
			}
		}
		if match == nil {
			merged = append(merged, SampleFieldFromField(f))
			changed = true
		} else if !match.MatchesField(f) {
			return fmt.Errorf("%w: '%v' is %v, but %v was given", ErrFieldConflict, f.Name, describeField(match.ToField()), describeField(f))
		}
	}
	if !changed {
		return nil
	}
	if frameLevel {
		ds.FrameFields = makeJSON(merged)
		return d.DB.Model(ds).Update("frame_fields", ds.FrameFields).Error
	}
	ds.SampleFields = makeJSON(merged)
	return d.DB.Model(ds).Update("sample_fields", ds.SampleFields).Error
}

// AddSamples inserts samples into a dataset, all or nothing
func (d *DatasetDB) AddSamples(datasetID int64, samples []*Sample) error {
	if len(samples) == 0 {
		return nil
	}
	now := dbh.MakeIntTime(time.Now())
	return d.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Dataset{}).Where("id = ?", datasetID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: id %v", ErrDatasetNotFound, datasetID)
		}
		for _, s := range samples {
			s.ID = 0
			s.DatasetID = datasetID
			s.CreatedAt = now
			if err := tx.Create(s).Error; err != nil {
				return fmt.Errorf("Failed to add sample '%v': %w", s.FileID, err)
			}
		}
		return nil
	})
}

// ListSamples returns a page of samples, in insertion order.
// A limit of zero or less means no limit.
func (d *DatasetDB) ListSamples(datasetID int64, offset, limit int) ([]*Sample, error) {
	q := d.DB.Where("dataset_id = ?", datasetID).Order("id").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	samples := []*Sample{}
	if err := q.Find(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

func (d *DatasetDB) CountSamples(datasetID int64) (int64, error) {
	var count int64
	err := d.DB.Model(&Sample{}).Where("dataset_id = ?", datasetID).Count(&count).Error
	return count, err
}

func (d *DatasetDB) GetSample(datasetID, sampleID int64) (*Sample, error) {
	s := Sample{}
	if err := d.DB.Where("dataset_id = ? AND id = ?", datasetID, sampleID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %v", ErrSampleNotFound, sampleID)
		}
		return nil, err
	}
	return &s, nil
}

// NewSample returns an unsaved sample. frameLabels is nil for images.
func NewSample(fileID, path string, metadata *importer.SampleMetadata, sampleLabels *labels.Frame, frameLabels map[int]*labels.Frame) *Sample {
	s := &Sample{
		FileID:   fileID,
		Filepath: path,
		Labels:   makeJSON(sampleLabels),
	}
	if metadata != nil {
		s.Metadata = makeJSON(metadata)
	}
	if frameLabels != nil {
		s.FrameLabels = makeJSON(frameLabels)
	}
	return s
}

func describeField(f labels.Field) string {
	s := f.FType
	if f.Subfield != "" {
		s += "(" + f.Subfield + ")"
	}
	if f.EmbeddedDocType != "" {
		s += "(" + f.EmbeddedDocType + ")"
	}
	return s
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "violates unique constraint")
}
