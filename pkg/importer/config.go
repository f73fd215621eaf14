package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stobias123/fiftyone/pkg/labels"
	"github.com/stobias123/fiftyone/pkg/openlabel"
)

const (
	DefaultDataPath   = "data/"
	DefaultLabelsPath = "labels.json"
)

// Config controls an OpenLABEL import
type Config struct {
	DatasetDir   string           `json:"datasetDir"`   // Root of the dataset. If empty, dataPath and/or labelsPath must be given
	DataPath     string           `json:"dataPath"`     // Media directory, or JSON manifest mapping file ids to paths. Relative to datasetDir.
	LabelsPath   string           `json:"labelsPath"`   // Label file, or directory of label files. Relative to datasetDir. May be a gs:// URL.
	LabelTypes   []string         `json:"labelTypes"`   // Subset of detections, segmentations, keypoints. Empty means all.
	UsePolylines bool             `json:"usePolylines"` // Represent segmentations as polylines instead of instance masks
	Skeleton     *labels.Skeleton `json:"skeleton"`
	SkeletonKey  string           `json:"skeletonKey"` // Name of the point attribute that holds each point's skeleton label
	Shuffle      bool             `json:"shuffle"`
	Seed         int64            `json:"seed"`
	MaxSamples   int              `json:"maxSamples"` // Zero means no limit
}

// LoadConfig reads a JSON config file
func LoadConfig(filename string) (*Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("Error parsing config file %v: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks the config, and returns the parsed label types
func (c *Config) Validate() ([]labels.LabelType, error) {
	if c.DatasetDir == "" && c.DataPath == "" && c.LabelsPath == "" {
		return nil, fmt.Errorf("%w: At least one of datasetDir, dataPath, and labelsPath must be provided", openlabel.ErrInvalidConfiguration)
	}
	if c.MaxSamples < 0 {
		return nil, fmt.Errorf("%w: maxSamples may not be negative", openlabel.ErrInvalidConfiguration)
	}
	return openlabel.ParseLabelTypes(c.LabelTypes)
}

// ResolvedDataPath returns the media location, applying defaults
func (c *Config) ResolvedDataPath() string {
	return resolvePath(c.DatasetDir, c.DataPath, DefaultDataPath)
}

// ResolvedLabelsPath returns the labels location, applying defaults
func (c *Config) ResolvedLabelsPath() string {
	return resolvePath(c.DatasetDir, c.LabelsPath, DefaultLabelsPath)
}

func resolvePath(datasetDir, p, def string) string {
	if p == "" {
		if datasetDir == "" {
			return ""
		}
		p = def
	}
	if strings.HasPrefix(p, "gs://") {
		return p
	}
	if filepath.IsAbs(p) || datasetDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(datasetDir, p)
}
