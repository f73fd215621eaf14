package importer

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/labels"
	"github.com/stobias123/fiftyone/pkg/openlabel"
	"github.com/stobias123/fiftyone/pkg/storage"
)

var ErrMediaNotFound = errors.New("Media not found")
var ErrNotSetup = errors.New("Importer has not been set up")

// Label container class names
const (
	ClassDetections = "Detections"
	ClassPolylines  = "Polylines"
	ClassKeypoints  = "Keypoints"
)

type prober func(filename string) (*SampleMetadata, error)

// importer holds the state that is common to image and video imports.
// All label files are parsed by Setup, before any samples are produced.
type importer struct {
	log        logs.Log
	cfg        Config
	mediaType  labels.MediaType
	labelTypes []labels.LabelType
	probe      prober

	annotations *openlabel.Annotations
	dataMap     DataMap
	fileIDs     []string
	next        int
}

func newImporter(log logs.Log, cfg Config, mediaType labels.MediaType, probe prober) (*importer, error) {
	labelTypes, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &importer{
		log:        log,
		cfg:        cfg,
		mediaType:  mediaType,
		labelTypes: labelTypes,
		probe:      probe,
	}, nil
}

// Setup loads the media map, and parses every label file
func (im *importer) Setup() error {
	dataMap, err := LoadDataMap(im.cfg.ResolvedDataPath())
	if err != nil {
		return err
	}
	src, err := DiscoverLabels(im.log, im.cfg.ResolvedLabelsPath())
	if err != nil {
		return err
	}

	annotations := openlabel.NewAnnotations(im.log, im.mediaType)
	candidates := []string{}
	for _, lf := range src.Files {
		raw, err := storage.ReadFile(src.Storage, lf.Name)
		if err != nil {
			return fmt.Errorf("Failed to read label file %v: %w", lf.Name, err)
		}
		ids, err := annotations.ParseLabels(lf.ID, raw)
		if err != nil {
			return err
		}
		candidates = append(candidates, ids...)
	}

	fileIDs := ValidateFileIDs(candidates, dataMap, annotations.Streams.URIs())
	if im.cfg.Shuffle {
		seed := im.cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(fileIDs), func(i, j int) {
			fileIDs[i], fileIDs[j] = fileIDs[j], fileIDs[i]
		})
	}
	if im.cfg.MaxSamples > 0 && len(fileIDs) > im.cfg.MaxSamples {
		fileIDs = fileIDs[:im.cfg.MaxSamples]
	}

	im.log.Infof("Parsed %v label files. %v media files, %v samples", len(src.Files), len(dataMap), len(fileIDs))

	im.annotations = annotations
	im.dataMap = dataMap
	im.fileIDs = fileIDs
	im.next = 0
	return nil
}

// Len returns the number of samples. Only valid after Setup.
func (im *importer) Len() int {
	return len(im.fileIDs)
}

// FileIDs returns the ids of the samples, in iteration order
func (im *importer) FileIDs() []string {
	return slices.Clone(im.fileIDs)
}

// Rewind restarts iteration from the first sample
func (im *importer) Rewind() {
	im.next = 0
}

// LabelTypes returns the label types being imported
func (im *importer) LabelTypes() []labels.LabelType {
	return slices.Clone(im.labelTypes)
}

// Annotations returns the parsed label files. Only valid after Setup.
func (im *importer) Annotations() *openlabel.Annotations {
	return im.annotations
}

// LabelClass returns the label container class produced for a label type
func (im *importer) LabelClass(t labels.LabelType) string {
	switch t {
	case labels.TypeDetections:
		return ClassDetections
	case labels.TypeSegmentations:
		if im.cfg.UsePolylines {
			return ClassPolylines
		}
		return ClassDetections
	case labels.TypeKeypoints:
		return ClassKeypoints
	}
	return ""
}

// LabelSchema returns the label container class of every imported label type
func (im *importer) LabelSchema() map[labels.LabelType]string {
	schema := map[labels.LabelType]string{}
	for _, t := range im.labelTypes {
		schema[t] = im.LabelClass(t)
	}
	return schema
}

// ScalarLabelClass returns the single label class, if exactly one label type is imported
func (im *importer) ScalarLabelClass() (string, bool) {
	if len(im.labelTypes) != 1 {
		return "", false
	}
	return im.LabelClass(im.labelTypes[0]), true
}

func (im *importer) labelFields() []labels.Field {
	fields := []labels.Field{}
	for _, t := range im.labelTypes {
		fields = append(fields, labels.Field{
			Name:            string(t),
			FType:           labels.FieldTypeEmbedded,
			EmbeddedDocType: im.LabelClass(t),
		})
	}
	return fields
}

func (im *importer) convertOptions() openlabel.ConvertOptions {
	return openlabel.ConvertOptions{
		LabelTypes:   im.labelTypes,
		UsePolylines: im.cfg.UsePolylines,
		Skeleton:     im.cfg.Skeleton,
		SkeletonKey:  im.cfg.SkeletonKey,
	}
}

// nextSample advances the iterator, and finds the media, metadata and labels of the next sample
func (im *importer) nextSample() (fileID, path string, md *SampleMetadata, sample *labels.Frame, frames map[int]*labels.Frame, err error) {
	if im.annotations == nil {
		err = ErrNotSetup
		return
	}
	if im.next >= len(im.fileIDs) {
		err = io.EOF
		return
	}
	fileID = im.fileIDs[im.next]
	im.next++

	var ok bool
	path, ok = im.dataMap.Lookup(fileID)
	if !ok {
		err = fmt.Errorf("%w: %v", ErrMediaNotFound, fileID)
		return
	}

	size, ok := im.annotations.Dimensions(fileID)
	if ok {
		md = &SampleMetadata{Width: int(size.Width), Height: int(size.Height)}
	} else {
		md, err = im.probe(path)
		if err != nil {
			return
		}
		size = openlabel.FrameSize{Width: float64(md.Width), Height: float64(md.Height)}
	}

	sample, frames, err = im.annotations.Labels(fileID, size, im.convertOptions())
	if err != nil {
		err = fmt.Errorf("Failed to convert labels of %v: %w", fileID, err)
	}
	return
}
