package openlabel

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/gen"
	"github.com/stobias123/fiftyone/pkg/labels"
)

// Annotations accumulates the contents of many OpenLABEL label files, and
// produces the labels for individual media files.
// All label files must be parsed before any labels are requested.
// Annotations is not safe for concurrent use while parsing.
type Annotations struct {
	MediaType labels.MediaType
	Streams   *StreamRegistry
	Objects   *ObjectRegistry
	Metadata  map[string]*Metadata // Keyed by label file id

	log          logs.Log
	labelFileIDs []string            // in parse order
	fileIDs      map[string][]string // label file id -> ids that name its media, excluding stream URIs
}

func NewAnnotations(log logs.Log, mediaType labels.MediaType) *Annotations {
	return &Annotations{
		MediaType: mediaType,
		Streams:   NewStreamRegistry(log),
		Objects:   NewObjectRegistry(log),
		Metadata:  map[string]*Metadata{},
		log:       log,
		fileIDs:   map[string][]string{},
	}
}

// LabelFileIDs returns the ids of all parsed label files, in the order they were parsed
func (a *Annotations) LabelFileIDs() []string {
	return slices.Clone(a.labelFileIDs)
}

// ParseLabels ingests one label file.
// It returns the ids of media files that the labels may refer to.
func (a *Annotations) ParseLabels(labelFileID string, data []byte) ([]string, error) {
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("Error parsing label file %v: %w", labelFileID, err)
	}
	return a.ParseDocument(labelFileID, doc)
}

// ParseDocument ingests one decoded label file
func (a *Annotations) ParseDocument(labelFileID string, doc map[string]any) ([]string, error) {
	root := asMap(doc["openlabel"])

	metadata := NewMetadata(asMap(root["metadata"]))
	a.Metadata[labelFileID] = metadata
	if metadata.SegmentationType == SegmentationSemantic {
		a.log.Debugf("Label file %v contains semantic segmentations", labelFileID)
	}
	ids := append([]string{labelFileID}, metadata.PotentialFileIDs()...)
	if !slices.Contains(a.labelFileIDs, labelFileID) {
		a.labelFileIDs = append(a.labelFileIDs, labelFileID)
	}
	a.fileIDs[labelFileID] = gen.UniqueSorted(append(a.fileIDs[labelFileID], ids...))

	a.Streams.Ingest(asMap(root["streams"]), labelFileID, 0)
	a.Objects.Ingest(asMap(root["objects"]), labelFileID, 0)

	frames := asMap(root["frames"])
	for _, idx := range gen.SortedKeys(frames) {
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("Invalid frame index '%v' in %v", idx, labelFileID)
		}
		frameNumber := i + 1
		frame := asMap(frames[idx])
		a.Objects.Ingest(asMap(frame["objects"]), labelFileID, frameNumber)
		a.Streams.Ingest(asMap(asMap(frame["frame_properties"])["streams"]), labelFileID, frameNumber)
	}

	a.log.Infof("Parsed label file %v (%v frames)", labelFileID, len(frames))

	return append(ids, a.Streams.URIs()...), nil
}

// Dimensions returns the frame size declared for uri by its streams
func (a *Annotations) Dimensions(uri string) (FrameSize, bool) {
	return a.Streams.Dimensions(uri)
}

// Labels produces the labels for one media file.
// See LabelConverter.Convert for the meaning of the return values.
func (a *Annotations) Labels(uri string, size FrameSize, opts ConvertOptions) (*labels.Frame, map[int]*labels.Frame, error) {
	infos := a.Streams.Resolve(uri, a.streamlessCandidates(uri)...)
	objects := a.Objects.Resolve(infos)
	return NewLabelConverter(objects).Convert(size, opts, infos)
}

// streamlessCandidates returns the label files that name uri in their file id or metadata.
// Only the label files with the strongest match are returned, so that label files
// in different directories which share a basename do not pool their objects.
func (a *Annotations) streamlessCandidates(uri string) []string {
	best := MatchNone
	candidates := []string{}
	for _, id := range a.labelFileIDs {
		m := MatchNone
		for _, fileID := range a.fileIDs[id] {
			m = max(m, MediaMatch(fileID, uri))
		}
		if m == MatchNone || m < best {
			continue
		}
		if m > best {
			best = m
			candidates = candidates[:0]
		}
		candidates = append(candidates, id)
	}
	return candidates
}

// RemoveExt strips the extension from a path
func RemoveExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}

// Match is the strength with which two ids refer to the same media file
type Match int

const (
	MatchNone     Match = iota
	MatchBasename       // Same basename without extension
	MatchNoExt          // Equal after removing extensions
	MatchExact
)

// MediaMatch reports how strongly a and b refer to the same media file
func MediaMatch(a, b string) Match {
	switch {
	case a == b:
		return MatchExact
	case RemoveExt(a) == RemoveExt(b):
		return MatchNoExt
	case RemoveExt(filepath.Base(a)) == RemoveExt(filepath.Base(b)):
		return MatchBasename
	}
	return MatchNone
}
