package importer

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/gen"
	"github.com/stobias123/fiftyone/pkg/iox"
	"github.com/stobias123/fiftyone/pkg/openlabel"
	"github.com/stobias123/fiftyone/pkg/storage"
)

// DataMap maps a media file id (its path relative to the data dir, without extension) to an absolute path
type DataMap map[string]string

// LoadDataMap builds the media map from either a directory or a JSON manifest.
// A missing data path yields an empty map.
func LoadDataMap(dataPath string) (DataMap, error) {
	m := DataMap{}
	if dataPath == "" {
		return m, nil
	}
	if iox.IsFile(dataPath) {
		raw, err := os.ReadFile(dataPath)
		if err != nil {
			return nil, err
		}
		manifest := map[string]string{}
		if err := json.Unmarshal(raw, &manifest); err != nil {
			return nil, fmt.Errorf("Error parsing data manifest %v: %w", dataPath, err)
		}
		baseDir := filepath.Dir(dataPath)
		for id, p := range manifest {
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			m[openlabel.RemoveExt(id)] = p
		}
		return m, nil
	}
	if !iox.IsDir(dataPath) {
		return m, nil
	}
	root, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, err
	}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		m[openlabel.RemoveExt(filepath.ToSlash(rel))] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Lookup finds the media file for a file id. The id may be an existing file, or
// match a data map entry by its path or its basename (both without extension).
func (m DataMap) Lookup(fileID string) (string, bool) {
	if iox.IsFile(fileID) {
		return fileID, true
	}
	if p, ok := m[openlabel.RemoveExt(fileID)]; ok {
		return p, true
	}
	if p, ok := m[openlabel.RemoveExt(path.Base(filepath.ToSlash(fileID)))]; ok {
		return p, true
	}
	return "", false
}

// ValidateFileIDs returns the sorted ids that refer to known media, with one id per media file.
// When several ids resolve to the same file, an id in streamURIs wins, and otherwise the
// first id in sorted order.
func ValidateFileIDs(ids []string, m DataMap, streamURIs []string) []string {
	byPath := map[string]string{}
	for _, id := range gen.UniqueSorted(ids) {
		p, ok := m.Lookup(id)
		if !ok {
			continue
		}
		prev, exists := byPath[p]
		if !exists || (!slices.Contains(streamURIs, prev) && slices.Contains(streamURIs, id)) {
			byPath[p] = id
		}
	}
	valid := make([]string, 0, len(byPath))
	for _, id := range byPath {
		valid = append(valid, id)
	}
	slices.Sort(valid)
	return valid
}

// LabelFile is one label file inside a label source
type LabelFile struct {
	ID   string // Label file id: path without extension
	Name string // Name within the source's storage
}

// LabelSource is a set of label files, and the storage that they live in
type LabelSource struct {
	Storage storage.Storage
	Files   []LabelFile
}

// DiscoverLabels finds the label files at labelsPath, which may be:
//   - a single JSON file
//   - a directory, which is searched recursively for JSON files
//   - ".../labels.json", when that file does not exist, but the directory ".../labels" does
//   - a gs:// URL naming a single object, or a prefix
func DiscoverLabels(log logs.Log, labelsPath string) (*LabelSource, error) {
	if labelsPath == "" {
		return &LabelSource{}, nil
	}
	if strings.HasPrefix(labelsPath, "gs://") {
		return discoverGCS(log, labelsPath)
	}

	dir := ""
	switch {
	case iox.IsFile(labelsPath):
		cfg, name := storage.ParseLocation(labelsPath, false)
		st, err := storage.Open(log, cfg)
		if err != nil {
			return nil, err
		}
		return &LabelSource{
			Storage: st,
			Files:   []LabelFile{{ID: openlabel.RemoveExt(labelsPath), Name: name}},
		}, nil
	case iox.IsDir(labelsPath):
		dir = labelsPath
	case filepath.Base(labelsPath) == DefaultLabelsPath && iox.IsDir(openlabel.RemoveExt(labelsPath)):
		dir = openlabel.RemoveExt(labelsPath)
	default:
		log.Warnf("No labels found at %v", labelsPath)
		return &LabelSource{}, nil
	}

	cfg, _ := storage.ParseLocation(dir, true)
	st, err := storage.Open(log, cfg)
	if err != nil {
		return nil, err
	}
	return listLabelFiles(st, "")
}

func discoverGCS(log logs.Log, location string) (*LabelSource, error) {
	cfg, prefix := storage.ParseLocation(location, true)
	st, err := storage.Open(log, cfg)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(prefix, ".json") {
		names, err := st.ListFiles(prefix)
		if err != nil {
			return nil, err
		}
		if slices.Contains(names, prefix) {
			return &LabelSource{
				Storage: st,
				Files:   []LabelFile{{ID: openlabel.RemoveExt(prefix), Name: prefix}},
			}, nil
		}
		// eg gs://bucket/labels.json -> gs://bucket/labels/
		prefix = openlabel.RemoveExt(prefix)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return listLabelFiles(st, prefix)
}

func listLabelFiles(st storage.Storage, prefix string) (*LabelSource, error) {
	names, err := st.ListFiles(prefix)
	if err != nil {
		return nil, err
	}
	src := &LabelSource{
		Storage: st,
	}
	for _, name := range names {
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		src.Files = append(src.Files, LabelFile{
			ID:   openlabel.RemoveExt(strings.TrimPrefix(name, prefix)),
			Name: name,
		})
	}
	return src, nil
}
