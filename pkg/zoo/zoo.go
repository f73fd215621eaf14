package zoo

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/www"
	"github.com/stobias123/fiftyone/pkg/importer"
	"github.com/stobias123/fiftyone/pkg/iox"
	"github.com/stobias123/fiftyone/pkg/labels"
	"github.com/stobias123/fiftyone/pkg/storage"
)

var ErrUnknownDataset = errors.New("Unknown zoo dataset")

const archiveName = "dataset.zip"

// ZooDataset is a dataset that can be downloaded as a zip archive.
// The archive contains a single top-level directory DirName, in the OpenLABEL layout
// of data/ and labels/ (or labels.json).
type ZooDataset struct {
	Name      string           `json:"name"`
	URL       string           `json:"url"`
	DirName   string           `json:"dirName"`
	MediaType labels.MediaType `json:"mediaType"`
}

// Info describes a downloaded dataset
type Info struct {
	Dataset    *ZooDataset `json:"dataset"`
	DatasetDir string      `json:"datasetDir"`
	NumSamples int         `json:"numSamples"`
	Classes    []string    `json:"classes"`
}

// AvailableDatasets lists the datasets that Get knows about
var AvailableDatasets = []*ZooDataset{
	{
		Name:      "quickstart",
		URL:       "https://drive.google.com/uc?export=download&id=1Clg45_r7ApaSypqs9X-UzFezvnfHd5Db",
		DirName:   "quickstart",
		MediaType: labels.MediaImage,
	},
}

func Get(name string) (*ZooDataset, error) {
	for _, ds := range AvailableDatasets {
		if ds.Name == name {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%w '%v'", ErrUnknownDataset, name)
}

// Download fetches the dataset archive into scratchDir, extracts it, and moves
// the dataset directory's contents into datasetDir.
// The samples are then counted by running the importer over datasetDir.
func Download(ctx context.Context, log logs.Log, ds *ZooDataset, datasetDir, scratchDir string) (*Info, error) {
	scratch, err := storage.NewStorageFS(log, scratchDir)
	if err != nil {
		return nil, err
	}

	log.Infof("Downloading dataset '%v' to '%v'", ds.Name, filepath.Join(scratch.Root, archiveName))
	if err := fetch(ctx, scratch, ds.URL); err != nil {
		return nil, fmt.Errorf("Failed to download %v: %w", ds.URL, err)
	}

	archive, err := scratch.Filename(archiveName)
	if err != nil {
		return nil, err
	}
	log.Infof("Extracting dataset to '%v'", datasetDir)
	if err := extractZip(archive, scratch.Root); err != nil {
		return nil, fmt.Errorf("Failed to extract %v: %w", archive, err)
	}
	if err := scratch.DeleteFile(archiveName); err != nil {
		log.Warnf("Failed to delete %v: %v", archive, err)
	}
	if err := iox.MoveDirContents(filepath.Join(scratch.Root, ds.DirName), datasetDir); err != nil {
		return nil, err
	}

	log.Infof("Parsing dataset metadata")
	info, err := Inspect(log, ds.MediaType, datasetDir)
	if err != nil {
		return nil, err
	}
	info.Dataset = ds
	log.Infof("Found %v samples", info.NumSamples)
	return info, nil
}

func fetch(ctx context.Context, scratch storage.Storage, url string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := www.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return storage.WriteFile(scratch, archiveName, resp.Body)
}

// Inspect counts the samples and label classes of an OpenLABEL dataset directory
func Inspect(log logs.Log, mediaType labels.MediaType, datasetDir string) (*Info, error) {
	cfg := importer.Config{
		DatasetDir: datasetDir,
	}
	info := &Info{
		DatasetDir: datasetDir,
	}
	classes := map[string]bool{}
	addClasses := func(f *labels.Frame) {
		if f == nil {
			return
		}
		for _, d := range f.Detections {
			classes[d.Label] = true
		}
		for _, k := range f.Keypoints {
			classes[k.Label] = true
		}
		if f.Segmentations != nil {
			for _, p := range f.Segmentations.Polylines {
				classes[p.Label] = true
			}
			for _, d := range f.Segmentations.Detections {
				classes[d.Label] = true
			}
		}
	}

	switch mediaType {
	case labels.MediaImage:
		im, err := importer.NewImageImporter(log, cfg)
		if err != nil {
			return nil, err
		}
		if err := im.Setup(); err != nil {
			return nil, err
		}
		for {
			sample, err := im.Next()
			if errors.Is(err, io.EOF) {
				break
			} else if errors.Is(err, importer.ErrMediaNotFound) {
				continue
			} else if err != nil {
				return nil, err
			}
			info.NumSamples++
			addClasses(sample.Labels)
		}
	case labels.MediaVideo:
		im, err := importer.NewVideoImporter(log, cfg)
		if err != nil {
			return nil, err
		}
		if err := im.Setup(); err != nil {
			return nil, err
		}
		for {
			sample, err := im.Next()
			if errors.Is(err, io.EOF) {
				break
			} else if errors.Is(err, importer.ErrMediaNotFound) {
				continue
			} else if err != nil {
				return nil, err
			}
			info.NumSamples++
			addClasses(sample.SampleLabels)
			for _, f := range sample.FrameLabels {
				addClasses(f)
			}
		}
	default:
		return nil, fmt.Errorf("Unsupported media type '%v'", mediaType)
	}

	for c := range classes {
		info.Classes = append(info.Classes, c)
	}
	slices.Sort(info.Classes)
	return info, nil
}

// extractZip extracts every entry of the archive into dstDir.
// Entries that would land outside of dstDir are rejected.
func extractZip(archive, dstDir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	root := filepath.Clean(dstDir) + string(os.PathSeparator)
	for _, f := range r.File {
		dst := filepath.Join(dstDir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(dst+string(os.PathSeparator), root) {
			return fmt.Errorf("Illegal path in zip archive: %v", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, dst); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, dst string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	return iox.WriteStreamToFile(dst, src)
}
