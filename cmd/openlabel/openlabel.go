package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/datasetdb"
	"github.com/stobias123/fiftyone/pkg/importer"
	"github.com/stobias123/fiftyone/pkg/labels"
	"github.com/stobias123/fiftyone/pkg/zoo"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	parser := argparse.NewParser("openlabel", "Import an OpenLABEL dataset")
	configFile := parser.String("c", "config", &argparse.Options{Help: "Import config file (JSON). Flags override the file."})
	datasetDir := parser.String("d", "dataset", &argparse.Options{Help: "Dataset directory"})
	dataPath := parser.String("", "data", &argparse.Options{Help: "Media directory or manifest, relative to the dataset directory"})
	labelsPath := parser.String("l", "labels", &argparse.Options{Help: "Label file or directory, relative to the dataset directory. May be gs://bucket/prefix"})
	labelTypes := parser.String("t", "types", &argparse.Options{Help: "Comma-separated label types (detections,segmentations,keypoints)"})
	usePolylines := parser.Flag("", "polylines", &argparse.Options{Help: "Import segmentations as polylines instead of instance masks"})
	video := parser.Flag("", "video", &argparse.Options{Help: "The dataset consists of videos"})
	shuffle := parser.Flag("", "shuffle", &argparse.Options{Help: "Shuffle the samples"})
	seed := parser.Int("", "seed", &argparse.Options{Help: "Random seed for shuffling (0 = time based)", Default: 0})
	maxSamples := parser.Int("m", "max", &argparse.Options{Help: "Maximum number of samples (0 = all)", Default: 0})
	output := parser.String("o", "output", &argparse.Options{Help: "Write samples as JSON lines to this file, instead of stdout"})
	dbFile := parser.String("", "db", &argparse.Options{Help: "Store samples in this dataset DB (SQLite), instead of printing them"})
	name := parser.String("n", "name", &argparse.Options{Help: "Dataset name, when using --db. Defaults to the dataset directory name."})
	zooName := parser.String("", "zoo", &argparse.Options{Help: "Download this zoo dataset into the dataset directory first"})
	scratchDir := parser.String("", "scratch", &argparse.Options{Help: "Scratch directory for zoo downloads", Default: os.TempDir()})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	check(err)

	cfg := importer.Config{}
	if *configFile != "" {
		c, err := importer.LoadConfig(*configFile)
		check(err)
		cfg = *c
	}
	if *datasetDir != "" {
		cfg.DatasetDir = *datasetDir
	}
	if *dataPath != "" {
		cfg.DataPath = *dataPath
	}
	if *labelsPath != "" {
		cfg.LabelsPath = *labelsPath
	}
	if *labelTypes != "" {
		cfg.LabelTypes = strings.Split(*labelTypes, ",")
	}
	if *usePolylines {
		cfg.UsePolylines = true
	}
	if *shuffle {
		cfg.Shuffle = true
	}
	if *seed != 0 {
		cfg.Seed = int64(*seed)
	}
	if *maxSamples != 0 {
		cfg.MaxSamples = *maxSamples
	}
	mediaType := labels.MediaImage
	if *video {
		mediaType = labels.MediaVideo
	}

	if *zooName != "" {
		ds, err := zoo.Get(*zooName)
		check(err)
		if cfg.DatasetDir == "" {
			check(fmt.Errorf("--dataset is required when downloading a zoo dataset"))
		}
		mediaType = ds.MediaType
		info, err := zoo.Download(context.Background(), logger, ds, cfg.DatasetDir, filepath.Join(*scratchDir, "zoo-"+ds.Name))
		check(err)
		logger.Infof("Downloaded %v: %v samples, classes %v", ds.Name, info.NumSamples, info.Classes)
	}

	if *dbFile != "" {
		datasetName := *name
		if datasetName == "" {
			datasetName = filepath.Base(filepath.Clean(cfg.DatasetDir))
		}
		db, err := datasetdb.NewDatasetDB(logger, *dbFile)
		check(err)
		defer db.Close()
		result, err := db.Import(datasetdb.ImportOptions{
			Dataset:    datasetName,
			MediaType:  mediaType,
			Persistent: true,
			Importer:   cfg,
		})
		check(err)
		fmt.Printf("Imported %v samples into dataset '%v' (%v skipped)\n", result.NumSamples, result.Dataset.Name, result.NumSkipped)
		return
	}

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		check(err)
		defer f.Close()
		out = f
	}
	encoder := json.NewEncoder(out)

	if mediaType == labels.MediaImage {
		check(printImages(logger, cfg, encoder))
	} else {
		check(printVideos(logger, cfg, encoder))
	}
}

func printImages(logger logs.Log, cfg importer.Config, encoder *json.Encoder) error {
	im, err := importer.NewImageImporter(logger, cfg)
	if err != nil {
		return err
	}
	if err := im.Setup(); err != nil {
		return err
	}
	type sampleJSON struct {
		FileID   string                   `json:"fileID"`
		Path     string                   `json:"path"`
		Metadata *importer.SampleMetadata `json:"metadata"`
		Labels   any                      `json:"labels"`
	}
	for {
		s, err := im.Next()
		if errors.Is(err, io.EOF) {
			return nil
		} else if errors.Is(err, importer.ErrMediaNotFound) {
			logger.Warnf("%v", err)
			continue
		} else if err != nil {
			return err
		}
		out := sampleJSON{
			FileID:   s.FileID,
			Path:     s.Path,
			Metadata: s.Metadata,
			Labels:   s.Labels,
		}
		// A single label type is written without the enclosing frame
		if scalar, ok := s.ScalarLabels(); ok {
			out.Labels = scalar
		}
		if err := encoder.Encode(&out); err != nil {
			return err
		}
	}
}

func printVideos(logger logs.Log, cfg importer.Config, encoder *json.Encoder) error {
	im, err := importer.NewVideoImporter(logger, cfg)
	if err != nil {
		return err
	}
	if err := im.Setup(); err != nil {
		return err
	}
	type sampleJSON struct {
		FileID       string                   `json:"fileID"`
		Path         string                   `json:"path"`
		Metadata     *importer.SampleMetadata `json:"metadata"`
		SampleLabels *labels.Frame            `json:"sampleLabels"`
		FrameLabels  map[int]*labels.Frame    `json:"frameLabels"`
	}
	for {
		s, err := im.Next()
		if errors.Is(err, io.EOF) {
			return nil
		} else if errors.Is(err, importer.ErrMediaNotFound) {
			logger.Warnf("%v", err)
			continue
		} else if err != nil {
			return err
		}
		if err := encoder.Encode(&sampleJSON{
			FileID:       s.FileID,
			Path:         s.Path,
			Metadata:     s.Metadata,
			SampleLabels: s.SampleLabels,
			FrameLabels:  s.FrameLabels,
		}); err != nil {
			return err
		}
	}
}
