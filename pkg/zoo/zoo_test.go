package zoo

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stobias123/fiftyone/pkg/labels"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func objectLabels(class string) []byte {
	return []byte(`{"openlabel": {"objects": {"a": {"type": "` + class + `", "object_data": {"bbox": {"val": [16, 16, 8, 8]}}}}}}`)
}

func makeZip(t *testing.T, files map[string][]byte) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func serve(t *testing.T, archive []byte) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dataset.zip" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Write(archive)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownload(t *testing.T) {
	archive := makeZip(t, map[string][]byte{
		"tiny/data/img001.png":    pngBytes(t, 64, 48),
		"tiny/data/img002.png":    pngBytes(t, 32, 32),
		"tiny/labels/img001.json": objectLabels("car"),
		"tiny/labels/img002.json": objectLabels("dog"),
		"tiny/labels/img003.json": objectLabels("cat"), // No media
	})
	srv := serve(t, archive)

	ds := &ZooDataset{
		Name:      "tiny",
		URL:       srv.URL + "/dataset.zip",
		DirName:   "tiny",
		MediaType: labels.MediaImage,
	}
	datasetDir := filepath.Join(t.TempDir(), "datasets", "tiny")
	scratchDir := t.TempDir()

	info, err := Download(context.Background(), logs.NewTestingLog(t), ds, datasetDir, scratchDir)
	require.NoError(t, err)
	require.Equal(t, ds, info.Dataset)
	require.Equal(t, 2, info.NumSamples)
	require.Equal(t, []string{"car", "dog"}, info.Classes)

	require.FileExists(t, filepath.Join(datasetDir, "data", "img001.png"))
	require.FileExists(t, filepath.Join(datasetDir, "labels", "img002.json"))
	require.NoFileExists(t, filepath.Join(scratchDir, archiveName))
	entries, err := os.ReadDir(filepath.Join(scratchDir, "tiny"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDownloadFailures(t *testing.T) {
	log := logs.NewTestingLog(t)

	srv := serve(t, makeZip(t, map[string][]byte{"../evil.txt": []byte("x")}))
	ds := &ZooDataset{Name: "evil", URL: srv.URL + "/dataset.zip", DirName: "evil", MediaType: labels.MediaImage}
	scratchDir := t.TempDir()
	_, err := Download(context.Background(), log, ds, t.TempDir(), scratchDir)
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(filepath.Dir(scratchDir), "evil.txt"))

	missing := &ZooDataset{Name: "missing", URL: srv.URL + "/nothing.zip", DirName: "missing", MediaType: labels.MediaImage}
	_, err = Download(context.Background(), log, missing, t.TempDir(), t.TempDir())
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Download(ctx, log, ds, t.TempDir(), t.TempDir())
	require.Error(t, err)
}

func TestGet(t *testing.T) {
	ds, err := Get("quickstart")
	require.NoError(t, err)
	require.Equal(t, "quickstart", ds.DirName)

	_, err = Get("imagenet")
	require.ErrorIs(t, err, ErrUnknownDataset)
}
