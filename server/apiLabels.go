package server

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/cyclopcam/www"
	"github.com/julienschmidt/httprouter"
	"github.com/stobias123/fiftyone/pkg/labels"
	"github.com/stobias123/fiftyone/pkg/openlabel"
	"github.com/stobias123/fiftyone/pkg/storage"
)

const maxLabelFileBytes = 256 * 1024 * 1024

// labelFileName extracts the label file name from a catch-all route parameter
func labelFileName(params httprouter.Params) string {
	name := strings.TrimPrefix(params.ByName("name"), "/")
	if name == "" || strings.Contains(name, "..") {
		www.PanicBadRequestf("Invalid label file name '%v'", name)
	}
	return name
}

func (s *Server) httpLabelFileList(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	all, err := s.labelStorage.ListFiles(www.QueryValue(r, "prefix"))
	www.Check(err)
	names := []string{}
	for _, name := range all {
		if strings.EqualFold(path.Ext(name), ".json") {
			names = append(names, name)
		}
	}
	www.SendJSON(w, names)
}

func (s *Server) httpLabelFileGet(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	f, err := s.labelStorage.ReadFile(labelFileName(params))
	if err != nil {
		www.PanicNotFound()
	}
	defer f.Reader.Close()
	w.Header().Set("Content-Type", "application/json")
	io.Copy(w, f.Reader)
}

// httpLabelFileSummary parses a label file, and describes what it contains
func (s *Server) httpLabelFileSummary(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	name := labelFileName(params)
	raw, err := storage.ReadFile(s.labelStorage, name)
	if err != nil {
		www.PanicNotFound()
	}
	if len(raw) > maxLabelFileBytes {
		www.PanicBadRequestf("Label file is too large")
	}
	mediaType := labels.MediaType(www.QueryValue(r, "mediaType"))
	if mediaType == "" {
		mediaType = labels.MediaImage
	}
	labelFileID := strings.TrimSuffix(name, path.Ext(name))
	ann := openlabel.NewAnnotations(s.Log, mediaType)
	fileIDs, err := ann.ParseLabels(labelFileID, raw)
	if err != nil {
		www.PanicBadRequestf("%v", err)
	}

	type response struct {
		LabelFileID      string   `json:"labelFileID"`
		FileIDs          []string `json:"fileIDs"`
		URIs             []string `json:"uris"`
		NumStreams       int      `json:"numStreams"`
		NumObjects       int      `json:"numObjects"`
		SegmentationType string   `json:"segmentationType"`
	}
	www.SendJSON(w, &response{
		LabelFileID:      labelFileID,
		FileIDs:          fileIDs,
		URIs:             ann.Streams.URIs(),
		NumStreams:       ann.Streams.Len(),
		NumObjects:       ann.Objects.Len(),
		SegmentationType: ann.Metadata[labelFileID].SegmentationType.String(),
	})
}
