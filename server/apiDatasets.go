package server

import (
	"errors"
	"net/http"

	"github.com/cyclopcam/www"
	"github.com/julienschmidt/httprouter"
	"github.com/stobias123/fiftyone/pkg/datasetdb"
	"github.com/stobias123/fiftyone/pkg/labels"
)

const maxSamplesPerPage = 1000

// getDataset fetches the dataset named in the URL, or panics with 404
func (s *Server) getDataset(params httprouter.Params) *datasetdb.Dataset {
	ds, err := s.DB.GetDataset(params.ByName("name"))
	if errors.Is(err, datasetdb.ErrDatasetNotFound) {
		www.PanicNotFound()
	}
	www.Check(err)
	return ds
}

func (s *Server) httpDatasetList(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	all, err := s.DB.ListDatasets()
	www.Check(err)
	www.SendJSON(w, all)
}

func (s *Server) httpDatasetGet(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ds := s.getDataset(params)
	count, err := s.DB.CountSamples(ds.ID)
	www.Check(err)
	type response struct {
		*datasetdb.Dataset
		NumSamples int64 `json:"numSamples"`
	}
	www.SendJSON(w, &response{
		Dataset:    ds,
		NumSamples: count,
	})
}

func (s *Server) httpDatasetDelete(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	err := s.DB.DeleteDataset(params.ByName("name"))
	if errors.Is(err, datasetdb.ErrDatasetNotFound) {
		www.PanicNotFound()
	}
	www.Check(err)
	www.SendOK(w)
}

func (s *Server) httpDatasetImport(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	opts := datasetdb.ImportOptions{}
	www.ReadJSON(w, r, &opts, 1024*1024)
	opts.Dataset = params.ByName("name")
	s.confineImport(&opts.Importer)
	if opts.MediaType != labels.MediaImage && opts.MediaType != labels.MediaVideo {
		www.PanicBadRequestf("Invalid mediaType '%v'. Valid values are 'image' and 'video'", opts.MediaType)
	}
	result, err := s.DB.Import(opts)
	if err != nil {
		www.PanicBadRequestf("%v", err)
	}
	www.SendJSON(w, result)
}

func (s *Server) httpSampleList(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ds := s.getDataset(params)
	offset := www.QueryInt(r, "offset")
	limit := www.QueryInt(r, "limit")
	if offset < 0 || limit < 0 {
		www.PanicBadRequestf("offset and limit may not be negative")
	}
	if limit == 0 || limit > maxSamplesPerPage {
		limit = maxSamplesPerPage
	}
	samples, err := s.DB.ListSamples(ds.ID, offset, limit)
	www.Check(err)
	total, err := s.DB.CountSamples(ds.ID)
	www.Check(err)
	type response struct {
		Samples []*datasetdb.Sample `json:"samples"`
		Total   int64               `json:"total"`
	}
	www.SendJSON(w, &response{
		Samples: samples,
		Total:   total,
	})
}

func (s *Server) httpSampleGet(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ds := s.getDataset(params)
	id := www.ParseID(params.ByName("id"))
	if id == 0 {
		www.PanicBadRequestf("Invalid sample ID")
	}
	sample, err := s.DB.GetSample(ds.ID, id)
	if errors.Is(err, datasetdb.ErrSampleNotFound) {
		www.PanicNotFound()
	}
	www.Check(err)
	www.SendJSON(w, sample)
}
