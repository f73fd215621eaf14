package server

import (
	"net/http"
	"time"

	"github.com/cyclopcam/www"
	"github.com/go-chi/httprate"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) setupHttpRoutes() error {
	logEveryRequest := false
	router := httprouter.New()

	// A single limiter, so that the limit applies to the sum of a client's requests
	limited := httprate.Limit(s.rateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))

	ratelimited := func(method, route string, handle httprouter.Handle) {
		www.Handle(s.Log, router, method, route, func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
			if logEveryRequest {
				s.Log.Infof("HTTP %v %v", method, r.URL.Path)
			}
			limited(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handle(w, r, params)
			})).ServeHTTP(w, r)
		})
	}

	// protected also requires the API key
	protected := func(method, route string, handle httprouter.Handle) {
		ratelimited(method, route, func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
			s.authenticateRequest(r)
			handle(w, r, params)
		})
	}

	ratelimited("GET", "/api/ping", s.httpPing)
	ratelimited("GET", "/api/zoo", s.httpZooList)

	ratelimited("GET", "/api/datasets", s.httpDatasetList)
	ratelimited("GET", "/api/datasets/:name", s.httpDatasetGet)
	protected("DELETE", "/api/datasets/:name", s.httpDatasetDelete)
	protected("POST", "/api/datasets/:name/import", s.httpDatasetImport)
	ratelimited("GET", "/api/datasets/:name/samples", s.httpSampleList)
	ratelimited("GET", "/api/datasets/:name/samples/:id", s.httpSampleGet)

	ratelimited("GET", "/api/labelFiles", s.httpLabelFileList)
	ratelimited("GET", "/api/labelFile/*name", s.httpLabelFileGet)
	ratelimited("GET", "/api/labelSummary/*name", s.httpLabelFileSummary)

	s.httpRouter = router
	return nil
}
