package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/julienschmidt/httprouter"
	"github.com/stobias123/fiftyone/pkg/datasetdb"
	"github.com/stobias123/fiftyone/pkg/storage"
)

type Server struct {
	Log logs.Log
	DB  *datasetdb.DatasetDB

	signalIn     chan os.Signal
	httpServer   *http.Server
	httpRouter   *httprouter.Router
	labelStorage storage.Storage
	rateLimit    int
	apiKeyHash   string
	datasetsRoot string
}

// NewServer reads the JSON config file, and creates a server with a new logger
func NewServer(configFile string) (*Server, error) {
	cfg := Config{}
	if cfgB, err := os.ReadFile(configFile); err != nil {
		return nil, err
	} else {
		if err := json.Unmarshal(cfgB, &cfg); err != nil {
			return nil, fmt.Errorf("Error parsing config file %v: %w", configFile, err)
		}
	}
	logger, err := logs.NewLog()
	if err != nil {
		return nil, err
	}
	return New(logger, cfg)
}

func New(logger logs.Log, cfg Config) (*Server, error) {
	db, err := datasetdb.NewDatasetDBFromConfig(logger, cfg.DB)
	if err != nil {
		return nil, err
	}

	labelStorage, err := storage.Open(logger, cfg.LabelStorage)
	if err != nil {
		return nil, fmt.Errorf("Failed to open label storage: %w. One of the storage options must be configured (i.e. either 'filesystem' or 'gcs')", err)
	}

	s := &Server{
		Log:          logger,
		DB:           db,
		labelStorage: labelStorage,
		rateLimit:    cfg.RateLimit,
		apiKeyHash:   cfg.APIKeyHash,
	}
	if cfg.DatasetsRoot != "" {
		if s.datasetsRoot, err = filepath.Abs(cfg.DatasetsRoot); err != nil {
			return nil, err
		}
	}
	if s.rateLimit <= 0 {
		s.rateLimit = DefaultRateLimit
	}
	if err := s.setupHttpRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the HTTP handler of the API
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// port example: ":8081"
func (s *Server) ListenHTTP(port string) error {
	s.Log.Infof("Listening on %v", port)
	s.httpServer = &http.Server{
		Addr:    port,
		Handler: s.httpRouter,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) ListenForKillSignals() {
	s.Log.Infof("ListenForKillSignals starting")
	s.signalIn = make(chan os.Signal, 1)
	signal.Notify(s.signalIn, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig, ok := <-s.signalIn
		if ok {
			s.Log.Infof("Received OS signal '%v'. ListenForKillSignals will exit after shutdown", sig.String())
			s.Shutdown()
		} else {
			// Shutdown() was called by something other than ourselves, and closed signalIn
			s.Log.Infof("signalIn closed. ListenForKillSignals will exit now")
		}
	}()
}

func (s *Server) Shutdown() {
	s.Log.Infof("Shutdown")
	if s.signalIn != nil {
		signal.Stop(s.signalIn)
		close(s.signalIn)
		s.signalIn = nil
	}
	if s.httpServer != nil {
		s.Log.Infof("Closing HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := s.httpServer.Shutdown(ctx)
		cancel()
		if err != nil {
			s.Log.Warnf("HTTP server shutdown error: %v", err)
		}
	}
	s.DB.Close()
	s.Log.Infof("Shutdown complete")
	s.Log.Close()
}
