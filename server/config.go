package server

import (
	"github.com/cyclopcam/dbh"
	"github.com/stobias123/fiftyone/pkg/storage"
)

const DefaultRateLimit = 300

type Config struct {
	DB           dbh.DBConfig   `json:"db"`
	LabelStorage storage.Config `json:"labelStorage"` // Where OpenLABEL label files live. One of 'filesystem' or 'gcs'.
	RateLimit    int            `json:"rateLimit"`    // Maximum requests per minute, per client IP. Zero means DefaultRateLimit.
	APIKeyHash   string         `json:"apiKeyHash"`   // pwdhash.HashKeyBase64 of the key that may modify datasets. Empty disables modification.
	DatasetsRoot string         `json:"datasetsRoot"` // Imports may only read from inside this directory. Empty disables imports.
}
