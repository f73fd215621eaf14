package storage

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cyclopcam/logs"
)

var ErrNoPublicUrl = errors.New("Storage has no public URL")
var ErrNotAFilesystem = errors.New("Storage is not a filesystem")

// Storage is an abstraction of a blob store (eg GCS)
type Storage interface {
	// When finished, you must close the WriteCloser
	WriteFile(name string) (io.WriteCloser, error)

	// When finished, you must close File.Reader
	ReadFile(name string) (*File, error)

	DeleteFile(name string) error

	// ListFiles returns the names of all files whose name starts with prefix, sorted.
	// Names use forward slashes.
	ListFiles(prefix string) ([]string, error)

	// Filename returns the local path of a file, or ErrNotAFilesystem
	Filename(name string) (string, error)
}

// File is an element in blob storage.
type File struct {
	Reader     io.ReadCloser
	ModifiedAt time.Time
	Size       int64
}

// Config selects a storage backend. Exactly one of the members must be set.
type Config struct {
	Filesystem *FilesystemConfig `json:"filesystem,omitempty"`
	GCS        *GCSConfig        `json:"gcs,omitempty"`
}

type FilesystemConfig struct {
	Root string `json:"root"`
}

type GCSConfig struct {
	Bucket string `json:"bucket"`
	Public bool   `json:"public"`
}

// Open creates the storage backend described by cfg
func Open(log logs.Log, cfg Config) (Storage, error) {
	switch {
	case cfg.Filesystem != nil && cfg.GCS != nil:
		return nil, fmt.Errorf("Only one of filesystem or gcs storage may be configured")
	case cfg.Filesystem != nil:
		return NewStorageFS(log, cfg.Filesystem.Root)
	case cfg.GCS != nil:
		return NewStorageGCS(log, cfg.GCS.Bucket, cfg.GCS.Public)
	}
	return nil, fmt.Errorf("No storage configured")
}

// ParseLocation splits a location such as "gs://bucket/some/prefix" into a storage config and a path
// within that storage. Anything that is not a gs:// URL is treated as a local path, and the returned
// storage root is its parent directory (or the path itself, if isDir is true).
func ParseLocation(location string, isDir bool) (Config, string) {
	if rest, ok := strings.CutPrefix(location, "gs://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		return Config{GCS: &GCSConfig{Bucket: bucket}}, prefix
	}
	if isDir {
		return Config{Filesystem: &FilesystemConfig{Root: location}}, ""
	}
	dir, file := splitLocal(location)
	return Config{Filesystem: &FilesystemConfig{Root: dir}}, file
}

func WriteFile(s Storage, name string, content io.Reader) error {
	f, err := s.WriteFile(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, content)
	errClose := f.Close()
	if err != nil {
		return err
	}
	return errClose
}

func ReadFile(s Storage, name string) ([]byte, error) {
	f, err := s.ReadFile(name)
	if err != nil {
		return nil, err
	}
	defer f.Reader.Close()
	return io.ReadAll(f.Reader)
}
