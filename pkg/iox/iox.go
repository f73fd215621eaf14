package iox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteStreamToFile copies src into a new file. On failure the partial file is removed.
func WriteStreamToFile(dstFilename string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dstFilename), 0755); err != nil {
		return err
	}
	dstFile, err := os.Create(dstFilename)
	if err != nil {
		return err
	}
	_, err = io.Copy(dstFile, src)
	errClose := dstFile.Close()
	if err == nil {
		err = errClose
	}
	if err != nil {
		os.Remove(dstFilename)
		return err
	}
	return nil
}

// MoveDirContents moves every entry of srcDir into dstDir, creating dstDir if necessary.
// Entries that already exist in dstDir are an error.
func MoveDirContents(srcDir, dstDir string) error {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		dst := filepath.Join(dstDir, e.Name())
		if _, err := os.Lstat(dst); err == nil {
			return fmt.Errorf("Cannot move %v into %v: destination already exists", e.Name(), dstDir)
		}
		if err := os.Rename(filepath.Join(srcDir, e.Name()), dst); err != nil {
			return err
		}
	}
	return nil
}

// IsFile returns true if path exists and is a regular file
func IsFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// IsDir returns true if path exists and is a directory
func IsDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
