package importer

import (
	"fmt"
	"image"
	"mime"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/stobias123/fiftyone/pkg/videox"
)

// SampleMetadata describes a media file.
// For videos, Width and Height are the frame size.
type SampleMetadata struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	Codec     string `json:"codec,omitempty"` // Video only
}

// ProbeImage reads the dimensions of an image file without decoding the pixels
func ProbeImage(filename string) (*SampleMetadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("Failed to read image %v: %w", filename, err)
	}
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &SampleMetadata{
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: st.Size(),
		MimeType:  "image/" + format,
	}, nil
}

// ProbeVideo reads the frame size of a video file
func ProbeVideo(filename string) (*SampleMetadata, error) {
	info, err := videox.ProbeFile(filename)
	if err != nil {
		return nil, err
	}
	md := &SampleMetadata{
		Width:    info.Width,
		Height:   info.Height,
		MimeType: mime.TypeByExtension(filepath.Ext(filename)),
		Codec:    info.Codec.String(),
	}
	if st, err := os.Stat(filename); err == nil {
		md.SizeBytes = st.Size()
	}
	return md, nil
}
