package videox

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/asticode/go-astits"
)

var ErrNoSPS = errors.New("No SPS found in video")
var ErrUnsupportedContainer = errors.New("Unsupported video container")

// Maximum number of bytes of a raw Annex-B stream that we'll read while looking for an SPS
const maxAnnexBProbeBytes = 1024 * 1024

// Info describes a video stream
type Info struct {
	Codec  Codec
	Width  int
	Height int
}

// ProbeFile reads the frame size of a video file.
// Supported containers are MPEG-TS, and raw H264/H265 Annex-B streams.
func ProbeFile(filename string) (*Info, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := ProbeReader(f)
	if err != nil {
		return nil, fmt.Errorf("Failed to probe %v: %w", filename, err)
	}
	return info, nil
}

// ProbeReader reads the frame size of a video stream. The container is detected from the first bytes.
func ProbeReader(r io.Reader) (*Info, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && len(head) == 0 {
		return nil, ErrUnsupportedContainer
	}
	switch {
	case head[0] == 0x47:
		return probeTS(br)
	case bytes.HasPrefix(head, []byte{0, 0, 1}) || bytes.HasPrefix(head, []byte{0, 0, 0, 1}):
		raw, err := io.ReadAll(io.LimitReader(br, maxAnnexBProbeBytes))
		if err != nil {
			return nil, err
		}
		return probeAnnexB(raw, CodecUnknown)
	}
	return nil, ErrUnsupportedContainer
}

func probeTS(r io.Reader) (*Info, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dmx := astits.NewDemuxer(ctx, r)
	videoPIDs := map[uint16]Codec{}
	for {
		d, err := dmx.NextData()
		if errors.Is(err, astits.ErrNoMorePackets) || errors.Is(err, io.EOF) {
			return nil, ErrNoSPS
		} else if err != nil {
			return nil, err
		}
		if d.PMT != nil {
			for _, es := range d.PMT.ElementaryStreams {
				if c := codecOfStreamType(es.StreamType); c != CodecUnknown {
					videoPIDs[es.ElementaryPID] = c
				}
			}
		}
		if d.PES == nil {
			continue
		}
		codec, ok := videoPIDs[d.PID]
		if !ok {
			continue
		}
		if info, err := probeAnnexB(d.PES.Data, codec); err == nil {
			return info, nil
		}
	}
}

// probeAnnexB finds the first SPS in an Annex-B byte stream.
// If codec is unknown, we try H264 and then H265.
func probeAnnexB(raw []byte, codec Codec) (*Info, error) {
	nalus := splitAnnexB(raw)
	candidates := []Codec{codec}
	if codec == CodecUnknown {
		candidates = []Codec{CodecH264, CodecH265}
	}
	for _, nalu := range nalus {
		for _, c := range candidates {
			if !c.isSPS(nalu) {
				continue
			}
			width, height, err := c.parseSPS(nalu)
			if err != nil || width <= 0 || height <= 0 {
				continue
			}
			return &Info{
				Codec:  c,
				Width:  width,
				Height: height,
			}, nil
		}
	}
	return nil, ErrNoSPS
}

// splitAnnexB splits an Annex-B byte stream into NALUs, without start codes.
// Emulation prevention bytes are left in place. A truncated final NALU is returned as-is.
func splitAnnexB(raw []byte) [][]byte {
	startCode := []byte{0, 0, 1}
	nalus := [][]byte{}
	i := bytes.Index(raw, startCode)
	for i >= 0 {
		start := i + 3
		next := bytes.Index(raw[start:], startCode)
		end := len(raw)
		if next >= 0 {
			end = start + next
		}
		nalu := raw[start:end]
		if next >= 0 {
			// The zero before a 4 byte start code belongs to the start code
			nalu = bytes.TrimRight(nalu, "\x00")
		}
		if len(nalu) != 0 {
			nalus = append(nalus, nalu)
		}
		if next < 0 {
			break
		}
		i = end
	}
	return nalus
}
