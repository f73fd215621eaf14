package videox

import (
	"fmt"

	"github.com/asticode/go-astits"
	"github.com/bluenviron/mediacommon/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/pkg/codecs/h265"
)

type Codec int

const (
	CodecUnknown Codec = iota
	CodecH264
	CodecH265
)

func ParseCodec(codec string) (Codec, error) {
	switch codec {
	case "h264", "H264", "avc":
		return CodecH264, nil
	case "h265", "H265", "hevc":
		return CodecH265, nil
	default:
		return CodecUnknown, fmt.Errorf("Unknown codec: %v", codec)
	}
}

func (c Codec) String() string {
	switch c {
	case CodecH264:
		return "h264"
	case CodecH265:
		return "h265"
	default:
		return "unknown"
	}
}

// codecOfStreamType maps an MPEG-TS elementary stream type to a codec
func codecOfStreamType(t astits.StreamType) Codec {
	switch t {
	case astits.StreamTypeH264Video:
		return CodecH264
	case astits.StreamTypeH265Video:
		return CodecH265
	}
	return CodecUnknown
}

func ReadNaluTypeH264(firstByte byte) h264.NALUType {
	return h264.NALUType(firstByte & 31)
}

func ReadNaluTypeH265(firstByte byte) h265.NALUType {
	return h265.NALUType((firstByte >> 1) & 63)
}

// isSPS returns true if the NALU is a sequence parameter set
func (c Codec) isSPS(nalu []byte) bool {
	if len(nalu) == 0 {
		return false
	}
	switch c {
	case CodecH264:
		return ReadNaluTypeH264(nalu[0]) == h264.NALUTypeSPS
	case CodecH265:
		return ReadNaluTypeH265(nalu[0]) == h265.NALUType_SPS_NUT
	}
	return false
}

// parseSPS returns the frame size encoded in an SPS NALU
func (c Codec) parseSPS(nalu []byte) (width, height int, err error) {
	switch c {
	case CodecH264:
		var sps h264.SPS
		if err = sps.Unmarshal(nalu); err != nil {
			return
		}
		return sps.Width(), sps.Height(), nil
	case CodecH265:
		var sps h265.SPS
		if err = sps.Unmarshal(nalu); err != nil {
			return
		}
		return sps.Width(), sps.Height(), nil
	}
	return 0, 0, fmt.Errorf("Unsupported codec %v", c)
}
