package codec

import (
	"errors"
	"image"
	"strings"
)

type VideoCodec string

const (
	H264 VideoCodec = "h264"
	VP8  VideoCodec = "vp8"
	VP9  VideoCodec = "vp9"
)

var (
	// ErrUnsupported means there is no decoder for the stream codec.
	ErrUnsupported = errors.New("unsupported codec")
	// ErrSkip means the input produced no picture, e.g. an inter frame
	// before the first key frame.
	ErrSkip = errors.New("no frame")
)

// Decoder turns complete compressed frames into pictures.
// Not safe for concurrent use.
type Decoder interface {
	Decode(frame []byte) (image.Image, error)
	Close() error
}

// FromMime maps a WebRTC MIME type (video/VP8) onto a codec.
func FromMime(mime string) (VideoCodec, error) {
	_, name, ok := strings.Cut(strings.ToLower(mime), "/")
	if !ok {
		name = strings.ToLower(mime)
	}
	switch VideoCodec(name) {
	case VP8, VP9, H264:
		return VideoCodec(name), nil
	}
	return "", ErrUnsupported
}
