//go:build !cgo

package vpx

import (
	"bytes"
	"image"

	"github.com/ui-xd/test-stream-sub001/pkg/codec"
	"golang.org/x/image/vp8"
)

// Vpx without cgo decodes VP8 key frames only.
type Vpx struct {
	d *vp8.Decoder
}

func NewDecoder(c codec.VideoCodec) (*Vpx, error) {
	if c != codec.VP8 {
		return nil, codec.ErrUnsupported
	}
	return &Vpx{d: vp8.NewDecoder()}, nil
}

func (vpx *Vpx) Decode(frame []byte) (image.Image, error) {
	// bit 0 of the frame tag is set on inter frames
	if len(frame) == 0 || frame[0]&1 != 0 {
		return nil, codec.ErrSkip
	}
	vpx.d.Init(bytes.NewReader(frame), len(frame))
	if _, err := vpx.d.DecodeFrameHeader(); err != nil {
		return nil, err
	}
	return vpx.d.DecodeFrame()
}

func (vpx *Vpx) Close() error { return nil }
