// Package media turns remote RTP tracks into decoded pictures.
package media

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"

	"github.com/pion/interceptor"
	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v3/pkg/media/samplebuilder"
	"github.com/ui-xd/test-stream-sub001/pkg/codec"
	"github.com/ui-xd/test-stream-sub001/pkg/codec/vpx"
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
	"github.com/ui-xd/test-stream-sub001/pkg/monitoring"
)

// maxLate is how many packets the sample builder keeps for reordering.
const maxLate = 512

var ErrEnded = errors.New("track ended")

// RTPReader is the inbound side of a remote track.
type RTPReader interface {
	ReadRTP() (*rtp.Packet, interceptor.Attributes, error)
}

type DecoderFactory func(c codec.VideoCodec) (codec.Decoder, error)

// Video decodes one remote video track. Decoded frames go to the
// single pending RequestFrame callback, frames nobody asked for are
// dropped so the consumer always gets the latest picture.
type Video struct {
	log *logger.Logger

	mu      sync.Mutex
	w, h    int
	pending func(image.Image)
	seq     uint64
	err     error

	readyOnce sync.Once
	ready     chan struct{}
	done      chan struct{}

	newDecoder DecoderFactory
}

type Option func(*Video)

func WithDecoder(fn DecoderFactory) Option { return func(v *Video) { v.newDecoder = fn } }

func WithLogger(log *logger.Logger) Option { return func(v *Video) { v.log = log } }

// NewVideo starts reading the track. A track with a codec that can't be
// decoded is still drained and its Play fails with the decoder error.
func NewVideo(mime string, clockRate uint32, src RTPReader, opts ...Option) *Video {
	v := &Video{
		log:        logger.Default(),
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
		newDecoder: NewDecoder,
	}
	for _, opt := range opts {
		opt(v)
	}

	c, err := codec.FromMime(mime)
	var dp rtp.Depacketizer
	if err == nil {
		dp, err = depacketizer(c)
	}
	var dec codec.Decoder
	if err == nil {
		dec, err = v.newDecoder(c)
	}
	if err != nil {
		v.log.Error().Err(err).Str("codec", mime).Msg("no decoder")
		monitoring.DecodeErrors.Inc()
		v.finish(err)
		go Drain(src)
		return v
	}
	go v.run(src, dec, samplebuilder.New(maxLate, dp, clockRate))
	return v
}

func NewDecoder(c codec.VideoCodec) (codec.Decoder, error) {
	d, err := vpx.NewDecoder(c)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func depacketizer(c codec.VideoCodec) (rtp.Depacketizer, error) {
	switch c {
	case codec.VP8:
		return &codecs.VP8Packet{}, nil
	case codec.VP9:
		return &codecs.VP9Packet{}, nil
	case codec.H264:
		return &codecs.H264Packet{}, nil
	}
	return nil, codec.ErrUnsupported
}

func (v *Video) run(src RTPReader, dec codec.Decoder, sb *samplebuilder.SampleBuilder) {
	defer func() {
		if err := dec.Close(); err != nil {
			v.log.Warn().Err(err).Msg("decoder close")
		}
	}()
	for {
		pkt, _, err := src.ReadRTP()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrEnded
			}
			v.finish(err)
			return
		}
		sb.Push(pkt)
		for s := sb.Pop(); s != nil; s = sb.Pop() {
			img, err := dec.Decode(s.Data)
			if err != nil {
				if !errors.Is(err, codec.ErrSkip) {
					monitoring.DecodeErrors.Inc()
					v.log.Debug().Err(err).Msg("decode")
				}
				continue
			}
			monitoring.FramesDecoded.Inc()
			v.deliver(img)
		}
	}
}

func (v *Video) deliver(img image.Image) {
	b := img.Bounds()
	v.mu.Lock()
	v.w, v.h = b.Dx(), b.Dy()
	fn := v.pending
	v.pending = nil
	v.mu.Unlock()
	v.readyOnce.Do(func() { close(v.ready) })
	if fn != nil {
		fn(img)
	}
}

func (v *Video) finish(err error) {
	v.mu.Lock()
	v.err = err
	v.pending = nil
	v.mu.Unlock()
	close(v.done)
}

func (v *Video) Size() (w, h int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.w, v.h
}

func (v *Video) RequestFrame(fn func(image.Image)) (cancel func()) {
	v.mu.Lock()
	v.seq++
	id := v.seq
	v.pending = fn
	v.mu.Unlock()
	return func() {
		v.mu.Lock()
		if v.seq == id {
			v.pending = nil
		}
		v.mu.Unlock()
	}
}

// Play waits for the first decoded frame.
func (v *Video) Play(ctx context.Context) error {
	select {
	case <-v.ready:
		return nil
	default:
	}
	select {
	case <-v.ready:
		return nil
	case <-v.done:
		v.mu.Lock()
		defer v.mu.Unlock()
		return v.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the track is over.
func (v *Video) Done() <-chan struct{} { return v.done }

// Drain reads a track nobody consumes until it ends.
func Drain(src RTPReader) {
	for {
		if _, _, err := src.ReadRTP(); err != nil {
			return
		}
	}
}
