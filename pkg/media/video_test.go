package media

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/rtp"
	"github.com/ui-xd/test-stream-sub001/pkg/codec"
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
)

// fakeTrack hands out packets from a channel, closing it ends the track.
type fakeTrack struct {
	packets chan *rtp.Packet
	seq     uint16
	ts      uint32
}

func newFakeTrack() *fakeTrack { return &fakeTrack{packets: make(chan *rtp.Packet, 64)} }

func (f *fakeTrack) ReadRTP() (*rtp.Packet, interceptor.Attributes, error) {
	p, ok := <-f.packets
	if !ok {
		return nil, nil, io.EOF
	}
	return p, nil, nil
}

// frame pushes a single packet VP8 frame.
func (f *fakeTrack) frame() {
	f.seq++
	f.ts += 3000
	f.packets <- &rtp.Packet{
		Header:  rtp.Header{Version: 2, Marker: true, SequenceNumber: f.seq, Timestamp: f.ts, PayloadType: 96},
		Payload: []byte{0x10, 0x00, 0x00, 0x9d, 0x01, 0x2a, 0x00, 0x00},
	}
}

type fakeDecoder struct {
	w, h   int
	fail   bool
	closed chan struct{}
}

func (d *fakeDecoder) Decode([]byte) (image.Image, error) {
	if d.fail {
		return nil, errors.New("broken")
	}
	return image.NewRGBA(image.Rect(0, 0, d.w, d.h)), nil
}

func (d *fakeDecoder) Close() error { close(d.closed); return nil }

func withFake(d *fakeDecoder) Option {
	return WithDecoder(func(codec.VideoCodec) (codec.Decoder, error) { return d, nil })
}

func timeout(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestVideoPlay(t *testing.T) {
	track := newFakeTrack()
	dec := &fakeDecoder{w: 320, h: 240, closed: make(chan struct{})}
	v := NewVideo("video/VP8", 90000, track, withFake(dec), WithLogger(logger.Nop()))

	if w, h := v.Size(); w != 0 || h != 0 {
		t.Errorf("size before play %vx%v", w, h)
	}
	for i := 0; i < 4; i++ {
		track.frame()
	}
	if err := v.Play(timeout(t)); err != nil {
		t.Fatal(err)
	}
	if w, h := v.Size(); w != 320 || h != 240 {
		t.Errorf("size %vx%v", w, h)
	}

	got := make(chan image.Image, 1)
	v.RequestFrame(func(img image.Image) { got <- img })
	track.frame()
	track.frame()
	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("no frame")
	}

	close(track.packets)
	select {
	case <-v.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("not finished")
	}
	<-dec.closed
	// played videos stay played
	if err := v.Play(timeout(t)); err != nil {
		t.Errorf("unexpected %v", err)
	}
}

func TestVideoCancelRequest(t *testing.T) {
	track := newFakeTrack()
	dec := &fakeDecoder{w: 2, h: 2, closed: make(chan struct{})}
	v := NewVideo("video/VP8", 90000, track, withFake(dec), WithLogger(logger.Nop()))

	called := make(chan struct{}, 8)
	cancel := v.RequestFrame(func(image.Image) { called <- struct{}{} })
	cancel()
	for i := 0; i < 4; i++ {
		track.frame()
	}
	if err := v.Play(timeout(t)); err != nil {
		t.Fatal(err)
	}
	close(track.packets)
	<-v.Done()
	if len(called) != 0 {
		t.Error("canceled request was called")
	}
}

func TestVideoEndsBeforePlay(t *testing.T) {
	track := newFakeTrack()
	dec := &fakeDecoder{fail: true, closed: make(chan struct{})}
	v := NewVideo("video/VP8", 90000, track, withFake(dec), WithLogger(logger.Nop()))
	for i := 0; i < 4; i++ {
		track.frame()
	}
	close(track.packets)
	if err := v.Play(timeout(t)); !errors.Is(err, ErrEnded) {
		t.Errorf("expected ErrEnded, got %v", err)
	}
}

func TestVideoUnsupported(t *testing.T) {
	track := newFakeTrack()
	v := NewVideo("video/AV1", 90000, track, WithLogger(logger.Nop()))
	if err := v.Play(timeout(t)); !errors.Is(err, codec.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	close(track.packets)
}

func TestVideoPlayTimeout(t *testing.T) {
	track := newFakeTrack()
	dec := &fakeDecoder{w: 2, h: 2, closed: make(chan struct{})}
	v := NewVideo("video/VP8", 90000, track, withFake(dec), WithLogger(logger.Nop()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := v.Play(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled, got %v", err)
	}
	close(track.packets)
}
