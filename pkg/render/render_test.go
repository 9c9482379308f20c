package render

import (
	"errors"
	"image"
	"testing"

	"github.com/ui-xd/test-stream-sub001/pkg/logger"
	"github.com/ui-xd/test-stream-sub001/pkg/thread"
)

type request struct {
	fn       func(image.Image)
	canceled bool
}

type fakeSource struct {
	w, h    int
	pending []*request
}

func (s *fakeSource) Size() (int, int) { return s.w, s.h }

func (s *fakeSource) RequestFrame(fn func(image.Image)) func() {
	r := &request{fn: fn}
	s.pending = append(s.pending, r)
	return func() {
		r.canceled = true
		for i, x := range s.pending {
			if x == r {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				break
			}
		}
	}
}

// decode delivers a frame to every pending request.
func (s *fakeSource) decode() {
	p := s.pending
	s.pending = nil
	for _, r := range p {
		if !r.canceled {
			r.fn(image.NewYCbCr(image.Rect(0, 0, s.w, s.h), image.YCbCrSubsampleRatio420))
		}
	}
}

type fakeSurface struct {
	w, h    int
	draws   int
	clears  int
	resizes int
	fail    error
}

func (s *fakeSurface) Size() (int, int) { return s.w, s.h }
func (s *fakeSurface) Resize(w, h int) error {
	s.resizes++
	s.w, s.h = w, h
	return nil
}
func (s *fakeSurface) Draw(image.Image) error { s.draws++; return s.fail }
func (s *fakeSurface) Clear() error           { s.clears++; return nil }

func TestAttachSizesOnce(t *testing.T) {
	loop := thread.NewLoop(16, logger.Nop())
	src := &fakeSource{w: 320, h: 240}
	dst := &fakeSurface{}

	h, err := Attach(src, dst, loop, nil, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		src.decode()
		loop.RunOnce()
	}
	if dst.resizes != 1 || dst.w != 320 || dst.h != 240 {
		t.Errorf("resized %v times to %vx%v", dst.resizes, dst.w, dst.h)
	}
	if dst.draws != 5 || h.Frames() != 5 {
		t.Errorf("painted %v frames, want 5", dst.draws)
	}
	if len(src.pending) != 1 {
		t.Errorf("the pump should re-arm exactly once per frame, pending %v", len(src.pending))
	}
}

func TestAttachNoSize(t *testing.T) {
	loop := thread.NewLoop(1, logger.Nop())
	_, err := Attach(&fakeSource{}, &fakeSurface{}, loop, nil, logger.Nop())
	if !errors.Is(err, ErrNoSize) {
		t.Errorf("Attach() err = %v, want %v", err, ErrNoSize)
	}
}

func TestLivenessCheckedEveryFrame(t *testing.T) {
	loop := thread.NewLoop(16, logger.Nop())
	src := &fakeSource{w: 2, h: 2}
	dst := &fakeSurface{}
	live := true

	if _, err := Attach(src, dst, loop, func() bool { return live }, logger.Nop()); err != nil {
		t.Fatal(err)
	}
	src.decode()
	loop.RunOnce()
	// the state flips while a frame is already queued
	src.decode()
	live = false
	loop.RunOnce()
	src.decode()
	loop.RunOnce()

	if dst.draws != 1 {
		t.Errorf("painted %v frames, want 1", dst.draws)
	}
	if len(src.pending) != 0 {
		t.Errorf("a dead pump must not re-arm")
	}
}

func TestDetachStaleCallback(t *testing.T) {
	loop := thread.NewLoop(16, logger.Nop())
	src := &fakeSource{w: 2, h: 2}
	dst := &fakeSurface{}

	h, err := Attach(src, dst, loop, nil, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	src.decode() // posted, not painted yet
	h.Detach()
	h.Detach()
	loop.RunOnce()

	if dst.draws != 0 {
		t.Errorf("stale frame painted after detach")
	}
	if h.Active() {
		t.Errorf("detached handle is active")
	}
	if len(src.pending) != 0 {
		t.Errorf("detached handle re-armed")
	}
}

func TestPaintErrorKeepsPumping(t *testing.T) {
	loop := thread.NewLoop(16, logger.Nop())
	src := &fakeSource{w: 2, h: 2}
	dst := &fakeSurface{fail: errors.New("lost device")}

	if _, err := Attach(src, dst, loop, nil, logger.Nop()); err != nil {
		t.Fatal(err)
	}
	src.decode()
	loop.RunOnce()
	if len(src.pending) != 1 {
		t.Errorf("pump stopped after a paint error")
	}
}
