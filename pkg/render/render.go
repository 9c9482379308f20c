// Package render pumps decoded video frames onto a display surface.
package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/ui-xd/test-stream-sub001/pkg/logger"
	"github.com/ui-xd/test-stream-sub001/pkg/monitoring"
	"github.com/ui-xd/test-stream-sub001/pkg/thread"
)

// Surface is a 2D paintable target.
type Surface interface {
	Size() (w, h int)
	Resize(w, h int) error
	Draw(img image.Image) error
	Clear() error
}

// Source produces decoded frames.
type Source interface {
	// Size is the native resolution of the video.
	Size() (w, h int)
	// RequestFrame registers a one-shot callback for the next decoded frame.
	// The callback may run on any goroutine.
	RequestFrame(fn func(image.Image)) (cancel func())
}

var ErrNoSize = errors.New("source has no frame size")

// Handle binds one Source to one Surface.
type Handle struct {
	src    Source
	dst    Surface
	sched  thread.Scheduler
	live   func() bool
	active bool
	cancel func()
	log    *logger.Logger

	frames uint64
}

// Attach sizes the surface to the source once and starts the frame pump.
// The live func is consulted on every frame, the pump keeps going
// only while both the handle is attached and live() is true.
func Attach(src Source, dst Surface, sched thread.Scheduler, live func() bool, log *logger.Logger) (*Handle, error) {
	w, h := src.Size()
	if w <= 0 || h <= 0 {
		return nil, ErrNoSize
	}
	if sw, sh := dst.Size(); sw != w || sh != h {
		if err := dst.Resize(w, h); err != nil {
			return nil, fmt.Errorf("surface resize %vx%v: %w", w, h, err)
		}
	}
	if live == nil {
		live = func() bool { return true }
	}
	hd := &Handle{src: src, dst: dst, sched: sched, live: live, active: true, log: log}
	hd.arm()
	log.Debug().Msgf("Render attached %vx%v", w, h)
	return hd, nil
}

func (h *Handle) arm() { h.cancel = h.src.RequestFrame(h.onDecoded) }

// onDecoded hops from the decoder side onto the loop.
func (h *Handle) onDecoded(img image.Image) {
	if !h.sched.Post(func() { h.paint(img) }) {
		monitoring.FramesSkipped.Inc()
	}
}

func (h *Handle) paint(img image.Image) {
	if !h.active || !h.live() {
		monitoring.FramesSkipped.Inc()
		return
	}
	if err := h.dst.Draw(img); err != nil {
		monitoring.PaintErrors.Inc()
		h.log.Warn().Err(err).Msg("paint")
	} else {
		h.frames++
		monitoring.FramesPainted.Inc()
	}
	h.arm()
}

// Detach stops the pump, no frame is painted after the call.
func (h *Handle) Detach() {
	if h == nil || !h.active {
		return
	}
	h.active = false
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.log.Debug().Uint64("frames", h.frames).Msg("Render detached")
}

func (h *Handle) Active() bool   { return h != nil && h.active }
func (h *Handle) Source() Source { return h.src }
func (h *Handle) Frames() uint64 { return h.frames }
