// Package sdl is the desktop platform: an SDL2 window that shows the
// video and captures the mouse and keyboard for a play session.
// All calls must come from the thread that created the window.
package sdl

import (
	"errors"
	"fmt"
	"image"

	"github.com/ui-xd/test-stream-sub001/pkg/logger"
	"github.com/ui-xd/test-stream-sub001/pkg/platform"
	"github.com/ui-xd/test-stream-sub001/pkg/render"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/draw"
)

const hintGrabKeyboard = "SDL_GRAB_KEYBOARD"

type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	// ReleaseKey is an SDL scancode name, e.g. "Right Ctrl".
	ReleaseKey string
}

type Window struct {
	id  platform.SurfaceID
	w   *sdl.Window
	r   *sdl.Renderer
	yuv *sdl.Texture
	rgb *sdl.Texture
	buf *image.RGBA

	overlay     *sdl.Texture
	overlayRect sdl.Rect
	painted     bool

	width, height int32

	conf       Config
	releaseKey sdl.Scancode
	events     platform.Events

	locked     bool
	fullscreen bool
	buttons    platform.MouseButton
	lockChange *platform.PointerLockChange

	log *logger.Logger
}

func New(conf Config, log *logger.Logger) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL init: %w", err)
	}
	win := &Window{conf: conf, log: log.Module("sdl"), width: int32(conf.Width), height: int32(conf.Height)}
	var err error
	win.w, err = sdl.CreateWindow(conf.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		win.width, win.height,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_ALLOW_HIGHDPI)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL window: %w", err)
	}
	flags := uint32(sdl.RENDERER_ACCELERATED)
	if conf.VSync {
		flags |= sdl.RENDERER_PRESENTVSYNC
	}
	if win.r, err = sdl.CreateRenderer(win.w, -1, flags); err != nil {
		win.Close()
		return nil, fmt.Errorf("SDL renderer: %w", err)
	}
	id, err := win.w.GetID()
	if err != nil {
		win.Close()
		return nil, err
	}
	win.id = platform.SurfaceID(id)
	if win.releaseKey = sdl.GetScancodeFromName(conf.ReleaseKey); win.releaseKey == sdl.SCANCODE_UNKNOWN {
		win.log.Warn().Msgf("unknown release key %q, using Right Ctrl", conf.ReleaseKey)
		win.releaseKey = sdl.SCANCODE_RCTRL
	}
	if err = win.r.SetLogicalSize(win.width, win.height); err != nil {
		win.log.Warn().Err(err).Msg("logical size")
	}
	win.log.Info().Msgf("window %v (%vx%v)", win.id, win.width, win.height)
	return win, nil
}

func (win *Window) ID() platform.SurfaceID   { return win.id }
func (win *Window) Events() *platform.Events { return &win.events }
func (win *Window) SetTitle(title string)    { win.w.SetTitle(title) }
func (win *Window) Size() (w, h int)         { return int(win.width), int(win.height) }
func (win *Window) PointerLocked() bool      { return win.locked }
func (win *Window) ReleaseKeyName() string   { return sdl.GetScancodeName(win.releaseKey) }

// Resize sets the picture size, the window keeps its size and letterboxes.
func (win *Window) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("bad size %vx%v", w, h)
	}
	win.dropTextures()
	win.width, win.height = int32(w), int32(h)
	return win.r.SetLogicalSize(win.width, win.height)
}

func (win *Window) Draw(img image.Image) (err error) {
	b := img.Bounds()
	if int32(b.Dx()) != win.width || int32(b.Dy()) != win.height {
		if err = win.Resize(b.Dx(), b.Dy()); err != nil {
			return
		}
	}
	var tex *sdl.Texture
	if yuv, ok := img.(*image.YCbCr); ok && yuv.SubsampleRatio == image.YCbCrSubsampleRatio420 && b.Min == (image.Point{}) {
		tex, err = win.drawYUV(yuv)
	} else {
		tex, err = win.drawRGBA(img)
	}
	if err != nil {
		return
	}
	if err = win.r.Clear(); err != nil {
		return
	}
	if err = win.r.Copy(tex, nil, nil); err != nil {
		return
	}
	win.drawOverlay()
	win.r.Present()
	win.painted = true
	return nil
}

// SetOverlay shows a text line over the picture, empty text hides it.
func (win *Window) SetOverlay(text string) error {
	if win.overlay != nil {
		_ = win.overlay.Destroy()
		win.overlay = nil
	}
	if img := render.Label(text); img != nil {
		b := img.Bounds()
		tex, err := win.r.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, int32(b.Dx()), int32(b.Dy()))
		if err != nil {
			return err
		}
		if err = tex.SetBlendMode(sdl.BLENDMODE_BLEND); err != nil {
			win.log.Warn().Err(err).Msg("overlay blend")
		}
		if err = copyRGBA(tex, img); err != nil {
			_ = tex.Destroy()
			return err
		}
		win.overlay = tex
		win.overlayRect = sdl.Rect{X: 8, Y: 8, W: int32(b.Dx()), H: int32(b.Dy())}
	}
	if !win.painted {
		return win.Clear()
	}
	return nil
}

func (win *Window) drawOverlay() {
	if win.overlay == nil {
		return
	}
	if err := win.r.Copy(win.overlay, nil, &win.overlayRect); err != nil {
		win.log.Debug().Err(err).Msg("overlay")
	}
}

func copyRGBA(tex *sdl.Texture, img *image.RGBA) error {
	pixels, pitch, err := tex.Lock(nil)
	if err != nil {
		return err
	}
	row := img.Bounds().Dx() * 4
	for y := 0; y < img.Bounds().Dy(); y++ {
		copy(pixels[y*pitch:y*pitch+row], img.Pix[y*img.Stride:])
	}
	tex.Unlock()
	return nil
}

func (win *Window) drawYUV(img *image.YCbCr) (*sdl.Texture, error) {
	if win.yuv == nil {
		tex, err := win.r.CreateTexture(sdl.PIXELFORMAT_IYUV, sdl.TEXTUREACCESS_STREAMING, win.width, win.height)
		if err != nil {
			return nil, err
		}
		win.yuv = tex
	}
	return win.yuv, win.yuv.UpdateYUV(nil, img.Y, img.YStride, img.Cb, img.CStride, img.Cr, img.CStride)
}

func (win *Window) drawRGBA(img image.Image) (*sdl.Texture, error) {
	if win.rgb == nil {
		tex, err := win.r.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, win.width, win.height)
		if err != nil {
			return nil, err
		}
		win.rgb = tex
		win.buf = image.NewRGBA(image.Rect(0, 0, int(win.width), int(win.height)))
	}
	draw.Draw(win.buf, win.buf.Bounds(), img, img.Bounds().Min, draw.Src)
	return win.rgb, copyRGBA(win.rgb, win.buf)
}

func (win *Window) Clear() error {
	if err := win.r.SetDrawColor(0, 0, 0, 255); err != nil {
		return err
	}
	if err := win.r.Clear(); err != nil {
		return err
	}
	win.drawOverlay()
	win.r.Present()
	win.painted = false
	return nil
}

func (win *Window) dropTextures() {
	for _, t := range []*sdl.Texture{win.yuv, win.rgb} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	win.yuv, win.rgb, win.buf = nil, nil, nil
}

// RequestPointerLock switches to relative mouse mode.
// The lock is reported on the next Pump.
func (win *Window) RequestPointerLock() error {
	if sdl.SetRelativeMouseMode(true) < 0 {
		return fmt.Errorf("pointer lock: %v", sdl.GetError())
	}
	win.locked = true
	win.lockChange = &platform.PointerLockChange{Owner: win.id}
	return nil
}

func (win *Window) ExitPointerLock() {
	if !win.locked {
		return
	}
	sdl.SetRelativeMouseMode(false)
	win.w.SetGrab(false)
	if win.fullscreen {
		if err := win.w.SetFullscreen(0); err != nil {
			win.log.Warn().Err(err).Msg("leave fullscreen")
		}
		win.fullscreen = false
	}
	win.locked = false
	win.buttons = 0
	win.lockChange = &platform.PointerLockChange{Owner: platform.NoSurface}
}

func (win *Window) RequestFullscreen() error {
	if !win.conf.Fullscreen || win.fullscreen {
		return nil
	}
	if err := win.w.SetFullscreen(sdl.WINDOW_FULLSCREEN_DESKTOP); err != nil {
		return err
	}
	win.fullscreen = true
	return nil
}

// LockKeyboard grabs the whole keyboard, SDL can't reserve single keys.
func (win *Window) LockKeyboard([]platform.Key) error {
	if !sdl.SetHint(hintGrabKeyboard, "1") {
		return errors.New("keyboard grab is not supported")
	}
	win.w.SetGrab(true)
	return nil
}

func (win *Window) UnlockKeyboard() { win.w.SetGrab(false) }

func (win *Window) Close() {
	if win.locked {
		sdl.SetRelativeMouseMode(false)
	}
	win.dropTextures()
	if win.overlay != nil {
		_ = win.overlay.Destroy()
	}
	if win.r != nil {
		_ = win.r.Destroy()
	}
	if win.w != nil {
		if err := win.w.Destroy(); err != nil {
			win.log.Warn().Err(err).Msg("couldn't destroy the window")
		}
	}
	sdl.Quit()
}
