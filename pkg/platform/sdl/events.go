package sdl

import (
	"strconv"

	"github.com/ui-xd/test-stream-sub001/pkg/platform"
	"github.com/veandco/go-sdl2/sdl"
)

// Pump reports a pending lock change and then every queued SDL event.
func (win *Window) Pump() {
	if c := win.lockChange; c != nil {
		win.lockChange = nil
		win.events.PointerLock.Publish(*c)
	}
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		win.dispatch(ev)
	}
}

func (win *Window) dispatch(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		win.events.Quit.Publish(struct{}{})
	case *sdl.WindowEvent:
		if e.WindowID != uint32(win.id) {
			return
		}
		switch e.Event {
		case sdl.WINDOWEVENT_FOCUS_LOST:
			win.ExitPointerLock()
		case sdl.WINDOWEVENT_CLOSE:
			win.events.Quit.Publish(struct{}{})
		}
	case *sdl.MouseMotionEvent:
		if win.locked {
			win.events.Motion.Publish(platform.Motion{DX: e.XRel, DY: e.YRel})
		}
	case *sdl.MouseButtonEvent:
		win.onButton(e)
	case *sdl.KeyboardEvent:
		win.onKey(e)
	}
}

func (win *Window) onButton(e *sdl.MouseButtonEvent) {
	pressed := e.State == sdl.PRESSED
	if !win.locked {
		if pressed && e.Button == sdl.BUTTON_LEFT && e.WindowID == uint32(win.id) {
			win.events.Click.Publish(platform.Click{Surface: win.id, X: e.X, Y: e.Y})
		}
		return
	}
	bit := buttonBit(e.Button)
	if bit == 0 {
		return
	}
	if pressed {
		win.buttons |= bit
	} else {
		win.buttons &^= bit
	}
	win.events.Button.Publish(platform.Button{Pressed: win.buttons})
}

func (win *Window) onKey(e *sdl.KeyboardEvent) {
	if !win.locked {
		return
	}
	pressed := e.Type == sdl.KEYDOWN
	if e.Keysym.Scancode == win.releaseKey {
		if pressed {
			win.ExitPointerLock()
		}
		return
	}
	win.events.Key.Publish(platform.KeyEvent{
		Code:    uint32(e.Keysym.Sym),
		Key:     keyName(e.Keysym.Scancode),
		Pressed: pressed,
		Mod:     modifiers(e.Keysym.Mod),
		Repeat:  e.Repeat != 0,
	})
}

func buttonBit(b uint8) platform.MouseButton {
	switch b {
	case sdl.BUTTON_LEFT:
		return platform.ButtonLeft
	case sdl.BUTTON_RIGHT:
		return platform.ButtonRight
	case sdl.BUTTON_MIDDLE:
		return platform.ButtonMiddle
	}
	return 0
}

func modifiers(m uint16) (mod platform.Modifier) {
	for _, x := range []struct {
		sdl uint16
		mod platform.Modifier
	}{
		{sdl.KMOD_SHIFT, platform.ModShift},
		{sdl.KMOD_CTRL, platform.ModCtrl},
		{sdl.KMOD_ALT, platform.ModAlt},
		{sdl.KMOD_GUI, platform.ModMeta},
		{sdl.KMOD_NUM, platform.ModNumLock},
		{sdl.KMOD_CAPS, platform.ModCapsLock},
	} {
		if m&x.sdl != 0 {
			mod |= x.mod
		}
	}
	return
}

var keyNames = map[sdl.Scancode]platform.Key{
	sdl.SCANCODE_LALT:        platform.KeyAltLeft,
	sdl.SCANCODE_RALT:        platform.KeyAltRight,
	sdl.SCANCODE_TAB:         platform.KeyTab,
	sdl.SCANCODE_ESCAPE:      platform.KeyEscape,
	sdl.SCANCODE_APPLICATION: platform.KeyContextMenu,
	sdl.SCANCODE_LGUI:        platform.KeyMetaLeft,
	sdl.SCANCODE_RGUI:        platform.KeyMetaRight,
	sdl.SCANCODE_RETURN:      "Enter",
	sdl.SCANCODE_SPACE:       "Space",
	sdl.SCANCODE_BACKSPACE:   "Backspace",
	sdl.SCANCODE_LSHIFT:      "ShiftLeft",
	sdl.SCANCODE_RSHIFT:      "ShiftRight",
	sdl.SCANCODE_LCTRL:       "ControlLeft",
	sdl.SCANCODE_RCTRL:       "ControlRight",
	sdl.SCANCODE_UP:          "ArrowUp",
	sdl.SCANCODE_DOWN:        "ArrowDown",
	sdl.SCANCODE_LEFT:        "ArrowLeft",
	sdl.SCANCODE_RIGHT:       "ArrowRight",
}

// keyName maps a physical key to its DOM code name.
func keyName(sc sdl.Scancode) platform.Key {
	if k, ok := keyNames[sc]; ok {
		return k
	}
	switch {
	case sc >= sdl.SCANCODE_A && sc <= sdl.SCANCODE_Z:
		return platform.Key("Key" + string(rune('A'+sc-sdl.SCANCODE_A)))
	case sc >= sdl.SCANCODE_1 && sc <= sdl.SCANCODE_9:
		return platform.Key("Digit" + string(rune('1'+sc-sdl.SCANCODE_1)))
	case sc == sdl.SCANCODE_0:
		return "Digit0"
	case sc >= sdl.SCANCODE_F1 && sc <= sdl.SCANCODE_F12:
		return platform.Key("F" + strconv.Itoa(int(sc-sdl.SCANCODE_F1)+1))
	}
	return platform.Key(sdl.GetScancodeName(sc))
}
