package sdl

import (
	"testing"

	"github.com/ui-xd/test-stream-sub001/pkg/platform"
	"github.com/veandco/go-sdl2/sdl"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		sc   sdl.Scancode
		want platform.Key
	}{
		{sdl.SCANCODE_TAB, platform.KeyTab},
		{sdl.SCANCODE_LGUI, platform.KeyMetaLeft},
		{sdl.SCANCODE_A, "KeyA"},
		{sdl.SCANCODE_Z, "KeyZ"},
		{sdl.SCANCODE_1, "Digit1"},
		{sdl.SCANCODE_0, "Digit0"},
		{sdl.SCANCODE_F1, "F1"},
		{sdl.SCANCODE_F12, "F12"},
	}
	for _, test := range tests {
		if got := keyName(test.sc); got != test.want {
			t.Errorf("%v: %v != %v", test.sc, got, test.want)
		}
	}
	for sc := range keyNames {
		if k := keyName(sc); platform.IsReserved(k) != isReservedScancode(sc) {
			t.Errorf("%v reserved mismatch", k)
		}
	}
}

func isReservedScancode(sc sdl.Scancode) bool {
	switch sc {
	case sdl.SCANCODE_LALT, sdl.SCANCODE_RALT, sdl.SCANCODE_TAB, sdl.SCANCODE_ESCAPE,
		sdl.SCANCODE_APPLICATION, sdl.SCANCODE_LGUI, sdl.SCANCODE_RGUI:
		return true
	}
	return false
}

func TestModifiers(t *testing.T) {
	if m := modifiers(sdl.KMOD_LSHIFT | sdl.KMOD_RCTRL); m != platform.ModShift|platform.ModCtrl {
		t.Errorf("got %b", m)
	}
	if m := modifiers(0); m != 0 {
		t.Errorf("got %b", m)
	}
}

func TestButtonBit(t *testing.T) {
	if buttonBit(sdl.BUTTON_LEFT) != platform.ButtonLeft ||
		buttonBit(sdl.BUTTON_RIGHT) != platform.ButtonRight ||
		buttonBit(sdl.BUTTON_MIDDLE) != platform.ButtonMiddle {
		t.Error("wrong mapping")
	}
	if buttonBit(sdl.BUTTON_X1) != 0 {
		t.Error("extra buttons are not sent")
	}
}
