// Package platform describes what the local windowing system
// offers to a play session: a surface, exclusive capture requests
// and a stream of notifications.
package platform

// SurfaceID identifies a display surface.
// NoSurface means "nobody", e.g. pointer capture is not held.
type SurfaceID uint32

const NoSurface SurfaceID = 0

// Key is a physical key code named after the DOM KeyboardEvent.code values.
type Key string

const (
	KeyAltLeft     Key = "AltLeft"
	KeyAltRight    Key = "AltRight"
	KeyTab         Key = "Tab"
	KeyEscape      Key = "Escape"
	KeyContextMenu Key = "ContextMenu"
	KeyMetaLeft    Key = "MetaLeft"
	KeyMetaRight   Key = "MetaRight"
)

// ReservedKeys are the keys the OS would steal from a game
// unless the keyboard lock is held.
var ReservedKeys = []Key{
	KeyAltLeft, KeyAltRight, KeyTab, KeyEscape, KeyContextMenu, KeyMetaLeft, KeyMetaRight,
}

func IsReserved(k Key) bool {
	for _, r := range ReservedKeys {
		if r == k {
			return true
		}
	}
	return false
}

// Capture holds the requests for exclusive input.
// A successful RequestPointerLock only means the request was accepted,
// the lock itself is confirmed with a PointerLockChange notification.
type Capture interface {
	RequestPointerLock() error
	ExitPointerLock()
	RequestFullscreen() error
	LockKeyboard(keys []Key) error
	UnlockKeyboard()
}

// Click is a primary button press on a surface outside of the pointer lock.
type Click struct {
	Surface SurfaceID
	X, Y    int32
}

// PointerLockChange reports the current holder of the pointer capture.
type PointerLockChange struct {
	Owner SurfaceID
}

// Motion is a relative pointer movement.
type Motion struct {
	DX, DY int32
}

type MouseButton uint8

const (
	ButtonLeft MouseButton = 1 << iota
	ButtonRight
	ButtonMiddle
)

// Button carries the full mask of currently pressed mouse buttons.
type Button struct {
	Pressed MouseButton
}

type Modifier uint16

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
	ModNumLock
	ModCapsLock
)

// KeyEvent is a key press or release.
type KeyEvent struct {
	Code    uint32 // native key code sent to the host
	Key     Key
	Pressed bool
	Mod     Modifier
	Repeat  bool
}

// Events groups the notifications a surface emits.
type Events struct {
	Click       Topic[Click]
	PointerLock Topic[PointerLockChange]
	Motion      Topic[Motion]
	Button      Topic[Button]
	Key         Topic[KeyEvent]
	Quit        Topic[struct{}]
}
