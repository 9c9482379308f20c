package input

import (
	"encoding/binary"

	"github.com/ui-xd/test-stream-sub001/pkg/platform"
)

// Device is the first byte of every input packet.
type Device byte

const (
	RetroPad Device = iota
	Keyboard
	Mouse
)

func (d Device) String() string {
	switch d {
	case RetroPad:
		return "retropad"
	case Keyboard:
		return "keyboard"
	case Mouse:
		return "mouse"
	default:
		return "unknown"
	}
}

const (
	MouseMove = iota
	MouseButton
)

// EncodeKey packs a key event.
//
//	[DEV:1][KEY:4][P:1][MOD:2]
func EncodeKey(e platform.KeyEvent) []byte {
	b := make([]byte, 8)
	b[0] = byte(Keyboard)
	binary.BigEndian.PutUint32(b[1:], e.Code)
	if e.Pressed {
		b[5] = 1
	}
	binary.BigEndian.PutUint16(b[6:], uint16(e.Mod))
	return b
}

// EncodeMotion packs a relative pointer move,
// the deltas are clamped into int16.
//
//	[DEV:1][0][dx:2][dy:2]
func EncodeMotion(m platform.Motion) []byte {
	b := make([]byte, 6)
	b[0] = byte(Mouse)
	b[1] = MouseMove
	binary.BigEndian.PutUint16(b[2:], uint16(clamp16(m.DX)))
	binary.BigEndian.PutUint16(b[4:], uint16(clamp16(m.DY)))
	return b
}

// EncodeButtons packs the mouse button mask.
//
//	[DEV:1][1][MASK:1]
func EncodeButtons(e platform.Button) []byte {
	return []byte{byte(Mouse), MouseButton, byte(e.Pressed)}
}

func clamp16(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	}
	return int16(v)
}
