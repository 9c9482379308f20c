package input

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ui-xd/test-stream-sub001/pkg/logger"
	"github.com/ui-xd/test-stream-sub001/pkg/platform"
)

type fakeTarget struct{ ev platform.Events }

func (t *fakeTarget) ID() platform.SurfaceID   { return 1 }
func (t *fakeTarget) Events() *platform.Events { return &t.ev }

type fakeSender struct {
	sent [][]byte
	err  error
}

func (s *fakeSender) Send(data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, data)
	return nil
}

func listeners(ev *platform.Events) int {
	return ev.Motion.Len() + ev.Button.Len() + ev.Key.Len()
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{
			name: "key press",
			got:  EncodeKey(platform.KeyEvent{Code: 0x61, Pressed: true, Mod: platform.ModShift | platform.ModCtrl}),
			want: []byte{1, 0, 0, 0, 0x61, 1, 0, 3},
		},
		{
			name: "key release",
			got:  EncodeKey(platform.KeyEvent{Code: 0x01020304}),
			want: []byte{1, 1, 2, 3, 4, 0, 0, 0},
		},
		{
			name: "motion",
			got:  EncodeMotion(platform.Motion{DX: -2, DY: 258}),
			want: []byte{2, 0, 0xff, 0xfe, 0x01, 0x02},
		},
		{
			name: "motion clamp",
			got:  EncodeMotion(platform.Motion{DX: 40000, DY: -40000}),
			want: []byte{2, 0, 0x7f, 0xff, 0x80, 0x00},
		},
		{
			name: "buttons",
			got:  EncodeButtons(platform.Button{Pressed: platform.ButtonLeft | platform.ButtonMiddle}),
			want: []byte{2, 1, 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestMouseForwardsAndDisposes(t *testing.T) {
	target, out := &fakeTarget{}, &fakeSender{}
	m, err := NewMouse(target, out, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	target.ev.Motion.Publish(platform.Motion{DX: 1})
	target.ev.Motion.Publish(platform.Motion{})
	target.ev.Button.Publish(platform.Button{Pressed: platform.ButtonRight})
	if len(out.sent) != 2 {
		t.Fatalf("sent %v packets, want 2", len(out.sent))
	}

	m.Dispose()
	m.Dispose()
	target.ev.Motion.Publish(platform.Motion{DX: 1})
	if len(out.sent) != 2 {
		t.Errorf("disposed mouse forwarded an event")
	}
	if n := listeners(&target.ev); n != 0 {
		t.Errorf("dangling listeners: %v", n)
	}
}

func TestKeyboardReservedKeys(t *testing.T) {
	target, out := &fakeTarget{}, &fakeSender{}
	locked := false
	if _, err := NewKeyboard(target, out, func() bool { return locked }, logger.Nop()); err != nil {
		t.Fatal(err)
	}

	target.ev.Key.Publish(platform.KeyEvent{Key: platform.KeyTab, Pressed: true})
	target.ev.Key.Publish(platform.KeyEvent{Key: "KeyW", Pressed: true})
	target.ev.Key.Publish(platform.KeyEvent{Key: "KeyW", Pressed: true, Repeat: true})
	if len(out.sent) != 1 {
		t.Errorf("sent %v packets without keyboard lock, want 1", len(out.sent))
	}

	locked = true
	target.ev.Key.Publish(platform.KeyEvent{Key: platform.KeyTab, Pressed: true})
	if len(out.sent) != 2 {
		t.Errorf("reserved key wasn't forwarded under keyboard lock")
	}
}

func TestDeviceSendErrorIsSwallowed(t *testing.T) {
	target := &fakeTarget{}
	if _, err := NewMouse(target, &fakeSender{err: errors.New("closed")}, logger.Nop()); err != nil {
		t.Fatal(err)
	}
	target.ev.Motion.Publish(platform.Motion{DX: 1})
}

func TestControllerAtMostOnePair(t *testing.T) {
	target, out := &fakeTarget{}, &fakeSender{}
	c := NewController(nil, logger.Nop())

	if err := c.Init(target, out); err != nil {
		t.Fatal(err)
	}
	if err := c.Init(target, out); err != nil {
		t.Fatal(err)
	}
	if !c.Active() {
		t.Fatalf("controller isn't active")
	}
	if n := listeners(&target.ev); n != 3 {
		t.Errorf("listeners = %v, want a single pair (3)", n)
	}

	target.ev.Motion.Publish(platform.Motion{DX: 1})
	if len(out.sent) != 1 {
		t.Errorf("sent %v packets, want 1", len(out.sent))
	}

	c.Dispose()
	c.Dispose()
	if c.Active() || listeners(&target.ev) != 0 {
		t.Errorf("dispose left active = %v, listeners = %v", c.Active(), listeners(&target.ev))
	}

	if err := c.Init(target, out); err != nil || listeners(&target.ev) != 3 {
		t.Errorf("re-init failed: %v", err)
	}
}

func TestControllerInitFailures(t *testing.T) {
	boom := errors.New("no device api")
	mouseDisposed := false

	tests := []struct {
		name   string
		target Target
		sender Sender
		opts   []Option
		want   error
	}{
		{name: "no surface", sender: &fakeSender{}, want: ErrNoTarget},
		{name: "no transport", target: &fakeTarget{}, want: ErrNoSender},
		{
			name: "keyboard fails", target: &fakeTarget{}, sender: &fakeSender{},
			opts: []Option{WithFactories(
				func(Target, Sender) (Capturer, error) { return disposeFn(func() { mouseDisposed = true }), nil },
				func(Target, Sender) (Capturer, error) { return nil, boom },
			)},
			want: boom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(nil, logger.Nop(), tt.opts...)
			if err := c.Init(tt.target, tt.sender); !errors.Is(err, tt.want) {
				t.Errorf("Init() err = %v, want %v", err, tt.want)
			}
			if c.Active() || c.active {
				t.Errorf("failed init left the controller active")
			}
		})
	}
	if !mouseDisposed {
		t.Errorf("half-built pair wasn't disposed")
	}
}

type disposeFn func()

func (f disposeFn) Dispose() { f() }
