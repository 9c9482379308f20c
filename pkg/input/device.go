package input

import (
	"errors"

	"github.com/ui-xd/test-stream-sub001/pkg/logger"
	"github.com/ui-xd/test-stream-sub001/pkg/monitoring"
	"github.com/ui-xd/test-stream-sub001/pkg/platform"
)

var (
	ErrNoTarget = errors.New("no display surface")
	ErrNoSender = errors.New("no transport")
)

// Sender delivers packets to the host.
type Sender interface {
	Send(data []byte) error
}

// Target is a display surface that emits input events.
type Target interface {
	ID() platform.SurfaceID
	Events() *platform.Events
}

// Capturer is a live capture object bound to a surface and a transport.
type Capturer interface {
	Dispose()
}

// device holds the shared part of the capture objects.
type device struct {
	kind     Device
	out      Sender
	subs     []*platform.Subscription
	disposed bool
	log      *logger.Logger
}

func (d *device) send(data []byte) {
	if d.disposed {
		return
	}
	if err := d.out.Send(data); err != nil {
		monitoring.InputErrors.WithLabelValues(d.kind.String()).Inc()
		d.log.Debug().Err(err).Msgf("%v send", d.kind)
		return
	}
	monitoring.InputEvents.WithLabelValues(d.kind.String()).Inc()
}

// Dispose stops forwarding first and then detaches the listeners.
// Repeated calls do nothing.
func (d *device) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	for _, s := range d.subs {
		s.Unsubscribe()
	}
	d.subs = nil
}

func (d *device) Disposed() bool { return d.disposed }

func check(t Target, s Sender) error {
	if t == nil || t.Events() == nil {
		return ErrNoTarget
	}
	if s == nil {
		return ErrNoSender
	}
	return nil
}

// MouseDevice forwards relative motion and the button mask.
type MouseDevice struct{ device }

func NewMouse(t Target, s Sender, log *logger.Logger) (*MouseDevice, error) {
	if err := check(t, s); err != nil {
		return nil, err
	}
	m := &MouseDevice{device{kind: Mouse, out: s, log: log}}
	ev := t.Events()
	m.subs = append(m.subs,
		ev.Motion.Subscribe(func(e platform.Motion) {
			if e.DX == 0 && e.DY == 0 {
				return
			}
			m.send(EncodeMotion(e))
		}),
		ev.Button.Subscribe(func(e platform.Button) { m.send(EncodeButtons(e)) }),
	)
	return m, nil
}

// KeyboardDevice forwards key presses and releases.
// Reserved keys go through only while the keyboard lock is held.
type KeyboardDevice struct {
	device
	reserved func() bool
}

func NewKeyboard(t Target, s Sender, keyboardLocked func() bool, log *logger.Logger) (*KeyboardDevice, error) {
	if err := check(t, s); err != nil {
		return nil, err
	}
	if keyboardLocked == nil {
		keyboardLocked = func() bool { return false }
	}
	k := &KeyboardDevice{device: device{kind: Keyboard, out: s, log: log}, reserved: keyboardLocked}
	k.subs = append(k.subs, t.Events().Key.Subscribe(k.handle))
	return k, nil
}

func (k *KeyboardDevice) handle(e platform.KeyEvent) {
	if e.Repeat {
		return
	}
	if platform.IsReserved(e.Key) && !k.reserved() {
		return
	}
	k.send(EncodeKey(e))
}
