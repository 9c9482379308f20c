// Package lock implements the exclusive input mode of a play session:
// pointer capture, full screen and keyboard reservation.
package lock

import (
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
	"github.com/ui-xd/test-stream-sub001/pkg/monitoring"
	"github.com/ui-xd/test-stream-sub001/pkg/platform"
)

type State uint8

const (
	Unlocked State = iota
	Locked
)

func (s State) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}

// Machine tracks the lock state of one surface.
// The platform notifications are the only source of truth,
// user clicks just ask for a change.
type Machine struct {
	capture platform.Capture
	surface platform.SurfaceID
	canLock func() bool
	keys    []platform.Key

	state    State
	keyboard bool

	onLock   []func()
	onUnlock []func()

	log *logger.Logger
}

type Option func(*Machine)

// WithKeys overrides the keys reserved with the keyboard lock.
func WithKeys(keys []platform.Key) Option { return func(m *Machine) { m.keys = keys } }

func WithLogger(log *logger.Logger) Option { return func(m *Machine) { m.log = log } }

// New creates a machine for the surface.
// The canLock func gates the user requests, i.e. no lock without a stream.
func New(capture platform.Capture, surface platform.SurfaceID, canLock func() bool, opts ...Option) *Machine {
	m := &Machine{
		capture: capture,
		surface: surface,
		canLock: canLock,
		keys:    platform.ReservedKeys,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.canLock == nil {
		m.canLock = func() bool { return true }
	}
	return m
}

// OnLock adds a hook called after a confirmed lock.
func (m *Machine) OnLock(fn func()) { m.onLock = append(m.onLock, fn) }

// OnUnlock adds a hook called synchronously when the lock is lost.
func (m *Machine) OnUnlock(fn func()) { m.onUnlock = append(m.onUnlock, fn) }

func (m *Machine) State() State                { return m.state }
func (m *Machine) KeyboardLocked() bool        { return m.keyboard }
func (m *Machine) IsLocked() bool              { return m.state == Locked }
func (m *Machine) Surface() platform.SurfaceID { return m.surface }

// Click handles a user click on the surface.
// It only issues the capture requests, the state is not changed here.
func (m *Machine) Click() {
	if m.state == Locked {
		return
	}
	if !m.canLock() {
		m.log.Debug().Msg("Lock request ignored, no stream")
		return
	}
	if err := m.capture.RequestPointerLock(); err != nil {
		m.log.Warn().Err(err).Msg("Pointer lock request failed")
		return
	}
	if err := m.capture.RequestFullscreen(); err != nil {
		m.log.Warn().Err(err).Msg("Fullscreen request failed")
	}
}

// Release asks the platform to give the pointer back.
func (m *Machine) Release() {
	if m.state == Locked {
		m.capture.ExitPointerLock()
	}
}

// OnPointerLockChange applies the platform report about who holds the pointer.
func (m *Machine) OnPointerLockChange(e platform.PointerLockChange) {
	if e.Owner != platform.NoSurface && e.Owner == m.surface {
		m.lock()
	} else {
		m.unlock()
	}
}

func (m *Machine) lock() {
	if m.state == Locked {
		return
	}
	m.state = Locked
	monitoring.Locked.Set(1)
	if err := m.capture.LockKeyboard(m.keys); err != nil {
		m.log.Warn().Err(err).Msg("Keyboard lock failed")
		m.keyboard = false
	} else {
		m.keyboard = true
	}
	m.log.Debug().Bool("keyboard", m.keyboard).Msg("Locked")
	for _, fn := range m.onLock {
		fn()
	}
}

func (m *Machine) unlock() {
	if m.state == Unlocked {
		return
	}
	m.state = Unlocked
	monitoring.Locked.Set(0)
	for _, fn := range m.onUnlock {
		fn()
	}
	if m.keyboard {
		m.capture.UnlockKeyboard()
	}
	m.keyboard = false
	m.log.Debug().Msg("Unlocked")
}
