package input

import (
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
)

type (
	MouseFactory    func(Target, Sender) (Capturer, error)
	KeyboardFactory func(Target, Sender) (Capturer, error)
)

// Controller owns at most one live mouse and keyboard pair.
type Controller struct {
	mouse    Capturer
	keyboard Capturer
	active   bool

	newMouse    MouseFactory
	newKeyboard KeyboardFactory

	log *logger.Logger
}

type Option func(*Controller)

// WithFactories replaces the device constructors.
func WithFactories(m MouseFactory, k KeyboardFactory) Option {
	return func(c *Controller) { c.newMouse, c.newKeyboard = m, k }
}

// NewController makes a controller for SDL-like targets.
// The keyboardLocked func tells whether reserved keys may be forwarded.
func NewController(keyboardLocked func() bool, log *logger.Logger, opts ...Option) *Controller {
	c := &Controller{log: log}
	c.newMouse = func(t Target, s Sender) (Capturer, error) {
		return NewMouse(t, s, log.Module("mouse"))
	}
	c.newKeyboard = func(t Target, s Sender) (Capturer, error) {
		return NewKeyboard(t, s, keyboardLocked, log.Module("keyboard"))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init builds the device pair unless it already exists.
// On failure nothing stays alive and the call can be repeated later.
func (c *Controller) Init(t Target, s Sender) error {
	if c.active {
		return nil
	}
	c.active = true
	if err := check(t, s); err != nil {
		c.active = false
		c.log.Error().Err(err).Msg("Input devices init")
		return err
	}
	mouse, err := c.newMouse(t, s)
	if err != nil {
		c.active = false
		c.log.Error().Err(err).Msg("Mouse init")
		return err
	}
	keyboard, err := c.newKeyboard(t, s)
	if err != nil {
		mouse.Dispose()
		c.active = false
		c.log.Error().Err(err).Msg("Keyboard init")
		return err
	}
	c.mouse, c.keyboard = mouse, keyboard
	c.log.Debug().Msg("Input devices are ready")
	return nil
}

// Dispose releases both devices. Repeated calls do nothing.
func (c *Controller) Dispose() {
	if !c.active {
		return
	}
	c.active = false
	mouse, keyboard := c.mouse, c.keyboard
	c.mouse, c.keyboard = nil, nil
	if keyboard != nil {
		keyboard.Dispose()
	}
	if mouse != nil {
		mouse.Dispose()
	}
	c.log.Debug().Msg("Input devices disposed")
}

// Active tells if a device pair is alive.
func (c *Controller) Active() bool { return c.active && c.mouse != nil && c.keyboard != nil }
