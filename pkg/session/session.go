// Package session ties the transport, the render loop, the lock
// and the input devices of one play attempt together.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/ui-xd/test-stream-sub001/pkg/input"
	"github.com/ui-xd/test-stream-sub001/pkg/lock"
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
	"github.com/ui-xd/test-stream-sub001/pkg/monitoring"
	"github.com/ui-xd/test-stream-sub001/pkg/platform"
	"github.com/ui-xd/test-stream-sub001/pkg/render"
	"github.com/ui-xd/test-stream-sub001/pkg/stream"
	"github.com/ui-xd/test-stream-sub001/pkg/thread"
)

// Session identifies one play attempt.
type Session struct {
	RoomID   string
	Endpoint string
}

// Surface is the display surface of the session.
type Surface interface {
	render.Surface
	input.Target
}

// Flag is the persisted "intro has been shown" mark.
type Flag interface {
	Seen() bool
	Mark() error
}

type Deps struct {
	Sched   thread.Scheduler
	Connect stream.Factory
	Capture platform.Capture
	Flag    Flag
}

var ErrClosed = errors.New("session is closed")

const defaultPlayTimeout = 15 * time.Second

// Orchestrator is the only owner of the session state.
// Every method must be called on the loop of Deps.Sched.
type Orchestrator struct {
	sess    Session
	surface Surface
	deps    Deps

	state     StreamState
	transport stream.Transport
	current   stream.MediaStream
	handle    *render.Handle

	gen        uint64
	cancelPlay context.CancelFunc
	attached   bool

	prompt    Prompt
	lock      *lock.Machine
	input     *input.Controller
	inputOpts []input.Option
	subs      []*platform.Subscription

	onState  []func(StreamState)
	onPrompt []func(Prompt)

	playTimeout time.Duration
	async       func(func())
	closed      bool

	log *logger.Logger
}

type Option func(*Orchestrator)

func WithLogger(log *logger.Logger) Option { return func(o *Orchestrator) { o.log = log } }

// WithPlayTimeout bounds the wait for the first decoded frame.
func WithPlayTimeout(d time.Duration) Option { return func(o *Orchestrator) { o.playTimeout = d } }

// WithAsync replaces the way blocking calls leave the loop (go by default).
func WithAsync(fn func(func())) Option { return func(o *Orchestrator) { o.async = fn } }

// WithInput passes options to the input controller.
func WithInput(opts ...input.Option) Option {
	return func(o *Orchestrator) { o.inputOpts = append(o.inputOpts, opts...) }
}

func New(sess Session, surface Surface, deps Deps, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sess:        sess,
		surface:     surface,
		deps:        deps,
		state:       Connecting,
		playTimeout: defaultPlayTimeout,
		async:       func(fn func()) { go fn() },
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.Extend(o.log.With().Str(logger.RoomField, sess.RoomID))
	o.lock = lock.New(deps.Capture, surface.ID(), func() bool { return o.state.HasStream() },
		lock.WithLogger(o.log.Module("lock")))
	o.input = input.NewController(o.lock.KeyboardLocked, o.log.Module("input"), o.inputOpts...)
	o.lock.OnLock(o.onLock)
	o.lock.OnUnlock(o.onUnlock)

	ev := surface.Events()
	o.subs = append(o.subs,
		ev.Click.Subscribe(func(e platform.Click) {
			if e.Surface == surface.ID() {
				o.lock.Click()
			}
		}),
		ev.PointerLock.Subscribe(o.lock.OnPointerLockChange),
	)
	monitoring.StreamState.Set(float64(o.state))
	return o
}

// Start connects to the room, it does nothing if already connected.
func (o *Orchestrator) Start(roomID string) error {
	if o.closed {
		return ErrClosed
	}
	if o.transport != nil {
		return nil
	}
	o.sess.RoomID = roomID
	tr, err := o.deps.Connect(o.sess.Endpoint, roomID, o.post)
	if err != nil {
		o.log.Error().Err(err).Str("relay", o.sess.Endpoint).Msg("Transport init failed")
		o.setState(Offline)
		return err
	}
	o.transport = tr
	o.log.Info().Str("relay", o.sess.Endpoint).Msg("Transport started")
	return nil
}

// post moves transport notifications onto the loop keeping their order.
func (o *Orchestrator) post(s stream.MediaStream) {
	if !o.deps.Sched.Post(func() { o.OnMediaEvent(s) }) {
		o.log.Debug().Msg("Media event after the loop has stopped")
	}
}

// OnMediaEvent applies a change of the inbound media.
func (o *Orchestrator) OnMediaEvent(s stream.MediaStream) {
	if o.closed {
		return
	}
	if s == nil {
		o.setState(Offline)
		o.stopPlay()
		o.detach()
		o.current = nil
		if err := o.surface.Clear(); err != nil {
			o.log.Warn().Err(err).Msg("Surface clear")
		}
		return
	}
	if o.current == nil {
		o.setState(Streaming)
	} else {
		o.setState(Recovering)
		o.detach()
	}
	o.current = s
	o.play(s)
}

// play waits for the decode target outside the loop.
func (o *Orchestrator) play(s stream.MediaStream) {
	o.stopPlay()
	o.gen++
	gen := o.gen
	video := s.Video()
	if video == nil {
		o.log.Error().Str("stream", s.ID()).Msg("Stream has no video")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.playTimeout)
	o.cancelPlay = cancel
	o.async(func() {
		err := video.Play(ctx)
		if !o.deps.Sched.Post(func() { o.onPlay(gen, s, err) }) {
			cancel()
		}
	})
}

func (o *Orchestrator) onPlay(gen uint64, s stream.MediaStream, err error) {
	if gen != o.gen || o.closed || o.current != s {
		return
	}
	o.stopPlay()
	if err != nil {
		o.log.Error().Err(err).Str("stream", s.ID()).Msg("Play failed")
		return
	}
	h, err := render.Attach(s.Video(), o.surface, o.deps.Sched,
		func() bool { return o.state.HasStream() }, o.log.Module("render"))
	if err != nil {
		o.log.Error().Err(err).Str("stream", s.ID()).Msg("Render attach failed")
		return
	}
	o.handle = h
	o.log.Info().Str("stream", s.ID()).Msg("Playing")
	if o.state == Recovering {
		o.setState(Streaming)
	}
	if !o.attached {
		o.attached = true
		if o.introShown() {
			o.setPrompt(PromptResume)
		} else {
			o.setPrompt(PromptIntro)
		}
	}
}

func (o *Orchestrator) stopPlay() {
	if o.cancelPlay != nil {
		o.cancelPlay()
		o.cancelPlay = nil
	}
}

func (o *Orchestrator) detach() {
	if o.handle != nil {
		o.handle.Detach()
		o.handle = nil
	}
}

func (o *Orchestrator) setState(s StreamState) {
	if o.state == s {
		return
	}
	o.log.Info().Msgf("Stream state %v -> %v", o.state, s)
	o.state = s
	monitoring.StreamState.Set(float64(s))
	monitoring.StreamTransitions.WithLabelValues(s.String()).Inc()
	if s == Streaming && o.lock.IsLocked() && !o.input.Active() {
		o.initInput()
	}
	for _, fn := range o.onState {
		fn(s)
	}
}

func (o *Orchestrator) onLock() {
	o.setPrompt(PromptNone)
	o.initInput()
}

func (o *Orchestrator) onUnlock() {
	o.input.Dispose()
	if o.closed {
		return
	}
	if o.introShown() {
		o.setPrompt(PromptResume)
	} else {
		o.setPrompt(PromptIntro)
	}
}

// initInput makes the device pair, only with a stream and a transport.
func (o *Orchestrator) initInput() {
	if o.state != Streaming || o.surface == nil || o.transport == nil {
		o.log.Debug().Msgf("Input devices deferred, state %v", o.state)
		return
	}
	// errors are logged by the controller, the lock stays
	_ = o.input.Init(o.surface, o.transport)
}

// introShown reads the one-shot flag and marks it,
// so the intro goes out only the first time.
func (o *Orchestrator) introShown() bool {
	if o.deps.Flag == nil {
		return true
	}
	if o.deps.Flag.Seen() {
		return true
	}
	if err := o.deps.Flag.Mark(); err != nil {
		o.log.Warn().Err(err).Msg("Intro flag")
	}
	return false
}

func (o *Orchestrator) setPrompt(p Prompt) {
	if o.prompt == p {
		return
	}
	o.prompt = p
	for _, fn := range o.onPrompt {
		fn(p)
	}
}

// Release gives the captured pointer back.
func (o *Orchestrator) Release() { o.lock.Release() }

// Close tears the session down: devices, render, transport.
func (o *Orchestrator) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	for _, s := range o.subs {
		s.Unsubscribe()
	}
	o.subs = nil
	o.lock.Release()
	o.input.Dispose()
	o.stopPlay()
	o.detach()
	o.current = nil
	var err error
	if o.transport != nil {
		err = o.transport.Close()
		o.transport = nil
	}
	o.log.Info().Msg("Session closed")
	return err
}

func (o *Orchestrator) OnStateChange(fn func(StreamState)) { o.onState = append(o.onState, fn) }
func (o *Orchestrator) OnPrompt(fn func(Prompt))           { o.onPrompt = append(o.onPrompt, fn) }

func (o *Orchestrator) State() StreamState     { return o.state }
func (o *Orchestrator) Prompt() Prompt         { return o.prompt }
func (o *Orchestrator) LockState() lock.State  { return o.lock.State() }
func (o *Orchestrator) KeyboardLocked() bool   { return o.lock.KeyboardLocked() }
func (o *Orchestrator) InputActive() bool      { return o.input.Active() }
func (o *Orchestrator) Session() Session       { return o.sess }
func (o *Orchestrator) Render() *render.Handle { return o.handle }
