// Package relay connects to a game host through a signaling relay.
// Signaling goes over a websocket, media and input over WebRTC.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v3"
	"github.com/ui-xd/test-stream-sub001/pkg/api"
	conf "github.com/ui-xd/test-stream-sub001/pkg/config/webrtc"
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
	"github.com/ui-xd/test-stream-sub001/pkg/media"
	"github.com/ui-xd/test-stream-sub001/pkg/monitoring"
	"github.com/ui-xd/test-stream-sub001/pkg/network"
	rtc "github.com/ui-xd/test-stream-sub001/pkg/network/webrtc"
	"github.com/ui-xd/test-stream-sub001/pkg/network/websocket"
	"github.com/ui-xd/test-stream-sub001/pkg/stream"
)

const dialTimeout = 10 * time.Second

type Options struct {
	Webrtc conf.Webrtc
	// Delay and Max bound the reconnect backoff.
	Delay time.Duration
	Max   time.Duration
}

// Relay is a stream.Transport that keeps reconnecting until closed.
type Relay struct {
	endpoint string
	room     string
	api      *rtc.ApiFactory
	opts     Options
	onMedia  stream.MediaHandler
	log      *logger.Logger

	mu   sync.Mutex
	conn *conn

	notifyMu sync.Mutex
	offline  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewFactory shares one WebRTC API between all the transports it makes.
func NewFactory(opts Options, log *logger.Logger) (stream.Factory, error) {
	factory, err := rtc.NewApiFactory(opts.Webrtc, log,
		func(_ *webrtc.MediaEngine, i *interceptor.Registry, _ *webrtc.SettingEngine) {
			i.Add(&rtc.StatsInterceptor{})
		})
	if err != nil {
		return nil, err
	}
	return func(endpoint, roomID string, onMedia stream.MediaHandler) (stream.Transport, error) {
		return Connect(factory, endpoint, roomID, onMedia, opts, log)
	}, nil
}

// Connect starts connecting in the background. Only a malformed
// endpoint fails here; unreachable relays are reported as no media.
func Connect(factory *rtc.ApiFactory, endpoint, room string, onMedia stream.MediaHandler, opts Options,
	log *logger.Logger) (*Relay, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("relay endpoint should be ws:// or wss://, got %q", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("relay endpoint has no host: %q", endpoint)
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Relay{
		endpoint: endpoint,
		room:     room,
		api:      factory,
		opts:     opts,
		onMedia:  onMedia,
		log:      log.Module("relay"),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go r.supervise()
	return r, nil
}

func (r *Relay) supervise() {
	defer close(r.done)
	retry := network.NewRetry(r.opts.Delay, r.opts.Max)
	for {
		r.log.Info().Str("relay", r.endpoint).Msg("connecting")
		if err := r.serve(&retry); err != nil {
			r.log.Warn().Err(err).Msg("relay")
		}
		r.teardown()
		r.notify(nil)
		if r.ctx.Err() != nil {
			return
		}
		r.log.Info().Msgf("reconnect in %v", retry.Time())
		if !retry.Fail(r.ctx) {
			return
		}
		monitoring.Reconnects.Inc()
	}
}

// serve runs one signaling connection until it breaks.
func (r *Relay) serve(retry *network.Retry) error {
	ctx, cancel := context.WithTimeout(r.ctx, dialTimeout)
	ws, err := websocket.NewClient(ctx, r.endpoint, r.log)
	cancel()
	if err != nil {
		return err
	}
	retry.Success()

	c := newConn(ws, rtc.New(r.log, r.api), r.room, r.log)
	c.peer.OnTrack = r.onTrack
	r.mu.Lock()
	if r.ctx.Err() != nil {
		r.mu.Unlock()
		ws.Close()
		return nil
	}
	r.conn = c
	r.mu.Unlock()

	ws.Listen()
	if err = c.write(api.NewWebrtcInit()); err != nil {
		return err
	}
	select {
	case <-c.lost:
		return c.reason()
	case <-ws.Done:
		return errors.New("signaling connection closed")
	case <-r.ctx.Done():
		return nil
	}
}

func (r *Relay) onTrack(track *webrtc.TrackRemote) {
	switch track.Kind() {
	case webrtc.RTPCodecTypeVideo:
		codec := track.Codec()
		v := media.NewVideo(codec.MimeType, codec.ClockRate, track, media.WithLogger(r.log))
		r.notify(media.NewStream(track.StreamID()+"/"+track.ID(), v))
	default:
		go media.Drain(track)
	}
}

// notify forwards media changes in the order they are seen,
// dropping repeated offline reports.
func (r *Relay) notify(s stream.MediaStream) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	if r.ctx.Err() != nil {
		return
	}
	if s == nil {
		if r.offline {
			return
		}
		r.offline = true
	} else {
		r.offline = false
	}
	r.onMedia(s)
}

func (r *Relay) teardown() {
	r.mu.Lock()
	c := r.conn
	r.conn = nil
	r.mu.Unlock()
	if c != nil {
		c.close()
	}
}

func (r *Relay) Send(data []byte) error {
	if r.ctx.Err() != nil {
		return stream.ErrClosed
	}
	r.mu.Lock()
	c := r.conn
	r.mu.Unlock()
	if c == nil {
		return stream.ErrNotReady
	}
	if err := c.peer.Send(data); err != nil {
		if errors.Is(err, rtc.ErrNoChannel) {
			return stream.ErrNotReady
		}
		return err
	}
	return nil
}

func (r *Relay) Close() error {
	r.once.Do(func() {
		r.cancel()
		r.teardown()
	})
	<-r.done
	return nil
}

// conn is one signaling session with its peer.
type conn struct {
	ws   *websocket.WS
	peer *rtc.Peer
	room string
	log  *logger.Logger

	mu       sync.Mutex
	answered bool
	queue    []api.Out
	started  bool

	lost     chan struct{}
	lostOnce sync.Once
	why      error
}

func newConn(ws *websocket.WS, peer *rtc.Peer, room string, log *logger.Logger) *conn {
	c := &conn{ws: ws, peer: peer, room: room, log: log, lost: make(chan struct{})}
	peer.OnDisconnect = func() { c.drop(errors.New("peer connection lost")) }
	ws.OnMessage = c.handle
	return c
}

func (c *conn) drop(why error) {
	c.lostOnce.Do(func() {
		c.why = why
		close(c.lost)
	})
}

func (c *conn) reason() error { return c.why }

func (c *conn) write(packet api.Out) error {
	b, err := packet.Bytes()
	if err != nil {
		return err
	}
	return c.ws.Write(b)
}

// handle runs on the websocket reader.
func (c *conn) handle(message []byte) {
	in, err := api.Parse(message)
	if err != nil {
		c.log.Warn().Err(err).Msg("bad packet")
		return
	}
	switch in.T {
	case api.InitSession:
		if pack := api.Unwrap[api.InitPack](in.Payload); pack != nil {
			c.peer.SetIceServers(pack.Ice)
		}
	case api.WebrtcOffer:
		var offer string
		if err = json.Unmarshal(in.Payload, &offer); err != nil {
			c.log.Warn().Err(err).Msg("bad offer")
			return
		}
		if err = c.answer(offer); err != nil {
			c.drop(fmt.Errorf("answer: %w", err))
		}
	case api.WebrtcIce:
		var candidate string
		if err = json.Unmarshal(in.Payload, &candidate); err != nil || candidate == "" {
			return
		}
		if err = c.peer.AddCandidate(candidate); err != nil {
			c.log.Warn().Err(err).Msg("ICE candidate")
		}
	case api.StartGame:
		if resp := api.Unwrap[api.StartGameResponse](in.Payload); resp != nil {
			c.log.Info().Str(logger.RoomField, resp.Rid).Msg("joined")
		}
	case api.TerminateSession, api.CloseRoom, api.ErrNoFreeSlots:
		c.drop(fmt.Errorf("host: %v", in.T))
	default:
		c.log.Debug().Msgf("skip %v", in.T)
	}
}

func (c *conn) answer(offer string) error {
	sdp, err := c.peer.Answer(offer, c.onICE)
	if err != nil {
		return err
	}
	if err = c.write(api.NewWebrtcAnswer(sdp)); err != nil {
		return err
	}
	c.mu.Lock()
	c.answered = true
	queue := c.queue
	c.queue = nil
	start := !c.started
	c.started = true
	c.mu.Unlock()
	for _, p := range queue {
		_ = c.write(p)
	}
	if start {
		return c.write(api.NewStartGame(c.room))
	}
	return nil
}

// onICE holds local candidates back until the answer is out.
func (c *conn) onICE(ice *webrtc.ICECandidateInit) {
	if ice == nil {
		return
	}
	enc, err := rtc.Encode(ice)
	if err != nil {
		c.log.Warn().Err(err).Msg("ICE candidate")
		return
	}
	packet := api.NewWebrtcIce(enc)
	c.mu.Lock()
	if !c.answered {
		c.queue = append(c.queue, packet)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	_ = c.write(packet)
}

func (c *conn) close() {
	c.ws.Close()
	c.peer.Disconnect()
}
