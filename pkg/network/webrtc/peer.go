package webrtc

import (
	"errors"
	"sync"

	"github.com/pion/webrtc/v3"
	conf "github.com/ui-xd/test-stream-sub001/pkg/config/webrtc"
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
)

var ErrNoChannel = errors.New("data channel is not open")

// Peer is the receiving side of a host call: the host offers media
// tracks plus the data channel and the peer answers.
type Peer struct {
	api  *ApiFactory
	conn *webrtc.PeerConnection
	log  *logger.Logger
	ice  []conf.IceServer

	OnTrack      func(track *webrtc.TrackRemote)
	OnDisconnect func()
	OnMessage    func(data []byte)

	mu   sync.Mutex
	d    *webrtc.DataChannel
	open bool
	gone sync.Once
}

func New(log *logger.Logger, api *ApiFactory) *Peer { return &Peer{api: api, log: log} }

// SetIceServers adds session ICE servers. Has effect only before the first Answer.
func (p *Peer) SetIceServers(servers []conf.IceServer) { p.ice = servers }

// Answer applies a remote offer and returns the answer encoded for signaling.
// Repeated offers renegotiate the same connection.
func (p *Peer) Answer(offer string, onICECandidate func(ice *webrtc.ICECandidateInit)) (string, error) {
	var sdp webrtc.SessionDescription
	if err := Decode(offer, &sdp); err != nil {
		return "", err
	}
	if p.conn == nil {
		if err := p.connect(onICECandidate); err != nil {
			return "", err
		}
	}
	if err := p.conn.SetRemoteDescription(sdp); err != nil {
		p.log.Error().Err(err).Msg("Set remote description from host failed")
		return "", err
	}
	p.log.Debug().Msg("Set Remote Description")
	answer, err := p.conn.CreateAnswer(nil)
	if err != nil {
		return "", err
	}
	if err = p.conn.SetLocalDescription(answer); err != nil {
		return "", err
	}
	p.log.Debug().Msg("Created Answer")
	return Encode(answer)
}

func (p *Peer) connect(onICECandidate func(ice *webrtc.ICECandidateInit)) (err error) {
	p.log.Debug().Msg("WebRTC start")
	if p.conn, err = p.api.NewPeer(p.ice...); err != nil {
		return
	}
	for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeVideo, webrtc.RTPCodecTypeAudio} {
		if _, err = p.conn.AddTransceiverFromKind(kind,
			webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly}); err != nil {
			return
		}
	}
	p.conn.OnICECandidate(p.handleICECandidate(onICECandidate))
	p.conn.OnICEConnectionStateChange(p.handleICEState)
	p.conn.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		p.log.Debug().Str("id", track.ID()).Str("codec", track.Codec().MimeType).Msg("Track")
		if p.OnTrack != nil {
			p.OnTrack(track)
		}
	})
	p.conn.OnDataChannel(p.handleDataChannel)
	return
}

func (p *Peer) handleICECandidate(callback func(*webrtc.ICECandidateInit)) func(*webrtc.ICECandidate) {
	return func(ice *webrtc.ICECandidate) {
		// ICE gathering finish condition
		if ice == nil {
			callback(nil)
			p.log.Debug().Msg("ICE gathering was complete probably")
			return
		}
		candidate := ice.ToJSON()
		p.log.Debug().Str("candidate", candidate.Candidate).Msg("ICE")
		callback(&candidate)
	}
}

func (p *Peer) handleICEState(state webrtc.ICEConnectionState) {
	p.log.Debug().Str(".state", state.String()).Msg("ICE")
	switch state {
	case webrtc.ICEConnectionStateConnected:
		p.log.Info().Msg("Connected")
	case webrtc.ICEConnectionStateFailed:
		p.log.Error().Msgf("WebRTC connection fail! connection: %v, ice: %v, gathering: %v, signalling: %v",
			p.conn.ConnectionState(), p.conn.ICEConnectionState(), p.conn.ICEGatheringState(),
			p.conn.SignalingState())
		p.lost()
	case webrtc.ICEConnectionStateClosed,
		webrtc.ICEConnectionStateDisconnected:
		p.lost()
	}
}

func (p *Peer) lost() {
	p.gone.Do(func() {
		if p.OnDisconnect != nil {
			p.OnDisconnect()
		}
	})
}

// handleDataChannel takes the input channel the host created.
func (p *Peer) handleDataChannel(ch *webrtc.DataChannel) {
	p.log.Debug().Str("label", ch.Label()).Msg("Data channel")
	ch.OnOpen(func() {
		p.mu.Lock()
		p.d, p.open = ch, true
		p.mu.Unlock()
		p.log.Debug().Str("label", ch.Label()).Msg("Data channel [input] opened")
	})
	ch.OnClose(func() {
		p.mu.Lock()
		if p.d == ch {
			p.open = false
		}
		p.mu.Unlock()
		p.log.Debug().Msg("Data channel [input] has been closed")
	})
	ch.OnError(func(err error) { p.log.Error().Err(err).Msg("Data channel") })
	ch.OnMessage(func(m webrtc.DataChannelMessage) {
		if len(m.Data) == 0 {
			return
		}
		if p.OnMessage != nil {
			p.OnMessage(m.Data)
		}
	})
}

func (p *Peer) Send(data []byte) error {
	p.mu.Lock()
	d, open := p.d, p.open
	p.mu.Unlock()
	if !open {
		return ErrNoChannel
	}
	return d.Send(data)
}

func (p *Peer) AddCandidate(candidate string) error {
	if p.conn == nil {
		return errors.New("no connection")
	}
	var iceCandidate webrtc.ICECandidateInit
	if err := Decode(candidate, &iceCandidate); err != nil {
		return err
	}
	if err := p.conn.AddICECandidate(iceCandidate); err != nil {
		return err
	}
	p.log.Debug().Str("candidate", iceCandidate.Candidate).Msg("Ice")
	return nil
}

func (p *Peer) Disconnect() {
	if p.conn == nil {
		return
	}
	if p.conn.ConnectionState() < webrtc.PeerConnectionStateClosed {
		// ignore this due to DTLS fatal: conn is closed
		_ = p.conn.Close()
	}
	p.log.Debug().Msg("WebRTC stop")
}
