package webrtc

import (
	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v3"
	conf "github.com/ui-xd/test-stream-sub001/pkg/config/webrtc"
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
)

type ApiFactory struct {
	api  *webrtc.API
	conf webrtc.Configuration
}

type ModApiFun func(m *webrtc.MediaEngine, i *interceptor.Registry, s *webrtc.SettingEngine)

func NewApiFactory(conf conf.Webrtc, log *logger.Logger, mod ModApiFun) (api *ApiFactory, err error) {
	m := &webrtc.MediaEngine{}
	if err = m.RegisterDefaultCodecs(); err != nil {
		return
	}
	i := &interceptor.Registry{}
	if !conf.DisableDefaultInterceptors {
		if err = webrtc.RegisterDefaultInterceptors(m, i); err != nil {
			return
		}
	}
	customLogger := logger.NewPionLogger(log, conf.LogLevel)
	s := webrtc.SettingEngine{LoggerFactory: customLogger}
	if conf.HasPortRange() {
		if err = s.SetEphemeralUDPPortRange(conf.IcePorts.Min, conf.IcePorts.Max); err != nil {
			return
		}
	}
	if conf.HasIceIpMap() {
		s.SetNAT1To1IPs([]string{conf.IceIpMap}, webrtc.ICECandidateTypeHost)
		log.Info().Msgf("The NAT mapping is active for %v", conf.IceIpMap)
	}

	if mod != nil {
		mod(m, i, &s)
	}

	return &ApiFactory{
		api:  webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithInterceptorRegistry(i), webrtc.WithSettingEngine(s)),
		conf: webrtc.Configuration{ICEServers: toICEServers(conf.IceServers)},
	}, err
}

// NewPeer makes a peer connection with the configured ICE servers
// plus the ones a relay handed out for this session.
func (a *ApiFactory) NewPeer(extra ...conf.IceServer) (*webrtc.PeerConnection, error) {
	c := a.conf
	c.ICEServers = append(append([]webrtc.ICEServer{}, a.conf.ICEServers...), toICEServers(extra)...)
	return a.api.NewPeerConnection(c)
}

func toICEServers(servers []conf.IceServer) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, server := range servers {
		out = append(out, webrtc.ICEServer{
			URLs:       []string{server.Urls},
			Username:   server.Username,
			Credential: server.Credential,
		})
	}
	return out
}
