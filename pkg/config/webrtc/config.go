package webrtc

import (
	"fmt"
	"strings"

	"github.com/ui-xd/test-stream-sub001/pkg/config"
)

type Webrtc struct {
	DisableDefaultInterceptors bool
	IceServers                 []IceServer
	IcePorts                   struct {
		Min uint16
		Max uint16
	}
	IceIpMap string
	LogLevel int `default:"3"`
}

type IceServer struct {
	Urls       string `json:"urls,omitempty"`
	Username   string `json:"username,omitempty"`
	Credential string `json:"credential,omitempty"`
}

func (w *Webrtc) HasPortRange() bool { return w.IcePorts.Min > 0 && w.IcePorts.Max > 0 }
func (w *Webrtc) HasIceIpMap() bool  { return w.IceIpMap != "" }

// Validate checks that TURN servers come with credentials.
func (w *Webrtc) Validate() error {
	for _, ice := range w.IceServers {
		if strings.HasPrefix(ice.Urls, "turn:") || strings.HasPrefix(ice.Urls, "turns:") {
			if ice.Username == "" || ice.Credential == "" {
				return fmt.Errorf("TURN or TURNS servers should have both username and credential: %+v", ice)
			}
		}
	}
	return nil
}

// AddIceServersEnv overrides up to five ICE servers from the environment,
// i.e. CLOUD_PLAY_ICESERVERS[0]_URLS.
func (w *Webrtc) AddIceServersEnv() error {
	cfg := Webrtc{IceServers: []IceServer{{}, {}, {}, {}, {}}}
	_ = config.LoadConfigEnv(&cfg)
	for i, ice := range cfg.IceServers {
		if ice.Urls == "" {
			continue
		}
		if i > len(w.IceServers)-1 {
			w.IceServers = append(w.IceServers, ice)
		} else {
			w.IceServers[i] = ice
		}
	}
	return w.Validate()
}

// Merge appends servers announced by the relay that are not configured locally.
func (w *Webrtc) Merge(servers []IceServer) {
	for _, s := range servers {
		known := false
		for _, x := range w.IceServers {
			if x.Urls == s.Urls {
				known = true
				break
			}
		}
		if !known && s.Urls != "" {
			w.IceServers = append(w.IceServers, s)
		}
	}
}
