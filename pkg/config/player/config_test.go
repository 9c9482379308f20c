package player

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/ui-xd/test-stream-sub001/pkg/config/webrtc"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		room    string
		relay   string
		ice     []webrtc.IceServer
		wantErr bool
	}{
		{name: "ok", room: "r1", relay: "ws://localhost:8000/ws"},
		{name: "tls", room: "r1", relay: "wss://relay.example.com/ws"},
		{name: "no room", relay: "ws://localhost:8000/ws", wantErr: true},
		{name: "http relay", room: "r1", relay: "http://localhost:8000", wantErr: true},
		{name: "turn without creds", room: "r1", relay: "ws://x/ws",
			ice: []webrtc.IceServer{{Urls: "turn:turn.example.com:3478"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{}
			c.Player.Room = tt.room
			c.Player.Relay = tt.relay
			c.Webrtc.IceServers = tt.ice
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseFlagsOverrides(t *testing.T) {
	t.Setenv("CLOUD_PLAY_PLAYER_ROOM", "from-env")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	conf, err := ParseFlags(fs, []string{"--conf", "../../../configs/config.yaml", "--room", "from-flag", "-d"})
	if err != nil {
		t.Fatal(err)
	}
	if conf.Player.Room != "from-flag" {
		t.Errorf("room = %q, want from-flag", conf.Player.Room)
	}
	if !conf.Log.Debug {
		t.Errorf("debug flag was ignored")
	}
	if conf.Player.Relay != "ws://localhost:8000/ws" {
		t.Errorf("relay = %q, want the file value", conf.Player.Relay)
	}
}
