package player

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/pflag"
	"github.com/ui-xd/test-stream-sub001/pkg/config"
	"github.com/ui-xd/test-stream-sub001/pkg/config/monitoring"
	"github.com/ui-xd/test-stream-sub001/pkg/config/webrtc"
)

type Config struct {
	Player     Player
	Webrtc     webrtc.Webrtc
	Monitoring monitoring.Config
	Log        Log
}

type Player struct {
	// Relay is the websocket address of the signaling relay.
	Relay string `default:"ws://localhost:8000/ws"`
	Room  string
	// StateDir keeps per-session client state like the intro flag.
	StateDir  string
	Window    Window
	Input     Input
	Reconnect struct {
		Delay time.Duration `default:"2s"`
		Max   time.Duration `default:"30s"`
	}
}

type Window struct {
	Title      string `default:"cloud-play"`
	Width      int    `default:"1280"`
	Height     int    `default:"720"`
	Fullscreen bool
	VSync      bool `default:"true"`
}

type Input struct {
	// ReleaseKey is the SDL key name that gives the pointer back.
	ReleaseKey string `default:"Right Ctrl"`
}

type Log struct {
	Debug   bool
	Console bool `default:"true"`
	NoColor bool
}

// allows custom config path
var configPath string

// NewConfig reads the configuration file and environment,
// a custom path is taken from the --conf flag.
func NewConfig() (conf Config, err error) {
	err = config.LoadConfig(&conf, configPath)
	return
}

// ParseFlags registers the flags, parses args and reloads the config
// with the command line values on top.
func ParseFlags(fs *pflag.FlagSet, args []string) (Config, error) {
	var over Config
	over.WithFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	conf, err := NewConfig()
	if err != nil {
		return Config{}, err
	}
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "relay":
			conf.Player.Relay = over.Player.Relay
		case "room":
			conf.Player.Room = over.Player.Room
		case "state":
			conf.Player.StateDir = over.Player.StateDir
		case "fullscreen":
			conf.Player.Window.Fullscreen = over.Player.Window.Fullscreen
		case "debug":
			conf.Log.Debug = over.Log.Debug
		case "monitoring.port":
			conf.Monitoring.Port = over.Monitoring.Port
		}
	})
	if err = conf.Webrtc.AddIceServersEnv(); err != nil {
		return Config{}, err
	}
	return conf, conf.Validate()
}

func (c *Config) WithFlags(fs *pflag.FlagSet) *Config {
	fs.StringVarP(&configPath, "conf", "c", "", "Set custom configuration file path")
	fs.StringVar(&c.Player.Relay, "relay", "", "Relay websocket address")
	fs.StringVarP(&c.Player.Room, "room", "r", "", "Room id to join")
	fs.StringVar(&c.Player.StateDir, "state", "", "Directory for session state")
	fs.BoolVar(&c.Player.Window.Fullscreen, "fullscreen", false, "Start in fullscreen")
	fs.BoolVarP(&c.Log.Debug, "debug", "d", false, "Verbose logging")
	fs.IntVar(&c.Monitoring.Port, "monitoring.port", 0, "Monitoring server port")
	return c
}

func (c *Config) Validate() error {
	if c.Player.Room == "" {
		return fmt.Errorf("no room id")
	}
	u, err := url.Parse(c.Player.Relay)
	if err != nil {
		return fmt.Errorf("relay address: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("relay address should be ws:// or wss://, got %q", c.Player.Relay)
	}
	return c.Webrtc.Validate()
}
