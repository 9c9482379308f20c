package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConf struct {
	Player struct {
		Room  string
		Relay string        `default:"ws://localhost/ws"`
		Delay time.Duration `default:"2s"`
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("player:\n  room: abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var conf testConf
	if err := LoadConfig(&conf, path); err != nil {
		t.Fatal(err)
	}
	if conf.Player.Room != "abc" {
		t.Errorf("room = %q, want abc", conf.Player.Room)
	}
	if conf.Player.Relay != "ws://localhost/ws" || conf.Player.Delay != 2*time.Second {
		t.Errorf("defaults were not applied: %+v", conf.Player)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("CLOUD_PLAY_PLAYER_ROOM", "env-room")

	var conf testConf
	if err := LoadConfigEnv(&conf); err != nil {
		t.Fatal(err)
	}
	if conf.Player.Room != "env-room" {
		t.Errorf("room = %q, want env-room", conf.Player.Room)
	}
}
