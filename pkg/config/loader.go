package config

import (
	"os"
	"path/filepath"

	"github.com/kkyr/fig"
)

const (
	EnvPrefix = "CLOUD_PLAY"
	FileName  = "config.yaml"
)

// LoadConfig loads a configuration file into the given struct.
// The path param specifies a custom path to the configuration file,
// either a directory or a file.
// Reads and puts environment variables with the prefix CLOUD_PLAY_.
// Params from the config should be in uppercase separated with _.
func LoadConfig(config any, path string) error {
	name := FileName
	dirs := []string{path}
	if path == "" {
		dirs = append(dirs, ".", "configs", "../../configs")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, ".cloud-play"))
		}
	} else if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		name, dirs = filepath.Base(path), []string{filepath.Dir(path)}
	}
	return fig.Load(config, fig.File(name), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
}

// LoadConfigEnv fills the struct from the environment and defaults only.
func LoadConfigEnv(config any) error {
	return fig.Load(config, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
}
