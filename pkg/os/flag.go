package os

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Flag is a persisted one-shot boolean, i.e. "the intro has been shown".
// The state dir defines its scope: a dir tied to the login session
// makes it live as long as that session.
type Flag struct {
	path string
	lock *Flock
}

// SessionDir returns a per-user state dir inside the system temp,
// the OS cleans it up between boots.
func SessionDir() string {
	return filepath.Join(os.TempDir(), "cloud-play-"+strconv.Itoa(os.Getuid()))
}

func NewFlag(dir, name string) (*Flag, error) {
	if dir == "" {
		dir = SessionDir()
	}
	if err := CheckCreateDir(dir); err != nil {
		return nil, fmt.Errorf("flag dir: %w", err)
	}
	path := filepath.Join(dir, name)
	lock, err := NewFileLock(path + ".lock")
	if err != nil {
		return nil, err
	}
	return &Flag{path: path, lock: lock}, nil
}

// Seen tells if the flag was marked before.
func (f *Flag) Seen() bool {
	if err := f.lock.Lock(); err != nil {
		return false
	}
	defer func() { _ = f.lock.Unlock() }()
	return Exists(f.path)
}

// Mark sets the flag, it is never cleared.
func (f *Flag) Mark() error {
	if err := f.lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = f.lock.Unlock() }()
	if Exists(f.path) {
		return nil
	}
	return os.WriteFile(f.path, []byte("1"), 0o644)
}
