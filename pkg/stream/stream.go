// Package stream defines the contract of the transport that brings
// the host's media to the client and carries input back.
package stream

import (
	"context"
	"errors"

	"github.com/ui-xd/test-stream-sub001/pkg/render"
)

var (
	ErrNotReady = errors.New("transport is not ready")
	ErrClosed   = errors.New("transport is closed")
)

// Video is a decode target: a frame source that must be played first.
type Video interface {
	render.Source
	// Play blocks until the first frame is decoded and the native
	// size is known.
	Play(ctx context.Context) error
}

// MediaStream is a handle to the live tracks of the host.
type MediaStream interface {
	ID() string
	Video() Video
}

// Transport is one connection to the remote host.
type Transport interface {
	// Send forwards an input packet to the host.
	Send(data []byte) error
	Close() error
}

// MediaHandler is notified every time the inbound media changes:
// a new stream, a replacing stream or nil when the host has no stream.
// Calls are made in the order the transport observes the changes.
type MediaHandler func(s MediaStream)

// Factory connects to the host of a room through a relay.
type Factory func(endpoint, roomID string, onMedia MediaHandler) (Transport, error)
