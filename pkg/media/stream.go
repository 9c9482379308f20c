package media

import "github.com/ui-xd/test-stream-sub001/pkg/stream"

// Stream is a set of host tracks of which only video is decoded.
type Stream struct {
	id    string
	video *Video
}

func NewStream(id string, video *Video) *Stream { return &Stream{id: id, video: video} }

func (s *Stream) ID() string { return s.id }

func (s *Stream) Video() stream.Video { return s.video }
