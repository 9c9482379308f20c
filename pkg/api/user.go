package api

import "github.com/ui-xd/test-stream-sub001/pkg/config/webrtc"

type (
	Room struct {
		Rid string `json:"room_id"`
	}
	InitPack struct {
		Ice []webrtc.IceServer `json:"ice"`
	}
	StartGameRequest struct {
		Room
		Game string `json:"game,omitempty"`
	}
	StartGameResponse struct {
		Room
		Av *struct {
			W int `json:"w"`
			H int `json:"h"`
		} `json:"av,omitempty"`
	}
)
