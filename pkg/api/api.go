// Package api defines the signaling packets the player exchanges with a relay.
//
// Each packet is a JSON-encoded object of the following structure:
//
//	id - (optional) a packet id, echoed back in responses;
//	 t - (required) one of the predefined packet types;
//	 p - (optional) packet payload with arbitrary data.
//
// Packets differ by their type, which tells how to unwrap the payload.
//
// Example:
//
//	{"t":4,"p":{"ice":[{"urls":"stun:stun.l.google.com:19302"}]}}
package api

import (
	"encoding/json"
	"errors"
)

type PT uint8

type In struct {
	Id      string          `json:"id,omitempty"`
	T       PT              `json:"t"`
	Payload json.RawMessage `json:"p,omitempty"` // raw for 2-pass unmarshal
}

type Out struct {
	Id      string `json:"id,omitempty"`
	T       PT     `json:"t"`
	Payload any    `json:"p,omitempty"`
}

// Packet codes:
//
//	x, 1xx - user codes
//	2xx - host codes
const (
	InitSession      PT = 4
	WebrtcInit       PT = 100
	WebrtcOffer      PT = 101
	WebrtcAnswer     PT = 102
	WebrtcIce        PT = 103
	StartGame        PT = 104
	QuitGame         PT = 105
	ErrNoFreeSlots   PT = 112
	CloseRoom        PT = 202
	TerminateSession PT = 204
)

func (p PT) String() string {
	switch p {
	case InitSession:
		return "InitSession"
	case WebrtcInit:
		return "WebrtcInit"
	case WebrtcOffer:
		return "WebrtcOffer"
	case WebrtcAnswer:
		return "WebrtcAnswer"
	case WebrtcIce:
		return "WebrtcIce"
	case StartGame:
		return "StartGame"
	case QuitGame:
		return "QuitGame"
	case ErrNoFreeSlots:
		return "ErrNoFreeSlots"
	case CloseRoom:
		return "CloseRoom"
	case TerminateSession:
		return "TerminateSession"
	default:
		return "Unknown"
	}
}

var ErrMalformed = errors.New("malformed")

// Parse decodes the packet envelope, leaving the payload raw.
func Parse(data []byte) (In, error) {
	var in In
	if err := json.Unmarshal(data, &in); err != nil {
		return in, errors.Join(ErrMalformed, err)
	}
	return in, nil
}

func Unwrap[T any](data []byte) *T {
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil
	}
	return out
}

func (o Out) Bytes() ([]byte, error) { return json.Marshal(o) }

// Session-scoped packet builders.

func NewWebrtcInit() Out { return Out{T: WebrtcInit} }

func NewWebrtcAnswer(sdp string) Out { return Out{T: WebrtcAnswer, Payload: sdp} }

func NewWebrtcIce(candidate string) Out { return Out{T: WebrtcIce, Payload: candidate} }

func NewStartGame(room string) Out {
	return Out{T: StartGame, Payload: StartGameRequest{Room: Room{Rid: room}}}
}

func NewQuitGame(room string) Out { return Out{T: QuitGame, Payload: Room{Rid: room}} }
