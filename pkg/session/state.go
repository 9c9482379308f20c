package session

// StreamState is the media state of a session.
type StreamState uint8

const (
	// Connecting is the initial state, no media yet.
	Connecting StreamState = iota
	// Streaming means a stream is attached and rendered.
	Streaming
	// Offline means the host reported no stream.
	Offline
	// Recovering means a new stream replaces the attached one.
	Recovering
)

func (s StreamState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Offline:
		return "offline"
	case Recovering:
		return "recovering"
	default:
		return "unknown"
	}
}

// HasStream tells if there is a stream to render and to play with.
func (s StreamState) HasStream() bool { return s == Streaming || s == Recovering }

// Prompt is the hint the UI should show over the video.
type Prompt uint8

const (
	PromptNone Prompt = iota
	// PromptIntro explains the controls, shown once per session.
	PromptIntro
	// PromptResume invites to click the video to continue.
	PromptResume
)

func (p Prompt) String() string {
	switch p {
	case PromptNone:
		return "none"
	case PromptIntro:
		return "intro"
	case PromptResume:
		return "resume"
	default:
		return "unknown"
	}
}
