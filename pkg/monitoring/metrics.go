package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cloud_play"

var (
	FramesPainted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "render", Name: "frames_painted_total",
		Help: "Video frames copied onto the display surface.",
	})
	FramesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "render", Name: "frames_skipped_total",
		Help: "Decoded frames dropped because the pump was no longer live.",
	})
	PaintErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "render", Name: "paint_errors_total",
		Help: "Failed surface paints.",
	})
	FramesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "media", Name: "frames_decoded_total",
		Help: "Video frames produced by the decoder.",
	})
	DecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "media", Name: "decode_errors_total",
		Help: "Video samples the decoder rejected.",
	})
	StreamState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "session", Name: "stream_state",
		Help: "Current stream state (0 connecting, 1 streaming, 2 offline, 3 recovering).",
	})
	StreamTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "session", Name: "stream_transitions_total",
		Help: "Stream state transitions by target state.",
	}, []string{"state"})
	Locked = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "lock", Name: "locked",
		Help: "1 while the pointer is captured by the session surface.",
	})
	InputEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "input", Name: "events_total",
		Help: "Input events forwarded to the host by device.",
	}, []string{"device"})
	InputErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "input", Name: "send_errors_total",
		Help: "Input events the transport failed to send by device.",
	}, []string{"device"})
	RtpPackets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "webrtc", Name: "rtp_packets_total",
		Help: "Inbound RTP packets by media kind.",
	}, []string{"kind"})
	RtpBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "webrtc", Name: "rtp_bytes_total",
		Help: "Inbound RTP bytes by media kind.",
	}, []string{"kind"})
	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "relay", Name: "reconnects_total",
		Help: "Transport reconnect attempts.",
	})
)
