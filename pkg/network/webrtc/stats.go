package webrtc

import (
	"strings"

	"github.com/pion/interceptor"
	"github.com/ui-xd/test-stream-sub001/pkg/monitoring"
)

// StatsInterceptor counts inbound RTP traffic per media kind.
type StatsInterceptor struct {
	interceptor.NoOp
}

func (i *StatsInterceptor) NewInterceptor(_ string) (interceptor.Interceptor, error) { return i, nil }

// BindRemoteStream wraps the reader of every incoming stream.
func (i *StatsInterceptor) BindRemoteStream(info *interceptor.StreamInfo, reader interceptor.RTPReader) interceptor.RTPReader {
	kind, _, _ := strings.Cut(info.MimeType, "/")
	if kind == "" {
		kind = "unknown"
	}
	packets, bytes := monitoring.RtpPackets.WithLabelValues(kind), monitoring.RtpBytes.WithLabelValues(kind)
	return interceptor.RTPReaderFunc(func(b []byte, a interceptor.Attributes) (int, interceptor.Attributes, error) {
		n, attr, err := reader.Read(b, a)
		if err == nil {
			packets.Inc()
			bytes.Add(float64(n))
		}
		return n, attr, err
	})
}
