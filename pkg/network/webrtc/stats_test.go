package webrtc

import (
	"testing"

	"github.com/pion/interceptor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ui-xd/test-stream-sub001/pkg/monitoring"
)

func TestStatsInterceptor(t *testing.T) {
	i := &StatsInterceptor{}
	before := testutil.ToFloat64(monitoring.RtpPackets.WithLabelValues("video"))
	bytesBefore := testutil.ToFloat64(monitoring.RtpBytes.WithLabelValues("video"))

	r := i.BindRemoteStream(&interceptor.StreamInfo{MimeType: "video/VP8"},
		interceptor.RTPReaderFunc(func(b []byte, a interceptor.Attributes) (int, interceptor.Attributes, error) {
			return 100, a, nil
		}))
	for k := 0; k < 3; k++ {
		if _, _, err := r.Read(make([]byte, 1500), nil); err != nil {
			t.Fatal(err)
		}
	}
	if got := testutil.ToFloat64(monitoring.RtpPackets.WithLabelValues("video")) - before; got != 3 {
		t.Errorf("packets %v", got)
	}
	if got := testutil.ToFloat64(monitoring.RtpBytes.WithLabelValues("video")) - bytesBefore; got != 300 {
		t.Errorf("bytes %v", got)
	}
}
