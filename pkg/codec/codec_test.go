package codec

import "testing"

func TestFromMime(t *testing.T) {
	tests := []struct {
		mime string
		want VideoCodec
		err  error
	}{
		{mime: "video/VP8", want: VP8},
		{mime: "video/vp9", want: VP9},
		{mime: "video/H264", want: H264},
		{mime: "vp8", want: VP8},
		{mime: "video/AV1", err: ErrUnsupported},
		{mime: "", err: ErrUnsupported},
	}
	for _, test := range tests {
		got, err := FromMime(test.mime)
		if err != test.err || got != test.want {
			t.Errorf("%q: got %v/%v, want %v/%v", test.mime, got, err, test.want, test.err)
		}
	}
}
