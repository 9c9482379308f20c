package vpx

import (
	"testing"

	"github.com/ui-xd/test-stream-sub001/pkg/codec"
)

func TestNewDecoderUnsupported(t *testing.T) {
	if _, err := NewDecoder(codec.H264); err != codec.ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestDecodeEmpty(t *testing.T) {
	d, err := NewDecoder(codec.VP8)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = d.Close() }()
	if _, err = d.Decode(nil); err != codec.ErrSkip {
		t.Errorf("expected ErrSkip, got %v", err)
	}
}
