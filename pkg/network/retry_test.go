package network

import (
	"context"
	"testing"
	"time"
)

func TestRetryBackoff(t *testing.T) {
	r := NewRetry(time.Millisecond, 4*time.Millisecond)
	want := []time.Duration{2, 4, 4}
	for i, w := range want {
		if !r.Fail(context.Background()) {
			t.Fatal("unexpected cancel")
		}
		if r.Time() != w*time.Millisecond {
			t.Errorf("step %d: %v != %v", i, r.Time(), w*time.Millisecond)
		}
	}
	if !r.Failed() {
		t.Error("should be failed")
	}
	r.Success()
	if r.Failed() || r.Time() != time.Millisecond {
		t.Errorf("not reset: %v", r.Time())
	}
}

func TestRetryCanceled(t *testing.T) {
	r := NewRetry(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r.Fail(ctx) {
		t.Error("expected cancel")
	}
}

func TestRetryDefaults(t *testing.T) {
	r := NewRetry(0, 0)
	if r.Time() != retry {
		t.Errorf("base %v", r.Time())
	}
}
