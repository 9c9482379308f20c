package thread

import (
	"sync"
	"testing"
	"time"

	"github.com/ui-xd/test-stream-sub001/pkg/logger"
)

func TestLoopOrder(t *testing.T) {
	loop := NewLoop(4, logger.Nop())
	var got []int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			i := i
			loop.Post(func() { got = append(got, i) })
		}
		loop.Post(loop.Stop)
	}()
	loop.Run()
	wg.Wait()

	if len(got) != 100 {
		t.Fatalf("executed %v tasks, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %v ran at position %v", v, i)
		}
	}
}

func TestLoopSurvivesPanic(t *testing.T) {
	loop := NewLoop(0, logger.Nop())
	ran := false
	loop.Post(func() { panic("boom") })
	loop.Post(func() { ran = true })
	if n := loop.RunOnce(); n != 2 {
		t.Errorf("RunOnce() = %v, want 2", n)
	}
	if !ran {
		t.Errorf("a task after the panicked one wasn't executed")
	}
}

func TestLoopPostAfterStop(t *testing.T) {
	loop := NewLoop(1, logger.Nop())
	loop.Stop()
	loop.Stop()
	if loop.Post(func() {}) {
		t.Errorf("Post after Stop should fail")
	}

	done := make(chan struct{})
	go func() { loop.Run(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Errorf("Run didn't return on a stopped loop")
	}
}
