package thread

import (
	"runtime/debug"
	"sync"

	"github.com/ui-xd/test-stream-sub001/pkg/logger"
)

// Scheduler accepts tasks for the single logical thread.
type Scheduler interface {
	// Post queues fn behind every task posted before it.
	// It reports false when the task will never run.
	Post(fn func()) bool
}

// Loop is a FIFO task queue drained by exactly one goroutine.
// All the session components live on it, so they never need locks,
// only state re-checks inside each task.
type Loop struct {
	q    chan func()
	done chan struct{}
	once sync.Once
	log  *logger.Logger
}

const defaultQueue = 256

func NewLoop(size int, log *logger.Logger) *Loop {
	if size <= 0 {
		size = defaultQueue
	}
	return &Loop{q: make(chan func(), size), done: make(chan struct{}), log: log}
}

// Post blocks while the queue is full, tasks are never dropped
// or reordered while the loop is alive.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.q <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run executes tasks on the calling goroutine until Stop.
func (l *Loop) Run() {
	for {
		select {
		case fn := <-l.q:
			l.exec(fn)
		case <-l.done:
			return
		}
	}
}

// RunOnce executes the tasks queued at the moment of the call.
// It returns the number of executed tasks.
func (l *Loop) RunOnce() (n int) {
	for pending := len(l.q); n < pending; n++ {
		select {
		case fn := <-l.q:
			l.exec(fn)
		default:
			return
		}
	}
	return
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Msgf("task panic: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}

// Stop makes Run return, queued tasks are discarded.
func (l *Loop) Stop() { l.once.Do(func() { close(l.done) }) }

// Done is closed after Stop.
func (l *Loop) Done() <-chan struct{} { return l.done }
