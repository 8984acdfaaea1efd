package sim

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/mj1618/desktop-harness/internal/goroutineid"
)

// loop runs posted functions in FIFO order on one dedicated goroutine.
// The queue is unbounded so Post never blocks the UI goroutine itself.
type loop struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool

	gid     atomic.Int64
	done    chan struct{}
	started chan struct{}
	once    sync.Once

	onPanic atomic.Pointer[func(v any, stack []byte)]
}

func newLoop() *loop {
	l := &loop{
		done:    make(chan struct{}),
		started: make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	l.gid.Store(-1)
	return l
}

func (l *loop) start() {
	l.once.Do(func() {
		go l.run()
		<-l.started
	})
}

func (l *loop) run() {
	l.gid.Store(goroutineid.Get())
	close(l.started)
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.queue = nil
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.exec(fn)
	}
}

func (l *loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if h := l.onPanic.Load(); h != nil {
				(*h)(r, debug.Stack())
			}
		}
	}()
	fn()
}

// post queues fn. Work posted before start runs once the loop starts.
func (l *loop) post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
	return true
}

func (l *loop) isLoopThread() bool {
	return goroutineid.Get() == l.gid.Load()
}

// pending is the number of queued, not yet started functions.
func (l *loop) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// stop discards queued work and ends the loop after the running function.
func (l *loop) stop() {
	l.mu.Lock()
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()

	select {
	case <-l.started:
		if !l.isLoopThread() {
			<-l.done
		}
	default:
		l.once.Do(func() { close(l.done) })
	}
}

func (l *loop) setPanicHandler(fn func(v any, stack []byte)) {
	if fn == nil {
		l.onPanic.Store(nil)
		return
	}
	l.onPanic.Store(&fn)
}
