package async

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mj1618/desktop-harness/internal/goroutineid"
	"github.com/mj1618/desktop-harness/internal/timing"
)

// testLoop is a minimal single-goroutine loop for exercising the bridge in
// isolation from any toolkit.
type testLoop struct {
	work    chan func()
	gid     atomic.Int64
	closed  atomic.Bool
	done    chan struct{}
	stopped sync.Once
}

func newTestLoop(t *testing.T) *testLoop {
	t.Helper()
	l := &testLoop{
		work: make(chan func(), 4096),
		done: make(chan struct{}),
	}
	ready := make(chan struct{})
	go func() {
		l.gid.Store(goroutineid.Get())
		close(ready)
		for {
			select {
			case fn := <-l.work:
				fn()
			case <-l.done:
				return
			}
		}
	}()
	<-ready
	t.Cleanup(l.stop)
	return l
}

func (l *testLoop) Post(fn func()) bool {
	if l.closed.Load() {
		return false
	}
	select {
	case l.work <- fn:
		return true
	case <-l.done:
		return false
	}
}

func (l *testLoop) IsLoopThread() bool    { return goroutineid.Get() == l.gid.Load() }
func (l *testLoop) Done() <-chan struct{} { return l.done }

func (l *testLoop) stop() {
	l.stopped.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// block occupies the loop until the returned func is called.
func (l *testLoop) block() (release func()) {
	ch := make(chan struct{})
	l.Post(func() { <-ch })
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func fastProfile() timing.Profile {
	p := timing.Default()
	p.DrainSleep = time.Millisecond
	p.PollInterval = time.Millisecond
	return p
}

type countingMetrics struct {
	mu        sync.Mutex
	submitted map[string]int
	failed    int
	pending   int
	drains    int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{submitted: map[string]int{}}
}

func (m *countingMetrics) TaskSubmitted(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted[target]++
}

func (m *countingMetrics) TaskFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed++
}

func (m *countingMetrics) AggregatorPending(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = n
}

func (m *countingMetrics) DrainObserved(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drains++
}
