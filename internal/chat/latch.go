package chat

import (
	"sync"
	"sync/atomic"
)

// Latch is a one-way shutdown flag for the lifetime of the process. It is set
// at most once, from the suspend-signal handler, and read by every loop
// iteration of the session. There is no reset path.
type Latch struct {
	fired atomic.Bool
	done  chan struct{}
	once  sync.Once
}

// NewLatch creates an untriggered Latch.
func NewLatch() *Latch {
	return &Latch{done: make(chan struct{})}
}

// Trigger sets the latch. Calling it more than once has the same observable
// effect as calling it once.
func (l *Latch) Trigger() {
	l.once.Do(func() {
		l.fired.Store(true)
		close(l.done)
	})
}

// Triggered reports whether the latch has been set.
func (l *Latch) Triggered() bool {
	return l.fired.Load()
}

// Done returns a channel closed when the latch is set.
func (l *Latch) Done() <-chan struct{} {
	return l.done
}
