package fallback

import (
	"errors"
	"sync"
)

var errStreamClosed = errors.New("device stream is closed")

// stream executes device operations in submission order on one goroutine.
type stream struct {
	ops      chan func()
	inflight pending

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func newStream(depth int) *stream {
	s := &stream{
		ops:  make(chan func(), depth),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *stream) run() {
	defer close(s.done)
	for op := range s.ops {
		op()
		s.inflight.done()
	}
}

func (s *stream) enqueue(op func()) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errStreamClosed
	}
	s.inflight.add()
	s.ops <- op
	return nil
}

// flush blocks until every queued operation has run.
func (s *stream) flush() {
	s.inflight.wait()
}

func (s *stream) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ops)
	s.mu.Unlock()
	<-s.done
}
