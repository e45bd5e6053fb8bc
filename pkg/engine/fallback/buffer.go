package fallback

import (
	"sync"
	"unsafe"

	"github.com/justinsb/mnntensor/pkg/engine"
	"github.com/justinsb/mnntensor/pkg/halide"
)

type buffer struct {
	shape  []int32
	typ    halide.Type
	layout engine.DimensionType
	device bool

	// external is set when data is caller memory; destroying the buffer leaves it alone.
	external bool
	data     []byte

	pending   pending
	destroyed bool
}

func (b *buffer) ptr() engine.Ptr {
	return engine.Ptr(unsafe.Pointer(b))
}

// extent returns the size of axis i, or 1 when the buffer has fewer axes.
func (b *buffer) extent(i int) int {
	if i < len(b.shape) {
		return int(b.shape[i])
	}
	return 1
}

func (b *buffer) elementCount() int {
	n := 1
	for _, d := range b.shape {
		if d < 0 {
			return 0
		}
		n *= int(d)
	}
	return n
}

// storageSize is the byte size of the buffer. The NC4HW4 layout pads channels to a multiple of 4.
func (b *buffer) storageSize() int {
	n := 1
	for i, d := range b.shape {
		if d < 0 {
			return 0
		}
		if i == 1 && b.layout == engine.CaffeC4 {
			d = (d + 3) / 4 * 4
		}
		n *= int(d)
	}
	lanes := max(int(b.typ.Lanes), 1)
	return n * b.typ.Bytes() * lanes
}

// pending counts queued operations that touch a buffer.
type pending struct {
	mu   sync.Mutex
	cond *sync.Cond
	n    int
}

func (p *pending) add() {
	p.mu.Lock()
	p.n++
	p.mu.Unlock()
}

func (p *pending) done() {
	p.mu.Lock()
	p.n--
	if p.n == 0 && p.cond != nil {
		p.cond.Broadcast()
	}
	p.mu.Unlock()
}

func (p *pending) wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.n > 0 {
		if p.cond == nil {
			p.cond = sync.NewCond(&p.mu)
		}
		p.cond.Wait()
	}
}
