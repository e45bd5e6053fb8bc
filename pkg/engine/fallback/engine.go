// Package fallback is a pure-Go implementation of the foreign engine interface.
//
// Host tensors live in Go byte slices. Device tensors live in a separate memory space that
// is never host addressable: data only moves through the copy calls. Engine-side work on
// device tensors is queued on a single stream and observed through Wait.
package fallback

import (
	"fmt"
	"slices"
	"sync"
	"unsafe"

	"github.com/justinsb/mnntensor/pkg/engine"
	"github.com/justinsb/mnntensor/pkg/halide"
	"k8s.io/klog/v2"
)

const Name = "fallback"

// Copy rejection codes, alongside engine.StatusOK.
const (
	StatusSizeMismatch engine.Status = -1
	StatusTypeMismatch engine.Status = -2
	StatusNotHost      engine.Status = -3
)

func init() {
	engine.Register(Name, func() (engine.Engine, error) {
		return New(DefaultOptions())
	})
}

type Options struct {
	// DeviceID is reported for device tensors. Host tensors report 0.
	DeviceID uint64
	// MemoryLimit caps the bytes of live storage; 0 means no cap.
	// Allocations past the cap return a nil pointer.
	MemoryLimit int64
	// QueueDepth is the number of device operations that may be queued before Submit blocks.
	QueueDepth int
}

// DefaultOptions reads the options from the environment.
func DefaultOptions() Options {
	return Options{
		DeviceID:    engine.DeviceID(),
		MemoryLimit: int64(engine.MemoryLimit()),
		QueueDepth:  64,
	}
}

// Stats counts storage allocations. Tensors wrapping caller memory are not counted.
type Stats struct {
	Live           int
	Allocations    int
	Releases       int
	AllocatedBytes int64
}

type Engine struct {
	opts   Options
	stream *stream

	mu    sync.Mutex
	stats Stats
}

var _ engine.Engine = (*Engine)(nil)

func New(opts Options) (*Engine, error) {
	if opts.MemoryLimit < 0 {
		return nil, fmt.Errorf("memory limit must not be negative, got %d", opts.MemoryLimit)
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = 64
	}
	return &Engine{
		opts:   opts,
		stream: newStream(opts.QueueDepth),
	}, nil
}

func (e *Engine) Name() string {
	return Name
}

// Close drains and stops the device stream. Tensors stay readable.
func (e *Engine) Close() error {
	e.stream.close()
	return nil
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Engine) reserve(size int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opts.MemoryLimit > 0 && e.stats.AllocatedBytes+int64(size) > e.opts.MemoryLimit {
		klog.V(2).InfoS("allocation exceeds memory limit", "bytes", size, "allocated", e.stats.AllocatedBytes, "limit", e.opts.MemoryLimit)
		return false
	}
	e.stats.AllocatedBytes += int64(size)
	e.stats.Live++
	e.stats.Allocations++
	return true
}

func (e *Engine) release(size int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.AllocatedBytes -= int64(size)
	e.stats.Live--
	e.stats.Releases++
}

func (e *Engine) get(p engine.Ptr) *buffer {
	if p == nil {
		panic("fallback: nil tensor")
	}
	b := (*buffer)(unsafe.Pointer(p))
	if b.destroyed {
		panic("fallback: use of destroyed tensor")
	}
	return b
}

func (e *Engine) allocate(shape []int32, t halide.Type, layout engine.DimensionType, device bool) engine.Ptr {
	b := &buffer{
		shape:  slices.Clone(shape),
		typ:    t,
		layout: layout,
		device: device,
	}
	size := b.storageSize()
	if !e.reserve(size) {
		return nil
	}
	b.data = make([]byte, size)
	klog.V(4).InfoS("allocated tensor", "shape", shape, "type", t, "layout", layout, "device", device, "bytes", size)
	return b.ptr()
}

func (e *Engine) Create(shape []int32, t halide.Type, data unsafe.Pointer, layout engine.DimensionType) engine.Ptr {
	if data == nil {
		return e.allocate(shape, t, layout, false)
	}

	b := &buffer{
		shape:    slices.Clone(shape),
		typ:      t,
		layout:   layout,
		external: true,
	}
	if size := b.storageSize(); size > 0 {
		b.data = unsafe.Slice((*byte)(data), size)
	}
	klog.V(4).InfoS("wrapped host memory", "shape", shape, "type", t, "layout", layout)
	return b.ptr()
}

func (e *Engine) CreateDevice(shape []int32, t halide.Type, layout engine.DimensionType) engine.Ptr {
	return e.allocate(shape, t, layout, true)
}

func (e *Engine) Destroy(p engine.Ptr) {
	if p == nil {
		panic("fallback: nil tensor")
	}
	b := (*buffer)(unsafe.Pointer(p))
	if b.destroyed {
		panic("fallback: tensor destroyed twice")
	}
	b.pending.wait()

	if !b.external {
		e.release(len(b.data))
	}
	klog.V(4).InfoS("destroyed tensor", "shape", b.shape, "type", b.typ, "device", b.device, "external", b.external)
	b.destroyed = true
	b.data = nil
}

func (e *Engine) Clone(p engine.Ptr) engine.Ptr {
	b := e.get(p)
	b.pending.wait()

	c := &buffer{
		shape:  slices.Clone(b.shape),
		typ:    b.typ,
		layout: b.layout,
		device: b.device,
	}
	if !e.reserve(len(b.data)) {
		return nil
	}
	c.data = slices.Clone(b.data)
	if c.data == nil {
		c.data = []byte{}
	}
	klog.V(4).InfoS("cloned tensor", "shape", b.shape, "type", b.typ, "device", b.device)
	return c.ptr()
}

func (e *Engine) Shape(p engine.Ptr) []int32 {
	return slices.Clone(e.get(p).shape)
}

func (e *Engine) Dimensions(p engine.Ptr) int {
	return len(e.get(p).shape)
}

func (e *Engine) Width(p engine.Ptr) int {
	b := e.get(p)
	if b.layout == engine.TensorFlow {
		return b.extent(2)
	}
	return b.extent(3)
}

func (e *Engine) Height(p engine.Ptr) int {
	b := e.get(p)
	if b.layout == engine.TensorFlow {
		return b.extent(1)
	}
	return b.extent(2)
}

func (e *Engine) Channel(p engine.Ptr) int {
	b := e.get(p)
	if b.layout == engine.TensorFlow {
		return b.extent(3)
	}
	return b.extent(1)
}

func (e *Engine) Batch(p engine.Ptr) int {
	return e.get(p).extent(0)
}

func (e *Engine) ElementSize(p engine.Ptr) int {
	return e.get(p).elementCount()
}

func (e *Engine) Size(p engine.Ptr) int {
	return e.get(p).storageSize()
}

func (e *Engine) DimensionType(p engine.Ptr) engine.DimensionType {
	return e.get(p).layout
}

func (e *Engine) Type(p engine.Ptr) halide.Type {
	return e.get(p).typ
}

func (e *Engine) IsTypeOf(p engine.Ptr, t halide.Type) bool {
	return e.get(p).typ == t
}

func (e *Engine) DeviceID(p engine.Ptr) uint64 {
	if e.get(p).device {
		return e.opts.DeviceID
	}
	return 0
}

func (e *Engine) CopyFromHostTensor(dst, src engine.Ptr) engine.Status {
	d, s := e.get(dst), e.get(src)
	if status := checkCopy(d, s, s); !status.OK() {
		return status
	}
	d.pending.wait()
	copy(d.data, s.data)
	klog.V(5).InfoS("copied from host tensor", "shape", d.shape, "bytes", len(d.data), "device", d.device)
	return engine.StatusOK
}

func (e *Engine) CopyToHostTensor(src, dst engine.Ptr) engine.Status {
	s, d := e.get(src), e.get(dst)
	if status := checkCopy(d, s, d); !status.OK() {
		return status
	}
	s.pending.wait()
	copy(d.data, s.data)
	klog.V(5).InfoS("copied to host tensor", "shape", s.shape, "bytes", len(s.data), "device", s.device)
	return engine.StatusOK
}

// checkCopy validates a copy between dst and src, where host must be host addressable.
func checkCopy(dst, src, host *buffer) engine.Status {
	switch {
	case host.device:
		klog.V(2).InfoS("rejected copy: staging tensor is not on the host", "shape", host.shape)
		return StatusNotHost
	case dst.typ != src.typ:
		klog.V(2).InfoS("rejected copy: element types differ", "dst", dst.typ, "src", src.typ)
		return StatusTypeMismatch
	case len(dst.data) != len(src.data):
		klog.V(2).InfoS("rejected copy: sizes differ", "dst", len(dst.data), "src", len(src.data))
		return StatusSizeMismatch
	}
	return engine.StatusOK
}

func (e *Engine) Host(p engine.Ptr) unsafe.Pointer {
	b := e.get(p)
	if b.device || len(b.data) == 0 {
		return nil
	}
	return unsafe.Pointer(&b.data[0])
}

func (e *Engine) Wait(p engine.Ptr, mapType engine.MapType, finish bool) {
	b := e.get(p)
	klog.V(5).InfoS("waiting for tensor", "shape", b.shape, "map", mapType, "finish", finish)
	if finish {
		e.stream.flush()
		return
	}
	b.pending.wait()
}

// Submit queues op on the device stream. op receives the device memory of p and runs
// after every previously submitted operation. It stands in for the engine executing a
// graph that writes p.
func (e *Engine) Submit(p engine.Ptr, op func(mem []byte)) error {
	b := e.get(p)
	if !b.device {
		return fmt.Errorf("submit: tensor %v is not a device tensor", b.shape)
	}
	b.pending.add()
	err := e.stream.enqueue(func() {
		defer b.pending.done()
		op(b.data)
	})
	if err != nil {
		b.pending.done()
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}
