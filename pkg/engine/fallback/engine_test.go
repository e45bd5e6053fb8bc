package fallback

import (
	"testing"
	"unsafe"

	"github.com/justinsb/mnntensor/pkg/engine"
	"github.com/justinsb/mnntensor/pkg/halide"
)

var f32 = halide.Of[float32]()

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(opts)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestAllocationCounters(t *testing.T) {
	e := newEngine(t, Options{})

	a := e.Create([]int32{2, 3}, f32, nil, engine.Caffe)
	b := e.CreateDevice([]int32{4}, f32, engine.Caffe)
	c := e.Clone(a)

	if got := e.Stats(); got.Live != 3 || got.Allocations != 3 || got.AllocatedBytes != 24+16+24 {
		t.Fatalf("unexpected stats after allocation: %+v", got)
	}

	e.Destroy(a)
	e.Destroy(b)
	e.Destroy(c)

	if got := e.Stats(); got.Live != 0 || got.Releases != 3 || got.AllocatedBytes != 0 {
		t.Fatalf("unexpected stats after release: %+v", got)
	}
}

func TestExternalMemoryIsNotCounted(t *testing.T) {
	e := newEngine(t, Options{})

	data := []float32{1, 2, 3, 4}
	p := e.Create([]int32{4}, f32, unsafe.Pointer(&data[0]), engine.Caffe)

	if got := e.Stats(); got.Allocations != 0 {
		t.Fatalf("wrapping caller memory should not allocate, got %+v", got)
	}
	if e.Host(p) != unsafe.Pointer(&data[0]) {
		t.Fatalf("expected host pointer to alias caller memory")
	}

	e.Destroy(p)
	if data[3] != 4 {
		t.Fatalf("caller memory was modified by destroy")
	}
}

func TestMemoryLimit(t *testing.T) {
	e := newEngine(t, Options{MemoryLimit: 64})

	p := e.Create([]int32{16}, f32, nil, engine.Caffe)
	if p == nil {
		t.Fatalf("allocation within the limit failed")
	}
	if q := e.CreateDevice([]int32{1}, f32, engine.Caffe); q != nil {
		t.Fatalf("allocation over the limit should return nil")
	}
	if q := e.Clone(p); q != nil {
		t.Fatalf("clone over the limit should return nil")
	}

	e.Destroy(p)
	if q := e.CreateDevice([]int32{16}, f32, engine.Caffe); q == nil {
		t.Fatalf("allocation after release failed")
	} else {
		e.Destroy(q)
	}
}

func TestNegativeMemoryLimit(t *testing.T) {
	if _, err := New(Options{MemoryLimit: -1}); err == nil {
		t.Fatalf("expected error for negative memory limit")
	}
}

func TestSize(t *testing.T) {
	e := newEngine(t, Options{})

	grid := []struct {
		Shape  []int32
		Layout engine.DimensionType
		Type   halide.Type
		Size   int
		Count  int
	}{
		{Shape: []int32{1, 3, 2, 2}, Layout: engine.Caffe, Type: f32, Size: 48, Count: 12},
		{Shape: []int32{1, 3, 2, 2}, Layout: engine.CaffeC4, Type: f32, Size: 64, Count: 12},
		{Shape: []int32{1, 2, 2, 3}, Layout: engine.TensorFlow, Type: halide.Of[int8](), Size: 12, Count: 12},
		{Shape: []int32{}, Layout: engine.Caffe, Type: halide.Of[float64](), Size: 8, Count: 1},
	}
	for _, g := range grid {
		p := e.Create(g.Shape, g.Type, nil, g.Layout)
		if got := e.Size(p); got != g.Size {
			t.Errorf("Size(%v, %v) = %d, want %d", g.Shape, g.Layout, got, g.Size)
		}
		if got := e.ElementSize(p); got != g.Count {
			t.Errorf("ElementSize(%v, %v) = %d, want %d", g.Shape, g.Layout, got, g.Count)
		}
		e.Destroy(p)
	}
}

func TestDeviceID(t *testing.T) {
	e := newEngine(t, Options{DeviceID: 7})

	h := e.Create([]int32{1}, f32, nil, engine.Caffe)
	d := e.CreateDevice([]int32{1}, f32, engine.Caffe)
	defer e.Destroy(h)
	defer e.Destroy(d)

	if got := e.DeviceID(h); got != 0 {
		t.Errorf("host DeviceID = %d, want 0", got)
	}
	if got := e.DeviceID(d); got != 7 {
		t.Errorf("device DeviceID = %d, want 7", got)
	}
	if e.Host(d) != nil {
		t.Errorf("device tensor should not be host addressable")
	}
}

func TestCopyRejections(t *testing.T) {
	e := newEngine(t, Options{})

	h4 := e.Create([]int32{4}, f32, nil, engine.Caffe)
	h3 := e.Create([]int32{3}, f32, nil, engine.Caffe)
	i4 := e.Create([]int32{4}, halide.Of[int32](), nil, engine.Caffe)
	d4 := e.CreateDevice([]int32{4}, f32, engine.Caffe)
	d4b := e.CreateDevice([]int32{4}, f32, engine.Caffe)

	if got := e.CopyFromHostTensor(d4, h3); got != StatusSizeMismatch {
		t.Errorf("size mismatch: got status %d", got)
	}
	if got := e.CopyFromHostTensor(d4, i4); got != StatusTypeMismatch {
		t.Errorf("type mismatch: got status %d", got)
	}
	if got := e.CopyFromHostTensor(d4, d4b); got != StatusNotHost {
		t.Errorf("device source: got status %d", got)
	}
	if got := e.CopyToHostTensor(d4, d4b); got != StatusNotHost {
		t.Errorf("device destination: got status %d", got)
	}
	if got := e.CopyFromHostTensor(d4, h4); !got.OK() {
		t.Errorf("valid copy: got status %d", got)
	}

	for _, p := range []engine.Ptr{h4, h3, i4, d4, d4b} {
		e.Destroy(p)
	}
}

func TestSubmitOrdering(t *testing.T) {
	e := newEngine(t, Options{QueueDepth: 2})

	d := e.CreateDevice([]int32{1}, halide.Of[uint8](), engine.Caffe)
	h := e.Create([]int32{1}, halide.Of[uint8](), nil, engine.Caffe)
	defer e.Destroy(d)
	defer e.Destroy(h)

	for i := 0; i < 10; i++ {
		if err := e.Submit(d, func(mem []byte) { mem[0] = mem[0]*2 + 1 }); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	e.Wait(d, engine.MapTensorRead, false)

	if got := e.CopyToHostTensor(d, h); !got.OK() {
		t.Fatalf("copy failed with status %d", got)
	}
	if got := *(*uint8)(e.Host(h)); got != 255 {
		t.Fatalf("expected 255 after ten operations, got %d", got)
	}
}

func TestSubmitRejectsHostTensor(t *testing.T) {
	e := newEngine(t, Options{})

	h := e.Create([]int32{1}, f32, nil, engine.Caffe)
	defer e.Destroy(h)

	if err := e.Submit(h, func([]byte) {}); err == nil {
		t.Fatalf("expected error submitting work for a host tensor")
	}
}

func TestSubmitAfterClose(t *testing.T) {
	e := newEngine(t, Options{})

	d := e.CreateDevice([]int32{1}, f32, engine.Caffe)
	if err := e.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := e.Submit(d, func([]byte) {}); err == nil {
		t.Fatalf("expected error after close")
	}
	// Wait and Destroy must not block on the stopped stream.
	e.Wait(d, engine.MapTensorRead, true)
	e.Destroy(d)
}

func TestDestroyTwicePanics(t *testing.T) {
	e := newEngine(t, Options{})

	p := e.Create([]int32{1}, f32, nil, engine.Caffe)
	e.Destroy(p)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on second destroy")
		}
	}()
	e.Destroy(p)
}
